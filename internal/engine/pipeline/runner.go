// Package pipeline implements the restore / execute / save run cycle.
package pipeline

import (
	"context"
	"sync"

	"go.trai.ch/warm/internal/core/domain"
	"go.trai.ch/warm/internal/core/ports"
	"go.trai.ch/warm/internal/engine/planner"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Runner executes one pipeline run: fingerprint the manifests, plan keys,
// restore every cache class, run the steps, and save fresh entries under
// the exact keys that missed.
type Runner struct {
	planner       *planner.Planner
	fingerprinter ports.Fingerprinter
	store         ports.CacheStore
	executor      ports.Executor
	telemetry     ports.Telemetry
	logger        ports.Logger
}

// NewRunner creates a new Runner.
func NewRunner(
	plan *planner.Planner,
	fingerprinter ports.Fingerprinter,
	store ports.CacheStore,
	executor ports.Executor,
	telemetry ports.Telemetry,
	logger ports.Logger,
) *Runner {
	return &Runner{
		planner:       plan,
		fingerprinter: fingerprinter,
		store:         store,
		executor:      executor,
		telemetry:     telemetry,
		logger:        logger,
	}
}

// Result summarizes one run.
type Result struct {
	Fingerprint domain.Fingerprint
	Stamp       domain.DateStamp
	Plans       []domain.KeyPlan
	// Restores maps class name to its lookup outcome.
	Restores map[string]domain.RestoreResult
	// Saved lists the exact keys persisted after the steps ran.
	Saved []domain.CacheKey
}

// Plan fingerprints the manifests and derives every class's key plan. A
// fingerprint failure (unreadable or absent manifests) is a setup failure:
// it aborts before any cache lookup and is not retried.
func (r *Runner) Plan(p *domain.Pipeline, stamp domain.DateStamp) ([]domain.KeyPlan, domain.Fingerprint, error) {
	fp, err := r.fingerprinter.ComputeFingerprint(p.Root, p.Manifests)
	if err != nil {
		return nil, "", zerr.Wrap(err, "failed to fingerprint manifests")
	}

	plans, err := r.planner.Plan(p.Classes, fp, stamp)
	if err != nil {
		return nil, "", err
	}
	return plans, fp, nil
}

// Run executes the full cycle. The returned error reflects the steps only:
// cache faults never fail a run, they degrade it to a cold build.
func (r *Runner) Run(ctx context.Context, p *domain.Pipeline, stamp domain.DateStamp) (*Result, error) {
	plans, fp, err := r.Plan(p, stamp)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Fingerprint: fp,
		Stamp:       stamp,
		Plans:       plans,
	}

	res.Restores = r.RestoreAll(ctx, plans)

	// Steps run whatever the lookups found; the save phase runs whatever
	// the steps returned, so a failed build still refreshes the cache.
	stepErr := r.runSteps(ctx, p)

	res.Saved = r.SaveAll(ctx, plans, res.Restores)

	return res, stepErr
}

// RestoreAll looks up every class concurrently. Classes are independent
// (own path, own key namespace), so there is no shared state between them
// beyond the results map. A store fault is soft: it is logged and the class
// proceeds as a cold miss, never aborting the run.
func (r *Runner) RestoreAll(ctx context.Context, plans []domain.KeyPlan) map[string]domain.RestoreResult {
	var mu sync.Mutex
	restores := make(map[string]domain.RestoreResult, len(plans))

	g, gctx := errgroup.WithContext(ctx)
	for _, plan := range plans {
		g.Go(func() error {
			_, vertex := r.telemetry.Record(gctx, "restore "+plan.Class.Name)

			result, err := r.store.Restore(gctx, plan)
			if err != nil {
				r.logger.Warn("cache restore failed, continuing cold",
					"class", plan.Class.Name, "error", err)
				result = domain.RestoreResult{Outcome: domain.RestoreMiss}
			}

			switch result.Outcome {
			case domain.RestoreExact:
				vertex.Cached()
				vertex.Complete(nil)
			default:
				vertex.Complete(nil)
			}

			r.logger.Info("cache lookup",
				"class", plan.Class.Name,
				"key", plan.ExactKey.String(),
				"outcome", string(result.Outcome),
				"matched", result.MatchedKey.String())

			mu.Lock()
			restores[plan.Class.Name] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // restore goroutines only report soft failures

	return restores
}

// runSteps executes the pipeline steps in order, stopping at the first
// failure. No step is retried.
func (r *Runner) runSteps(ctx context.Context, p *domain.Pipeline) error {
	for i := range p.Steps {
		step := &p.Steps[i]
		_, vertex := r.telemetry.Record(ctx, step.Name)

		err := r.executor.Execute(ctx, step, p.Root, vertex.Stdout(), vertex.Stderr())
		vertex.Complete(err)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "step failed"), "step", step.Name)
		}
	}
	return nil
}

// SaveAll persists fresh entries concurrently under each class's exact key,
// skipping classes whose lookup was already an exact hit. A prefix hit does
// not suppress the save: the next run on the same day should get an exact
// match. Save faults are soft and only logged.
func (r *Runner) SaveAll(ctx context.Context, plans []domain.KeyPlan, restores map[string]domain.RestoreResult) []domain.CacheKey {
	var mu sync.Mutex
	var saved []domain.CacheKey

	g, gctx := errgroup.WithContext(ctx)
	for _, plan := range plans {
		if result, ok := restores[plan.Class.Name]; ok && !result.ShouldSave() {
			continue
		}

		g.Go(func() error {
			_, vertex := r.telemetry.Record(gctx, "save "+plan.Class.Name)

			if err := r.store.Save(gctx, plan); err != nil {
				r.logger.Warn("cache save failed",
					"class", plan.Class.Name, "error", err)
				vertex.Complete(err)
				return nil
			}
			vertex.Complete(nil)

			mu.Lock()
			saved = append(saved, plan.ExactKey)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return saved
}
