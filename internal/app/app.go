// Package app implements the application layer for warm.
package app

import (
	"context"
	"time"

	"go.trai.ch/warm/internal/core/domain"
	"go.trai.ch/warm/internal/core/ports"
	"go.trai.ch/warm/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	runner       *pipeline.Runner
	logger       ports.Logger
	now          func() time.Time
}

// New creates a new App instance.
func New(loader ports.ConfigLoader, runner *pipeline.Runner, log ports.Logger) *App {
	return &App{
		configLoader: loader,
		runner:       runner,
		logger:       log,
		now:          time.Now,
	}
}

// WithClock replaces the clock. Used for testing date-stamp behavior.
func (a *App) WithClock(now func() time.Time) *App {
	a.now = now
	return a
}

// stamp computes the run's date stamp. Called exactly once per verb and
// threaded into every key derivation, so a run spanning midnight still
// uses one consistent date.
func (a *App) stamp() domain.DateStamp {
	return domain.NewDateStamp(a.now())
}

func (a *App) load() (*domain.Pipeline, error) {
	p, err := a.configLoader.Load(".")
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}
	return p, nil
}

// Run executes the full cycle: restore, steps, save-on-miss.
func (a *App) Run(ctx context.Context) error {
	p, err := a.load()
	if err != nil {
		return err
	}

	res, err := a.runner.Run(ctx, p, a.stamp())
	if res != nil {
		a.logger.Info("run finished",
			"fingerprint", res.Fingerprint.String(),
			"date", res.Stamp.String(),
			"saved", len(res.Saved))
	}
	return err
}

// Plan fingerprints the manifests and returns every class's key plan
// without touching the cache store.
func (a *App) Plan(_ context.Context) ([]domain.KeyPlan, error) {
	p, err := a.load()
	if err != nil {
		return nil, err
	}
	plans, _, err := a.runner.Plan(p, a.stamp())
	return plans, err
}

// Restore performs the lookup phase only. Cache faults are soft, so this
// only fails on setup errors (config, fingerprint).
func (a *App) Restore(ctx context.Context) error {
	p, err := a.load()
	if err != nil {
		return err
	}
	plans, _, err := a.runner.Plan(p, a.stamp())
	if err != nil {
		return err
	}
	a.runner.RestoreAll(ctx, plans)
	return nil
}

// Save persists every class under its exact key. The store skips keys that
// already exist, so repeating a save on the same day is a no-op.
func (a *App) Save(ctx context.Context) error {
	p, err := a.load()
	if err != nil {
		return err
	}
	plans, _, err := a.runner.Plan(p, a.stamp())
	if err != nil {
		return err
	}
	a.runner.SaveAll(ctx, plans, nil)
	return nil
}
