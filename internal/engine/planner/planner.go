// Package planner derives cache key plans for every class of a pipeline.
package planner

import (
	"go.trai.ch/warm/internal/core/domain"
	"go.trai.ch/zerr"
)

// Planner turns a fingerprint and a date stamp into per-class key plans.
// Planning is pure string composition: deterministic, no I/O, no clock
// access. The date stamp is an input precisely so it can be computed once
// per run and reused everywhere.
type Planner struct{}

// New creates a new Planner.
func New() *Planner {
	return &Planner{}
}

// Plan derives a key plan for each class, in declaration order.
func (p *Planner) Plan(classes []domain.CacheClass, fp domain.Fingerprint, stamp domain.DateStamp) ([]domain.KeyPlan, error) {
	if len(classes) == 0 {
		return nil, domain.ErrNoClasses
	}

	seen := make(map[string]bool, len(classes))
	plans := make([]domain.KeyPlan, 0, len(classes))
	for _, class := range classes {
		if seen[class.Name] {
			return nil, zerr.With(domain.ErrDuplicateClass, "class", class.Name)
		}
		seen[class.Name] = true

		plan, err := domain.PlanKeys(class, fp, stamp)
		if err != nil {
			return nil, zerr.Wrap(err, "failed to plan keys")
		}
		plans = append(plans, plan)
	}
	return plans, nil
}
