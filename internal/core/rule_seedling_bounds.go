package core

import (
	"context"
	"fmt"

	"orchidlab/pkg/domain"
)

// NewSeedlingBoundsRule returns the in-transaction rule keeping germinated
// seedlings within 0..seeds planted.
func NewSeedlingBoundsRule() domain.Rule {
	return seedlingBoundsRule{}
}

type seedlingBoundsRule struct{}

func (seedlingBoundsRule) Name() string { return "seedling_bounds" }

func (seedlingBoundsRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		g, ok := change.After.(domain.GerminationRecord)
		if !ok {
			continue
		}
		if g.SeedlingsGerminated < 0 || g.SeedlingsGerminated > g.SeedsPlanted {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "seedling_bounds",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("germination %s has %d seedlings from %d seeds", g.ID, g.SeedlingsGerminated, g.SeedsPlanted),
				Entity:   domain.EntityGermination,
				EntityID: g.ID,
			})
		}
	}
	return res, nil
}
