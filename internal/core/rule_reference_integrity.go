package core

import (
	"context"
	"fmt"

	"orchidlab/pkg/domain"
)

// ReferenceIntegrityRule blocks created or updated records whose plant,
// seed source or pollination references point at missing records.
func ReferenceIntegrityRule() domain.Rule {
	return referenceIntegrityRule{}
}

type referenceIntegrityRule struct{}

func (referenceIntegrityRule) Name() string { return "reference_integrity" }

func (referenceIntegrityRule) Evaluate(_ context.Context, view domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		switch after := change.After.(type) {
		case domain.PollinationRecord:
			evaluatePollinationRefs(&res, view, after)
		case domain.GerminationRecord:
			evaluateGerminationRefs(&res, view, after)
		case domain.SeedSource:
			if after.PollinationRecordID == nil {
				continue
			}
			if _, ok := view.FindPollination(*after.PollinationRecordID); !ok {
				res.Violations = append(res.Violations, referenceViolation(domain.EntitySeedSource, after.ID,
					fmt.Sprintf("seed source %s references missing pollination %s", after.ID, *after.PollinationRecordID)))
			}
		}
	}
	return res, nil
}

func evaluatePollinationRefs(res *domain.Result, view domain.TransactionView, p domain.PollinationRecord) {
	check := func(role, plantID string) {
		if plantID == "" {
			return
		}
		if _, ok := view.FindPlant(plantID); !ok {
			res.Violations = append(res.Violations, referenceViolation(domain.EntityPollination, p.ID,
				fmt.Sprintf("pollination %s references missing %s plant %s", p.ID, role, plantID)))
		}
	}
	check("mother", p.MotherPlantID)
	if p.FatherPlantID != nil {
		check("father", *p.FatherPlantID)
	}
	if p.NewPlantID != nil {
		check("new", *p.NewPlantID)
	}
}

func evaluateGerminationRefs(res *domain.Result, view domain.TransactionView, g domain.GerminationRecord) {
	if _, ok := view.FindPlant(g.PlantID); !ok {
		res.Violations = append(res.Violations, referenceViolation(domain.EntityGermination, g.ID,
			fmt.Sprintf("germination %s references missing plant %s", g.ID, g.PlantID)))
	}
	if _, ok := view.FindSeedSource(g.SeedSourceID); !ok {
		res.Violations = append(res.Violations, referenceViolation(domain.EntityGermination, g.ID,
			fmt.Sprintf("germination %s references missing seed source %s", g.ID, g.SeedSourceID)))
	}
}

func referenceViolation(entity domain.EntityType, id, message string) domain.Violation {
	return domain.Violation{
		Rule:     "reference_integrity",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   entity,
		EntityID: id,
	}
}
