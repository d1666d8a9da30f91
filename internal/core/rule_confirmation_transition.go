package core

import (
	"context"
	"fmt"
	"time"

	"orchidlab/pkg/domain"
)

// ConfirmationTransitionRule blocks updates that undo or rewrite a one-shot
// confirmation (capsule maturation, seedling transplant).
func ConfirmationTransitionRule() domain.Rule {
	return confirmationTransitionRule{}
}

type confirmationTransitionRule struct{}

type confirmationState struct {
	id        string
	confirmed bool
	at        *time.Time
}

type confirmationMachine struct {
	label     string
	extractor func(payload any) (confirmationState, bool)
}

var confirmationMachines = map[domain.EntityType]confirmationMachine{
	domain.EntityPollination: {
		label: "maturation of pollination",
		extractor: func(payload any) (confirmationState, bool) {
			p, ok := payload.(domain.PollinationRecord)
			if !ok {
				return confirmationState{}, false
			}
			return confirmationState{id: p.ID, confirmed: p.MaturationConfirmed, at: p.MaturationConfirmedAt}, true
		},
	},
	domain.EntityGermination: {
		label: "transplant of germination",
		extractor: func(payload any) (confirmationState, bool) {
			g, ok := payload.(domain.GerminationRecord)
			if !ok {
				return confirmationState{}, false
			}
			return confirmationState{id: g.ID, confirmed: g.TransplantConfirmed, at: g.TransplantConfirmedAt}, true
		},
	},
}

func (confirmationTransitionRule) Name() string { return "confirmation_transition" }

func (confirmationTransitionRule) Evaluate(_ context.Context, _ domain.TransactionView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Action != domain.ActionUpdate {
			continue
		}
		machine, ok := confirmationMachines[change.Entity]
		if !ok {
			continue
		}
		before, ok := machine.extractor(change.Before)
		if !ok || !before.confirmed {
			continue
		}
		after, ok := machine.extractor(change.After)
		if !ok {
			continue
		}
		switch {
		case !after.confirmed:
			res.Violations = append(res.Violations, confirmationViolation(change.Entity, after.id,
				fmt.Sprintf("%s %s cannot be reverted once confirmed", machine.label, after.id)))
		case !sameInstant(before.at, after.at):
			res.Violations = append(res.Violations, confirmationViolation(change.Entity, after.id,
				fmt.Sprintf("%s %s keeps its original confirmation time", machine.label, after.id)))
		}
	}
	return res, nil
}

func confirmationViolation(entity domain.EntityType, id, message string) domain.Violation {
	return domain.Violation{
		Rule:     "confirmation_transition",
		Severity: domain.SeverityBlock,
		Message:  message,
		Entity:   entity,
		EntityID: id,
	}
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
