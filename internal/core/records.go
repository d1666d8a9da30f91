package core

import (
	"context"
	"fmt"
	"time"

	"orchidlab/pkg/domain"
)

// CreatePlant validates and stores a plant.
func (s *Service) CreatePlant(ctx context.Context, plant Plant) (Plant, Result, error) {
	var created Plant
	res, err := s.mutate(ctx, "create_plant",
		func(view TransactionView) Result { return s.validatePlant(view, plant) },
		func(tx Transaction) (string, error) {
			var err error
			created, err = tx.CreatePlant(plant)
			return created.ID, err
		})
	return created, res, err
}

// DeactivatePlant marks a plant inactive. Deactivating an inactive plant keeps
// the original timestamp.
func (s *Service) DeactivatePlant(ctx context.Context, id string) (Plant, Result, error) {
	var updated Plant
	res, err := s.mutate(ctx, "deactivate_plant", nil, func(tx Transaction) (string, error) {
		if _, ok := tx.Snapshot().FindPlant(id); !ok {
			return id, ErrNotFound{Entity: EntityPlant, ID: id}
		}
		var err error
		updated, err = tx.UpdatePlant(id, func(p *Plant) error {
			if p.DeactivatedAt == nil {
				now := s.now()
				p.DeactivatedAt = &now
			}
			return nil
		})
		return id, err
	})
	return updated, res, err
}

// CreateUser validates and stores a user.
func (s *Service) CreateUser(ctx context.Context, user User) (User, Result, error) {
	var created User
	res, err := s.mutate(ctx, "create_user",
		func(view TransactionView) Result { return s.validateUser(view, user) },
		func(tx Transaction) (string, error) {
			var err error
			created, err = tx.CreateUser(user)
			return created.ID, err
		})
	return created, res, err
}

// CreateSeedSource validates and stores a seed source.
func (s *Service) CreateSeedSource(ctx context.Context, source SeedSource) (SeedSource, Result, error) {
	source = s.prepareSeedSource(source)
	var created SeedSource
	res, err := s.mutate(ctx, "create_seed_source",
		func(view TransactionView) Result { return s.validateSeedSource(view, source) },
		func(tx Transaction) (string, error) {
			var err error
			created, err = tx.CreateSeedSource(source)
			return created.ID, err
		})
	return created, res, err
}

// CreatePollination validates a pollination, fills its estimated maturation
// date and stores it together with the alert fan-out. A record is always
// created unconfirmed.
func (s *Service) CreatePollination(ctx context.Context, record PollinationRecord) (PollinationRecord, Result, error) {
	record = s.preparePollination(record)
	record.MaturationConfirmed = false
	record.MaturationConfirmedAt = nil
	record.IsSuccessful = nil

	var created PollinationRecord
	res, err := s.mutate(ctx, "create_pollination",
		func(view TransactionView) Result { return s.validatePollination(view, record) },
		func(tx Transaction) (string, error) {
			var err error
			created, err = tx.CreatePollination(record)
			if err != nil {
				return "", err
			}
			_, err = s.raiseAlert(tx, alertDraft{
				kind:          domain.AlertPollinationCreated,
				entity:        EntityPollination,
				entityID:      created.ID,
				responsibleID: created.ResponsibleID,
				title:         "New pollination",
				message: fmt.Sprintf("%s pollination of plant %s on %s, maturation expected %s",
					created.Type.Kind, created.MotherPlantID, formatDate(&created.PollinationDate), formatDate(created.EstimatedMaturationDate)),
			})
			return created.ID, err
		})
	return created, res, err
}

// CreateGermination validates a germination batch, fills its transplant
// offset and estimate, and stores it with the alert fan-out.
func (s *Service) CreateGermination(ctx context.Context, record GerminationRecord) (GerminationRecord, Result, error) {
	record.TransplantConfirmed = false
	record.TransplantConfirmedAt = nil

	var created GerminationRecord
	res, err := s.mutate(ctx, "create_germination",
		func(view TransactionView) Result {
			record = s.prepareGermination(view, record)
			return s.validateGermination(view, record)
		},
		func(tx Transaction) (string, error) {
			var err error
			created, err = tx.CreateGermination(record)
			if err != nil {
				return "", err
			}
			_, err = s.raiseAlert(tx, alertDraft{
				kind:          domain.AlertGerminationCreated,
				entity:        EntityGermination,
				entityID:      created.ID,
				responsibleID: created.ResponsibleID,
				title:         "New germination",
				message: fmt.Sprintf("%d of %d seeds germinated for plant %s, transplant expected %s",
					created.SeedlingsGerminated, created.SeedsPlanted, created.PlantID, formatDate(created.EstimatedTransplantDate)),
			})
			return created.ID, err
		})
	return created, res, err
}

// ConfirmMaturation records capsule maturation for a pollination. It
// succeeds at most once; a second call fails with
// maturation_already_confirmed and leaves the record untouched.
func (s *Service) ConfirmMaturation(ctx context.Context, id string, successful bool) (PollinationRecord, Result, error) {
	var updated PollinationRecord
	res, err := s.mutate(ctx, "confirm_maturation", nil, func(tx Transaction) (string, error) {
		current, ok := tx.Snapshot().FindPollination(id)
		if !ok {
			return id, ErrNotFound{Entity: EntityPollination, ID: id}
		}
		if current.MaturationConfirmed {
			return id, domain.NewValidationError(domain.CodeMaturationAlreadyConfirmed, "maturation_confirmed",
				"maturation of pollination %s was already confirmed on %s", id, formatDate(current.MaturationConfirmedAt))
		}
		var err error
		updated, err = tx.UpdatePollination(id, func(p *PollinationRecord) error {
			now := s.now()
			p.MaturationConfirmed = true
			p.MaturationConfirmedAt = &now
			p.IsSuccessful = &successful
			return nil
		})
		if err != nil {
			return id, err
		}
		_, err = s.raiseAlert(tx, alertDraft{
			kind:          domain.AlertMaturationConfirmed,
			entity:        EntityPollination,
			entityID:      id,
			responsibleID: updated.ResponsibleID,
			title:         "Maturation confirmed",
			message:       fmt.Sprintf("pollination %s matured (%s)", id, outcome(successful)),
		})
		return id, err
	})
	return updated, res, err
}

// ConfirmTransplant records the transplant of a germination batch on date
// (today when nil). It succeeds at most once; repeated calls fail with
// already_transplanted.
func (s *Service) ConfirmTransplant(ctx context.Context, id string, date *time.Time, successful bool) (GerminationRecord, Result, error) {
	var updated GerminationRecord
	res, err := s.mutate(ctx, "confirm_transplant", nil, func(tx Transaction) (string, error) {
		current, ok := tx.Snapshot().FindGermination(id)
		if !ok {
			return id, ErrNotFound{Entity: EntityGermination, ID: id}
		}
		day := s.Today()
		if date != nil {
			day = domain.DateOf(*date)
		}
		if err := s.validator.TransplantTiming(current, &day); err != nil {
			return id, err
		}
		if err := s.validator.TransplantDate(current.GerminationDate, &day); err != nil {
			return id, err
		}
		var err error
		updated, err = tx.UpdateGermination(id, func(g *GerminationRecord) error {
			now := s.now()
			g.TransplantConfirmed = true
			g.TransplantConfirmedAt = &now
			g.TransplantDate = &day
			g.IsSuccessful = &successful
			return nil
		})
		if err != nil {
			return id, err
		}
		_, err = s.raiseAlert(tx, alertDraft{
			kind:          domain.AlertTransplantConfirmed,
			entity:        EntityGermination,
			entityID:      id,
			responsibleID: updated.ResponsibleID,
			title:         "Transplant confirmed",
			message:       fmt.Sprintf("germination %s transplanted on %s (%s)", id, formatDate(&day), outcome(successful)),
		})
		return id, err
	})
	return updated, res, err
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "unknown"
	}
	return t.Format(time.DateOnly)
}

func outcome(successful bool) string {
	if successful {
		return "successful"
	}
	return "unsuccessful"
}
