package core

import (
	"context"
	"strings"

	"orchidlab/internal/validation"
	"orchidlab/pkg/domain"
)

// collector accumulates check failures as violations against one record.
type collector struct {
	entity   EntityType
	entityID string
	result   Result
}

func newCollector(entity EntityType, entityID string) *collector {
	return &collector{entity: entity, entityID: entityID}
}

func (c *collector) add(err error) {
	if err == nil {
		return
	}
	failures, ok := domain.AsValidationErrors(err)
	if !ok {
		c.result.Violations = append(c.result.Violations, Violation{
			Rule:     "validation",
			Severity: SeverityBlock,
			Message:  err.Error(),
			Entity:   c.entity,
			EntityID: c.entityID,
		})
		return
	}
	for _, failure := range failures {
		c.result.Violations = append(c.result.Violations, failure.Violation(c.entity, c.entityID))
	}
}

func (c *collector) advise(message string) {
	c.result.Violations = append(c.result.Violations, Violation{
		Rule:     domain.CodeClimateAdvisory,
		Severity: SeverityLog,
		Message:  message,
		Field:    "climate_condition",
		Entity:   c.entity,
		EntityID: c.entityID,
	})
}

func required(value, field, label string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(domain.CodeMissingField, field, "%s is required", label)
	}
	return nil
}

func missingReference(field, format string, args ...any) error {
	return domain.NewValidationError(domain.CodeMissingReference, field, format, args...)
}

// ValidatePlant runs the plant checks against the current data without
// writing anything.
func (s *Service) ValidatePlant(ctx context.Context, plant Plant) (Result, error) {
	var res Result
	err := s.store.View(ctx, func(view TransactionView) error {
		res = s.validatePlant(view, plant)
		return nil
	})
	return res, err
}

// ValidateUser runs the user checks without writing anything.
func (s *Service) ValidateUser(ctx context.Context, user User) (Result, error) {
	var res Result
	err := s.store.View(ctx, func(view TransactionView) error {
		res = s.validateUser(view, user)
		return nil
	})
	return res, err
}

// ValidateSeedSource runs the seed source checks without writing anything.
func (s *Service) ValidateSeedSource(ctx context.Context, source SeedSource) (Result, error) {
	var res Result
	err := s.store.View(ctx, func(view TransactionView) error {
		res = s.validateSeedSource(view, s.prepareSeedSource(source))
		return nil
	})
	return res, err
}

// ValidatePollinationRecord runs every pollination check, including
// duplicate and timing checks against stored records. The record's own ID is
// excluded so an existing record can be re-validated.
func (s *Service) ValidatePollinationRecord(ctx context.Context, record PollinationRecord) (Result, error) {
	var res Result
	err := s.store.View(ctx, func(view TransactionView) error {
		res = s.validatePollination(view, s.preparePollination(record))
		return nil
	})
	return res, err
}

// ValidateGerminationRecord runs every germination check against stored
// records.
func (s *Service) ValidateGerminationRecord(ctx context.Context, record GerminationRecord) (Result, error) {
	var res Result
	err := s.store.View(ctx, func(view TransactionView) error {
		res = s.validateGermination(view, s.prepareGermination(view, record))
		return nil
	})
	return res, err
}

func (s *Service) validatePlant(view TransactionView, plant Plant) Result {
	c := newCollector(EntityPlant, plant.ID)
	c.add(required(plant.Genus, "genus", "genus"))
	c.add(required(plant.Species, "species", "species"))
	c.add(validation.PlantDuplicate(view, plant.Key(), plant.ID))
	return c.result
}

func (s *Service) validateUser(view TransactionView, user User) Result {
	c := newCollector(EntityUser, user.ID)
	c.add(required(user.Username, "username", "username"))
	switch user.Role {
	case RoleAdmin, RoleTechnician, RoleViewer:
	default:
		c.add(domain.NewValidationError(domain.CodeMissingField, "role", "role %q is not one of admin, technician or viewer", user.Role))
	}
	c.add(validation.UserDuplicate(view, user.Username, user.Email, user.ID))
	return c.result
}

func (s *Service) validateSeedSource(view TransactionView, source SeedSource) Result {
	c := newCollector(EntitySeedSource, source.ID)
	c.add(required(source.Name, "name", "seed source name"))
	var pollination *PollinationRecord
	if source.PollinationRecordID != nil {
		if found, ok := view.FindPollination(*source.PollinationRecordID); ok {
			pollination = &found
		} else {
			c.add(missingReference("pollination_record", "pollination %s does not exist", *source.PollinationRecordID))
		}
	}
	if source.PollinationRecordID == nil || pollination != nil {
		c.add(validation.SeedSourceOrigin(source, pollination))
	}
	c.add(s.validator.NotFutureDate(source.CollectionDate, "collection_date"))
	c.add(validation.SeedSourceDuplicate(view, source.Name, source.SourceType, source.ID))
	return c.result
}

func (s *Service) validatePollination(view TransactionView, record PollinationRecord) Result {
	c := newCollector(EntityPollination, record.ID)
	kind := record.Type.Kind

	c.add(s.validator.NotFutureDate(&record.PollinationDate, "pollination_date"))
	c.add(requireUser(view, record.ResponsibleID))

	var mother *Plant
	if record.MotherPlantID != "" {
		if found, ok := view.FindPlant(record.MotherPlantID); ok {
			mother = &found
		} else {
			c.add(missingReference("mother_plant", "mother plant %s does not exist", record.MotherPlantID))
		}
	}
	father, err := optionalPlant(view, record.FatherPlantID, "father_plant")
	c.add(err)
	newPlant, err := optionalPlant(view, record.NewPlantID, "new_plant")
	c.add(err)

	if mother != nil && !mother.Active() {
		c.add(domain.NewValidationError(domain.CodeInactivePlant, "mother_plant", "mother plant %s is deactivated", mother.ID))
	}
	if father != nil && !father.Active() {
		c.add(domain.NewValidationError(domain.CodeInactivePlant, "father_plant", "father plant %s is deactivated", father.ID))
	}
	if record.MotherPlantID == "" || mother != nil {
		c.add(s.validator.PlantCompatibility(mother, father, kind))
		if kind.Valid() {
			c.add(validation.NewPlantCompatibility(mother, father, newPlant, kind))
		}
	}
	if mother != nil {
		c.add(validation.PollinationTiming(view, record.PollinationDate, mother.ID, record.ID))
	}
	c.add(validation.CapsulesQuantity(record.CapsulesQuantity, mother, kind))

	advisories, err := validation.ClimateConditions(&record.Climate, kind)
	c.add(err)
	for _, advisory := range advisories {
		c.advise(advisory)
	}

	c.add(validation.PollinationDuplicate(view, record.Key(), record.ID))
	return c.result
}

func (s *Service) validateGermination(view TransactionView, record GerminationRecord) Result {
	c := newCollector(EntityGermination, record.ID)

	c.add(s.validator.NotFutureDate(&record.GerminationDate, "germination_date"))
	c.add(requireUser(view, record.ResponsibleID))

	var plant *Plant
	if err := required(record.PlantID, "plant", "plant"); err != nil {
		c.add(err)
	} else if found, ok := view.FindPlant(record.PlantID); ok {
		plant = &found
		if !found.Active() {
			c.add(domain.NewValidationError(domain.CodeInactivePlant, "plant", "plant %s is deactivated", found.ID))
		}
	} else {
		c.add(missingReference("plant", "plant %s does not exist", record.PlantID))
	}

	var source *SeedSource
	if err := required(record.SeedSourceID, "seed_source", "seed source"); err != nil {
		c.add(err)
	} else if found, ok := view.FindSeedSource(record.SeedSourceID); ok {
		source = &found
	} else {
		c.add(missingReference("seed_source", "seed source %s does not exist", record.SeedSourceID))
	}

	c.add(validation.SeedlingQuantity(record.SeedsPlanted, record.SeedlingsGerminated))
	c.add(s.validator.TransplantDate(record.GerminationDate, record.TransplantDate))
	c.add(validation.TransplantOffset(record.TransplantDays))
	if plant != nil {
		c.add(validation.GerminationConditions(&record.Condition, *plant))
	}
	c.add(validation.GerminationParameters(&record.Condition))

	if source != nil {
		if plant != nil {
			pollination, newPlant := sourceLineage(view, *source)
			c.add(validation.SeedSourceCompatibility(*source, pollination, newPlant, *plant))
		}
		c.add(validation.SeedViability(*source, record.GerminationDate))
	}

	c.add(validation.GerminationDuplicate(view, record.Key(), record.ID))
	return c.result
}

// preparePollination normalises dates and fills the maturation offset and
// estimate.
func (s *Service) preparePollination(record PollinationRecord) PollinationRecord {
	record.PollinationDate = domain.DateOf(record.PollinationDate)
	if record.Type.MaturationDays <= 0 {
		record.Type.MaturationDays = s.maturationDays
	}
	if record.EstimatedMaturationDate == nil && !record.PollinationDate.IsZero() {
		estimate := s.CalculateMaturationDate(record.PollinationDate, record.Type)
		record.EstimatedMaturationDate = &estimate
	}
	return record
}

// prepareGermination normalises dates and derives the transplant offset from
// the plant genus when none was supplied.
func (s *Service) prepareGermination(view TransactionView, record GerminationRecord) GerminationRecord {
	record.GerminationDate = domain.DateOf(record.GerminationDate)
	if record.TransplantDate != nil {
		day := domain.DateOf(*record.TransplantDate)
		record.TransplantDate = &day
	}
	plant, _ := view.FindPlant(record.PlantID)
	if record.TransplantDays <= 0 {
		record.TransplantDays = domain.TransplantDays.Lookup(plant.Genus)
	}
	if record.EstimatedTransplantDate == nil && !record.GerminationDate.IsZero() {
		days := record.TransplantDays
		estimate := CalculateTransplantDate(record.GerminationDate, plant, &days)
		record.EstimatedTransplantDate = &estimate
	}
	return record
}

func (s *Service) prepareSeedSource(source SeedSource) SeedSource {
	if source.CollectionDate != nil {
		day := domain.DateOf(*source.CollectionDate)
		source.CollectionDate = &day
	}
	return source
}

func requireUser(view TransactionView, userID string) error {
	if err := required(userID, "responsible", "responsible user"); err != nil {
		return err
	}
	if _, ok := view.FindUser(userID); !ok {
		return missingReference("responsible", "user %s does not exist", userID)
	}
	return nil
}

func optionalPlant(view TransactionView, id *string, field string) (*Plant, error) {
	if id == nil || *id == "" {
		return nil, nil
	}
	plant, ok := view.FindPlant(*id)
	if !ok {
		return nil, missingReference(field, "plant %s does not exist", *id)
	}
	return &plant, nil
}

// sourceLineage resolves the pollination behind a seed source and the plant
// that pollination produced.
func sourceLineage(view TransactionView, source SeedSource) (*PollinationRecord, *Plant) {
	if source.PollinationRecordID == nil {
		return nil, nil
	}
	pollination, ok := view.FindPollination(*source.PollinationRecordID)
	if !ok {
		return nil, nil
	}
	if pollination.NewPlantID == nil {
		return &pollination, nil
	}
	newPlant, ok := view.FindPlant(*pollination.NewPlantID)
	if !ok {
		return &pollination, nil
	}
	return &pollination, &newPlant
}
