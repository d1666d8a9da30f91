package validation

import (
	"fmt"
	"time"

	"orchidlab/pkg/domain"
)

// Pollination timing window and spacing.
const (
	PollinationLookbackDays = 30
	MinPollinationGapDays   = 7
)

// PlantCompatibility checks the mother/father pairing against the kind's
// compatibility matrix. A missing mother always fails first.
func (v *Validator) PlantCompatibility(mother, father *domain.Plant, kind domain.PollinationKind) error {
	if mother == nil {
		return domain.NewValidationError(domain.CodeMissingMotherPlant, "mother_plant",
			"a mother plant is required for every pollination")
	}
	switch kind {
	case domain.KindSelf:
		if father != nil && father.ID != mother.ID {
			return domain.NewValidationError(domain.CodeInvalidSelfPollination, "father_plant",
				"self pollination must use the mother plant %s as father (got %s)", mother.ID, father.ID)
		}
		return nil
	case domain.KindSibling:
		if father == nil {
			return missingFather(kind)
		}
		if father.ID == mother.ID {
			return domain.NewValidationError(domain.CodeSamePhysicalPlantSibling, "father_plant",
				"sibling pollination needs two different plants; %s was used as mother and father", mother.ID)
		}
		if !mother.SameTaxon(*father) {
			return domain.NewValidationError(domain.CodeIncompatibleSiblingSpecies, "father_plant",
				"sibling pollination needs plants of the same species: mother %s %s, father %s %s",
				mother.Genus, mother.Species, father.Genus, father.Species)
		}
		return nil
	case domain.KindHybrid:
		if father == nil {
			return missingFather(kind)
		}
		if father.ID == mother.ID {
			return domain.NewValidationError(domain.CodeSamePhysicalPlantHybrid, "father_plant",
				"hybrid pollination needs two different plants; %s was used as mother and father", mother.ID)
		}
		if mother.SameTaxon(*father) {
			return domain.NewValidationError(domain.CodeSameSpeciesHybrid, "father_plant",
				"hybrid pollination between two %s %s plants; a sibling cross is recommended instead",
				mother.Genus, mother.Species).WithSeverity(v.policy.Severity())
		}
		return nil
	}
	return missingKind(kind)
}

// NewPlantCompatibility checks the plant produced by the cross. The new plant
// must differ from both parents; Self and Sibling crosses keep the parents'
// taxon while Hybrid crosses must share a genus with at least one parent.
func NewPlantCompatibility(mother, father, newPlant *domain.Plant, kind domain.PollinationKind) error {
	if newPlant == nil || mother == nil {
		return nil
	}
	if newPlant.ID == mother.ID || (father != nil && newPlant.ID == father.ID) {
		return domain.NewValidationError(domain.CodeNewPlantSameAsParent, "new_plant",
			"new plant %s must be different from the parent plants", newPlant.ID)
	}
	switch kind {
	case domain.KindSelf:
		if !newPlant.SameTaxon(*mother) {
			return domain.NewValidationError(domain.CodeIncompatibleNewPlantSelf, "new_plant",
				"self pollination of %s %s cannot produce %s %s",
				mother.Genus, mother.Species, newPlant.Genus, newPlant.Species)
		}
		return nil
	case domain.KindSibling:
		if !newPlant.SameTaxon(*mother) {
			return domain.NewValidationError(domain.CodeIncompatibleNewPlantSibling, "new_plant",
				"sibling pollination of %s %s cannot produce %s %s",
				mother.Genus, mother.Species, newPlant.Genus, newPlant.Species)
		}
		return nil
	case domain.KindHybrid:
		if newPlant.Genus == mother.Genus || (father != nil && newPlant.Genus == father.Genus) {
			return nil
		}
		fatherGenus := "none"
		if father != nil {
			fatherGenus = father.Genus
		}
		return domain.NewValidationError(domain.CodeIncompatibleNewPlantHybrid, "new_plant",
			"hybrid new plant genus %s must match a parent genus (%s or %s)",
			newPlant.Genus, mother.Genus, fatherGenus)
	}
	return missingKind(kind)
}

// PollinationTiming rejects pollinating the same mother plant again less
// than MinPollinationGapDays after its latest pollination. Only pollinations
// on or before date and within the lookback window are considered.
func PollinationTiming(view domain.TransactionView, date time.Time, motherPlantID, excludeID string) error {
	day := domain.DateOf(date)
	windowStart := day.AddDate(0, 0, -PollinationLookbackDays)
	var latest *domain.PollinationRecord
	for _, p := range view.ListPollinations() {
		if p.MotherPlantID != motherPlantID || (excludeID != "" && p.ID == excludeID) {
			continue
		}
		prior := domain.DateOf(p.PollinationDate)
		if prior.Before(windowStart) || prior.After(day) {
			continue
		}
		if latest == nil || prior.After(domain.DateOf(latest.PollinationDate)) {
			rec := p
			latest = &rec
		}
	}
	if latest == nil {
		return nil
	}
	gap := domain.DaysBetween(latest.PollinationDate, day)
	if gap < MinPollinationGapDays {
		return domain.NewValidationError(domain.CodePollinationTooFrequent, "pollination_date",
			"mother plant %s was pollinated %d days ago on %s; wait at least %d days between pollinations",
			motherPlantID, gap, domain.DateOf(latest.PollinationDate).Format(time.DateOnly), MinPollinationGapDays)
	}
	return nil
}

// CapsulesQuantity checks the capsule count against the mother genus ceiling.
func CapsulesQuantity(quantity int, mother *domain.Plant, kind domain.PollinationKind) error {
	if quantity <= 0 {
		return domain.NewValidationError(domain.CodeInvalidCapsulesQuantity, "capsules_quantity",
			"capsules quantity must be positive (got %d)", quantity)
	}
	genus := ""
	if mother != nil {
		genus = mother.Genus
	}
	ceiling := domain.CapsuleCeilings.Lookup(genus)
	if quantity > ceiling {
		label := genus
		if label == "" {
			label = "unknown genus"
		}
		return domain.NewValidationError(domain.CodeExcessiveCapsulesQuantity, "capsules_quantity",
			"%d capsules exceeds the maximum of %d for %s (%s pollination)", quantity, ceiling, label, kind)
	}
	return nil
}

// ClimateConditions requires a legal climate code. Anything beyond that is
// advisory: the returned notes describe suboptimal choices but never block.
func ClimateConditions(condition *domain.ClimateCondition, kind domain.PollinationKind) ([]string, error) {
	if condition == nil || condition.Climate == "" {
		return nil, domain.NewValidationError(domain.CodeMissingClimateCondition, "climate_condition",
			"a climate condition is required")
	}
	if !condition.Climate.Valid() {
		return nil, invalidClimate(condition.Climate, "climate_condition")
	}
	var advisories []string
	if condition.Temperature != nil {
		r, _ := condition.Climate.TemperatureRange()
		if !r.Contains(*condition.Temperature) {
			advisories = append(advisories, fmt.Sprintf(
				"temperature %.1f°C is outside the nominal %.0f-%.0f°C range for climate %s",
				*condition.Temperature, r.Min, r.Max, condition.Climate))
		}
	}
	if kind == domain.KindHybrid && (condition.Climate == domain.ClimateCold || condition.Climate == domain.ClimateWarm) {
		advisories = append(advisories, fmt.Sprintf(
			"intermediate climates (IC, I, IW) are recommended for hybrid crosses; got %s", condition.Climate))
	}
	return advisories, nil
}

func missingFather(kind domain.PollinationKind) error {
	return domain.NewValidationError(domain.CodeMissingFatherPlant, "father_plant",
		"%s pollination requires a father plant", kind)
}

func missingKind(kind domain.PollinationKind) error {
	return domain.NewValidationError(domain.CodeMissingPollinationType, "pollination_type",
		"pollination type is required (got %s)", kind)
}

func invalidClimate(code domain.ClimateCode, field string) error {
	return domain.NewValidationError(domain.CodeInvalidClimateCode, field,
		"climate %q is not one of C, IC, I, IW, W", code)
}
