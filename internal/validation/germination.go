package validation

import (
	"strings"
	"time"

	"orchidlab/pkg/domain"
)

// Germination limits.
const (
	MinTransplantGapDays      = 30
	TransplantToleranceDays   = 14
	NotViableMultiplier       = 1.5
	MinTemperature            = -50.0
	MaxTemperature            = 60.0
	MinHumidity               = 0.0
	MaxHumidity               = 100.0
	MinLightHours             = 0.0
	MaxLightHours             = 24.0
	germinationRateUpperBound = 100.0
)

// SeedlingQuantity requires 0 <= germinated <= planted.
func SeedlingQuantity(planted, germinated int) error {
	if planted < 0 {
		return domain.NewValidationError(domain.CodeInvalidSeedsPlanted, "seeds_planted",
			"seeds planted cannot be negative (got %d)", planted)
	}
	if germinated < 0 {
		return domain.NewValidationError(domain.CodeNegativeSeedlings, "seedlings_germinated",
			"seedlings germinated cannot be negative (got %d)", germinated)
	}
	if germinated > planted {
		return domain.NewValidationError(domain.CodeExcessiveSeedlings, "seedlings_germinated",
			"%d seedlings germinated exceeds the %d seeds planted", germinated, planted)
	}
	if rate := domain.Percentage(germinated, planted); rate > germinationRateUpperBound {
		return domain.NewValidationError(domain.CodeInvalidGerminationRate, "seedlings_germinated",
			"germination rate %.2f%% exceeds 100%%", rate)
	}
	return nil
}

// TransplantDate checks an actual transplant date against the germination
// date and today. A nil transplant date passes.
func (v *Validator) TransplantDate(germination time.Time, transplant *time.Time) error {
	if transplant == nil {
		return nil
	}
	g, t := domain.DateOf(germination), domain.DateOf(*transplant)
	if t.Before(g) {
		return domain.NewValidationError(domain.CodeInvalidTransplantDate, "transplant_date",
			"transplant date %s is before germination date %s", t.Format(time.DateOnly), g.Format(time.DateOnly))
	}
	if t.After(v.Today()) {
		return domain.NewValidationError(domain.CodeFutureTransplantDate, "transplant_date",
			"transplant date %s cannot be in the future", t.Format(time.DateOnly))
	}
	if days := domain.DaysBetween(g, t); days < MinTransplantGapDays {
		return domain.NewValidationError(domain.CodeTransplantTooEarly, "transplant_date",
			"transplant %d days after germination is too early; wait at least %d days", days, MinTransplantGapDays)
	}
	return nil
}

// TransplantOffset rejects a custom transplant offset shorter than the
// minimum gap, since its estimate could never be confirmed. Zero or less
// means the genus default applies.
func TransplantOffset(days int) error {
	if days > 0 && days < MinTransplantGapDays {
		return domain.NewValidationError(domain.CodeInvalidTransplantDays, "transplant_days",
			"transplant offset of %d days is below the %d-day minimum", days, MinTransplantGapDays)
	}
	return nil
}

// SeedSourceCompatibility checks that seeds from a pollination are sown as
// the plant that pollination produced. Sources without a pollination pass.
func SeedSourceCompatibility(source domain.SeedSource, pollination *domain.PollinationRecord, newPlant *domain.Plant, plant domain.Plant) error {
	if source.PollinationRecordID == nil || pollination == nil {
		return nil
	}
	if newPlant != nil && !plant.SameTaxon(*newPlant) {
		return domain.NewValidationError(domain.CodeIncompatibleSeedSource, "plant",
			"seed source %s comes from pollination %s producing %s %s, not %s %s",
			source.Name, pollination.ID, newPlant.Genus, newPlant.Species, plant.Genus, plant.Species)
	}
	if !pollination.MaturationConfirmed {
		return unconfirmedSource(pollination.ID)
	}
	return nil
}

// SeedSourceOrigin checks the source type against its provenance fields:
// lab sources need a confirmed pollination, external ones a supplier.
func SeedSourceOrigin(source domain.SeedSource, pollination *domain.PollinationRecord) error {
	switch {
	case source.SourceType.Internal():
		if source.PollinationRecordID == nil || pollination == nil {
			return domain.NewValidationError(domain.CodeMissingPollinationRecord, "pollination_record",
				"seed source type %s requires a pollination record", source.SourceType)
		}
		if !pollination.MaturationConfirmed {
			return unconfirmedSource(pollination.ID)
		}
		return nil
	case source.SourceType == domain.SourceExternal:
		if strings.TrimSpace(source.ExternalSupplier) == "" {
			return domain.NewValidationError(domain.CodeMissingExternalSupplier, "external_supplier",
				"seed source type %s requires an external supplier", source.SourceType)
		}
		return nil
	}
	return domain.NewValidationError(domain.CodeInvalidSourceType, "source_type",
		"seed source type %q is not recognised", source.SourceType)
}

// GerminationConditions requires a legal climate code that suits the plant
// genus. Genera without a preference accept any climate.
func GerminationConditions(condition *domain.GerminationCondition, plant domain.Plant) error {
	if condition == nil || condition.Climate == "" {
		return domain.NewValidationError(domain.CodeMissingGerminationCondition, "germination_condition",
			"a germination condition is required")
	}
	if !condition.Climate.Valid() {
		return invalidClimate(condition.Climate, "germination_condition")
	}
	preferred := domain.GerminationClimatePreferences.Lookup(plant.Genus)
	if preferred == nil || preferred.Contains(condition.Climate) {
		return nil
	}
	return domain.NewValidationError(domain.CodeSuboptimalClimateForGenus, "germination_condition",
		"climate %s is not suitable for %s; recommended: %s", condition.Climate, plant.Genus, preferred)
}

// GerminationParameters range-checks the numeric environment values that
// were recorded. Every out-of-range parameter is reported.
func GerminationParameters(condition *domain.GerminationCondition) error {
	if condition == nil {
		return nil
	}
	var errs domain.ValidationErrors
	if e := outOfRange(condition.Temperature, MinTemperature, MaxTemperature, domain.CodeInvalidTemperature, "temperature", "°C"); e != nil {
		errs = append(errs, e)
	}
	if e := outOfRange(condition.Humidity, MinHumidity, MaxHumidity, domain.CodeInvalidHumidity, "humidity", "%"); e != nil {
		errs = append(errs, e)
	}
	if e := outOfRange(condition.LightHours, MinLightHours, MaxLightHours, domain.CodeInvalidLightHours, "light_hours", "h"); e != nil {
		errs = append(errs, e)
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return errs
}

// TransplantTiming decides whether record may be transplanted now or on
// proposed. A proposal more than TransplantToleranceDays before the estimate
// is rejected; a nil proposal means today.
func (v *Validator) TransplantTiming(record domain.GerminationRecord, proposed *time.Time) error {
	if record.TransplantConfirmed {
		return domain.NewValidationError(domain.CodeAlreadyTransplanted, "transplant_confirmed",
			"germination %s was already transplanted", record.ID)
	}
	if record.SeedlingsGerminated <= 0 {
		return domain.NewValidationError(domain.CodeNoSeedlingsToTransplant, "seedlings_germinated",
			"germination %s has no seedlings to transplant", record.ID)
	}
	if record.EstimatedTransplantDate == nil {
		return nil
	}
	day := v.Today()
	if proposed != nil {
		day = domain.DateOf(*proposed)
	}
	early := domain.DaysBetween(day, *record.EstimatedTransplantDate)
	if early > TransplantToleranceDays {
		return domain.NewValidationError(domain.CodeTransplantTooEarly, "transplant_date",
			"transplant on %s is %d days before the estimated %s; at most %d days early is allowed",
			day.Format(time.DateOnly), early, domain.DateOf(*record.EstimatedTransplantDate).Format(time.DateOnly),
			TransplantToleranceDays)
	}
	return nil
}

// SeedViability compares storage time with the source type ceiling. Beyond
// 1.5x the ceiling the seeds are not viable; beyond the ceiling alone the
// failure carries warn severity. Sources without a collection date pass.
func SeedViability(source domain.SeedSource, germinationDate time.Time) error {
	if source.CollectionDate == nil {
		return nil
	}
	ceiling := source.SourceType.ViabilityCeiling()
	days := domain.DaysBetween(*source.CollectionDate, germinationDate)
	if float64(days) > NotViableMultiplier*float64(ceiling) {
		return domain.NewValidationError(domain.CodeSeedsNotViable, "seed_source",
			"seeds stored %d days exceed %.1f days (1.5 x %d) for %s sources and are not viable",
			days, NotViableMultiplier*float64(ceiling), ceiling, source.SourceType)
	}
	if days > ceiling {
		return domain.NewValidationError(domain.CodeSeedsTooOld, "seed_source",
			"seeds stored %d days exceed the recommended %d days for %s sources",
			days, ceiling, source.SourceType).WithSeverity(domain.SeverityWarn)
	}
	return nil
}

func unconfirmedSource(pollinationID string) error {
	return domain.NewValidationError(domain.CodeUnconfirmedPollinationSource, "pollination_record",
		"pollination %s has not had its maturation confirmed", pollinationID)
}

func outOfRange(value *float64, lo, hi float64, code, field, unit string) *domain.ValidationError {
	if value == nil || (*value >= lo && *value <= hi) {
		return nil
	}
	return domain.NewValidationError(code, field, "%s %g%s is outside %g..%g%s",
		field, *value, unit, lo, hi, unit)
}
