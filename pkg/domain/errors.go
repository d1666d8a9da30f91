package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Validation failure codes. Codes are stable identifiers; messages are for
// display only.
const (
	CodeFutureDateNotAllowed       = "future_date_not_allowed"
	CodeInvalidDateRange           = "invalid_date_range"
	CodeInsufficientDateDifference = "insufficient_date_difference"

	CodeDuplicateRecord      = "duplicate_record"
	CodeDuplicatePollination = "duplicate_pollination"
	CodeDuplicateGermination = "duplicate_germination"
	CodeDuplicatePlant       = "duplicate_plant"
	CodeDuplicateUser        = "duplicate_user"
	CodeDuplicateSeedSource  = "duplicate_seed_source"

	CodeMissingPollinationType      = "missing_pollination_type"
	CodeMissingMotherPlant          = "missing_mother_plant"
	CodeMissingFatherPlant          = "missing_father_plant"
	CodeInvalidSelfPollination      = "invalid_self_pollination"
	CodeSamePhysicalPlantSibling    = "same_physical_plant_sibling"
	CodeIncompatibleSiblingSpecies  = "incompatible_sibling_species"
	CodeSamePhysicalPlantHybrid     = "same_physical_plant_hybrid"
	CodeSameSpeciesHybrid           = "same_species_hybrid"
	CodeNewPlantSameAsParent        = "new_plant_same_as_parent"
	CodeIncompatibleNewPlantSelf    = "incompatible_new_plant_self"
	CodeIncompatibleNewPlantSibling = "incompatible_new_plant_sibling"
	CodeIncompatibleNewPlantHybrid  = "incompatible_new_plant_hybrid"
	CodePollinationTooFrequent      = "pollination_too_frequent"
	CodeInvalidCapsulesQuantity     = "invalid_capsules_quantity"
	CodeExcessiveCapsulesQuantity   = "excessive_capsules_quantity"
	CodeMissingClimateCondition     = "missing_climate_condition"
	CodeInvalidClimateCode          = "invalid_climate_code"
	CodeClimateAdvisory             = "climate_advisory"
	CodeMaturationAlreadyConfirmed  = "maturation_already_confirmed"

	CodeInvalidSeedsPlanted          = "invalid_seeds_planted"
	CodeNegativeSeedlings            = "negative_seedlings"
	CodeExcessiveSeedlings           = "excessive_seedlings"
	CodeInvalidGerminationRate       = "invalid_germination_rate"
	CodeInvalidTransplantDate        = "invalid_transplant_date"
	CodeFutureTransplantDate         = "future_transplant_date"
	CodeTransplantTooEarly           = "transplant_too_early"
	CodeInvalidTransplantDays        = "invalid_transplant_days"
	CodeIncompatibleSeedSource       = "incompatible_seed_source"
	CodeUnconfirmedPollinationSource = "unconfirmed_pollination_source"
	CodeMissingPollinationRecord     = "missing_pollination_record"
	CodeMissingExternalSupplier      = "missing_external_supplier"
	CodeInvalidSourceType            = "invalid_source_type"
	CodeMissingGerminationCondition  = "missing_germination_condition"
	CodeSuboptimalClimateForGenus    = "suboptimal_climate_for_genus"
	CodeInvalidTemperature           = "invalid_temperature"
	CodeInvalidHumidity              = "invalid_humidity"
	CodeInvalidLightHours            = "invalid_light_hours"
	CodeAlreadyTransplanted          = "already_transplanted"
	CodeNoSeedlingsToTransplant      = "no_seedlings_to_transplant"
	CodeSeedsNotViable               = "seeds_not_viable"
	CodeSeedsTooOld                  = "seeds_too_old"

	CodeMissingReference = "missing_reference"
	CodeInactivePlant    = "inactive_plant"
	CodeMissingField     = "missing_field"
)

// ValidationError is a single business-rule failure.
type ValidationError struct {
	Code     string   `json:"code"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// NewValidationError builds a blocking failure with a formatted message.
func NewValidationError(code, field, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: fmt.Sprintf(format, args...), Severity: SeverityBlock}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// WithSeverity returns a copy of e with the given severity.
func (e *ValidationError) WithSeverity(severity Severity) *ValidationError {
	cp := *e
	cp.Severity = severity
	return &cp
}

// Blocking reports whether the failure must stop the write.
func (e *ValidationError) Blocking() bool {
	return e.Severity == "" || e.Severity == SeverityBlock
}

// Violation converts the failure into a rule violation.
func (e *ValidationError) Violation(entity EntityType, entityID string) Violation {
	severity := e.Severity
	if severity == "" {
		severity = SeverityBlock
	}
	return Violation{
		Rule:     e.Code,
		Severity: severity,
		Message:  e.Message,
		Field:    e.Field,
		Entity:   entity,
		EntityID: entityID,
	}
}

// ValidationErrors collects several failures from one check.
type ValidationErrors []*ValidationError

func (errs ValidationErrors) Error() string {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msgs = append(msgs, e.Message)
	}
	return strings.Join(msgs, "; ")
}

// Codes returns the code of every collected failure.
func (errs ValidationErrors) Codes() []string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

// AsValidationErrors flattens err into validation failures. It returns false
// when err is not a validation failure.
func AsValidationErrors(err error) (ValidationErrors, bool) {
	if err == nil {
		return nil, false
	}
	var many ValidationErrors
	if errors.As(err, &many) {
		return many, true
	}
	var one *ValidationError
	if errors.As(err, &one) {
		return ValidationErrors{one}, true
	}
	return nil, false
}

// CodeOf returns the validation code carried by err, or "" if none.
func CodeOf(err error) string {
	var one *ValidationError
	if errors.As(err, &one) {
		return one.Code
	}
	var many ValidationErrors
	if errors.As(err, &many) && len(many) > 0 {
		return many[0].Code
	}
	return ""
}

// UniqueConstraintError is returned by stores when a write would break a
// unique key.
type UniqueConstraintError struct {
	Entity     EntityType
	Constraint string
	Key        string
}

func (e UniqueConstraintError) Error() string {
	return fmt.Sprintf("%s violates unique constraint %s (%s)", e.Entity, e.Constraint, e.Key)
}
