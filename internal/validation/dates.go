package validation

import (
	"time"

	"orchidlab/pkg/domain"
)

// NotFutureDate fails when value falls after today. Times are truncated to
// their calendar date first; a nil value has not been set yet and passes.
func (v *Validator) NotFutureDate(value *time.Time, field string) error {
	if value == nil {
		return nil
	}
	date := domain.DateOf(*value)
	if date.After(v.Today()) {
		return domain.NewValidationError(domain.CodeFutureDateNotAllowed, field,
			"%s cannot be in the future (%s)", field, date.Format(time.DateOnly))
	}
	return nil
}

// DateRange fails when start is after end. Either side being nil passes.
func DateRange(start, end *time.Time) error {
	if start == nil || end == nil {
		return nil
	}
	if domain.DateOf(*start).After(domain.DateOf(*end)) {
		return domain.NewValidationError(domain.CodeInvalidDateRange, "",
			"start date %s is after end date %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	}
	return nil
}

// MinimumDateDifference fails when fewer than minDays separate start and end.
func MinimumDateDifference(start, end time.Time, minDays int) error {
	if days := domain.DaysBetween(start, end); days < minDays {
		return domain.NewValidationError(domain.CodeInsufficientDateDifference, "",
			"at least %d days must separate %s and %s (got %d)",
			minDays, start.Format(time.DateOnly), end.Format(time.DateOnly), days)
	}
	return nil
}
