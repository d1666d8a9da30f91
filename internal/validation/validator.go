// Package validation holds the business-rule checks applied to plants,
// pollinations, seed sources and germinations before they are written.
//
// Every check returns nil on success or a *domain.ValidationError carrying a
// stable code. Checks that need "today" hang off Validator so the clock can be
// pinned in tests; the rest are plain functions.
package validation

import (
	"time"

	"orchidlab/pkg/domain"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into a Clock. A nil ClockFunc reports the
// system time in UTC.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time {
	if f == nil {
		return time.Now().UTC()
	}
	return f()
}

// HybridSameSpeciesPolicy decides how a Hybrid cross between two plants of
// the same genus and species is treated.
type HybridSameSpeciesPolicy string

// Supported hybrid same-species policies.
const (
	HybridSameSpeciesBlock HybridSameSpeciesPolicy = "block"
	HybridSameSpeciesWarn  HybridSameSpeciesPolicy = "warn"
)

// Severity maps the policy onto a violation severity.
func (p HybridSameSpeciesPolicy) Severity() domain.Severity {
	if p == HybridSameSpeciesWarn {
		return domain.SeverityWarn
	}
	return domain.SeverityBlock
}

// Validator runs the date-sensitive checks against a fixed clock.
type Validator struct {
	clock  Clock
	policy HybridSameSpeciesPolicy
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the clock used to determine "today".
func WithClock(clock Clock) Option {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// WithHybridSameSpeciesPolicy selects the same-species hybrid policy.
func WithHybridSameSpeciesPolicy(policy HybridSameSpeciesPolicy) Option {
	return func(v *Validator) {
		if policy != "" {
			v.policy = policy
		}
	}
}

// New constructs a Validator using the system clock and the blocking hybrid
// policy unless overridden.
func New(opts ...Option) *Validator {
	v := &Validator{clock: ClockFunc(nil), policy: HybridSameSpeciesBlock}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Today returns the current calendar date.
func (v *Validator) Today() time.Time {
	return domain.DateOf(v.clock.Now())
}

// Policy returns the configured hybrid same-species policy.
func (v *Validator) Policy() HybridSameSpeciesPolicy {
	return v.policy
}
