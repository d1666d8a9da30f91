package core

import "orchidlab/pkg/domain"

// NewRulesEngine constructs an empty engine.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in policy set.
// The rules re-check record invariants inside every store transaction.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(ConfirmationTransitionRule())
	engine.Register(ReferenceIntegrityRule())
	engine.Register(NewSeedlingBoundsRule())
	return engine
}
