package domain

// GenusTable maps a genus (or family) name to a value, falling back to a
// default for anything unmapped. An unmapped genus is never an error.
type GenusTable[V any] struct {
	Default V
	Entries map[string]V
}

// Lookup returns the value for genus, or Default when unmapped.
func (t GenusTable[V]) Lookup(genus string) V {
	if v, ok := t.Entries[genus]; ok {
		return v
	}
	return t.Default
}

// Has reports whether genus has an explicit entry.
func (t GenusTable[V]) Has(genus string) bool {
	_, ok := t.Entries[genus]
	return ok
}

// CapsuleCeilings bounds capsules per pollination by mother plant genus.
var CapsuleCeilings = GenusTable[int]{
	Default: 50,
	Entries: map[string]int{
		"Orchidaceae":  20,
		"Cattleya":     15,
		"Dendrobium":   25,
		"Phalaenopsis": 10,
	},
}

// DefaultTransplantDays is the germination-to-transplant offset for
// unmapped genera.
const DefaultTransplantDays = 90

// TransplantDays maps genus to the germination-to-transplant offset.
var TransplantDays = GenusTable[int]{
	Default: DefaultTransplantDays,
	Entries: map[string]int{
		"Orchidaceae":  120,
		"Bromeliaceae": 90,
		"Cactaceae":    60,
	},
}

// GerminationClimatePreferences lists the climates each genus germinates
// well in. Genera without an entry accept any valid climate.
var GerminationClimatePreferences = GenusTable[ClimateSet]{
	Entries: map[string]ClimateSet{
		"Phalaenopsis":  NewClimateSet(ClimateIntermediateWarm, ClimateWarm),
		"Vanda":         NewClimateSet(ClimateWarm),
		"Cattleya":      NewClimateSet(ClimateIntermediate, ClimateIntermediateWarm),
		"Dendrobium":    NewClimateSet(ClimateIntermediateCold, ClimateIntermediate, ClimateIntermediateWarm),
		"Oncidium":      NewClimateSet(ClimateIntermediate, ClimateIntermediateWarm),
		"Cymbidium":     NewClimateSet(ClimateCold, ClimateIntermediateCold, ClimateIntermediate),
		"Masdevallia":   NewClimateSet(ClimateCold, ClimateIntermediateCold),
		"Paphiopedilum": NewClimateSet(ClimateIntermediateCold, ClimateIntermediate),
	},
}

// Seed viability ceilings in days of storage before sowing.
const (
	InternalSeedViabilityDays = 365
	ExternalSeedViabilityDays = 730
)

// ViabilityCeiling returns the storage ceiling in days for the source type.
func (t SeedSourceType) ViabilityCeiling() int {
	if t.Internal() {
		return InternalSeedViabilityDays
	}
	return ExternalSeedViabilityDays
}
