package domain

import (
	"encoding/json"
	"fmt"
)

// PollinationKind is the closed set of pollination strategies. The zero value
// means "not set" and is rejected at the boundary by ParsePollinationKind.
type PollinationKind uint8

// Supported pollination kinds.
const (
	KindSelf PollinationKind = iota + 1
	KindSibling
	KindHybrid
)

// DefaultMaturationDays is the capsule maturation offset applied when a
// pollination type does not specify one.
const DefaultMaturationDays = 120

var kindNames = map[PollinationKind]string{
	KindSelf:    "Self",
	KindSibling: "Sibling",
	KindHybrid:  "Hybrid",
}

// PollinationKinds lists every kind in declaration order.
func PollinationKinds() []PollinationKind {
	return []PollinationKind{KindSelf, KindSibling, KindHybrid}
}

// ParsePollinationKind resolves a kind from its canonical name.
func ParsePollinationKind(name string) (PollinationKind, error) {
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown pollination type %q", name)
}

func (k PollinationKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("PollinationKind(%d)", uint8(k))
}

// Valid reports whether k is one of the declared kinds.
func (k PollinationKind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// RequiresFatherPlant reports whether a distinct father plant must be supplied.
func (k PollinationKind) RequiresFatherPlant() bool {
	return k == KindSibling || k == KindHybrid
}

// AllowsDifferentSpecies reports whether mother and father may differ in taxon.
func (k PollinationKind) AllowsDifferentSpecies() bool {
	return k == KindHybrid
}

// MarshalText encodes the kind by name.
func (k PollinationKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("cannot encode pollination kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind from its name.
func (k *PollinationKind) UnmarshalText(text []byte) error {
	parsed, err := ParsePollinationKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// PollinationType couples a kind with its maturation offset.
type PollinationType struct {
	Kind           PollinationKind `json:"kind"`
	MaturationDays int             `json:"maturation_days"`
}

// NewPollinationType returns the canonical type for kind using the default
// maturation offset.
func NewPollinationType(kind PollinationKind) PollinationType {
	return PollinationType{Kind: kind, MaturationDays: DefaultMaturationDays}
}

// EffectiveMaturationDays returns MaturationDays or the default when unset.
func (t PollinationType) EffectiveMaturationDays() int {
	if t.MaturationDays <= 0 {
		return DefaultMaturationDays
	}
	return t.MaturationDays
}

func (t PollinationType) String() string { return t.Kind.String() }

// UnmarshalJSON accepts either the object form or a bare kind name.
func (t *PollinationType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		kind, err := ParsePollinationKind(name)
		if err != nil {
			return err
		}
		*t = NewPollinationType(kind)
		return nil
	}
	type alias PollinationType
	var aux alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = PollinationType(aux)
	return nil
}
