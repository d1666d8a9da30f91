// Package domain defines the core persistent entities, value types, and
// rule evaluation primitives used by orchidlab.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityPlant identifies a plant record.
	EntityPlant EntityType = "plant"
	// EntityUser identifies a laboratory user record.
	EntityUser EntityType = "user"
	// EntityPollination identifies a pollination record.
	EntityPollination EntityType = "pollination"
	// EntitySeedSource identifies a seed source record.
	EntitySeedSource EntityType = "seed_source"
	// EntityGermination identifies a germination record.
	EntityGermination EntityType = "germination"
	// EntityAlert identifies a generated alert.
	EntityAlert EntityType = "alert"
	// EntityUserAlert identifies the per-recipient copy of an alert.
	EntityUserAlert EntityType = "user_alert"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// UserRole enumerates laboratory roles.
type UserRole string

// Canonical user roles.
const (
	RoleAdmin      UserRole = "admin"
	RoleTechnician UserRole = "technician"
	RoleViewer     UserRole = "viewer"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Identity returns the record identifier.
func (b Base) Identity() string { return b.ID }

// Plant is a physical plant identified by taxonomy and bench location
// (vivero / mesa / pared).
type Plant struct {
	Base
	Genus         string     `json:"genus"`
	Species       string     `json:"species"`
	Vivero        string     `json:"vivero"`
	Mesa          string     `json:"mesa"`
	Pared         string     `json:"pared"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}

// Active reports whether the plant has not been deactivated.
func (p Plant) Active() bool { return p.DeactivatedAt == nil }

// Key returns the uniqueness key of the plant.
func (p Plant) Key() PlantKey {
	return PlantKey{Genus: p.Genus, Species: p.Species, Vivero: p.Vivero, Mesa: p.Mesa, Pared: p.Pared}
}

// SameTaxon reports whether both plants share genus and species.
func (p Plant) SameTaxon(other Plant) bool {
	return p.Genus == other.Genus && p.Species == other.Species
}

// PlantKey is the (genus, species, vivero, mesa, pared) uniqueness tuple.
type PlantKey struct {
	Genus   string
	Species string
	Vivero  string
	Mesa    string
	Pared   string
}

// User is a laboratory worker responsible for records.
type User struct {
	Base
	Username string   `json:"username"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	Role     UserRole `json:"role"`
	Active   bool     `json:"active"`
}

// ClimateCondition records the climate a pollination was performed under.
type ClimateCondition struct {
	Climate     ClimateCode `json:"climate"`
	Temperature *float64    `json:"temperature,omitempty"`
	Humidity    *float64    `json:"humidity,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// GerminationCondition records the environment of a germination batch.
type GerminationCondition struct {
	Climate     ClimateCode `json:"climate"`
	Temperature *float64    `json:"temperature,omitempty"`
	Humidity    *float64    `json:"humidity,omitempty"`
	LightHours  *float64    `json:"light_hours,omitempty"`
	Substrate   string      `json:"substrate,omitempty"`
}

// PollinationRecord captures a single pollination cross.
type PollinationRecord struct {
	Base
	ResponsibleID           string           `json:"responsible_id"`
	Type                    PollinationType  `json:"type"`
	PollinationDate         time.Time        `json:"pollination_date"`
	MotherPlantID           string           `json:"mother_plant_id"`
	FatherPlantID           *string          `json:"father_plant_id"`
	NewPlantID              *string          `json:"new_plant_id"`
	Climate                 ClimateCondition `json:"climate_condition"`
	CapsulesQuantity        int              `json:"capsules_quantity"`
	EstimatedMaturationDate *time.Time       `json:"estimated_maturation_date"`
	MaturationConfirmed     bool             `json:"maturation_confirmed"`
	MaturationConfirmedAt   *time.Time       `json:"maturation_confirmed_at"`
	IsSuccessful            *bool            `json:"is_successful"`
	Notes                   string           `json:"notes,omitempty"`
}

// Key returns the duplicate-detection key of the pollination.
func (p PollinationRecord) Key() PollinationKey {
	return PollinationKey{
		ResponsibleID: p.ResponsibleID,
		Date:          DateOf(p.PollinationDate),
		MotherPlantID: p.MotherPlantID,
		FatherPlantID: p.FatherPlantID,
		Kind:          p.Type.Kind,
	}
}

// PollinationKey identifies a pollination for duplicate detection. A nil
// FatherPlantID only matches other records without a father plant.
type PollinationKey struct {
	ResponsibleID string
	Date          time.Time
	MotherPlantID string
	FatherPlantID *string
	Kind          PollinationKind
}

// Matches compares two keys field by field.
func (k PollinationKey) Matches(other PollinationKey) bool {
	return k.ResponsibleID == other.ResponsibleID &&
		SameDay(k.Date, other.Date) &&
		k.MotherPlantID == other.MotherPlantID &&
		equalOptional(k.FatherPlantID, other.FatherPlantID) &&
		k.Kind == other.Kind
}

// SeedSourceType classifies where seeds come from.
type SeedSourceType string

// Canonical seed source types. The first three are produced in the lab and
// must reference a pollination record.
const (
	SourceSelfPollination SeedSourceType = "Autopolinización"
	SourceSibling         SeedSourceType = "Sibling"
	SourceHybrid          SeedSourceType = "Híbrido"
	SourceExternal        SeedSourceType = "Otra fuente"
)

// Internal reports whether the source type originates from a lab pollination.
func (t SeedSourceType) Internal() bool {
	switch t {
	case SourceSelfPollination, SourceSibling, SourceHybrid:
		return true
	}
	return false
}

// Valid reports whether the type is one of the canonical values.
func (t SeedSourceType) Valid() bool {
	return t.Internal() || t == SourceExternal
}

// SeedSource is the origin of seeds used in germination.
type SeedSource struct {
	Base
	Name                string         `json:"name"`
	SourceType          SeedSourceType `json:"source_type"`
	PollinationRecordID *string        `json:"pollination_record_id"`
	ExternalSupplier    string         `json:"external_supplier,omitempty"`
	CollectionDate      *time.Time     `json:"collection_date"`
	Description         string         `json:"description,omitempty"`
}

// GerminationRecord captures a sowing batch and its outcome.
type GerminationRecord struct {
	Base
	ResponsibleID           string               `json:"responsible_id"`
	GerminationDate         time.Time            `json:"germination_date"`
	PlantID                 string               `json:"plant_id"`
	SeedSourceID            string               `json:"seed_source_id"`
	Condition               GerminationCondition `json:"germination_condition"`
	SeedsPlanted            int                  `json:"seeds_planted"`
	SeedlingsGerminated     int                  `json:"seedlings_germinated"`
	TransplantDays          int                  `json:"transplant_days"`
	EstimatedTransplantDate *time.Time           `json:"estimated_transplant_date"`
	TransplantConfirmed     bool                 `json:"transplant_confirmed"`
	TransplantConfirmedAt   *time.Time           `json:"transplant_confirmed_at"`
	TransplantDate          *time.Time           `json:"transplant_date"`
	IsSuccessful            *bool                `json:"is_successful"`
	Notes                   string               `json:"notes,omitempty"`
}

// GerminationRate returns germinated/planted as a percentage, or 0 when no
// seeds were planted.
func (g GerminationRecord) GerminationRate() float64 {
	return Percentage(g.SeedlingsGerminated, g.SeedsPlanted)
}

// Key returns the duplicate-detection key of the germination.
func (g GerminationRecord) Key() GerminationKey {
	return GerminationKey{
		ResponsibleID: g.ResponsibleID,
		Date:          DateOf(g.GerminationDate),
		PlantID:       g.PlantID,
		SeedSourceID:  g.SeedSourceID,
	}
}

// GerminationKey identifies a germination for duplicate detection.
type GerminationKey struct {
	ResponsibleID string
	Date          time.Time
	PlantID       string
	SeedSourceID  string
}

// Matches compares two keys field by field.
func (k GerminationKey) Matches(other GerminationKey) bool {
	return k.ResponsibleID == other.ResponsibleID &&
		SameDay(k.Date, other.Date) &&
		k.PlantID == other.PlantID &&
		k.SeedSourceID == other.SeedSourceID
}

// AlertKind identifies the trigger of an alert.
type AlertKind string

// Alert triggers raised by the service layer.
const (
	AlertPollinationCreated  AlertKind = "pollination_created"
	AlertGerminationCreated  AlertKind = "germination_created"
	AlertMaturationConfirmed AlertKind = "maturation_confirmed"
	AlertTransplantConfirmed AlertKind = "transplant_confirmed"
)

// Alert is a notification raised once per trigger.
type Alert struct {
	Base
	Kind       AlertKind  `json:"kind"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	EntityType EntityType `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
}

// UserAlert is the per-recipient delivery of an Alert.
type UserAlert struct {
	Base
	AlertID string     `json:"alert_id"`
	UserID  string     `json:"user_id"`
	Read    bool       `json:"read"`
	ReadAt  *time.Time `json:"read_at"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string     `json:"rule"`
	Severity Severity   `json:"severity"`
	Message  string     `json:"message"`
	Field    string     `json:"field,omitempty"`
	Entity   EntityType `json:"entity,omitempty"`
	EntityID string     `json:"entity_id,omitempty"`
}

// Result aggregates violations from validators and the rules engine.
type Result struct {
	Violations []Violation `json:"violations,omitempty"`
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Messages returns every violation message in evaluation order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Message)
	}
	return out
}

// Codes returns the rule codes of every violation in evaluation order.
func (r Result) Codes() []string {
	out := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		out = append(out, v.Rule)
	}
	return out
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
