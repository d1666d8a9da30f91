package domain

import "context"

// TransactionView provides read-only access to snapshot data for validators
// and rules.
type TransactionView interface {
	ListPlants() []Plant
	ListUsers() []User
	ListPollinations() []PollinationRecord
	ListSeedSources() []SeedSource
	ListGerminations() []GerminationRecord
	ListAlerts() []Alert
	ListUserAlerts() []UserAlert
	FindPlant(id string) (Plant, bool)
	FindUser(id string) (User, bool)
	FindPollination(id string) (PollinationRecord, bool)
	FindSeedSource(id string) (SeedSource, bool)
	FindGermination(id string) (GerminationRecord, bool)
}

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Create operations enforce the unique
// keys of each entity and fail with UniqueConstraintError.
type Transaction interface {
	Snapshot() TransactionView
	CreatePlant(Plant) (Plant, error)
	UpdatePlant(id string, mutator func(*Plant) error) (Plant, error)
	CreateUser(User) (User, error)
	UpdateUser(id string, mutator func(*User) error) (User, error)
	CreatePollination(PollinationRecord) (PollinationRecord, error)
	UpdatePollination(id string, mutator func(*PollinationRecord) error) (PollinationRecord, error)
	CreateSeedSource(SeedSource) (SeedSource, error)
	CreateGermination(GerminationRecord) (GerminationRecord, error)
	UpdateGermination(id string, mutator func(*GerminationRecord) error) (GerminationRecord, error)
	CreateAlert(Alert) (Alert, error)
	CreateUserAlert(UserAlert) (UserAlert, error)
	UpdateUserAlert(id string, mutator func(*UserAlert) error) (UserAlert, error)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetPlant(id string) (Plant, bool)
	ListPlants() []Plant
	GetPollination(id string) (PollinationRecord, bool)
	ListPollinations() []PollinationRecord
	GetGermination(id string) (GerminationRecord, bool)
	ListGerminations() []GerminationRecord
	ListSeedSources() []SeedSource
	ListUsers() []User
	ListAlerts() []Alert
	ListUserAlerts() []UserAlert
}
