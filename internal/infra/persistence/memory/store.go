// Package memory provides an in-memory implementation of the core persistence
// store used for tests and ephemeral environments.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"orchidlab/pkg/domain"
)

// Compile-time contract assertions ensuring memory.Store adheres to the domain persistence interfaces.
var _ domain.PersistentStore = (*Store)(nil)

type (
	// Plant aliases domain.Plant for in-memory persistence operations.
	Plant = domain.Plant
	// User aliases domain.User.
	User = domain.User
	// Pollination aliases domain.PollinationRecord.
	Pollination = domain.PollinationRecord
	// SeedSource aliases domain.SeedSource.
	SeedSource = domain.SeedSource
	// Germination aliases domain.GerminationRecord.
	Germination = domain.GerminationRecord
	// Alert aliases domain.Alert.
	Alert = domain.Alert
	// UserAlert aliases domain.UserAlert.
	UserAlert = domain.UserAlert
	// Change aliases domain.Change captured in transactions.
	Change = domain.Change
	// Result aliases domain.Result summarizing rule evaluation.
	Result = domain.Result
	// RulesEngine aliases domain.RulesEngine used to evaluate rules.
	RulesEngine = domain.RulesEngine
	// Transaction aliases domain.Transaction representing a mutable unit of work.
	Transaction = domain.Transaction
	// TransactionView aliases domain.TransactionView providing read-only state.
	TransactionView = domain.TransactionView
	// PersistentStore aliases domain.PersistentStore abstraction.
	PersistentStore = domain.PersistentStore
)

type memoryState struct {
	plants       map[string]Plant
	users        map[string]User
	pollinations map[string]Pollination
	seedSources  map[string]SeedSource
	germinations map[string]Germination
	alerts       map[string]Alert
	userAlerts   map[string]UserAlert
}

// Snapshot captures a point-in-time clone of the store state.
type Snapshot struct {
	Plants       map[string]Plant       `json:"plants"`
	Users        map[string]User        `json:"users"`
	Pollinations map[string]Pollination `json:"pollinations"`
	SeedSources  map[string]SeedSource  `json:"seed_sources"`
	Germinations map[string]Germination `json:"germinations"`
	Alerts       map[string]Alert       `json:"alerts"`
	UserAlerts   map[string]UserAlert   `json:"user_alerts"`
}

func newMemoryState() memoryState {
	return memoryState{
		plants:       make(map[string]Plant),
		users:        make(map[string]User),
		pollinations: make(map[string]Pollination),
		seedSources:  make(map[string]SeedSource),
		germinations: make(map[string]Germination),
		alerts:       make(map[string]Alert),
		userAlerts:   make(map[string]UserAlert),
	}
}

func cloneMap[T any](src map[string]T, clone func(T) T) map[string]T {
	out := make(map[string]T, len(src))
	for k, v := range src {
		out[k] = clone(v)
	}
	return out
}

func snapshotFromMemoryState(state memoryState) Snapshot {
	return Snapshot{
		Plants:       cloneMap(state.plants, clonePlant),
		Users:        cloneMap(state.users, identity[User]),
		Pollinations: cloneMap(state.pollinations, clonePollination),
		SeedSources:  cloneMap(state.seedSources, cloneSeedSource),
		Germinations: cloneMap(state.germinations, cloneGermination),
		Alerts:       cloneMap(state.alerts, identity[Alert]),
		UserAlerts:   cloneMap(state.userAlerts, cloneUserAlert),
	}
}

func memoryStateFromSnapshot(s Snapshot) memoryState {
	return memoryState{
		plants:       cloneMap(s.Plants, clonePlant),
		users:        cloneMap(s.Users, identity[User]),
		pollinations: cloneMap(s.Pollinations, clonePollination),
		seedSources:  cloneMap(s.SeedSources, cloneSeedSource),
		germinations: cloneMap(s.Germinations, cloneGermination),
		alerts:       cloneMap(s.Alerts, identity[Alert]),
		userAlerts:   cloneMap(s.UserAlerts, cloneUserAlert),
	}
}

// migrateSnapshot normalises snapshots written by older builds: missing
// buckets become empty, record dates are truncated to calendar days, and
// user alerts pointing at unknown alerts are dropped.
func migrateSnapshot(snapshot Snapshot) Snapshot {
	if snapshot.Plants == nil {
		snapshot.Plants = map[string]Plant{}
	}
	if snapshot.Users == nil {
		snapshot.Users = map[string]User{}
	}
	if snapshot.Pollinations == nil {
		snapshot.Pollinations = map[string]Pollination{}
	}
	if snapshot.SeedSources == nil {
		snapshot.SeedSources = map[string]SeedSource{}
	}
	if snapshot.Germinations == nil {
		snapshot.Germinations = map[string]Germination{}
	}
	if snapshot.Alerts == nil {
		snapshot.Alerts = map[string]Alert{}
	}
	if snapshot.UserAlerts == nil {
		snapshot.UserAlerts = map[string]UserAlert{}
	}

	for id, p := range snapshot.Pollinations {
		p.PollinationDate = domain.DateOf(p.PollinationDate)
		if p.Type.MaturationDays <= 0 {
			p.Type.MaturationDays = p.Type.EffectiveMaturationDays()
		}
		snapshot.Pollinations[id] = p
	}
	for id, g := range snapshot.Germinations {
		g.GerminationDate = domain.DateOf(g.GerminationDate)
		snapshot.Germinations[id] = g
	}
	for id, ua := range snapshot.UserAlerts {
		if _, ok := snapshot.Alerts[ua.AlertID]; !ok {
			delete(snapshot.UserAlerts, id)
		}
	}
	return snapshot
}

func (s memoryState) clone() memoryState {
	return memoryStateFromSnapshot(snapshotFromMemoryState(s))
}

func identity[T any](v T) T { return v }

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	cp := *b
	return &cp
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	cp := *f
	return &cp
}

func clonePlant(p Plant) Plant {
	cp := p
	cp.DeactivatedAt = cloneTime(p.DeactivatedAt)
	return cp
}

func clonePollination(p Pollination) Pollination {
	cp := p
	cp.FatherPlantID = cloneString(p.FatherPlantID)
	cp.NewPlantID = cloneString(p.NewPlantID)
	cp.Climate.Temperature = cloneFloat(p.Climate.Temperature)
	cp.Climate.Humidity = cloneFloat(p.Climate.Humidity)
	cp.EstimatedMaturationDate = cloneTime(p.EstimatedMaturationDate)
	cp.MaturationConfirmedAt = cloneTime(p.MaturationConfirmedAt)
	cp.IsSuccessful = cloneBool(p.IsSuccessful)
	return cp
}

func cloneSeedSource(s SeedSource) SeedSource {
	cp := s
	cp.PollinationRecordID = cloneString(s.PollinationRecordID)
	cp.CollectionDate = cloneTime(s.CollectionDate)
	return cp
}

func cloneGermination(g Germination) Germination {
	cp := g
	cp.Condition.Temperature = cloneFloat(g.Condition.Temperature)
	cp.Condition.Humidity = cloneFloat(g.Condition.Humidity)
	cp.Condition.LightHours = cloneFloat(g.Condition.LightHours)
	cp.EstimatedTransplantDate = cloneTime(g.EstimatedTransplantDate)
	cp.TransplantConfirmedAt = cloneTime(g.TransplantConfirmedAt)
	cp.TransplantDate = cloneTime(g.TransplantDate)
	cp.IsSuccessful = cloneBool(g.IsSuccessful)
	return cp
}

func cloneUserAlert(a UserAlert) UserAlert {
	cp := a
	cp.ReadAt = cloneTime(a.ReadAt)
	return cp
}

// sortedValues returns the map values ordered by creation time then ID so
// listings are stable across calls.
func sortedValues[T interface{ Identity() string }](m map[string]T, created func(T) time.Time, clone func(T) T) []T {
	out := make([]T, 0, len(m))
	for _, v := range m {
		out = append(out, clone(v))
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := created(out[i]), created(out[j])
		if !ci.Equal(cj) {
			return ci.Before(cj)
		}
		return out[i].Identity() < out[j].Identity()
	})
	return out
}

func plantCreated(p Plant) time.Time             { return p.CreatedAt }
func userCreated(u User) time.Time               { return u.CreatedAt }
func pollinationCreated(p Pollination) time.Time { return p.CreatedAt }
func seedSourceCreated(s SeedSource) time.Time   { return s.CreatedAt }
func germinationCreated(g Germination) time.Time { return g.CreatedAt }
func alertCreated(a Alert) time.Time             { return a.CreatedAt }
func userAlertCreated(a UserAlert) time.Time     { return a.CreatedAt }

// Store provides an in-memory transactional store for the core domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	return uuid.NewString()
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromMemoryState(s.state)
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = memoryStateFromSnapshot(migrateSnapshot(snapshot))
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the in-memory store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc overrides the time provider used to stamp CreatedAt/UpdatedAt.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// Transaction represents a mutation set applied to the store state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// TransactionView exposes a read-only snapshot of the transactional state to rules.
type transactionView struct {
	state *memoryState
}

func newTransactionView(state *memoryState) TransactionView {
	return transactionView{state: state}
}

func (v transactionView) ListPlants() []Plant {
	return sortedValues(v.state.plants, plantCreated, clonePlant)
}

func (v transactionView) ListUsers() []User {
	return sortedValues(v.state.users, userCreated, identity[User])
}

func (v transactionView) ListPollinations() []Pollination {
	return sortedValues(v.state.pollinations, pollinationCreated, clonePollination)
}

func (v transactionView) ListSeedSources() []SeedSource {
	return sortedValues(v.state.seedSources, seedSourceCreated, cloneSeedSource)
}

func (v transactionView) ListGerminations() []Germination {
	return sortedValues(v.state.germinations, germinationCreated, cloneGermination)
}

func (v transactionView) ListAlerts() []Alert {
	return sortedValues(v.state.alerts, alertCreated, identity[Alert])
}

func (v transactionView) ListUserAlerts() []UserAlert {
	return sortedValues(v.state.userAlerts, userAlertCreated, cloneUserAlert)
}

func (v transactionView) FindPlant(id string) (Plant, bool) {
	p, ok := v.state.plants[id]
	return clonePlant(p), ok
}

func (v transactionView) FindUser(id string) (User, bool) {
	u, ok := v.state.users[id]
	return u, ok
}

func (v transactionView) FindPollination(id string) (Pollination, bool) {
	p, ok := v.state.pollinations[id]
	return clonePollination(p), ok
}

func (v transactionView) FindSeedSource(id string) (SeedSource, bool) {
	s, ok := v.state.seedSources[id]
	return cloneSeedSource(s), ok
}

func (v transactionView) FindGermination(id string) (Germination, bool) {
	g, ok := v.state.germinations[id]
	return cloneGermination(g), ok
}

// RunInTransaction executes fn within a transactional copy of the store
// state. The write lock is held until commit, so a read-modify-write inside
// fn cannot interleave with another transaction.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot)
	return fn(view)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// Snapshot returns a read-only view over the transactional state.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state)
}

// unique scans existing records for one other than self whose key equals key.
func unique[T interface{ Identity() string }](m map[string]T, self string, collides func(T) bool) (string, bool) {
	for id, v := range m {
		if id == self {
			continue
		}
		if collides(v) {
			return v.Identity(), false
		}
	}
	return "", true
}

func (tx *transaction) checkPlant(p Plant) error {
	key := p.Key()
	if _, ok := unique(tx.state.plants, p.ID, func(o Plant) bool { return o.Key() == key }); !ok {
		return domain.UniqueConstraintError{Entity: domain.EntityPlant, Constraint: "plant_location_taxon",
			Key: fmt.Sprintf("%s|%s|%s|%s|%s", key.Genus, key.Species, key.Vivero, key.Mesa, key.Pared)}
	}
	return nil
}

func (tx *transaction) checkUser(u User) error {
	if _, ok := unique(tx.state.users, u.ID, func(o User) bool { return o.Username == u.Username }); !ok {
		return domain.UniqueConstraintError{Entity: domain.EntityUser, Constraint: "user_username", Key: u.Username}
	}
	if u.Email == "" {
		return nil
	}
	if _, ok := unique(tx.state.users, u.ID, func(o User) bool { return o.Email == u.Email }); !ok {
		return domain.UniqueConstraintError{Entity: domain.EntityUser, Constraint: "user_email", Key: u.Email}
	}
	return nil
}

func (tx *transaction) checkPollination(p Pollination) error {
	key := p.Key()
	if _, ok := unique(tx.state.pollinations, p.ID, func(o Pollination) bool { return o.Key().Matches(key) }); !ok {
		return domain.UniqueConstraintError{Entity: domain.EntityPollination, Constraint: "pollination_key",
			Key: fmt.Sprintf("%s|%s|%s|%s", key.ResponsibleID, key.Date.Format(time.DateOnly), key.MotherPlantID, key.Kind)}
	}
	return nil
}

func (tx *transaction) checkSeedSource(s SeedSource) error {
	if _, ok := unique(tx.state.seedSources, s.ID, func(o SeedSource) bool {
		return o.Name == s.Name && o.SourceType == s.SourceType
	}); !ok {
		return domain.UniqueConstraintError{Entity: domain.EntitySeedSource, Constraint: "seed_source_name_type",
			Key: fmt.Sprintf("%s|%s", s.Name, s.SourceType)}
	}
	return nil
}

func (tx *transaction) checkGermination(g Germination) error {
	key := g.Key()
	if _, ok := unique(tx.state.germinations, g.ID, func(o Germination) bool { return o.Key().Matches(key) }); !ok {
		return domain.UniqueConstraintError{Entity: domain.EntityGermination, Constraint: "germination_key",
			Key: fmt.Sprintf("%s|%s|%s|%s", key.ResponsibleID, key.Date.Format(time.DateOnly), key.PlantID, key.SeedSourceID)}
	}
	return nil
}

// CreatePlant stores a new plant within the transaction.
func (tx *transaction) CreatePlant(p Plant) (Plant, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.plants[p.ID]; exists {
		return Plant{}, fmt.Errorf("plant %q already exists", p.ID)
	}
	if err := tx.checkPlant(p); err != nil {
		return Plant{}, err
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.plants[p.ID] = clonePlant(p)
	tx.recordChange(Change{Entity: domain.EntityPlant, Action: domain.ActionCreate, After: clonePlant(p)})
	return clonePlant(p), nil
}

// UpdatePlant mutates a plant using the provided mutator function.
func (tx *transaction) UpdatePlant(id string, mutator func(*Plant) error) (Plant, error) {
	current, ok := tx.state.plants[id]
	if !ok {
		return Plant{}, fmt.Errorf("plant %q not found", id)
	}
	before := clonePlant(current)
	if err := mutator(&current); err != nil {
		return Plant{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	if err := tx.checkPlant(current); err != nil {
		return Plant{}, err
	}
	tx.state.plants[id] = clonePlant(current)
	tx.recordChange(Change{Entity: domain.EntityPlant, Action: domain.ActionUpdate, Before: before, After: clonePlant(current)})
	return clonePlant(current), nil
}

// CreateUser stores a new user.
func (tx *transaction) CreateUser(u User) (User, error) {
	if u.ID == "" {
		u.ID = tx.store.newID()
	}
	if _, exists := tx.state.users[u.ID]; exists {
		return User{}, fmt.Errorf("user %q already exists", u.ID)
	}
	if err := tx.checkUser(u); err != nil {
		return User{}, err
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.users[u.ID] = u
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionCreate, After: u})
	return u, nil
}

// UpdateUser mutates a user.
func (tx *transaction) UpdateUser(id string, mutator func(*User) error) (User, error) {
	current, ok := tx.state.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %q not found", id)
	}
	before := current
	if err := mutator(&current); err != nil {
		return User{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	if err := tx.checkUser(current); err != nil {
		return User{}, err
	}
	tx.state.users[id] = current
	tx.recordChange(Change{Entity: domain.EntityUser, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// CreatePollination stores a new pollination record.
func (tx *transaction) CreatePollination(p Pollination) (Pollination, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.pollinations[p.ID]; exists {
		return Pollination{}, fmt.Errorf("pollination %q already exists", p.ID)
	}
	if err := tx.checkPollination(p); err != nil {
		return Pollination{}, err
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.pollinations[p.ID] = clonePollination(p)
	tx.recordChange(Change{Entity: domain.EntityPollination, Action: domain.ActionCreate, After: clonePollination(p)})
	return clonePollination(p), nil
}

// UpdatePollination mutates a pollination record.
func (tx *transaction) UpdatePollination(id string, mutator func(*Pollination) error) (Pollination, error) {
	current, ok := tx.state.pollinations[id]
	if !ok {
		return Pollination{}, fmt.Errorf("pollination %q not found", id)
	}
	before := clonePollination(current)
	if err := mutator(&current); err != nil {
		return Pollination{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	if err := tx.checkPollination(current); err != nil {
		return Pollination{}, err
	}
	tx.state.pollinations[id] = clonePollination(current)
	tx.recordChange(Change{Entity: domain.EntityPollination, Action: domain.ActionUpdate, Before: before, After: clonePollination(current)})
	return clonePollination(current), nil
}

// CreateSeedSource stores a new seed source.
func (tx *transaction) CreateSeedSource(s SeedSource) (SeedSource, error) {
	if s.ID == "" {
		s.ID = tx.store.newID()
	}
	if _, exists := tx.state.seedSources[s.ID]; exists {
		return SeedSource{}, fmt.Errorf("seed source %q already exists", s.ID)
	}
	if err := tx.checkSeedSource(s); err != nil {
		return SeedSource{}, err
	}
	s.CreatedAt = tx.now
	s.UpdatedAt = tx.now
	tx.state.seedSources[s.ID] = cloneSeedSource(s)
	tx.recordChange(Change{Entity: domain.EntitySeedSource, Action: domain.ActionCreate, After: cloneSeedSource(s)})
	return cloneSeedSource(s), nil
}

// CreateGermination stores a new germination record.
func (tx *transaction) CreateGermination(g Germination) (Germination, error) {
	if g.ID == "" {
		g.ID = tx.store.newID()
	}
	if _, exists := tx.state.germinations[g.ID]; exists {
		return Germination{}, fmt.Errorf("germination %q already exists", g.ID)
	}
	if err := tx.checkGermination(g); err != nil {
		return Germination{}, err
	}
	g.CreatedAt = tx.now
	g.UpdatedAt = tx.now
	tx.state.germinations[g.ID] = cloneGermination(g)
	tx.recordChange(Change{Entity: domain.EntityGermination, Action: domain.ActionCreate, After: cloneGermination(g)})
	return cloneGermination(g), nil
}

// UpdateGermination mutates a germination record.
func (tx *transaction) UpdateGermination(id string, mutator func(*Germination) error) (Germination, error) {
	current, ok := tx.state.germinations[id]
	if !ok {
		return Germination{}, fmt.Errorf("germination %q not found", id)
	}
	before := cloneGermination(current)
	if err := mutator(&current); err != nil {
		return Germination{}, err
	}
	current.ID = id
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	if err := tx.checkGermination(current); err != nil {
		return Germination{}, err
	}
	tx.state.germinations[id] = cloneGermination(current)
	tx.recordChange(Change{Entity: domain.EntityGermination, Action: domain.ActionUpdate, Before: before, After: cloneGermination(current)})
	return cloneGermination(current), nil
}

// CreateAlert stores a new alert.
func (tx *transaction) CreateAlert(a Alert) (Alert, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.alerts[a.ID]; exists {
		return Alert{}, fmt.Errorf("alert %q already exists", a.ID)
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.alerts[a.ID] = a
	tx.recordChange(Change{Entity: domain.EntityAlert, Action: domain.ActionCreate, After: a})
	return a, nil
}

// CreateUserAlert stores a per-recipient alert delivery. The referenced
// alert must exist and each user receives an alert at most once.
func (tx *transaction) CreateUserAlert(a UserAlert) (UserAlert, error) {
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	if _, exists := tx.state.userAlerts[a.ID]; exists {
		return UserAlert{}, fmt.Errorf("user alert %q already exists", a.ID)
	}
	if _, ok := tx.state.alerts[a.AlertID]; !ok {
		return UserAlert{}, fmt.Errorf("alert %q not found", a.AlertID)
	}
	if _, ok := unique(tx.state.userAlerts, a.ID, func(o UserAlert) bool {
		return o.AlertID == a.AlertID && o.UserID == a.UserID
	}); !ok {
		return UserAlert{}, domain.UniqueConstraintError{Entity: domain.EntityUserAlert, Constraint: "user_alert_recipient",
			Key: fmt.Sprintf("%s|%s", a.AlertID, a.UserID)}
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.userAlerts[a.ID] = cloneUserAlert(a)
	tx.recordChange(Change{Entity: domain.EntityUserAlert, Action: domain.ActionCreate, After: cloneUserAlert(a)})
	return cloneUserAlert(a), nil
}

// UpdateUserAlert mutates a user alert.
func (tx *transaction) UpdateUserAlert(id string, mutator func(*UserAlert) error) (UserAlert, error) {
	current, ok := tx.state.userAlerts[id]
	if !ok {
		return UserAlert{}, fmt.Errorf("user alert %q not found", id)
	}
	before := cloneUserAlert(current)
	if err := mutator(&current); err != nil {
		return UserAlert{}, err
	}
	current.ID = id
	current.AlertID = before.AlertID
	current.UserID = before.UserID
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.userAlerts[id] = cloneUserAlert(current)
	tx.recordChange(Change{Entity: domain.EntityUserAlert, Action: domain.ActionUpdate, Before: before, After: cloneUserAlert(current)})
	return cloneUserAlert(current), nil
}

// Read helpers ---------------------------------------------------------------

func (s *Store) view() transactionView {
	return transactionView{state: &s.state}
}

// GetPlant retrieves a plant by ID from committed state.
func (s *Store) GetPlant(id string) (Plant, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindPlant(id)
}

// ListPlants returns all plants from committed state.
func (s *Store) ListPlants() []Plant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListPlants()
}

// GetPollination retrieves a pollination record by ID.
func (s *Store) GetPollination(id string) (Pollination, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindPollination(id)
}

// ListPollinations returns all pollination records.
func (s *Store) ListPollinations() []Pollination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListPollinations()
}

// GetGermination retrieves a germination record by ID.
func (s *Store) GetGermination(id string) (Germination, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().FindGermination(id)
}

// ListGerminations returns all germination records.
func (s *Store) ListGerminations() []Germination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListGerminations()
}

// ListSeedSources returns all seed sources.
func (s *Store) ListSeedSources() []SeedSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListSeedSources()
}

// ListUsers returns all users.
func (s *Store) ListUsers() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListUsers()
}

// ListAlerts returns all alerts.
func (s *Store) ListAlerts() []Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListAlerts()
}

// ListUserAlerts returns all per-recipient alerts.
func (s *Store) ListUserAlerts() []UserAlert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view().ListUserAlerts()
}
