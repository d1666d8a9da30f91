package core_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"orchidlab/internal/core"
	"orchidlab/pkg/domain"
)

// labNow is the wall clock every lab fixture starts at.
var labNow = time.Date(2024, 6, 15, 9, 30, 0, 0, time.UTC)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func strPtr(v string) *string { return &v }

func timePtr(v time.Time) *time.Time { return &v }

func floatPtr(v float64) *float64 { return &v }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock { return &testClock{now: now} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (c *testClock) Set(now time.Time) {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
}

// lab is a service seeded with two users and three plants.
type lab struct {
	ctx     context.Context
	svc     *core.Service
	clock   *testClock
	admin   core.User
	tech    core.User
	mother  core.Plant
	sibling core.Plant
	phal    core.Plant
}

func newLab(t *testing.T, opts ...core.ServiceOption) *lab {
	t.Helper()
	clock := newTestClock(labNow)
	l := &lab{
		ctx:   context.Background(),
		clock: clock,
		svc:   core.NewInMemoryService(nil, append([]core.ServiceOption{core.WithClock(clock)}, opts...)...),
	}
	l.admin = l.mustUser(t, core.User{Username: "admin", Email: "admin@lab.test", Role: core.RoleAdmin, Active: true})
	l.tech = l.mustUser(t, core.User{Username: "ana", Email: "ana@lab.test", Role: core.RoleTechnician, Active: true})
	l.mother = l.mustPlant(t, core.Plant{Genus: "Cattleya", Species: "trianae", Vivero: "V1", Mesa: "M1", Pared: "P1"})
	l.sibling = l.mustPlant(t, core.Plant{Genus: "Cattleya", Species: "trianae", Vivero: "V1", Mesa: "M1", Pared: "P2"})
	l.phal = l.mustPlant(t, core.Plant{Genus: "Phalaenopsis", Species: "amabilis", Vivero: "V2", Mesa: "M3", Pared: "P1"})
	return l
}

func (l *lab) mustUser(t *testing.T, user core.User) core.User {
	t.Helper()
	created, _, err := l.svc.CreateUser(l.ctx, user)
	if err != nil {
		t.Fatalf("create user %s: %v", user.Username, err)
	}
	return created
}

func (l *lab) mustPlant(t *testing.T, plant core.Plant) core.Plant {
	t.Helper()
	created, _, err := l.svc.CreatePlant(l.ctx, plant)
	if err != nil {
		t.Fatalf("create plant %s %s: %v", plant.Genus, plant.Species, err)
	}
	return created
}

func (l *lab) selfPollination(date time.Time) core.PollinationRecord {
	return core.PollinationRecord{
		ResponsibleID:    l.tech.ID,
		Type:             domain.NewPollinationType(domain.KindSelf),
		PollinationDate:  date,
		MotherPlantID:    l.mother.ID,
		Climate:          domain.ClimateCondition{Climate: domain.ClimateIntermediate},
		CapsulesQuantity: 3,
	}
}

func (l *lab) mustPollinate(t *testing.T, record core.PollinationRecord) core.PollinationRecord {
	t.Helper()
	created, _, err := l.svc.CreatePollination(l.ctx, record)
	if err != nil {
		t.Fatalf("create pollination: %v (codes %v)", err, blockedCodes(err))
	}
	return created
}

// confirmedSource stores a confirmed self pollination of the mother plant
// and a seed source collected from it.
func (l *lab) confirmedSource(t *testing.T) core.SeedSource {
	t.Helper()
	p := l.mustPollinate(t, l.selfPollination(day(2024, 6, 1)))
	if _, _, err := l.svc.ConfirmMaturation(l.ctx, p.ID, true); err != nil {
		t.Fatalf("confirm maturation: %v", err)
	}
	source, _, err := l.svc.CreateSeedSource(l.ctx, core.SeedSource{
		Name:                "CT-01",
		SourceType:          domain.SourceSelfPollination,
		PollinationRecordID: strPtr(p.ID),
		CollectionDate:      timePtr(day(2024, 6, 5)),
	})
	if err != nil {
		t.Fatalf("create seed source: %v (codes %v)", err, blockedCodes(err))
	}
	return source
}

func (l *lab) germination(source core.SeedSource, date time.Time) core.GerminationRecord {
	return core.GerminationRecord{
		ResponsibleID:       l.tech.ID,
		GerminationDate:     date,
		PlantID:             l.mother.ID,
		SeedSourceID:        source.ID,
		Condition:           domain.GerminationCondition{Climate: domain.ClimateIntermediate},
		SeedsPlanted:        100,
		SeedlingsGerminated: 40,
	}
}

func (l *lab) mustGerminate(t *testing.T, record core.GerminationRecord) core.GerminationRecord {
	t.Helper()
	created, _, err := l.svc.CreateGermination(l.ctx, record)
	if err != nil {
		t.Fatalf("create germination: %v (codes %v)", err, blockedCodes(err))
	}
	return created
}

// blockedCodes returns the violation codes carried by a blocked operation.
func blockedCodes(err error) []string {
	var blocked core.RuleViolationError
	if errors.As(err, &blocked) {
		return blocked.Result.Codes()
	}
	return nil
}

func expectBlocked(t *testing.T, err error, codes ...string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected operation to be blocked by %v", codes)
	}
	got := blockedCodes(err)
	if got == nil {
		t.Fatalf("expected RuleViolationError, got %T: %v", err, err)
	}
	for _, code := range codes {
		if !slices.Contains(got, code) {
			t.Fatalf("expected code %s in %v", code, got)
		}
	}
}

func violationsWith(res core.Result, code string) []core.Violation {
	var out []core.Violation
	for _, v := range res.Violations {
		if v.Rule == code {
			out = append(out, v)
		}
	}
	return out
}
