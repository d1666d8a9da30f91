package validation_test

import (
	"errors"
	"testing"
	"time"

	"orchidlab/pkg/domain"
)

// fixtureView is a static TransactionView backed by slices.
type fixtureView struct {
	plants       []domain.Plant
	users        []domain.User
	pollinations []domain.PollinationRecord
	sources      []domain.SeedSource
	germinations []domain.GerminationRecord
}

func (v fixtureView) ListPlants() []domain.Plant                   { return v.plants }
func (v fixtureView) ListUsers() []domain.User                     { return v.users }
func (v fixtureView) ListPollinations() []domain.PollinationRecord { return v.pollinations }
func (v fixtureView) ListSeedSources() []domain.SeedSource         { return v.sources }
func (v fixtureView) ListGerminations() []domain.GerminationRecord { return v.germinations }
func (v fixtureView) ListAlerts() []domain.Alert                   { return nil }
func (v fixtureView) ListUserAlerts() []domain.UserAlert           { return nil }

func (v fixtureView) FindPlant(id string) (domain.Plant, bool) {
	return find(v.plants, id)
}

func (v fixtureView) FindUser(id string) (domain.User, bool) {
	return find(v.users, id)
}

func (v fixtureView) FindPollination(id string) (domain.PollinationRecord, bool) {
	return find(v.pollinations, id)
}

func (v fixtureView) FindSeedSource(id string) (domain.SeedSource, bool) {
	return find(v.sources, id)
}

func (v fixtureView) FindGermination(id string) (domain.GerminationRecord, bool) {
	return find(v.germinations, id)
}

func find[T interface{ Identity() string }](items []T, id string) (T, bool) {
	for _, item := range items {
		if item.Identity() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func plant(id, genus, species string) *domain.Plant {
	return &domain.Plant{Base: domain.Base{ID: id}, Genus: genus, Species: species, Vivero: "V1", Mesa: "M1", Pared: "P1"}
}

// expectCode fails the test unless err carries the wanted validation code.
func expectCode(t *testing.T, err error, want string) *domain.ValidationError {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s, got nil", want)
	}
	var verr *domain.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *domain.ValidationError, got %T (%v)", err, err)
	}
	if verr.Code != want {
		t.Fatalf("expected code %s, got %s (%s)", want, verr.Code, verr.Message)
	}
	return verr
}

func expectPass(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}
