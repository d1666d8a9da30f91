package validation

import (
	"time"

	"orchidlab/pkg/domain"
)

// Identified is any record exposing its ID.
type Identified interface {
	Identity() string
}

// UniqueCombination fails when a record other than excludeID satisfies match.
// It is the generic form of the entity-specific duplicate checks below.
func UniqueCombination[T Identified](records []T, match func(T) bool, excludeID, description string) error {
	if _, found := findDuplicate(records, match, excludeID); found {
		return domain.NewValidationError(domain.CodeDuplicateRecord, "",
			"a record with the same %s already exists", description)
	}
	return nil
}

func findDuplicate[T Identified](records []T, match func(T) bool, excludeID string) (T, bool) {
	for _, r := range records {
		if excludeID != "" && r.Identity() == excludeID {
			continue
		}
		if match(r) {
			return r, true
		}
	}
	var zero T
	return zero, false
}

// PollinationDuplicate rejects a second pollination by the same user on the
// same day with the same mother, father and type. A missing father only
// collides with other records that also lack one.
func PollinationDuplicate(view domain.TransactionView, key domain.PollinationKey, excludeID string) error {
	existing, found := findDuplicate(view.ListPollinations(), func(p domain.PollinationRecord) bool {
		return p.Key().Matches(key)
	}, excludeID)
	if !found {
		return nil
	}
	father := "none"
	if key.FatherPlantID != nil {
		father = *key.FatherPlantID
	}
	return domain.NewValidationError(domain.CodeDuplicatePollination, "",
		"pollination %s already records responsible %s, date %s, mother %s, father %s, type %s",
		existing.ID, key.ResponsibleID, key.Date.Format(time.DateOnly), key.MotherPlantID, father, key.Kind)
}

// GerminationDuplicate rejects a second germination by the same user on the
// same day for the same plant and seed source.
func GerminationDuplicate(view domain.TransactionView, key domain.GerminationKey, excludeID string) error {
	existing, found := findDuplicate(view.ListGerminations(), func(g domain.GerminationRecord) bool {
		return g.Key().Matches(key)
	}, excludeID)
	if !found {
		return nil
	}
	return domain.NewValidationError(domain.CodeDuplicateGermination, "",
		"germination %s already records responsible %s, date %s, plant %s, seed source %s",
		existing.ID, key.ResponsibleID, key.Date.Format(time.DateOnly), key.PlantID, key.SeedSourceID)
}

// PlantDuplicate enforces one plant per taxonomy and location.
func PlantDuplicate(view domain.TransactionView, key domain.PlantKey, excludeID string) error {
	existing, found := findDuplicate(view.ListPlants(), func(p domain.Plant) bool {
		return p.Key() == key
	}, excludeID)
	if !found {
		return nil
	}
	return domain.NewValidationError(domain.CodeDuplicatePlant, "",
		"plant %s already exists as %s %s at vivero %s, mesa %s, pared %s",
		existing.ID, key.Genus, key.Species, key.Vivero, key.Mesa, key.Pared)
}

// UserDuplicate checks username and email independently. When both collide
// the returned domain.ValidationErrors holds both failures.
func UserDuplicate(view domain.TransactionView, username, email, excludeID string) error {
	users := view.ListUsers()
	var errs domain.ValidationErrors
	if username != "" {
		if _, found := findDuplicate(users, func(u domain.User) bool { return u.Username == username }, excludeID); found {
			errs = append(errs, domain.NewValidationError(domain.CodeDuplicateUser, "username",
				"username %q is already taken", username))
		}
	}
	if email != "" {
		if _, found := findDuplicate(users, func(u domain.User) bool { return u.Email == email }, excludeID); found {
			errs = append(errs, domain.NewValidationError(domain.CodeDuplicateUser, "email",
				"email %q is already registered", email))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// SeedSourceDuplicate enforces unique (name, source type) pairs.
func SeedSourceDuplicate(view domain.TransactionView, name string, sourceType domain.SeedSourceType, excludeID string) error {
	existing, found := findDuplicate(view.ListSeedSources(), func(s domain.SeedSource) bool {
		return s.Name == name && s.SourceType == sourceType
	}, excludeID)
	if !found {
		return nil
	}
	return domain.NewValidationError(domain.CodeDuplicateSeedSource, "name",
		"seed source %s already uses name %q with type %s", existing.ID, name, sourceType)
}
