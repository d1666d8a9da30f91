package core_test

import (
	"errors"
	"testing"
	"time"

	"orchidlab/internal/core"
	"orchidlab/internal/validation"
	"orchidlab/pkg/domain"
)

func TestCreatePollinationDerivesMaturationAndAlerts(t *testing.T) {
	l := newLab(t)
	rec := l.selfPollination(day(2024, 6, 1))
	rec.MaturationConfirmed = true
	rec.IsSuccessful = new(bool)

	created, res, err := l.svc.CreatePollination(l.ctx, rec)
	if err != nil {
		t.Fatalf("create pollination: %v", err)
	}
	if len(res.Violations) != 0 {
		t.Fatalf("unexpected violations: %+v", res.Violations)
	}
	if created.MaturationConfirmed || created.IsSuccessful != nil {
		t.Fatalf("new pollination must start unconfirmed: %+v", created)
	}
	want := domain.AddDays(day(2024, 6, 1), domain.DefaultMaturationDays)
	if created.EstimatedMaturationDate == nil || !created.EstimatedMaturationDate.Equal(want) {
		t.Fatalf("expected estimate %s, got %v", want, created.EstimatedMaturationDate)
	}
	if !created.CreatedAt.Equal(labNow) {
		t.Fatalf("expected store to stamp service clock, got %s", created.CreatedAt)
	}

	for _, user := range []core.User{l.tech, l.admin} {
		alerts, err := l.svc.ListUserAlerts(l.ctx, user.ID, false)
		if err != nil {
			t.Fatalf("list alerts: %v", err)
		}
		if len(alerts) != 1 || alerts[0].Alert.Kind != domain.AlertPollinationCreated || alerts[0].Alert.EntityID != created.ID {
			t.Fatalf("unexpected alerts for %s: %+v", user.Username, alerts)
		}
	}
}

func TestCreatePollinationUsesConfiguredMaturationDays(t *testing.T) {
	l := newLab(t, core.WithDefaultMaturationDays(150))
	rec := l.selfPollination(day(2024, 6, 1))
	rec.Type.MaturationDays = 0

	created := l.mustPollinate(t, rec)
	if created.Type.MaturationDays != 150 {
		t.Fatalf("expected 150 maturation days, got %d", created.Type.MaturationDays)
	}
	if want := day(2024, 10, 29); !created.EstimatedMaturationDate.Equal(want) {
		t.Fatalf("expected %s, got %s", want, created.EstimatedMaturationDate)
	}
}

func TestBlockedPollinationCommitsNothing(t *testing.T) {
	l := newLab(t)
	rec := l.selfPollination(day(2024, 6, 1))
	rec.Type = domain.NewPollinationType(domain.KindSibling)
	rec.FatherPlantID = strPtr(l.mother.ID)

	_, res, err := l.svc.CreatePollination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeSamePhysicalPlantSibling)
	if !res.HasBlocking() {
		t.Fatalf("expected blocking result, got %+v", res)
	}

	ds, err := l.svc.Dataset(l.ctx)
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	if len(ds.Pollinations) != 0 {
		t.Fatalf("blocked pollination was stored: %+v", ds.Pollinations)
	}
	alerts, _ := l.svc.ListUserAlerts(l.ctx, l.admin.ID, false)
	if len(alerts) != 0 {
		t.Fatalf("blocked pollination raised alerts: %+v", alerts)
	}
}

func TestCreatePollinationReportsEveryFailure(t *testing.T) {
	l := newLab(t)
	_, _, err := l.svc.CreatePollination(l.ctx, core.PollinationRecord{
		Type:            domain.NewPollinationType(domain.KindSelf),
		PollinationDate: day(2024, 7, 1),
		MotherPlantID:   "ghost",
	})
	expectBlocked(t, err,
		domain.CodeFutureDateNotAllowed,
		domain.CodeMissingField,
		domain.CodeMissingReference,
		domain.CodeInvalidCapsulesQuantity,
		domain.CodeMissingClimateCondition,
	)
}

func TestPollinationWithoutMotherOrType(t *testing.T) {
	l := newLab(t)
	rec := l.selfPollination(day(2024, 6, 1))
	rec.MotherPlantID = ""
	rec.Type = domain.PollinationType{}

	_, _, err := l.svc.CreatePollination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeMissingMotherPlant)

	rec = l.selfPollination(day(2024, 6, 1))
	rec.Type = domain.PollinationType{}
	_, _, err = l.svc.CreatePollination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeMissingPollinationType)
}

func TestDuplicatePollinationRejected(t *testing.T) {
	l := newLab(t)
	l.mustPollinate(t, l.selfPollination(day(2024, 6, 1)))

	_, _, err := l.svc.CreatePollination(l.ctx, l.selfPollination(day(2024, 6, 1)))
	expectBlocked(t, err, domain.CodeDuplicatePollination, domain.CodePollinationTooFrequent)
}

func TestPollinationTiming(t *testing.T) {
	l := newLab(t)
	l.mustPollinate(t, l.selfPollination(day(2024, 6, 1)))

	_, _, err := l.svc.CreatePollination(l.ctx, l.selfPollination(day(2024, 6, 4)))
	expectBlocked(t, err, domain.CodePollinationTooFrequent)

	l.mustPollinate(t, l.selfPollination(day(2024, 6, 12)))

	other := l.selfPollination(day(2024, 6, 13))
	other.MotherPlantID = l.sibling.ID
	l.mustPollinate(t, other)
}

func TestHybridClimateAdvisoriesDoNotBlock(t *testing.T) {
	l := newLab(t)
	rec := l.selfPollination(day(2024, 6, 1))
	rec.Type = domain.NewPollinationType(domain.KindHybrid)
	rec.FatherPlantID = strPtr(l.phal.ID)
	rec.Climate = domain.ClimateCondition{Climate: domain.ClimateWarm, Temperature: floatPtr(40)}

	_, res, err := l.svc.CreatePollination(l.ctx, rec)
	if err != nil {
		t.Fatalf("create hybrid: %v (codes %v)", err, blockedCodes(err))
	}
	advisories := violationsWith(res, domain.CodeClimateAdvisory)
	if len(advisories) != 2 {
		t.Fatalf("expected two climate advisories, got %+v", res.Violations)
	}
	for _, v := range advisories {
		if v.Severity != core.SeverityLog || v.Field != "climate_condition" {
			t.Fatalf("unexpected advisory %+v", v)
		}
	}
}

func TestHybridSameSpeciesPolicy(t *testing.T) {
	build := func(l *lab) core.PollinationRecord {
		rec := l.selfPollination(day(2024, 6, 1))
		rec.Type = domain.NewPollinationType(domain.KindHybrid)
		rec.FatherPlantID = strPtr(l.sibling.ID)
		return rec
	}

	blocking := newLab(t)
	_, _, err := blocking.svc.CreatePollination(blocking.ctx, build(blocking))
	expectBlocked(t, err, domain.CodeSameSpeciesHybrid)

	warning := newLab(t, core.WithHybridSameSpeciesPolicy(validation.HybridSameSpeciesWarn))
	_, res, err := warning.svc.CreatePollination(warning.ctx, build(warning))
	if err != nil {
		t.Fatalf("warn policy should allow the cross: %v", err)
	}
	found := violationsWith(res, domain.CodeSameSpeciesHybrid)
	if len(found) != 1 || found[0].Severity != core.SeverityWarn {
		t.Fatalf("expected one warning, got %+v", res.Violations)
	}
}

func TestNewPlantCompatibility(t *testing.T) {
	l := newLab(t)
	rec := l.selfPollination(day(2024, 6, 1))
	rec.NewPlantID = strPtr(l.phal.ID)
	_, _, err := l.svc.CreatePollination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeIncompatibleNewPlantSelf)

	rec.NewPlantID = strPtr(l.mother.ID)
	_, _, err = l.svc.CreatePollination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeNewPlantSameAsParent)

	rec.NewPlantID = strPtr(l.sibling.ID)
	l.mustPollinate(t, rec)
}

func TestCapsuleCeilingUsesMotherGenus(t *testing.T) {
	l := newLab(t)
	rec := l.selfPollination(day(2024, 6, 1))
	rec.MotherPlantID = l.phal.ID
	rec.CapsulesQuantity = 11

	_, _, err := l.svc.CreatePollination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeExcessiveCapsulesQuantity)

	rec.CapsulesQuantity = 10
	l.mustPollinate(t, rec)
}

func TestDeactivatedPlantCannotBePollinated(t *testing.T) {
	l := newLab(t)
	plant, _, err := l.svc.DeactivatePlant(l.ctx, l.mother.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if plant.Active() || !plant.DeactivatedAt.Equal(labNow) {
		t.Fatalf("unexpected deactivation %+v", plant)
	}

	l.clock.Advance(time.Hour)
	again, _, err := l.svc.DeactivatePlant(l.ctx, l.mother.ID)
	if err != nil {
		t.Fatalf("deactivate again: %v", err)
	}
	if !again.DeactivatedAt.Equal(labNow) {
		t.Fatalf("deactivation timestamp changed: %s", again.DeactivatedAt)
	}

	_, _, err = l.svc.CreatePollination(l.ctx, l.selfPollination(day(2024, 6, 1)))
	expectBlocked(t, err, domain.CodeInactivePlant)

	var notFound core.ErrNotFound
	if _, _, err := l.svc.DeactivatePlant(l.ctx, "missing"); !errors.As(err, &notFound) || notFound.Entity != core.EntityPlant {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePlantValidation(t *testing.T) {
	l := newLab(t)
	dup := l.mother
	dup.ID = ""
	_, _, err := l.svc.CreatePlant(l.ctx, dup)
	expectBlocked(t, err, domain.CodeDuplicatePlant)

	_, _, err = l.svc.CreatePlant(l.ctx, core.Plant{Species: "trianae"})
	expectBlocked(t, err, domain.CodeMissingField)

	res, err := l.svc.ValidatePlant(l.ctx, core.Plant{Genus: "Vanda", Species: "coerulea"})
	if err != nil || len(res.Violations) != 0 {
		t.Fatalf("expected valid plant: %+v %v", res, err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	l := newLab(t)
	_, _, err := l.svc.CreateUser(l.ctx, core.User{Username: "ana", Email: "other@lab.test", Role: core.RoleViewer})
	expectBlocked(t, err, domain.CodeDuplicateUser)

	_, _, err = l.svc.CreateUser(l.ctx, core.User{Username: "luis", Role: "owner"})
	expectBlocked(t, err, domain.CodeMissingField)

	res, err := l.svc.ValidateUser(l.ctx, core.User{Username: "luis", Email: "admin@lab.test", Role: core.RoleViewer})
	if err != nil {
		t.Fatalf("validate user: %v", err)
	}
	if len(violationsWith(res, domain.CodeDuplicateUser)) != 1 {
		t.Fatalf("expected duplicate email, got %+v", res.Violations)
	}
}

func TestValidatePollinationRecordDoesNotWrite(t *testing.T) {
	l := newLab(t)
	res, err := l.svc.ValidatePollinationRecord(l.ctx, l.selfPollination(day(2024, 6, 1)))
	if err != nil || res.HasBlocking() {
		t.Fatalf("expected valid record: %+v %v", res, err)
	}
	stored := l.mustPollinate(t, l.selfPollination(day(2024, 6, 1)))

	res, err = l.svc.ValidatePollinationRecord(l.ctx, stored)
	if err != nil || res.HasBlocking() {
		t.Fatalf("re-validating a stored record should exclude itself: %+v %v", res, err)
	}

	ds, _ := l.svc.Dataset(l.ctx)
	if len(ds.Pollinations) != 1 {
		t.Fatalf("validation must not write, have %d pollinations", len(ds.Pollinations))
	}
}

func TestConfirmMaturationOnce(t *testing.T) {
	l := newLab(t)
	p := l.mustPollinate(t, l.selfPollination(day(2024, 6, 1)))

	l.clock.Advance(time.Hour)
	confirmedAt := l.clock.Now()
	updated, _, err := l.svc.ConfirmMaturation(l.ctx, p.ID, true)
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if !updated.MaturationConfirmed || updated.IsSuccessful == nil || !*updated.IsSuccessful {
		t.Fatalf("unexpected confirmation %+v", updated)
	}
	if !updated.MaturationConfirmedAt.Equal(confirmedAt) {
		t.Fatalf("expected confirmation at %s, got %s", confirmedAt, updated.MaturationConfirmedAt)
	}

	l.clock.Advance(time.Hour)
	_, res, err := l.svc.ConfirmMaturation(l.ctx, p.ID, false)
	if domain.CodeOf(err) != domain.CodeMaturationAlreadyConfirmed {
		t.Fatalf("expected %s, got %v", domain.CodeMaturationAlreadyConfirmed, err)
	}
	if len(violationsWith(res, domain.CodeMaturationAlreadyConfirmed)) != 1 {
		t.Fatalf("expected violation in result, got %+v", res.Violations)
	}

	ds, _ := l.svc.Dataset(l.ctx)
	stored := ds.Pollinations[0]
	if !stored.MaturationConfirmedAt.Equal(confirmedAt) || !*stored.IsSuccessful {
		t.Fatalf("second confirmation modified the record: %+v", stored)
	}

	alerts, _ := l.svc.ListUserAlerts(l.ctx, l.tech.ID, false)
	if len(alerts) != 2 || alerts[0].Alert.Kind != domain.AlertMaturationConfirmed {
		t.Fatalf("expected confirmation alert first, got %+v", alerts)
	}

	var notFound core.ErrNotFound
	if _, _, err := l.svc.ConfirmMaturation(l.ctx, "missing", true); !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSeedSourceOrigin(t *testing.T) {
	l := newLab(t)
	p := l.mustPollinate(t, l.selfPollination(day(2024, 6, 1)))

	_, _, err := l.svc.CreateSeedSource(l.ctx, core.SeedSource{Name: "CT-01", SourceType: domain.SourceSelfPollination, PollinationRecordID: strPtr(p.ID)})
	expectBlocked(t, err, domain.CodeUnconfirmedPollinationSource)

	_, _, err = l.svc.CreateSeedSource(l.ctx, core.SeedSource{Name: "CT-02", SourceType: domain.SourceSibling})
	expectBlocked(t, err, domain.CodeMissingPollinationRecord)

	_, _, err = l.svc.CreateSeedSource(l.ctx, core.SeedSource{Name: "CT-03", SourceType: domain.SourceHybrid, PollinationRecordID: strPtr("ghost")})
	expectBlocked(t, err, domain.CodeMissingReference)

	_, _, err = l.svc.CreateSeedSource(l.ctx, core.SeedSource{Name: "EXT-01", SourceType: domain.SourceExternal})
	expectBlocked(t, err, domain.CodeMissingExternalSupplier)

	_, _, err = l.svc.CreateSeedSource(l.ctx, core.SeedSource{Name: "X", SourceType: "Unknown"})
	expectBlocked(t, err, domain.CodeInvalidSourceType)

	_, _, err = l.svc.CreateSeedSource(l.ctx, core.SeedSource{Name: "EXT-02", SourceType: domain.SourceExternal, ExternalSupplier: "Andes", CollectionDate: timePtr(day(2024, 7, 1))})
	expectBlocked(t, err, domain.CodeFutureDateNotAllowed)

	ext, _, err := l.svc.CreateSeedSource(l.ctx, core.SeedSource{Name: "EXT-02", SourceType: domain.SourceExternal, ExternalSupplier: "Andes"})
	if err != nil {
		t.Fatalf("create external source: %v", err)
	}
	_, _, err = l.svc.CreateSeedSource(l.ctx, core.SeedSource{Name: ext.Name, SourceType: domain.SourceExternal, ExternalSupplier: "Other"})
	expectBlocked(t, err, domain.CodeDuplicateSeedSource)
}

func TestCreateGerminationDerivesTransplantDate(t *testing.T) {
	l := newLab(t)
	source := l.confirmedSource(t)

	created, res, err := l.svc.CreateGermination(l.ctx, l.germination(source, day(2024, 6, 10)))
	if err != nil {
		t.Fatalf("create germination: %v (codes %v)", err, blockedCodes(err))
	}
	if res.HasBlocking() {
		t.Fatalf("unexpected blocking result %+v", res)
	}
	if created.TransplantDays != domain.DefaultTransplantDays {
		t.Fatalf("expected default transplant days, got %d", created.TransplantDays)
	}
	if want := day(2024, 9, 8); created.EstimatedTransplantDate == nil || !created.EstimatedTransplantDate.Equal(want) {
		t.Fatalf("expected estimate %s, got %v", want, created.EstimatedTransplantDate)
	}
	if created.TransplantConfirmed {
		t.Fatalf("new germination must not be transplanted")
	}

	alerts, _ := l.svc.ListUserAlerts(l.ctx, l.admin.ID, false)
	var raised bool
	for _, a := range alerts {
		if a.Alert.Kind == domain.AlertGerminationCreated && a.Alert.EntityID == created.ID {
			raised = true
		}
	}
	if !raised {
		t.Fatalf("expected germination alert, got %+v", alerts)
	}

	_, _, err = l.svc.CreateGermination(l.ctx, l.germination(source, day(2024, 6, 10)))
	expectBlocked(t, err, domain.CodeDuplicateGermination)
}

func TestGerminationValidation(t *testing.T) {
	l := newLab(t)
	source := l.confirmedSource(t)

	rec := l.germination(source, day(2024, 6, 10))
	rec.SeedlingsGerminated = 120
	_, _, err := l.svc.CreateGermination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeExcessiveSeedlings)

	rec = l.germination(source, day(2024, 6, 10))
	rec.PlantID = l.phal.ID
	_, _, err = l.svc.CreateGermination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeSuboptimalClimateForGenus)

	rec = l.germination(source, day(2024, 6, 10))
	rec.Condition.Humidity = floatPtr(120)
	rec.Condition.LightHours = floatPtr(30)
	_, _, err = l.svc.CreateGermination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeInvalidHumidity, domain.CodeInvalidLightHours)

	rec = l.germination(source, day(2024, 6, 10))
	rec.SeedSourceID = "ghost"
	rec.PlantID = ""
	_, _, err = l.svc.CreateGermination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeMissingReference, domain.CodeMissingField)

	rec = l.germination(source, day(2024, 6, 10))
	rec.TransplantDate = timePtr(day(2024, 6, 1))
	_, _, err = l.svc.CreateGermination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeInvalidTransplantDate)
}

func TestOldSeedsWarnOrBlock(t *testing.T) {
	l := newLab(t)
	l.clock.Set(time.Date(2027, 7, 1, 9, 0, 0, 0, time.UTC))
	old, _, err := l.svc.CreateSeedSource(l.ctx, core.SeedSource{
		Name: "EXT-OLD", SourceType: domain.SourceExternal, ExternalSupplier: "Andes",
		CollectionDate: timePtr(day(2024, 6, 1)),
	})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	// 800 days: past the 730-day ceiling, within 1.5x.
	rec := l.germination(old, day(2026, 8, 10))
	_, res, err := l.svc.CreateGermination(l.ctx, rec)
	if err != nil {
		t.Fatalf("old seeds should only warn: %v (codes %v)", err, blockedCodes(err))
	}
	if found := violationsWith(res, domain.CodeSeedsTooOld); len(found) != 1 || found[0].Severity != core.SeverityWarn {
		t.Fatalf("expected seeds_too_old warning, got %+v", res.Violations)
	}

	// 1114 days: past 1.5x the ceiling.
	_, _, err = l.svc.CreateGermination(l.ctx, l.germination(old, day(2027, 6, 20)))
	expectBlocked(t, err, domain.CodeSeedsNotViable)
}

func TestConfirmTransplantFlow(t *testing.T) {
	l := newLab(t)
	source := l.confirmedSource(t)
	g := l.mustGerminate(t, l.germination(source, day(2024, 6, 10)))

	_, _, err := l.svc.ConfirmTransplant(l.ctx, g.ID, nil, true)
	if domain.CodeOf(err) != domain.CodeTransplantTooEarly {
		t.Fatalf("expected transplant_too_early, got %v", err)
	}

	l.clock.Set(time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC))
	_, _, err = l.svc.ConfirmTransplant(l.ctx, g.ID, timePtr(day(2024, 9, 5)), true)
	if domain.CodeOf(err) != domain.CodeFutureTransplantDate {
		t.Fatalf("expected future_transplant_date, got %v", err)
	}

	updated, _, err := l.svc.ConfirmTransplant(l.ctx, g.ID, nil, true)
	if err != nil {
		t.Fatalf("confirm transplant: %v", err)
	}
	if !updated.TransplantConfirmed || updated.TransplantDate == nil || !updated.TransplantDate.Equal(day(2024, 9, 1)) {
		t.Fatalf("unexpected transplant %+v", updated)
	}
	if updated.IsSuccessful == nil || !*updated.IsSuccessful {
		t.Fatalf("expected successful transplant")
	}

	_, res, err := l.svc.ConfirmTransplant(l.ctx, g.ID, nil, false)
	if domain.CodeOf(err) != domain.CodeAlreadyTransplanted {
		t.Fatalf("expected already_transplanted, got %v", err)
	}
	if len(violationsWith(res, domain.CodeAlreadyTransplanted)) != 1 {
		t.Fatalf("expected violation in result, got %+v", res.Violations)
	}

	var notFound core.ErrNotFound
	if _, _, err := l.svc.ConfirmTransplant(l.ctx, "missing", nil, true); !errors.As(err, &notFound) || notFound.Entity != core.EntityGermination {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConfirmTransplantTodayKeepsMinimumGap(t *testing.T) {
	l := newLab(t)
	source := l.confirmedSource(t)
	rec := l.germination(source, day(2024, 6, 10))
	rec.TransplantDays = 30
	g := l.mustGerminate(t, rec)

	// 17 days after sowing: inside the early tolerance of the estimate but
	// short of the minimum gap.
	l.clock.Set(time.Date(2024, 6, 27, 8, 0, 0, 0, time.UTC))
	_, _, err := l.svc.ConfirmTransplant(l.ctx, g.ID, timePtr(day(2024, 6, 27)), true)
	if domain.CodeOf(err) != domain.CodeTransplantTooEarly {
		t.Fatalf("explicit date: expected transplant_too_early, got %v", err)
	}
	_, _, err = l.svc.ConfirmTransplant(l.ctx, g.ID, nil, true)
	if domain.CodeOf(err) != domain.CodeTransplantTooEarly {
		t.Fatalf("implicit date: expected transplant_too_early, got %v", err)
	}
	ds, err := l.svc.Dataset(l.ctx)
	if err != nil {
		t.Fatalf("dataset: %v", err)
	}
	if len(ds.Germinations) != 1 || ds.Germinations[0].TransplantConfirmed {
		t.Fatalf("rejected transplant must not be stored: %+v", ds.Germinations)
	}

	l.clock.Set(time.Date(2024, 7, 10, 8, 0, 0, 0, time.UTC))
	if _, _, err := l.svc.ConfirmTransplant(l.ctx, g.ID, nil, true); err != nil {
		t.Fatalf("confirm after the minimum gap: %v", err)
	}
}

func TestGerminationRejectsShortTransplantOffset(t *testing.T) {
	l := newLab(t)
	source := l.confirmedSource(t)
	rec := l.germination(source, day(2024, 6, 10))
	rec.TransplantDays = 10
	_, _, err := l.svc.CreateGermination(l.ctx, rec)
	expectBlocked(t, err, domain.CodeInvalidTransplantDays)
}

func TestConfirmTransplantRequiresSeedlings(t *testing.T) {
	l := newLab(t)
	source := l.confirmedSource(t)
	rec := l.germination(source, day(2024, 6, 11))
	rec.SeedlingsGerminated = 0
	g := l.mustGerminate(t, rec)

	_, _, err := l.svc.ConfirmTransplant(l.ctx, g.ID, nil, true)
	if domain.CodeOf(err) != domain.CodeNoSeedlingsToTransplant {
		t.Fatalf("expected no_seedlings_to_transplant, got %v", err)
	}
}

func TestServiceAccessors(t *testing.T) {
	l := newLab(t)
	if l.svc.Store() == nil || l.svc.RulesEngine() == nil || l.svc.Validator() == nil {
		t.Fatalf("expected store, engine and validator")
	}
	if !l.svc.Today().Equal(day(2024, 6, 15)) {
		t.Fatalf("unexpected today %s", l.svc.Today())
	}
	if l.svc.Validator().Policy() != validation.HybridSameSpeciesBlock {
		t.Fatalf("unexpected default policy %s", l.svc.Validator().Policy())
	}
}
