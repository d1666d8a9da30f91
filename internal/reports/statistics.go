// Package reports aggregates pollination and germination records into
// success rates, groupings and month-over-month growth, and renders them as
// report artifacts.
package reports

import (
	"sort"
	"time"

	"orchidlab/pkg/domain"
)

// MonthLayout is the YYYY-MM key used by month groupings.
const MonthLayout = "2006-01"

// Dataset is the record set a report is computed from.
type Dataset struct {
	Plants       []domain.Plant             `json:"plants"`
	Users        []domain.User              `json:"users"`
	Pollinations []domain.PollinationRecord `json:"pollinations"`
	SeedSources  []domain.SeedSource        `json:"seed_sources"`
	Germinations []domain.GerminationRecord `json:"germinations"`
}

// SuccessSummary describes pollination outcomes.
type SuccessSummary struct {
	Total         int     `json:"total"`
	Confirmed     int     `json:"confirmed"`
	Successful    int     `json:"successful"`
	Failed        int     `json:"failed"`
	Pending       int     `json:"pending"`
	TotalCapsules int     `json:"total_capsules"`
	SuccessRate   float64 `json:"success_rate"`
}

// GerminationSummary describes sowing and transplant outcomes.
type GerminationSummary struct {
	Total                  int     `json:"total"`
	SeedsPlanted           int     `json:"seeds_planted"`
	SeedlingsGerminated    int     `json:"seedlings_germinated"`
	OverallGerminationRate float64 `json:"overall_germination_rate"`
	AverageGerminationRate float64 `json:"average_germination_rate"`
	Transplanted           int     `json:"transplanted"`
	TransplantSuccessful   int     `json:"transplant_successful"`
	PendingTransplant      int     `json:"pending_transplant"`
	TransplantSuccessRate  float64 `json:"transplant_success_rate"`
}

// Group aggregates the records sharing one key (type, genus, user or month).
type Group struct {
	Key                 string  `json:"key"`
	Total               int     `json:"total"`
	Successful          int     `json:"successful"`
	SuccessRate         float64 `json:"success_rate"`
	Capsules            int     `json:"capsules,omitempty"`
	SeedsPlanted        int     `json:"seeds_planted,omitempty"`
	SeedlingsGerminated int     `json:"seedlings_germinated,omitempty"`
	GerminationRate     float64 `json:"germination_rate,omitempty"`
}

// GrowthPoint is one month's count and its change from the prior month.
type GrowthPoint struct {
	Month  string  `json:"month"`
	Count  int     `json:"count"`
	Growth float64 `json:"growth"`
}

// SuccessStatistics summarises pollination outcomes. The success rate is
// successful pollinations over all pollinations.
func SuccessStatistics(pollinations []domain.PollinationRecord) SuccessSummary {
	var s SuccessSummary
	for _, p := range pollinations {
		s.Total++
		s.TotalCapsules += p.CapsulesQuantity
		if !p.MaturationConfirmed {
			s.Pending++
			continue
		}
		s.Confirmed++
		if succeeded(p.IsSuccessful) {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	s.SuccessRate = domain.Percentage(s.Successful, s.Total)
	return s
}

// GerminationStatistics summarises germination batches.
func GerminationStatistics(records []domain.GerminationRecord) GerminationSummary {
	var s GerminationSummary
	var rateSum float64
	for _, g := range records {
		s.Total++
		s.SeedsPlanted += g.SeedsPlanted
		s.SeedlingsGerminated += g.SeedlingsGerminated
		rateSum += g.GerminationRate()
		if !g.TransplantConfirmed {
			s.PendingTransplant++
			continue
		}
		s.Transplanted++
		if succeeded(g.IsSuccessful) {
			s.TransplantSuccessful++
		}
	}
	s.OverallGerminationRate = domain.Percentage(s.SeedlingsGerminated, s.SeedsPlanted)
	if s.Total > 0 {
		s.AverageGerminationRate = domain.Round2(rateSum / float64(s.Total))
	}
	s.TransplantSuccessRate = domain.Percentage(s.TransplantSuccessful, s.Transplanted)
	return s
}

// ByPollinationType groups pollinations by kind in Self, Sibling, Hybrid
// order. Kinds without records are omitted.
func ByPollinationType(pollinations []domain.PollinationRecord) []Group {
	grouped := groupBy(pollinations, func(p domain.PollinationRecord) string { return p.Type.Kind.String() })
	out := make([]Group, 0, len(grouped))
	for _, kind := range domain.PollinationKinds() {
		if records, ok := grouped[kind.String()]; ok {
			out = append(out, pollinationGroup(kind.String(), records))
		}
	}
	return out
}

// ByGenus groups pollinations by the genus of the mother plant. Unknown
// plants are grouped under "unknown".
func ByGenus(pollinations []domain.PollinationRecord, plants []domain.Plant) []Group {
	genus := genusIndex(plants)
	return pollinationGroups(groupBy(pollinations, func(p domain.PollinationRecord) string {
		return lookup(genus, p.MotherPlantID)
	}))
}

// ByResponsible groups pollinations by the responsible user's username.
func ByResponsible(pollinations []domain.PollinationRecord, users []domain.User) []Group {
	names := usernameIndex(users)
	return pollinationGroups(groupBy(pollinations, func(p domain.PollinationRecord) string {
		return lookup(names, p.ResponsibleID)
	}))
}

// ByMonth groups pollinations by YYYY-MM of the pollination date.
func ByMonth(pollinations []domain.PollinationRecord) []Group {
	return pollinationGroups(groupBy(pollinations, func(p domain.PollinationRecord) string {
		return p.PollinationDate.Format(MonthLayout)
	}))
}

// GerminationsByGenus groups germination batches by the sown plant's genus.
func GerminationsByGenus(records []domain.GerminationRecord, plants []domain.Plant) []Group {
	genus := genusIndex(plants)
	return germinationGroups(groupBy(records, func(g domain.GerminationRecord) string {
		return lookup(genus, g.PlantID)
	}))
}

// GerminationsByResponsible groups germination batches by username.
func GerminationsByResponsible(records []domain.GerminationRecord, users []domain.User) []Group {
	names := usernameIndex(users)
	return germinationGroups(groupBy(records, func(g domain.GerminationRecord) string {
		return lookup(names, g.ResponsibleID)
	}))
}

// GerminationsByMonth groups germination batches by YYYY-MM of the sowing date.
func GerminationsByMonth(records []domain.GerminationRecord) []Group {
	return germinationGroups(groupBy(records, func(g domain.GerminationRecord) string {
		return g.GerminationDate.Format(MonthLayout)
	}))
}

// GrowthPercentage returns the change from previous to current as a
// percentage. A zero previous yields 0.
func GrowthPercentage(current, previous int) float64 {
	if previous == 0 {
		return 0
	}
	return domain.Round2(float64(current-previous) / float64(previous) * 100)
}

// MonthlyGrowth computes month-over-month growth from month groups. Groups
// are ordered by month first; the earliest month has no growth.
func MonthlyGrowth(months []Group) []GrowthPoint {
	sorted := append([]Group(nil), months...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	out := make([]GrowthPoint, 0, len(sorted))
	for i, m := range sorted {
		point := GrowthPoint{Month: m.Key, Count: m.Total}
		if i > 0 {
			point.Growth = GrowthPercentage(m.Total, sorted[i-1].Total)
		}
		out = append(out, point)
	}
	return out
}

// PollinationReport is the full pollination section of a report.
type PollinationReport struct {
	Summary       SuccessSummary `json:"summary"`
	ByType        []Group        `json:"by_type"`
	ByGenus       []Group        `json:"by_genus"`
	ByResponsible []Group        `json:"by_responsible"`
	ByMonth       []Group        `json:"by_month"`
	MonthlyGrowth []GrowthPoint  `json:"monthly_growth"`
}

// GerminationReport is the full germination section of a report.
type GerminationReport struct {
	Summary       GerminationSummary `json:"summary"`
	ByGenus       []Group            `json:"by_genus"`
	ByResponsible []Group            `json:"by_responsible"`
	ByMonth       []Group            `json:"by_month"`
	MonthlyGrowth []GrowthPoint      `json:"monthly_growth"`
}

// Report bundles both sections with the generation time.
type Report struct {
	GeneratedAt  time.Time         `json:"generated_at"`
	Pollinations PollinationReport `json:"pollinations"`
	Germinations GerminationReport `json:"germinations"`
}

// BuildPollinationReport aggregates the pollinations of ds.
func BuildPollinationReport(ds Dataset) PollinationReport {
	months := ByMonth(ds.Pollinations)
	return PollinationReport{
		Summary:       SuccessStatistics(ds.Pollinations),
		ByType:        ByPollinationType(ds.Pollinations),
		ByGenus:       ByGenus(ds.Pollinations, ds.Plants),
		ByResponsible: ByResponsible(ds.Pollinations, ds.Users),
		ByMonth:       months,
		MonthlyGrowth: MonthlyGrowth(months),
	}
}

// BuildGerminationReport aggregates the germinations of ds.
func BuildGerminationReport(ds Dataset) GerminationReport {
	months := GerminationsByMonth(ds.Germinations)
	return GerminationReport{
		Summary:       GerminationStatistics(ds.Germinations),
		ByGenus:       GerminationsByGenus(ds.Germinations, ds.Plants),
		ByResponsible: GerminationsByResponsible(ds.Germinations, ds.Users),
		ByMonth:       months,
		MonthlyGrowth: MonthlyGrowth(months),
	}
}

// Build computes the full report for ds.
func Build(ds Dataset, generatedAt time.Time) Report {
	return Report{
		GeneratedAt:  generatedAt.UTC(),
		Pollinations: BuildPollinationReport(ds),
		Germinations: BuildGerminationReport(ds),
	}
}

func groupBy[T any](records []T, key func(T) string) map[string][]T {
	out := make(map[string][]T)
	for _, r := range records {
		k := key(r)
		out[k] = append(out[k], r)
	}
	return out
}

func sortedKeys[T any](m map[string][]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func pollinationGroups(grouped map[string][]domain.PollinationRecord) []Group {
	out := make([]Group, 0, len(grouped))
	for _, key := range sortedKeys(grouped) {
		out = append(out, pollinationGroup(key, grouped[key]))
	}
	return out
}

func pollinationGroup(key string, records []domain.PollinationRecord) Group {
	summary := SuccessStatistics(records)
	return Group{
		Key:         key,
		Total:       summary.Total,
		Successful:  summary.Successful,
		SuccessRate: summary.SuccessRate,
		Capsules:    summary.TotalCapsules,
	}
}

func germinationGroups(grouped map[string][]domain.GerminationRecord) []Group {
	out := make([]Group, 0, len(grouped))
	for _, key := range sortedKeys(grouped) {
		summary := GerminationStatistics(grouped[key])
		out = append(out, Group{
			Key:                 key,
			Total:               summary.Total,
			Successful:          summary.TransplantSuccessful,
			SuccessRate:         domain.Percentage(summary.TransplantSuccessful, summary.Total),
			SeedsPlanted:        summary.SeedsPlanted,
			SeedlingsGerminated: summary.SeedlingsGerminated,
			GerminationRate:     summary.OverallGerminationRate,
		})
	}
	return out
}

const unknownKey = "unknown"

func genusIndex(plants []domain.Plant) map[string]string {
	out := make(map[string]string, len(plants))
	for _, p := range plants {
		out[p.ID] = p.Genus
	}
	return out
}

func usernameIndex(users []domain.User) map[string]string {
	out := make(map[string]string, len(users))
	for _, u := range users {
		out[u.ID] = u.Username
	}
	return out
}

func lookup(index map[string]string, id string) string {
	if v, ok := index[id]; ok && v != "" {
		return v
	}
	return unknownKey
}

func succeeded(flag *bool) bool {
	return flag != nil && *flag
}
