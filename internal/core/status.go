package core

import (
	"context"
	"fmt"
	"sort"
	"time"

	"orchidlab/pkg/domain"
)

// Windows, in days before the estimate, used to classify upcoming events.
const (
	ApproachingWindowDays = 7
	UpcomingWindowDays    = 14
)

// MaturationState classifies a pollination's progress towards capsule
// maturation.
type MaturationState string

const (
	MaturationConfirmed   MaturationState = "confirmed"
	MaturationUnknown     MaturationState = "unknown"
	MaturationOverdue     MaturationState = "overdue"
	MaturationApproaching MaturationState = "approaching"
	MaturationPending     MaturationState = "pending"
)

// TransplantState classifies how close a germination batch is to transplant.
type TransplantState string

const (
	TransplantCompleted   TransplantState = "completed"
	TransplantUnknown     TransplantState = "unknown"
	TransplantOverdue     TransplantState = "overdue"
	TransplantDueToday    TransplantState = "due_today"
	TransplantApproaching TransplantState = "approaching"
	TransplantUpcoming    TransplantState = "upcoming"
	TransplantPending     TransplantState = "pending"
)

// MaturationEntry is the maturation status of one pollination.
type MaturationEntry struct {
	PollinationID string          `json:"pollination_id"`
	MotherPlantID string          `json:"mother_plant_id"`
	Status        MaturationState `json:"status"`
	EstimatedDate *time.Time      `json:"estimated_date,omitempty"`
	DaysRemaining *int            `json:"days_remaining,omitempty"`
}

// Recommendation is the transplant advice for one germination batch.
type Recommendation struct {
	GerminationID string          `json:"germination_id"`
	PlantID       string          `json:"plant_id"`
	Status        TransplantState `json:"status"`
	EstimatedDate *time.Time      `json:"estimated_date,omitempty"`
	DaysRemaining *int            `json:"days_remaining,omitempty"`
	Message       string          `json:"message"`
}

// CalculateMaturationDate returns the date capsules from a pollination on
// date are expected to mature. Types without a maturation offset use the
// service default.
func (s *Service) CalculateMaturationDate(date time.Time, pollinationType domain.PollinationType) time.Time {
	days := pollinationType.MaturationDays
	if days <= 0 {
		days = s.maturationDays
	}
	return domain.AddDays(date, days)
}

// CalculateTransplantDate returns the expected transplant date for a batch
// sown on date. A positive customDays wins over the genus table.
func CalculateTransplantDate(date time.Time, plant Plant, customDays *int) time.Time {
	days := domain.TransplantDays.Lookup(plant.Genus)
	if customDays != nil && *customDays > 0 {
		days = *customDays
	}
	return domain.AddDays(date, days)
}

// MaturationStatus classifies record as of today.
func MaturationStatus(record PollinationRecord, today time.Time) MaturationState {
	state, _ := maturationState(record, today)
	return state
}

func maturationState(record PollinationRecord, today time.Time) (MaturationState, *int) {
	if record.MaturationConfirmed {
		return MaturationConfirmed, nil
	}
	if record.EstimatedMaturationDate == nil {
		return MaturationUnknown, nil
	}
	days := domain.DaysBetween(today, *record.EstimatedMaturationDate)
	switch {
	case days < 0:
		return MaturationOverdue, &days
	case days <= ApproachingWindowDays:
		return MaturationApproaching, &days
	default:
		return MaturationPending, &days
	}
}

// TransplantRecommendation classifies record as of today and describes the
// advice in a short message.
func TransplantRecommendation(record GerminationRecord, today time.Time) Recommendation {
	rec := Recommendation{
		GerminationID: record.ID,
		PlantID:       record.PlantID,
		EstimatedDate: record.EstimatedTransplantDate,
	}
	if record.TransplantConfirmed {
		rec.Status = TransplantCompleted
		rec.Message = "transplant completed"
		return rec
	}
	if record.EstimatedTransplantDate == nil {
		rec.Status = TransplantUnknown
		rec.Message = "no estimated transplant date"
		return rec
	}
	days := domain.DaysBetween(today, *record.EstimatedTransplantDate)
	rec.DaysRemaining = &days
	switch {
	case days < 0:
		rec.Status = TransplantOverdue
		rec.Message = fmt.Sprintf("transplant overdue by %d days", -days)
	case days == 0:
		rec.Status = TransplantDueToday
		rec.Message = "transplant due today"
	case days <= ApproachingWindowDays:
		rec.Status = TransplantApproaching
		rec.Message = fmt.Sprintf("transplant in %d days", days)
	case days <= UpcomingWindowDays:
		rec.Status = TransplantUpcoming
		rec.Message = fmt.Sprintf("prepare transplant in %d days", days)
	default:
		rec.Status = TransplantPending
		rec.Message = fmt.Sprintf("transplant expected in %d days", days)
	}
	return rec
}

// MaturationStatuses lists the maturation status of every pollination still
// awaiting confirmation, most urgent first.
func (s *Service) MaturationStatuses(ctx context.Context) ([]MaturationEntry, error) {
	today := s.Today()
	var out []MaturationEntry
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, p := range view.ListPollinations() {
			if p.MaturationConfirmed {
				continue
			}
			state, days := maturationState(p, today)
			out = append(out, MaturationEntry{
				PollinationID: p.ID,
				MotherPlantID: p.MotherPlantID,
				Status:        state,
				EstimatedDate: p.EstimatedMaturationDate,
				DaysRemaining: days,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessRemaining(out[i].DaysRemaining, out[j].DaysRemaining, out[i].PollinationID, out[j].PollinationID)
	})
	return out, nil
}

// TransplantRecommendations returns advice for every batch not yet
// transplanted, ordered by days remaining. Batches without an estimate come
// last.
func (s *Service) TransplantRecommendations(ctx context.Context) ([]Recommendation, error) {
	today := s.Today()
	var out []Recommendation
	err := s.store.View(ctx, func(view TransactionView) error {
		for _, g := range view.ListGerminations() {
			if g.TransplantConfirmed {
				continue
			}
			out = append(out, TransplantRecommendation(g, today))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return lessRemaining(out[i].DaysRemaining, out[j].DaysRemaining, out[i].GerminationID, out[j].GerminationID)
	})
	return out, nil
}

func lessRemaining(a, b *int, idA, idB string) bool {
	switch {
	case a == nil && b == nil:
		return idA < idB
	case a == nil:
		return false
	case b == nil:
		return true
	case *a != *b:
		return *a < *b
	default:
		return idA < idB
	}
}
