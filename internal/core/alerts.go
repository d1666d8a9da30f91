package core

import (
	"context"
	"sort"

	"orchidlab/pkg/domain"
)

// Notification pairs a recipient's delivery with the alert it carries.
type Notification struct {
	UserAlert
	Alert Alert `json:"alert"`
}

type alertDraft struct {
	kind          domain.AlertKind
	entity        EntityType
	entityID      string
	responsibleID string
	title         string
	message       string
}

// raiseAlert stores one alert and a delivery for the responsible user and
// every active admin, each recipient at most once.
func (s *Service) raiseAlert(tx Transaction, draft alertDraft) (Alert, error) {
	alert, err := tx.CreateAlert(Alert{
		Kind:       draft.kind,
		Title:      draft.title,
		Message:    draft.message,
		EntityType: draft.entity,
		EntityID:   draft.entityID,
	})
	if err != nil {
		return Alert{}, err
	}
	for _, userID := range alertRecipients(tx.Snapshot(), draft.responsibleID) {
		if _, err := tx.CreateUserAlert(UserAlert{AlertID: alert.ID, UserID: userID}); err != nil {
			return Alert{}, err
		}
	}
	return alert, nil
}

func alertRecipients(view TransactionView, responsibleID string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(id string) {
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if _, ok := view.FindUser(responsibleID); ok {
		add(responsibleID)
	}
	for _, u := range view.ListUsers() {
		if u.Role == RoleAdmin && u.Active {
			add(u.ID)
		}
	}
	return out
}

// ListUserAlerts returns the alerts delivered to userID, newest first.
func (s *Service) ListUserAlerts(ctx context.Context, userID string, unreadOnly bool) ([]Notification, error) {
	var out []Notification
	err := s.store.View(ctx, func(view TransactionView) error {
		alerts := make(map[string]Alert)
		for _, a := range view.ListAlerts() {
			alerts[a.ID] = a
		}
		for _, ua := range view.ListUserAlerts() {
			if ua.UserID != userID || (unreadOnly && ua.Read) {
				continue
			}
			out = append(out, Notification{UserAlert: ua, Alert: alerts[ua.AlertID]})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// MarkAlertRead flips a delivery to read. The first read timestamp is kept.
func (s *Service) MarkAlertRead(ctx context.Context, userAlertID string) (UserAlert, Result, error) {
	var updated UserAlert
	res, err := s.mutate(ctx, "mark_alert_read", nil, func(tx Transaction) (string, error) {
		if !hasUserAlert(tx.Snapshot(), userAlertID) {
			return userAlertID, ErrNotFound{Entity: EntityUserAlert, ID: userAlertID}
		}
		var err error
		updated, err = tx.UpdateUserAlert(userAlertID, func(ua *UserAlert) error {
			if ua.Read {
				return nil
			}
			now := s.now()
			ua.Read = true
			ua.ReadAt = &now
			return nil
		})
		return userAlertID, err
	})
	return updated, res, err
}

func hasUserAlert(view TransactionView, id string) bool {
	for _, ua := range view.ListUserAlerts() {
		if ua.ID == id {
			return true
		}
	}
	return false
}
