package core_test

import (
	"errors"
	"testing"
	"time"

	"orchidlab/internal/core"
	"orchidlab/pkg/domain"
)

func TestAlertRecipients(t *testing.T) {
	l := newLab(t)
	retired := l.mustUser(t, core.User{Username: "old-admin", Role: core.RoleAdmin, Active: false})
	viewer := l.mustUser(t, core.User{Username: "viewer", Role: core.RoleViewer, Active: true})

	byAdmin := l.selfPollination(day(2024, 6, 1))
	byAdmin.ResponsibleID = l.admin.ID
	l.mustPollinate(t, byAdmin)

	counts := map[string]int{}
	for _, user := range []core.User{l.admin, l.tech, retired, viewer} {
		alerts, err := l.svc.ListUserAlerts(l.ctx, user.ID, false)
		if err != nil {
			t.Fatalf("list alerts: %v", err)
		}
		counts[user.Username] = len(alerts)
	}
	if counts["admin"] != 1 {
		t.Fatalf("responsible admin must receive exactly one delivery, got %d", counts["admin"])
	}
	if counts["ana"] != 0 || counts["old-admin"] != 0 || counts["viewer"] != 0 {
		t.Fatalf("unexpected recipients %v", counts)
	}
}

func TestMarkAlertRead(t *testing.T) {
	l := newLab(t)
	l.mustPollinate(t, l.selfPollination(day(2024, 6, 1)))

	alerts, _ := l.svc.ListUserAlerts(l.ctx, l.tech.ID, true)
	if len(alerts) != 1 || alerts[0].Read {
		t.Fatalf("expected one unread alert, got %+v", alerts)
	}
	deliveryID := alerts[0].ID

	l.clock.Advance(time.Minute)
	readAt := l.clock.Now()
	read, _, err := l.svc.MarkAlertRead(l.ctx, deliveryID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.Read || !read.ReadAt.Equal(readAt) {
		t.Fatalf("unexpected delivery %+v", read)
	}

	l.clock.Advance(time.Hour)
	again, _, err := l.svc.MarkAlertRead(l.ctx, deliveryID)
	if err != nil {
		t.Fatalf("mark read again: %v", err)
	}
	if !again.ReadAt.Equal(readAt) {
		t.Fatalf("read timestamp changed to %s", again.ReadAt)
	}

	unread, _ := l.svc.ListUserAlerts(l.ctx, l.tech.ID, true)
	if len(unread) != 0 {
		t.Fatalf("expected no unread alerts, got %+v", unread)
	}
	all, _ := l.svc.ListUserAlerts(l.ctx, l.tech.ID, false)
	if len(all) != 1 || all[0].Alert.Kind != domain.AlertPollinationCreated {
		t.Fatalf("expected the read alert in the full listing, got %+v", all)
	}
	adminUnread, _ := l.svc.ListUserAlerts(l.ctx, l.admin.ID, true)
	if len(adminUnread) != 1 {
		t.Fatalf("reading one delivery must not affect other recipients: %+v", adminUnread)
	}

	var notFound core.ErrNotFound
	if _, _, err := l.svc.MarkAlertRead(l.ctx, "missing"); !errors.As(err, &notFound) || notFound.Entity != core.EntityUserAlert {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if notFound.Error() != "user_alert missing not found" {
		t.Fatalf("unexpected message %q", notFound.Error())
	}
}
