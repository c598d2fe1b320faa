package notify

import (
	"context"
	"errors"
	"testing"

	"sourcing/internal/models"
	"sourcing/internal/store"
)

func TestNotify(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)
	ctx := context.Background()

	err := svc.Notify(ctx, "vendor-1", models.NotifyProjectInvitation, "invited", models.NotificationData{ProjectId: "PRJ-1"})
	if err != nil {
		t.Fatal(err)
	}

	ns, err := st.Notifications(ctx, "vendor-1", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(ns) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(ns))
	}
	n := ns[0]
	if n.Id == "" || n.Status != models.NotificationUnread || n.Title == "" {
		t.Fatalf("notification not fully populated: %+v", n)
	}
	if n.Data.ProjectId != "PRJ-1" {
		t.Fatal("notification data lost")
	}
}

func TestNotifyRejectsInvalidInput(t *testing.T) {
	svc := NewService(store.NewMemory())
	ctx := context.Background()

	err := svc.Notify(ctx, "vendor-1", "spam", "x", models.NotificationData{})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}

	err = svc.Notify(ctx, "", models.NotifyProposalReceived, "x", models.NotificationData{})
	if !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for empty recipient, got %v", err)
	}
}

func TestNotifyMultiple(t *testing.T) {
	st := store.NewMemory()
	svc := NewService(st)
	ctx := context.Background()

	err := svc.NotifyMultiple(ctx, []string{"v1", "v2", "v3"}, models.NotifyProjectCancelled, "cancelled", models.NotificationData{})
	if err != nil {
		t.Fatal(err)
	}

	for _, r := range []string{"v1", "v2", "v3"} {
		ns, err := st.Notifications(ctx, r, false)
		if err != nil {
			t.Fatal(err)
		}
		if len(ns) != 1 {
			t.Fatalf("expected notification for %s", r)
		}
	}
}
