package syncer

import (
	"context"
	"testing"
	"time"

	"sourcing/internal/models"
	"sourcing/internal/notify"
	"sourcing/internal/search"
	"sourcing/internal/store"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSyncer(t *testing.T) (*Syncer, *store.Memory, *search.MemoryIndex) {
	st := store.NewMemory()
	idx := search.NewMemoryIndex()
	s := New(st, idx, notify.NewService(st), 16)
	s.Start()
	return s, st, idx
}

func notificationsFor(t *testing.T, st *store.Memory, recipient string) []models.Notification {
	ns, err := st.Notifications(context.Background(), recipient, false)
	if err != nil {
		t.Fatal(err)
	}
	return ns
}

func testProject(status models.ProjectStatus) models.Project {
	return models.Project{
		Id:         "PRJ-1",
		Buyer:      "buyer-1",
		Title:      "Olive oil, extra virgin",
		Status:     status,
		Visibility: models.VisibilityPublic,
		Deadline:   testNow.Add(48 * time.Hour),
		CreatedAt:  testNow,
	}
}

func TestProjectMutatedIndexes(t *testing.T) {
	s, _, idx := newTestSyncer(t)

	p := testProject(models.ProjectDraft)
	s.ProjectMutated(nil, p)
	s.Close()

	if _, ok := idx.Get(search.ProjectsIndex, "PRJ-1"); !ok {
		t.Fatal("expected project document after mutation")
	}
}

func TestProjectPublishedNotifiesInvited(t *testing.T) {
	s, st, _ := newTestSyncer(t)

	before := testProject(models.ProjectDraft)
	after := testProject(models.ProjectActive)
	after.InvitedVendors = []models.Invitation{
		{Vendor: "vendor-1", Status: models.InvitationPending},
		{Vendor: "vendor-2", Status: models.InvitationPending},
	}

	s.ProjectMutated(&before, after)
	s.Close()

	for _, vendor := range []string{"vendor-1", "vendor-2"} {
		ns := notificationsFor(t, st, vendor)
		if len(ns) != 1 || ns[0].Type != models.NotifyProjectInvitation {
			t.Fatalf("expected one invitation for %s, got %v", vendor, ns)
		}
		if ns[0].Data.ProjectId != "PRJ-1" {
			t.Fatal("notification data missing project reference")
		}
	}

	// no notification without a status change
	s2, st2, _ := newTestSyncer(t)
	s2.ProjectMutated(&after, after)
	s2.Close()
	if len(notificationsFor(t, st2, "vendor-1")) != 0 {
		t.Fatal("unchanged status must not notify")
	}
}

func TestProjectAwardedNotifiesWinner(t *testing.T) {
	s, st, _ := newTestSyncer(t)

	before := testProject(models.ProjectActive)
	after := testProject(models.ProjectAwarded)
	after.AwardedTo = &models.Award{Vendor: "vendor-1", Proposal: "PRP-1", ContractValue: 500}

	s.ProjectMutated(&before, after)
	s.Close()

	ns := notificationsFor(t, st, "vendor-1")
	if len(ns) != 1 || ns[0].Type != models.NotifyProjectAwarded {
		t.Fatalf("expected award notification, got %v", ns)
	}
	if ns[0].Data.ProposalId != "PRP-1" {
		t.Fatal("award notification missing proposal reference")
	}
}

func TestProjectCancelledNotifiesProposingVendors(t *testing.T) {
	s, st, _ := newTestSyncer(t)
	ctx := context.Background()

	live := models.Proposal{Id: "PRP-1", ProjectId: "PRJ-1", Vendor: "vendor-live", Status: models.ProposalSubmitted}
	done := models.Proposal{Id: "PRP-2", ProjectId: "PRJ-1", Vendor: "vendor-done", Status: models.ProposalWithdrawn}
	for _, prop := range []models.Proposal{live, done} {
		if err := st.CreateProposal(ctx, prop); err != nil {
			t.Fatal(err)
		}
	}

	before := testProject(models.ProjectActive)
	after := testProject(models.ProjectCancelled)
	s.ProjectMutated(&before, after)
	s.Close()

	if ns := notificationsFor(t, st, "vendor-live"); len(ns) != 1 || ns[0].Type != models.NotifyProjectCancelled {
		t.Fatalf("expected cancellation notice for live vendor, got %v", ns)
	}
	if ns := notificationsFor(t, st, "vendor-done"); len(ns) != 0 {
		t.Fatal("terminal proposals must not be notified")
	}
}

func TestProposalMutatedNotifications(t *testing.T) {
	cases := []struct {
		to        models.ProposalStatus
		recipient string
		nt        models.NotificationType
	}{
		{models.ProposalSubmitted, "buyer-1", models.NotifyProposalReceived},
		{models.ProposalAccepted, "vendor-1", models.NotifyProposalAccepted},
		{models.ProposalRejected, "vendor-1", models.NotifyProposalRejected},
	}

	for _, tc := range cases {
		s, st, _ := newTestSyncer(t)
		project := testProject(models.ProjectActive)
		before := models.Proposal{Id: "PRP-1", ProjectId: "PRJ-1", Vendor: "vendor-1", Status: models.ProposalDraft}
		after := before
		after.Status = tc.to

		s.ProposalMutated(project, &before, after)
		s.Close()

		ns := notificationsFor(t, st, tc.recipient)
		if len(ns) != 1 || ns[0].Type != tc.nt {
			t.Fatalf("transition to %s: expected %s for %s, got %v", tc.to, tc.nt, tc.recipient, ns)
		}
	}
}

func TestProposalMessageNotifiesCounterparty(t *testing.T) {
	s, st, _ := newTestSyncer(t)

	project := testProject(models.ProjectActive)
	proposal := models.Proposal{Id: "PRP-1", ProjectId: "PRJ-1", Vendor: "vendor-1"}

	s.ProposalMessage(project, proposal, "vendor-1", "buyer-1")
	s.Close()

	ns := notificationsFor(t, st, "buyer-1")
	if len(ns) != 1 || ns[0].Type != models.NotifyMessageReceived {
		t.Fatalf("expected message notification, got %v", ns)
	}
	if ns[0].Data.SenderId != "vendor-1" {
		t.Fatal("message notification missing sender")
	}
}

func TestVendorMutatedIndexesSuppliers(t *testing.T) {
	s, _, idx := newTestSyncer(t)

	s.VendorMutated(models.User{Id: "v1", CompanyName: "Fresh Co", Role: models.RoleVendor})
	s.VendorMutated(models.User{Id: "b1", CompanyName: "Acme", Role: models.RoleBuyer})
	s.Close()

	if _, ok := idx.Get(search.SuppliersIndex, "v1"); !ok {
		t.Fatal("expected supplier document for vendor")
	}
	if _, ok := idx.Get(search.SuppliersIndex, "b1"); ok {
		t.Fatal("buyers must not be indexed as suppliers")
	}
}

func TestProjectExpiringNotifiesBuyer(t *testing.T) {
	s, st, _ := newTestSyncer(t)

	s.ProjectExpiring(testProject(models.ProjectActive))
	s.Close()

	ns := notificationsFor(t, st, "buyer-1")
	if len(ns) != 1 || ns[0].Type != models.NotifyProjectExpiring {
		t.Fatalf("expected expiring notification, got %v", ns)
	}
}

func TestCloseDrainsAndDrops(t *testing.T) {
	s, st, _ := newTestSyncer(t)

	for i := 0; i < 10; i++ {
		s.ProjectExpiring(testProject(models.ProjectActive))
	}
	s.Close()

	if ns := notificationsFor(t, st, "buyer-1"); len(ns) != 10 {
		t.Fatalf("expected all queued tasks drained, got %d", len(ns))
	}

	// after close new events are dropped, not queued or panicking
	s.ProjectExpiring(testProject(models.ProjectActive))
	s.Close()
	if ns := notificationsFor(t, st, "buyer-1"); len(ns) != 10 {
		t.Fatal("events after close must be dropped")
	}
}
