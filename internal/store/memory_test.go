package store

import (
	"context"
	"errors"
	"testing"
	"time"

	gofakeit "github.com/brianvoe/gofakeit/v7"

	"sourcing/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func randomProject(buyer string, status models.ProjectStatus) models.Project {
	return models.Project{
		Id:          models.NewID(models.ProjectIDPrefix),
		Buyer:       buyer,
		Title:       gofakeit.BuzzWord(),
		Description: gofakeit.Blurb(),
		Category:    gofakeit.ProductCategory(),
		Visibility:  models.VisibilityPublic,
		Status:      status,
		Deadline:    testNow.Add(72 * time.Hour),
		CreatedAt:   testNow,
	}
}

func randomProposal(projectId, vendor string, status models.ProposalStatus) models.Proposal {
	return models.Proposal{
		Id:        models.NewID(models.ProposalIDPrefix),
		ProjectId: projectId,
		Vendor:    vendor,
		Status:    status,
		Pricing:   models.ProposalPricing{UnitPrice: 10, TotalPrice: 1000, Currency: "USD"},
		CreatedAt: testNow,
	}
}

func TestMemoryProjectCRUD(t *testing.T) {
	gofakeit.Seed(0)
	m := NewMemory()
	ctx := context.Background()

	p := randomProject("buyer-1", models.ProjectDraft)
	if err := m.CreateProject(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := m.CreateProject(ctx, p); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict on duplicate create, got %v", err)
	}

	got, err := m.ProjectByID(ctx, p.Id)
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != p.Title {
		t.Fatalf("expected title %q, got %q", p.Title, got.Title)
	}

	if _, err := m.ProjectByID(ctx, "PRJ-none"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}

	// stored copies must not alias caller slices
	got.History = append(got.History, models.HistoryEntry{Action: "tamper"})
	again, err := m.ProjectByID(ctx, p.Id)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.History) != 0 {
		t.Fatal("store returned aliased state")
	}
}

func TestMemoryConditionalProjectUpdate(t *testing.T) {
	gofakeit.Seed(0)
	m := NewMemory()
	ctx := context.Background()

	p := randomProject("buyer-1", models.ProjectDraft)
	if err := m.CreateProject(ctx, p); err != nil {
		t.Fatal(err)
	}

	p.Status = models.ProjectActive
	if err := m.UpdateProject(ctx, p, models.ProjectDraft); err != nil {
		t.Fatal(err)
	}

	// second conditional writer loses
	p.Status = models.ProjectCancelled
	if err := m.UpdateProject(ctx, p, models.ProjectDraft); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict for stale expected status, got %v", err)
	}

	// unconditional write goes through
	if err := m.UpdateProject(ctx, p, ""); err != nil {
		t.Fatal(err)
	}

	missing := randomProject("buyer-1", models.ProjectDraft)
	if err := m.UpdateProject(ctx, missing, ""); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not-found for absent record, got %v", err)
	}
}

func TestMemoryProjectFilters(t *testing.T) {
	gofakeit.Seed(0)
	m := NewMemory()
	ctx := context.Background()

	var active []models.Project
	for i := 0; i < 5; i++ {
		p := randomProject("buyer-1", models.ProjectActive)
		p.Category = "produce"
		p.Deadline = testNow.Add(time.Duration(i+1) * 24 * time.Hour)
		p.CreatedAt = testNow.Add(time.Duration(i) * time.Minute)
		if err := m.CreateProject(ctx, p); err != nil {
			t.Fatal(err)
		}
		active = append(active, p)
	}
	other := randomProject("buyer-2", models.ProjectDraft)
	if err := m.CreateProject(ctx, other); err != nil {
		t.Fatal(err)
	}

	got, err := m.Projects(ctx, ProjectFilter{Buyer: "buyer-1", Status: models.ProjectActive})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 projects, got %d", len(got))
	}

	until := testNow.Add(60 * time.Hour)
	got, err = m.Projects(ctx, ProjectFilter{DeadlineAfter: &testNow, DeadlineBefore: &until})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 projects inside deadline window, got %d", len(got))
	}

	got, err = m.Projects(ctx, ProjectFilter{Buyer: "buyer-1", Limit: 2, Offset: 4})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 project on last page, got %d", len(got))
	}
}

func TestMemoryDuplicateProposal(t *testing.T) {
	gofakeit.Seed(0)
	m := NewMemory()
	ctx := context.Background()

	first := randomProposal("PRJ-1", "vendor-1", models.ProposalDraft)
	if err := m.CreateProposal(ctx, first); err != nil {
		t.Fatal(err)
	}

	second := randomProposal("PRJ-1", "vendor-1", models.ProposalDraft)
	if err := m.CreateProposal(ctx, second); !errors.Is(err, models.ErrDuplicateProposal) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	// other vendor and other project are fine
	if err := m.CreateProposal(ctx, randomProposal("PRJ-1", "vendor-2", models.ProposalDraft)); err != nil {
		t.Fatal(err)
	}
	if err := m.CreateProposal(ctx, randomProposal("PRJ-2", "vendor-1", models.ProposalDraft)); err != nil {
		t.Fatal(err)
	}

	// withdrawing the live proposal frees the slot
	first.Status = models.ProposalWithdrawn
	if err := m.UpdateProposal(ctx, first, models.ProposalDraft); err != nil {
		t.Fatal(err)
	}
	if err := m.CreateProposal(ctx, second); err != nil {
		t.Fatalf("expected resubmission after withdrawal to pass, got %v", err)
	}
}

func TestMemoryProposalLookups(t *testing.T) {
	gofakeit.Seed(0)
	m := NewMemory()
	ctx := context.Background()

	p1 := randomProposal("PRJ-1", "vendor-1", models.ProposalSubmitted)
	p2 := randomProposal("PRJ-1", "vendor-2", models.ProposalDraft)
	p3 := randomProposal("PRJ-2", "vendor-1", models.ProposalShortlisted)
	for _, p := range []models.Proposal{p1, p2, p3} {
		if err := m.CreateProposal(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	got, err := m.Proposals(ctx, ProposalFilter{ProjectId: "PRJ-1"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 proposals for PRJ-1, got %d", len(got))
	}

	got, err = m.Proposals(ctx, ProposalFilter{
		Statuses: []models.ProposalStatus{models.ProposalSubmitted, models.ProposalShortlisted},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 proposals by status, got %d", len(got))
	}

	byPair, err := m.ProposalByProjectVendor(ctx, "PRJ-2", "vendor-1")
	if err != nil {
		t.Fatal(err)
	}
	if byPair.Id != p3.Id {
		t.Fatalf("expected %s, got %s", p3.Id, byPair.Id)
	}
	if _, err := m.ProposalByProjectVendor(ctx, "PRJ-2", "vendor-2"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestMemoryExpireDueProjects(t *testing.T) {
	gofakeit.Seed(0)
	m := NewMemory()
	ctx := context.Background()

	due1 := randomProject("buyer-1", models.ProjectActive)
	due1.Deadline = testNow.Add(-time.Hour)
	due2 := randomProject("buyer-1", models.ProjectActive)
	due2.Deadline = testNow.Add(-time.Minute)
	future := randomProject("buyer-1", models.ProjectActive)
	awarded := randomProject("buyer-1", models.ProjectAwarded)
	awarded.Deadline = testNow.Add(-time.Hour)

	for _, p := range []models.Project{due1, due2, future, awarded} {
		if err := m.CreateProject(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	ids, err := m.ExpireDueProjects(ctx, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 {
		t.Fatalf("expected 2 expired projects, got %v", ids)
	}

	for _, id := range ids {
		p, err := m.ProjectByID(ctx, id)
		if err != nil {
			t.Fatal(err)
		}
		if p.Status != models.ProjectExpired {
			t.Errorf("project %s not expired: %s", id, p.Status)
		}
		if len(p.History) != 1 || p.History[0].Action != "auto_expired" {
			t.Errorf("project %s missing auto_expired history entry", id)
		}
	}

	// second sweep finds nothing, history untouched
	ids, err = m.ExpireDueProjects(ctx, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 0 {
		t.Fatalf("expected idempotent sweep, got %v", ids)
	}

	p, err := m.ProjectByID(ctx, awarded.Id)
	if err != nil {
		t.Fatal(err)
	}
	if p.Status != models.ProjectAwarded {
		t.Fatal("sweep must not touch non-active projects")
	}
}

func TestMemoryProductConditionalUpdate(t *testing.T) {
	gofakeit.Seed(0)
	m := NewMemory()
	ctx := context.Background()

	p := models.Product{
		Id:     models.NewID(models.ProductIDPrefix),
		Vendor: "vendor-1",
		Name:   gofakeit.ProductName(),
		Availability: models.Availability{
			Status:   models.LimitedStock,
			Quantity: models.InventoryQuantity{Available: 5},
		},
	}
	if err := m.CreateProduct(ctx, p); err != nil {
		t.Fatal(err)
	}

	expected := 5.0
	p.Availability.Quantity.Available = 3
	if err := m.UpdateProduct(ctx, p, &expected); err != nil {
		t.Fatal(err)
	}

	// stale expected counter loses
	p.Availability.Quantity.Available = 1
	if err := m.UpdateProduct(ctx, p, &expected); !errors.Is(err, models.ErrConflict) {
		t.Fatalf("expected conflict for stale counter, got %v", err)
	}

	if err := m.UpdateProduct(ctx, p, nil); err != nil {
		t.Fatal(err)
	}
}

func TestMemoryNotifications(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for i, recipient := range []string{"u1", "u1", "u2"} {
		n := models.Notification{
			Id:        models.NewID("NTF"),
			Recipient: recipient,
			Type:      models.NotifyProposalReceived,
			Status:    models.NotificationUnread,
			CreatedAt: testNow.Add(time.Duration(i) * time.Second),
		}
		if err := m.CreateNotification(ctx, n); err != nil {
			t.Fatal(err)
		}
	}

	ns, err := m.Notifications(ctx, "u1", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(ns) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(ns))
	}
	if !ns[0].CreatedAt.After(ns[1].CreatedAt) {
		t.Fatal("expected newest-first ordering")
	}

	if err := m.MarkNotificationRead(ctx, ns[0].Id, "u2", testNow); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("marking another user's notification must fail, got %v", err)
	}
	if err := m.MarkNotificationRead(ctx, ns[0].Id, "u1", testNow); err != nil {
		t.Fatal(err)
	}

	unread, err := m.Notifications(ctx, "u1", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(unread) != 1 {
		t.Fatalf("expected 1 unread notification, got %d", len(unread))
	}
}

func TestMemoryUsers(t *testing.T) {
	gofakeit.Seed(0)
	m := NewMemory()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		u := models.User{
			Id:          gofakeit.Username(),
			CompanyName: gofakeit.Company(),
			Role:        models.RoleVendor,
			IsVerified:  i%2 == 0,
		}
		if err := m.CreateUser(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	if err := m.CreateUser(ctx, models.User{Id: "buyer-1", CompanyName: "Acme", Role: models.RoleBuyer}); err != nil {
		t.Fatal(err)
	}

	vendors, err := m.Users(ctx, models.RoleVendor)
	if err != nil {
		t.Fatal(err)
	}
	if len(vendors) != 3 {
		t.Fatalf("expected 3 vendors, got %d", len(vendors))
	}

	all, err := m.Users(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 users, got %d", len(all))
	}
}
