package lifecycle

import (
	"errors"
	"testing"
	"time"

	"sourcing/internal/models"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func testProject(status models.ProjectStatus) models.Project {
	return models.Project{
		Id:         "PRJ-1",
		Buyer:      "buyer-1",
		Title:      "Frozen mango pulp",
		Status:     status,
		Visibility: models.VisibilityPublic,
		Deadline:   testNow.Add(72 * time.Hour),
		CreatedAt:  testNow,
	}
}

func TestCanTransitionProject(t *testing.T) {
	allowed := []struct{ from, to models.ProjectStatus }{
		{models.ProjectDraft, models.ProjectActive},
		{models.ProjectActive, models.ProjectInReview},
		{models.ProjectActive, models.ProjectAwarded},
		{models.ProjectActive, models.ProjectExpired},
		{models.ProjectInReview, models.ProjectAwarded},
		{models.ProjectAwarded, models.ProjectInProgress},
		{models.ProjectInProgress, models.ProjectCompleted},
		{models.ProjectDraft, models.ProjectCancelled},
		{models.ProjectInProgress, models.ProjectCancelled},
	}
	for _, tc := range allowed {
		if !CanTransitionProject(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to models.ProjectStatus }{
		{models.ProjectDraft, models.ProjectAwarded},
		{models.ProjectCompleted, models.ProjectActive},
		{models.ProjectExpired, models.ProjectActive},
		{models.ProjectCompleted, models.ProjectCancelled},
		{models.ProjectCancelled, models.ProjectCancelled},
		{models.ProjectAwarded, models.ProjectCompleted},
	}
	for _, tc := range denied {
		if CanTransitionProject(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestPublishProject(t *testing.T) {
	p := testProject(models.ProjectDraft)

	if err := PublishProject(&p, "intruder", testNow); !errors.Is(err, models.ErrPermissionDenied) {
		t.Fatalf("expected permission error for non-buyer, got %v", err)
	}

	if err := PublishProject(&p, "buyer-1", testNow); err != nil {
		t.Fatal(err)
	}
	if p.Status != models.ProjectActive {
		t.Fatalf("expected status active, got %s", p.Status)
	}
	if p.PublishedAt == nil || !p.PublishedAt.Equal(testNow) {
		t.Fatal("expected publishedAt to be set on first publish")
	}
	if len(p.History) != 1 || p.History[0].Action != "published" {
		t.Fatalf("expected one 'published' history entry, got %v", p.History)
	}

	if err := PublishProject(&p, "buyer-1", testNow); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("expected transition error on second publish, got %v", err)
	}
}

func TestAwardProject(t *testing.T) {
	p := testProject(models.ProjectActive)
	prop := models.Proposal{
		Id:        "PRP-1",
		ProjectId: "PRJ-1",
		Vendor:    "vendor-1",
		Status:    models.ProposalSubmitted,
		Pricing:   models.ProposalPricing{TotalPrice: 4200},
	}

	if err := AwardProject(&p, &prop, "intruder", testNow); !errors.Is(err, models.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}

	foreign := prop
	foreign.ProjectId = "PRJ-other"
	if err := AwardProject(&p, &foreign, "buyer-1", testNow); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for foreign proposal, got %v", err)
	}

	withdrawn := prop
	withdrawn.Status = models.ProposalWithdrawn
	if err := AwardProject(&p, &withdrawn, "buyer-1", testNow); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("expected transition error for withdrawn proposal, got %v", err)
	}

	if err := AwardProject(&p, &prop, "buyer-1", testNow); err != nil {
		t.Fatal(err)
	}
	if p.Status != models.ProjectAwarded {
		t.Fatalf("expected status awarded, got %s", p.Status)
	}
	if p.AwardedTo == nil || p.AwardedTo.Vendor != "vendor-1" || p.AwardedTo.ContractValue != 4200 {
		t.Fatalf("award record not filled: %+v", p.AwardedTo)
	}

	if err := AwardProject(&p, &prop, "buyer-1", testNow); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("expected transition error on second award, got %v", err)
	}
}

func TestCancelProject(t *testing.T) {
	for _, status := range []models.ProjectStatus{
		models.ProjectDraft, models.ProjectActive, models.ProjectInReview,
		models.ProjectAwarded, models.ProjectInProgress,
	} {
		p := testProject(status)
		if err := CancelProject(&p, "buyer-1", testNow); err != nil {
			t.Errorf("cancel from %s: %v", status, err)
		}
	}

	for _, status := range []models.ProjectStatus{
		models.ProjectCompleted, models.ProjectCancelled, models.ProjectExpired,
	} {
		p := testProject(status)
		if err := CancelProject(&p, "buyer-1", testNow); !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("cancel from terminal %s should fail, got %v", status, err)
		}
	}
}

func TestStartCompleteProject(t *testing.T) {
	p := testProject(models.ProjectAwarded)

	if err := StartProject(&p, "buyer-1", testNow); err != nil {
		t.Fatal(err)
	}
	if p.Status != models.ProjectInProgress {
		t.Fatalf("expected in-progress, got %s", p.Status)
	}

	if err := CompleteProject(&p, "buyer-1", testNow); err != nil {
		t.Fatal(err)
	}
	if p.Status != models.ProjectCompleted || p.CompletedAt == nil {
		t.Fatalf("expected completed with timestamp, got %s", p.Status)
	}
}

func TestApplyExpiry(t *testing.T) {
	p := testProject(models.ProjectActive)
	p.Deadline = testNow.Add(-time.Hour)

	if !ApplyExpiry(&p, testNow) {
		t.Fatal("expected expiry to fire on past deadline")
	}
	if p.Status != models.ProjectExpired {
		t.Fatalf("expected expired, got %s", p.Status)
	}
	if len(p.History) != 1 || p.History[0].Action != "auto_expired" {
		t.Fatalf("expected one auto_expired entry, got %v", p.History)
	}

	// idempotent: a second pass must not fire again
	if ApplyExpiry(&p, testNow) {
		t.Fatal("expiry fired twice")
	}
	if len(p.History) != 1 {
		t.Fatalf("expected history unchanged, got %d entries", len(p.History))
	}

	fresh := testProject(models.ProjectActive)
	if ApplyExpiry(&fresh, testNow) {
		t.Fatal("expiry fired on future deadline")
	}
}

func TestRecordView(t *testing.T) {
	p := testProject(models.ProjectActive)

	RecordView(&p, "vendor-1")
	RecordView(&p, "vendor-1")
	RecordView(&p, "vendor-2")
	RecordView(&p, "")

	if p.Analytics.ViewCount != 4 {
		t.Fatalf("expected 4 views, got %d", p.Analytics.ViewCount)
	}
	if len(p.Analytics.UniqueViewers) != 2 {
		t.Fatalf("expected 2 unique viewers, got %v", p.Analytics.UniqueViewers)
	}
}

func TestAddProposalRef(t *testing.T) {
	p := testProject(models.ProjectActive)

	AddProposalRef(&p, "PRP-1")
	AddProposalRef(&p, "PRP-2")
	AddProposalRef(&p, "PRP-1")

	if p.ProposalCount != 2 || len(p.Proposals) != 2 {
		t.Fatalf("expected 2 refs, got count=%d refs=%v", p.ProposalCount, p.Proposals)
	}
}

func TestInvitations(t *testing.T) {
	p := testProject(models.ProjectActive)

	if err := InviteVendor(&p, "intruder", "vendor-1", testNow); !errors.Is(err, models.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if err := InviteVendor(&p, "buyer-1", "vendor-1", testNow); err != nil {
		t.Fatal(err)
	}
	if err := InviteVendor(&p, "buyer-1", "vendor-1", testNow); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error on duplicate invite, got %v", err)
	}

	if err := RespondInvitation(&p, "vendor-2", true, testNow); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected not-found for uninvited vendor, got %v", err)
	}
	if err := RespondInvitation(&p, "vendor-1", true, testNow); err != nil {
		t.Fatal(err)
	}
	if p.InvitedVendors[0].Status != models.InvitationAccepted {
		t.Fatalf("expected accepted invitation, got %s", p.InvitedVendors[0].Status)
	}
}
