package lifecycle

import (
	"errors"
	"testing"
	"time"

	"sourcing/internal/models"
)

func testProposal(status models.ProposalStatus) models.Proposal {
	validity := testNow.Add(30 * 24 * time.Hour)
	return models.Proposal{
		Id:        "PRP-1",
		ProjectId: "PRJ-1",
		Vendor:    "vendor-1",
		Status:    status,
		Pricing: models.ProposalPricing{
			UnitPrice:     10,
			TotalPrice:    1000,
			Currency:      "USD",
			PriceValidity: &validity,
		},
	}
}

func TestCanTransitionProposal(t *testing.T) {
	allowed := []struct{ from, to models.ProposalStatus }{
		{models.ProposalDraft, models.ProposalSubmitted},
		{models.ProposalSubmitted, models.ProposalUnderReview},
		{models.ProposalSubmitted, models.ProposalAccepted},
		{models.ProposalUnderReview, models.ProposalShortlisted},
		{models.ProposalClarificationNeeded, models.ProposalRevised},
		{models.ProposalRevised, models.ProposalUnderReview},
		{models.ProposalShortlisted, models.ProposalRejected},
		{models.ProposalDraft, models.ProposalWithdrawn},
		{models.ProposalShortlisted, models.ProposalWithdrawn},
	}
	for _, tc := range allowed {
		if !CanTransitionProposal(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	denied := []struct{ from, to models.ProposalStatus }{
		{models.ProposalDraft, models.ProposalAccepted},
		{models.ProposalAccepted, models.ProposalRejected},
		{models.ProposalRejected, models.ProposalSubmitted},
		{models.ProposalWithdrawn, models.ProposalWithdrawn},
		{models.ProposalRevised, models.ProposalAccepted},
	}
	for _, tc := range denied {
		if CanTransitionProposal(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be denied", tc.from, tc.to)
		}
	}
}

func TestSubmitProposal(t *testing.T) {
	p := testProposal(models.ProposalDraft)

	if err := SubmitProposal(&p, "intruder", testNow); !errors.Is(err, models.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}

	noValidity := testProposal(models.ProposalDraft)
	noValidity.Pricing.PriceValidity = nil
	if err := SubmitProposal(&noValidity, "vendor-1", testNow); !errors.Is(err, models.ErrMissingPriceValidity) {
		t.Fatalf("expected missing price validity error, got %v", err)
	}
	if !errors.Is(models.ErrMissingPriceValidity, models.ErrValidation) {
		t.Fatal("missing price validity should be a validation failure")
	}

	stale := testProposal(models.ProposalDraft)
	past := testNow.Add(-time.Hour)
	stale.Pricing.PriceValidity = &past
	if err := SubmitProposal(&stale, "vendor-1", testNow); !errors.Is(err, models.ErrValidation) {
		t.Fatalf("expected validation error for past validity, got %v", err)
	}

	if err := SubmitProposal(&p, "vendor-1", testNow); err != nil {
		t.Fatal(err)
	}
	if p.Status != models.ProposalSubmitted {
		t.Fatalf("expected submitted, got %s", p.Status)
	}
	if p.SubmittedAt == nil || !p.SubmittedAt.Equal(testNow) {
		t.Fatal("expected submittedAt to be set")
	}
	if p.ExpiresAt == nil || !p.ExpiresAt.Equal(*p.Pricing.PriceValidity) {
		t.Fatal("expected expiresAt to mirror price validity")
	}

	if err := SubmitProposal(&p, "vendor-1", testNow); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("expected transition error on resubmit, got %v", err)
	}
}

func TestAcceptRejectProposal(t *testing.T) {
	for _, status := range []models.ProposalStatus{
		models.ProposalSubmitted, models.ProposalUnderReview,
		models.ProposalShortlisted, models.ProposalClarificationNeeded,
	} {
		p := testProposal(status)
		if err := AcceptProposal(&p); err != nil {
			t.Errorf("accept from %s: %v", status, err)
		}
		p = testProposal(status)
		if err := RejectProposal(&p); err != nil {
			t.Errorf("reject from %s: %v", status, err)
		}
	}

	for _, status := range []models.ProposalStatus{
		models.ProposalDraft, models.ProposalRevised, models.ProposalAccepted,
		models.ProposalRejected, models.ProposalWithdrawn,
	} {
		p := testProposal(status)
		if err := AcceptProposal(&p); !errors.Is(err, models.ErrInvalidTransition) {
			t.Errorf("accept from %s should fail, got %v", status, err)
		}
	}
}

func TestWithdrawProposal(t *testing.T) {
	p := testProposal(models.ProposalShortlisted)
	if err := WithdrawProposal(&p, "intruder"); !errors.Is(err, models.ErrPermissionDenied) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if err := WithdrawProposal(&p, "vendor-1"); err != nil {
		t.Fatal(err)
	}
	if err := WithdrawProposal(&p, "vendor-1"); !errors.Is(err, models.ErrInvalidTransition) {
		t.Fatalf("expected transition error on double withdraw, got %v", err)
	}
}

func TestCanEditProposal(t *testing.T) {
	editable := []models.ProposalStatus{
		models.ProposalDraft, models.ProposalSubmitted, models.ProposalClarificationNeeded,
	}
	for _, status := range editable {
		if !CanEditProposal(testProposal(status), "vendor-1") {
			t.Errorf("expected %s to be editable by vendor", status)
		}
		if CanEditProposal(testProposal(status), "buyer-1") {
			t.Errorf("expected %s not editable by buyer", status)
		}
	}
	for _, status := range []models.ProposalStatus{
		models.ProposalUnderReview, models.ProposalAccepted, models.ProposalWithdrawn,
	} {
		if CanEditProposal(testProposal(status), "vendor-1") {
			t.Errorf("expected %s not editable", status)
		}
	}
}

func TestRecordChange(t *testing.T) {
	p := testProposal(models.ProposalSubmitted)

	RecordChange(&p, map[string]any{"pricing": "x"}, "discount", testNow)
	RecordChange(&p, map[string]any{"pricing": "y"}, "", testNow)

	if len(p.NegotiationHistory) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(p.NegotiationHistory))
	}
	if p.NegotiationHistory[0].Version != 1 || p.NegotiationHistory[1].Version != 2 {
		t.Fatal("versions must increase monotonically")
	}
}
