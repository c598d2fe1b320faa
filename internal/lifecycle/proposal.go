package lifecycle

import (
	"fmt"
	"time"

	"sourcing/internal/models"
)

// proposalEdges enumerates the legal proposal status transitions. Withdrawal
// from non-terminal states is handled separately in WithdrawProposal.
var proposalEdges = map[models.ProposalStatus][]models.ProposalStatus{
	models.ProposalDraft: {models.ProposalSubmitted},
	models.ProposalSubmitted: {
		models.ProposalUnderReview, models.ProposalClarificationNeeded,
		models.ProposalShortlisted, models.ProposalAccepted, models.ProposalRejected,
	},
	models.ProposalUnderReview: {
		models.ProposalClarificationNeeded, models.ProposalShortlisted,
		models.ProposalAccepted, models.ProposalRejected,
	},
	models.ProposalClarificationNeeded: {
		models.ProposalRevised, models.ProposalAccepted, models.ProposalRejected,
	},
	models.ProposalRevised: {models.ProposalUnderReview, models.ProposalShortlisted},
	models.ProposalShortlisted: {
		models.ProposalAccepted, models.ProposalRejected,
	},
}

func CanTransitionProposal(from, to models.ProposalStatus) bool {
	if to == models.ProposalWithdrawn {
		return !from.Terminal()
	}
	for _, next := range proposalEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionProposal performs a generic edge-checked status change. The
// explicit operations below should be preferred where they exist; this covers
// the buyer-side review states.
func TransitionProposal(p *models.Proposal, to models.ProposalStatus) error {
	if !models.ValidProposalStatus(to) {
		return fmt.Errorf("lifecycle.TransitionProposal: %w: unknown status %q", models.ErrValidation, to)
	}
	if !CanTransitionProposal(p.Status, to) {
		return fmt.Errorf("lifecycle.TransitionProposal: %w: %q -> %q", models.ErrInvalidTransition, p.Status, to)
	}
	p.Status = to
	return nil
}

// SubmitProposal moves a draft proposal to submitted. SubmittedAt is set
// exactly once and ExpiresAt is derived from the price validity date, which
// must be present and not earlier than submission.
func SubmitProposal(p *models.Proposal, actor string, now time.Time) error {
	if actor != p.Vendor {
		return fmt.Errorf("lifecycle.SubmitProposal: %w: only the vendor may submit", models.ErrPermissionDenied)
	}
	if p.Status != models.ProposalDraft {
		return fmt.Errorf("lifecycle.SubmitProposal: %w: cannot submit from %q", models.ErrInvalidTransition, p.Status)
	}
	if p.Pricing.PriceValidity == nil {
		return fmt.Errorf("lifecycle.SubmitProposal: %w", models.ErrMissingPriceValidity)
	}
	if p.Pricing.PriceValidity.Before(now) {
		return fmt.Errorf("lifecycle.SubmitProposal: %w: price validity must not be earlier than submission", models.ErrValidation)
	}

	p.Status = models.ProposalSubmitted
	if p.SubmittedAt == nil {
		at := now
		p.SubmittedAt = &at
	}
	expires := *p.Pricing.PriceValidity
	p.ExpiresAt = &expires
	return nil
}

// AcceptProposal is irreversible and only legal from an awardable status.
func AcceptProposal(p *models.Proposal) error {
	if !p.Status.Awardable() {
		return fmt.Errorf("lifecycle.AcceptProposal: %w: cannot accept from %q", models.ErrInvalidTransition, p.Status)
	}
	p.Status = models.ProposalAccepted
	return nil
}

// RejectProposal is irreversible and only legal from an awardable status.
func RejectProposal(p *models.Proposal) error {
	if !p.Status.Awardable() {
		return fmt.Errorf("lifecycle.RejectProposal: %w: cannot reject from %q", models.ErrInvalidTransition, p.Status)
	}
	p.Status = models.ProposalRejected
	return nil
}

// WithdrawProposal is vendor-initiated and legal from any non-terminal state.
func WithdrawProposal(p *models.Proposal, actor string) error {
	if actor != p.Vendor {
		return fmt.Errorf("lifecycle.WithdrawProposal: %w: only the vendor may withdraw", models.ErrPermissionDenied)
	}
	if p.Status.Terminal() {
		return fmt.Errorf("lifecycle.WithdrawProposal: %w: proposal already %q", models.ErrInvalidTransition, p.Status)
	}
	p.Status = models.ProposalWithdrawn
	return nil
}

// CanEditProposal gates boundary-layer update requests.
func CanEditProposal(p models.Proposal, actor string) bool {
	if actor != p.Vendor {
		return false
	}
	switch p.Status {
	case models.ProposalDraft, models.ProposalSubmitted, models.ProposalClarificationNeeded:
		return true
	default:
		return false
	}
}

// RecordChange appends a versioned entry to the negotiation history. History
// is append-only; version numbers increase monotonically per proposal.
func RecordChange(p *models.Proposal, changes map[string]any, reason string, now time.Time) {
	p.NegotiationHistory = append(p.NegotiationHistory, models.NegotiationEntry{
		Version:   len(p.NegotiationHistory) + 1,
		Changes:   changes,
		ChangedAt: now,
		Reason:    reason,
	})
}

// AddMessage appends to the proposal's message thread.
func AddMessage(p *models.Proposal, sender string, role models.Role, text string, now time.Time) {
	p.Messages = append(p.Messages, models.Message{
		Sender:     sender,
		SenderRole: role,
		Text:       text,
		SentAt:     now,
	})
}
