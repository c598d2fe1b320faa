package service

import (
	"context"
	"errors"
	"fmt"

	"sourcing/internal/lifecycle"
	"sourcing/internal/metrics"
	"sourcing/internal/models"
	"sourcing/internal/store"
)

// CreateProposal registers a draft proposal for the acting vendor. Submission
// eligibility is checked at creation as well, so a vendor cannot stage drafts
// against projects they could never submit to.
func (s *Service) CreateProposal(ctx context.Context, id Identity, prop models.Proposal) (models.Proposal, error) {
	p, err := s.loadProjectFresh(ctx, prop.ProjectId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.CreateProposal: %w", err)
	}

	now := s.now()
	if !lifecycle.CanSubmitProposal(p, id.UserId, id.Role, now) {
		return models.Proposal{}, fmt.Errorf("service.CreateProposal: %w: vendor %s may not propose on project %s", models.ErrPermissionDenied, id.UserId, p.Id)
	}

	prop.Id = models.NewID(models.ProposalIDPrefix)
	prop.Vendor = id.UserId
	prop.Status = models.ProposalDraft
	prop.Evaluation = models.Evaluation{}
	prop.NegotiationHistory = nil
	prop.Messages = nil
	prop.SubmittedAt = nil
	prop.ExpiresAt = nil
	prop.CreatedAt = now
	prop.UpdatedAt = now

	if err := prop.Validate(); err != nil {
		return models.Proposal{}, fmt.Errorf("service.CreateProposal: %w", err)
	}
	if err := s.store.CreateProposal(ctx, prop); err != nil {
		return models.Proposal{}, fmt.Errorf("service.CreateProposal: %w", err)
	}

	// The back reference is advisory; the proposal store is authoritative.
	lifecycle.AddProposalRef(&p, prop.Id)
	if err := s.store.UpdateProject(ctx, p, p.Status); err != nil && !errors.Is(err, models.ErrConflict) {
		return models.Proposal{}, fmt.Errorf("service.CreateProposal: %w", err)
	}
	return prop, nil
}

func (s *Service) GetProposal(ctx context.Context, id Identity, proposalId string) (models.Proposal, error) {
	prop, err := s.store.ProposalByID(ctx, proposalId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.GetProposal: %w", err)
	}
	if err := s.checkProposalParty(ctx, id, prop); err != nil {
		return models.Proposal{}, fmt.Errorf("service.GetProposal: %w", err)
	}
	return prop, nil
}

// checkProposalParty admits only the proposing vendor and the project buyer.
func (s *Service) checkProposalParty(ctx context.Context, id Identity, prop models.Proposal) error {
	if id.UserId == prop.Vendor {
		return nil
	}
	p, err := s.store.ProjectByID(ctx, prop.ProjectId)
	if err != nil {
		return err
	}
	if id.UserId != p.Buyer {
		return fmt.Errorf("%w: proposal %s is not visible", models.ErrPermissionDenied, prop.Id)
	}
	return nil
}

// SubmitProposal moves the vendor's draft into the competition. The project
// must still be accepting proposals at submission time.
func (s *Service) SubmitProposal(ctx context.Context, id Identity, proposalId string) (models.Proposal, error) {
	prop, err := s.store.ProposalByID(ctx, proposalId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.SubmitProposal: %w", err)
	}
	p, err := s.loadProjectFresh(ctx, prop.ProjectId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.SubmitProposal: %w", err)
	}

	now := s.now()
	if !lifecycle.CanSubmitProposal(p, id.UserId, id.Role, now) {
		return models.Proposal{}, fmt.Errorf("service.SubmitProposal: %w: project %s is not accepting proposals from vendor %s", models.ErrPermissionDenied, p.Id, id.UserId)
	}

	before := prop
	if err := lifecycle.SubmitProposal(&prop, id.UserId, now); err != nil {
		return models.Proposal{}, fmt.Errorf("service.SubmitProposal: %w", err)
	}
	if err := s.store.UpdateProposal(ctx, prop, before.Status); err != nil {
		return models.Proposal{}, fmt.Errorf("service.SubmitProposal: %w", err)
	}

	metrics.Transition("proposal", string(prop.Status))
	s.syncer.ProposalMutated(p, &before, prop)
	return prop, nil
}

func (s *Service) WithdrawProposal(ctx context.Context, id Identity, proposalId string) (models.Proposal, error) {
	prop, err := s.store.ProposalByID(ctx, proposalId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.WithdrawProposal: %w", err)
	}
	p, err := s.store.ProjectByID(ctx, prop.ProjectId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.WithdrawProposal: %w", err)
	}

	before := prop
	if err := lifecycle.WithdrawProposal(&prop, id.UserId); err != nil {
		return models.Proposal{}, fmt.Errorf("service.WithdrawProposal: %w", err)
	}
	if err := s.store.UpdateProposal(ctx, prop, before.Status); err != nil {
		return models.Proposal{}, fmt.Errorf("service.WithdrawProposal: %w", err)
	}

	metrics.Transition("proposal", string(prop.Status))
	s.syncer.ProposalMutated(p, &before, prop)
	return prop, nil
}

// ProposalEdit carries the fields a vendor may change while a proposal is
// editable. Nil fields are left untouched.
type ProposalEdit struct {
	Pricing     *models.ProposalPricing
	Delivery    *models.ProposalDelivery
	CoverLetter *string
	Reason      string
}

// EditProposal applies a vendor revision. Pricing changes are versioned in
// the negotiation history.
func (s *Service) EditProposal(ctx context.Context, id Identity, proposalId string, edit ProposalEdit) (models.Proposal, error) {
	prop, err := s.store.ProposalByID(ctx, proposalId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.EditProposal: %w", err)
	}
	if !lifecycle.CanEditProposal(prop, id.UserId) {
		return models.Proposal{}, fmt.Errorf("service.EditProposal: %w: proposal %s is not editable by %s", models.ErrPermissionDenied, proposalId, id.UserId)
	}

	before := prop
	changes := map[string]any{}
	if edit.Pricing != nil {
		changes["pricing"] = map[string]any{
			"from": prop.Pricing.TotalPrice,
			"to":   edit.Pricing.TotalPrice,
		}
		prop.Pricing = *edit.Pricing
	}
	if edit.Delivery != nil {
		prop.Delivery = *edit.Delivery
	}
	if edit.CoverLetter != nil {
		prop.CoverLetter = *edit.CoverLetter
	}
	if err := prop.Validate(); err != nil {
		return models.Proposal{}, fmt.Errorf("service.EditProposal: %w", err)
	}
	if len(changes) > 0 {
		lifecycle.RecordChange(&prop, changes, edit.Reason, s.now())
	}

	if err := s.store.UpdateProposal(ctx, prop, before.Status); err != nil {
		return models.Proposal{}, fmt.Errorf("service.EditProposal: %w", err)
	}
	return prop, nil
}

// ReviewProposal applies a buyer-side review transition: under-review,
// clarification-needed, shortlisted, revised, accepted or rejected.
func (s *Service) ReviewProposal(ctx context.Context, id Identity, proposalId string, to models.ProposalStatus) (models.Proposal, error) {
	prop, err := s.store.ProposalByID(ctx, proposalId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.ReviewProposal: %w", err)
	}
	p, err := s.store.ProjectByID(ctx, prop.ProjectId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.ReviewProposal: %w", err)
	}
	if id.UserId != p.Buyer {
		return models.Proposal{}, fmt.Errorf("service.ReviewProposal: %w: only the buyer may review proposals", models.ErrPermissionDenied)
	}

	before := prop
	if err := lifecycle.TransitionProposal(&prop, to); err != nil {
		return models.Proposal{}, fmt.Errorf("service.ReviewProposal: %w", err)
	}
	if err := s.store.UpdateProposal(ctx, prop, before.Status); err != nil {
		return models.Proposal{}, fmt.Errorf("service.ReviewProposal: %w", err)
	}

	metrics.Transition("proposal", string(prop.Status))
	s.syncer.ProposalMutated(p, &before, prop)
	return prop, nil
}

// EvaluateProposal records the buyer's component scores and derives the
// weighted overall score.
func (s *Service) EvaluateProposal(ctx context.Context, id Identity, proposalId string, scores models.Scores, notes string) (models.Proposal, error) {
	prop, err := s.store.ProposalByID(ctx, proposalId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.EvaluateProposal: %w", err)
	}
	p, err := s.store.ProjectByID(ctx, prop.ProjectId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.EvaluateProposal: %w", err)
	}
	if id.UserId != p.Buyer {
		return models.Proposal{}, fmt.Errorf("service.EvaluateProposal: %w: only the buyer may evaluate proposals", models.ErrPermissionDenied)
	}
	if err := lifecycle.ValidateScores(scores); err != nil {
		return models.Proposal{}, fmt.Errorf("service.EvaluateProposal: %w", err)
	}

	before := prop
	now := s.now()
	scores.Overall = lifecycle.Score(scores)
	prop.Evaluation = models.Evaluation{
		Scores:      scores,
		Notes:       notes,
		EvaluatedBy: id.UserId,
		EvaluatedAt: &now,
	}
	if err := s.store.UpdateProposal(ctx, prop, before.Status); err != nil {
		return models.Proposal{}, fmt.Errorf("service.EvaluateProposal: %w", err)
	}
	return prop, nil
}

// TopProposals returns the project's proposals ranked for comparison.
func (s *Service) TopProposals(ctx context.Context, id Identity, projectId string, limit int) ([]models.Proposal, error) {
	p, err := s.store.ProjectByID(ctx, projectId)
	if err != nil {
		return nil, fmt.Errorf("service.TopProposals: %w", err)
	}
	if id.UserId != p.Buyer {
		return nil, fmt.Errorf("service.TopProposals: %w: only the buyer may rank proposals", models.ErrPermissionDenied)
	}

	proposals, err := s.store.Proposals(ctx, store.ProposalFilter{ProjectId: projectId})
	if err != nil {
		return nil, fmt.Errorf("service.TopProposals: %w", err)
	}
	ranked := lifecycle.Rank(proposals)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// ListProposals returns a vendor's own proposals, or a buyer's view of a
// project's proposals.
func (s *Service) ListProposals(ctx context.Context, id Identity, f store.ProposalFilter) ([]models.Proposal, error) {
	if f.ProjectId != "" {
		p, err := s.store.ProjectByID(ctx, f.ProjectId)
		if err != nil {
			return nil, fmt.Errorf("service.ListProposals: %w", err)
		}
		if id.UserId != p.Buyer {
			f.Vendor = id.UserId
		}
	} else {
		f.Vendor = id.UserId
	}

	proposals, err := s.store.Proposals(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service.ListProposals: %w", err)
	}
	return proposals, nil
}

// AddProposalMessage appends to the proposal thread and notifies the
// counterparty.
func (s *Service) AddProposalMessage(ctx context.Context, id Identity, proposalId, text string) (models.Proposal, error) {
	if text == "" {
		return models.Proposal{}, fmt.Errorf("service.AddProposalMessage: %w: message text is required", models.ErrValidation)
	}
	prop, err := s.store.ProposalByID(ctx, proposalId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.AddProposalMessage: %w", err)
	}
	p, err := s.store.ProjectByID(ctx, prop.ProjectId)
	if err != nil {
		return models.Proposal{}, fmt.Errorf("service.AddProposalMessage: %w", err)
	}

	var recipient string
	switch id.UserId {
	case prop.Vendor:
		recipient = p.Buyer
	case p.Buyer:
		recipient = prop.Vendor
	default:
		return models.Proposal{}, fmt.Errorf("service.AddProposalMessage: %w: only the vendor and the buyer may message", models.ErrPermissionDenied)
	}

	before := prop
	lifecycle.AddMessage(&prop, id.UserId, id.Role, text, s.now())
	if err := s.store.UpdateProposal(ctx, prop, before.Status); err != nil {
		return models.Proposal{}, fmt.Errorf("service.AddProposalMessage: %w", err)
	}

	s.syncer.ProposalMessage(p, prop, id.UserId, recipient)
	return prop, nil
}
