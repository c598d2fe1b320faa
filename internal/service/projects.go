package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sourcing/internal/lifecycle"
	"sourcing/internal/metrics"
	"sourcing/internal/models"
	"sourcing/internal/store"
)

// CreateProject registers a new draft project owned by the acting buyer.
func (s *Service) CreateProject(ctx context.Context, id Identity, p models.Project) (models.Project, error) {
	if id.Role != models.RoleBuyer {
		return models.Project{}, fmt.Errorf("service.CreateProject: %w: only buyers may create projects", models.ErrPermissionDenied)
	}

	now := s.now()
	p.Id = models.NewID(models.ProjectIDPrefix)
	p.Buyer = id.UserId
	p.Status = models.ProjectDraft
	if p.Visibility == "" {
		p.Visibility = models.VisibilityPublic
	}
	p.PublishedAt = nil
	p.CompletedAt = nil
	p.AwardedTo = nil
	p.Proposals = nil
	p.ProposalCount = 0
	p.Analytics = models.Analytics{}
	p.History = []models.HistoryEntry{{Action: "created", Actor: id.UserId, At: now}}
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := p.Validate(now); err != nil {
		return models.Project{}, fmt.Errorf("service.CreateProject: %w", err)
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return models.Project{}, fmt.Errorf("service.CreateProject: %w", err)
	}

	s.syncer.ProjectMutated(nil, p)
	return p, nil
}

// GetProject loads a project, applying opportunistic expiry and the
// visibility rules for the acting user. Successful reads by other users bump
// the view analytics.
func (s *Service) GetProject(ctx context.Context, id Identity, projectId string) (models.Project, error) {
	p, err := s.loadProjectFresh(ctx, projectId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.GetProject: %w", err)
	}

	hasProposal := false
	if id.UserId != "" && id.UserId != p.Buyer {
		_, err := s.store.ProposalByProjectVendor(ctx, p.Id, id.UserId)
		switch {
		case err == nil:
			hasProposal = true
		case errors.Is(err, models.ErrNotFound):
		default:
			return models.Project{}, fmt.Errorf("service.GetProject: %w", err)
		}
	}
	if !lifecycle.CanView(p, id.UserId, hasProposal) {
		return models.Project{}, fmt.Errorf("service.GetProject: %w: project %s is not visible", models.ErrPermissionDenied, projectId)
	}

	if id.UserId != p.Buyer {
		lifecycle.RecordView(&p, id.UserId)
		// Analytics are best effort; a lost view count is acceptable.
		if err := s.store.UpdateProject(ctx, p, p.Status); err != nil && !errors.Is(err, models.ErrConflict) {
			return models.Project{}, fmt.Errorf("service.GetProject: %w", err)
		}
	}
	return p, nil
}

// loadProjectFresh loads a project and applies opportunistic expiry when the
// deadline has passed between sweeps. A lost conditional update means a
// concurrent writer got there first; the reload reflects whatever it did.
func (s *Service) loadProjectFresh(ctx context.Context, projectId string) (models.Project, error) {
	p, err := s.store.ProjectByID(ctx, projectId)
	if err != nil {
		return models.Project{}, err
	}
	if !lifecycle.ApplyExpiry(&p, s.now()) {
		return p, nil
	}

	err = s.store.UpdateProject(ctx, p, models.ProjectActive)
	switch {
	case err == nil:
		metrics.Transition("project", string(models.ProjectExpired))
		s.syncer.ProjectMutated(nil, p)
		return p, nil
	case errors.Is(err, models.ErrConflict):
		return s.store.ProjectByID(ctx, projectId)
	default:
		return models.Project{}, err
	}
}

// ListProjects returns the projects matching the filter that the acting user
// may see. Proposal-derived visibility is not consulted for listings; vendors
// discover restricted projects through invitations.
func (s *Service) ListProjects(ctx context.Context, id Identity, f store.ProjectFilter) ([]models.Project, error) {
	projects, err := s.store.Projects(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("service.ListProjects: %w", err)
	}

	visible := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		if lifecycle.CanView(p, id.UserId, false) {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

func (s *Service) PublishProject(ctx context.Context, id Identity, projectId string) (models.Project, error) {
	p, err := s.store.ProjectByID(ctx, projectId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.PublishProject: %w", err)
	}
	before := p
	if err := lifecycle.PublishProject(&p, id.UserId, s.now()); err != nil {
		return models.Project{}, fmt.Errorf("service.PublishProject: %w", err)
	}
	if err := s.store.UpdateProject(ctx, p, before.Status); err != nil {
		return models.Project{}, fmt.Errorf("service.PublishProject: %w", err)
	}

	metrics.Transition("project", string(p.Status))
	s.syncer.ProjectMutated(&before, p)
	return p, nil
}

// AwardProject selects the winning proposal and closes the competition. The
// project update is conditional on the status the decision was made from, so
// two concurrent awards cannot both succeed. Losing proposals are rejected
// afterwards; a proposal that moved concurrently is left as it is.
func (s *Service) AwardProject(ctx context.Context, id Identity, projectId, proposalId string) (models.Project, error) {
	p, err := s.store.ProjectByID(ctx, projectId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.AwardProject: %w", err)
	}
	winner, err := s.store.ProposalByID(ctx, proposalId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.AwardProject: %w", err)
	}

	before := p
	winnerBefore := winner
	if err := lifecycle.AwardProject(&p, &winner, id.UserId, s.now()); err != nil {
		return models.Project{}, fmt.Errorf("service.AwardProject: %w", err)
	}
	if err := lifecycle.AcceptProposal(&winner); err != nil {
		return models.Project{}, fmt.Errorf("service.AwardProject: %w", err)
	}

	if err := s.store.UpdateProject(ctx, p, before.Status); err != nil {
		return models.Project{}, fmt.Errorf("service.AwardProject: %w", err)
	}
	metrics.Transition("project", string(p.Status))
	s.syncer.ProjectMutated(&before, p)

	if err := s.store.UpdateProposal(ctx, winner, winnerBefore.Status); err != nil {
		return models.Project{}, fmt.Errorf("service.AwardProject: %w", err)
	}
	metrics.Transition("proposal", string(winner.Status))
	s.syncer.ProposalMutated(p, &winnerBefore, winner)

	if err := s.rejectLosers(ctx, p, winner.Id); err != nil {
		return models.Project{}, fmt.Errorf("service.AwardProject: %w", err)
	}
	return p, nil
}

func (s *Service) rejectLosers(ctx context.Context, p models.Project, winnerId string) error {
	proposals, err := s.store.Proposals(ctx, store.ProposalFilter{ProjectId: p.Id})
	if err != nil {
		return err
	}
	for _, prop := range proposals {
		if prop.Id == winnerId || !prop.Status.Awardable() {
			continue
		}
		loserBefore := prop
		if err := lifecycle.RejectProposal(&prop); err != nil {
			continue
		}
		err := s.store.UpdateProposal(ctx, prop, loserBefore.Status)
		if errors.Is(err, models.ErrConflict) || errors.Is(err, models.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		metrics.Transition("proposal", string(prop.Status))
		s.syncer.ProposalMutated(p, &loserBefore, prop)
	}
	return nil
}

func (s *Service) CancelProject(ctx context.Context, id Identity, projectId string) (models.Project, error) {
	return s.transitionProject(ctx, projectId, "service.CancelProject", func(p *models.Project) error {
		return lifecycle.CancelProject(p, id.UserId, s.now())
	})
}

func (s *Service) StartProject(ctx context.Context, id Identity, projectId string) (models.Project, error) {
	return s.transitionProject(ctx, projectId, "service.StartProject", func(p *models.Project) error {
		return lifecycle.StartProject(p, id.UserId, s.now())
	})
}

func (s *Service) CompleteProject(ctx context.Context, id Identity, projectId string) (models.Project, error) {
	return s.transitionProject(ctx, projectId, "service.CompleteProject", func(p *models.Project) error {
		return lifecycle.CompleteProject(p, id.UserId, s.now())
	})
}

func (s *Service) transitionProject(ctx context.Context, projectId, op string, mutate func(*models.Project) error) (models.Project, error) {
	p, err := s.store.ProjectByID(ctx, projectId)
	if err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}
	before := p
	if err := mutate(&p); err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.store.UpdateProject(ctx, p, before.Status); err != nil {
		return models.Project{}, fmt.Errorf("%s: %w", op, err)
	}

	metrics.Transition("project", string(p.Status))
	s.syncer.ProjectMutated(&before, p)
	return p, nil
}

// InviteVendor records a pending invitation and notifies the vendor.
func (s *Service) InviteVendor(ctx context.Context, id Identity, projectId, vendorId string) (models.Project, error) {
	vendor, err := s.store.UserByID(ctx, vendorId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.InviteVendor: %w", err)
	}
	if vendor.Role != models.RoleVendor {
		return models.Project{}, fmt.Errorf("service.InviteVendor: %w: user %s is not a vendor", models.ErrValidation, vendorId)
	}

	p, err := s.store.ProjectByID(ctx, projectId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.InviteVendor: %w", err)
	}
	before := p
	if err := lifecycle.InviteVendor(&p, id.UserId, vendorId, s.now()); err != nil {
		return models.Project{}, fmt.Errorf("service.InviteVendor: %w", err)
	}
	if err := s.store.UpdateProject(ctx, p, before.Status); err != nil {
		return models.Project{}, fmt.Errorf("service.InviteVendor: %w", err)
	}

	if p.Status != models.ProjectDraft {
		s.syncer.VendorInvited(p, vendorId)
	}
	return p, nil
}

// RespondInvitation flips the acting vendor's own invitation sub-state.
func (s *Service) RespondInvitation(ctx context.Context, id Identity, projectId string, accept bool) (models.Project, error) {
	p, err := s.store.ProjectByID(ctx, projectId)
	if err != nil {
		return models.Project{}, fmt.Errorf("service.RespondInvitation: %w", err)
	}
	before := p
	if err := lifecycle.RespondInvitation(&p, id.UserId, accept, s.now()); err != nil {
		return models.Project{}, fmt.Errorf("service.RespondInvitation: %w", err)
	}
	if err := s.store.UpdateProject(ctx, p, before.Status); err != nil {
		return models.Project{}, fmt.Errorf("service.RespondInvitation: %w", err)
	}
	return p, nil
}

// ExpireDue runs the batch expiry sweep and resynchronizes every project it
// moved.
func (s *Service) ExpireDue(ctx context.Context) ([]string, error) {
	ids, err := s.store.ExpireDueProjects(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("service.ExpireDue: %w", err)
	}
	for _, projectId := range ids {
		metrics.Transition("project", string(models.ProjectExpired))
		p, err := s.store.ProjectByID(ctx, projectId)
		if err != nil {
			return ids, fmt.Errorf("service.ExpireDue: %w", err)
		}
		s.syncer.ProjectMutated(nil, p)
	}
	return ids, nil
}

// NotifyExpiring warns buyers whose active projects close within the window.
func (s *Service) NotifyExpiring(ctx context.Context, window time.Duration) (int, error) {
	now := s.now()
	until := now.Add(window)
	projects, err := s.store.Projects(ctx, store.ProjectFilter{
		Status:         models.ProjectActive,
		DeadlineAfter:  &now,
		DeadlineBefore: &until,
	})
	if err != nil {
		return 0, fmt.Errorf("service.NotifyExpiring: %w", err)
	}
	for _, p := range projects {
		s.syncer.ProjectExpiring(p)
	}
	return len(projects), nil
}
