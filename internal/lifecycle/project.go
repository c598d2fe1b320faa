package lifecycle

import (
	"fmt"
	"time"

	"sourcing/internal/models"
)

// projectEdges enumerates every legal project status transition. Cancellation
// from non-terminal states is handled separately in CancelProject.
var projectEdges = map[models.ProjectStatus][]models.ProjectStatus{
	models.ProjectDraft:      {models.ProjectActive},
	models.ProjectActive:     {models.ProjectInReview, models.ProjectAwarded, models.ProjectExpired},
	models.ProjectInReview:   {models.ProjectAwarded},
	models.ProjectAwarded:    {models.ProjectInProgress},
	models.ProjectInProgress: {models.ProjectCompleted},
}

// CanTransitionProject reports whether the edge from one project status to
// another is part of the state machine.
func CanTransitionProject(from, to models.ProjectStatus) bool {
	if to == models.ProjectCancelled {
		return !from.Terminal()
	}
	for _, next := range projectEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

func appendProjectHistory(p *models.Project, action, actor string, at time.Time, changes map[string]any) {
	p.History = append(p.History, models.HistoryEntry{
		Action:  action,
		Actor:   actor,
		At:      at,
		Changes: changes,
	})
}

// PublishProject moves a draft project to active. PublishedAt is set exactly
// once; republishing after a rollback keeps the original timestamp.
func PublishProject(p *models.Project, actor string, now time.Time) error {
	if actor != p.Buyer {
		return fmt.Errorf("lifecycle.PublishProject: %w: only the buyer may publish", models.ErrPermissionDenied)
	}
	if p.Status != models.ProjectDraft {
		return fmt.Errorf("lifecycle.PublishProject: %w: cannot publish from %q", models.ErrInvalidTransition, p.Status)
	}

	p.Status = models.ProjectActive
	if p.PublishedAt == nil {
		at := now
		p.PublishedAt = &at
	}
	appendProjectHistory(p, "published", actor, now, map[string]any{"status": string(models.ProjectActive)})
	return nil
}

// AwardProject selects the winning proposal. The caller is responsible for
// transitioning the winning and losing proposals and for handing every
// mutation to the consistency synchronizer.
func AwardProject(p *models.Project, prop *models.Proposal, actor string, now time.Time) error {
	if actor != p.Buyer {
		return fmt.Errorf("lifecycle.AwardProject: %w: only the buyer may award", models.ErrPermissionDenied)
	}
	if p.Status != models.ProjectActive && p.Status != models.ProjectInReview {
		return fmt.Errorf("lifecycle.AwardProject: %w: cannot award from %q", models.ErrInvalidTransition, p.Status)
	}
	if prop.ProjectId != p.Id {
		return fmt.Errorf("lifecycle.AwardProject: %w: proposal %s does not belong to project %s", models.ErrValidation, prop.Id, p.Id)
	}
	if !prop.Status.Awardable() {
		return fmt.Errorf("lifecycle.AwardProject: %w: proposal in status %q cannot be awarded", models.ErrInvalidTransition, prop.Status)
	}

	p.AwardedTo = &models.Award{
		Vendor:        prop.Vendor,
		Proposal:      prop.Id,
		AwardedAt:     now,
		ContractValue: prop.Pricing.TotalPrice,
	}
	p.Status = models.ProjectAwarded
	appendProjectHistory(p, "awarded", actor, now, map[string]any{
		"proposal": prop.Id,
		"vendor":   prop.Vendor,
	})
	return nil
}

// CancelProject is buyer-initiated and legal from any non-terminal state.
func CancelProject(p *models.Project, actor string, now time.Time) error {
	if actor != p.Buyer {
		return fmt.Errorf("lifecycle.CancelProject: %w: only the buyer may cancel", models.ErrPermissionDenied)
	}
	if p.Status.Terminal() {
		return fmt.Errorf("lifecycle.CancelProject: %w: project already %q", models.ErrInvalidTransition, p.Status)
	}

	p.Status = models.ProjectCancelled
	appendProjectHistory(p, "cancelled", actor, now, map[string]any{"status": string(models.ProjectCancelled)})
	return nil
}

// StartProject moves an awarded project into progress.
func StartProject(p *models.Project, actor string, now time.Time) error {
	if actor != p.Buyer {
		return fmt.Errorf("lifecycle.StartProject: %w: only the buyer may start the project", models.ErrPermissionDenied)
	}
	if p.Status != models.ProjectAwarded {
		return fmt.Errorf("lifecycle.StartProject: %w: cannot start from %q", models.ErrInvalidTransition, p.Status)
	}

	p.Status = models.ProjectInProgress
	appendProjectHistory(p, "started", actor, now, map[string]any{"status": string(models.ProjectInProgress)})
	return nil
}

// CompleteProject finishes an in-progress project. CompletedAt is set once.
func CompleteProject(p *models.Project, actor string, now time.Time) error {
	if actor != p.Buyer {
		return fmt.Errorf("lifecycle.CompleteProject: %w: only the buyer may complete the project", models.ErrPermissionDenied)
	}
	if p.Status != models.ProjectInProgress {
		return fmt.Errorf("lifecycle.CompleteProject: %w: cannot complete from %q", models.ErrInvalidTransition, p.Status)
	}

	p.Status = models.ProjectCompleted
	if p.CompletedAt == nil {
		at := now
		p.CompletedAt = &at
	}
	appendProjectHistory(p, "completed", actor, now, map[string]any{"status": string(models.ProjectCompleted)})
	return nil
}

// ApplyExpiry is the opportunistic per-record expiry check. The batch sweep
// in the store is the authoritative one; this catches records between sweeps.
// It reports whether the project was mutated.
func ApplyExpiry(p *models.Project, now time.Time) bool {
	if p.Status != models.ProjectActive || !p.Deadline.Before(now) {
		return false
	}
	p.Status = models.ProjectExpired
	appendProjectHistory(p, "auto_expired", "", now, map[string]any{"status": string(models.ProjectExpired)})
	return true
}

// RecordView bumps the view counter and adds the viewer to the unique-viewer
// set. The set uses identity equality, not insertion order.
func RecordView(p *models.Project, viewerId string) {
	p.Analytics.ViewCount++
	if viewerId == "" {
		return
	}
	for _, v := range p.Analytics.UniqueViewers {
		if v == viewerId {
			return
		}
	}
	p.Analytics.UniqueViewers = append(p.Analytics.UniqueViewers, viewerId)
}

// AddProposalRef registers a proposal identifier on the project, keeping
// ProposalCount equal to the length of the reference list.
func AddProposalRef(p *models.Project, proposalId string) {
	for _, id := range p.Proposals {
		if id == proposalId {
			return
		}
	}
	p.Proposals = append(p.Proposals, proposalId)
	p.ProposalCount = len(p.Proposals)
}

// InviteVendor appends a pending invitation for the vendor.
func InviteVendor(p *models.Project, actor, vendor string, now time.Time) error {
	if actor != p.Buyer {
		return fmt.Errorf("lifecycle.InviteVendor: %w: only the buyer may invite vendors", models.ErrPermissionDenied)
	}
	if p.Status.Terminal() {
		return fmt.Errorf("lifecycle.InviteVendor: %w: project already %q", models.ErrInvalidTransition, p.Status)
	}
	for _, inv := range p.InvitedVendors {
		if inv.Vendor == vendor {
			return fmt.Errorf("lifecycle.InviteVendor: %w: vendor %s already invited", models.ErrValidation, vendor)
		}
	}

	p.InvitedVendors = append(p.InvitedVendors, models.Invitation{
		Vendor:    vendor,
		InvitedAt: now,
		Status:    models.InvitationPending,
	})
	appendProjectHistory(p, "vendor_invited", actor, now, map[string]any{"vendor": vendor})
	return nil
}

// RespondInvitation flips the acting vendor's own invitation sub-state.
func RespondInvitation(p *models.Project, vendor string, accept bool, now time.Time) error {
	for i := range p.InvitedVendors {
		if p.InvitedVendors[i].Vendor != vendor {
			continue
		}
		status := models.InvitationDeclined
		if accept {
			status = models.InvitationAccepted
		}
		p.InvitedVendors[i].Status = status
		appendProjectHistory(p, "invitation_"+string(status), vendor, now, nil)
		return nil
	}
	return fmt.Errorf("lifecycle.RespondInvitation: %w: no invitation for vendor %s", models.ErrNotFound, vendor)
}
