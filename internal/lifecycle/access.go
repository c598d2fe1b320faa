package lifecycle

import (
	"time"

	"sourcing/internal/models"
)

// CanView resolves view permission for a project. hasProposal tells whether
// the user has a proposal on this project; the caller resolves it against the
// store since the project only holds proposal identifiers.
func CanView(p models.Project, userId string, hasProposal bool) bool {
	if p.Visibility == models.VisibilityPublic {
		return true
	}
	if p.Buyer == userId {
		return true
	}
	if p.Visibility == models.VisibilityInviteOnly {
		return hasAcceptedInvitation(p, userId)
	}
	return hasProposal
}

// CanSubmitProposal resolves submission permission. Private projects are
// treated as invite-only-or-stricter: an accepted invitation is required.
func CanSubmitProposal(p models.Project, userId string, role models.Role, now time.Time) bool {
	if role != models.RoleVendor {
		return false
	}
	if p.Buyer == userId {
		return false
	}
	if p.Status != models.ProjectActive {
		return false
	}
	if p.Deadline.Before(now) {
		return false
	}
	switch p.Visibility {
	case models.VisibilityInviteOnly, models.VisibilityPrivate:
		return hasAcceptedInvitation(p, userId)
	}
	return true
}

func hasAcceptedInvitation(p models.Project, userId string) bool {
	for _, inv := range p.InvitedVendors {
		if inv.Vendor == userId && inv.Status == models.InvitationAccepted {
			return true
		}
	}
	return false
}
