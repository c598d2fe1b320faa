package lifecycle

import (
	"testing"
	"time"

	"sourcing/internal/models"
)

func accessProject(visibility models.Visibility) models.Project {
	p := testProject(models.ProjectActive)
	p.Visibility = visibility
	return p
}

func TestCanViewPublic(t *testing.T) {
	p := accessProject(models.VisibilityPublic)
	if !CanView(p, "anyone", false) {
		t.Fatal("public project should be visible to anyone")
	}
	if !CanView(p, "", false) {
		t.Fatal("public project should be visible without identity")
	}
}

func TestCanViewInviteOnly(t *testing.T) {
	p := accessProject(models.VisibilityInviteOnly)
	p.InvitedVendors = []models.Invitation{
		{Vendor: "vendor-accepted", Status: models.InvitationAccepted},
		{Vendor: "vendor-pending", Status: models.InvitationPending},
	}

	if !CanView(p, "buyer-1", false) {
		t.Fatal("owner should always see the project")
	}
	if !CanView(p, "vendor-accepted", false) {
		t.Fatal("vendor with accepted invitation should see the project")
	}
	if CanView(p, "vendor-pending", false) {
		t.Fatal("pending invitation should not grant view")
	}
	if CanView(p, "stranger", false) {
		t.Fatal("stranger should not see invite-only project")
	}
}

func TestCanViewPrivate(t *testing.T) {
	p := accessProject(models.VisibilityPrivate)

	if !CanView(p, "buyer-1", false) {
		t.Fatal("owner should see private project")
	}
	if !CanView(p, "vendor-1", true) {
		t.Fatal("proposing vendor should see private project")
	}
	if CanView(p, "vendor-1", false) {
		t.Fatal("non-proposing vendor should not see private project")
	}
}

func TestCanSubmitProposal(t *testing.T) {
	p := accessProject(models.VisibilityPublic)

	if !CanSubmitProposal(p, "vendor-1", models.RoleVendor, testNow) {
		t.Fatal("vendor should be able to submit to active public project")
	}
	if CanSubmitProposal(p, "vendor-1", models.RoleBuyer, testNow) {
		t.Fatal("buyers must not submit proposals")
	}
	if CanSubmitProposal(p, "buyer-1", models.RoleVendor, testNow) {
		t.Fatal("owner must not submit to own project")
	}

	draft := p
	draft.Status = models.ProjectDraft
	if CanSubmitProposal(draft, "vendor-1", models.RoleVendor, testNow) {
		t.Fatal("submissions only allowed on active projects")
	}

	late := p
	late.Deadline = testNow.Add(-time.Minute)
	if CanSubmitProposal(late, "vendor-1", models.RoleVendor, testNow) {
		t.Fatal("submissions after deadline must be denied")
	}
}

func TestCanSubmitProposalRestricted(t *testing.T) {
	for _, visibility := range []models.Visibility{models.VisibilityInviteOnly, models.VisibilityPrivate} {
		p := accessProject(visibility)
		p.InvitedVendors = []models.Invitation{
			{Vendor: "vendor-accepted", Status: models.InvitationAccepted},
			{Vendor: "vendor-declined", Status: models.InvitationDeclined},
		}

		if !CanSubmitProposal(p, "vendor-accepted", models.RoleVendor, testNow) {
			t.Errorf("%s: accepted invitation should allow submission", visibility)
		}
		if CanSubmitProposal(p, "vendor-declined", models.RoleVendor, testNow) {
			t.Errorf("%s: declined invitation must not allow submission", visibility)
		}
		if CanSubmitProposal(p, "vendor-stranger", models.RoleVendor, testNow) {
			t.Errorf("%s: uninvited vendor must not submit", visibility)
		}
	}
}
