// Package store is the entity-store boundary. All mutable entity state is
// owned here; lifecycle operations load fresh state, validate, and write
// back. Conditional updates and the proposal uniqueness constraint are
// enforced at this boundary, not only in application logic.
package store

import (
	"context"
	"time"

	"sourcing/internal/models"
)

type ProjectFilter struct {
	Buyer          string
	Category       string
	Status         models.ProjectStatus
	DeadlineAfter  *time.Time
	DeadlineBefore *time.Time
	Limit          int
	Offset         int
}

type ProposalFilter struct {
	ProjectId string
	Vendor    string
	Statuses  []models.ProposalStatus
	Limit     int
	Offset    int
}

// Store is the persistent document-store contract. Updates taking an
// expected status are conditional: when the stored record no longer matches,
// the update fails with models.ErrConflict so that two concurrent
// read-modify-write operations cannot both succeed. An empty expected status
// makes the update unconditional. Absent records fail with models.ErrNotFound.
type Store interface {
	CreateProject(ctx context.Context, p models.Project) error
	ProjectByID(ctx context.Context, id string) (models.Project, error)
	Projects(ctx context.Context, f ProjectFilter) ([]models.Project, error)
	UpdateProject(ctx context.Context, p models.Project, expected models.ProjectStatus) error
	// ExpireDueProjects atomically moves every active project whose deadline
	// has passed to expired, appending an auto_expired history entry per
	// record. Only records still active at write time are touched, so the
	// sweep can run concurrently with request-driven awards. Idempotent;
	// returns the identifiers of the records it moved.
	ExpireDueProjects(ctx context.Context, now time.Time) ([]string, error)

	// CreateProposal enforces the (project, vendor) uniqueness constraint:
	// a second proposal for the same pair in non-withdrawn, non-rejected
	// state fails with models.ErrDuplicateProposal.
	CreateProposal(ctx context.Context, p models.Proposal) error
	ProposalByID(ctx context.Context, id string) (models.Proposal, error)
	Proposals(ctx context.Context, f ProposalFilter) ([]models.Proposal, error)
	ProposalByProjectVendor(ctx context.Context, projectId, vendor string) (models.Proposal, error)
	UpdateProposal(ctx context.Context, p models.Proposal, expected models.ProposalStatus) error

	CreateProduct(ctx context.Context, p models.Product) error
	ProductByID(ctx context.Context, id string) (models.Product, error)
	// UpdateProduct is conditional on the current available quantity when
	// expectedAvailable is non-nil, serializing concurrent inventory moves.
	UpdateProduct(ctx context.Context, p models.Product, expectedAvailable *float64) error

	CreateUser(ctx context.Context, u models.User) error
	UserByID(ctx context.Context, id string) (models.User, error)
	Users(ctx context.Context, role models.Role) ([]models.User, error)

	CreateNotification(ctx context.Context, n models.Notification) error
	Notifications(ctx context.Context, recipient string, unreadOnly bool) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, recipient string, now time.Time) error

	Close() error
}
