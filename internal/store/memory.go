package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"sourcing/internal/lifecycle"
	"sourcing/internal/models"
)

// Memory is the in-process store driver, used for tests and local runs.
// Conditional-update and uniqueness semantics match the postgres driver:
// everything is checked under one lock, so concurrent read-modify-write
// cycles observe the same guarantees.
type Memory struct {
	mu            sync.RWMutex
	projects      map[string]models.Project
	proposals     map[string]models.Proposal
	products      map[string]models.Product
	users         map[string]models.User
	notifications map[string]models.Notification
}

func NewMemory() *Memory {
	return &Memory{
		projects:      make(map[string]models.Project),
		proposals:     make(map[string]models.Proposal),
		products:      make(map[string]models.Product),
		users:         make(map[string]models.User),
		notifications: make(map[string]models.Notification),
	}
}

// clone deep-copies an entity so callers never alias stored slices or maps.
func clone[T any](src T) T {
	var dst T
	data, err := json.Marshal(src)
	if err != nil {
		panic(fmt.Sprintf("store: clone marshal: %v", err))
	}
	if err := json.Unmarshal(data, &dst); err != nil {
		panic(fmt.Sprintf("store: clone unmarshal: %v", err))
	}
	return dst
}

//// Projects

func (m *Memory) CreateProject(ctx context.Context, p models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[p.Id]; ok {
		return fmt.Errorf("store.Memory.CreateProject: %w: project %s already exists", models.ErrConflict, p.Id)
	}
	m.projects[p.Id] = clone(p)
	return nil
}

func (m *Memory) ProjectByID(ctx context.Context, id string) (models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.projects[id]
	if !ok {
		return models.Project{}, fmt.Errorf("store.Memory.ProjectByID: %w: project %s", models.ErrNotFound, id)
	}
	return clone(p), nil
}

func (m *Memory) Projects(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.Project
	for _, p := range m.projects {
		if f.Buyer != "" && p.Buyer != f.Buyer {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.DeadlineAfter != nil && !p.Deadline.After(*f.DeadlineAfter) {
			continue
		}
		if f.DeadlineBefore != nil && !p.Deadline.Before(*f.DeadlineBefore) {
			continue
		}
		result = append(result, clone(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, f.Limit, f.Offset), nil
}

func (m *Memory) UpdateProject(ctx context.Context, p models.Project, expected models.ProjectStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.projects[p.Id]
	if !ok {
		return fmt.Errorf("store.Memory.UpdateProject: %w: project %s", models.ErrNotFound, p.Id)
	}
	if expected != "" && current.Status != expected {
		return fmt.Errorf("store.Memory.UpdateProject: %w: project %s is %q, expected %q",
			models.ErrConflict, p.Id, current.Status, expected)
	}
	m.projects[p.Id] = clone(p)
	return nil
}

func (m *Memory) ExpireDueProjects(ctx context.Context, now time.Time) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expired []string
	for id, p := range m.projects {
		if lifecycle.ApplyExpiry(&p, now) {
			p.UpdatedAt = now
			m.projects[id] = p
			expired = append(expired, id)
		}
	}
	sort.Strings(expired)
	return expired, nil
}

//// Proposals

func (m *Memory) CreateProposal(ctx context.Context, p models.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.proposals[p.Id]; ok {
		return fmt.Errorf("store.Memory.CreateProposal: %w: proposal %s already exists", models.ErrConflict, p.Id)
	}
	for _, existing := range m.proposals {
		if existing.ProjectId == p.ProjectId && existing.Vendor == p.Vendor &&
			existing.Status != models.ProposalWithdrawn && existing.Status != models.ProposalRejected {
			return fmt.Errorf("store.Memory.CreateProposal: %w", models.ErrDuplicateProposal)
		}
	}
	m.proposals[p.Id] = clone(p)
	return nil
}

func (m *Memory) ProposalByID(ctx context.Context, id string) (models.Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.proposals[id]
	if !ok {
		return models.Proposal{}, fmt.Errorf("store.Memory.ProposalByID: %w: proposal %s", models.ErrNotFound, id)
	}
	return clone(p), nil
}

func (m *Memory) Proposals(ctx context.Context, f ProposalFilter) ([]models.Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.Proposal
	for _, p := range m.proposals {
		if f.ProjectId != "" && p.ProjectId != f.ProjectId {
			continue
		}
		if f.Vendor != "" && p.Vendor != f.Vendor {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, p.Status) {
			continue
		}
		result = append(result, clone(p))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return page(result, f.Limit, f.Offset), nil
}

func (m *Memory) ProposalByProjectVendor(ctx context.Context, projectId, vendor string) (models.Proposal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, p := range m.proposals {
		if p.ProjectId == projectId && p.Vendor == vendor {
			return clone(p), nil
		}
	}
	return models.Proposal{}, fmt.Errorf("store.Memory.ProposalByProjectVendor: %w: no proposal by %s on %s",
		models.ErrNotFound, vendor, projectId)
}

func (m *Memory) UpdateProposal(ctx context.Context, p models.Proposal, expected models.ProposalStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.proposals[p.Id]
	if !ok {
		return fmt.Errorf("store.Memory.UpdateProposal: %w: proposal %s", models.ErrNotFound, p.Id)
	}
	if expected != "" && current.Status != expected {
		return fmt.Errorf("store.Memory.UpdateProposal: %w: proposal %s is %q, expected %q",
			models.ErrConflict, p.Id, current.Status, expected)
	}
	m.proposals[p.Id] = clone(p)
	return nil
}

//// Products

func (m *Memory) CreateProduct(ctx context.Context, p models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.products[p.Id]; ok {
		return fmt.Errorf("store.Memory.CreateProduct: %w: product %s already exists", models.ErrConflict, p.Id)
	}
	m.products[p.Id] = clone(p)
	return nil
}

func (m *Memory) ProductByID(ctx context.Context, id string) (models.Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.products[id]
	if !ok {
		return models.Product{}, fmt.Errorf("store.Memory.ProductByID: %w: product %s", models.ErrNotFound, id)
	}
	return clone(p), nil
}

func (m *Memory) UpdateProduct(ctx context.Context, p models.Product, expectedAvailable *float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.products[p.Id]
	if !ok {
		return fmt.Errorf("store.Memory.UpdateProduct: %w: product %s", models.ErrNotFound, p.Id)
	}
	if expectedAvailable != nil && current.Availability.Quantity.Available != *expectedAvailable {
		return fmt.Errorf("store.Memory.UpdateProduct: %w: product %s inventory moved concurrently",
			models.ErrConflict, p.Id)
	}
	m.products[p.Id] = clone(p)
	return nil
}

//// Users

func (m *Memory) CreateUser(ctx context.Context, u models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.users[u.Id]; ok {
		return fmt.Errorf("store.Memory.CreateUser: %w: user %s already exists", models.ErrConflict, u.Id)
	}
	m.users[u.Id] = u
	return nil
}

func (m *Memory) UserByID(ctx context.Context, id string) (models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("store.Memory.UserByID: %w: user %s", models.ErrNotFound, id)
	}
	return u, nil
}

func (m *Memory) Users(ctx context.Context, role models.Role) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		result = append(result, u)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

//// Notifications

func (m *Memory) CreateNotification(ctx context.Context, n models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.notifications[n.Id] = clone(n)
	return nil
}

func (m *Memory) Notifications(ctx context.Context, recipient string, unreadOnly bool) ([]models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []models.Notification
	for _, n := range m.notifications {
		if n.Recipient != recipient {
			continue
		}
		if unreadOnly && n.Status != models.NotificationUnread {
			continue
		}
		result = append(result, clone(n))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (m *Memory) MarkNotificationRead(ctx context.Context, id, recipient string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.notifications[id]
	if !ok || n.Recipient != recipient {
		return fmt.Errorf("store.Memory.MarkNotificationRead: %w: notification %s", models.ErrNotFound, id)
	}
	n.Status = models.NotificationRead
	at := now
	n.ReadAt = &at
	m.notifications[id] = n
	return nil
}

func (m *Memory) Close() error {
	return nil
}

//// Helpers

func containsStatus(statuses []models.ProposalStatus, s models.ProposalStatus) bool {
	for _, st := range statuses {
		if st == s {
			return true
		}
	}
	return false
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
