package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"sourcing/internal/config"
	"sourcing/internal/models"
	postgres "sourcing/internal/store/db"
)

// Postgres stores each entity as a JSONB document alongside the scalar
// columns the filters and conditional updates key on. The scalar columns are
// kept in sync with the document on every write.
type Postgres struct {
	db  *sql.DB
	cfg *config.PostgresConfig
}

func NewPostgres(db *sql.DB, cfg *config.PostgresConfig) (*Postgres, error) {
	var err error

	s := &Postgres{
		db:  db,
		cfg: cfg,
	}

	if s.cfg == nil {
		s.cfg, err = config.NewPostgresConfig()
		if err != nil {
			return nil, fmt.Errorf("store.NewPostgres: could not load postgres config: %w", err)
		}
	}

	if s.db == nil {
		s.db, err = postgres.NewPostgresDB(s.cfg)
		if err != nil {
			return nil, fmt.Errorf("store.NewPostgres: could not open postgres db: %w", err)
		}
	}

	if s.cfg.AutoMigrateUp {
		if err = postgres.MigrateUp(s.db, s.cfg.MigrationsURL); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func marshalDoc(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("store: marshal doc: %w", err)
	}
	return data, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

//// Projects

func (s *Postgres) CreateProject(ctx context.Context, p models.Project) error {
	doc, err := marshalDoc(p)
	if err != nil {
		return fmt.Errorf("store.Postgres.CreateProject: %w", err)
	}

	query := `
	INSERT INTO projects
		(id, buyer, status, category, visibility, deadline, created_at, updated_at, doc)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.Id, p.Buyer, p.Status, p.Category, p.Visibility, p.Deadline, p.CreatedAt, p.UpdatedAt, doc)
	if isUniqueViolation(err) {
		return fmt.Errorf("store.Postgres.CreateProject: %w: project %s already exists", models.ErrConflict, p.Id)
	} else if err != nil {
		return fmt.Errorf("store.Postgres.CreateProject: %w", err)
	}
	return nil
}

func (s *Postgres) ProjectByID(ctx context.Context, id string) (models.Project, error) {
	var doc []byte
	row := s.db.QueryRowContext(ctx, "SELECT doc FROM projects WHERE id = $1", id)
	err := row.Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Project{}, fmt.Errorf("store.Postgres.ProjectByID: %w: project %s", models.ErrNotFound, id)
	} else if err != nil {
		return models.Project{}, fmt.Errorf("store.Postgres.ProjectByID: %w", err)
	}

	var p models.Project
	if err := json.Unmarshal(doc, &p); err != nil {
		return models.Project{}, fmt.Errorf("store.Postgres.ProjectByID: decode doc: %w", err)
	}
	return p, nil
}

func (s *Postgres) Projects(ctx context.Context, f ProjectFilter) ([]models.Project, error) {
	query := `
	SELECT doc FROM projects
	WHERE ($1 = '' OR buyer = $1)
	  AND ($2 = '' OR category = $2)
	  AND ($3 = '' OR status = $3)
	  AND ($4::timestamptz IS NULL OR deadline > $4)
	  AND ($5::timestamptz IS NULL OR deadline < $5)
	ORDER BY created_at DESC
	LIMIT $6 OFFSET $7
	`

	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}
	rows, err := s.db.QueryContext(ctx, query,
		f.Buyer, f.Category, string(f.Status), f.DeadlineAfter, f.DeadlineBefore, limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("store.Postgres.Projects: %w", err)
	}
	defer rows.Close()

	var result []models.Project
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("store.Postgres.Projects: row scan failed: %w", err)
		}
		var p models.Project
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("store.Postgres.Projects: decode doc: %w", err)
		}
		result = append(result, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("store.Postgres.Projects: %w", rows.Err())
	}
	return result, nil
}

func (s *Postgres) UpdateProject(ctx context.Context, p models.Project, expected models.ProjectStatus) error {
	doc, err := marshalDoc(p)
	if err != nil {
		return fmt.Errorf("store.Postgres.UpdateProject: %w", err)
	}

	query := `
	UPDATE projects
	SET status = $2, category = $3, visibility = $4, deadline = $5, updated_at = $6, doc = $7
	WHERE id = $1 AND ($8 = '' OR status = $8)
	`
	res, err := s.db.ExecContext(ctx, query,
		p.Id, p.Status, p.Category, p.Visibility, p.Deadline, p.UpdatedAt, doc, string(expected))
	if err != nil {
		return fmt.Errorf("store.Postgres.UpdateProject: %w", err)
	}
	return s.checkConditional(ctx, res, "projects", p.Id, "store.Postgres.UpdateProject")
}

func (s *Postgres) ExpireDueProjects(ctx context.Context, now time.Time) ([]string, error) {
	entry, err := marshalDoc([]models.HistoryEntry{{
		Action:  "auto_expired",
		At:      now,
		Changes: map[string]any{"status": string(models.ProjectExpired)},
	}})
	if err != nil {
		return nil, fmt.Errorf("store.Postgres.ExpireDueProjects: %w", err)
	}

	// Conditional on status still being active at write time so the sweep
	// cannot clobber a concurrent award.
	query := `
	UPDATE projects
	SET status = 'expired',
	    updated_at = $2,
	    doc = jsonb_set(jsonb_set(doc, '{status}', '"expired"'),
	          '{history}', coalesce(doc->'history', '[]'::jsonb) || $1::jsonb)
	WHERE status = 'active' AND deadline < $2
	RETURNING id
	`
	rows, err := s.db.QueryContext(ctx, query, entry, now)
	if err != nil {
		return nil, fmt.Errorf("store.Postgres.ExpireDueProjects: %w", err)
	}
	defer rows.Close()

	var expired []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("store.Postgres.ExpireDueProjects: row scan failed: %w", err)
		}
		expired = append(expired, id)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("store.Postgres.ExpireDueProjects: %w", rows.Err())
	}
	return expired, nil
}

//// Proposals

func (s *Postgres) CreateProposal(ctx context.Context, p models.Proposal) error {
	doc, err := marshalDoc(p)
	if err != nil {
		return fmt.Errorf("store.Postgres.CreateProposal: %w", err)
	}

	query := `
	INSERT INTO proposals
		(id, project_id, vendor, status, total_price, created_at, updated_at, doc)
	VALUES
		($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.Id, p.ProjectId, p.Vendor, p.Status, p.Pricing.TotalPrice, p.CreatedAt, p.UpdatedAt, doc)
	if isUniqueViolation(err) {
		return fmt.Errorf("store.Postgres.CreateProposal: %w", models.ErrDuplicateProposal)
	} else if err != nil {
		return fmt.Errorf("store.Postgres.CreateProposal: %w", err)
	}
	return nil
}

func (s *Postgres) ProposalByID(ctx context.Context, id string) (models.Proposal, error) {
	var doc []byte
	row := s.db.QueryRowContext(ctx, "SELECT doc FROM proposals WHERE id = $1", id)
	err := row.Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Proposal{}, fmt.Errorf("store.Postgres.ProposalByID: %w: proposal %s", models.ErrNotFound, id)
	} else if err != nil {
		return models.Proposal{}, fmt.Errorf("store.Postgres.ProposalByID: %w", err)
	}

	var p models.Proposal
	if err := json.Unmarshal(doc, &p); err != nil {
		return models.Proposal{}, fmt.Errorf("store.Postgres.ProposalByID: decode doc: %w", err)
	}
	return p, nil
}

func (s *Postgres) Proposals(ctx context.Context, f ProposalFilter) ([]models.Proposal, error) {
	statuses := make([]string, 0, len(f.Statuses))
	for _, st := range f.Statuses {
		statuses = append(statuses, string(st))
	}

	query := `
	SELECT doc FROM proposals
	WHERE ($1 = '' OR project_id = $1)
	  AND ($2 = '' OR vendor = $2)
	  AND (cardinality($3::text[]) = 0 OR status = any($3::text[]))
	ORDER BY created_at DESC
	LIMIT $4 OFFSET $5
	`

	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}
	rows, err := s.db.QueryContext(ctx, query, f.ProjectId, f.Vendor, pq.Array(statuses), limit, f.Offset)
	if err != nil {
		return nil, fmt.Errorf("store.Postgres.Proposals: %w", err)
	}
	defer rows.Close()

	var result []models.Proposal
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("store.Postgres.Proposals: row scan failed: %w", err)
		}
		var p models.Proposal
		if err := json.Unmarshal(doc, &p); err != nil {
			return nil, fmt.Errorf("store.Postgres.Proposals: decode doc: %w", err)
		}
		result = append(result, p)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("store.Postgres.Proposals: %w", rows.Err())
	}
	return result, nil
}

func (s *Postgres) ProposalByProjectVendor(ctx context.Context, projectId, vendor string) (models.Proposal, error) {
	var doc []byte
	row := s.db.QueryRowContext(ctx,
		"SELECT doc FROM proposals WHERE project_id = $1 AND vendor = $2 ORDER BY created_at DESC LIMIT 1",
		projectId, vendor)
	err := row.Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Proposal{}, fmt.Errorf("store.Postgres.ProposalByProjectVendor: %w: no proposal by %s on %s",
			models.ErrNotFound, vendor, projectId)
	} else if err != nil {
		return models.Proposal{}, fmt.Errorf("store.Postgres.ProposalByProjectVendor: %w", err)
	}

	var p models.Proposal
	if err := json.Unmarshal(doc, &p); err != nil {
		return models.Proposal{}, fmt.Errorf("store.Postgres.ProposalByProjectVendor: decode doc: %w", err)
	}
	return p, nil
}

func (s *Postgres) UpdateProposal(ctx context.Context, p models.Proposal, expected models.ProposalStatus) error {
	doc, err := marshalDoc(p)
	if err != nil {
		return fmt.Errorf("store.Postgres.UpdateProposal: %w", err)
	}

	query := `
	UPDATE proposals
	SET status = $2, total_price = $3, updated_at = $4, doc = $5
	WHERE id = $1 AND ($6 = '' OR status = $6)
	`
	res, err := s.db.ExecContext(ctx, query,
		p.Id, p.Status, p.Pricing.TotalPrice, p.UpdatedAt, doc, string(expected))
	if err != nil {
		return fmt.Errorf("store.Postgres.UpdateProposal: %w", err)
	}
	return s.checkConditional(ctx, res, "proposals", p.Id, "store.Postgres.UpdateProposal")
}

//// Products

func (s *Postgres) CreateProduct(ctx context.Context, p models.Product) error {
	doc, err := marshalDoc(p)
	if err != nil {
		return fmt.Errorf("store.Postgres.CreateProduct: %w", err)
	}

	query := `
	INSERT INTO products (id, vendor, available, created_at, updated_at, doc)
	VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = s.db.ExecContext(ctx, query,
		p.Id, p.Vendor, p.Availability.Quantity.Available, p.CreatedAt, p.UpdatedAt, doc)
	if isUniqueViolation(err) {
		return fmt.Errorf("store.Postgres.CreateProduct: %w: product %s already exists", models.ErrConflict, p.Id)
	} else if err != nil {
		return fmt.Errorf("store.Postgres.CreateProduct: %w", err)
	}
	return nil
}

func (s *Postgres) ProductByID(ctx context.Context, id string) (models.Product, error) {
	var doc []byte
	row := s.db.QueryRowContext(ctx, "SELECT doc FROM products WHERE id = $1", id)
	err := row.Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Product{}, fmt.Errorf("store.Postgres.ProductByID: %w: product %s", models.ErrNotFound, id)
	} else if err != nil {
		return models.Product{}, fmt.Errorf("store.Postgres.ProductByID: %w", err)
	}

	var p models.Product
	if err := json.Unmarshal(doc, &p); err != nil {
		return models.Product{}, fmt.Errorf("store.Postgres.ProductByID: decode doc: %w", err)
	}
	return p, nil
}

func (s *Postgres) UpdateProduct(ctx context.Context, p models.Product, expectedAvailable *float64) error {
	doc, err := marshalDoc(p)
	if err != nil {
		return fmt.Errorf("store.Postgres.UpdateProduct: %w", err)
	}

	query := `
	UPDATE products
	SET available = $2, updated_at = $3, doc = $4
	WHERE id = $1 AND ($5::numeric IS NULL OR available = $5)
	`
	res, err := s.db.ExecContext(ctx, query,
		p.Id, p.Availability.Quantity.Available, p.UpdatedAt, doc, expectedAvailable)
	if err != nil {
		return fmt.Errorf("store.Postgres.UpdateProduct: %w", err)
	}
	return s.checkConditional(ctx, res, "products", p.Id, "store.Postgres.UpdateProduct")
}

//// Users

func (s *Postgres) CreateUser(ctx context.Context, u models.User) error {
	doc, err := marshalDoc(u)
	if err != nil {
		return fmt.Errorf("store.Postgres.CreateUser: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO users (id, role, created_at, doc) VALUES ($1, $2, $3, $4)",
		u.Id, u.Role, u.CreatedAt, doc)
	if isUniqueViolation(err) {
		return fmt.Errorf("store.Postgres.CreateUser: %w: user %s already exists", models.ErrConflict, u.Id)
	} else if err != nil {
		return fmt.Errorf("store.Postgres.CreateUser: %w", err)
	}
	return nil
}

func (s *Postgres) UserByID(ctx context.Context, id string) (models.User, error) {
	var doc []byte
	row := s.db.QueryRowContext(ctx, "SELECT doc FROM users WHERE id = $1", id)
	err := row.Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("store.Postgres.UserByID: %w: user %s", models.ErrNotFound, id)
	} else if err != nil {
		return models.User{}, fmt.Errorf("store.Postgres.UserByID: %w", err)
	}

	var u models.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return models.User{}, fmt.Errorf("store.Postgres.UserByID: decode doc: %w", err)
	}
	return u, nil
}

func (s *Postgres) Users(ctx context.Context, role models.Role) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT doc FROM users WHERE ($1 = '' OR role = $1) ORDER BY id", string(role))
	if err != nil {
		return nil, fmt.Errorf("store.Postgres.Users: %w", err)
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("store.Postgres.Users: row scan failed: %w", err)
		}
		var u models.User
		if err := json.Unmarshal(doc, &u); err != nil {
			return nil, fmt.Errorf("store.Postgres.Users: decode doc: %w", err)
		}
		result = append(result, u)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("store.Postgres.Users: %w", rows.Err())
	}
	return result, nil
}

//// Notifications

func (s *Postgres) CreateNotification(ctx context.Context, n models.Notification) error {
	doc, err := marshalDoc(n)
	if err != nil {
		return fmt.Errorf("store.Postgres.CreateNotification: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO notifications (id, recipient, status, created_at, doc) VALUES ($1, $2, $3, $4, $5)",
		n.Id, n.Recipient, n.Status, n.CreatedAt, doc)
	if err != nil {
		return fmt.Errorf("store.Postgres.CreateNotification: %w", err)
	}
	return nil
}

func (s *Postgres) Notifications(ctx context.Context, recipient string, unreadOnly bool) ([]models.Notification, error) {
	query := `
	SELECT doc FROM notifications
	WHERE recipient = $1 AND (NOT $2 OR status = 'unread')
	ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, recipient, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("store.Postgres.Notifications: %w", err)
	}
	defer rows.Close()

	var result []models.Notification
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("store.Postgres.Notifications: row scan failed: %w", err)
		}
		var n models.Notification
		if err := json.Unmarshal(doc, &n); err != nil {
			return nil, fmt.Errorf("store.Postgres.Notifications: decode doc: %w", err)
		}
		result = append(result, n)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("store.Postgres.Notifications: %w", rows.Err())
	}
	return result, nil
}

func (s *Postgres) MarkNotificationRead(ctx context.Context, id, recipient string, now time.Time) error {
	query := `
	UPDATE notifications
	SET status = 'read',
	    doc = jsonb_set(jsonb_set(doc, '{status}', '"read"'), '{readAt}', to_jsonb($3::timestamptz))
	WHERE id = $1 AND recipient = $2
	`
	res, err := s.db.ExecContext(ctx, query, id, recipient, now)
	if err != nil {
		return fmt.Errorf("store.Postgres.MarkNotificationRead: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store.Postgres.MarkNotificationRead: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("store.Postgres.MarkNotificationRead: %w: notification %s", models.ErrNotFound, id)
	}
	return nil
}

func (s *Postgres) Close() error {
	var migErr error
	if s.cfg.AutoMigrateDown {
		migErr = postgres.MigrateDown(s.db, s.cfg.MigrationsURL)
	}

	err := s.db.Close()
	return errors.Join(migErr, err)
}

//// Helpers

// checkConditional distinguishes a missing record from a lost conditional
// update after a zero-row UPDATE.
func (s *Postgres) checkConditional(ctx context.Context, res sql.Result, table, id, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return nil
	}

	var exists bool
	row := s.db.QueryRowContext(ctx, fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)", table), id)
	if err := row.Scan(&exists); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w: %s", op, models.ErrNotFound, id)
	}
	return fmt.Errorf("%s: %w: %s", op, models.ErrConflict, id)
}
