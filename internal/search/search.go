// Package search keeps the external full-text index eventually consistent
// with entity mutations. Only minimal denormalized projections are indexed,
// never full entities; upserts are idempotent by identifier so duplicate
// synchronization is harmless.
package search

import (
	"context"
	"time"

	"sourcing/internal/models"
)

const (
	ProjectsIndex  = "sourcing_projects"
	SuppliersIndex = "sourcing_suppliers"
)

type Document struct {
	Id  string
	Doc any
}

// Index is the search-index service contract.
type Index interface {
	CreateIndex(ctx context.Context, name string) error
	DeleteIndex(ctx context.Context, name string) error
	Upsert(ctx context.Context, name, id string, doc any) error
	BulkUpsert(ctx context.Context, name string, docs []Document) error
	Close() error
}

type ProjectDoc struct {
	Id          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
	Deadline    time.Time `json:"deadline"`
}

func NewProjectDoc(p models.Project) ProjectDoc {
	return ProjectDoc{
		Id:          p.Id,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		Deadline:    p.Deadline,
	}
}

type SupplierDoc struct {
	Id          string `json:"id"`
	CompanyName string `json:"companyName"`
	Country     string `json:"country"`
	IsVerified  bool   `json:"isVerified"`
}

// NewSupplierDoc returns nil for non-vendor accounts; only suppliers are
// indexed.
func NewSupplierDoc(u models.User) *SupplierDoc {
	if u.Role != models.RoleVendor {
		return nil
	}
	return &SupplierDoc{
		Id:          u.Id,
		CompanyName: u.CompanyName,
		Country:     u.Country,
		IsVerified:  u.IsVerified,
	}
}
