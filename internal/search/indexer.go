package search

import (
	"context"
	"encoding/json"
	"fmt"

	"sourcing/internal/models"
	"sourcing/internal/store"
)

const reindexBatchSize = 100

func marshalProjection(doc any) ([]byte, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("marshal projection: %w", err)
	}
	return data, nil
}

// Source is the slice of the store the indexer reads for full rebuilds.
type Source interface {
	Projects(ctx context.Context, f store.ProjectFilter) ([]models.Project, error)
	Users(ctx context.Context, role models.Role) ([]models.User, error)
}

// Indexer rebuilds the search indices from the store of record. It is the
// recovery path for when the index drifts or is lost; regular upkeep happens
// through the synchronizer.
type Indexer struct {
	source Source
	index  Index
}

func NewIndexer(source Source, index Index) *Indexer {
	return &Indexer{source: source, index: index}
}

// ReindexAll drops and rebuilds both indices, paging through the store in
// fixed-size batches.
func (ix *Indexer) ReindexAll(ctx context.Context) error {
	if err := ix.reindexProjects(ctx); err != nil {
		return fmt.Errorf("search.Indexer.ReindexAll: %w", err)
	}
	if err := ix.reindexSuppliers(ctx); err != nil {
		return fmt.Errorf("search.Indexer.ReindexAll: %w", err)
	}
	return nil
}

func (ix *Indexer) reindexProjects(ctx context.Context) error {
	if err := ix.index.DeleteIndex(ctx, ProjectsIndex); err != nil {
		return err
	}
	if err := ix.index.CreateIndex(ctx, ProjectsIndex); err != nil {
		return err
	}

	for offset := 0; ; offset += reindexBatchSize {
		projects, err := ix.source.Projects(ctx, store.ProjectFilter{
			Limit:  reindexBatchSize,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			return nil
		}

		docs := make([]Document, 0, len(projects))
		for _, p := range projects {
			docs = append(docs, Document{Id: p.Id, Doc: NewProjectDoc(p)})
		}
		if err := ix.index.BulkUpsert(ctx, ProjectsIndex, docs); err != nil {
			return err
		}
		if len(projects) < reindexBatchSize {
			return nil
		}
	}
}

func (ix *Indexer) reindexSuppliers(ctx context.Context) error {
	if err := ix.index.DeleteIndex(ctx, SuppliersIndex); err != nil {
		return err
	}
	if err := ix.index.CreateIndex(ctx, SuppliersIndex); err != nil {
		return err
	}

	vendors, err := ix.source.Users(ctx, models.RoleVendor)
	if err != nil {
		return err
	}
	docs := make([]Document, 0, len(vendors))
	for _, u := range vendors {
		doc := NewSupplierDoc(u)
		if doc == nil {
			continue
		}
		docs = append(docs, Document{Id: u.Id, Doc: doc})
	}
	if len(docs) == 0 {
		return nil
	}
	return ix.index.BulkUpsert(ctx, SuppliersIndex, docs)
}
