package search

import (
	"context"
	"fmt"

	"sourcing/internal/config"
)

// Open selects the index driver from configuration and ensures both indices
// exist.
func Open(ctx context.Context, cfg *config.Config) (Index, error) {
	var (
		index Index
		err   error
	)
	switch cfg.SearchDriver {
	case "memory":
		index = NewMemoryIndex()
	case "sqlite":
		index, err = NewSQLiteIndex(cfg.SearchDBPath)
		if err != nil {
			return nil, fmt.Errorf("search.Open: %w", err)
		}
	default:
		return nil, fmt.Errorf("search.Open: unknown search driver %q", cfg.SearchDriver)
	}

	for _, name := range []string{ProjectsIndex, SuppliersIndex} {
		if err := index.CreateIndex(ctx, name); err != nil {
			index.Close()
			return nil, fmt.Errorf("search.Open: %w", err)
		}
	}
	return index, nil
}
