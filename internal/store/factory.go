package store

import (
	"fmt"

	"sourcing/internal/config"
)

// Open selects the store driver from configuration.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		return NewMemory(), nil
	case "postgres":
		return NewPostgres(nil, &cfg.PostgresConfig)
	default:
		return nil, fmt.Errorf("store.Open: unknown store driver %q", cfg.StoreDriver)
	}
}
