// Package service orchestrates lifecycle operations against the store and
// hands every committed mutation to the consistency synchronizer. Operations
// follow one shape: load fresh state, validate and mutate in memory through
// the lifecycle package, then write back conditionally on the status the
// mutation started from.
package service

import (
	"time"

	"sourcing/internal/models"
	"sourcing/internal/store"
	"sourcing/internal/syncer"
)

// Identity is the acting user, resolved by the transport layer. Operations
// trust it for ownership and role checks.
type Identity struct {
	UserId string
	Role   models.Role
}

type Service struct {
	store  store.Store
	syncer *syncer.Syncer

	// now is swappable in tests; everything time-dependent reads it.
	now func() time.Time
}

func New(st store.Store, sy *syncer.Syncer) *Service {
	return &Service{store: st, syncer: sy, now: time.Now}
}
