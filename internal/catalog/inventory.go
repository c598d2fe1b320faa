package catalog

import (
	"fmt"
	"time"

	"sourcing/internal/models"
)

type InventoryOp string

const (
	OpAdd      InventoryOp = "add"
	OpSubtract InventoryOp = "subtract"
)

// ApplyInventory mutates the available quantity and recomputes the derived
// availability status. The counter is not clamped: negative values are
// permitted transiently (oversell, then backorder) and simply read as
// out-of-stock.
func ApplyInventory(av *models.Availability, quantity float64, op InventoryOp, now time.Time) error {
	switch op {
	case OpSubtract:
		av.Quantity.Available -= quantity
	case OpAdd:
		av.Quantity.Available += quantity
	default:
		return fmt.Errorf("catalog.ApplyInventory: %w: unknown operation %q", models.ErrValidation, op)
	}

	av.Status = DeriveAvailability(av.Quantity.Available)
	at := now
	av.Quantity.LastUpdated = &at
	return nil
}

// DeriveAvailability is the pure derivation of the status enum from the
// counter. It is invoked explicitly on every mutation, never as a save hook.
func DeriveAvailability(available float64) models.AvailabilityStatus {
	switch {
	case available <= 0:
		return models.OutOfStock
	case available < 10:
		return models.LimitedStock
	default:
		return models.InStock
	}
}
