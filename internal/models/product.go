package models

import (
	"fmt"
	"time"
)

type AvailabilityStatus string

const (
	InStock      AvailabilityStatus = "in-stock"
	LimitedStock AvailabilityStatus = "limited-stock"
	OutOfStock   AvailabilityStatus = "out-of-stock"
)

// PriceTier is a quantity range with an associated unit price. Ranges are
// not required to be contiguous or mutually exclusive; the pricing resolver
// handles ambiguity.
type PriceTier struct {
	MinQuantity float64  `json:"minQuantity"`
	MaxQuantity *float64 `json:"maxQuantity,omitempty"`
	Price       float64  `json:"price"`
}

type ProductPricing struct {
	Currency  string      `json:"currency"`
	BasePrice float64     `json:"basePrice"`
	Tiers     []PriceTier `json:"tiers,omitempty"`
}

type InventoryQuantity struct {
	Available   float64    `json:"available"`
	Unit        string     `json:"unit,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// Availability holds the inventory counter and its derived status. The
// status is always a function of the counter, never set independently.
type Availability struct {
	Status       AvailabilityStatus `json:"status"`
	Quantity     InventoryQuantity  `json:"quantity"`
	MinimumOrder float64            `json:"minimumOrder,omitempty"`
}

type Product struct {
	Id           string         `json:"id"`
	Vendor       string         `json:"vendor"`
	Name         string         `json:"name"`
	Category     string         `json:"category,omitempty"`
	Pricing      ProductPricing `json:"pricing"`
	Availability Availability   `json:"availability"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"-"`
}

func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if p.Vendor == "" {
		return fmt.Errorf("%w: product vendor is required", ErrValidation)
	}
	if p.Pricing.BasePrice < 0 {
		return fmt.Errorf("%w: base price must not be negative", ErrValidation)
	}
	for _, tier := range p.Pricing.Tiers {
		if tier.Price < 0 || tier.MinQuantity < 0 {
			return fmt.Errorf("%w: price tiers must not be negative", ErrValidation)
		}
	}
	return nil
}
