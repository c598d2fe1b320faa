package catalog

import "sourcing/internal/models"

// PriceForQuantity resolves the unit price for a requested quantity from the
// tiered pricing rules. A tier qualifies when quantity >= MinQuantity and,
// if MaxQuantity is set, quantity <= MaxQuantity. Among qualifying tiers the
// one with the largest MinQuantity wins; ties keep the earlier tier in input
// order. Without a qualifying tier the base price applies. Tiers need not be
// contiguous or mutually exclusive.
func PriceForQuantity(tiers []models.PriceTier, basePrice, quantity float64) float64 {
	best := -1
	for i, tier := range tiers {
		if quantity < tier.MinQuantity {
			continue
		}
		if tier.MaxQuantity != nil && quantity > *tier.MaxQuantity {
			continue
		}
		if best < 0 || tier.MinQuantity > tiers[best].MinQuantity {
			best = i
		}
	}
	if best < 0 {
		return basePrice
	}
	return tiers[best].Price
}
