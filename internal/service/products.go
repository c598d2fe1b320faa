package service

import (
	"context"
	"errors"
	"fmt"

	"sourcing/internal/catalog"
	"sourcing/internal/models"
)

// inventoryRetries bounds conditional-update retries under contention.
const inventoryRetries = 3

// CreateProduct registers a catalog product for the acting vendor. The
// availability status is derived from the counter, never taken from input.
func (s *Service) CreateProduct(ctx context.Context, id Identity, p models.Product) (models.Product, error) {
	if id.Role != models.RoleVendor {
		return models.Product{}, fmt.Errorf("service.CreateProduct: %w: only vendors may create products", models.ErrPermissionDenied)
	}

	now := s.now()
	p.Id = models.NewID(models.ProductIDPrefix)
	p.Vendor = id.UserId
	p.Availability.Status = catalog.DeriveAvailability(p.Availability.Quantity.Available)
	p.CreatedAt = now
	p.UpdatedAt = now

	if err := p.Validate(); err != nil {
		return models.Product{}, fmt.Errorf("service.CreateProduct: %w", err)
	}
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return models.Product{}, fmt.Errorf("service.CreateProduct: %w", err)
	}
	return p, nil
}

func (s *Service) GetProduct(ctx context.Context, productId string) (models.Product, error) {
	p, err := s.store.ProductByID(ctx, productId)
	if err != nil {
		return models.Product{}, fmt.Errorf("service.GetProduct: %w", err)
	}
	return p, nil
}

// Quote is a resolved price for a requested quantity.
type Quote struct {
	ProductId string  `json:"productId"`
	Quantity  float64 `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
	Total     float64 `json:"total"`
	Currency  string  `json:"currency"`
}

// QuoteProductPrice resolves the tier price for a quantity. The quote does
// not reserve inventory.
func (s *Service) QuoteProductPrice(ctx context.Context, productId string, quantity float64) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, fmt.Errorf("service.QuoteProductPrice: %w: quantity must be positive", models.ErrValidation)
	}
	p, err := s.store.ProductByID(ctx, productId)
	if err != nil {
		return Quote{}, fmt.Errorf("service.QuoteProductPrice: %w", err)
	}

	unit := catalog.PriceForQuantity(p.Pricing.Tiers, p.Pricing.BasePrice, quantity)
	return Quote{
		ProductId: p.Id,
		Quantity:  quantity,
		UnitPrice: unit,
		Total:     unit * quantity,
		Currency:  p.Pricing.Currency,
	}, nil
}

// UpdateInventory applies an add or subtract to the product's inventory
// counter. The write is conditional on the counter the mutation was computed
// from; a lost race reloads and retries a bounded number of times.
func (s *Service) UpdateInventory(ctx context.Context, id Identity, productId string, quantity float64, op catalog.InventoryOp) (models.Product, error) {
	if quantity < 0 {
		return models.Product{}, fmt.Errorf("service.UpdateInventory: %w: quantity must not be negative", models.ErrValidation)
	}

	for attempt := 0; attempt < inventoryRetries; attempt++ {
		p, err := s.store.ProductByID(ctx, productId)
		if err != nil {
			return models.Product{}, fmt.Errorf("service.UpdateInventory: %w", err)
		}
		if id.UserId != p.Vendor {
			return models.Product{}, fmt.Errorf("service.UpdateInventory: %w: only the owning vendor may adjust inventory", models.ErrPermissionDenied)
		}

		expected := p.Availability.Quantity.Available
		if err := catalog.ApplyInventory(&p.Availability, quantity, op, s.now()); err != nil {
			return models.Product{}, fmt.Errorf("service.UpdateInventory: %w", err)
		}

		err = s.store.UpdateProduct(ctx, p, &expected)
		if errors.Is(err, models.ErrConflict) {
			continue
		}
		if err != nil {
			return models.Product{}, fmt.Errorf("service.UpdateInventory: %w", err)
		}
		return p, nil
	}
	return models.Product{}, fmt.Errorf("service.UpdateInventory: %w: inventory contention on product %s", models.ErrConflict, productId)
}
