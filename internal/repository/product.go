package repository

import (
	"context"

	"catalog-console/internal/domain"
)

// ProductFilter narrows a catalog listing. Search is a case-insensitive
// substring match against the name; an empty Category means no category
// restriction.
type ProductFilter struct {
	Search   string
	Category string
}

// ProductRepository exposes persistence operations for Product records.
type ProductRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, product *domain.Product) error
	Get(ctx context.Context, id string) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	// Delete removes a product and reports whether a record existed.
	Delete(ctx context.Context, id string) (bool, error)
	List(ctx context.Context, filter ProductFilter, limit, offset int) ([]domain.Product, error)
	Count(ctx context.Context, filter ProductFilter) (int, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	Overview(ctx context.Context) (*domain.InventoryOverview, error)
}
