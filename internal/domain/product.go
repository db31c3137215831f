package domain

import "time"

// LowStockThreshold is the stock count below which a product is flagged as
// running low. Presentation only, not a storage invariant.
const LowStockThreshold = 5

// Product represents a catalog entry managed through the admin console.
type Product struct {
	ID        string
	Name      string
	Price     float64
	Stock     int
	Category  string
	ImageURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LowStock reports whether the product should carry the low-stock flag.
func (p Product) LowStock() bool {
	return p.Stock < LowStockThreshold
}

// ProductPage is one page of a filtered catalog listing. Derived per request,
// never persisted.
type ProductPage struct {
	Items      []Product
	TotalPages int
}

// CategoryCount is the number of products in one category.
type CategoryCount struct {
	Category string
	Count    int
}

// InventoryOverview aggregates catalog-wide stock figures for the analytics
// view.
type InventoryOverview struct {
	TotalProducts  int
	TotalStock     int
	InventoryValue float64
	LowStockCount  int
	Categories     []CategoryCount
}
