package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"catalog-console/internal/domain"
	"catalog-console/internal/repository"
)

const createProductsTable = `
CREATE TABLE IF NOT EXISTS products (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	price REAL NOT NULL,
	stock INTEGER NOT NULL,
	category TEXT NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);
`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) repository.ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createProductsTable); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO products (id, name, price, stock, category, image_url, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Name,
		product.Price,
		product.Stock,
		product.Category,
		product.ImageURL,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, price, stock, category, image_url, created_at, updated_at
FROM products
WHERE id = ?`,
		id,
	)
	return scanProduct(row)
}

func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	product.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE products
SET name = ?, price = ?, stock = ?, category = ?, image_url = ?, updated_at = ?
WHERE id = ?`,
		product.Name,
		product.Price,
		product.Stock,
		product.Category,
		product.ImageURL,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update product rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("product %s: %w", product.ID, repository.ErrNotFound)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete product: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete product rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]domain.Product, error) {
	where, args := filterClause(filter)
	query := `
SELECT id, name, price, stock, category, image_url, created_at, updated_at
FROM products` + where + `
ORDER BY created_at DESC, rowid ASC
LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepository) Count(ctx context.Context, filter repository.ProductFilter) (int, error) {
	where, args := filterClause(filter)

	var count int
	row := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`+where, args...)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, price, stock, category, image_url, created_at, updated_at
FROM products
ORDER BY created_at DESC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list all products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func (r *ProductRepository) Overview(ctx context.Context) (*domain.InventoryOverview, error) {
	var overview domain.InventoryOverview
	row := r.db.QueryRowContext(ctx, `
SELECT COUNT(*),
       COALESCE(SUM(stock), 0),
       COALESCE(SUM(stock * price), 0),
       COALESCE(SUM(stock < ?), 0)
FROM products`,
		domain.LowStockThreshold,
	)
	if err := row.Scan(
		&overview.TotalProducts,
		&overview.TotalStock,
		&overview.InventoryValue,
		&overview.LowStockCount,
	); err != nil {
		return nil, fmt.Errorf("scan overview: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
SELECT category, COUNT(*)
FROM products
GROUP BY category
ORDER BY COUNT(*) DESC, category ASC`)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc domain.CategoryCount
		if err := rows.Scan(&cc.Category, &cc.Count); err != nil {
			return nil, fmt.Errorf("scan category count: %w", err)
		}
		overview.Categories = append(overview.Categories, cc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate category counts: %w", err)
	}
	return &overview, nil
}

// filterClause builds the WHERE fragment shared by List and Count so both
// always see the same matching set.
func filterClause(filter repository.ProductFilter) (string, []any) {
	var conds []string
	var args []any

	if filter.Search != "" {
		// LIKE is case-insensitive for ASCII in sqlite
		conds = append(conds, `name LIKE '%' || ? || '%' ESCAPE '\'`)
		args = append(args, escapeLike(filter.Search))
	}
	if filter.Category != "" {
		conds = append(conds, `category = ?`)
		args = append(args, filter.Category)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "\nWHERE " + strings.Join(conds, " AND "), args
}

// escapeLike makes %, _ and \ in a search term match literally.
func escapeLike(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(term)
}

func collectProducts(rows *sql.Rows) ([]domain.Product, error) {
	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Price,
			&p.Stock,
			&p.Category,
			&p.ImageURL,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}
	return products, nil
}

func scanProduct(row interface {
	Scan(dest ...any) error
}) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Stock,
		&p.Category,
		&p.ImageURL,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("product: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan product: %w", err)
	}
	return &p, nil
}
