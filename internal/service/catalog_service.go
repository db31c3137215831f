package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"catalog-console/internal/domain"
	"catalog-console/internal/repository"
	"catalog-console/internal/storage"
)

// DefaultPageSize is the listing page size when the caller supplies none.
const DefaultPageSize = 5

// CategoryAll is the sentinel that disables category filtering.
const CategoryAll = "All"

// ListParams narrows and pages a catalog listing.
type ListParams struct {
	Page     int
	Limit    int
	Search   string
	Category string
}

// CreateProductInput is the validated payload for a product create.
type CreateProductInput struct {
	Name     string  `json:"name" validate:"required,min=2,max=100"`
	Price    float64 `json:"price" validate:"gt=0"`
	Stock    int     `json:"stock" validate:"gte=0"`
	Category string  `json:"category" validate:"required"`
	Image    string  `json:"image"`
}

// UpdateProductInput is a partial product update; nil fields are left as-is.
type UpdateProductInput struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Stock    *int     `json:"stock"`
	Category *string  `json:"category"`
	Image    *string  `json:"image"`
}

// validatePartial applies the create rules to the supplied fields only.
// Explicit checks rather than struct tags: a pointer to a zero value must
// fail, which tag-level omitempty would wave through.
func validatePartial(input UpdateProductInput) error {
	fields := make(map[string]string)
	if input.Name != nil {
		switch n := utf8.RuneCountInString(*input.Name); {
		case n < 2:
			fields["name"] = "name must be at least 2 characters"
		case n > 100:
			fields["name"] = "name must be no longer than 100 characters"
		}
	}
	if input.Price != nil && *input.Price <= 0 {
		fields["price"] = "price must be greater than 0"
	}
	if input.Stock != nil && *input.Stock < 0 {
		fields["stock"] = "stock must be at least 0"
	}
	if input.Category != nil && *input.Category == "" {
		fields["category"] = "category is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// CatalogService coordinates product reads and the
// validate -> upload -> persist write path.
type CatalogService interface {
	List(ctx context.Context, params ListParams) (*domain.ProductPage, error)
	ListAll(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, input CreateProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) error
	Overview(ctx context.Context) (*domain.InventoryOverview, error)
}

type catalogService struct {
	products   repository.ProductRepository
	storage    storage.Service
	uploadOpts storage.UploadOptions
}

func NewCatalogService(products repository.ProductRepository, store storage.Service, uploadOpts storage.UploadOptions) CatalogService {
	return &catalogService{
		products:   products,
		storage:    store,
		uploadOpts: uploadOpts,
	}
}

func (s *catalogService) List(ctx context.Context, params ListParams) (*domain.ProductPage, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit <= 0 {
		params.Limit = DefaultPageSize
	}

	filter := repository.ProductFilter{
		Search: strings.TrimSpace(params.Search),
	}
	if params.Category != "" && params.Category != CategoryAll {
		filter.Category = params.Category
	}

	offset := (params.Page - 1) * params.Limit
	items, err := s.products.List(ctx, filter, params.Limit, offset)
	if err != nil {
		return nil, err
	}
	total, err := s.products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &domain.ProductPage{
		Items:      items,
		TotalPages: (total + params.Limit - 1) / params.Limit,
	}, nil
}

func (s *catalogService) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.products.ListAll(ctx)
}

func (s *catalogService) Create(ctx context.Context, input CreateProductInput) (*domain.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Category = strings.TrimSpace(input.Category)

	if err := validateInput(input); err != nil {
		return nil, err
	}

	var imageURL string
	if input.Image != "" {
		url, err := s.storage.UploadImage(ctx, input.Image, s.uploadOpts)
		if err != nil {
			return nil, err
		}
		imageURL = url
	}

	product := &domain.Product{
		ID:       uuid.NewString(),
		Name:     input.Name,
		Price:    input.Price,
		Stock:    input.Stock,
		Category: input.Category,
		ImageURL: imageURL,
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *catalogService) Update(ctx context.Context, id string, input UpdateProductInput) (*domain.Product, error) {
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		input.Name = &trimmed
	}
	if input.Category != nil {
		trimmed := strings.TrimSpace(*input.Category)
		input.Category = &trimmed
	}

	if err := validatePartial(input); err != nil {
		return nil, err
	}

	product, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	// absent or empty image leaves the stored URL untouched
	if input.Image != nil && *input.Image != "" {
		url, err := s.storage.UploadImage(ctx, *input.Image, s.uploadOpts)
		if err != nil {
			return nil, err
		}
		product.ImageURL = url
	}

	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Category != nil {
		product.Category = *input.Category
	}

	if err := s.products.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// Delete is idempotent: removing an id that no longer exists succeeds,
// mirroring the store's delete semantics.
func (s *catalogService) Delete(ctx context.Context, id string) error {
	_, err := s.products.Delete(ctx, id)
	return err
}

func (s *catalogService) Overview(ctx context.Context) (*domain.InventoryOverview, error) {
	return s.products.Overview(ctx)
}
