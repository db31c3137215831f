package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"catalog-console/internal/domain"
	"catalog-console/internal/repository"
	"catalog-console/internal/storage"
)

type mockProductRepo struct {
	createFn  func(ctx context.Context, product *domain.Product) error
	getFn     func(ctx context.Context, id string) (*domain.Product, error)
	updateFn  func(ctx context.Context, product *domain.Product) error
	deleteFn  func(ctx context.Context, id string) (bool, error)
	listFn    func(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]domain.Product, error)
	countFn   func(ctx context.Context, filter repository.ProductFilter) (int, error)
	listAllFn func(ctx context.Context) ([]domain.Product, error)
}

func (m *mockProductRepo) Init(ctx context.Context) error { return nil }

func (m *mockProductRepo) Create(ctx context.Context, product *domain.Product) error {
	if m.createFn == nil {
		return errors.New("unexpected Create call")
	}
	return m.createFn(ctx, product)
}

func (m *mockProductRepo) Get(ctx context.Context, id string) (*domain.Product, error) {
	if m.getFn == nil {
		return nil, errors.New("unexpected Get call")
	}
	return m.getFn(ctx, id)
}

func (m *mockProductRepo) Update(ctx context.Context, product *domain.Product) error {
	if m.updateFn == nil {
		return errors.New("unexpected Update call")
	}
	return m.updateFn(ctx, product)
}

func (m *mockProductRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn == nil {
		return false, errors.New("unexpected Delete call")
	}
	return m.deleteFn(ctx, id)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]domain.Product, error) {
	if m.listFn == nil {
		return nil, errors.New("unexpected List call")
	}
	return m.listFn(ctx, filter, limit, offset)
}

func (m *mockProductRepo) Count(ctx context.Context, filter repository.ProductFilter) (int, error) {
	if m.countFn == nil {
		return 0, errors.New("unexpected Count call")
	}
	return m.countFn(ctx, filter)
}

func (m *mockProductRepo) ListAll(ctx context.Context) ([]domain.Product, error) {
	if m.listAllFn == nil {
		return nil, errors.New("unexpected ListAll call")
	}
	return m.listAllFn(ctx)
}

func (m *mockProductRepo) Overview(ctx context.Context) (*domain.InventoryOverview, error) {
	return nil, errors.New("unexpected Overview call")
}

type mockStorage struct {
	uploadFn func(ctx context.Context, dataURI string, opts storage.UploadOptions) (string, error)
	calls    int
}

func (m *mockStorage) UploadImage(ctx context.Context, dataURI string, opts storage.UploadOptions) (string, error) {
	m.calls++
	if m.uploadFn == nil {
		return "", errors.New("unexpected UploadImage call")
	}
	return m.uploadFn(ctx, dataURI, opts)
}

func newCatalog(repo *mockProductRepo, store *mockStorage) CatalogService {
	return NewCatalogService(repo, store, storage.UploadOptions{Bucket: "assets", KeyPrefix: "products"})
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateProductInput
		field string
	}{
		{
			name:  "zero price",
			input: CreateProductInput{Name: "Lamp", Price: 0, Stock: 3, Category: "Furniture"},
			field: "price",
		},
		{
			name:  "negative price",
			input: CreateProductInput{Name: "Lamp", Price: -1, Stock: 3, Category: "Furniture"},
			field: "price",
		},
		{
			name:  "negative stock",
			input: CreateProductInput{Name: "Lamp", Price: 20, Stock: -1, Category: "Furniture"},
			field: "stock",
		},
		{
			name:  "short name",
			input: CreateProductInput{Name: "L", Price: 20, Stock: 3, Category: "Furniture"},
			field: "name",
		},
		{
			name:  "missing category",
			input: CreateProductInput{Name: "Lamp", Price: 20, Stock: 3, Category: "  "},
			field: "category",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockProductRepo{} // any repo call fails the test
			store := &mockStorage{}
			svc := newCatalog(repo, store)

			_, err := svc.Create(context.Background(), tt.input)

			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if _, ok := validationErr.Fields[tt.field]; !ok {
				t.Errorf("fields = %v, want message for %q", validationErr.Fields, tt.field)
			}
			if store.calls != 0 {
				t.Errorf("upload called %d times before validation passed", store.calls)
			}
		})
	}
}

func TestCreateWithoutImage(t *testing.T) {
	var persisted *domain.Product
	repo := &mockProductRepo{
		createFn: func(ctx context.Context, product *domain.Product) error {
			persisted = product
			return nil
		},
	}
	store := &mockStorage{}
	svc := newCatalog(repo, store)

	product, err := svc.Create(context.Background(), CreateProductInput{
		Name: "Lamp", Price: 20, Stock: 3, Category: "Furniture",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if store.calls != 0 {
		t.Errorf("upload called %d times for image-less create", store.calls)
	}
	if product.ImageURL != "" {
		t.Errorf("ImageURL = %q, want empty", product.ImageURL)
	}
	if !product.LowStock() {
		t.Errorf("stock %d should flag low stock", product.Stock)
	}
	if persisted == nil || persisted.ID == "" {
		t.Fatalf("persisted product missing id: %+v", persisted)
	}
}

func TestCreateWithImage(t *testing.T) {
	repo := &mockProductRepo{
		createFn: func(ctx context.Context, product *domain.Product) error { return nil },
	}
	store := &mockStorage{
		uploadFn: func(ctx context.Context, dataURI string, opts storage.UploadOptions) (string, error) {
			if opts.Bucket != "assets" || opts.KeyPrefix != "products" {
				return "", fmt.Errorf("unexpected upload options %+v", opts)
			}
			return "https://assets.example.com/products/lamp.png", nil
		},
	}
	svc := newCatalog(repo, store)

	product, err := svc.Create(context.Background(), CreateProductInput{
		Name: "Lamp", Price: 20, Stock: 9, Category: "Furniture",
		Image: "data:image/png;base64,aGk=",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if product.ImageURL != "https://assets.example.com/products/lamp.png" {
		t.Errorf("ImageURL = %q", product.ImageURL)
	}
	if store.calls != 1 {
		t.Errorf("upload calls = %d, want 1", store.calls)
	}
}

func TestCreateUploadFailureAborts(t *testing.T) {
	created := 0
	repo := &mockProductRepo{
		createFn: func(ctx context.Context, product *domain.Product) error {
			created++
			return nil
		},
	}
	store := &mockStorage{
		uploadFn: func(ctx context.Context, dataURI string, opts storage.UploadOptions) (string, error) {
			return "", fmt.Errorf("%w: host unreachable", storage.ErrUploadFailed)
		},
	}
	svc := newCatalog(repo, store)

	_, err := svc.Create(context.Background(), CreateProductInput{
		Name: "Lamp", Price: 20, Stock: 3, Category: "Furniture",
		Image: "data:image/png;base64,aGk=",
	})
	if !errors.Is(err, storage.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}
	if created != 0 {
		t.Errorf("product persisted despite upload failure")
	}
}

func TestUpdateKeepsImageWhenAbsent(t *testing.T) {
	existing := &domain.Product{
		ID: "p1", Name: "Lamp", Price: 20, Stock: 3, Category: "Furniture",
		ImageURL: "https://assets.example.com/products/old.png",
	}
	var updated *domain.Product
	repo := &mockProductRepo{
		getFn: func(ctx context.Context, id string) (*domain.Product, error) {
			if id != "p1" {
				return nil, fmt.Errorf("product: %w", repository.ErrNotFound)
			}
			copied := *existing
			return &copied, nil
		},
		updateFn: func(ctx context.Context, product *domain.Product) error {
			updated = product
			return nil
		},
	}
	store := &mockStorage{}
	svc := newCatalog(repo, store)

	price := 25.0
	product, err := svc.Update(context.Background(), "p1", UpdateProductInput{Price: &price})
	if err != nil {
		t.Fatalf("update: %v", err)
	}

	if store.calls != 0 {
		t.Errorf("upload called without a new image")
	}
	if product.ImageURL != existing.ImageURL {
		t.Errorf("ImageURL = %q, want untouched %q", product.ImageURL, existing.ImageURL)
	}
	if updated.Price != 25 {
		t.Errorf("Price = %v, want 25", updated.Price)
	}
	if updated.Name != "Lamp" || updated.Stock != 3 {
		t.Errorf("unsupplied fields changed: %+v", updated)
	}
}

func TestUpdateReplacesImageWhenSupplied(t *testing.T) {
	repo := &mockProductRepo{
		getFn: func(ctx context.Context, id string) (*domain.Product, error) {
			return &domain.Product{ID: id, Name: "Lamp", Price: 20, Stock: 3, Category: "Furniture", ImageURL: "old"}, nil
		},
		updateFn: func(ctx context.Context, product *domain.Product) error { return nil },
	}
	store := &mockStorage{
		uploadFn: func(ctx context.Context, dataURI string, opts storage.UploadOptions) (string, error) {
			return "https://assets.example.com/products/new.png", nil
		},
	}
	svc := newCatalog(repo, store)

	image := "data:image/png;base64,aGk="
	product, err := svc.Update(context.Background(), "p1", UpdateProductInput{Image: &image})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if product.ImageURL != "https://assets.example.com/products/new.png" {
		t.Errorf("ImageURL = %q, want replaced", product.ImageURL)
	}
}

func TestUpdateValidatesSuppliedFields(t *testing.T) {
	repo := &mockProductRepo{} // Get must not run on invalid input
	svc := newCatalog(repo, &mockStorage{})

	price := 0.0
	_, err := svc.Update(context.Background(), "p1", UpdateProductInput{Price: &price})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if _, ok := validationErr.Fields["price"]; !ok {
		t.Errorf("fields = %v, want price message", validationErr.Fields)
	}
}

func TestUpdateNotFound(t *testing.T) {
	repo := &mockProductRepo{
		getFn: func(ctx context.Context, id string) (*domain.Product, error) {
			return nil, fmt.Errorf("product: %w", repository.ErrNotFound)
		},
	}
	svc := newCatalog(repo, &mockStorage{})

	name := "Desk"
	_, err := svc.Update(context.Background(), "missing", UpdateProductInput{Name: &name})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteMissingIDSucceeds(t *testing.T) {
	repo := &mockProductRepo{
		deleteFn: func(ctx context.Context, id string) (bool, error) { return false, nil },
	}
	svc := newCatalog(repo, &mockStorage{})

	if err := svc.Delete(context.Background(), "missing"); err != nil {
		t.Errorf("delete of missing id: %v, want nil", err)
	}
}

func TestListNormalizesPaging(t *testing.T) {
	tests := []struct {
		name       string
		params     ListParams
		wantLimit  int
		wantOffset int
	}{
		{"zero page", ListParams{Page: 0, Limit: 5}, 5, 0},
		{"negative page", ListParams{Page: -3, Limit: 5}, 5, 0},
		{"first page", ListParams{Page: 1, Limit: 5}, 5, 0},
		{"third page", ListParams{Page: 3, Limit: 5}, 5, 10},
		{"zero limit", ListParams{Page: 2, Limit: 0}, DefaultPageSize, DefaultPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotLimit, gotOffset int
			repo := &mockProductRepo{
				listFn: func(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]domain.Product, error) {
					gotLimit, gotOffset = limit, offset
					return nil, nil
				},
				countFn: func(ctx context.Context, filter repository.ProductFilter) (int, error) {
					return 0, nil
				},
			}
			svc := newCatalog(repo, &mockStorage{})

			if _, err := svc.List(context.Background(), tt.params); err != nil {
				t.Fatalf("list: %v", err)
			}
			if gotLimit != tt.wantLimit || gotOffset != tt.wantOffset {
				t.Errorf("limit/offset = %d/%d, want %d/%d", gotLimit, gotOffset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}

func TestListTotalPages(t *testing.T) {
	tests := []struct {
		total, limit, want int
	}{
		{12, 5, 3},
		{10, 5, 2},
		{1, 5, 1},
		{0, 5, 0},
		{5, 5, 1},
	}

	for _, tt := range tests {
		repo := &mockProductRepo{
			listFn: func(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]domain.Product, error) {
				return nil, nil
			},
			countFn: func(ctx context.Context, filter repository.ProductFilter) (int, error) {
				return tt.total, nil
			},
		}
		svc := newCatalog(repo, &mockStorage{})

		page, err := svc.List(context.Background(), ListParams{Page: 1, Limit: tt.limit})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if page.TotalPages != tt.want {
			t.Errorf("total %d limit %d: TotalPages = %d, want %d", tt.total, tt.limit, page.TotalPages, tt.want)
		}
	}
}

func TestListCategorySentinel(t *testing.T) {
	var gotFilter repository.ProductFilter
	repo := &mockProductRepo{
		listFn: func(ctx context.Context, filter repository.ProductFilter, limit, offset int) ([]domain.Product, error) {
			gotFilter = filter
			return nil, nil
		},
		countFn: func(ctx context.Context, filter repository.ProductFilter) (int, error) {
			return 0, nil
		},
	}
	svc := newCatalog(repo, &mockStorage{})

	if _, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 5, Category: CategoryAll, Search: "  lamp "}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotFilter.Category != "" {
		t.Errorf("category filter = %q, want disabled for %q", gotFilter.Category, CategoryAll)
	}
	if gotFilter.Search != "lamp" {
		t.Errorf("search = %q, want trimmed %q", gotFilter.Search, "lamp")
	}

	if _, err := svc.List(context.Background(), ListParams{Page: 1, Limit: 5, Category: "Furniture"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotFilter.Category != "Furniture" {
		t.Errorf("category filter = %q, want %q", gotFilter.Category, "Furniture")
	}
}
