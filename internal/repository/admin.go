package repository

import (
	"context"
	"errors"

	"catalog-console/internal/domain"
)

var (
	// ErrAdminExists is returned when inserting an admin whose email is taken.
	ErrAdminExists = errors.New("admin already exists")
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
)

// AdminRepository defines persistence operations for Admin entities.
type AdminRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, admin *domain.Admin) error
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	List(ctx context.Context) ([]domain.Admin, error)
}
