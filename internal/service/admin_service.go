package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"catalog-console/internal/domain"
	"catalog-console/internal/repository"
)

// ErrInvalidCredentials indicates that provided login credentials are incorrect.
var ErrInvalidCredentials = errors.New("invalid credentials")

type createAdminInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AdminService describes admin account operations.
type AdminService interface {
	List(ctx context.Context) ([]domain.Admin, error)
	Create(ctx context.Context, email, password string) error
	Authenticate(ctx context.Context, email, password string) (*domain.Admin, error)
}

type adminService struct {
	admins repository.AdminRepository
}

func NewAdminService(admins repository.AdminRepository) AdminService {
	return &adminService{admins: admins}
}

// List returns all admins, newest first, with password hashes stripped.
func (s *adminService) List(ctx context.Context) ([]domain.Admin, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range admins {
		admins[i].PasswordHash = ""
	}
	return admins, nil
}

func (s *adminService) Create(ctx context.Context, email, password string) error {
	input := createAdminInput{
		Email:    strings.TrimSpace(email),
		Password: password,
	}
	if err := validateInput(input); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin := &domain.Admin{
		ID:           uuid.NewString(),
		Email:        input.Email,
		PasswordHash: string(hash),
	}
	return s.admins.Create(ctx, admin)
}

func (s *adminService) Authenticate(ctx context.Context, email, password string) (*domain.Admin, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	admin, err := s.admins.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	admin.PasswordHash = ""
	return admin, nil
}
