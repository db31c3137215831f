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

const createAdminsTable = `
CREATE TABLE IF NOT EXISTS admins (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at DATETIME NOT NULL
);
`

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) repository.AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createAdminsTable); err != nil {
		return fmt.Errorf("create admins table: %w", err)
	}
	return nil
}

// Create inserts the admin, relying on the UNIQUE index on email to settle
// concurrent duplicate creation in favor of exactly one caller.
func (r *AdminRepository) Create(ctx context.Context, admin *domain.Admin) error {
	admin.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO admins (id, email, password_hash, created_at)
VALUES (?, ?, ?, ?)`,
		admin.ID,
		admin.Email,
		admin.PasswordHash,
		admin.CreatedAt,
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique") {
			return fmt.Errorf("insert admin %s: %w", admin.Email, repository.ErrAdminExists)
		}
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

func (r *AdminRepository) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, email, password_hash, created_at
FROM admins
WHERE email = ?`,
		email,
	)

	var admin domain.Admin
	if err := row.Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("admin: %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	return &admin, nil
}

func (r *AdminRepository) List(ctx context.Context) ([]domain.Admin, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, email, password_hash, created_at
FROM admins
ORDER BY created_at DESC, rowid ASC`)
	if err != nil {
		return nil, fmt.Errorf("list admins: %w", err)
	}
	defer rows.Close()

	var admins []domain.Admin
	for rows.Next() {
		var admin domain.Admin
		if err := rows.Scan(
			&admin.ID,
			&admin.Email,
			&admin.PasswordHash,
			&admin.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan admin: %w", err)
		}
		admins = append(admins, admin)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate admins: %w", err)
	}
	return admins, nil
}
