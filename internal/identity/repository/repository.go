// Package repository provides data access for admin user accounts.
package repository

import (
	"context"
	"errors"
	"time"

	"fleet_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opGetByEmail = "identity.repository.get_by_email"
	opGetByID    = "identity.repository.get_by_id"
	opListActive = "identity.repository.list_active"
	opCreate     = "identity.repository.create"
	opUpdatePass = "identity.repository.update_password"
)

// AdminUser is a back-office account that receives fleet notifications.
type AdminUser struct {
	ID           uuid.UUID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*AdminUser, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opGetByEmail)
	}

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, name, COALESCE(phone, ''), password_hash, role, is_active, created_at, updated_at
		FROM admin_users
		WHERE email = $1`, email)

	return scanAdminUser(row, opGetByEmail)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*AdminUser, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opGetByID)
	}

	row := r.pool.QueryRow(ctx, `
		SELECT id, email, name, COALESCE(phone, ''), password_hash, role, is_active, created_at, updated_at
		FROM admin_users
		WHERE id = $1`, id)

	return scanAdminUser(row, opGetByID)
}

// ListActive returns every active admin account. The notification fan-out
// creates one in-app notification row per returned user.
func (r *Repository) ListActive(ctx context.Context) ([]AdminUser, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opListActive)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, email, name, COALESCE(phone, ''), password_hash, role, is_active, created_at, updated_at
		FROM admin_users
		WHERE is_active
		ORDER BY created_at`)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list admin users", err).WithOp(opListActive)
	}
	defer rows.Close()

	var users []AdminUser
	for rows.Next() {
		var u AdminUser
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to scan admin user", err).WithOp(opListActive)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to read admin users", err).WithOp(opListActive)
	}

	return users, nil
}

func (r *Repository) Create(ctx context.Context, email, name, phone, passwordHash, role string) (*AdminUser, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal("repository not initialized").WithOp(opCreate)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO admin_users (email, name, phone, password_hash, role)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING id, email, name, COALESCE(phone, ''), password_hash, role, is_active, created_at, updated_at`,
		email, name, phone, passwordHash, role)

	user, err := scanAdminUser(row, opCreate)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("an account with this email already exists").WithOp(opCreate)
		}
		return nil, err
	}
	return user, nil
}

func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if r == nil || r.pool == nil {
		return apperr.Internal("repository not initialized").WithOp(opUpdatePass)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE admin_users SET password_hash = $2, updated_at = now()
		WHERE id = $1`, id, passwordHash)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to update password", err).WithOp(opUpdatePass)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("admin user not found").WithOp(opUpdatePass)
	}
	return nil
}

func scanAdminUser(row pgx.Row, op string) (*AdminUser, error) {
	var u AdminUser
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("admin user not found").WithOp(op)
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to scan admin user", err).WithOp(op)
	}
	return &u, nil
}

func isUniqueViolation(err error) bool {
	type coder interface{ SQLState() string }
	var c coder
	if errors.As(err, &c) {
		return c.SQLState() == "23505"
	}
	return false
}
