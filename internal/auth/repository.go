package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/roomly/backend/internal/models"
)

// Repository handles company and user persistence for the auth surface.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CompanyNameExists reports whether a company with the name is registered.
func (r *Repository) CompanyNameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM companies WHERE name = $1)`, name).Scan(&exists)
	return exists, err
}

// CreateCompany inserts a company with its working-hours window.
func (r *Repository) CreateCompany(ctx context.Context, company *models.Company) error {
	const q = `INSERT INTO companies (id, name, password_hash, working_start_min, working_end_min)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q,
		company.Name, company.PasswordHash,
		int(company.WorkingStart.Minutes()), int(company.WorkingEnd.Minutes())).
		Scan(&company.ID, &company.CreatedAt)
}

// GetCompany returns a company by ID.
func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	const q = `SELECT id, name, password_hash, working_start_min, working_end_min, created_at
		FROM companies WHERE id = $1`
	var (
		c                models.Company
		startMin, endMin int
	)
	err := r.pool.QueryRow(ctx, q, id).
		Scan(&c.ID, &c.Name, &c.PasswordHash, &startMin, &endMin, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.WorkingStart = time.Duration(startMin) * time.Minute
	c.WorkingEnd = time.Duration(endMin) * time.Minute
	return &c, nil
}

// GetUserByTelegramID returns the user linked to a Telegram account, or
// nil when none exists.
func (r *Repository) GetUserByTelegramID(ctx context.Context, telegramID int64) (*models.User, error) {
	const q = `SELECT id, telegram_id, user_name, company_id, role, created_at
		FROM users WHERE telegram_id = $1`
	var u models.User
	err := r.pool.QueryRow(ctx, q, telegramID).
		Scan(&u.ID, &u.TelegramID, &u.UserName, &u.CompanyID, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a user.
func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	const q = `INSERT INTO users (id, telegram_id, user_name, company_id, role)
		VALUES (gen_random_uuid(), $1, $2, $3, $4)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, user.TelegramID, user.UserName, user.CompanyID, user.Role).
		Scan(&user.ID, &user.CreatedAt)
}

// PromoteToCompanyAdmin moves an existing user into a company as admin,
// used when a known Telegram account registers a new company.
func (r *Repository) PromoteToCompanyAdmin(ctx context.Context, userID, companyID uuid.UUID, userName string) error {
	const q = `UPDATE users
		SET company_id = $2, role = $3, user_name = COALESCE(NULLIF($4, ''), user_name)
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, q, userID, companyID, models.RoleAdmin, userName)
	return err
}
