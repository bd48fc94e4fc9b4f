package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/ideaforge/ideaforge/internal/model"
	"github.com/ideaforge/ideaforge/internal/utils"
)

// UserRepo provides access to the 'users' table, including the credit
// balance column mutated by the ledger.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user and returns its ID. New accounts start on the
// FREE tier with the signup credit grant already applied by the
// caller through the ledger, so credits begin at zero here.
func (r *UserRepo) Create(ctx context.Context, email, password, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role, credits, tier) VALUES (?,?,?,0,'FREE')",
		email, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,credits,tier,is_active,created_at,updated_at FROM users WHERE email=? LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Credits, &u.Tier, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// FindByID fetches a user by primary key. Returns ErrUserNotFound
// when no row exists.
func (r *UserRepo) FindByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,role,credits,tier,is_active,created_at,updated_at FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role, &u.Credits, &u.Tier, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return u, ErrUserNotFound
	}
	return u, err
}

// DeductCredits subtracts amount from the stored balance, guarded in
// the same statement so concurrent spends can never drive it below
// zero. The bool reports whether the deduction was applied; false
// means the row is missing or the balance is short, which the ledger
// disambiguates.
func (r *UserRepo) DeductCredits(ctx context.Context, id uint64, amount int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET credits=credits-? WHERE id=? AND credits>=?", amount, id, amount)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddCredits adds amount to the stored balance. Returns
// ErrUserNotFound when no row exists.
func (r *UserRepo) AddCredits(ctx context.Context, id uint64, amount int64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET credits=credits+? WHERE id=?", amount, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrUserNotFound
	}
	return err
}
