package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/parch0n/Isaura/internal/entity"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// UserRepository persists user accounts keyed by their login identity.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// UpsertByEmail creates or refreshes the user owning an email address
	// and stamps the login time. The email is lowercased.
	UpsertByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpsertByWallet creates or refreshes the user owning a login wallet
	// address. The address is lowercased.
	UpsertByWallet(ctx context.Context, address string) (*entity.User, error)
}

type userRepositoryImpl struct {
	db *sql.DB
}

// NewUserRepository creates a sqlite-backed UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepositoryImpl{db: db}
}

func (r *userRepositoryImpl) FindByID(ctx context.Context, id string) (*entity.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, wallet_address, email_verified, created_at, last_login_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *userRepositoryImpl) UpsertByEmail(ctx context.Context, email string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET email_verified = 1, last_login_at = ? WHERE email = ?`, now, email)
	if err != nil {
		return nil, fmt.Errorf("failed to update user by email: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		id := uuid.NewString()
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO users (id, email, email_verified, created_at, last_login_at) VALUES (?, ?, 1, ?, ?)`,
			id, email, now, now)
		if err != nil {
			// Lost a creation race; the row exists now and the re-read below
			// picks it up.
			if !isUniqueViolation(err) {
				return nil, fmt.Errorf("failed to create user: %w", err)
			}
		}
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, wallet_address, email_verified, created_at, last_login_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (r *userRepositoryImpl) UpsertByWallet(ctx context.Context, address string) (*entity.User, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = ? WHERE wallet_address = ?`, now, address)
	if err != nil {
		return nil, fmt.Errorf("failed to update user by wallet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		id := uuid.NewString()
		_, err = r.db.ExecContext(ctx,
			`INSERT INTO users (id, wallet_address, created_at, last_login_at) VALUES (?, ?, ?, ?)`,
			id, address, now, now)
		if err != nil && !isUniqueViolation(err) {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, email, wallet_address, email_verified, created_at, last_login_at FROM users WHERE wallet_address = ?`, address)
	return scanUser(row)
}

func scanUser(row *sql.Row) (*entity.User, error) {
	var (
		u             entity.User
		email, wallet sql.NullString
		verified      int
	)
	err := row.Scan(&u.ID, &email, &wallet, &verified, &u.CreatedAt, &u.LastLoginAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	u.Email = email.String
	u.WalletAddress = wallet.String
	u.EmailVerified = verified != 0
	return &u, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
