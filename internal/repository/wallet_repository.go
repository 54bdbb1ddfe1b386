package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// StoredWallet is one encrypted wallet row belonging to a user.
type StoredWallet struct {
	ID         int64
	Ciphertext string
}

// WalletRepository persists a user's registered wallet addresses, encrypted
// at rest. Ordering follows insertion order.
type WalletRepository interface {
	List(ctx context.Context, userID string) ([]StoredWallet, error)
	Add(ctx context.Context, userID, ciphertext string) error
	Remove(ctx context.Context, userID string, walletID int64) error
}

type walletRepositoryImpl struct {
	db *sql.DB
}

// NewWalletRepository creates a sqlite-backed WalletRepository.
func NewWalletRepository(db *sql.DB) WalletRepository {
	return &walletRepositoryImpl{db: db}
}

func (r *walletRepositoryImpl) List(ctx context.Context, userID string) ([]StoredWallet, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ciphertext FROM wallets WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []StoredWallet
	for rows.Next() {
		var w StoredWallet
		if err := rows.Scan(&w.ID, &w.Ciphertext); err != nil {
			return nil, fmt.Errorf("failed to scan wallet row: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wallet rows: %w", err)
	}
	return wallets, nil
}

func (r *walletRepositoryImpl) Add(ctx context.Context, userID, ciphertext string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wallets (user_id, ciphertext, created_at) VALUES (?, ?, ?)`,
		userID, ciphertext, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to add wallet: %w", err)
	}
	return nil
}

func (r *walletRepositoryImpl) Remove(ctx context.Context, userID string, walletID int64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM wallets WHERE id = ? AND user_id = ?`, walletID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove wallet: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
