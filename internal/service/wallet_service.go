package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/parch0n/Isaura/internal/pkg/encryption"
	"github.com/parch0n/Isaura/internal/repository"
)

// WalletService manages the per-user wallet registry. Addresses are sealed
// with AES-256-GCM before they hit the database.
type WalletService interface {
	List(ctx context.Context, userID string) ([]string, error)
	Add(ctx context.Context, userID, address string) ([]string, error)
	Remove(ctx context.Context, userID, address string) ([]string, error)
}

// walletServiceImpl is the implementation of WalletService.
type walletServiceImpl struct {
	repo       repository.WalletRepository
	key        []byte
	maxPerUser int
	logger     *zap.Logger
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(repo repository.WalletRepository, key []byte, maxPerUser int, logger *zap.Logger) WalletService {
	return &walletServiceImpl{
		repo:       repo,
		key:        key,
		maxPerUser: maxPerUser,
		logger:     logger.Named("WalletService"),
	}
}

// List returns the user's wallet addresses in insertion order.
func (s *walletServiceImpl) List(ctx context.Context, userID string) ([]string, error) {
	decrypted, err := s.decryptAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	addresses := make([]string, 0, len(decrypted))
	for _, w := range decrypted {
		addresses = append(addresses, w.address)
	}
	return addresses, nil
}

// Add registers an address for the user and returns the updated list.
func (s *walletServiceImpl) Add(ctx context.Context, userID, address string) ([]string, error) {
	address = strings.TrimSpace(address)
	if !isValidEVMAddress(address) {
		return nil, ErrInvalidAddress
	}

	existing, err := s.decryptAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= s.maxPerUser {
		return nil, ErrWalletLimit
	}
	for _, w := range existing {
		if strings.EqualFold(w.address, address) {
			return nil, ErrWalletExists
		}
	}

	ciphertext, err := encryption.Encrypt(address, s.key)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt wallet address: %w", err)
	}
	if err := s.repo.Add(ctx, userID, ciphertext); err != nil {
		return nil, fmt.Errorf("failed to store wallet: %w", err)
	}
	s.logger.Info("Wallet added", zap.String("userID", userID))

	return s.List(ctx, userID)
}

// Remove deletes an address from the user's registry and returns the
// updated list.
func (s *walletServiceImpl) Remove(ctx context.Context, userID, address string) ([]string, error) {
	existing, err := s.decryptAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, w := range existing {
		if strings.EqualFold(w.address, address) {
			if err := s.repo.Remove(ctx, userID, w.id); err != nil {
				return nil, fmt.Errorf("failed to remove wallet: %w", err)
			}
			s.logger.Info("Wallet removed", zap.String("userID", userID))
			return s.List(ctx, userID)
		}
	}
	return nil, ErrWalletNotFound
}

type decryptedWallet struct {
	id      int64
	address string
}

// decryptAll lists and unseals the user's wallets. Rows that fail to decrypt
// are logged and skipped rather than failing the whole request.
func (s *walletServiceImpl) decryptAll(ctx context.Context, userID string) ([]decryptedWallet, error) {
	stored, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wallets: %w", err)
	}

	wallets := make([]decryptedWallet, 0, len(stored))
	for _, row := range stored {
		address, err := encryption.Decrypt(row.Ciphertext, s.key)
		if err != nil {
			s.logger.Warn("Failed to decrypt stored wallet, skipping",
				zap.String("userID", userID),
				zap.Int64("walletID", row.ID),
				zap.Error(err))
			continue
		}
		wallets = append(wallets, decryptedWallet{id: row.ID, address: address})
	}
	return wallets, nil
}
