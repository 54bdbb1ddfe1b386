package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/parch0n/Isaura/internal/pkg/encryption"
	"github.com/parch0n/Isaura/internal/repository"
)

// fakeWalletRepo stores ciphertext rows in memory per user.
type fakeWalletRepo struct {
	rows   map[string][]repository.StoredWallet
	nextID int64
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{rows: make(map[string][]repository.StoredWallet)}
}

func (r *fakeWalletRepo) List(_ context.Context, userID string) ([]repository.StoredWallet, error) {
	return r.rows[userID], nil
}

func (r *fakeWalletRepo) Add(_ context.Context, userID, ciphertext string) error {
	r.nextID++
	r.rows[userID] = append(r.rows[userID], repository.StoredWallet{ID: r.nextID, Ciphertext: ciphertext})
	return nil
}

func (r *fakeWalletRepo) Remove(_ context.Context, userID string, walletID int64) error {
	rows := r.rows[userID]
	for i, row := range rows {
		if row.ID == walletID {
			r.rows[userID] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func testEncryptionKey(t *testing.T) []byte {
	t.Helper()
	raw := make([]byte, 32)
	_, err := rand.Read(raw)
	require.NoError(t, err)
	key, err := encryption.ParseKey(hex.EncodeToString(raw))
	require.NoError(t, err)
	return key
}

const (
	addrOne = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"
	addrTwo = "0x53d284357ec70cE289D6D64134DfAc8E511c8a3D"
)

func TestWalletAddAndList(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := NewWalletService(repo, testEncryptionKey(t), 10, zap.NewNop())
	ctx := context.Background()

	wallets, err := svc.Add(ctx, "user-1", addrOne)
	require.NoError(t, err)
	assert.Equal(t, []string{addrOne}, wallets)

	wallets, err = svc.Add(ctx, "user-1", addrTwo)
	require.NoError(t, err)
	assert.Equal(t, []string{addrOne, addrTwo}, wallets)

	// Rows at rest never contain the plaintext address.
	for _, row := range repo.rows["user-1"] {
		assert.NotContains(t, row.Ciphertext, addrOne[2:10])
	}
}

func TestWalletAddRejectsInvalidAddress(t *testing.T) {
	svc := NewWalletService(newFakeWalletRepo(), testEncryptionKey(t), 10, zap.NewNop())

	_, err := svc.Add(context.Background(), "user-1", "742d35Cc6634C0532925a3b844Bc454e4438f44e")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	_, err = svc.Add(context.Background(), "user-1", "0x1234")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestWalletAddDeduplicatesCaseInsensitively(t *testing.T) {
	svc := NewWalletService(newFakeWalletRepo(), testEncryptionKey(t), 10, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", addrOne)
	require.NoError(t, err)

	_, err = svc.Add(ctx, "user-1", "0x"+hexUpper(addrOne[2:]))
	assert.ErrorIs(t, err, ErrWalletExists)
}

func TestWalletAddEnforcesLimit(t *testing.T) {
	svc := NewWalletService(newFakeWalletRepo(), testEncryptionKey(t), 1, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", addrOne)
	require.NoError(t, err)

	_, err = svc.Add(ctx, "user-1", addrTwo)
	assert.ErrorIs(t, err, ErrWalletLimit)
}

func TestWalletRemove(t *testing.T) {
	svc := NewWalletService(newFakeWalletRepo(), testEncryptionKey(t), 10, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", addrOne)
	require.NoError(t, err)
	_, err = svc.Add(ctx, "user-1", addrTwo)
	require.NoError(t, err)

	wallets, err := svc.Remove(ctx, "user-1", addrOne)
	require.NoError(t, err)
	assert.Equal(t, []string{addrTwo}, wallets)

	_, err = svc.Remove(ctx, "user-1", addrOne)
	assert.ErrorIs(t, err, ErrWalletNotFound)
}

func TestWalletRegistryIsPerUser(t *testing.T) {
	svc := NewWalletService(newFakeWalletRepo(), testEncryptionKey(t), 10, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", addrOne)
	require.NoError(t, err)

	wallets, err := svc.List(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, wallets)

	// The same address is fine under a different user.
	_, err = svc.Add(ctx, "user-2", addrOne)
	require.NoError(t, err)
}

func TestWalletListSkipsUndecryptableRows(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := NewWalletService(repo, testEncryptionKey(t), 10, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Add(ctx, "user-1", addrOne)
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, "user-1", "bm90LWEtY2lwaGVydGV4dA=="))

	wallets, err := svc.List(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, []string{addrOne}, wallets)
}

func hexUpper(s string) string {
	out := []byte(s)
	for i, c := range out {
		if c >= 'a' && c <= 'f' {
			out[i] = c - 32
		}
	}
	return string(out)
}
