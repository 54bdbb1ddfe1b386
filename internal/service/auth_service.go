package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/golang-jwt/jwt/v5"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/parch0n/Isaura/internal/config"
	"github.com/parch0n/Isaura/internal/entity"
	"github.com/parch0n/Isaura/internal/pkg/mailer"
	"github.com/parch0n/Isaura/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Claims is the JWT payload issued after a successful login.
type Claims struct {
	UserID        string `json:"userId"`
	Email         string `json:"email,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
	jwt.RegisteredClaims
}

// AuthService handles the email-code and wallet-signature login flows and
// issues session tokens. Identity provisioning beyond that is out of scope.
type AuthService interface {
	RequestEmailCode(ctx context.Context, email string) error
	VerifyEmailCode(ctx context.Context, email, code string) (string, *entity.User, error)
	WalletNonce(ctx context.Context, address string) (string, error)
	VerifyWalletSignature(ctx context.Context, address, signature string) (string, *entity.User, error)
	ParseToken(token string) (*Claims, error)
}

// authServiceImpl is the implementation of AuthService.
type authServiceImpl struct {
	users    repository.UserRepository
	mail     mailer.Mailer
	codes    *cache.Cache
	nonces   *cache.Cache
	secret   []byte
	tokenTTL time.Duration
	codeTTL  time.Duration
	nonceTTL time.Duration
	logger   *zap.Logger
}

// NewAuthService creates a new instance of AuthService. The code and nonce
// caches are owned by the caller.
func NewAuthService(users repository.UserRepository, mail mailer.Mailer, codes, nonces *cache.Cache, cfg *config.Config, logger *zap.Logger) AuthService {
	return &authServiceImpl{
		users:    users,
		mail:     mail,
		codes:    codes,
		nonces:   nonces,
		secret:   []byte(cfg.Auth.JWTSecret),
		tokenTTL: time.Duration(cfg.Auth.TokenTTLHours) * time.Hour,
		codeTTL:  time.Duration(cfg.Auth.CodeTTLMinutes) * time.Minute,
		nonceTTL: time.Duration(cfg.Auth.NonceTTLMinutes) * time.Minute,
		logger:   logger.Named("AuthService"),
	}
}

// RequestEmailCode issues a 6-digit code and mails it. The caller gets no
// signal whether the address belongs to an account.
func (s *authServiceImpl) RequestEmailCode(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	code, err := randomCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}
	s.codes.Set("code:"+email, code, s.codeTTL)

	if err := s.mail.SendVerificationCode(ctx, email, code); err != nil {
		s.codes.Delete("code:" + email)
		return fmt.Errorf("failed to send verification code: %w", err)
	}
	s.logger.Info("Verification code issued", zap.String("email", email))
	return nil
}

// VerifyEmailCode consumes a code, upserts the user and returns a session token.
func (s *authServiceImpl) VerifyEmailCode(ctx context.Context, email, code string) (string, *entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	stored, found := s.codes.Get("code:" + email)
	if !found {
		return "", nil, ErrInvalidCode
	}
	expected, ok := stored.(string)
	if !ok || expected != strings.TrimSpace(code) {
		return "", nil, ErrInvalidCode
	}
	// Single use, even on a later failure.
	s.codes.Delete("code:" + email)

	user, err := s.users.UpsertByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	token, err := s.signToken(user)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("Email login succeeded", zap.String("userID", user.ID))
	return token, user, nil
}

// WalletNonce issues a single-use login nonce bound to an address.
func (s *authServiceImpl) WalletNonce(_ context.Context, address string) (string, error) {
	if !isValidEVMAddress(address) {
		return "", ErrInvalidAddress
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)
	s.nonces.Set("nonce:"+strings.ToLower(address), nonce, s.nonceTTL)
	return nonce, nil
}

// VerifyWalletSignature checks an EIP-191 personal-sign of the login message
// over the issued nonce, consumes the nonce and returns a session token.
func (s *authServiceImpl) VerifyWalletSignature(ctx context.Context, address, signature string) (string, *entity.User, error) {
	if !isValidEVMAddress(address) {
		return "", nil, ErrInvalidAddress
	}
	key := "nonce:" + strings.ToLower(address)
	stored, found := s.nonces.Get(key)
	if !found {
		return "", nil, ErrNonceExpired
	}
	nonce, _ := stored.(string)
	s.nonces.Delete(key)

	sig, err := hexutil.Decode(signature)
	if err != nil || len(sig) != 65 {
		return "", nil, ErrInvalidSignature
	}
	// Wallets return the recovery id as 27/28.
	if sig[64] >= 27 {
		sig[64] -= 27
	}

	hash := accounts.TextHash([]byte(LoginMessage(address, nonce)))
	pub, err := ethcrypto.SigToPub(hash, sig)
	if err != nil {
		return "", nil, ErrInvalidSignature
	}
	recovered := ethcrypto.PubkeyToAddress(*pub)
	if !strings.EqualFold(recovered.Hex(), address) {
		return "", nil, ErrInvalidSignature
	}

	user, err := s.users.UpsertByWallet(ctx, address)
	if err != nil {
		return "", nil, fmt.Errorf("failed to upsert user: %w", err)
	}

	token, err := s.signToken(user)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("Wallet login succeeded", zap.String("userID", user.ID))
	return token, user, nil
}

// ParseToken validates a session token and returns its claims.
func (s *authServiceImpl) ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}
	return claims, nil
}

func (s *authServiceImpl) signToken(user *entity.User) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:        user.ID,
		Email:         user.Email,
		WalletAddress: user.WalletAddress,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// LoginMessage is the exact text a wallet must personal-sign to log in.
func LoginMessage(address, nonce string) string {
	return fmt.Sprintf("Isaura login\nAddress: %s\nNonce: %s", strings.ToLower(address), nonce)
}

func randomCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func isValidEVMAddress(address string) bool {
	return strings.HasPrefix(address, "0x") && common.IsHexAddress(address)
}
