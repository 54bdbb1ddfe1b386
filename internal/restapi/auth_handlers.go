package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parch0n/Isaura/internal/config"
	"github.com/parch0n/Isaura/internal/service"
)

// AuthHandler handles the login, logout and session endpoints.
type AuthHandler struct {
	auth   service.AuthService
	cfg    *config.Config
	logger *zap.Logger
}

// NewAuthHandler creates a new instance of AuthHandler.
func NewAuthHandler(auth service.AuthService, cfg *config.Config, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   auth,
		cfg:    cfg,
		logger: logger.Named("AuthHandler"),
	}
}

type loginRequest struct {
	Email string `json:"email" binding:"required"`
}

// LoginHandler issues an email verification code. The response does not
// reveal whether the address belongs to an account.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	if err := h.auth.RequestEmailCode(c.Request.Context(), req.Email); err != nil {
		if errors.Is(err, service.ErrInvalidEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid email address"})
			return
		}
		h.logger.Error("Failed to issue verification code", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send verification code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

type verifyRequest struct {
	Email string `json:"email" binding:"required"`
	Code  string `json:"code" binding:"required"`
}

// VerifyHandler exchanges an email code for a session token.
func (h *AuthHandler) VerifyHandler(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and code are required"})
		return
	}

	token, user, err := h.auth.VerifyEmailCode(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCode) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired code"})
			return
		}
		h.logger.Error("Email verification failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		return
	}

	h.setAuthCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user})
}

type walletNonceRequest struct {
	Address string `json:"address" binding:"required"`
}

// WalletNonceHandler issues a single-use nonce for wallet login.
func (h *AuthHandler) WalletNonceHandler(c *gin.Context) {
	var req walletNonceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	nonce, err := h.auth.WalletNonce(c.Request.Context(), req.Address)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAddress) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
			return
		}
		h.logger.Error("Failed to issue wallet nonce", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue nonce"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"nonce":   nonce,
		"message": service.LoginMessage(req.Address, nonce),
	})
}

type walletVerifyRequest struct {
	Address   string `json:"address" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}

// WalletVerifyHandler exchanges a signed nonce for a session token.
func (h *AuthHandler) WalletVerifyHandler(c *gin.Context) {
	var req walletVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address and signature are required"})
		return
	}

	token, user, err := h.auth.VerifyWalletSignature(c.Request.Context(), req.Address, req.Signature)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		case errors.Is(err, service.ErrNonceExpired):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "nonce expired, request a new one"})
		case errors.Is(err, service.ErrInvalidSignature):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "signature verification failed"})
		default:
			h.logger.Error("Wallet verification failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "verification failed"})
		}
		return
	}

	h.setAuthCookie(c, token)
	c.JSON(http.StatusOK, gin.H{"success": true, "token": token, "user": user})
}

// LogoutHandler clears the auth cookie.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	c.SetCookie(AuthCookieName, "", -1, "/", "", h.cfg.Auth.SecureCookie, true)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *AuthHandler) setAuthCookie(c *gin.Context, token string) {
	maxAge := h.cfg.Auth.TokenTTLHours * 3600
	c.SetCookie(AuthCookieName, token, maxAge, "/", "", h.cfg.Auth.SecureCookie, true)
}
