package restapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parch0n/Isaura/internal/service"
)

// WalletHandler handles the wallet registry endpoints.
type WalletHandler struct {
	wallets service.WalletService
	logger  *zap.Logger
}

// NewWalletHandler creates a new instance of WalletHandler.
func NewWalletHandler(wallets service.WalletService, logger *zap.Logger) *WalletHandler {
	return &WalletHandler{
		wallets: wallets,
		logger:  logger.Named("WalletHandler"),
	}
}

// ListHandler returns the authenticated user's wallet addresses.
func (h *WalletHandler) ListHandler(c *gin.Context) {
	addresses, err := h.wallets.List(c.Request.Context(), userID(c))
	if err != nil {
		h.logger.Error("Failed to list wallets", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list wallets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": addresses})
}

type walletRequest struct {
	Address string `json:"address" binding:"required"`
}

// AddHandler registers a wallet address for the authenticated user.
func (h *WalletHandler) AddHandler(c *gin.Context) {
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	addresses, err := h.wallets.Add(c.Request.Context(), userID(c), req.Address)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidAddress):
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet address"})
		case errors.Is(err, service.ErrWalletExists):
			c.JSON(http.StatusConflict, gin.H{"error": "wallet already registered"})
		case errors.Is(err, service.ErrWalletLimit):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "wallet limit reached"})
		default:
			h.logger.Error("Failed to add wallet", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add wallet"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "wallets": addresses})
}

// RemoveHandler deletes a wallet address from the authenticated user's registry.
func (h *WalletHandler) RemoveHandler(c *gin.Context) {
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "address is required"})
		return
	}

	addresses, err := h.wallets.Remove(c.Request.Context(), userID(c), req.Address)
	if err != nil {
		if errors.Is(err, service.ErrWalletNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "wallet not found"})
			return
		}
		h.logger.Error("Failed to remove wallet", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove wallet"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "wallets": addresses})
}
