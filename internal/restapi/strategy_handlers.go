package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parch0n/Isaura/internal/service"
)

// StrategyHandler handles the yield strategy endpoints.
type StrategyHandler struct {
	strategies service.StrategyService
	wallets    service.WalletService
	logger     *zap.Logger
}

// NewStrategyHandler creates a new instance of StrategyHandler.
func NewStrategyHandler(strategies service.StrategyService, wallets service.WalletService, logger *zap.Logger) *StrategyHandler {
	return &StrategyHandler{
		strategies: strategies,
		wallets:    wallets,
		logger:     logger.Named("StrategyHandler"),
	}
}

// GetStrategiesHandler returns per-wallet and combined yield strategies for
// the authenticated user.
func (h *StrategyHandler) GetStrategiesHandler(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	addresses, err := h.wallets.List(ctx, uid)
	if err != nil {
		h.logger.Error("Failed to list wallets", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet list"})
		return
	}

	result, err := h.strategies.GetStrategies(ctx, uid, addresses)
	if err != nil {
		h.logger.Error("Failed to load strategies", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load strategies"})
		return
	}

	c.JSON(http.StatusOK, result)
}
