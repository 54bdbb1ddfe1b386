package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/parch0n/Isaura/internal/service"
)

// PortfolioHandler handles the aggregated portfolio endpoints.
type PortfolioHandler struct {
	portfolio service.PortfolioService
	wallets   service.WalletService
	logger    *zap.Logger
}

// NewPortfolioHandler creates a new instance of PortfolioHandler.
func NewPortfolioHandler(portfolio service.PortfolioService, wallets service.WalletService, logger *zap.Logger) *PortfolioHandler {
	return &PortfolioHandler{
		portfolio: portfolio,
		wallets:   wallets,
		logger:    logger.Named("PortfolioHandler"),
	}
}

// GetPortfolioHandler returns the aggregated token balances across the
// authenticated user's wallets.
func (h *PortfolioHandler) GetPortfolioHandler(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	addresses, err := h.wallets.List(ctx, uid)
	if err != nil {
		h.logger.Error("Failed to list wallets", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet list"})
		return
	}

	snapshot, err := h.portfolio.GetPortfolio(ctx, uid, addresses)
	if err != nil {
		h.logger.Error("Failed to build portfolio", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build portfolio"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// GetAllocationHandler returns the chart-ready allocation breakdown.
func (h *PortfolioHandler) GetAllocationHandler(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)

	addresses, err := h.wallets.List(ctx, uid)
	if err != nil {
		h.logger.Error("Failed to list wallets", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load wallet list"})
		return
	}

	allocation, err := h.portfolio.GetAllocation(ctx, uid, addresses)
	if err != nil {
		h.logger.Error("Failed to build allocation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build allocation"})
		return
	}

	c.JSON(http.StatusOK, allocation)
}
