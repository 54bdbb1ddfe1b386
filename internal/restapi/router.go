package restapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parch0n/Isaura/internal/service"
)

// Handlers bundles the API handlers registered on the router.
type Handlers struct {
	Auth      *AuthHandler
	Wallet    *WalletHandler
	Portfolio *PortfolioHandler
	Strategy  *StrategyHandler
}

// RegisterRoutes wires the API routes onto the router. Cross-cutting
// middleware (CORS, logging, recovery) is attached by the caller.
func RegisterRoutes(router *gin.Engine, h Handlers, auth service.AuthService) {
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Auth.LoginHandler)
		authGroup.POST("/verify", h.Auth.VerifyHandler)
		authGroup.POST("/wallet", h.Auth.WalletNonceHandler)
		authGroup.POST("/wallet/verify", h.Auth.WalletVerifyHandler)
		authGroup.POST("/logout", h.Auth.LogoutHandler)
	}

	user := api.Group("/user", AuthRequired(auth))
	{
		user.GET("/wallets", h.Wallet.ListHandler)
		user.POST("/wallets/add", h.Wallet.AddHandler)
		user.POST("/wallets/remove", h.Wallet.RemoveHandler)

		user.GET("/portfolio", h.Portfolio.GetPortfolioHandler)
		user.GET("/portfolio/allocation", h.Portfolio.GetAllocationHandler)

		user.GET("/strategies", h.Strategy.GetStrategiesHandler)
	}
}
