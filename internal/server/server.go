// Package server assembles the wallet registry HTTP router: common
// middleware, the wallet API routes, the events WebSocket endpoint and the
// fallback handlers for unmatched routes and panics.
package server

import (
	"fmt"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-wallet-registry/internal/api"
	"github.com/sirosfoundation/go-wallet-registry/internal/events"
	"github.com/sirosfoundation/go-wallet-registry/internal/service"
	"github.com/sirosfoundation/go-wallet-registry/pkg/config"
	"github.com/sirosfoundation/go-wallet-registry/pkg/middleware"
)

// NewRouter builds the registry router. The hub may be nil to disable the
// events endpoint.
func NewRouter(cfg *config.Config, services *service.Services, hub *events.Hub, logger *zap.Logger) *gin.Engine {
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Uncaught handler errors map to a generic 500 with the cause attached.
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.Error("Handler panic", zap.Any("error", recovered))
		c.AbortWithStatusJSON(500, gin.H{
			"error":   "Something went wrong!",
			"message": fmt.Sprintf("%v", recovered),
		})
	}))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           time.Duration(cfg.CORS.MaxAge) * time.Second,
	}))

	handlers := api.NewHandlers(services, hub, logger)

	router.GET("/", handlers.Root)
	router.GET("/status", handlers.Status)
	router.GET("/health", handlers.Status)

	wallet := router.Group("/api/wallet")
	{
		wallet.POST("/connect", handlers.ConnectWallet)
		wallet.GET("/addresses", handlers.GetWallets)
		wallet.GET("/address/:address", handlers.GetWalletByAddress)
		wallet.DELETE("/address/:address", handlers.DeactivateWallet)
		wallet.GET("/events", handlers.SubscribeEvents)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"error": "Route not found"})
	})

	return router
}
