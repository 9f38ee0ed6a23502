package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-wallet-registry/internal/domain"
	"github.com/sirosfoundation/go-wallet-registry/internal/events"
	"github.com/sirosfoundation/go-wallet-registry/internal/service"
	"github.com/sirosfoundation/go-wallet-registry/internal/storage"
)

// Handlers aggregates all HTTP handlers
type Handlers struct {
	services *service.Services
	hub      *events.Hub
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance. The hub may be nil, in which
// case no events are published.
func NewHandlers(services *service.Services, hub *events.Hub, logger *zap.Logger) *Handlers {
	return &Handlers{
		services: services,
		hub:      hub,
		logger:   logger.Named("handlers"),
	}
}

// Status handles the /status and /health endpoints
func (h *Handlers) Status(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":  "ok",
		"service": "wallet-registry",
	})
}

// Root handles GET / with a short API index
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "Wallet Registry API is running!",
		"endpoints": gin.H{
			"POST /api/wallet/connect":            "Save wallet address to database",
			"GET /api/wallet/addresses":           "Get all saved wallet addresses",
			"GET /api/wallet/address/:address":    "Get a specific wallet by address",
			"DELETE /api/wallet/address/:address": "Deactivate a wallet (soft delete)",
		},
	})
}

// ConnectWallet handles POST /api/wallet/connect
func (h *Handlers) ConnectWallet(c *gin.Context) {
	var req domain.ConnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, gin.H{
			"success": false,
			"error":   "Wallet address is required",
		})
		return
	}

	result, err := h.services.Wallet.Connect(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAddressRequired):
			c.JSON(400, gin.H{
				"success": false,
				"error":   "Wallet address is required",
			})
		case errors.Is(err, service.ErrInvalidAddress):
			c.JSON(400, gin.H{
				"success": false,
				"error":   "Invalid Ethereum address format",
			})
		default:
			h.logger.Error("Failed to connect wallet", zap.Error(err))
			c.JSON(500, gin.H{
				"success": false,
				"error":   "Failed to connect wallet",
				"message": err.Error(),
			})
		}
		return
	}

	record := result.Record
	if h.hub != nil {
		h.hub.Publish(events.TypeWalletConnected, record)
	}

	if result.Created {
		c.JSON(201, gin.H{
			"success": true,
			"message": "Wallet connected successfully",
			"data": gin.H{
				"address":         record.Address,
				"network":         record.Network,
				"connectionCount": record.ConnectionCount,
				"connectedAt":     record.ConnectedAt,
			},
		})
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"message": "Wallet reconnected successfully",
		"data": gin.H{
			"address":         record.Address,
			"network":         record.Network,
			"connectionCount": record.ConnectionCount,
			"lastConnected":   record.LastConnected,
		},
	})
}

// GetWallets handles GET /api/wallet/addresses
func (h *Handlers) GetWallets(c *gin.Context) {
	records, err := h.services.Wallet.ListActive(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to fetch wallets", zap.Error(err))
		c.JSON(500, gin.H{
			"success": false,
			"error":   "Failed to fetch wallet addresses",
			"message": err.Error(),
		})
		return
	}

	data := make([]gin.H, 0, len(records))
	for _, record := range records {
		data = append(data, gin.H{
			"address":         record.Address,
			"network":         record.Network,
			"connectedAt":     record.ConnectedAt,
			"lastConnected":   record.LastConnected,
			"connectionCount": record.ConnectionCount,
		})
	}

	c.JSON(200, gin.H{
		"success": true,
		"count":   len(data),
		"data":    data,
	})
}

// GetWalletByAddress handles GET /api/wallet/address/:address
func (h *Handlers) GetWalletByAddress(c *gin.Context) {
	address := c.Param("address")

	record, err := h.services.Wallet.GetByAddress(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{
				"success": false,
				"error":   "Wallet not found",
			})
			return
		}
		h.logger.Error("Failed to fetch wallet", zap.Error(err))
		c.JSON(500, gin.H{
			"success": false,
			"error":   "Failed to fetch wallet",
			"message": err.Error(),
		})
		return
	}

	c.JSON(200, gin.H{
		"success": true,
		"data":    record,
	})
}

// DeactivateWallet handles DELETE /api/wallet/address/:address
func (h *Handlers) DeactivateWallet(c *gin.Context) {
	address := c.Param("address")

	record, err := h.services.Wallet.Deactivate(c.Request.Context(), address)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, gin.H{
				"success": false,
				"error":   "Wallet not found",
			})
			return
		}
		h.logger.Error("Failed to deactivate wallet", zap.Error(err))
		c.JSON(500, gin.H{
			"success": false,
			"error":   "Failed to deactivate wallet",
			"message": err.Error(),
		})
		return
	}

	if h.hub != nil {
		h.hub.Publish(events.TypeWalletDeactivated, record)
	}

	c.JSON(200, gin.H{
		"success": true,
		"message": "Wallet deactivated successfully",
		"data": gin.H{
			"address":  record.Address,
			"isActive": record.IsActive,
		},
	})
}

// SubscribeEvents handles GET /api/wallet/events (WebSocket)
func (h *Handlers) SubscribeEvents(c *gin.Context) {
	if h.hub == nil {
		c.JSON(503, gin.H{
			"success": false,
			"error":   "Events not available",
		})
		return
	}
	h.hub.HandleSubscribe(c.Writer, c.Request)
}
