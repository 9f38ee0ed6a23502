package service

import (
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-wallet-registry/internal/storage"
)

// Services aggregates all application services
type Services struct {
	Wallet *WalletService
}

// NewServices creates a new Services instance
func NewServices(store storage.Store, logger *zap.Logger) *Services {
	return &Services{
		Wallet: NewWalletService(store, logger),
	}
}
