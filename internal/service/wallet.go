package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-wallet-registry/internal/domain"
	"github.com/sirosfoundation/go-wallet-registry/internal/storage"
)

// Validation errors surfaced to the HTTP layer as 400s
var (
	ErrAddressRequired = errors.New("wallet address is required")
	ErrInvalidAddress  = errors.New("invalid ethereum address format")
)

// ConnectResult is the outcome of a connect upsert.
type ConnectResult struct {
	Record *domain.WalletRecord
	// Created is true when this was the first connection for the address.
	Created bool
}

// WalletService handles wallet registry operations
type WalletService struct {
	store  storage.Store
	logger *zap.Logger
}

// NewWalletService creates a new WalletService
func NewWalletService(store storage.Store, logger *zap.Logger) *WalletService {
	return &WalletService{
		store:  store,
		logger: logger.Named("wallet-service"),
	}
}

// Connect validates and upserts a wallet connection record.
func (s *WalletService) Connect(ctx context.Context, req *domain.ConnectRequest) (*ConnectResult, error) {
	if req.Address == "" {
		return nil, ErrAddressRequired
	}
	if !domain.ValidAddress(req.Address) {
		return nil, ErrInvalidAddress
	}

	network := req.Network
	if network == "" {
		network = domain.DefaultNetwork
	}

	address := domain.NormalizeAddress(req.Address)
	record, created, err := s.store.Wallets().UpsertConnection(ctx, address, network)
	if err != nil {
		s.logger.Error("Failed to upsert wallet connection",
			zap.String("address", address),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Wallet connection recorded",
		zap.String("address", address),
		zap.String("network", network),
		zap.Int("connection_count", record.ConnectionCount),
		zap.Bool("created", created))

	return &ConnectResult{Record: record, Created: created}, nil
}

// ListActive returns all active wallet records, most recently connected first.
func (s *WalletService) ListActive(ctx context.Context) ([]*domain.WalletRecord, error) {
	records, err := s.store.Wallets().ListActive(ctx)
	if err != nil {
		s.logger.Error("Failed to list wallets", zap.Error(err))
		return nil, err
	}
	return records, nil
}

// GetByAddress retrieves an active wallet record by address.
func (s *WalletService) GetByAddress(ctx context.Context, address string) (*domain.WalletRecord, error) {
	record, err := s.store.Wallets().GetActiveByAddress(ctx, domain.NormalizeAddress(address))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to get wallet",
			zap.String("address", address),
			zap.Error(err))
		return nil, err
	}
	return record, nil
}

// Deactivate soft-deletes a wallet record. Idempotent on already-inactive records.
func (s *WalletService) Deactivate(ctx context.Context, address string) (*domain.WalletRecord, error) {
	normalized := domain.NormalizeAddress(address)
	record, err := s.store.Wallets().Deactivate(ctx, normalized)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		s.logger.Error("Failed to deactivate wallet",
			zap.String("address", normalized),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Wallet deactivated", zap.String("address", normalized))
	return record, nil
}
