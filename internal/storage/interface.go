package storage

import (
	"context"
	"errors"

	"github.com/sirosfoundation/go-wallet-registry/internal/domain"
)

// Common errors
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDatabase      = errors.New("database error")
)

// WalletStore defines the interface for wallet record storage operations.
// Addresses passed in are expected to be lowercase-normalized by the caller.
type WalletStore interface {
	// UpsertConnection records a connection for the given address.
	// If a record exists (active or not) it increments the connection
	// count, refreshes last_connected, overwrites the network and forces
	// is_active=true. Otherwise it creates a fresh record with count 1.
	// The returned flag reports whether a new record was created.
	UpsertConnection(ctx context.Context, address, network string) (*domain.WalletRecord, bool, error)

	// ListActive returns all active records sorted by last_connected descending.
	ListActive(ctx context.Context) ([]*domain.WalletRecord, error)

	// GetActiveByAddress retrieves an active record by address.
	GetActiveByAddress(ctx context.Context, address string) (*domain.WalletRecord, error)

	// Deactivate soft-deletes a record regardless of its current state.
	// Returns ErrNotFound if no record exists for the address at all.
	Deactivate(ctx context.Context, address string) (*domain.WalletRecord, error)
}

// Store aggregates storage interfaces with lifecycle management
type Store interface {
	Wallets() WalletStore

	// Close closes the storage connection
	Close() error

	// Ping checks if the storage is alive
	Ping(ctx context.Context) error
}
