// Package provider defines the capability surface of an injected wallet
// provider. The connector only depends on this interface, so tests and
// alternative transports can substitute their own implementations.
package provider

import (
	"context"
	"errors"
)

var (
	// ErrRejected is returned when the user rejects an account request
	// in the provider's own UI.
	ErrRejected = errors.New("user rejected the request")
	// ErrUnavailable is returned when the provider connection is gone.
	ErrUnavailable = errors.New("provider unavailable")
)

// Events carries the callbacks a subscriber registers for provider-emitted
// events. Nil callbacks are ignored.
type Events struct {
	// AccountsChanged fires when the authorized account list changes.
	// An empty list means the user disconnected the wallet.
	AccountsChanged func(accounts []string)
	// ChainChanged fires when the provider switches networks.
	ChainChanged func(chainID string)
}

// Provider is the injected wallet provider capability surface.
type Provider interface {
	// RequestAccounts asks the provider for account access. This may
	// suspend while the user approves or rejects in the provider's UI.
	RequestAccounts(ctx context.Context) ([]string, error)

	// Accounts returns the already-authorized accounts without prompting.
	Accounts(ctx context.Context) ([]string, error)

	// ChainID returns the current chain identifier as a hex string.
	ChainID(ctx context.Context) (string, error)

	// Subscribe registers event callbacks and returns an unsubscribe
	// function. Unsubscribing is idempotent.
	Subscribe(events Events) (unsubscribe func())
}
