// Package connector implements the client side of the wallet registry:
// provider detection, the connect/disconnect lifecycle, provider event
// handling, silent reconnection and best-effort connection reporting.
package connector

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-wallet-registry/internal/connector/flagstore"
	"github.com/sirosfoundation/go-wallet-registry/internal/connector/provider"
	"github.com/sirosfoundation/go-wallet-registry/internal/domain"
)

// User-facing error messages
const (
	msgNotInstalled  = "MetaMask is not installed. Please install MetaMask extension."
	msgConnectFailed = "Failed to connect to MetaMask. Please try again."
)

// Reporter reports a successful connection to the wallet registry.
type Reporter interface {
	ReportConnection(ctx context.Context, address, network string) error
}

// State is a snapshot of the connector's session state.
type State struct {
	Account     string
	Connected   bool
	NetworkName string
	Err         string
}

// Connector drives the wallet connection lifecycle against an injected
// provider. All exported methods are safe for concurrent use; overlapping
// Connect calls are not serialized and the last state write wins.
type Connector struct {
	sessionID string
	provider  provider.Provider // nil when no provider is installed
	reporter  Reporter          // nil disables reporting
	flags     flagstore.Store
	reload    func() // invoked on chainChanged
	logger    *zap.Logger

	reportTimeout time.Duration

	mu          sync.Mutex
	account     string
	connected   bool
	networkName string
	lastError   string
	unsubscribe func()
}

// Option configures a Connector.
type Option func(*Connector)

// WithReporter sets the registry reporter.
func WithReporter(r Reporter) Option {
	return func(c *Connector) { c.reporter = r }
}

// WithReloadHook sets the hook invoked when the provider switches chains.
// The browser equivalent reloads the page; hosts decide what that means here.
func WithReloadHook(reload func()) Option {
	return func(c *Connector) { c.reload = reload }
}

// WithReportTimeout bounds the detached registry report.
func WithReportTimeout(d time.Duration) Option {
	return func(c *Connector) { c.reportTimeout = d }
}

// New creates a Connector. A nil provider models the not-installed case.
func New(p provider.Provider, flags flagstore.Store, logger *zap.Logger, opts ...Option) *Connector {
	c := &Connector{
		sessionID:     uuid.New().String(),
		provider:      p,
		flags:         flags,
		logger:        logger.Named("connector"),
		networkName:   domain.DefaultNetwork,
		reportTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ProviderAvailable reports whether a wallet provider is installed.
func (c *Connector) ProviderAvailable() bool {
	return c.provider != nil
}

// State returns a snapshot of the current session state.
func (c *Connector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Account:     c.account,
		Connected:   c.connected,
		NetworkName: c.networkName,
		Err:         c.lastError,
	}
}

func (c *Connector) setError(msg string) {
	c.mu.Lock()
	c.lastError = msg
	c.mu.Unlock()
}

// Start performs silent reconnection when a previous session left the
// connected marker behind, then subscribes to provider events. Stop must
// be called to tear the subscription down.
func (c *Connector) Start(ctx context.Context) {
	if c.provider == nil {
		// Install-prompt state: nothing to subscribe to.
		return
	}

	if c.flags.IsSet() {
		accounts, err := c.provider.Accounts(ctx)
		if err != nil {
			c.logger.Warn("Silent reconnect failed", zap.Error(err))
		} else if len(accounts) > 0 {
			c.establishSession(ctx, accounts[0])
			c.logger.Info("Silently reconnected",
				zap.String("session_id", c.sessionID),
				zap.String("account", domain.ShortAddress(accounts[0])))
		}
	}

	unsubscribe := c.provider.Subscribe(provider.Events{
		AccountsChanged: c.handleAccountsChanged,
		ChainChanged:    c.handleChainChanged,
	})

	c.mu.Lock()
	c.unsubscribe = unsubscribe
	c.mu.Unlock()
}

// Stop unsubscribes from provider events. Safe to call more than once.
func (c *Connector) Stop() {
	c.mu.Lock()
	unsubscribe := c.unsubscribe
	c.unsubscribe = nil
	c.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}

// Connect runs the user-triggered connect flow.
func (c *Connector) Connect(ctx context.Context) {
	c.setError("")

	if c.provider == nil {
		c.setError(msgNotInstalled)
		return
	}

	accounts, err := c.provider.RequestAccounts(ctx)
	if err != nil {
		c.logger.Warn("Account request failed", zap.Error(err))
		c.setError(msgConnectFailed)
		return
	}
	if len(accounts) == 0 {
		return
	}

	c.establishSession(ctx, accounts[0])
	c.logger.Info("Wallet connected",
		zap.String("session_id", c.sessionID),
		zap.String("account", domain.ShortAddress(accounts[0])))
}

// Disconnect clears the session state and the persisted marker. The
// registry is deliberately not notified.
func (c *Connector) Disconnect() {
	c.mu.Lock()
	c.account = ""
	c.connected = false
	c.lastError = ""
	c.mu.Unlock()

	if err := c.flags.Clear(); err != nil {
		c.logger.Warn("Failed to clear connected marker", zap.Error(err))
	}

	c.logger.Info("Wallet disconnected", zap.String("session_id", c.sessionID))
}

// establishSession records the active account, persists the reconnect
// marker, resolves the network and kicks off the registry report.
func (c *Connector) establishSession(ctx context.Context, account string) {
	c.mu.Lock()
	c.account = account
	c.connected = true
	c.mu.Unlock()

	if err := c.flags.Set(); err != nil {
		c.logger.Warn("Failed to persist connected marker", zap.Error(err))
	}

	network := c.resolveNetwork(ctx)

	c.mu.Lock()
	c.networkName = network
	c.mu.Unlock()

	c.reportConnection(account, network)
}

// resolveNetwork maps the provider's chain ID to a display name.
// Any failure yields the default "Unknown".
func (c *Connector) resolveNetwork(ctx context.Context) string {
	chainID, err := c.provider.ChainID(ctx)
	if err != nil {
		c.logger.Warn("Failed to query chain id", zap.Error(err))
		return domain.DefaultNetwork
	}
	return domain.NetworkName(chainID)
}

// reportConnection sends the registry report as a detached task. Failures
// are only observable in the log; the session is connected regardless.
func (c *Connector) reportConnection(account, network string) {
	if c.reporter == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.reportTimeout)
		defer cancel()

		if err := c.reporter.ReportConnection(ctx, account, network); err != nil {
			c.logger.Error("Failed to save wallet to registry", zap.Error(err))
			return
		}
		c.logger.Info("Wallet saved to registry",
			zap.String("account", domain.ShortAddress(account)),
			zap.String("network", network))
	}()
}

// handleAccountsChanged reacts to the provider's account list changing.
func (c *Connector) handleAccountsChanged(accounts []string) {
	if len(accounts) == 0 {
		// User disconnected their wallet from the provider side.
		c.Disconnect()
		return
	}

	c.mu.Lock()
	switched := accounts[0] != c.account
	if switched {
		c.account = accounts[0]
	}
	c.mu.Unlock()

	if switched {
		c.logger.Info("Active account switched",
			zap.String("account", domain.ShortAddress(accounts[0])))
	}
}

// handleChainChanged follows the provider's guidance for chain switches:
// reload the hosting surface rather than patching chain-specific state.
func (c *Connector) handleChainChanged(chainID string) {
	c.logger.Info("Chain changed", zap.String("chain_id", chainID))
	if c.reload != nil {
		c.reload()
	}
}
