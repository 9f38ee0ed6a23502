// Package rpcprovider implements the provider interface over a JSON-RPC
// WebSocket connection. It is the Go stand-in for a browser-injected wallet
// provider: account and chain queries are JSON-RPC calls, and the endpoint
// pushes accountsChanged/chainChanged notifications over the same socket.
package rpcprovider

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-wallet-registry/internal/connector/provider"
)

// EIP-1193 user rejection code
const codeUserRejected = 4001

// Provider RPC methods
const (
	methodRequestAccounts = "eth_requestAccounts"
	methodAccounts        = "eth_accounts"
	methodChainID         = "eth_chainId"
)

// Notification methods pushed by the endpoint
const (
	notifyAccountsChanged = "accountsChanged"
	notifyChainChanged    = "chainChanged"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	// Notification fields
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

type pendingCall struct {
	resultCh chan json.RawMessage
	errCh    chan error
}

// Client implements provider.Provider over a WebSocket JSON-RPC endpoint.
type Client struct {
	conn   *websocket.Conn
	logger *zap.Logger

	writeMu sync.Mutex
	nextID  atomic.Int64

	pendingMu sync.Mutex
	pending   map[int64]*pendingCall

	subsMu sync.RWMutex
	subs   map[string]provider.Events

	closeOnce sync.Once
	closed    chan struct{}
}

// Dial connects to a provider endpoint.
func Dial(ctx context.Context, url string, logger *zap.Logger) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial provider: %w", err)
	}

	c := &Client{
		conn:    conn,
		logger:  logger.Named("rpc-provider"),
		pending: make(map[int64]*pendingCall),
		subs:    make(map[string]provider.Events),
		closed:  make(chan struct{}),
	}

	go c.readLoop()
	return c, nil
}

// Close tears down the connection. Pending calls fail with ErrUnavailable.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closed)
		err = c.conn.Close()

		c.pendingMu.Lock()
		for id, call := range c.pending {
			call.errCh <- provider.ErrUnavailable
			delete(c.pending, id)
		}
		c.pendingMu.Unlock()
	})
	return err
}

func (c *Client) readLoop() {
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.closed:
			default:
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Error("Provider read error", zap.Error(err))
				}
				c.Close()
			}
			return
		}

		var msg rpcMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Error("Failed to parse provider message", zap.Error(err))
			continue
		}

		if msg.ID != nil {
			c.dispatchResponse(&msg)
			continue
		}

		if msg.Method != "" {
			c.dispatchNotification(&msg)
		}
	}
}

func (c *Client) dispatchResponse(msg *rpcMessage) {
	c.pendingMu.Lock()
	call, ok := c.pending[*msg.ID]
	if ok {
		delete(c.pending, *msg.ID)
	}
	c.pendingMu.Unlock()

	if !ok {
		c.logger.Debug("Response for unknown call", zap.Int64("id", *msg.ID))
		return
	}

	if msg.Error != nil {
		if msg.Error.Code == codeUserRejected {
			call.errCh <- provider.ErrRejected
			return
		}
		call.errCh <- fmt.Errorf("provider error %d: %s", msg.Error.Code, msg.Error.Message)
		return
	}
	call.resultCh <- msg.Result
}

func (c *Client) dispatchNotification(msg *rpcMessage) {
	switch msg.Method {
	case notifyAccountsChanged:
		var accounts []string
		if err := json.Unmarshal(msg.Params, &accounts); err != nil {
			c.logger.Error("Bad accountsChanged payload", zap.Error(err))
			return
		}
		for _, events := range c.snapshotSubs() {
			if events.AccountsChanged != nil {
				events.AccountsChanged(accounts)
			}
		}
	case notifyChainChanged:
		var chainID string
		if err := json.Unmarshal(msg.Params, &chainID); err != nil {
			// Some endpoints wrap the chain id in an array.
			var params []string
			if err := json.Unmarshal(msg.Params, &params); err != nil || len(params) == 0 {
				c.logger.Error("Bad chainChanged payload")
				return
			}
			chainID = params[0]
		}
		for _, events := range c.snapshotSubs() {
			if events.ChainChanged != nil {
				events.ChainChanged(chainID)
			}
		}
	default:
		c.logger.Debug("Ignoring notification", zap.String("method", msg.Method))
	}
}

func (c *Client) snapshotSubs() []provider.Events {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()

	out := make([]provider.Events, 0, len(c.subs))
	for _, events := range c.subs {
		out = append(out, events)
	}
	return out
}

func (c *Client) call(ctx context.Context, method string) (json.RawMessage, error) {
	select {
	case <-c.closed:
		return nil, provider.ErrUnavailable
	default:
	}

	id := c.nextID.Add(1)
	pending := &pendingCall{
		resultCh: make(chan json.RawMessage, 1),
		errCh:    make(chan error, 1),
	}

	c.pendingMu.Lock()
	c.pending[id] = pending
	c.pendingMu.Unlock()

	defer func() {
		c.pendingMu.Lock()
		delete(c.pending, id)
		c.pendingMu.Unlock()
	}()

	req := rpcRequest{JSONRPC: "2.0", ID: id, Method: method}

	c.writeMu.Lock()
	err := c.conn.WriteJSON(req)
	c.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.closed:
		return nil, provider.ErrUnavailable
	case err := <-pending.errCh:
		return nil, err
	case result := <-pending.resultCh:
		return result, nil
	}
}

func (c *Client) callAccounts(ctx context.Context, method string) ([]string, error) {
	result, err := c.call(ctx, method)
	if err != nil {
		return nil, err
	}

	var accounts []string
	if err := json.Unmarshal(result, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse %s result: %w", method, err)
	}
	return accounts, nil
}

// RequestAccounts asks the endpoint for account access. The call may stay
// outstanding while the user decides; cancel via ctx.
func (c *Client) RequestAccounts(ctx context.Context) ([]string, error) {
	return c.callAccounts(ctx, methodRequestAccounts)
}

// Accounts returns already-authorized accounts without prompting.
func (c *Client) Accounts(ctx context.Context) ([]string, error) {
	return c.callAccounts(ctx, methodAccounts)
}

// ChainID returns the current chain identifier as a hex string.
func (c *Client) ChainID(ctx context.Context) (string, error) {
	result, err := c.call(ctx, methodChainID)
	if err != nil {
		return "", err
	}

	var chainID string
	if err := json.Unmarshal(result, &chainID); err != nil {
		return "", fmt.Errorf("failed to parse chain id: %w", err)
	}
	return chainID, nil
}

// Subscribe registers event callbacks and returns an idempotent
// unsubscribe function.
func (c *Client) Subscribe(events provider.Events) func() {
	id := uuid.New().String()

	c.subsMu.Lock()
	c.subs[id] = events
	c.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subsMu.Lock()
			delete(c.subs, id)
			c.subsMu.Unlock()
		})
	}
}

var _ provider.Provider = (*Client)(nil)
