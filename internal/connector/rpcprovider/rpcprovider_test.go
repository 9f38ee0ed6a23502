package rpcprovider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sirosfoundation/go-wallet-registry/internal/connector/provider"
)

// fakeEndpoint is a scriptable JSON-RPC WebSocket endpoint.
type fakeEndpoint struct {
	t        *testing.T
	server   *httptest.Server
	upgrader websocket.Upgrader

	accounts   []string
	chainID    string
	rejectWith *rpcError

	connCh chan *websocket.Conn
}

func newFakeEndpoint(t *testing.T) *fakeEndpoint {
	e := &fakeEndpoint{
		t:        t,
		accounts: []string{"0xabcdef0000000000000000000000000000000001"},
		chainID:  "0x1",
		connCh:   make(chan *websocket.Conn, 1),
	}
	e.server = httptest.NewServer(http.HandlerFunc(e.handle))
	t.Cleanup(e.server.Close)
	return e
}

func (e *fakeEndpoint) url() string {
	return "ws" + strings.TrimPrefix(e.server.URL, "http")
}

func (e *fakeEndpoint) handle(w http.ResponseWriter, r *http.Request) {
	conn, err := e.upgrader.Upgrade(w, r, nil)
	if err != nil {
		e.t.Errorf("upgrade failed: %v", err)
		return
	}
	e.connCh <- conn

	for {
		var req rpcRequest
		if err := conn.ReadJSON(&req); err != nil {
			return
		}

		resp := rpcMessage{JSONRPC: "2.0", ID: &req.ID}
		if e.rejectWith != nil {
			resp.Error = e.rejectWith
		} else {
			switch req.Method {
			case methodRequestAccounts, methodAccounts:
				resp.Result, _ = json.Marshal(e.accounts)
			case methodChainID:
				resp.Result, _ = json.Marshal(e.chainID)
			default:
				resp.Error = &rpcError{Code: -32601, Message: "method not found"}
			}
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

// notify pushes a notification to the connected client.
func (e *fakeEndpoint) notify(method string, params any) {
	select {
	case conn := <-e.connCh:
		raw, err := json.Marshal(params)
		require.NoError(e.t, err)
		require.NoError(e.t, conn.WriteJSON(rpcMessage{
			JSONRPC: "2.0",
			Method:  method,
			Params:  raw,
		}))
		e.connCh <- conn
	case <-time.After(2 * time.Second):
		e.t.Fatal("no client connection to notify")
	}
}

func dialTestClient(t *testing.T, e *fakeEndpoint) *Client {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Dial(ctx, e.url(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client
}

func TestClient_RequestAccounts(t *testing.T) {
	e := newFakeEndpoint(t)
	client := dialTestClient(t, e)

	accounts, err := client.RequestAccounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"0xabcdef0000000000000000000000000000000001"}, accounts)
}

func TestClient_Accounts(t *testing.T) {
	e := newFakeEndpoint(t)
	e.accounts = []string{}
	client := dialTestClient(t, e)

	accounts, err := client.Accounts(context.Background())
	require.NoError(t, err)
	assert.Empty(t, accounts)
}

func TestClient_ChainID(t *testing.T) {
	e := newFakeEndpoint(t)
	e.chainID = "0xa4b1"
	client := dialTestClient(t, e)

	chainID, err := client.ChainID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0xa4b1", chainID)
}

func TestClient_UserRejection(t *testing.T) {
	e := newFakeEndpoint(t)
	e.rejectWith = &rpcError{Code: codeUserRejected, Message: "User rejected the request."}
	client := dialTestClient(t, e)

	_, err := client.RequestAccounts(context.Background())
	assert.ErrorIs(t, err, provider.ErrRejected)
}

func TestClient_ProviderError(t *testing.T) {
	e := newFakeEndpoint(t)
	e.rejectWith = &rpcError{Code: -32000, Message: "internal"}
	client := dialTestClient(t, e)

	_, err := client.RequestAccounts(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, provider.ErrRejected)
}

func TestClient_Notifications(t *testing.T) {
	e := newFakeEndpoint(t)
	client := dialTestClient(t, e)

	// A call first, so the endpoint has registered the connection.
	_, err := client.ChainID(context.Background())
	require.NoError(t, err)

	accountsCh := make(chan []string, 1)
	chainCh := make(chan string, 1)
	unsubscribe := client.Subscribe(provider.Events{
		AccountsChanged: func(accounts []string) { accountsCh <- accounts },
		ChainChanged:    func(chainID string) { chainCh <- chainID },
	})
	defer unsubscribe()

	e.notify(notifyAccountsChanged, []string{"0x0000000000000000000000000000000000000002"})
	select {
	case accounts := <-accountsCh:
		assert.Equal(t, []string{"0x0000000000000000000000000000000000000002"}, accounts)
	case <-time.After(2 * time.Second):
		t.Fatal("accountsChanged not delivered")
	}

	e.notify(notifyChainChanged, "0x89")
	select {
	case chainID := <-chainCh:
		assert.Equal(t, "0x89", chainID)
	case <-time.After(2 * time.Second):
		t.Fatal("chainChanged not delivered")
	}
}

func TestClient_UnsubscribeStopsDelivery(t *testing.T) {
	e := newFakeEndpoint(t)
	client := dialTestClient(t, e)

	_, err := client.ChainID(context.Background())
	require.NoError(t, err)

	accountsCh := make(chan []string, 1)
	unsubscribe := client.Subscribe(provider.Events{
		AccountsChanged: func(accounts []string) { accountsCh <- accounts },
	})
	unsubscribe()
	unsubscribe() // idempotent

	e.notify(notifyAccountsChanged, []string{})
	select {
	case <-accountsCh:
		t.Fatal("event delivered after unsubscribe")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestClient_CallAfterClose(t *testing.T) {
	e := newFakeEndpoint(t)
	client := dialTestClient(t, e)

	require.NoError(t, client.Close())

	_, err := client.ChainID(context.Background())
	assert.ErrorIs(t, err, provider.ErrUnavailable)
}
