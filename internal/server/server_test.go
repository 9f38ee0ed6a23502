package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/sirosfoundation/go-wallet-registry/internal/events"
	"github.com/sirosfoundation/go-wallet-registry/internal/service"
	"github.com/sirosfoundation/go-wallet-registry/internal/storage/memory"
	"github.com/sirosfoundation/go-wallet-registry/pkg/config"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}

	store := memory.NewStore()
	services := service.NewServices(store, logger)
	hub := events.NewHub(logger)
	return NewRouter(cfg, services, hub, logger)
}

func TestRouter_UnmatchedRoute(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/no/such/route", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["error"] != "Route not found" {
		t.Errorf("Unexpected error body: %v", response["error"])
	}
}

func TestRouter_Root(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}

	var response map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if response["message"] != "Wallet Registry API is running!" {
		t.Errorf("Unexpected banner: %v", response["message"])
	}
}

func TestRouter_HealthAndConnect(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("health: expected %d, got %d", http.StatusOK, w.Code)
	}

	body := `{"address":"0xabcdef0000000000000000000000000000000001","network":"Ethereum Mainnet"}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/wallet/connect", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Errorf("connect: expected %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
}
