// Package registry provides the connector's HTTP client for the wallet
// registry service.
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Client reports wallet connections to the registry.
type Client struct {
	baseURL    string
	logger     *zap.Logger
	httpClient *http.Client
}

// NewClient creates a new registry client.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		logger:  logger.Named("registry-client"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// connectResponse is the subset of the registry's connect envelope the
// client cares about.
type connectResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ReportConnection posts a (address, network) pair to the registry.
// Callers treat failures as bookkeeping losses, not connect failures.
func (c *Client) ReportConnection(ctx context.Context, address, network string) error {
	body, err := json.Marshal(map[string]string{
		"address": address,
		"network": network,
	})
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	reqURL := c.baseURL + "/api/wallet/connect"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach registry: %w", err)
	}
	defer resp.Body.Close()

	var parsed connectResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("failed to parse registry response: %w", err)
	}

	if !parsed.Success {
		return fmt.Errorf("registry rejected report (status %d): %s", resp.StatusCode, parsed.Error)
	}

	c.logger.Debug("Wallet reported to registry",
		zap.String("address", address),
		zap.String("network", network),
		zap.String("message", parsed.Message))
	return nil
}
