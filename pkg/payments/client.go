// Package payments is a client for the card/mobile-money payment provider.
package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrDeclined is returned when the provider refuses a charge
var ErrDeclined = errors.New("payment declined")

// Client represents a payment provider client
type Client struct {
	BaseURL string
	APIKey  string
	MockAPI bool
	client  *http.Client
}

// ChargeRequest describes a single charge
type ChargeRequest struct {
	Reference   string  `json:"reference"`
	CustomerID  string  `json:"customerId"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	Description string  `json:"description"`
}

// ChargeResponse represents the provider's answer to a charge
type ChargeResponse struct {
	Reference     string    `json:"reference"`
	TransactionID string    `json:"transactionId"`
	Status        string    `json:"status"`
	Date          time.Time `json:"date"`
}

// NewClient creates a new payments client
func NewClient(baseURL, apiKey string, mockAPI bool) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		MockAPI: mockAPI,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Charge charges the customer
func (c *Client) Charge(ctx context.Context, req ChargeRequest) (*ChargeResponse, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrDeclined)
	}
	if c.MockAPI {
		return c.mockCharge(req), nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/charges", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	httpReq.Header.Set("Idempotency-Key", req.Reference)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	switch {
	case resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: %s", ErrDeclined, string(respBody))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var charge ChargeResponse
	if err := json.Unmarshal(respBody, &charge); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if charge.Status != "SUCCESS" {
		return nil, fmt.Errorf("%w: status %s", ErrDeclined, charge.Status)
	}
	return &charge, nil
}

// mockCharge approves every valid charge
func (c *Client) mockCharge(req ChargeRequest) *ChargeResponse {
	return &ChargeResponse{
		Reference:     req.Reference,
		TransactionID: "TXN-" + uuid.NewString(),
		Status:        "SUCCESS",
		Date:          time.Now(),
	}
}
