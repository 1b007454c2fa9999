// Package gateway delivers notifications to external channels.
package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/jwt"
	"github.com/google/uuid"
)

// Gateway names
const (
	Push    = "PUSH"
	Webhook = "WEBHOOK"
	Mock    = "MOCK"
)

// Message is the payload handed to a gateway
type Message struct {
	UserID  string            `json:"userId"`
	Title   string            `json:"title"`
	Body    string            `json:"body"`
	Type    string            `json:"type"`
	Data    map[string]string `json:"data,omitempty"`
	Created time.Time         `json:"createdAt"`
}

// Gateway represents a notification delivery channel
type Gateway interface {
	Name() string
	Send(ctx context.Context, msg Message) (string, error)
}

// PushGateway posts messages to a push relay authenticated with a signed service token
type PushGateway struct {
	BaseURL    string
	tokens     *jwt.TokenService
	httpClient *http.Client
}

// NewPushGateway creates a new PushGateway
func NewPushGateway(baseURL string, tokens *jwt.TokenService) *PushGateway {
	return &PushGateway{
		BaseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the gateway name
func (g *PushGateway) Name() string { return Push }

// Send delivers a message through the push relay
func (g *PushGateway) Send(ctx context.Context, msg Message) (string, error) {
	token, err := g.tokens.Sign("notifications", "service")
	if err != nil {
		return "", fmt.Errorf("failed to get push token: %w", err)
	}
	headers := map[string]string{"Authorization": "Bearer " + token}
	return postJSON(ctx, g.httpClient, g.BaseURL+"/push", msg, headers)
}

// WebhookGateway posts messages to a webhook, signing the body with HMAC-SHA256
type WebhookGateway struct {
	URL        string
	secret     []byte
	httpClient *http.Client
}

// NewWebhookGateway creates a new WebhookGateway
func NewWebhookGateway(url, secret string) *WebhookGateway {
	return &WebhookGateway{
		URL:        url,
		secret:     []byte(secret),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Name returns the gateway name
func (g *WebhookGateway) Name() string { return Webhook }

// Send delivers a message to the webhook
func (g *WebhookGateway) Send(ctx context.Context, msg Message) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}
	mac := hmac.New(sha256.New, g.secret)
	mac.Write(body)
	headers := map[string]string{"X-Signature": hex.EncodeToString(mac.Sum(nil))}
	return post(ctx, g.httpClient, g.URL, body, headers)
}

// MockGateway records messages instead of delivering them
type MockGateway struct {
	Fail bool

	mu   sync.Mutex
	sent []Message
}

// NewMockGateway creates a new MockGateway
func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

// Name returns the gateway name
func (g *MockGateway) Name() string { return Mock }

// Send records the message and returns a generated message ID
func (g *MockGateway) Send(_ context.Context, msg Message) (string, error) {
	if g.Fail {
		return "", errors.New("mock gateway failure")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, msg)
	return "MOCK-" + uuid.NewString(), nil
}

// Sent returns the recorded messages
func (g *MockGateway) Sent() []Message {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Message(nil), g.sent...)
}

func postJSON(ctx context.Context, client *http.Client, url string, payload interface{}, headers map[string]string) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return post(ctx, client, url, body, headers)
}

func post(ctx context.Context, client *http.Client, url string, body []byte, headers map[string]string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	var response struct {
		MessageID string `json:"messageId"`
	}
	if len(respBody) > 0 {
		if err := json.Unmarshal(respBody, &response); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return response.MessageID, nil
}
