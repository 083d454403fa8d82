// internal/notify/client.go

// Package notify relays outbound email and letter notifications to the
// third-party notification provider. The client is a thin JSON-over-HTTP
// wrapper; payload construction beyond the envelope below belongs to the
// provider's templates.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"acspmembers/internal/observability/logging"
	"acspmembers/internal/observability/metrics"
)

// Notification kinds accepted by the provider
const (
	KindEmail  = "email"
	KindLetter = "letter"
)

// DefaultTimeout bounds a single provider call.
const DefaultTimeout = 10 * time.Second

// EmailRequest is the envelope for an outbound email.
type EmailRequest struct {
	Recipient       string            `json:"email_address"`
	TemplateID      string            `json:"template_id"`
	Personalisation map[string]string `json:"personalisation,omitempty"`
	Reference       string            `json:"reference,omitempty"`
}

// LetterRequest is the envelope for an outbound letter.
type LetterRequest struct {
	AddressLines    []string          `json:"address_lines"`
	TemplateID      string            `json:"template_id"`
	Personalisation map[string]string `json:"personalisation,omitempty"`
	Reference       string            `json:"reference,omitempty"`
}

// SendResult is the provider's acknowledgement.
type SendResult struct {
	ID string `json:"id"`
}

// Config holds notification client configuration
type Config struct {
	// BaseURL is the provider endpoint
	BaseURL string

	// APIKey authenticates this service to the provider
	APIKey string

	// Timeout bounds a single provider call
	Timeout time.Duration
}

// Client sends notifications through the provider.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *logging.Logger
	metrics    *metrics.Collector
}

// New creates a notification client.
func New(cfg Config, logger *logging.Logger, collector *metrics.Collector) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("notification provider URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("notification provider API key is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.WithModule("notify"),
		metrics:    collector,
	}, nil
}

// SendEmail relays an email notification to the provider.
func (c *Client) SendEmail(ctx context.Context, req EmailRequest) (*SendResult, error) {
	if req.Recipient == "" {
		return nil, fmt.Errorf("email recipient is required")
	}
	if req.TemplateID == "" {
		return nil, fmt.Errorf("email template ID is required")
	}
	return c.post(ctx, KindEmail, "/v2/notifications/email", req)
}

// SendLetter relays a letter notification to the provider.
func (c *Client) SendLetter(ctx context.Context, req LetterRequest) (*SendResult, error) {
	if len(req.AddressLines) == 0 {
		return nil, fmt.Errorf("letter address is required")
	}
	if req.TemplateID == "" {
		return nil, fmt.Errorf("letter template ID is required")
	}
	return c.post(ctx, KindLetter, "/v2/notifications/letter", req)
}

func (c *Client) post(ctx context.Context, kind, path string, payload any) (*SendResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", kind, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.RecordNotification(kind, false)
		return nil, fmt.Errorf("provider call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordNotification(kind, false)
		c.logger.Error("Provider rejected notification",
			"kind", kind,
			"status", resp.StatusCode,
		)
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	var result SendResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		c.metrics.RecordNotification(kind, false)
		return nil, fmt.Errorf("failed to decode provider response: %w", err)
	}

	c.metrics.RecordNotification(kind, true)
	c.logger.Debug("Notification relayed", "kind", kind, "provider_id", result.ID)
	return &result, nil
}
