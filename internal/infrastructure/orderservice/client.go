// internal/infrastructure/orderservice/client.go
package orderservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/tableorder-backend/internal/config"
	"github.com/your-org/tableorder-backend/internal/domain/order"
)

// Client submits orders to the remote order service over HTTP. It implements
// order.Service and classifies every failure so the submission guard and the
// HTTP layer can react precisely.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	log     *logrus.Logger
}

// NewClient creates an order service client
func NewClient(cfg config.OrderServiceConfig, log *logrus.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// errorResponse is the order service's failure body. A duplicate-request
// rejection carries _duplicateRequest plus a retry hint in seconds.
type errorResponse struct {
	Message           string `json:"message"`
	Error             string `json:"error"`
	DuplicateRequest  bool   `json:"_duplicateRequest"`
	RetryAfterSeconds int    `json:"retryAfterSeconds"`
}

// CreateOrder posts the draft and returns the created order. The draft's
// fingerprint doubles as the idempotency key so a retried request cannot
// create a second order server-side.
func (c *Client) CreateOrder(ctx context.Context, draft *order.Draft) (*order.Order, error) {
	payload, err := json.Marshal(draft)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", order.Fingerprint(draft))
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &order.TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, &order.TransportError{Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode >= 400 {
		return nil, c.classifyFailure(resp.StatusCode, body)
	}

	var created order.Order
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		// A 2xx with no parseable order means we cannot know whether the
		// order exists; treat it like a transport failure.
		return nil, &order.TransportError{Err: fmt.Errorf("unusable response body (status %d)", resp.StatusCode)}
	}
	return &created, nil
}

func (c *Client) classifyFailure(status int, body []byte) error {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.DuplicateRequest {
		retryAfter := time.Duration(er.RetryAfterSeconds) * time.Second
		if retryAfter <= 0 {
			retryAfter = 5 * time.Second
		}
		c.log.WithField("retry_after", retryAfter).Warn("Order service rejected duplicate request")
		return &order.RateLimitedError{RetryAfter: retryAfter}
	}

	message := er.Message
	if message == "" {
		message = er.Error
	}
	if message == "" {
		message = http.StatusText(status)
	}
	return &order.ServerError{StatusCode: status, Message: message}
}
