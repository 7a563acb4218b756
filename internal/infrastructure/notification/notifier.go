// internal/infrastructure/notification/notifier.go
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/your-org/tableorder-backend/internal/config"
	"github.com/your-org/tableorder-backend/internal/domain/order"
)

// WebhookNotifier announces created orders to an optional webhook, e.g. a
// kitchen display or a chat channel. Delivery is fire-and-forget: a failed
// webhook is logged and never affects the order itself.
type WebhookNotifier struct {
	url  string
	http *http.Client
	log  *logrus.Logger
}

// NewWebhookNotifier creates a webhook notifier. An empty URL disables it.
func NewWebhookNotifier(cfg config.NotificationConfig, log *logrus.Logger) *WebhookNotifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookNotifier{
		url:  cfg.WebhookURL,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

type orderCreatedEvent struct {
	Event       string `json:"event"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Status      string `json:"status"`
	Total       int64  `json:"total"`
	OccurredAt  string `json:"occurred_at"`
}

// OrderCreated delivers the event in the background
func (n *WebhookNotifier) OrderCreated(o *order.Order) {
	if n.url == "" {
		return
	}

	event := orderCreatedEvent{
		Event:       "order.created",
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		Total:       o.Total,
		OccurredAt:  time.Now().UTC().Format(time.RFC3339),
	}

	go n.deliver(event)
}

func (n *WebhookNotifier) deliver(event orderCreatedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		n.log.WithError(err).Error("Failed to marshal order notification")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.http.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(payload))
	if err != nil {
		n.log.WithError(err).Error("Failed to build order notification request")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		n.log.WithError(err).WithField("order_id", event.OrderID).Warn("Order notification delivery failed")
		return
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		n.log.WithFields(logrus.Fields{
			"order_id": event.OrderID,
			"status":   resp.StatusCode,
		}).Warn("Order notification rejected by webhook")
	}
}
