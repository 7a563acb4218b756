// internal/infrastructure/database/redis/cart_mirror.go
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/tableorder-backend/internal/domain/cart"
)

const cartKeyPrefix = "cart:session:"

// CartMirror persists one session's cart lines as a JSON blob so an
// abandoned session can be resumed from storage.
type CartMirror struct {
	client    *redis.Client
	sessionID string
	ttl       time.Duration
}

// NewCartMirror creates a cart mirror for a session
func NewCartMirror(client *redis.Client, sessionID string, ttl time.Duration) *CartMirror {
	return &CartMirror{
		client:    client,
		sessionID: sessionID,
		ttl:       ttl,
	}
}

func (m *CartMirror) key() string {
	return cartKeyPrefix + m.sessionID
}

// Load returns the persisted cart lines, or nil when nothing is stored
func (m *CartMirror) Load(ctx context.Context) ([]cart.Line, error) {
	data, err := m.client.Get(ctx, m.key()).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var lines []cart.Line
	if err := json.Unmarshal(data, &lines); err != nil {
		// A corrupt snapshot is treated as an empty cart rather than
		// blocking the session.
		return nil, nil
	}
	return lines, nil
}

// Save overwrites the persisted cart with the given lines
func (m *CartMirror) Save(ctx context.Context, lines []cart.Line) error {
	data, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("failed to marshal cart: %w", err)
	}
	if err := m.client.Set(ctx, m.key(), data, m.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Purge removes the persisted cart
func (m *CartMirror) Purge(ctx context.Context) error {
	if err := m.client.Del(ctx, m.key()).Err(); err != nil {
		return fmt.Errorf("failed to purge cart: %w", err)
	}
	return nil
}

// CartMirrorFactory hands out per-session cart mirrors backed by one client
type CartMirrorFactory struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCartMirrorFactory creates the factory
func NewCartMirrorFactory(client *redis.Client, ttl time.Duration) *CartMirrorFactory {
	return &CartMirrorFactory{client: client, ttl: ttl}
}

// CartMirror returns the mirror for a session
func (f *CartMirrorFactory) CartMirror(sessionID string) cart.Mirror {
	return NewCartMirror(f.client, sessionID, f.ttl)
}
