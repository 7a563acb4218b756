// internal/infrastructure/database/redis/fingerprint_store.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/your-org/tableorder-backend/internal/domain/order"
)

const (
	fingerprintKeyPrefix   = "order:fingerprint:"
	fingerprintAtKeyPrefix = "order:fingerprint_at:"

	// Fingerprints only matter within the duplicate-content window, but a
	// generous TTL keeps them inspectable while debugging.
	fingerprintTTL = 5 * time.Minute
)

// FingerprintStore keeps the last submitted order fingerprint per session so
// the guard can suppress duplicate content across attempts.
type FingerprintStore struct {
	client    *redis.Client
	sessionID string
}

// NewFingerprintStore creates a fingerprint store for a session
func NewFingerprintStore(client *redis.Client, sessionID string) *FingerprintStore {
	return &FingerprintStore{client: client, sessionID: sessionID}
}

// Last returns the most recently recorded fingerprint and its timestamp.
// A session with no record returns zero values and no error.
func (s *FingerprintStore) Last(ctx context.Context) (string, time.Time, error) {
	fp, err := s.client.Get(ctx, fingerprintKeyPrefix+s.sessionID).Result()
	if err == redis.Nil {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load fingerprint: %w", err)
	}

	raw, err := s.client.Get(ctx, fingerprintAtKeyPrefix+s.sessionID).Result()
	if err == redis.Nil {
		return "", time.Time{}, nil
	}
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to load fingerprint timestamp: %w", err)
	}

	at, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("corrupt fingerprint timestamp: %w", err)
	}
	return fp, at, nil
}

// Record stores a fingerprint with its submission timestamp
func (s *FingerprintStore) Record(ctx context.Context, fingerprint string, at time.Time) error {
	pipe := s.client.Pipeline()
	pipe.Set(ctx, fingerprintKeyPrefix+s.sessionID, fingerprint, fingerprintTTL)
	pipe.Set(ctx, fingerprintAtKeyPrefix+s.sessionID, at.Format(time.RFC3339Nano), fingerprintTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record fingerprint: %w", err)
	}
	return nil
}

// FingerprintStoreFactory hands out per-session fingerprint stores
type FingerprintStoreFactory struct {
	client *redis.Client
}

// NewFingerprintStoreFactory creates the factory
func NewFingerprintStoreFactory(client *redis.Client) *FingerprintStoreFactory {
	return &FingerprintStoreFactory{client: client}
}

// FingerprintStore returns the store for a session
func (f *FingerprintStoreFactory) FingerprintStore(sessionID string) order.FingerprintStore {
	return NewFingerprintStore(f.client, sessionID)
}
