package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers client request keys so a replayed request is not run twice
type IdempotencyStore interface {
	// Claim records key for ttl.
	// Returns true if the key was newly claimed, false if it is already held
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Release forgets key so the request can be retried
	Release(ctx context.Context, key string) error

	// Close closes the store and releases resources
	Close() error
}

// IdempotencyConfig holds configuration for request de-duplication
type IdempotencyConfig struct {
	// TTL is how long a claimed key blocks replays
	// Default: 24 hours
	TTL time.Duration

	// Enabled determines whether Idempotency-Key headers are honored
	// Default: true
	Enabled bool
}

// DefaultIdempotencyConfig returns the default idempotency configuration
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
