package ports

import (
	"context"
	"time"
)

// Cache is a byte-oriented key-value store used to front account lookups.
// Failures are reported to the caller, which falls back to the primary datastore.
type Cache interface {
	// Get returns the raw bytes for key; ok=false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for key with TTL (<= 0 keeps it without expiry).
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes the key; absence is not an error.
	Delete(ctx context.Context, key string) error
}
