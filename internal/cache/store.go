// Package cache provides the key/string store behind the catalog cache
// and the per-user session projections. Two implementations share the
// same contract: a Redis-backed store for deployments with a configured
// backend, and an in-process store used when none is configured.
package cache

import (
	"context"
	"time"
)

// Store is a key/string store with per-entry TTL.
//
// Callers must treat every error as a miss: the cache is an optimization
// and its unavailability never fails a request.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value under key, expiring after ttl. A zero ttl means
	// no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}
