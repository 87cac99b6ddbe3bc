// Package cache implements namespaced cache-aside storage. A namespace groups
// entries that share a TTL and can be flushed as a unit.
package cache

import (
	"context"
	"time"
)

// Store is the byte-level backend behind Cache.
type Store interface {
	// Get returns the live value for key. Expired entries are never returned.
	Get(ctx context.Context, namespace, key string) ([]byte, bool, error)
	Set(ctx context.Context, namespace, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, namespace, key string) error
	// Flush drops every entry in the namespace.
	Flush(ctx context.Context, namespace string) error
}
