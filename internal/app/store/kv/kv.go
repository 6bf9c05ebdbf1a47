// Package kv is the key-value store adapter the application persists its
// domain data through. Values are opaque text; callers decide the encoding.
package kv

import (
	"context"
	"time"
)

// Store is a simple get/set/remove key-value store.
type Store interface {
	// Get returns the value stored under key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Sweeper is implemented by stores that can reclaim keys nobody has written
// for a while. The session cleanup worker uses it for session-scoped keys.
type Sweeper interface {
	RemoveStale(ctx context.Context, prefix string, olderThan time.Time) (int64, error)
}

// Pinger is implemented by stores with a backing server to check.
type Pinger interface {
	Ping(ctx context.Context) error
}
