package kv

import (
	"context"
	"time"
)

// Prefixed namespaces every key of an underlying store. It is used to give
// each browser session its own "currentUser" record.
type Prefixed struct {
	inner  Store
	prefix string
}

// WithPrefix returns a Store that prepends prefix to every key.
func WithPrefix(inner Store, prefix string) *Prefixed {
	return &Prefixed{inner: inner, prefix: prefix}
}

// SessionPrefix is the key prefix for data scoped to one browser session.
func SessionPrefix(sessionID string) string {
	return SessionKeyPrefix + sessionID + ":"
}

// SessionKeyPrefix is the common prefix of all session-scoped keys.
const SessionKeyPrefix = "session:"

func (p *Prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *Prefixed) Set(ctx context.Context, key, value string) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *Prefixed) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}

// RemoveStale forwards to the inner store when it supports sweeping.
func (p *Prefixed) RemoveStale(ctx context.Context, prefix string, olderThan time.Time) (int64, error) {
	sw, ok := p.inner.(Sweeper)
	if !ok {
		return 0, nil
	}
	return sw.RemoveStale(ctx, p.prefix+prefix, olderThan)
}
