package repository

import (
	"context"
	"time"
)

// SessionStore is the key/value store with per-key expiry that backs the
// session revocation cache. Get returns domain.ErrNotFound for a missing key.
type SessionStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}
