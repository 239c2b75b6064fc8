package cache

import (
	"context"
	"time"
)

// Store is the shared cache interface used by the permission resolver.
type Store interface {
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
	Flush(ctx context.Context) error
}
