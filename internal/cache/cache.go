// Package cache provides TTL key-value storage for fetched market data.
package cache

import (
	"context"
	"time"
)

// Store is a TTL byte cache. Get reports a miss with ok=false rather
// than an error; errors mean the backend itself failed.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
