// Package cache defines the shared tier of the marker response cache.
package cache

import (
	"context"
	"errors"
	"time"
)

var ErrMiss = errors.New("cache miss")

// Interface is satisfied by redisstore.Client. Get reports a missing key
// with ErrMiss.
type Interface interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}
