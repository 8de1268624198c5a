// Package ratelimit throttles REST clients with an in-memory token bucket
// or a redis sliding window shared between instances.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether the client identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (*Info, error)
}

// Info is the limit state after a call to Allow
type Info struct {
	Limit     int
	Remaining int
	ResetAt   time.Time
	Allowed   bool
}
