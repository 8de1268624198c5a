package cache

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig configures the circuit breaker in front of a remote cache
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that opens the breaker once
	// MinRequests have been seen in the interval
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns the breaker defaults for the redis cache
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "cache",
		MaxRequests:      3,
		Interval:         30 * time.Second,
		Timeout:          15 * time.Second,
		FailureThreshold: 0.5,
		MinRequests:      5,
	}
}

// BreakerCache guards a remote cache with a circuit breaker. While the
// breaker is open reads are misses and writes are dropped, so an
// unhealthy backend costs nothing per request.
type BreakerCache struct {
	next Cache
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerCache wraps next with a circuit breaker
func NewBreakerCache(next Cache, config BreakerConfig, logger *zap.Logger) *BreakerCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("cache breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsCacheMiss(err) || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerCache{next: next, cb: cb}
}

// State returns the breaker state
func (b *BreakerCache) State() gobreaker.State {
	return b.cb.State()
}

// Get returns a miss while the breaker is open
func (b *BreakerCache) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Get(ctx, key)
	})
	if rejected(err) {
		return nil, ErrCacheMiss{Key: key}
	}
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// Set drops the write while the breaker is open
func (b *BreakerCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Set(ctx, key, value, ttl)
	})
	if rejected(err) {
		return nil
	}
	return err
}

// Delete drops the delete while the breaker is open
func (b *BreakerCache) Delete(ctx context.Context, key string) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Delete(ctx, key)
	})
	if rejected(err) {
		return nil
	}
	return err
}

// Clear reports the breaker error so a flush is never silently skipped
func (b *BreakerCache) Clear(ctx context.Context) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Clear(ctx)
	})
	return err
}

// Exists reports false while the breaker is open
func (b *BreakerCache) Exists(ctx context.Context, key string) (bool, error) {
	v, err := b.cb.Execute(func() (any, error) {
		return b.next.Exists(ctx, key)
	})
	if rejected(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func rejected(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
