package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCache errors on every call and counts them
type failingCache struct {
	calls int
}

var errDown = errors.New("backend down")

func (f *failingCache) Get(context.Context, string) ([]byte, error) {
	f.calls++
	return nil, errDown
}

func (f *failingCache) Set(context.Context, string, []byte, time.Duration) error {
	f.calls++
	return errDown
}

func (f *failingCache) Delete(context.Context, string) error {
	f.calls++
	return errDown
}

func (f *failingCache) Clear(context.Context) error {
	f.calls++
	return errDown
}

func (f *failingCache) Exists(context.Context, string) (bool, error) {
	f.calls++
	return false, errDown
}

func testBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "test",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      3,
	}
}

func TestBreakerCache_OpensAndDegradesToMiss(t *testing.T) {
	backend := &failingCache{}
	c := NewBreakerCache(backend, testBreakerConfig(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := c.Get(ctx, "k")
		assert.ErrorIs(t, err, errDown)
	}
	assert.Equal(t, gobreaker.StateOpen, c.State())

	_, err := c.Get(ctx, "k")
	assert.True(t, IsCacheMiss(err))
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	assert.NoError(t, c.Delete(ctx, "k"))
	exists, err := c.Exists(ctx, "k")
	assert.NoError(t, err)
	assert.False(t, exists)
	assert.Error(t, c.Clear(ctx))

	assert.Equal(t, 3, backend.calls)
}

func TestBreakerCache_MissesDoNotTrip(t *testing.T) {
	mem := NewMemoryCacheWithConfig(DefaultConfig(), time.Minute)
	defer mem.Close()
	c := NewBreakerCache(mem, testBreakerConfig(), nil)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := c.Get(ctx, "missing")
		require.True(t, IsCacheMiss(err))
	}
	assert.Equal(t, gobreaker.StateClosed, c.State())

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}
