package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", "v", time.Minute))
	value, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", value)

	_, ok, err = m.Get(ctx, "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Set(ctx, "k", "v", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetOrFillSingleFlight(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var fills atomic.Int32
	fill := func(context.Context) (string, error) {
		fills.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "w_webid_value", nil
	}

	const goroutines = 16
	var wg sync.WaitGroup
	results := make([]string, goroutines)
	errs := make([]error, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = m.GetOrFill(ctx, "k", time.Minute, fill)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), fills.Load())
	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, "w_webid_value", results[i])
	}

	// Subsequent call hits the cache, no new fill.
	value, err := m.GetOrFill(ctx, "k", time.Minute, fill)
	require.NoError(t, err)
	assert.Equal(t, "w_webid_value", value)
	assert.Equal(t, int32(1), fills.Load())
}

func TestGetOrFillErrorNotCached(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var fills atomic.Int32
	_, err := m.GetOrFill(ctx, "k", time.Minute, func(context.Context) (string, error) {
		fills.Add(1)
		return "", assert.AnError
	})
	require.Error(t, err)

	value, err := m.GetOrFill(ctx, "k", time.Minute, func(context.Context) (string, error) {
		fills.Add(1)
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", value)
	assert.Equal(t, int32(2), fills.Load())
}
