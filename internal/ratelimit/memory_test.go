package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) (*MemoryStore, *time.Time) {
	t.Helper()
	store := NewMemoryStore(zap.NewNop(), time.Hour)
	t.Cleanup(store.Stop)

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return current }
	return store, &current
}

func TestMemoryStoreWindow(t *testing.T) {
	store, clock := newTestStore(t)
	cfg := Config{MaxRequests: 5, Window: time.Minute}
	ctx := context.Background()

	expectedReset := clock.Add(time.Minute)

	// 5 requests in the window count down the remaining quota.
	for i, wantRemaining := range []int{4, 3, 2, 1, 0} {
		result, err := store.Check(ctx, "203.0.113.7", cfg)
		require.NoError(t, err)
		assert.True(t, result.Allowed, "request %d", i+1)
		assert.Equal(t, wantRemaining, result.Remaining, "request %d", i+1)
		assert.Equal(t, expectedReset, result.ResetAt)
	}

	// The 6th is denied and the reset time is unchanged.
	result, err := store.Check(ctx, "203.0.113.7", cfg)
	require.NoError(t, err)
	assert.False(t, result.Allowed)
	assert.Equal(t, 0, result.Remaining)
	assert.Equal(t, expectedReset, result.ResetAt)

	// After the window expires the counter starts fresh.
	*clock = clock.Add(time.Minute + time.Second)
	result, err = store.Check(ctx, "203.0.113.7", cfg)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
	assert.Equal(t, 4, result.Remaining)
	assert.Equal(t, clock.Add(time.Minute), result.ResetAt)
}

func TestMemoryStoreIdentifiersAreIndependent(t *testing.T) {
	store, _ := newTestStore(t)
	cfg := Config{MaxRequests: 1, Window: time.Minute}
	ctx := context.Background()

	first, err := store.Check(ctx, "203.0.113.7", cfg)
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	denied, err := store.Check(ctx, "203.0.113.7", cfg)
	require.NoError(t, err)
	assert.False(t, denied.Allowed)

	other, err := store.Check(ctx, "198.51.100.9", cfg)
	require.NoError(t, err)
	assert.True(t, other.Allowed)
}

func TestMemoryStoreCleanup(t *testing.T) {
	store, clock := newTestStore(t)
	cfg := Config{MaxRequests: 5, Window: time.Minute}
	ctx := context.Background()

	_, err := store.Check(ctx, "expired", cfg)
	require.NoError(t, err)

	*clock = clock.Add(2 * time.Minute)
	_, err = store.Check(ctx, "active", cfg)
	require.NoError(t, err)

	require.NoError(t, store.Cleanup(ctx))

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.NotContains(t, store.entries, "expired")
	assert.Contains(t, store.entries, "active")
}

func TestMemoryStoreConcurrentChecks(t *testing.T) {
	store := NewMemoryStore(zap.NewNop(), time.Hour)
	t.Cleanup(store.Stop)
	cfg := Config{MaxRequests: 5, Window: time.Minute}

	const attempts = 50
	var wg sync.WaitGroup
	allowed := make(chan bool, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := store.Check(context.Background(), "burst", cfg)
			assert.NoError(t, err)
			allowed <- result.Allowed
		}()
	}
	wg.Wait()
	close(allowed)

	allowedCount := 0
	for ok := range allowed {
		if ok {
			allowedCount++
		}
	}
	assert.Equal(t, cfg.MaxRequests, allowedCount)
}
