package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotbook/internal/models"
)

type failingCache struct{}

var errCacheDown = errors.New("cache down")

func (failingCache) CheckRateLimit(context.Context, string, int, time.Duration) (bool, error) {
	return false, errCacheDown
}

func (failingCache) GetSlots(context.Context, string) ([]*models.Slot, error) {
	return nil, errCacheDown
}

func (failingCache) SetSlots(context.Context, string, []*models.Slot, time.Duration) error {
	return errCacheDown
}

func (failingCache) InvalidateSlots(context.Context, string) error {
	return errCacheDown
}

func TestFailoverFallsBackOnError(t *testing.T) {
	logger := zerolog.Nop()
	fallback := NewMemoryCacheRepository()
	repo := NewFailoverCacheRepository(failingCache{}, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, repo.SetSlots(ctx, "key", []*models.Slot{{ID: 1}}, time.Minute))

	got, err := repo.GetSlots(ctx, "key")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(1), got[0].ID)

	assert.True(t, repo.isDown.Load())
}

func TestFailoverSticksToPrimaryWhenHealthy(t *testing.T) {
	logger := zerolog.Nop()
	primary := NewMemoryCacheRepository()
	fallback := NewMemoryCacheRepository()
	repo := NewFailoverCacheRepository(primary, fallback, &logger)
	ctx := context.Background()

	require.NoError(t, repo.SetSlots(ctx, "key", []*models.Slot{{ID: 7}}, time.Minute))

	// Written through the primary, not the fallback.
	fromPrimary, err := primary.GetSlots(ctx, "key")
	require.NoError(t, err)
	assert.Len(t, fromPrimary, 1)

	fromFallback, err := fallback.GetSlots(ctx, "key")
	require.NoError(t, err)
	assert.Nil(t, fromFallback)
}

func TestFailoverConcurrentDowngrade(t *testing.T) {
	logger := zerolog.Nop()
	repo := NewFailoverCacheRepository(failingCache{}, NewMemoryCacheRepository(), &logger)
	ctx := context.Background()

	// Parallel readers hit the failing primary and race the downgrade
	// bookkeeping; every call must still answer from the fallback.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_, err := repo.GetSlots(ctx, "0:2026-03-01")
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	assert.True(t, repo.isDown.Load())
	assert.NotZero(t, repo.lastCheck.Load())
}

func TestFailoverRateLimit(t *testing.T) {
	logger := zerolog.Nop()
	repo := NewFailoverCacheRepository(failingCache{}, NewMemoryCacheRepository(), &logger)
	ctx := context.Background()

	allowed, err := repo.CheckRateLimit(ctx, "login:x", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = repo.CheckRateLimit(ctx, "login:x", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}
