package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slotbook/internal/models"
)

func TestRedisCacheRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisCacheRepository(client)
	ctx := context.Background()

	t.Run("SetAndGetSlots", func(t *testing.T) {
		slots := []*models.Slot{
			{ID: 1, BranchID: 1, ThemeID: 1, Time: "18:30", Opened: true, Shown: true},
			{ID: 2, BranchID: 1, ThemeID: 1, Time: "20:00", Opened: true, Shown: true},
		}

		err := repo.SetSlots(ctx, "1:2026-09-15", slots, time.Minute)
		require.NoError(t, err)

		got, err := repo.GetSlots(ctx, "1:2026-09-15")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, int64(1), got[0].ID)
		assert.Equal(t, "20:00", got[1].Time)
	})

	t.Run("GetSlotsMiss", func(t *testing.T) {
		got, err := repo.GetSlots(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("InvalidateSlots", func(t *testing.T) {
		err := repo.SetSlots(ctx, "1:2026-09-16", []*models.Slot{{ID: 3}}, time.Minute)
		require.NoError(t, err)

		require.NoError(t, repo.InvalidateSlots(ctx, "1:2026-09-16"))

		got, err := repo.GetSlots(ctx, "1:2026-09-16")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "login:10.0.0.1"
		limit := 2
		window := time.Second

		allowed, err := repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)

		// Third attempt exceeds the limit.
		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(window + time.Millisecond)

		allowed, err = repo.CheckRateLimit(ctx, key, limit, window)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		repo := NewRedisCacheRepository(nil)
		_, err := repo.GetSlots(ctx, "any")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "redis client is nil")
	})

	t.Run("Ping", func(t *testing.T) {
		assert.NoError(t, Ping(ctx, client))
	})

	t.Run("Close", func(t *testing.T) {
		assert.NoError(t, Close(client))
	})
}
