package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"slotbook/internal/domain"
	"slotbook/internal/models"
)

// FailoverCacheRepository serves from the primary cache until it
// errors, then falls back and probes the primary again after a minute.
// Both state fields are atomics; request goroutines read and write
// them concurrently.
type FailoverCacheRepository struct {
	primary  domain.CacheRepository
	fallback domain.CacheRepository
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// lastCheck holds the unix nanos of the last failed primary call.
	lastCheck atomic.Int64
}

func NewFailoverCacheRepository(primary, fallback domain.CacheRepository, logger *zerolog.Logger) *FailoverCacheRepository {
	return &FailoverCacheRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverCacheRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary cache repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverCacheRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if !r.isDown.Load() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			return allowed, nil
		}
		r.markDown(err)
	}

	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}

func (r *FailoverCacheRepository) GetSlots(ctx context.Context, key string) ([]*models.Slot, error) {
	if !r.isDown.Load() {
		slots, err := r.primary.GetSlots(ctx, key)
		if err == nil {
			return slots, nil
		}
		r.markDown(err)
	}

	// Try to recover after 1 minute.
	if r.isDown.Load() && time.Since(time.Unix(0, r.lastCheck.Load())) > time.Minute {
		slots, err := r.primary.GetSlots(ctx, key)
		if err == nil {
			r.isDown.Store(false)
			return slots, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetSlots(ctx, key)
}

func (r *FailoverCacheRepository) SetSlots(ctx context.Context, key string, slots []*models.Slot, ttl time.Duration) error {
	if !r.isDown.Load() {
		err := r.primary.SetSlots(ctx, key, slots, ttl)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetSlots(ctx, key, slots, ttl)
}

func (r *FailoverCacheRepository) InvalidateSlots(ctx context.Context, key string) error {
	if !r.isDown.Load() {
		err := r.primary.InvalidateSlots(ctx, key)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.InvalidateSlots(ctx, key)
}
