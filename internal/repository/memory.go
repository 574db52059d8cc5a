package repository

import (
	"context"
	"sync"
	"time"

	"slotbook/internal/models"
)

// MemoryCacheRepository is the in-process fallback used when redis is
// unavailable.
type MemoryCacheRepository struct {
	slots      sync.Map
	rateLimits sync.Map
}

func NewMemoryCacheRepository() *MemoryCacheRepository {
	return &MemoryCacheRepository{}
}

type rateLimitEntry struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
}

func (r *MemoryCacheRepository) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, _ := r.rateLimits.LoadOrStore(key, &rateLimitEntry{})
	entry := val.(*rateLimitEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.expiresAt) {
		entry.count = 1
		entry.expiresAt = now.Add(window)
	} else {
		entry.count++
	}
	return entry.count <= limit, nil
}

type slotsEntry struct {
	slots     []*models.Slot
	expiresAt time.Time
}

func (r *MemoryCacheRepository) GetSlots(ctx context.Context, key string) ([]*models.Slot, error) {
	val, ok := r.slots.Load(key)
	if !ok {
		return nil, nil
	}
	entry := val.(*slotsEntry)
	if time.Now().After(entry.expiresAt) {
		r.slots.Delete(key)
		return nil, nil
	}
	return entry.slots, nil
}

func (r *MemoryCacheRepository) SetSlots(ctx context.Context, key string, slots []*models.Slot, ttl time.Duration) error {
	r.slots.Store(key, &slotsEntry{slots: slots, expiresAt: time.Now().Add(ttl)})
	return nil
}

func (r *MemoryCacheRepository) InvalidateSlots(ctx context.Context, key string) error {
	r.slots.Delete(key)
	return nil
}
