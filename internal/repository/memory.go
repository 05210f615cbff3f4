package repository

import (
	"context"
	"sync"
	"time"

	"hotelbook/internal/models"
)

type MemorySnapshotCache struct {
	mu        sync.RWMutex
	bookings  []models.Booking
	expiresAt time.Time
	now       func() time.Time
}

func NewMemorySnapshotCache() *MemorySnapshotCache {
	return &MemorySnapshotCache{now: time.Now}
}

func (c *MemorySnapshotCache) GetSnapshot(ctx context.Context) ([]models.Booking, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.bookings == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	out := make([]models.Booking, len(c.bookings))
	copy(out, c.bookings)
	return out, true, nil
}

func (c *MemorySnapshotCache) SetSnapshot(ctx context.Context, bookings []models.Booking, ttl time.Duration) error {
	stored := make([]models.Booking, len(bookings))
	copy(stored, bookings)

	c.mu.Lock()
	c.bookings = stored
	c.expiresAt = c.now().Add(ttl)
	c.mu.Unlock()
	return nil
}

func (c *MemorySnapshotCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	c.bookings = nil
	c.mu.Unlock()
	return nil
}
