package repository

import (
	"context"
	"sync/atomic"
	"time"

	"hotelbook/internal/domain"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverSnapshotCache reads and writes the primary cache (redis) until it fails,
// then serves from the fallback and retries the primary once a minute.
type FailoverSnapshotCache struct {
	primary   domain.SnapshotCache
	fallback  domain.SnapshotCache
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
	now       func() time.Time
}

func NewFailoverSnapshotCache(primary, fallback domain.SnapshotCache, logger *zerolog.Logger) *FailoverSnapshotCache {
	return &FailoverSnapshotCache{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

func (r *FailoverSnapshotCache) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary snapshot cache failed, falling back to memory")
	}
	r.lastCheck.Store(r.now().UnixNano())
}

// usePrimary reports whether the primary should be tried for this call.
func (r *FailoverSnapshotCache) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return r.now().Sub(time.Unix(0, r.lastCheck.Load())) > recoveryInterval
}

func (r *FailoverSnapshotCache) recovered() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary snapshot cache recovered")
	}
}

func (r *FailoverSnapshotCache) GetSnapshot(ctx context.Context) ([]models.Booking, bool, error) {
	if r.usePrimary() {
		bookings, ok, err := r.primary.GetSnapshot(ctx)
		if err == nil {
			r.recovered()
			return bookings, ok, nil
		}
		r.markDown(err)
	}
	return r.fallback.GetSnapshot(ctx)
}

func (r *FailoverSnapshotCache) SetSnapshot(ctx context.Context, bookings []models.Booking, ttl time.Duration) error {
	if r.usePrimary() {
		err := r.primary.SetSnapshot(ctx, bookings, ttl)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}
	return r.fallback.SetSnapshot(ctx, bookings, ttl)
}

// Invalidate always clears the fallback; the primary only when it is in use.
func (r *FailoverSnapshotCache) Invalidate(ctx context.Context) error {
	fallbackErr := r.fallback.Invalidate(ctx)
	if r.usePrimary() {
		if err := r.primary.Invalidate(ctx); err != nil {
			r.markDown(err)
		} else {
			r.recovered()
		}
	}
	return fallbackErr
}
