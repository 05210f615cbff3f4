package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbook/internal/availability"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
)

// AvailabilityService answers the advisory "is there room" questions asked by search
// and hotel pages. Its answers may be stale by up to the snapshot TTL and never
// gate admission.
type AvailabilityService struct {
	hotels   domain.HotelRepository
	bookings domain.BookingRepository
	cache    domain.SnapshotCache
	ttl      time.Duration
	logger   *zerolog.Logger
}

func NewAvailabilityService(
	hotels domain.HotelRepository,
	bookings domain.BookingRepository,
	cache domain.SnapshotCache,
	ttl time.Duration,
	logger *zerolog.Logger,
) *AvailabilityService {
	if ttl <= 0 {
		ttl = models.DefaultSnapshotTTL
	}
	return &AvailabilityService{
		hotels:   hotels,
		bookings: bookings,
		cache:    cache,
		ttl:      ttl,
		logger:   logger,
	}
}

// UpcomingSnapshot returns every upcoming booking, from cache when possible.
// Cache failures degrade to a direct read.
func (s *AvailabilityService) UpcomingSnapshot(ctx context.Context) ([]models.Booking, error) {
	if s.cache != nil {
		snapshot, ok, err := s.cache.GetSnapshot(ctx)
		switch {
		case err != nil:
			metrics.IncSnapshot("error")
			s.logger.Warn().Err(err).Msg("snapshot cache read failed")
		case ok:
			metrics.IncSnapshot("hit")
			return snapshot, nil
		default:
			metrics.IncSnapshot("miss")
		}
	}

	snapshot, err := s.bookings.FindBookings(ctx, models.BookingFilter{Status: models.StatusUpcoming})
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming bookings: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetSnapshot(ctx, snapshot, s.ttl); err != nil {
			s.logger.Warn().Err(err).Msg("snapshot cache write failed")
		}
	}
	return snapshot, nil
}

// IsHotelLikelySoldOut applies the room-type diversity heuristic to the snapshot.
func (s *AvailabilityService) IsHotelLikelySoldOut(ctx context.Context, hotelID string, checkIn, checkOut time.Time) (bool, error) {
	in, out, err := stayRange(checkIn, checkOut)
	if err != nil {
		return false, err
	}
	snapshot, err := s.UpcomingSnapshot(ctx)
	if err != nil {
		return false, err
	}
	return availability.IsHotelLikelySoldOut(hotelID, in, out, snapshot), nil
}

// HotelAvailability breaks the hotel's room types into available and booked for the stay.
func (s *AvailabilityService) HotelAvailability(ctx context.Context, hotelID string, checkIn, checkOut time.Time) (*models.HotelAvailability, error) {
	in, out, err := stayRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}

	hotel, err := s.hotels.GetHotel(ctx, hotelID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.ErrHotelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel %s: %w", hotelID, err)
	}

	snapshot, err := s.UpcomingSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	result := availability.Describe(hotel, in, out, snapshot)
	return &result, nil
}

// BulkAvailability decorates many hotels from a single snapshot. Unknown ids are skipped.
func (s *AvailabilityService) BulkAvailability(ctx context.Context, hotelIDs []string, checkIn, checkOut time.Time) ([]models.HotelAvailability, error) {
	in, out, err := stayRange(checkIn, checkOut)
	if err != nil {
		return nil, err
	}
	if len(hotelIDs) == 0 {
		return []models.HotelAvailability{}, nil
	}

	hotels, err := s.hotels.ListHotels(ctx, hotelIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load hotels: %w", err)
	}
	snapshot, err := s.UpcomingSnapshot(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]models.HotelAvailability, 0, len(hotels))
	for i := range hotels {
		result = append(result, availability.Describe(&hotels[i], in, out, snapshot))
	}
	return result, nil
}

func stayRange(checkIn, checkOut time.Time) (time.Time, time.Time, error) {
	if checkIn.IsZero() || checkOut.IsZero() {
		return time.Time{}, time.Time{}, domain.ErrMissingFields
	}
	in, out := availability.StartOfDay(checkIn), availability.StartOfDay(checkOut)
	if !out.After(in) {
		return time.Time{}, time.Time{}, domain.ErrInvalidDates
	}
	return in, out, nil
}
