package domain

import (
	"context"
	"time"

	"hotelbook/internal/models"
)

type HotelRepository interface {
	GetHotel(ctx context.Context, id string) (*models.Hotel, error)
	ListHotels(ctx context.Context, ids []string) ([]models.Hotel, error)
}

type BookingRepository interface {
	GetBooking(ctx context.Context, id string) (*models.Booking, error)
	FindBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	InsertBooking(ctx context.Context, booking *models.Booking) error
	UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error)
	GetBookingStats(ctx context.Context) ([]models.StatusStats, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// SnapshotCache хранит снимок предстоящих бронирований для эвристики "sold out".
type SnapshotCache interface {
	GetSnapshot(ctx context.Context) ([]models.Booking, bool, error)
	SetSnapshot(ctx context.Context, bookings []models.Booking, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type Clock interface {
	Now() time.Time
}

// SystemClock reports wall time in UTC; calendar days are UTC days everywhere.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// NumberGenerator produces human-facing booking numbers.
type NumberGenerator interface {
	Next(now time.Time) string
}
