package service

import (
	"context"
	"io"
	"time"

	"hotelbook/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
)

type mockHotels struct {
	mock.Mock
}

func (m *mockHotels) GetHotel(ctx context.Context, id string) (*models.Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Hotel), args.Error(1)
}

func (m *mockHotels) ListHotels(ctx context.Context, ids []string) ([]models.Hotel, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Hotel), args.Error(1)
}

type mockBookings struct {
	mock.Mock
}

func (m *mockBookings) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookings) FindBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *mockBookings) InsertBooking(ctx context.Context, b *models.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockBookings) UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	args := m.Called(ctx, id, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *mockBookings) GetBookingStats(ctx context.Context) ([]models.StatusStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.StatusStats), args.Error(1)
}

type mockEventBus struct {
	mock.Mock
}

func (m *mockEventBus) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetSnapshot(ctx context.Context) ([]models.Booking, bool, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]models.Booking), args.Bool(1), args.Error(2)
}

func (m *mockCache) SetSnapshot(ctx context.Context, bookings []models.Booking, ttl time.Duration) error {
	return m.Called(ctx, bookings, ttl).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

type fixedNumbers struct {
	number string
}

func (g fixedNumbers) Next(time.Time) string { return g.number }

func nopLogger() *zerolog.Logger {
	l := zerolog.New(io.Discard)
	return &l
}

func day(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func price(v float64) *float64 { return &v }

func testHotel() *models.Hotel {
	return &models.Hotel{
		ID:       "hotel-h",
		Name:     "Harbour House",
		Location: "Lisbon",
		Photos:   []string{"cover.jpg", "lobby.jpg"},
		RoomTypes: []models.RoomType{
			{Name: "Standard", Price: 100, Capacity: 2},
			{Name: "Deluxe", Price: 150, Capacity: 2},
			{Name: "Suite", Price: 300, Capacity: 4},
		},
	}
}
