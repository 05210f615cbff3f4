package service

import (
	"context"
	"errors"
	"testing"

	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var upcomingOnly = models.BookingFilter{Status: models.StatusUpcoming}

func TestUpcomingSnapshot_CacheHit(t *testing.T) {
	hotels, bookings, cache := new(mockHotels), new(mockBookings), new(mockCache)
	svc := NewAvailabilityService(hotels, bookings, cache, 0, nopLogger())
	ctx := context.Background()

	cached := []models.Booking{{ID: "cached"}}
	cache.On("GetSnapshot", ctx).Return(cached, true, nil)

	got, err := svc.UpcomingSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	bookings.AssertNotCalled(t, "FindBookings", mock.Anything, mock.Anything)
}

func TestUpcomingSnapshot_MissFillsCache(t *testing.T) {
	hotels, bookings, cache := new(mockHotels), new(mockBookings), new(mockCache)
	svc := NewAvailabilityService(hotels, bookings, cache, 0, nopLogger())
	ctx := context.Background()

	fresh := []models.Booking{{ID: "fresh"}}
	cache.On("GetSnapshot", ctx).Return(nil, false, nil)
	bookings.On("FindBookings", ctx, upcomingOnly).Return(fresh, nil)
	cache.On("SetSnapshot", ctx, fresh, models.DefaultSnapshotTTL).Return(nil)

	got, err := svc.UpcomingSnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	cache.AssertExpectations(t)
}

func TestUpcomingSnapshot_CacheErrorsDegrade(t *testing.T) {
	hotels, bookings, cache := new(mockHotels), new(mockBookings), new(mockCache)
	svc := NewAvailabilityService(hotels, bookings, cache, 0, nopLogger())
	ctx := context.Background()

	cache.On("GetSnapshot", ctx).Return(nil, false, errors.New("redis down"))
	bookings.On("FindBookings", ctx, upcomingOnly).Return([]models.Booking{}, nil)
	cache.On("SetSnapshot", ctx, mock.Anything, mock.Anything).Return(errors.New("redis down"))

	got, err := svc.UpcomingSnapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpcomingSnapshot_NoCache(t *testing.T) {
	hotels, bookings := new(mockHotels), new(mockBookings)
	svc := NewAvailabilityService(hotels, bookings, nil, 0, nopLogger())
	ctx := context.Background()

	bookings.On("FindBookings", ctx, upcomingOnly).Return(nil, errors.New("closed"))
	_, err := svc.UpcomingSnapshot(ctx)
	assert.ErrorContains(t, err, "closed")
}

func TestHotelAvailability(t *testing.T) {
	hotels, bookings := new(mockHotels), new(mockBookings)
	svc := NewAvailabilityService(hotels, bookings, nil, 0, nopLogger())
	ctx := context.Background()

	hotels.On("GetHotel", ctx, "hotel-h").Return(testHotel(), nil)
	hotels.On("GetHotel", ctx, "nope").Return(nil, database.ErrNotFound)
	bookings.On("FindBookings", ctx, upcomingOnly).Return([]models.Booking{
		{HotelID: "hotel-h", RoomTypes: []string{"Suite"}, CheckIn: day("2025-06-05"), CheckOut: day("2025-06-08")},
		{HotelID: "other", RoomTypes: []string{"Standard"}, CheckIn: day("2025-06-05"), CheckOut: day("2025-06-08")},
	}, nil)

	view, err := svc.HotelAvailability(ctx, "hotel-h", day("2025-06-04"), day("2025-06-06"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Standard", "Deluxe"}, view.AvailableRoomTypes)
	assert.Equal(t, []string{"Suite"}, view.BookedRoomTypes)
	assert.True(t, view.HasAvailableRooms)
	assert.False(t, view.LikelySoldOut)

	_, err = svc.HotelAvailability(ctx, "nope", day("2025-06-04"), day("2025-06-06"))
	assert.ErrorIs(t, err, domain.ErrHotelNotFound)

	_, err = svc.HotelAvailability(ctx, "hotel-h", day("2025-06-06"), day("2025-06-06"))
	assert.ErrorIs(t, err, domain.ErrInvalidDates)
}

func TestBulkAvailability(t *testing.T) {
	hotels, bookings := new(mockHotels), new(mockBookings)
	svc := NewAvailabilityService(hotels, bookings, nil, 0, nopLogger())
	ctx := context.Background()

	second := models.Hotel{ID: "hotel-2", RoomTypes: []models.RoomType{{Name: "Cabin"}}}
	hotels.On("ListHotels", ctx, []string{"hotel-h", "hotel-2", "ghost"}).Return([]models.Hotel{*testHotel(), second}, nil)
	bookings.On("FindBookings", ctx, upcomingOnly).Return([]models.Booking{
		{HotelID: "hotel-h", RoomTypes: []string{"Standard", "Deluxe"}, CheckIn: day("2025-06-01"), CheckOut: day("2025-06-10")},
		{HotelID: "hotel-h", RoomTypes: []string{"Suite"}, CheckIn: day("2025-06-02"), CheckOut: day("2025-06-05")},
	}, nil).Once()

	got, err := svc.BulkAvailability(ctx, []string{"hotel-h", "hotel-2", "ghost"}, day("2025-06-04"), day("2025-06-06"))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, got[0].LikelySoldOut)
	assert.False(t, got[1].LikelySoldOut)
	assert.True(t, got[1].HasAvailableRooms)
	bookings.AssertExpectations(t)

	empty, err := svc.BulkAvailability(ctx, nil, day("2025-06-04"), day("2025-06-06"))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
