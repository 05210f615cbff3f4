package availability

import (
	"testing"

	"hotelbook/internal/models"

	"github.com/stretchr/testify/assert"
)

func booking(hotelID, checkIn, checkOut string, roomTypes ...string) models.Booking {
	return models.Booking{
		HotelID:   hotelID,
		RoomTypes: roomTypes,
		CheckIn:   day(checkIn),
		CheckOut:  day(checkOut),
		Status:    models.StatusUpcoming,
	}
}

func TestIsHotelLikelySoldOut_Threshold(t *testing.T) {
	in, out := day("2025-07-10"), day("2025-07-12")

	two := []models.Booking{
		booking("h1", "2025-07-09", "2025-07-11", "Standard"),
		booking("h1", "2025-07-11", "2025-07-13", "Deluxe", "Standard"),
	}
	assert.False(t, IsHotelLikelySoldOut("h1", in, out, two))

	three := append(two, booking("h1", "2025-07-10", "2025-07-12", "Suite"))
	assert.True(t, IsHotelLikelySoldOut("h1", in, out, three))
}

func TestIsHotelLikelySoldOut_IgnoresOtherHotelsAndDates(t *testing.T) {
	in, out := day("2025-07-10"), day("2025-07-12")
	snapshot := []models.Booking{
		booking("h1", "2025-07-09", "2025-07-11", "Standard"),
		booking("h2", "2025-07-10", "2025-07-12", "Deluxe"),
		booking("h1", "2025-07-12", "2025-07-14", "Suite"),
		booking("h1", "2025-07-01", "2025-07-10", "Family"),
	}
	assert.False(t, IsHotelLikelySoldOut("h1", in, out, snapshot))
	assert.Equal(t, []string{"Standard"}, BookedRoomTypes("h1", in, out, snapshot))
}

func TestIsHotelLikelySoldOut_EmptySnapshot(t *testing.T) {
	assert.False(t, IsHotelLikelySoldOut("h1", day("2025-07-10"), day("2025-07-12"), nil))
}

func TestDescribe(t *testing.T) {
	hotel := &models.Hotel{
		ID: "h1",
		RoomTypes: []models.RoomType{
			{Name: "Standard"}, {Name: "Deluxe"}, {Name: "Suite"},
		},
	}
	in, out := day("2025-07-10"), day("2025-07-12")

	got := Describe(hotel, in, out, []models.Booking{
		booking("h1", "2025-07-10", "2025-07-11", "Suite", "Deluxe"),
	})
	assert.Equal(t, []string{"Standard"}, got.AvailableRoomTypes)
	assert.Equal(t, []string{"Deluxe", "Suite"}, got.BookedRoomTypes)
	assert.True(t, got.HasAvailableRooms)
	assert.False(t, got.LikelySoldOut)

	got = Describe(hotel, in, out, []models.Booking{
		booking("h1", "2025-07-10", "2025-07-11", "Suite", "Deluxe", "Standard"),
	})
	assert.Empty(t, got.AvailableRoomTypes)
	assert.False(t, got.HasAvailableRooms)
	assert.True(t, got.LikelySoldOut)
}
