package availability

import (
	"sort"
	"time"

	"hotelbook/internal/models"
)

// BookedRoomTypes returns the distinct room-type names of the snapshot bookings of
// hotelID whose dates intersect [checkIn, checkOut), in first-seen order.
func BookedRoomTypes(hotelID string, checkIn, checkOut time.Time, snapshot []models.Booking) []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range snapshot {
		b := &snapshot[i]
		if b.HotelID != hotelID {
			continue
		}
		if !RangesIntersect(checkIn, checkOut, b.CheckIn, b.CheckOut) {
			continue
		}
		for _, rt := range b.RoomTypes {
			if _, ok := seen[rt]; ok {
				continue
			}
			seen[rt] = struct{}{}
			out = append(out, rt)
		}
	}
	return out
}

// IsHotelLikelySoldOut flags a hotel once bookings overlapping the stay cover
// SoldOutRoomTypeThreshold distinct room types. It looks at type diversity only,
// never at room counts, and has no authority over admission.
func IsHotelLikelySoldOut(hotelID string, checkIn, checkOut time.Time, snapshot []models.Booking) bool {
	return len(BookedRoomTypes(hotelID, checkIn, checkOut, snapshot)) >= models.SoldOutRoomTypeThreshold
}

// Describe builds the advisory availability view of hotel for the stay.
func Describe(hotel *models.Hotel, checkIn, checkOut time.Time, snapshot []models.Booking) models.HotelAvailability {
	booked := BookedRoomTypes(hotel.ID, checkIn, checkOut, snapshot)
	bookedSet := make(map[string]struct{}, len(booked))
	for _, rt := range booked {
		bookedSet[rt] = struct{}{}
	}

	available := make([]string, 0, len(hotel.RoomTypes))
	for _, rt := range hotel.RoomTypes {
		if _, ok := bookedSet[rt.Name]; !ok {
			available = append(available, rt.Name)
		}
	}

	sortedBooked := append([]string{}, booked...)
	sort.Strings(sortedBooked)

	return models.HotelAvailability{
		HotelID:            hotel.ID,
		AvailableRoomTypes: available,
		BookedRoomTypes:    sortedBooked,
		HasAvailableRooms:  len(available) > 0,
		LikelySoldOut:      len(booked) >= models.SoldOutRoomTypeThreshold,
	}
}
