package models

import "time"

type Booking struct {
	ID            string        `json:"id"`
	BookingNumber string        `json:"booking_number"`
	OwnerID       string        `json:"owner_id"`
	HotelID       string        `json:"hotel_id"`
	HotelName     string        `json:"hotel_name"`
	Location      string        `json:"location"`
	Image         string        `json:"image"`
	RoomTypes     []string      `json:"room_types"`
	CheckIn       time.Time     `json:"check_in"`
	CheckOut      time.Time     `json:"check_out"`
	Guests        int           `json:"guests"`
	TotalPrice    float64       `json:"total_price"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// HasRoomType reports whether name appears anywhere in the booking's room types.
func (b *Booking) HasRoomType(name string) bool {
	for _, rt := range b.RoomTypes {
		if rt == name {
			return true
		}
	}
	return false
}

// BookingFilter narrows FindBookings. Zero fields are ignored.
type BookingFilter struct {
	HotelID        string
	RoomType       string
	Status         BookingStatus
	OwnerID        string
	CheckOutBefore time.Time
}

// StatusStats aggregates bookings of one status.
type StatusStats struct {
	Status       BookingStatus `json:"status"`
	Count        int64         `json:"count"`
	TotalRevenue float64       `json:"total_revenue"`
}
