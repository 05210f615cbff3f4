package events

import (
	"time"

	"hotelbook/internal/models"
)

const (
	EventBookingCreated   = "booking_created"
	EventBookingCancelled = "booking_cancelled"
	EventBookingCompleted = "booking_completed"
)

// BookingEventTypes lists every lifecycle event the booking service emits.
var BookingEventTypes = []string{EventBookingCreated, EventBookingCancelled, EventBookingCompleted}

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID     string               `json:"booking_id"`
	BookingNumber string               `json:"booking_number"`
	OwnerID       string               `json:"owner_id"`
	HotelID       string               `json:"hotel_id"`
	RoomTypes     []string             `json:"room_types"`
	CheckIn       string               `json:"check_in"`
	CheckOut      string               `json:"check_out"`
	Status        models.BookingStatus `json:"status"`
	TotalPrice    float64              `json:"total_price"`
	ChangedBy     string               `json:"changed_by,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func NewBookingEventPayload(b *models.Booking, changedBy string, at time.Time) BookingEventPayload {
	return BookingEventPayload{
		BookingID:     b.ID,
		BookingNumber: b.BookingNumber,
		OwnerID:       b.OwnerID,
		HotelID:       b.HotelID,
		RoomTypes:     b.RoomTypes,
		CheckIn:       b.CheckIn.Format(models.DateLayout),
		CheckOut:      b.CheckOut.Format(models.DateLayout),
		Status:        b.Status,
		TotalPrice:    b.TotalPrice,
		ChangedBy:     changedBy,
		OccurredAt:    at,
	}
}
