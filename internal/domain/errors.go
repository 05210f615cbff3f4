package domain

import (
	"errors"
	"strings"

	"hotelbook/internal/models"
)

// Error is a rejection the caller can act on. Code is stable and goes on the wire.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrMissingFields     = &Error{Code: "missing_fields", Message: "required booking fields are missing"}
	ErrInvalidDates      = &Error{Code: "invalid_dates", Message: "check-in must not be in the past and check-out must be after check-in"}
	ErrHotelNotFound     = &Error{Code: "hotel_not_found", Message: "hotel not found"}
	ErrInvalidRoomTypes  = &Error{Code: "invalid_room_types", Message: "unknown room types requested"}
	ErrUnavailable       = &Error{Code: "unavailable", Message: "requested room types are not available for the selected dates"}
	ErrNotFound          = &Error{Code: "not_found", Message: "booking not found"}
	ErrNotAuthorized     = &Error{Code: "not_authorized", Message: "booking belongs to another user"}
	ErrAlreadyCancelled  = &Error{Code: "already_cancelled", Message: "booking is already cancelled"}
	ErrInvalidStatus     = &Error{Code: "invalid_status", Message: "unknown booking status"}
	ErrInvalidTransition = &Error{Code: "invalid_transition", Message: "status change is not allowed"}
)

// InvalidRoomTypesError lists requested names the hotel does not offer.
type InvalidRoomTypesError struct {
	Names []string
}

func (e *InvalidRoomTypesError) Error() string {
	return ErrInvalidRoomTypes.Message + ": " + strings.Join(e.Names, ", ")
}

func (e *InvalidRoomTypesError) Unwrap() error { return ErrInvalidRoomTypes }

// RoomTypeConflict is one requested room type together with the bookings blocking it.
type RoomTypeConflict struct {
	RoomType  string           `json:"room_type"`
	Conflicts []models.Booking `json:"conflicts"`
}

type UnavailableError struct {
	Conflicts []RoomTypeConflict
}

func (e *UnavailableError) Error() string {
	names := make([]string, 0, len(e.Conflicts))
	for _, c := range e.Conflicts {
		names = append(names, c.RoomType)
	}
	return ErrUnavailable.Message + ": " + strings.Join(names, ", ")
}

func (e *UnavailableError) Unwrap() error { return ErrUnavailable }

// AsUnavailable returns the structured conflict list carried by err, or nil.
func AsUnavailable(err error) *UnavailableError {
	var target *UnavailableError
	if errors.As(err, &target) {
		return target
	}
	return nil
}

func AsInvalidRoomTypes(err error) *InvalidRoomTypesError {
	var target *InvalidRoomTypesError
	if errors.As(err, &target) {
		return target
	}
	return nil
}

// CodeOf extracts the rejection code from err. Empty means an internal failure.
func CodeOf(err error) string {
	var target *Error
	if errors.As(err, &target) {
		return target.Code
	}
	return ""
}
