package models

import "time"

const (
	// SoldOutRoomTypeThreshold is the number of distinct booked room types at which
	// a hotel is shown as sold out.
	SoldOutRoomTypeThreshold = 3

	// BookingNumberPrefix starts every human-facing booking number.
	BookingNumberPrefix = "BK"

	// DateLayout is the calendar date format used on the wire and in storage.
	DateLayout = "2006-01-02"

	// DefaultSnapshotTTL время жизни кэша снимка предстоящих бронирований
	DefaultSnapshotTTL = 30 * time.Second

	// DefaultCompletionInterval период проверки завершённых проживаний
	DefaultCompletionInterval = time.Hour
)
