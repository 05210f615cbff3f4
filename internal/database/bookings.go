package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"hotelbook/internal/models"

	"github.com/google/uuid"
)

const bookingColumns = `id, booking_number, owner_id, hotel_id, hotel_name, location, image,
	room_types, check_in, check_out, guests, total_price, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// InsertBooking stores a new booking. ID and timestamps are filled in when empty.
func (db *DB) InsertBooking(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = booking.CreatedAt

	roomTypes, err := json.Marshal(booking.RoomTypes)
	if err != nil {
		return fmt.Errorf("failed to encode room types: %w", err)
	}

	query := `INSERT INTO bookings (` + bookingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.ExecContext(ctx, query,
		booking.ID,
		booking.BookingNumber,
		booking.OwnerID,
		booking.HotelID,
		booking.HotelName,
		booking.Location,
		booking.Image,
		string(roomTypes),
		booking.CheckIn.Format(models.DateLayout),
		booking.CheckOut.Format(models.DateLayout),
		booking.Guests,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id string) (*models.Booking, error) {
	row := db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return b, nil
}

// FindBookings returns bookings matching every non-zero filter field, newest first.
// RoomType matches when the name appears anywhere in the booking's room types.
func (db *DB) FindBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	var where []string
	var args []interface{}

	if filter.HotelID != "" {
		where = append(where, "hotel_id = ?")
		args = append(args, filter.HotelID)
	}
	if filter.RoomType != "" {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(bookings.room_types) WHERE json_each.value = ?)")
		args = append(args, filter.RoomType)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.OwnerID != "" {
		where = append(where, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}
	if !filter.CheckOutBefore.IsZero() {
		where = append(where, "check_out < ?")
		args = append(args, filter.CheckOutBefore.Format(models.DateLayout))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to find bookings: %w", err)
	}
	defer rows.Close()

	bookings := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bookings: %w", err)
	}
	return bookings, nil
}

// UpdateBookingStatus moves the booking from one status to another only if it is
// still in from. A missing booking gives ErrNotFound, a changed one ErrConcurrentModification.
func (db *DB) UpdateBookingStatus(ctx context.Context, id string, from, to models.BookingStatus) (*models.Booking, error) {
	query := `UPDATE bookings SET status = ?, updated_at = ? WHERE id = ? AND status = ?`
	result, err := db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		if _, err := db.GetBooking(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrConcurrentModification
	}
	return db.GetBooking(ctx, id)
}

func (db *DB) GetBookingStats(ctx context.Context) ([]models.StatusStats, error) {
	rows, err := db.QueryContext(ctx, `SELECT status, COUNT(*), COALESCE(SUM(total_price), 0)
		FROM bookings GROUP BY status ORDER BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}
	defer rows.Close()

	stats := []models.StatusStats{}
	for rows.Next() {
		var s models.StatusStats
		if err := rows.Scan(&s.Status, &s.Count, &s.TotalRevenue); err != nil {
			return nil, fmt.Errorf("failed to scan booking stats: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	b := &models.Booking{}
	var roomTypes, checkIn, checkOut string
	err := row.Scan(
		&b.ID, &b.BookingNumber, &b.OwnerID, &b.HotelID, &b.HotelName, &b.Location, &b.Image,
		&roomTypes, &checkIn, &checkOut, &b.Guests, &b.TotalPrice, &b.Status,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(roomTypes), &b.RoomTypes); err != nil {
		return nil, fmt.Errorf("failed to decode room types of booking %s: %w", b.ID, err)
	}
	if b.CheckIn, err = time.Parse(models.DateLayout, checkIn); err != nil {
		return nil, fmt.Errorf("failed to parse check_in of booking %s: %w", b.ID, err)
	}
	if b.CheckOut, err = time.Parse(models.DateLayout, checkOut); err != nil {
		return nil, fmt.Errorf("failed to parse check_out of booking %s: %w", b.ID, err)
	}
	return b, nil
}
