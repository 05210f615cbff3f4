package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"hotelbook/internal/models"
)

// UpsertHotel replaces the hotel row and its full room-type list.
func (db *DB) UpsertHotel(ctx context.Context, hotel *models.Hotel) error {
	photos, err := json.Marshal(nonNil(hotel.Photos))
	if err != nil {
		return fmt.Errorf("failed to encode photos: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO hotels (id, name, location, address, photos) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, location = excluded.location,
			address = excluded.address, photos = excluded.photos`,
		hotel.ID, hotel.Name, hotel.Location, hotel.Address, string(photos))
	if err != nil {
		return fmt.Errorf("failed to upsert hotel: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM room_types WHERE hotel_id = ?`, hotel.ID); err != nil {
		return fmt.Errorf("failed to clear room types: %w", err)
	}
	for i, rt := range hotel.RoomTypes {
		_, err = tx.ExecContext(ctx, `INSERT INTO room_types (hotel_id, name, price, capacity, size, beds, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			hotel.ID, rt.Name, rt.Price, rt.Capacity, rt.Size, rt.Beds, i)
		if err != nil {
			return fmt.Errorf("failed to insert room type %q: %w", rt.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit hotel: %w", err)
	}
	return nil
}

func (db *DB) GetHotel(ctx context.Context, id string) (*models.Hotel, error) {
	h := &models.Hotel{}
	var photos string
	err := db.QueryRowContext(ctx, `SELECT id, name, location, address, photos FROM hotels WHERE id = ?`, id).
		Scan(&h.ID, &h.Name, &h.Location, &h.Address, &photos)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hotel: %w", err)
	}
	if err := json.Unmarshal([]byte(photos), &h.Photos); err != nil {
		return nil, fmt.Errorf("failed to decode photos of hotel %s: %w", id, err)
	}

	roomTypes, err := db.roomTypesByHotel(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	h.RoomTypes = roomTypes[id]
	return h, nil
}

// ListHotels returns hotels by id, or every hotel when ids is empty. Unknown ids are skipped.
func (db *DB) ListHotels(ctx context.Context, ids []string) ([]models.Hotel, error) {
	query := `SELECT id, name, location, address, photos FROM hotels`
	args := make([]interface{}, 0, len(ids))
	if len(ids) > 0 {
		query += ` WHERE id IN (` + placeholders(len(ids)) + `)`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += ` ORDER BY name, id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list hotels: %w", err)
	}

	var hotels []models.Hotel
	for rows.Next() {
		var h models.Hotel
		var photos string
		if err := rows.Scan(&h.ID, &h.Name, &h.Location, &h.Address, &photos); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan hotel: %w", err)
		}
		if err := json.Unmarshal([]byte(photos), &h.Photos); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to decode photos of hotel %s: %w", h.ID, err)
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("failed to iterate hotels: %w", err)
	}
	rows.Close()

	if len(hotels) == 0 {
		return hotels, nil
	}
	hotelIDs := make([]string, len(hotels))
	for i := range hotels {
		hotelIDs[i] = hotels[i].ID
	}
	roomTypes, err := db.roomTypesByHotel(ctx, hotelIDs)
	if err != nil {
		return nil, err
	}
	for i := range hotels {
		hotels[i].RoomTypes = roomTypes[hotels[i].ID]
	}
	return hotels, nil
}

func (db *DB) roomTypesByHotel(ctx context.Context, hotelIDs []string) (map[string][]models.RoomType, error) {
	args := make([]interface{}, len(hotelIDs))
	for i, id := range hotelIDs {
		args[i] = id
	}
	rows, err := db.QueryContext(ctx, `SELECT hotel_id, name, price, capacity, size, beds FROM room_types
		WHERE hotel_id IN (`+placeholders(len(hotelIDs))+`) ORDER BY hotel_id, position`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get room types: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.RoomType, len(hotelIDs))
	for rows.Next() {
		var hotelID string
		var rt models.RoomType
		if err := rows.Scan(&hotelID, &rt.Name, &rt.Price, &rt.Capacity, &rt.Size, &rt.Beds); err != nil {
			return nil, fmt.Errorf("failed to scan room type: %w", err)
		}
		out[hotelID] = append(out[hotelID], rt)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
