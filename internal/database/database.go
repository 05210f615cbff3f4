package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound               = errors.New("record not found")
	ErrConcurrentModification = errors.New("booking was modified concurrently")
)

type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	inMemory := path == ":memory:" || strings.HasPrefix(path, "file::memory:")
	if !inMemory {
		// Создаем директорию для БД, если её нет
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path+dsnOptions(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if inMemory {
		// каждое соединение к :memory: получает свою пустую базу
		sqlDB.SetMaxOpenConns(1)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, logger: logger}
	if err := db.createTables(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return db, nil
}

func dsnOptions(path string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return sep + "_foreign_keys=on&_busy_timeout=5000"
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS hotels (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			location TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			photos TEXT NOT NULL DEFAULT '[]'
		)`,
		`CREATE TABLE IF NOT EXISTS room_types (
			hotel_id TEXT NOT NULL REFERENCES hotels(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			price REAL NOT NULL DEFAULT 0,
			capacity INTEGER NOT NULL DEFAULT 0,
			size TEXT NOT NULL DEFAULT '',
			beds TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL DEFAULT 0,
			UNIQUE(hotel_id, name)
		)`,
		// room_types бронирования хранятся JSON-массивом имён, без внешнего ключа
		`CREATE TABLE IF NOT EXISTS bookings (
			id TEXT PRIMARY KEY,
			booking_number TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			hotel_id TEXT NOT NULL,
			hotel_name TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			image TEXT NOT NULL DEFAULT '',
			room_types TEXT NOT NULL,
			check_in TEXT NOT NULL,
			check_out TEXT NOT NULL,
			guests INTEGER NOT NULL,
			total_price REAL NOT NULL,
			status TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_hotel_status ON bookings(hotel_id, status)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_owner ON bookings(owner_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status_checkout ON bookings(status, check_out)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}
