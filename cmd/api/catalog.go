package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"hotelbook/internal/models"

	"gopkg.in/yaml.v2"
)

type catalogFile struct {
	Hotels []models.Hotel `yaml:"hotels"`
}

type hotelWriter interface {
	UpsertHotel(ctx context.Context, hotel *models.Hotel) error
}

// loadCatalog reads the hotel seed file. Hotels need an id and room type names
// must be unique within a hotel.
func loadCatalog(path string) ([]models.Hotel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var catalog catalogFile
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	seen := make(map[string]struct{}, len(catalog.Hotels))
	for _, h := range catalog.Hotels {
		if h.ID == "" {
			return nil, errors.New("catalog: hotel without id")
		}
		if _, dup := seen[h.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate hotel %q", h.ID)
		}
		seen[h.ID] = struct{}{}

		names := make(map[string]struct{}, len(h.RoomTypes))
		for _, rt := range h.RoomTypes {
			if rt.Name == "" {
				return nil, fmt.Errorf("catalog: hotel %q has a room type without name", h.ID)
			}
			if _, dup := names[rt.Name]; dup {
				return nil, fmt.Errorf("catalog: hotel %q lists room type %q twice", h.ID, rt.Name)
			}
			names[rt.Name] = struct{}{}
		}
	}
	return catalog.Hotels, nil
}

func seedHotels(ctx context.Context, db hotelWriter, hotels []models.Hotel) error {
	for i := range hotels {
		if err := db.UpsertHotel(ctx, &hotels[i]); err != nil {
			return fmt.Errorf("seed hotel %s: %w", hotels[i].ID, err)
		}
	}
	return nil
}
