package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"hotelbook/internal/database"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type hotelsFile struct {
	Hotels []models.Hotel `yaml:"hotels"`
}

// Imports a hotel catalog into an existing database without starting the API.
func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	var (
		hotelsPath = flag.String("hotels", "configs/hotels.yaml", "path to hotels.yaml")
		dbPath     = flag.String("db", "./data/hotelbook.db", "path to sqlite db")
		dryRun     = flag.Bool("dry-run", false, "only report what would change")
	)
	flag.Parse()

	data, err := os.ReadFile(*hotelsPath)
	if err != nil {
		return fmt.Errorf("read hotels: %w", err)
	}
	var file hotelsFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse hotels: %w", err)
	}
	if len(file.Hotels) == 0 {
		return fmt.Errorf("no hotels in yaml")
	}

	db, err := database.NewDB(*dbPath, &logger)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	created, updated, skipped := 0, 0, 0
	for i := range file.Hotels {
		h := &file.Hotels[i]
		if h.ID == "" {
			skipped++
			continue
		}

		_, err = db.GetHotel(ctx, h.ID)
		exists := err == nil
		if err != nil && !errors.Is(err, database.ErrNotFound) {
			return fmt.Errorf("get %s: %w", h.ID, err)
		}

		if !*dryRun {
			if err = db.UpsertHotel(ctx, h); err != nil {
				return fmt.Errorf("upsert %s: %w", h.ID, err)
			}
		}
		if exists {
			updated++
		} else {
			created++
		}
	}

	fmt.Printf("done: created=%d updated=%d skipped=%d dry_run=%t\n", created, updated, skipped, *dryRun)
	return nil
}
