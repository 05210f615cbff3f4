package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"hotelbook/internal/config"
	"hotelbook/internal/models"
	"hotelbook/internal/service"

	"github.com/rs/zerolog"
)

// BookingAPI is the booking surface the HTTP layer drives.
type BookingAPI interface {
	CreateBooking(ctx context.Context, ownerID string, req service.CreateBookingRequest) (*models.Booking, error)
	GetBooking(ctx context.Context, requesterID, id string) (*models.Booking, error)
	ListUserBookings(ctx context.Context, ownerID, status string) ([]models.Booking, error)
	ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error)
	Stats(ctx context.Context) ([]models.StatusStats, error)
	UpdateStatus(ctx context.Context, ownerID, id, status string) (*models.Booking, error)
	CancelBooking(ctx context.Context, ownerID, id string) (*models.Booking, error)
}

type AvailabilityAPI interface {
	HotelAvailability(ctx context.Context, hotelID string, checkIn, checkOut time.Time) (*models.HotelAvailability, error)
	BulkAvailability(ctx context.Context, hotelIDs []string, checkIn, checkOut time.Time) ([]models.HotelAvailability, error)
}

// Pinger backs the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HTTPServer struct {
	cfg          config.APIConfig
	bookings     BookingAPI
	availability AvailabilityAPI
	db           Pinger
	server       *http.Server
	auth         *HTTPAuth
	logger       *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	bookings BookingAPI,
	availability AvailabilityAPI,
	db Pinger,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		bookings:     bookings,
		availability: availability,
		db:           db,
		auth:         NewHTTPAuth(cfg),
		logger:       logger,
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           loggingMiddleware(logger, srv.routes()),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/bookings", s.auth.RequireUser(s.handleCreateBooking))
	mux.HandleFunc("GET /api/v1/bookings/my", s.auth.RequireUser(s.handleMyBookings))
	mux.HandleFunc("GET /api/v1/bookings/{id}", s.auth.RequireUser(s.handleGetBooking))
	mux.HandleFunc("PUT /api/v1/bookings/{id}", s.auth.RequireUser(s.handleUpdateStatus))
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", s.auth.RequireUser(s.handleCancelBooking))

	mux.HandleFunc("GET /api/v1/bookings", s.auth.RequireAdmin(s.handleListBookings))
	mux.HandleFunc("GET /api/v1/bookings/stats", s.auth.RequireAdmin(s.handleStats))
	mux.HandleFunc("GET /api/v1/bookings/export", s.auth.RequireAdmin(s.handleExport))

	mux.HandleFunc("GET /api/v1/hotels/{id}/availability", s.auth.Public(s.handleHotelAvailability))
	mux.HandleFunc("GET /api/v1/availability", s.auth.Public(s.handleBulkAvailability))

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	return mux
}

// Handler exposes the full middleware chain, mostly for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.Ping(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("readiness check failed")
		writeError(w, http.StatusServiceUnavailable, "not_ready", "database unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
