package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelbook/internal/availability"
	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/metrics"
	"hotelbook/internal/models"

	"github.com/rs/zerolog"
)

// CreateBookingRequest is the raw admission input. TotalPrice is a pointer so that
// an omitted price can be told apart from a free stay.
type CreateBookingRequest struct {
	HotelID    string
	CheckIn    time.Time
	CheckOut   time.Time
	Guests     int
	RoomTypes  []string
	TotalPrice *float64
}

type BookingService struct {
	hotels    domain.HotelRepository
	bookings  domain.BookingRepository
	eventBus  domain.EventPublisher
	snapshots domain.SnapshotCache
	clock     domain.Clock
	numbers   domain.NumberGenerator
	logger    *zerolog.Logger
}

type Option func(*BookingService)

func WithClock(c domain.Clock) Option {
	return func(s *BookingService) { s.clock = c }
}

func WithNumberGenerator(g domain.NumberGenerator) Option {
	return func(s *BookingService) { s.numbers = g }
}

// WithSnapshotCache makes writes drop the cached upcoming-bookings snapshot.
func WithSnapshotCache(c domain.SnapshotCache) Option {
	return func(s *BookingService) { s.snapshots = c }
}

func NewBookingService(
	hotels domain.HotelRepository,
	bookings domain.BookingRepository,
	eventBus domain.EventPublisher,
	logger *zerolog.Logger,
	opts ...Option,
) *BookingService {
	s := &BookingService{
		hotels:   hotels,
		bookings: bookings,
		eventBus: eventBus,
		clock:    domain.SystemClock{},
		numbers:  RandomNumberGenerator{},
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindConflicts returns the upcoming bookings of hotelID that include roomType and
// overlap [checkIn, checkOut). It never writes.
func (s *BookingService) FindConflicts(ctx context.Context, hotelID, roomType string, checkIn, checkOut time.Time) ([]models.Booking, error) {
	candidates, err := s.bookings.FindBookings(ctx, models.BookingFilter{
		HotelID:  hotelID,
		RoomType: roomType,
		Status:   models.StatusUpcoming,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for %s/%s: %w", hotelID, roomType, err)
	}

	newStart, newEnd := availability.StartOfDay(checkIn), availability.StartOfDay(checkOut)
	var conflicts []models.Booking
	for _, b := range candidates {
		if availability.Overlaps(availability.StartOfDay(b.CheckIn), availability.StartOfDay(b.CheckOut), newStart, newEnd) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}

// CreateBooking runs admission. Either every requested room type is free and one
// booking is stored, or nothing is written.
//
// The conflict check and the insert are not atomic: two concurrent requests for the
// same room type and dates can both be admitted.
func (s *BookingService) CreateBooking(ctx context.Context, ownerID string, req CreateBookingRequest) (*models.Booking, error) {
	booking, err := s.admit(ctx, ownerID, req)
	if err != nil {
		if code := domain.CodeOf(err); code != "" {
			metrics.IncAdmission(code)
			s.logger.Info().Err(err).Str("code", code).Str("hotel_id", req.HotelID).Str("owner_id", ownerID).Msg("booking rejected")
		}
		return nil, err
	}

	metrics.IncAdmission("admitted")
	s.logger.Info().
		Str("booking_id", booking.ID).
		Str("booking_number", booking.BookingNumber).
		Str("hotel_id", booking.HotelID).
		Strs("room_types", booking.RoomTypes).
		Msg("booking admitted")

	s.invalidateSnapshot(ctx)
	s.publishEvent(events.EventBookingCreated, booking, "owner")
	return booking, nil
}

func (s *BookingService) admit(ctx context.Context, ownerID string, req CreateBookingRequest) (*models.Booking, error) {
	if req.HotelID == "" || req.CheckIn.IsZero() || req.CheckOut.IsZero() || req.Guests <= 0 ||
		len(req.RoomTypes) == 0 || req.TotalPrice == nil || *req.TotalPrice < 0 {
		return nil, domain.ErrMissingFields
	}

	checkIn := availability.StartOfDay(req.CheckIn)
	checkOut := availability.StartOfDay(req.CheckOut)
	now := s.clock.Now().UTC()
	if checkIn.Before(availability.StartOfDay(now)) || !checkOut.After(checkIn) {
		return nil, domain.ErrInvalidDates
	}

	hotel, err := s.hotels.GetHotel(ctx, req.HotelID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.ErrHotelNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load hotel %s: %w", req.HotelID, err)
	}

	if invalid := unknownRoomTypes(hotel, req.RoomTypes); len(invalid) > 0 {
		return nil, &domain.InvalidRoomTypesError{Names: invalid}
	}

	var unavailable []domain.RoomTypeConflict
	for _, roomType := range req.RoomTypes {
		conflicts, err := s.FindConflicts(ctx, hotel.ID, roomType, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		if len(conflicts) > 0 {
			metrics.IncConflict(roomType)
			unavailable = append(unavailable, domain.RoomTypeConflict{RoomType: roomType, Conflicts: conflicts})
		}
	}
	if len(unavailable) > 0 {
		return nil, &domain.UnavailableError{Conflicts: unavailable}
	}

	booking := &models.Booking{
		BookingNumber: s.numbers.Next(now),
		OwnerID:       ownerID,
		HotelID:       hotel.ID,
		HotelName:     hotel.Name,
		Location:      hotel.Location,
		Image:         hotel.FirstPhoto(),
		RoomTypes:     append([]string(nil), req.RoomTypes...),
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		Guests:        req.Guests,
		TotalPrice:    *req.TotalPrice,
		Status:        models.StatusUpcoming,
		CreatedAt:     now,
	}
	if err := s.bookings.InsertBooking(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to store booking: %w", err)
	}
	return booking, nil
}

// unknownRoomTypes returns requested names the hotel does not offer, in request
// order and without repeats.
func unknownRoomTypes(hotel *models.Hotel, requested []string) []string {
	index := hotel.RoomTypeIndex()
	seen := make(map[string]bool)
	var invalid []string
	for _, name := range requested {
		if _, ok := index[name]; ok || seen[name] {
			continue
		}
		seen[name] = true
		invalid = append(invalid, name)
	}
	return invalid
}

// GetBooking returns the booking only to its owner.
func (s *BookingService) GetBooking(ctx context.Context, requesterID, id string) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != requesterID {
		return nil, domain.ErrNotAuthorized
	}
	return booking, nil
}

// ListUserBookings returns the owner's bookings, newest first. An empty status
// means all statuses.
func (s *BookingService) ListUserBookings(ctx context.Context, ownerID, status string) ([]models.Booking, error) {
	filter := models.BookingFilter{OwnerID: ownerID}
	if status != "" {
		parsed, err := models.ParseBookingStatus(status)
		if err != nil {
			return nil, domain.ErrInvalidStatus
		}
		filter.Status = parsed
	}
	bookings, err := s.bookings.FindBookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings of %s: %w", ownerID, err)
	}
	return bookings, nil
}

// ListBookings is the administrative listing over every owner.
func (s *BookingService) ListBookings(ctx context.Context, filter models.BookingFilter) ([]models.Booking, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	bookings, err := s.bookings.FindBookings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (s *BookingService) Stats(ctx context.Context) ([]models.StatusStats, error) {
	stats, err := s.bookings.GetBookingStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}
	return stats, nil
}

// UpdateStatus is the owner-initiated status change. Checks run in a fixed order:
// the booking exists, belongs to ownerID, is not cancelled, the status is known,
// and the transition is open to owners (only upcoming -> cancelled is).
func (s *BookingService) UpdateStatus(ctx context.Context, ownerID, id, status string) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.OwnerID != ownerID {
		return nil, domain.ErrNotAuthorized
	}
	if booking.Status == models.StatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	target, err := models.ParseBookingStatus(status)
	if err != nil {
		return nil, domain.ErrInvalidStatus
	}
	// completion belongs to the system, never to the guest
	if target != models.StatusCancelled || !booking.Status.CanTransitionTo(target) {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.transition(ctx, booking, target)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventBookingCancelled, updated, "owner")
	return updated, nil
}

func (s *BookingService) CancelBooking(ctx context.Context, ownerID, id string) (*models.Booking, error) {
	return s.UpdateStatus(ctx, ownerID, id, string(models.StatusCancelled))
}

// CompleteBooking moves an upcoming booking to completed on behalf of the system.
func (s *BookingService) CompleteBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == models.StatusCancelled {
		return nil, domain.ErrAlreadyCancelled
	}
	if !booking.Status.CanTransitionTo(models.StatusCompleted) {
		return nil, domain.ErrInvalidTransition
	}

	updated, err := s.transition(ctx, booking, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	s.publishEvent(events.EventBookingCompleted, updated, "system")
	return updated, nil
}

// CompleteDue completes every upcoming booking whose check-out day is over, i.e.
// check-out is before today (UTC). Bookings changed concurrently are skipped;
// storage failures are joined and the sweep continues.
func (s *BookingService) CompleteDue(ctx context.Context) (int, error) {
	today := availability.StartOfDay(s.clock.Now().UTC())
	due, err := s.bookings.FindBookings(ctx, models.BookingFilter{
		Status:         models.StatusUpcoming,
		CheckOutBefore: today,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to find due bookings: %w", err)
	}

	completed := 0
	var errs []error
	for _, b := range due {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		_, err := s.CompleteBooking(ctx, b.ID)
		switch {
		case err == nil:
			completed++
		case domain.CodeOf(err) != "":
			s.logger.Debug().Err(err).Str("booking_id", b.ID).Msg("booking skipped by completion sweep")
		default:
			errs = append(errs, err)
		}
	}
	return completed, errors.Join(errs...)
}

func (s *BookingService) loadBooking(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.bookings.GetBooking(ctx, id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load booking %s: %w", id, err)
	}
	return booking, nil
}

// transition applies from -> to guarded by the current status. If another writer got
// there first, the fresh state decides which rejection to report.
func (s *BookingService) transition(ctx context.Context, booking *models.Booking, to models.BookingStatus) (*models.Booking, error) {
	updated, err := s.bookings.UpdateBookingStatus(ctx, booking.ID, booking.Status, to)
	switch {
	case err == nil:
	case errors.Is(err, database.ErrConcurrentModification):
		current, loadErr := s.loadBooking(ctx, booking.ID)
		if loadErr == nil && current.Status == models.StatusCancelled {
			return nil, domain.ErrAlreadyCancelled
		}
		return nil, domain.ErrInvalidTransition
	case errors.Is(err, database.ErrNotFound):
		return nil, domain.ErrNotFound
	default:
		return nil, fmt.Errorf("failed to update booking %s: %w", booking.ID, err)
	}

	metrics.IncTransition(string(to))
	s.logger.Info().
		Str("booking_id", updated.ID).
		Str("from", string(booking.Status)).
		Str("to", string(to)).
		Msg("booking status changed")
	s.invalidateSnapshot(ctx)
	return updated, nil
}

func (s *BookingService) invalidateSnapshot(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	if err := s.snapshots.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("snapshot invalidation failed")
	}
}

func (s *BookingService) publishEvent(eventType string, booking *models.Booking, changedBy string) {
	if s.eventBus == nil {
		return
	}

	payload := events.NewBookingEventPayload(booking, changedBy, s.clock.Now().UTC())
	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
