package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"hotelbook/internal/database"
	"hotelbook/internal/domain"
	"hotelbook/internal/events"
	"hotelbook/internal/models"
	"hotelbook/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scenario struct {
	db       *database.DB
	svc      *BookingService
	avail    *AvailabilityService
	received []string
}

func newScenario(t *testing.T) *scenario {
	t.Helper()
	db, err := database.NewDB(":memory:", nopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.UpsertHotel(context.Background(), testHotel()))

	sc := &scenario{db: db}
	bus := events.NewEventBus()
	bus.Subscribe(func(e *events.Event) error {
		var p events.BookingEventPayload
		if err := json.Unmarshal(e.Payload, &p); err != nil {
			return err
		}
		sc.received = append(sc.received, e.Type+":"+p.BookingID)
		return nil
	}, events.BookingEventTypes...)

	cache := repository.NewMemorySnapshotCache()
	sc.svc = NewBookingService(db, db, bus, nopLogger(),
		WithClock(&fixedClock{now: testNow}),
		WithSnapshotCache(cache),
	)
	sc.avail = NewAvailabilityService(db, db, cache, 0, nopLogger())
	return sc
}

func (sc *scenario) book(t *testing.T, owner string, in, out string, roomTypes ...string) (*models.Booking, error) {
	t.Helper()
	return sc.svc.CreateBooking(context.Background(), owner, CreateBookingRequest{
		HotelID:    "hotel-h",
		CheckIn:    day(in),
		CheckOut:   day(out),
		Guests:     2,
		RoomTypes:  roomTypes,
		TotalPrice: price(100),
	})
}

func TestScenario_OverlappingStandardIsRejected(t *testing.T) {
	sc := newScenario(t)

	existing, err := sc.book(t, "guest-a", "2025-06-01", "2025-06-05", "Standard")
	require.NoError(t, err)

	_, err = sc.book(t, "guest-b", "2025-06-04", "2025-06-06", "Standard")
	require.ErrorIs(t, err, domain.ErrUnavailable)

	u := domain.AsUnavailable(err)
	require.Len(t, u.Conflicts, 1)
	assert.Equal(t, "Standard", u.Conflicts[0].RoomType)
	require.Len(t, u.Conflicts[0].Conflicts, 1)
	assert.Equal(t, existing.ID, u.Conflicts[0].Conflicts[0].ID)

	mine, err := sc.svc.ListUserBookings(context.Background(), "guest-b", "")
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestScenario_OtherRoomTypeIsAdmitted(t *testing.T) {
	sc := newScenario(t)

	_, err := sc.book(t, "guest-a", "2025-06-01", "2025-06-05", "Standard")
	require.NoError(t, err)

	b, err := sc.book(t, "guest-b", "2025-06-04", "2025-06-06", "Deluxe")
	require.NoError(t, err)
	assert.Equal(t, models.StatusUpcoming, b.Status)
	assert.True(t, strings.HasPrefix(b.BookingNumber, "BK"))

	stored, err := sc.db.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.BookingNumber, stored.BookingNumber)
	assert.Equal(t, "Harbour House", stored.HotelName)
	assert.Equal(t, "cover.jpg", stored.Image)
}

func TestScenario_CancellationFreesTheRoom(t *testing.T) {
	sc := newScenario(t)
	ctx := context.Background()

	first, err := sc.book(t, "guest-b", "2025-06-04", "2025-06-06", "Deluxe")
	require.NoError(t, err)

	_, err = sc.book(t, "guest-c", "2025-06-04", "2025-06-06", "Deluxe")
	require.ErrorIs(t, err, domain.ErrUnavailable)

	_, err = sc.svc.CancelBooking(ctx, "guest-b", first.ID)
	require.NoError(t, err)

	second, err := sc.book(t, "guest-c", "2025-06-04", "2025-06-06", "Deluxe")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	assert.Equal(t, []string{
		events.EventBookingCreated + ":" + first.ID,
		events.EventBookingCancelled + ":" + first.ID,
		events.EventBookingCreated + ":" + second.ID,
	}, sc.received)
}

func TestScenario_SameDayStayIsInvalid(t *testing.T) {
	sc := newScenario(t)

	_, err := sc.book(t, "guest-a", "2025-06-04", "2025-06-04", "Standard")
	assert.ErrorIs(t, err, domain.ErrInvalidDates)

	_, err = sc.svc.CreateBooking(context.Background(), "guest-a", CreateBookingRequest{
		HotelID:    "no-such-hotel",
		CheckIn:    day("2025-06-04"),
		CheckOut:   day("2025-06-04"),
		Guests:     1,
		RoomTypes:  []string{"Igloo"},
		TotalPrice: price(10),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidDates)
}

func TestScenario_AllOrNothingLeavesNoRecord(t *testing.T) {
	sc := newScenario(t)
	ctx := context.Background()

	_, err := sc.book(t, "guest-a", "2025-06-01", "2025-06-05", "Deluxe")
	require.NoError(t, err)

	_, err = sc.book(t, "guest-b", "2025-06-04", "2025-06-06", "Deluxe", "Suite")
	require.ErrorIs(t, err, domain.ErrUnavailable)

	suites, err := sc.db.FindBookings(ctx, models.BookingFilter{HotelID: "hotel-h", RoomType: "Suite"})
	require.NoError(t, err)
	assert.Empty(t, suites)
}

func TestScenario_ConflictCheckIsRepeatable(t *testing.T) {
	sc := newScenario(t)
	ctx := context.Background()

	_, err := sc.book(t, "guest-a", "2025-06-01", "2025-06-05", "Suite")
	require.NoError(t, err)

	first, err := sc.svc.FindConflicts(ctx, "hotel-h", "Suite", day("2025-06-03"), day("2025-06-04"))
	require.NoError(t, err)
	second, err := sc.svc.FindConflicts(ctx, "hotel-h", "Suite", day("2025-06-03"), day("2025-06-04"))
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 1)
}

func TestScenario_CancelledStaysCancelled(t *testing.T) {
	sc := newScenario(t)
	ctx := context.Background()

	b, err := sc.book(t, "guest-a", "2025-06-01", "2025-06-05", "Suite")
	require.NoError(t, err)
	_, err = sc.svc.CancelBooking(ctx, "guest-a", b.ID)
	require.NoError(t, err)

	for _, status := range []string{"upcoming", "completed", "cancelled"} {
		_, err = sc.svc.UpdateStatus(ctx, "guest-a", b.ID, status)
		assert.ErrorIs(t, err, domain.ErrAlreadyCancelled, status)
	}
	_, err = sc.svc.CompleteBooking(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	stored, err := sc.db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)
}

func TestScenario_AvailabilityFollowsWrites(t *testing.T) {
	sc := newScenario(t)
	ctx := context.Background()
	in, out := day("2025-06-04"), day("2025-06-06")

	view, err := sc.avail.HotelAvailability(ctx, "hotel-h", in, out)
	require.NoError(t, err)
	assert.Len(t, view.AvailableRoomTypes, 3)

	// the snapshot is cached now; admissions must drop it
	_, err = sc.book(t, "guest-a", "2025-06-01", "2025-06-05", "Standard")
	require.NoError(t, err)
	_, err = sc.book(t, "guest-b", "2025-06-05", "2025-06-07", "Deluxe", "Suite")
	require.NoError(t, err)

	soldOut, err := sc.avail.IsHotelLikelySoldOut(ctx, "hotel-h", in, out)
	require.NoError(t, err)
	assert.True(t, soldOut)

	view, err = sc.avail.HotelAvailability(ctx, "hotel-h", in, out)
	require.NoError(t, err)
	assert.False(t, view.HasAvailableRooms)
}

func TestScenario_CompletionSweep(t *testing.T) {
	sc := newScenario(t)
	ctx := context.Background()

	b, err := sc.book(t, "guest-a", "2025-05-01", "2025-05-03", "Standard")
	require.NoError(t, err)

	n, err := sc.svc.CompleteDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	// checkout day itself is not over yet
	checkoutDay := NewBookingService(sc.db, sc.db, nil, nopLogger(),
		WithClock(&fixedClock{now: day("2025-05-03").Add(23 * time.Hour)}))
	n, err = checkoutDay.CompleteDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	later := NewBookingService(sc.db, sc.db, nil, nopLogger(),
		WithClock(&fixedClock{now: day("2025-05-04").Add(11 * time.Hour)}))
	n, err = later.CompleteDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := sc.db.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)

	_, err = sc.svc.CancelBooking(ctx, "guest-a", b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}
