package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"hotelbook/internal/domain"
	"hotelbook/internal/export"
	"hotelbook/internal/models"
	"hotelbook/internal/service"
)

type createBookingRequest struct {
	HotelID    string   `json:"hotel_id"`
	CheckIn    string   `json:"check_in"`
	CheckOut   string   `json:"check_out"`
	Guests     int      `json:"guests"`
	RoomTypes  []string `json:"room_types"`
	TotalPrice *float64 `json:"total_price"`
}

// missingFields mirrors the first admission check on the raw body, so that a
// request lacking fields is reported as such even when its dates are malformed.
func (r *createBookingRequest) missingFields() bool {
	return strings.TrimSpace(r.HotelID) == "" ||
		strings.TrimSpace(r.CheckIn) == "" || strings.TrimSpace(r.CheckOut) == "" ||
		r.Guests <= 0 || len(r.RoomTypes) == 0 ||
		r.TotalPrice == nil || *r.TotalPrice < 0
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type bookingResponse struct {
	ID            string   `json:"id"`
	BookingNumber string   `json:"booking_number"`
	OwnerID       string   `json:"owner_id"`
	HotelID       string   `json:"hotel_id"`
	HotelName     string   `json:"hotel_name"`
	Location      string   `json:"location"`
	Image         string   `json:"image"`
	RoomTypes     []string `json:"room_types"`
	CheckIn       string   `json:"check_in"`
	CheckOut      string   `json:"check_out"`
	Guests        int      `json:"guests"`
	TotalPrice    float64  `json:"total_price"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
}

func toBookingResponse(b *models.Booking) bookingResponse {
	return bookingResponse{
		ID:            b.ID,
		BookingNumber: b.BookingNumber,
		OwnerID:       b.OwnerID,
		HotelID:       b.HotelID,
		HotelName:     b.HotelName,
		Location:      b.Location,
		Image:         b.Image,
		RoomTypes:     b.RoomTypes,
		CheckIn:       b.CheckIn.Format(models.DateLayout),
		CheckOut:      b.CheckOut.Format(models.DateLayout),
		Guests:        b.Guests,
		TotalPrice:    b.TotalPrice,
		Status:        b.Status.String(),
		CreatedAt:     b.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toBookingResponses(list []models.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(list))
	for i := range list {
		out = append(out, toBookingResponse(&list[i]))
	}
	return out
}

// parseDate accepts a bare date or an RFC3339 timestamp. Empty input yields the zero
// time so that admission reports missing fields rather than bad dates.
func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(models.DateLayout, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, domain.ErrInvalidDates
}

func parseStay(r *http.Request) (time.Time, time.Time, error) {
	checkIn, err := parseDate(r.URL.Query().Get("check_in"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	checkOut, err := parseDate(r.URL.Query().Get("check_out"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return checkIn, checkOut, nil
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var body createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be a JSON object")
		return
	}

	// отсутствующие поля проверяются раньше, чем формат дат
	if body.missingFields() {
		writeServiceError(w, s.logger, domain.ErrMissingFields)
		return
	}
	checkIn, err := parseDate(body.CheckIn)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	checkOut, err := parseDate(body.CheckOut)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	booking, err := s.bookings.CreateBooking(r.Context(), id.UserID, service.CreateBookingRequest{
		HotelID:    strings.TrimSpace(body.HotelID),
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Guests:     body.Guests,
		RoomTypes:  body.RoomTypes,
		TotalPrice: body.TotalPrice,
	})
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	list, err := s.bookings.ListUserBookings(r.Context(), id.UserID, r.URL.Query().Get("status"))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": toBookingResponses(list)})
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	booking, err := s.bookings.GetBooking(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (s *HTTPServer) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	var body updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "request body must be a JSON object")
		return
	}

	booking, err := s.bookings.UpdateStatus(r.Context(), id.UserID, r.PathValue("id"), body.Status)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	id, _ := IdentityFrom(r.Context())

	booking, err := s.bookings.CancelBooking(r.Context(), id.UserID, r.PathValue("id"))
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func adminFilter(r *http.Request) (models.BookingFilter, error) {
	q := r.URL.Query()
	filter := models.BookingFilter{
		HotelID:  q.Get("hotel_id"),
		RoomType: q.Get("room_type"),
		OwnerID:  q.Get("owner_id"),
	}
	if raw := q.Get("status"); raw != "" {
		status, err := models.ParseBookingStatus(raw)
		if err != nil {
			return filter, domain.ErrInvalidStatus
		}
		filter.Status = status
	}
	return filter, nil
}

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	filter, err := adminFilter(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	list, err := s.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": toBookingResponses(list)})
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.bookings.Stats(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"stats": stats})
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	filter, err := adminFilter(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	list, err := s.bookings.ListBookings(r.Context(), filter)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	stats, err := s.bookings.Stats(r.Context())
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="bookings-%s.xlsx"`, time.Now().UTC().Format("20060102")))
	if err := export.WriteBookingsXLSX(w, list, stats); err != nil {
		// заголовки уже ушли, остаётся только лог
		s.logger.Error().Err(err).Msg("failed to write bookings export")
	}
}

func (s *HTTPServer) handleHotelAvailability(w http.ResponseWriter, r *http.Request) {
	checkIn, checkOut, err := parseStay(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	view, err := s.availability.HotelAvailability(r.Context(), r.PathValue("id"), checkIn, checkOut)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *HTTPServer) handleBulkAvailability(w http.ResponseWriter, r *http.Request) {
	ids := splitCSV(r.URL.Query().Get("hotel_ids"))
	if len(ids) == 0 {
		writeServiceError(w, s.logger, domain.ErrMissingFields)
		return
	}

	checkIn, checkOut, err := parseStay(r)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}

	views, err := s.availability.BulkAvailability(r.Context(), ids, checkIn, checkOut)
	if err != nil {
		writeServiceError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hotels": views})
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
