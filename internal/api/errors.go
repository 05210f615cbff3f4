package api

import (
	"encoding/json"
	"net/http"

	"hotelbook/internal/domain"

	"github.com/rs/zerolog"
)

var statusByCode = map[string]int{
	domain.ErrMissingFields.Code:     http.StatusBadRequest,
	domain.ErrInvalidDates.Code:      http.StatusBadRequest,
	domain.ErrInvalidRoomTypes.Code:  http.StatusBadRequest,
	domain.ErrInvalidStatus.Code:     http.StatusBadRequest,
	domain.ErrHotelNotFound.Code:     http.StatusNotFound,
	domain.ErrNotFound.Code:          http.StatusNotFound,
	domain.ErrNotAuthorized.Code:     http.StatusForbidden,
	domain.ErrUnavailable.Code:       http.StatusConflict,
	domain.ErrAlreadyCancelled.Code:  http.StatusConflict,
	domain.ErrInvalidTransition.Code: http.StatusConflict,
}

type errorResponse struct {
	Error            string             `json:"error"`
	Message          string             `json:"message"`
	InvalidRoomTypes []string           `json:"invalid_room_types,omitempty"`
	UnavailableRooms []roomTypeConflict `json:"unavailable_rooms,omitempty"`
}

type roomTypeConflict struct {
	RoomType  string            `json:"room_type"`
	Conflicts []bookingResponse `json:"conflicts"`
}

// writeServiceError maps service errors to HTTP. Anything without a rejection code
// is an internal failure and its details stay in the log.
func writeServiceError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	code := domain.CodeOf(err)
	status, ok := statusByCode[code]
	if !ok {
		logger.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal", "internal server error")
		return
	}

	resp := errorResponse{Error: code, Message: err.Error()}
	if e := domain.AsInvalidRoomTypes(err); e != nil {
		resp.InvalidRoomTypes = e.Names
	}
	if e := domain.AsUnavailable(err); e != nil {
		for _, c := range e.Conflicts {
			resp.UnavailableRooms = append(resp.UnavailableRooms, roomTypeConflict{
				RoomType:  c.RoomType,
				Conflicts: toBookingResponses(c.Conflicts),
			})
		}
	}
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorResponse{Error: code, Message: message})
}
