package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/roombook/libs/httpx"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/bookings"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/rooms"
)

type conflictResponse struct {
	Error                string `json:"error"`
	ConflictingBookingID string `json:"conflicting_booking_id,omitempty"`
}

// writeServiceError maps service errors onto HTTP statuses. Unexpected errors are logged
// and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var conflictErr *bookings.ConflictError
	switch {
	case errors.Is(err, bookings.ErrInvalidRange),
		errors.Is(err, bookings.ErrValidation),
		errors.Is(err, rooms.ErrValidation):
		httpx.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bookings.ErrForbidden), errors.Is(err, rooms.ErrForbidden):
		httpx.WriteError(w, http.StatusForbidden, "forbidden")
	case errors.Is(err, bookings.ErrNotFound):
		httpx.WriteError(w, http.StatusNotFound, "not found")
	case errors.As(err, &conflictErr):
		httpx.WriteJSON(w, http.StatusConflict, conflictResponse{
			Error:                bookings.ErrBookingConflict.Error(),
			ConflictingBookingID: conflictErr.BookingID,
		})
	case errors.Is(err, bookings.ErrBookingConflict), errors.Is(err, bookings.ErrBookingCancelled):
		httpx.WriteError(w, http.StatusConflict, err.Error())
	case errors.Is(err, bookings.ErrRoomInactive):
		httpx.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path,
			"request_id", httpx.RequestIDFromContext(r.Context()), "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "internal error")
	}
}
