package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/roombook/libs/httpx"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/bookings"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/rooms"
)

type Handler struct {
	bookings *bookings.Service
	rooms    *rooms.Service
	logger   *slog.Logger
	now      func() time.Time
}

func New(bookingSvc *bookings.Service, roomSvc *rooms.Service, logger *slog.Logger) *Handler {
	return &Handler{bookings: bookingSvc, rooms: roomSvc, logger: logger, now: time.Now}
}

// Register mounts the API on mux. Every route requires a bearer token.
func (h *Handler) Register(mux *http.ServeMux, verifier TokenVerifier) {
	authed := RequireAuth(verifier)
	handle := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, authed(fn))
	}
	admin := func(fn http.HandlerFunc) http.HandlerFunc {
		return requireRole(fn, model.RoleAdmin)
	}

	handle("GET /api/v1/rooms", h.listRooms)
	handle("POST /api/v1/rooms", admin(h.createRoom))
	handle("GET /api/v1/rooms/{id}", h.getRoom)
	handle("PATCH /api/v1/rooms/{id}", admin(h.updateRoom))
	handle("POST /api/v1/rooms/{id}/active", admin(h.setRoomActive))
	handle("GET /api/v1/rooms/{id}/free-slots", h.freeSlots)
	handle("GET /api/v1/rooms/{id}/slots", h.slots)

	handle("GET /api/v1/bookings", h.listBookings)
	handle("POST /api/v1/bookings", h.createBooking)
	handle("GET /api/v1/bookings/{id}", h.getBooking)
	handle("PATCH /api/v1/bookings/{id}", h.updateBooking)
	handle("POST /api/v1/bookings/{id}/cancel", h.cancelBooking)
	handle("POST /api/v1/bookings/{id}/confirm", admin(h.confirmBooking))

	handle("GET /api/v1/calendar/week", h.week)
	handle("GET /api/v1/dashboard", h.dashboard)

	handle("GET /api/v1/organization", h.getOrganization)
	handle("PUT /api/v1/organization", admin(h.updateOrganization))
}

// actor is only called behind RequireAuth.
func actor(r *http.Request) model.Actor {
	a, _ := ActorFromContext(r.Context())
	return a
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	writeServiceError(w, r, h.logger, err)
}

func badRequest(w http.ResponseWriter, err error) {
	httpx.WriteError(w, http.StatusBadRequest, err.Error())
}
