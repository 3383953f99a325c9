package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/md-rashed-zaman/roombook/libs/httpx"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/bookings"
)

type cellResponse struct {
	BookingID   string  `json:"booking_id"`
	DayIndex    int     `json:"day_index"`
	TopOffset   float64 `json:"top_offset"`
	PixelHeight float64 `json:"pixel_height"`
	Clamped     bool    `json:"clamped,omitempty"`
}

type weekResponse struct {
	WeekStart string            `json:"week_start"`
	Cells     []cellResponse    `json:"cells"`
	Bookings  []bookingResponse `json:"bookings"`
}

type dashboardResponse struct {
	Upcoming    []bookingResponse `json:"upcoming"`
	WeekStart   string            `json:"week_start"`
	WeeklyUsage []float64         `json:"weekly_usage_hours"`
}

func (h *Handler) week(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := bookings.WeekQuery{RoomID: q.Get("room_id"), Day: h.now()}
	if raw := q.Get("week_start"); raw != "" {
		day, err := parseDate("week_start", raw)
		if err != nil {
			badRequest(w, err)
			return
		}
		query.Day = day
	}
	if raw := q.Get("pixels_per_hour"); raw != "" {
		ppH, err := strconv.ParseFloat(raw, 64)
		if err != nil || ppH <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid pixels_per_hour")
			return
		}
		query.PixelsPerHour = ppH
	}
	if raw := q.Get("grid_start_hour"); raw != "" {
		hour, err := strconv.Atoi(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid grid_start_hour")
			return
		}
		query.GridStartHour = &hour
	}

	view, err := h.bookings.Week(r.Context(), query)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cells := make([]cellResponse, 0, len(view.Cells))
	for _, c := range view.Cells {
		cells = append(cells, cellResponse{
			BookingID:   c.BookingID,
			DayIndex:    c.DayIndex,
			TopOffset:   c.TopOffset,
			PixelHeight: c.PixelHeight,
			Clamped:     c.Clamped,
		})
	}
	httpx.WriteJSON(w, http.StatusOK, weekResponse{
		WeekStart: view.WeekStart.Format(time.RFC3339),
		Cells:     cells,
		Bookings:  toBookingResponses(view.Bookings),
	})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.bookings.Dashboard(r.Context(), actor(r), h.now())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, dashboardResponse{
		Upcoming:    toBookingResponses(d.Upcoming),
		WeekStart:   d.WeekStart.Format(time.RFC3339),
		WeeklyUsage: d.Usage[:],
	})
}
