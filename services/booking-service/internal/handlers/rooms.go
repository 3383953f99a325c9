package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/md-rashed-zaman/roombook/libs/httpx"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/rooms"
)

type createRoomRequest struct {
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Location  string   `json:"location"`
	Amenities []string `json:"amenities"`
	IsPremium bool     `json:"is_premium"`
	ImageURL  string   `json:"image_url"`
}

type updateRoomRequest struct {
	Name      *string   `json:"name"`
	Capacity  *int      `json:"capacity"`
	Location  *string   `json:"location"`
	Amenities *[]string `json:"amenities"`
	IsPremium *bool     `json:"is_premium"`
	ImageURL  *string   `json:"image_url"`
}

type setActiveRequest struct {
	Active *bool `json:"active"`
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	includeInactive, _ := strconv.ParseBool(r.URL.Query().Get("include_inactive"))
	list, err := h.rooms.List(r.Context(), actor(r), includeInactive)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]roomResponse, 0, len(list))
	for _, room := range list {
		out = append(out, toRoomResponse(room))
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"rooms": out})
}

func (h *Handler) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.rooms.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoomResponse(room))
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	room, err := h.rooms.Create(r.Context(), actor(r), rooms.CreateInput{
		Name:      req.Name,
		Capacity:  req.Capacity,
		Location:  req.Location,
		Amenities: req.Amenities,
		IsPremium: req.IsPremium,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toRoomResponse(room))
}

func (h *Handler) updateRoom(w http.ResponseWriter, r *http.Request) {
	var req updateRoomRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	room, err := h.rooms.Update(r.Context(), actor(r), r.PathValue("id"), rooms.UpdateInput{
		Name:      req.Name,
		Capacity:  req.Capacity,
		Location:  req.Location,
		Amenities: req.Amenities,
		IsPremium: req.IsPremium,
		ImageURL:  req.ImageURL,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoomResponse(room))
}

func (h *Handler) setRoomActive(w http.ResponseWriter, r *http.Request) {
	var req setActiveRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	if req.Active == nil {
		httpx.WriteError(w, http.StatusBadRequest, "active is required")
		return
	}
	room, err := h.rooms.SetActive(r.Context(), actor(r), r.PathValue("id"), *req.Active)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toRoomResponse(room))
}

func (h *Handler) freeSlots(w http.ResponseWriter, r *http.Request) {
	day, err := parseDate("date", r.URL.Query().Get("date"))
	if err != nil {
		badRequest(w, err)
		return
	}
	slots, err := h.bookings.FreeSlots(r.Context(), r.PathValue("id"), day)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"room_id": r.PathValue("id"),
		"date":    day.Format(dateLayout),
		"slots":   toSlotResponses(slots),
	})
}

func (h *Handler) slots(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	day, err := parseDate("date", q.Get("date"))
	if err != nil {
		badRequest(w, err)
		return
	}
	durationMin, err := strconv.Atoi(q.Get("duration_minutes"))
	if err != nil || durationMin <= 0 {
		httpx.WriteError(w, http.StatusBadRequest, "invalid duration_minutes")
		return
	}
	stepMin := durationMin
	if raw := q.Get("slot_step_minutes"); raw != "" {
		stepMin, err = strconv.Atoi(raw)
		if err != nil || stepMin <= 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid slot_step_minutes")
			return
		}
	}

	starts, err := h.bookings.Slots(r.Context(), r.PathValue("id"), day,
		time.Duration(durationMin)*time.Minute, time.Duration(stepMin)*time.Minute)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out := make([]slotResponse, 0, len(starts))
	for _, s := range starts {
		end := s.Add(time.Duration(durationMin) * time.Minute)
		out = append(out, slotResponse{StartTime: formatTime(s), EndTime: formatTime(end), DurationMinutes: float64(durationMin)})
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"room_id": r.PathValue("id"),
		"date":    day.Format(dateLayout),
		"slots":   out,
	})
}
