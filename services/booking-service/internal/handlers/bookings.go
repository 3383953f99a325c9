package handlers

import (
	"context"
	"net/http"

	"github.com/md-rashed-zaman/roombook/libs/httpx"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/bookings"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
)

type createBookingRequest struct {
	RoomID       string           `json:"room_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	StartTime    string           `json:"start_time"`
	EndTime      string           `json:"end_time"`
	Participants []participantDTO `json:"participants"`
}

type updateBookingRequest struct {
	RoomID       *string           `json:"room_id"`
	Title        *string           `json:"title"`
	Description  *string           `json:"description"`
	StartTime    *string           `json:"start_time"`
	EndTime      *string           `json:"end_time"`
	Participants *[]participantDTO `json:"participants"`
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := parseOptionalTime("from", q.Get("from"))
	if err != nil {
		badRequest(w, err)
		return
	}
	to, err := parseOptionalTime("to", q.Get("to"))
	if err != nil {
		badRequest(w, err)
		return
	}
	list, err := h.bookings.ListForUser(r.Context(), actor(r).UserID, from, to)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"bookings": toBookingResponses(list)})
}

func (h *Handler) createBooking(w http.ResponseWriter, r *http.Request) {
	var req createBookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	start, err := parseTime("start_time", req.StartTime)
	if err != nil {
		badRequest(w, err)
		return
	}
	end, err := parseTime("end_time", req.EndTime)
	if err != nil {
		badRequest(w, err)
		return
	}

	b, err := h.bookings.Create(r.Context(), actor(r), bookings.CreateInput{
		RoomID:       req.RoomID,
		Title:        req.Title,
		Description:  req.Description,
		StartTime:    start,
		EndTime:      end,
		Participants: fromParticipantDTOs(req.Participants),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toBookingResponse(b))
}

func (h *Handler) getBooking(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookings.Get(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *Handler) updateBooking(w http.ResponseWriter, r *http.Request) {
	var req updateBookingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	in := bookings.UpdateInput{
		RoomID:      req.RoomID,
		Title:       req.Title,
		Description: req.Description,
	}
	if req.StartTime != nil {
		start, err := parseTime("start_time", *req.StartTime)
		if err != nil {
			badRequest(w, err)
			return
		}
		in.StartTime = &start
	}
	if req.EndTime != nil {
		end, err := parseTime("end_time", *req.EndTime)
		if err != nil {
			badRequest(w, err)
			return
		}
		in.EndTime = &end
	}
	if req.Participants != nil {
		participants := fromParticipantDTOs(*req.Participants)
		in.Participants = &participants
	}

	b, err := h.bookings.Update(r.Context(), actor(r), r.PathValue("id"), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toBookingResponse(b))
}

func (h *Handler) cancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookings.Cancel)
}

func (h *Handler) confirmBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.bookings.Confirm)
}

type transitionFunc func(ctx context.Context, actor model.Actor, id string) (model.Booking, error)

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	b, err := fn(r.Context(), actor(r), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toBookingResponse(b))
}
