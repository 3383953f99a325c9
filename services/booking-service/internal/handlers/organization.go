package handlers

import (
	"net/http"

	"github.com/md-rashed-zaman/roombook/libs/httpx"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/rooms"
)

type organizationRequest struct {
	Name         string `json:"name"`
	Timezone     string `json:"timezone"`
	WorkdayStart string `json:"workday_start"`
	WorkdayEnd   string `json:"workday_end"`
}

func (h *Handler) getOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := h.rooms.Organization(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}

func (h *Handler) updateOrganization(w http.ResponseWriter, r *http.Request) {
	var req organizationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		badRequest(w, err)
		return
	}
	org, err := h.rooms.UpdateSettings(r.Context(), actor(r), rooms.SettingsInput{
		Name:         req.Name,
		Timezone:     req.Timezone,
		WorkdayStart: req.WorkdayStart,
		WorkdayEnd:   req.WorkdayEnd,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toOrganizationResponse(org))
}
