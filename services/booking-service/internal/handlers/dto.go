package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/timerange"
)

const dateLayout = "2006-01-02"

type roomResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Location  string   `json:"location,omitempty"`
	Amenities []string `json:"amenities"`
	IsActive  bool     `json:"is_active"`
	IsPremium bool     `json:"is_premium"`
	ImageURL  string   `json:"image_url,omitempty"`
	CreatedAt string   `json:"created_at"`
}

func toRoomResponse(r model.Room) roomResponse {
	amenities := r.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	return roomResponse{
		ID:        r.ID,
		Name:      r.Name,
		Capacity:  r.Capacity,
		Location:  r.Location,
		Amenities: amenities,
		IsActive:  r.IsActive,
		IsPremium: r.IsPremium,
		ImageURL:  r.ImageURL,
		CreatedAt: formatTime(r.CreatedAt),
	}
}

type participantDTO struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
}

func fromParticipantDTOs(in []participantDTO) []model.Participant {
	out := make([]model.Participant, 0, len(in))
	for _, p := range in {
		out = append(out, model.Participant{UserID: p.UserID, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL})
	}
	return out
}

type bookingResponse struct {
	ID           string           `json:"id"`
	RoomID       string           `json:"room_id"`
	UserID       string           `json:"user_id"`
	Title        string           `json:"title"`
	Description  string           `json:"description,omitempty"`
	StartTime    string           `json:"start_time"`
	EndTime      string           `json:"end_time"`
	Status       string           `json:"status"`
	Participants []participantDTO `json:"participants"`
	CreatedAt    string           `json:"created_at"`
	CancelledAt  string           `json:"cancelled_at,omitempty"`
}

func toBookingResponse(b model.Booking) bookingResponse {
	participants := make([]participantDTO, 0, len(b.Participants))
	for _, p := range b.Participants {
		participants = append(participants, participantDTO{UserID: p.UserID, DisplayName: p.DisplayName, AvatarURL: p.AvatarURL})
	}
	resp := bookingResponse{
		ID:           b.ID,
		RoomID:       b.RoomID,
		UserID:       b.UserID,
		Title:        b.Title,
		Description:  b.Description,
		StartTime:    formatTime(b.StartTime),
		EndTime:      formatTime(b.EndTime),
		Status:       string(b.Status),
		Participants: participants,
		CreatedAt:    formatTime(b.CreatedAt),
	}
	if b.CancelledAt != nil {
		resp.CancelledAt = formatTime(*b.CancelledAt)
	}
	return resp
}

func toBookingResponses(bs []model.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingResponse(b))
	}
	return out
}

type slotResponse struct {
	StartTime       string  `json:"start_time"`
	EndTime         string  `json:"end_time"`
	DurationMinutes float64 `json:"duration_minutes"`
}

func toSlotResponses(rs []timerange.Range) []slotResponse {
	out := make([]slotResponse, 0, len(rs))
	for _, r := range rs {
		out = append(out, slotResponse{
			StartTime:       formatTime(r.Start()),
			EndTime:         formatTime(r.End()),
			DurationMinutes: r.DurationMinutes(),
		})
	}
	return out
}

type organizationResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Timezone     string `json:"timezone"`
	WorkdayStart string `json:"workday_start"`
	WorkdayEnd   string `json:"workday_end"`
	UpdatedAt    string `json:"updated_at,omitempty"`
}

func toOrganizationResponse(o model.Organization) organizationResponse {
	resp := organizationResponse{
		ID:           o.ID,
		Name:         o.Name,
		Timezone:     o.Timezone,
		WorkdayStart: o.WorkdayStart.String(),
		WorkdayEnd:   o.WorkdayEnd.String(),
	}
	if !o.UpdatedAt.IsZero() {
		resp.UpdatedAt = formatTime(o.UpdatedAt)
	}
	return resp
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func parseTime(field, raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: want RFC 3339", field)
	}
	return t, nil
}

// parseOptionalTime treats an empty value as "no bound".
func parseOptionalTime(field, raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, nil
	}
	return parseTime(field, raw)
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s: want YYYY-MM-DD", field)
	}
	return t, nil
}
