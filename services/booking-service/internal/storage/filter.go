package storage

import (
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
)

// BookingFilter narrows ListBookings. Zero values mean "no constraint". From/To select
// bookings whose range intersects [From, To).
type BookingFilter struct {
	RoomID string
	// UserID matches bookings the user owns or participates in.
	UserID           string
	From             time.Time
	To               time.Time
	IncludeCancelled bool
}

func (f BookingFilter) Matches(b model.Booking) bool {
	if f.RoomID != "" && b.RoomID != f.RoomID {
		return false
	}
	if f.UserID != "" && b.UserID != f.UserID && !hasParticipant(b, f.UserID) {
		return false
	}
	if !f.IncludeCancelled && b.IsCancelled() {
		return false
	}
	if !f.To.IsZero() && !b.StartTime.Before(f.To) {
		return false
	}
	if !f.From.IsZero() && !b.EndTime.After(f.From) {
		return false
	}
	return true
}

func hasParticipant(b model.Booking, userID string) bool {
	for _, p := range b.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}
