package model

import (
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/timerange"
)

type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusPending   BookingStatus = "pending"
	StatusCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusPending, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether the booking still holds its room.
func (s BookingStatus) Active() bool {
	return s == StatusConfirmed || s == StatusPending
}

type Booking struct {
	ID           string
	RoomID       string
	UserID       string
	Title        string
	Description  string
	StartTime    time.Time
	EndTime      time.Time
	Status       BookingStatus
	Participants []Participant
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CancelledAt  *time.Time
}

// Participant is a weak reference into the user directory; name and avatar are
// denormalised for rendering only.
type Participant struct {
	UserID      string
	DisplayName string
	AvatarURL   string
}

// Range returns the booking's [start, end). Stored bookings always satisfy start < end;
// the error is only reachable for hand-built values.
func (b Booking) Range() (timerange.Range, error) {
	return timerange.New(b.StartTime, b.EndTime)
}

func (b Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b Booking) ParticipantIDs() []string {
	ids := make([]string, 0, len(b.Participants))
	for _, p := range b.Participants {
		ids = append(ids, p.UserID)
	}
	return ids
}
