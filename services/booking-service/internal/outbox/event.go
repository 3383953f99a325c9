package outbox

import (
	"encoding/json"
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
)

// Topics. The Kafka topic name equals the event type.
const (
	EventBookingCreated   = "booking.booking.created.v1"
	EventBookingUpdated   = "booking.booking.updated.v1"
	EventBookingCancelled = "booking.booking.cancelled.v1"
	EventBookingConfirmed = "booking.booking.confirmed.v1"

	AggregateBooking = "booking"
)

// Event is the domain event envelope written to the outbox table.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

type bookingPayload struct {
	BookingID    string     `json:"booking_id"`
	RoomID       string     `json:"room_id"`
	UserID       string     `json:"user_id"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	StartTime    string     `json:"start_time"`
	EndTime      string     `json:"end_time"`
	Participants []string   `json:"participants"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty"`
	OccurredAt   string     `json:"occurred_at"`
}

// BookingEvent builds the outbox envelope for a booking state change. The booking must
// already carry its ID.
func BookingEvent(eventType string, b model.Booking, at time.Time) (Event, error) {
	payload, err := json.Marshal(bookingPayload{
		BookingID:    b.ID,
		RoomID:       b.RoomID,
		UserID:       b.UserID,
		Title:        b.Title,
		Status:       string(b.Status),
		StartTime:    b.StartTime.UTC().Format(time.RFC3339),
		EndTime:      b.EndTime.UTC().Format(time.RFC3339),
		Participants: b.ParticipantIDs(),
		CancelledAt:  b.CancelledAt,
		OccurredAt:   at.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return Event{}, err
	}
	return Event{
		AggregateType: AggregateBooking,
		AggregateID:   b.ID,
		EventType:     eventType,
		Payload:       payload,
	}, nil
}
