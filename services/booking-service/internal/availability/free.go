// Package availability computes the free parts of a room's working day.
package availability

import (
	"slices"
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/timerange"
)

// WorkingHours bounds the bookable part of a day.
type WorkingHours struct {
	Start model.Clock
	End   model.Clock
}

// Bounds resolves the working hours on day's date in day's location.
func (w WorkingHours) Bounds(day time.Time) (timerange.Range, bool) {
	r, err := timerange.New(w.Start.On(day), w.End.On(day))
	if err != nil {
		return timerange.Range{}, false
	}
	return r, true
}

// FreeSlots returns the gaps between non-cancelled bookings of roomID inside the working
// hours of day, in chronological order. With no bookings the whole working window is one
// slot; a fully booked day yields an empty slice.
func FreeSlots(roomID string, day time.Time, hours WorkingHours, existing []model.Booking) []timerange.Range {
	bounds, ok := hours.Bounds(day)
	if !ok {
		return []timerange.Range{}
	}

	busy := BusyRanges(roomID, bounds, existing)

	slots := []timerange.Range{}
	cursor := bounds.Start()
	for _, b := range busy {
		if b.Start().After(cursor) {
			slots = append(slots, timerange.MustNew(cursor, b.Start()))
		}
		if b.End().After(cursor) {
			cursor = b.End()
		}
	}
	if bounds.End().After(cursor) {
		slots = append(slots, timerange.MustNew(cursor, bounds.End()))
	}
	return slots
}

// BusyRanges returns the ranges of active bookings for roomID that intersect bounds,
// sorted by start, equal starts shortest first. Ranges are not clipped to bounds.
func BusyRanges(roomID string, bounds timerange.Range, existing []model.Booking) []timerange.Range {
	var busy []timerange.Range
	for _, b := range existing {
		if b.RoomID != roomID || b.IsCancelled() {
			continue
		}
		r, err := b.Range()
		if err != nil || !r.Overlaps(bounds) {
			continue
		}
		busy = append(busy, r)
	}
	slices.SortFunc(busy, func(a, b timerange.Range) int {
		if c := a.Start().Compare(b.Start()); c != 0 {
			return c
		}
		return a.End().Compare(b.End())
	})
	return busy
}
