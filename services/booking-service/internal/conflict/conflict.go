// Package conflict decides whether a proposed booking clashes with existing ones.
//
// The check runs against a snapshot supplied by the caller and is advisory: two
// writers can both pass it concurrently. The store's exclusion constraint is the
// authority on overlaps.
package conflict

import (
	"slices"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/timerange"
)

// HasConflict reports whether proposed overlaps any non-cancelled booking for roomID.
// A booking whose ID equals excludeID is ignored so an edit does not clash with itself;
// an empty excludeID ignores nothing.
func HasConflict(roomID string, proposed timerange.Range, existing []model.Booking, excludeID string) bool {
	for _, b := range existing {
		if blocks(b, roomID, proposed, excludeID) {
			return true
		}
	}
	return false
}

// Conflicts returns the bookings that clash with proposed, ordered by start time.
func Conflicts(roomID string, proposed timerange.Range, existing []model.Booking, excludeID string) []model.Booking {
	var out []model.Booking
	for _, b := range existing {
		if blocks(b, roomID, proposed, excludeID) {
			out = append(out, b)
		}
	}
	slices.SortStableFunc(out, func(a, b model.Booking) int {
		return a.StartTime.Compare(b.StartTime)
	})
	return out
}

func blocks(b model.Booking, roomID string, proposed timerange.Range, excludeID string) bool {
	if b.RoomID != roomID || b.IsCancelled() {
		return false
	}
	if excludeID != "" && b.ID == excludeID {
		return false
	}
	r, err := b.Range()
	if err != nil {
		// Malformed rows cannot occupy time.
		return false
	}
	return proposed.Overlaps(r)
}
