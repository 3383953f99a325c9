package availability

import (
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/timerange"
)

// AvailableSlots lists bookable starts for a meeting of the given duration. Starts lie on
// a grid of step anchored at windowStart, the meeting must fit inside the window, and
// nothing before now is offered. After a clash the grid resumes at the first point past
// the blocking booking.
func AvailableSlots(windowStart, windowEnd time.Time, duration, step time.Duration, busy []timerange.Range, now time.Time) []time.Time {
	window, err := timerange.New(windowStart, windowEnd)
	if err != nil || duration <= 0 || step <= 0 {
		return nil
	}

	var slots []time.Time
	start := gridPointAtOrAfter(windowStart, now, step)
	for {
		candidate := timerange.MustNew(start, start.Add(duration))
		if !window.Covers(candidate) {
			return slots
		}
		if until, blocked := blockedUntil(candidate, busy); blocked {
			start = gridPointAtOrAfter(windowStart, until, step)
			continue
		}
		slots = append(slots, start)
		start = start.Add(step)
	}
}

// blockedUntil reports the latest end among busy ranges overlapping r.
func blockedUntil(r timerange.Range, busy []timerange.Range) (time.Time, bool) {
	var until time.Time
	blocked := false
	for _, b := range busy {
		if r.Overlaps(b) && b.End().After(until) {
			until, blocked = b.End(), true
		}
	}
	return until, blocked
}

func gridPointAtOrAfter(origin, t time.Time, step time.Duration) time.Time {
	if !t.After(origin) {
		return origin
	}
	n := t.Sub(origin) / step
	p := origin.Add(n * step)
	if p.Before(t) {
		p = p.Add(step)
	}
	return p
}
