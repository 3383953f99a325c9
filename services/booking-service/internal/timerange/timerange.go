// Package timerange provides the half-open interval used for every booking,
// availability and calendar calculation.
package timerange

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidRange is returned when end is not strictly after start.
var ErrInvalidRange = errors.New("invalid time range: end must be after start")

// Range is the half-open interval [start, end). The zero value is not a valid range;
// construct with New.
type Range struct {
	start time.Time
	end   time.Time
}

func New(start, end time.Time) (Range, error) {
	if !end.After(start) {
		return Range{}, fmt.Errorf("%w (start=%s end=%s)", ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Range{start: start, end: end}, nil
}

// MustNew is New for ranges known to be valid, such as test fixtures.
func MustNew(start, end time.Time) Range {
	r, err := New(start, end)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Range) Start() time.Time { return r.start }
func (r Range) End() time.Time   { return r.end }

func (r Range) IsZero() bool {
	return r.start.IsZero() && r.end.IsZero()
}

// Overlaps reports whether the ranges share any instant. Touching endpoints do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.start.Before(other.end) && other.start.Before(r.end)
}

// Contains reports whether t falls inside [start, end).
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.start) && t.Before(r.end)
}

// Covers reports whether other lies entirely within r.
func (r Range) Covers(other Range) bool {
	return !other.start.Before(r.start) && !other.end.After(r.end)
}

// Intersect returns the overlapping part of both ranges.
func (r Range) Intersect(other Range) (Range, bool) {
	start := r.start
	if other.start.After(start) {
		start = other.start
	}
	end := r.end
	if other.end.Before(end) {
		end = other.end
	}
	if !end.After(start) {
		return Range{}, false
	}
	return Range{start: start, end: end}, true
}

func (r Range) Duration() time.Duration {
	return r.end.Sub(r.start)
}

func (r Range) DurationMinutes() float64 {
	return r.Duration().Minutes()
}

func (r Range) String() string {
	return "[" + r.start.Format(time.RFC3339) + ", " + r.end.Format(time.RFC3339) + ")"
}
