// Package calendar lays bookings out on the weekly grid (Monday first) and
// summarises a week for the dashboard.
package calendar

import (
	"math"
	"slices"
	"strings"
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
)

const (
	DaysPerWeek = 7

	DefaultPixelsPerHour = 80
	DefaultGridStartHour = 8

	// MinPixelHeight keeps very short bookings visible and clickable.
	MinPixelHeight = 1.0
)

// Cell is the position of one booking on the weekly grid.
type Cell struct {
	BookingID   string
	DayIndex    int
	TopOffset   float64
	PixelHeight float64
	// Clamped is set when the booking starts before the grid and its top was pinned to 0.
	Clamped bool
}

// Project maps b onto the grid of the week starting at weekStart (interpreted as a date in
// weekStart's location). ok is false when the booking starts outside that week or has an
// empty range.
//
// Bookings that start before gridStartHour are clamped: TopOffset becomes 0 and the hidden
// minutes are removed from PixelHeight, so the cell never extends above the grid.
func Project(b model.Booking, weekStart time.Time, pixelsPerHour float64, gridStartHour int) (Cell, bool) {
	if !b.EndTime.After(b.StartTime) {
		return Cell{}, false
	}
	loc := weekStart.Location()
	start := b.StartTime.In(loc)

	dayIndex := daysBetween(weekStart, start)
	if dayIndex < 0 || dayIndex >= DaysPerWeek {
		return Cell{}, false
	}

	y, m, d := start.Date()
	gridStart := time.Date(y, m, d, gridStartHour, 0, 0, 0, loc)
	offsetMinutes := start.Sub(gridStart).Minutes()
	visibleMinutes := b.EndTime.Sub(b.StartTime).Minutes()

	cell := Cell{BookingID: b.ID, DayIndex: dayIndex}
	if offsetMinutes < 0 {
		visibleMinutes += offsetMinutes
		offsetMinutes = 0
		cell.Clamped = true
	}
	cell.TopOffset = offsetMinutes / 60 * pixelsPerHour
	cell.PixelHeight = math.Max(visibleMinutes/60*pixelsPerHour, MinPixelHeight)
	return cell, true
}

// ProjectWeek projects every non-cancelled booking that starts in the week, ordered by
// day, then top offset, then booking ID.
func ProjectWeek(bookings []model.Booking, weekStart time.Time, pixelsPerHour float64, gridStartHour int) []Cell {
	cells := make([]Cell, 0, len(bookings))
	for _, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		if cell, ok := Project(b, weekStart, pixelsPerHour, gridStartHour); ok {
			cells = append(cells, cell)
		}
	}
	slices.SortFunc(cells, func(a, b Cell) int {
		if a.DayIndex != b.DayIndex {
			return a.DayIndex - b.DayIndex
		}
		if a.TopOffset != b.TopOffset {
			if a.TopOffset < b.TopOffset {
				return -1
			}
			return 1
		}
		return strings.Compare(a.BookingID, b.BookingID)
	})
	return cells
}

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

// daysBetween counts calendar days from weekStart's date to t's date. Comparing dates
// rather than dividing durations keeps DST transitions from shifting the index.
func daysBetween(weekStart, t time.Time) int {
	wy, wm, wd := weekStart.Date()
	ty, tm, td := t.Date()
	from := time.Date(wy, wm, wd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}
