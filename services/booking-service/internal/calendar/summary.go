package calendar

import (
	"slices"
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/timerange"
)

// DefaultUpcomingLimit matches the dashboard's "next bookings" list.
const DefaultUpcomingLimit = 5

// Upcoming returns the next non-cancelled bookings that have not ended by now,
// earliest first.
func Upcoming(bookings []model.Booking, now time.Time, limit int) []model.Booking {
	if limit <= 0 {
		limit = DefaultUpcomingLimit
	}
	var out []model.Booking
	for _, b := range bookings {
		if b.IsCancelled() || !b.EndTime.After(now) {
			continue
		}
		out = append(out, b)
	}
	slices.SortStableFunc(out, func(a, b model.Booking) int {
		return a.StartTime.Compare(b.StartTime)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// WeeklyUsage returns booked hours per day of the week starting at weekStart. Bookings
// that span midnight are split across the days they cover.
func WeeklyUsage(bookings []model.Booking, weekStart time.Time) [DaysPerWeek]float64 {
	var usage [DaysPerWeek]float64
	loc := weekStart.Location()
	y, m, d := weekStart.Date()
	first := time.Date(y, m, d, 0, 0, 0, 0, loc)

	for _, b := range bookings {
		if b.IsCancelled() {
			continue
		}
		r, err := b.Range()
		if err != nil {
			continue
		}
		for i := 0; i < DaysPerWeek; i++ {
			dayRange, err := dayBounds(first, i)
			if err != nil {
				continue
			}
			if part, ok := r.Intersect(dayRange); ok {
				usage[i] += part.Duration().Hours()
			}
		}
	}
	return usage
}

func dayBounds(first time.Time, i int) (timerange.Range, error) {
	return timerange.New(first.AddDate(0, 0, i), first.AddDate(0, 0, i+1))
}
