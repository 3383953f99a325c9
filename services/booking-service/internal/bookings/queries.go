package bookings

import (
	"context"
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/availability"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/calendar"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/timerange"
)

// FreeSlots returns the free parts of the organization's working day for a room. Only
// the calendar date of day is used; it is read in the organization's timezone.
func (s *Service) FreeSlots(ctx context.Context, roomID string, day time.Time) ([]timerange.Range, error) {
	hours, bounds, err := s.workday(ctx, day)
	if err != nil {
		return nil, err
	}
	if _, err := s.rooms.Get(ctx, roomID); err != nil {
		return nil, err
	}
	existing, err := s.store.ListBookings(ctx, storage.BookingFilter{RoomID: roomID, From: bounds.Start(), To: bounds.End()})
	if err != nil {
		return nil, err
	}
	return availability.FreeSlots(roomID, bounds.Start(), hours, existing), nil
}

// Slots returns start times on day where a booking of the given duration fits, stepping
// by step through the working day and skipping times already past.
func (s *Service) Slots(ctx context.Context, roomID string, day time.Time, duration, step time.Duration) ([]time.Time, error) {
	if duration <= 0 {
		return nil, validation("duration must be positive")
	}
	if step <= 0 {
		step = duration
	}
	_, bounds, err := s.workday(ctx, day)
	if err != nil {
		return nil, err
	}
	if _, err := s.bookableRoom(ctx, roomID); err != nil {
		return nil, err
	}
	existing, err := s.store.ListBookings(ctx, storage.BookingFilter{RoomID: roomID, From: bounds.Start(), To: bounds.End()})
	if err != nil {
		return nil, err
	}
	busy := availability.BusyRanges(roomID, bounds, existing)
	slots := availability.AvailableSlots(bounds.Start(), bounds.End(), duration, step, busy, s.opts.Now())
	if slots == nil {
		slots = []time.Time{}
	}
	return slots, nil
}

func (s *Service) workday(ctx context.Context, day time.Time) (availability.WorkingHours, timerange.Range, error) {
	org, err := s.rooms.Organization(ctx)
	if err != nil {
		return availability.WorkingHours{}, timerange.Range{}, err
	}
	y, m, d := day.Date()
	local := time.Date(y, m, d, 0, 0, 0, 0, org.Location())

	hours := availability.WorkingHours{Start: org.WorkdayStart, End: org.WorkdayEnd}
	bounds, ok := hours.Bounds(local)
	if !ok {
		return availability.WorkingHours{}, timerange.Range{}, validation("organization working hours are empty")
	}
	return hours, bounds, nil
}

type WeekQuery struct {
	// RoomID limits the view to one room; empty shows every room.
	RoomID string
	// Day is any date in the wanted week, read in the organization's timezone.
	Day           time.Time
	PixelsPerHour float64
	GridStartHour *int
}

type WeekView struct {
	WeekStart time.Time
	Cells     []calendar.Cell
	Bookings  []model.Booking
}

// Week projects the non-cancelled bookings of the week containing q.Day onto the grid.
func (s *Service) Week(ctx context.Context, q WeekQuery) (WeekView, error) {
	org, err := s.rooms.Organization(ctx)
	if err != nil {
		return WeekView{}, err
	}
	ppH := q.PixelsPerHour
	if ppH <= 0 {
		ppH = s.opts.PixelsPerHour
	}
	gridStart := s.opts.GridStartHour
	if q.GridStartHour != nil {
		if *q.GridStartHour < 0 || *q.GridStartHour > 23 {
			return WeekView{}, validation("grid_start_hour must be between 0 and 23")
		}
		gridStart = *q.GridStartHour
	}

	y, m, d := q.Day.Date()
	weekStart := calendar.WeekStart(time.Date(y, m, d, 0, 0, 0, 0, org.Location()))
	bookings, err := s.store.ListBookings(ctx, storage.BookingFilter{
		RoomID: q.RoomID,
		From:   weekStart,
		To:     weekStart.AddDate(0, 0, calendar.DaysPerWeek),
	})
	if err != nil {
		return WeekView{}, err
	}
	return WeekView{
		WeekStart: weekStart,
		Cells:     calendar.ProjectWeek(bookings, weekStart, ppH, gridStart),
		Bookings:  bookings,
	}, nil
}

type Dashboard struct {
	Upcoming  []model.Booking
	WeekStart time.Time
	// Usage holds booked hours per day, Monday first.
	Usage [calendar.DaysPerWeek]float64
}

// Dashboard summarises the actor's next bookings and this week's usage.
func (s *Service) Dashboard(ctx context.Context, actor Actor, now time.Time) (Dashboard, error) {
	if actor.UserID == "" {
		return Dashboard{}, ErrForbidden
	}
	org, err := s.rooms.Organization(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	weekStart := calendar.WeekStart(now.In(org.Location()))
	weekEnd := weekStart.AddDate(0, 0, calendar.DaysPerWeek)

	// Everything still running at the start of the week covers both the usage chart and
	// the upcoming list, since weekStart <= now.
	mine, err := s.store.ListBookings(ctx, storage.BookingFilter{UserID: actor.UserID, From: weekStart})
	if err != nil {
		return Dashboard{}, err
	}

	var thisWeek []model.Booking
	for _, b := range mine {
		if b.StartTime.Before(weekEnd) && b.EndTime.After(weekStart) {
			thisWeek = append(thisWeek, b)
		}
	}
	return Dashboard{
		Upcoming:  calendar.Upcoming(mine, now, calendar.DefaultUpcomingLimit),
		WeekStart: weekStart,
		Usage:     calendar.WeeklyUsage(thisWeek, weekStart),
	}, nil
}
