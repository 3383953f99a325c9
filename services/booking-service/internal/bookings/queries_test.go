package bookings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/rooms"
)

func TestFreeSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, alice, at(2, 9, 0), at(2, 10, 0))
	f.book(t, bob, at(2, 12, 0), at(2, 13, 30))

	slots, err := f.svc.FreeSlots(ctx, f.room.ID, at(2, 0, 0))
	if err != nil {
		t.Fatalf("FreeSlots: %v", err)
	}
	want := [][2]time.Time{
		{at(2, 8, 0), at(2, 9, 0)},
		{at(2, 10, 0), at(2, 12, 0)},
		{at(2, 13, 30), at(2, 18, 0)},
	}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(slots), len(want), slots)
	}
	for i, w := range want {
		if !slots[i].Start().Equal(w[0]) || !slots[i].End().Equal(w[1]) {
			t.Fatalf("slot %d = %s, want %s-%s", i, slots[i], w[0], w[1])
		}
	}

	if _, err := f.svc.FreeSlots(ctx, "missing", at(2, 0, 0)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFreeSlots_OrganizationHours(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.rooms.UpdateSettings(ctx, admin, rooms.SettingsInput{
		Name: "Acme", Timezone: "Asia/Tokyo", WorkdayStart: "09:00", WorkdayEnd: "12:00",
	}); err != nil {
		t.Fatalf("UpdateSettings: %v", err)
	}
	slots, err := f.svc.FreeSlots(ctx, f.room.ID, at(2, 0, 0))
	if err != nil || len(slots) != 1 {
		t.Fatalf("unexpected slots %v err=%v", slots, err)
	}
	// 09:00 Tokyo is 00:00 UTC on the same date.
	if !slots[0].Start().Equal(at(2, 0, 0)) || slots[0].Duration() != 3*time.Hour {
		t.Fatalf("unexpected slot %s", slots[0])
	}
}

func TestSlots(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, alice, at(0, 9, 0), at(0, 17, 0))

	// The fixture clock reads Monday 07:00, so every Monday slot is in the future.
	slots, err := f.svc.Slots(ctx, f.room.ID, at(0, 0, 0), time.Hour, 30*time.Minute)
	if err != nil {
		t.Fatalf("Slots: %v", err)
	}
	if len(slots) != 2 || !slots[0].Equal(at(0, 8, 0)) || !slots[1].Equal(at(0, 17, 0)) {
		t.Fatalf("unexpected slots %v", slots)
	}
	if _, err := f.svc.Slots(ctx, f.room.ID, at(0, 0, 0), 0, 0); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestWeek(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.book(t, alice, at(2, 9, 0), at(2, 10, 30))
	cancelled := f.book(t, bob, at(3, 9, 0), at(3, 10, 0))
	if _, err := f.svc.Cancel(ctx, bob, cancelled.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	f.book(t, alice, at(7, 9, 0), at(7, 10, 0))

	view, err := f.svc.Week(ctx, WeekQuery{Day: at(4, 0, 0)})
	if err != nil {
		t.Fatalf("Week: %v", err)
	}
	if !view.WeekStart.Equal(monday) {
		t.Fatalf("week start %s, want %s", view.WeekStart, monday)
	}
	if len(view.Cells) != 1 {
		t.Fatalf("expected 1 cell, got %+v", view.Cells)
	}
	cell := view.Cells[0]
	if cell.BookingID != b.ID || cell.DayIndex != 2 || cell.TopOffset != 80 || cell.PixelHeight != 120 {
		t.Fatalf("unexpected cell %+v", cell)
	}

	hour := 9
	view, _ = f.svc.Week(ctx, WeekQuery{Day: at(4, 0, 0), PixelsPerHour: 60, GridStartHour: &hour})
	if view.Cells[0].TopOffset != 0 || view.Cells[0].PixelHeight != 90 {
		t.Fatalf("unexpected custom grid cell %+v", view.Cells[0])
	}
	bad := 24
	if _, err := f.svc.Week(ctx, WeekQuery{Day: at(4, 0, 0), GridStartHour: &bad}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestDashboard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// Clock: Monday 07:00.
	f.book(t, alice, at(0, 8, 0), at(0, 10, 0))
	f.book(t, alice, at(2, 9, 0), at(2, 9, 30))
	f.book(t, alice, at(8, 9, 0), at(8, 10, 0))
	f.book(t, bob, at(1, 9, 0), at(1, 10, 0))

	d, err := f.svc.Dashboard(ctx, alice, at(0, 7, 0))
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if len(d.Upcoming) != 3 || !d.Upcoming[0].StartTime.Equal(at(0, 8, 0)) {
		t.Fatalf("unexpected upcoming %+v", d.Upcoming)
	}
	if d.Usage[0] != 2 || d.Usage[1] != 0 || d.Usage[2] != 0.5 {
		t.Fatalf("unexpected usage %v", d.Usage)
	}
	if _, err := f.svc.Dashboard(ctx, Actor{}, at(0, 7, 0)); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
