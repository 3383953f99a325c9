package storage

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/outbox"
)

var base = time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC)

func at(h, m int) time.Time {
	return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute)
}

func seedRoom(t *testing.T, s *MemoryStore, id string) {
	t.Helper()
	if _, err := s.InsertRoom(context.Background(), model.Room{ID: id, Name: id, Capacity: 4, IsActive: true}); err != nil {
		t.Fatalf("InsertRoom: %v", err)
	}
}

func booking(id, room string, start, end time.Time) model.Booking {
	return model.Booking{ID: id, RoomID: room, UserID: "u1", Title: id, StartTime: start, EndTime: end, Status: model.StatusConfirmed}
}

func TestMemoryStore_RejectsOverlap(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedRoom(t, s, "a")
	seedRoom(t, s, "b")

	if _, err := s.InsertBooking(ctx, booking("1", "a", at(9, 0), at(10, 0)), outbox.Event{}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := s.InsertBooking(ctx, booking("2", "a", at(9, 30), at(10, 30)), outbox.Event{}); !errors.Is(err, ErrOverlap) {
		t.Fatalf("expected ErrOverlap, got %v", err)
	}
	// Touching ranges and other rooms are fine.
	if _, err := s.InsertBooking(ctx, booking("3", "a", at(10, 0), at(11, 0)), outbox.Event{}); err != nil {
		t.Fatalf("adjacent insert: %v", err)
	}
	if _, err := s.InsertBooking(ctx, booking("4", "b", at(9, 0), at(10, 0)), outbox.Event{}); err != nil {
		t.Fatalf("other room insert: %v", err)
	}
	if _, err := s.InsertBooking(ctx, booking("5", "missing", at(9, 0), at(10, 0)), outbox.Event{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown room, got %v", err)
	}
}

func TestMemoryStore_CancelledBookingsDoNotBlock(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedRoom(t, s, "a")

	b, err := s.InsertBooking(ctx, booking("1", "a", at(9, 0), at(10, 0)), outbox.Event{})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	b.Status = model.StatusCancelled
	if _, err := s.UpdateBooking(ctx, b, outbox.Event{}); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if _, err := s.InsertBooking(ctx, booking("2", "a", at(9, 0), at(10, 0)), outbox.Event{}); err != nil {
		t.Fatalf("insert over cancelled booking: %v", err)
	}
}

func TestMemoryStore_UpdateExcludesSelf(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedRoom(t, s, "a")

	b, _ := s.InsertBooking(ctx, booking("1", "a", at(9, 0), at(10, 0)), outbox.Event{})
	b.EndTime = at(10, 30)
	if _, err := s.UpdateBooking(ctx, b, outbox.Event{}); err != nil {
		t.Fatalf("extending own booking: %v", err)
	}
	if _, err := s.UpdateBooking(ctx, booking("nope", "a", at(12, 0), at(13, 0)), outbox.Event{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_ConcurrentInsertsOneWins(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedRoom(t, s, "a")

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.InsertBooking(ctx, booking("", "a", at(9, 0), at(10, 0)), outbox.Event{})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var ok, overlap int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrOverlap):
			overlap++
		default:
			t.Fatalf("unexpected error %v", err)
		}
	}
	if ok != 1 || overlap != n-1 {
		t.Fatalf("ok=%d overlap=%d", ok, overlap)
	}
}

func TestMemoryStore_ListBookings(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedRoom(t, s, "a")
	seedRoom(t, s, "b")

	withGuest := booking("guest", "b", at(8, 0), at(9, 0))
	withGuest.UserID = "u2"
	withGuest.Participants = []model.Participant{{UserID: "u1"}}
	for _, b := range []model.Booking{
		booking("late", "a", at(15, 0), at(16, 0)),
		booking("early", "a", at(9, 0), at(10, 0)),
		withGuest,
	} {
		if _, err := s.InsertBooking(ctx, b, outbox.Event{EventType: outbox.EventBookingCreated}); err != nil {
			t.Fatalf("insert %s: %v", b.ID, err)
		}
	}

	got, _ := s.ListBookings(ctx, BookingFilter{UserID: "u1"})
	if ids := bookingIDs(got); ids != "guest,early,late" {
		t.Fatalf("user filter got %s", ids)
	}
	got, _ = s.ListBookings(ctx, BookingFilter{RoomID: "a", From: at(9, 30), To: at(15, 0)})
	if ids := bookingIDs(got); ids != "early" {
		t.Fatalf("window filter got %s", ids)
	}
	if len(s.Events()) != 3 {
		t.Fatalf("expected 3 recorded events, got %d", len(s.Events()))
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	seedRoom(t, s, "a")

	b := booking("1", "a", at(9, 0), at(10, 0))
	b.Participants = []model.Participant{{UserID: "u2"}}
	if _, err := s.InsertBooking(ctx, b, outbox.Event{}); err != nil {
		t.Fatalf("insert: %v", err)
	}
	got, _ := s.GetBooking(ctx, "1")
	got.Participants[0].UserID = "mutated"

	again, _ := s.GetBooking(ctx, "1")
	if again.Participants[0].UserID != "u2" {
		t.Fatal("store state leaked through returned slice")
	}
}

func TestMemoryStore_Organization(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if _, err := s.GetOrganization(ctx, "default"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	org := model.DefaultOrganization("default")
	org.Name = "Acme"
	if _, err := s.UpsertOrganization(ctx, org); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	got, err := s.GetOrganization(ctx, "default")
	if err != nil || got.Name != "Acme" || got.UpdatedAt.IsZero() {
		t.Fatalf("unexpected org %+v err=%v", got, err)
	}
}

func TestMemoryStore_ListRooms(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, r := range []model.Room{
		{ID: "1", Name: "zeta", Capacity: 2, IsActive: true},
		{ID: "2", Name: "Alpha", Capacity: 2, IsActive: true},
		{ID: "3", Name: "beta", Capacity: 2},
	} {
		if _, err := s.InsertRoom(ctx, r); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	active, _ := s.ListRooms(ctx, false)
	if len(active) != 2 || active[0].Name != "Alpha" {
		t.Fatalf("unexpected active rooms %+v", active)
	}
	all, _ := s.ListRooms(ctx, true)
	if len(all) != 3 || all[1].Name != "beta" {
		t.Fatalf("unexpected rooms %+v", all)
	}
}

func bookingIDs(bs []model.Booking) string {
	ids := make([]string, len(bs))
	for i, b := range bs {
		ids[i] = b.ID
	}
	return strings.Join(ids, ",")
}
