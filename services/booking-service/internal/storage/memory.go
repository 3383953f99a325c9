package storage

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/outbox"
)

// MemoryStore keeps everything in process. It enforces the same no-overlap rule as the
// Postgres exclusion constraint, atomically under its mutex, and records outbox events
// instead of publishing them. Used when DATABASE_URL is empty and in tests.
type MemoryStore struct {
	mu       sync.Mutex
	rooms    map[string]model.Room
	bookings map[string]model.Booking
	orgs     map[string]model.Organization
	events   []outbox.Event
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rooms:    make(map[string]model.Room),
		bookings: make(map[string]model.Booking),
		orgs:     make(map[string]model.Organization),
		now:      time.Now,
	}
}

func (s *MemoryStore) ListRooms(_ context.Context, includeInactive bool) ([]model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		if !includeInactive && !r.IsActive {
			continue
		}
		out = append(out, copyRoom(r))
	}
	slices.SortFunc(out, func(a, b model.Room) int {
		if c := strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *MemoryStore) GetRoom(_ context.Context, id string) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.rooms[id]
	if !ok {
		return model.Room{}, ErrNotFound
	}
	return copyRoom(r), nil
}

func (s *MemoryStore) InsertRoom(_ context.Context, r model.Room) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	now := s.now().UTC()
	r.CreatedAt, r.UpdatedAt = now, now
	s.rooms[r.ID] = copyRoom(r)
	return r, nil
}

func (s *MemoryStore) UpdateRoom(_ context.Context, r model.Room) (model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.rooms[r.ID]
	if !ok {
		return model.Room{}, ErrNotFound
	}
	r.CreatedAt = existing.CreatedAt
	r.UpdatedAt = s.now().UTC()
	s.rooms[r.ID] = copyRoom(r)
	return r, nil
}

func (s *MemoryStore) InsertBooking(_ context.Context, b model.Booking, evt outbox.Event) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rooms[b.RoomID]; !ok {
		return model.Booking{}, ErrNotFound
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if s.overlapsLocked(b) {
		return model.Booking{}, ErrOverlap
	}
	now := s.now().UTC()
	b.CreatedAt, b.UpdatedAt = now, now
	s.bookings[b.ID] = copyBooking(b)
	s.events = append(s.events, evt)
	return b, nil
}

func (s *MemoryStore) UpdateBooking(_ context.Context, b model.Booking, evt outbox.Event) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.bookings[b.ID]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	if _, ok := s.rooms[b.RoomID]; !ok {
		return model.Booking{}, ErrNotFound
	}
	if s.overlapsLocked(b) {
		return model.Booking{}, ErrOverlap
	}
	b.CreatedAt = existing.CreatedAt
	b.UpdatedAt = s.now().UTC()
	s.bookings[b.ID] = copyBooking(b)
	s.events = append(s.events, evt)
	return b, nil
}

func (s *MemoryStore) GetBooking(_ context.Context, id string) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, ErrNotFound
	}
	return copyBooking(b), nil
}

func (s *MemoryStore) ListBookings(_ context.Context, f BookingFilter) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Booking
	for _, b := range s.bookings {
		if f.Matches(b) {
			out = append(out, copyBooking(b))
		}
	}
	slices.SortFunc(out, func(a, b model.Booking) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

func (s *MemoryStore) GetOrganization(_ context.Context, id string) (model.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org, ok := s.orgs[id]
	if !ok {
		return model.Organization{}, ErrNotFound
	}
	return org, nil
}

func (s *MemoryStore) UpsertOrganization(_ context.Context, org model.Organization) (model.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	org.UpdatedAt = s.now().UTC()
	s.orgs[org.ID] = org
	return org, nil
}

// Events returns the outbox events recorded so far, oldest first.
func (s *MemoryStore) Events() []outbox.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// overlapsLocked mirrors bookings_no_overlap: same room, both non-cancelled, half-open
// ranges intersect.
func (s *MemoryStore) overlapsLocked(b model.Booking) bool {
	if b.IsCancelled() {
		return false
	}
	for id, other := range s.bookings {
		if id == b.ID || other.RoomID != b.RoomID || other.IsCancelled() {
			continue
		}
		if b.StartTime.Before(other.EndTime) && other.StartTime.Before(b.EndTime) {
			return true
		}
	}
	return false
}

func copyRoom(r model.Room) model.Room {
	r.Amenities = slices.Clone(r.Amenities)
	return r
}

func copyBooking(b model.Booking) model.Booking {
	b.Participants = slices.Clone(b.Participants)
	if b.CancelledAt != nil {
		at := *b.CancelledAt
		b.CancelledAt = &at
	}
	return b
}
