// Package bookings validates and applies booking changes: range checks, room state,
// the advisory conflict check, premium-room approval, and event emission.
package bookings

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/calendar"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/conflict"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/storage"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/timerange"
)

type Actor = model.Actor

type Store interface {
	InsertBooking(ctx context.Context, b model.Booking, evt outbox.Event) (model.Booking, error)
	UpdateBooking(ctx context.Context, b model.Booking, evt outbox.Event) (model.Booking, error)
	GetBooking(ctx context.Context, id string) (model.Booking, error)
	ListBookings(ctx context.Context, f storage.BookingFilter) ([]model.Booking, error)
}

// Directory resolves rooms and organization settings (rooms.Service).
type Directory interface {
	Get(ctx context.Context, id string) (model.Room, error)
	Organization(ctx context.Context) (model.Organization, error)
}

type Options struct {
	PixelsPerHour float64
	GridStartHour int
	Now           func() time.Time
}

type Service struct {
	store  Store
	rooms  Directory
	logger *slog.Logger
	opts   Options
}

func New(store Store, rooms Directory, logger *slog.Logger, opts Options) *Service {
	if opts.PixelsPerHour <= 0 {
		opts.PixelsPerHour = calendar.DefaultPixelsPerHour
	}
	if opts.GridStartHour < 0 || opts.GridStartHour > 23 {
		opts.GridStartHour = calendar.DefaultGridStartHour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{store: store, rooms: rooms, logger: logger, opts: opts}
}

type CreateInput struct {
	RoomID       string
	Title        string
	Description  string
	StartTime    time.Time
	EndTime      time.Time
	Participants []model.Participant
}

// UpdateInput carries a partial edit; nil fields are left unchanged.
type UpdateInput struct {
	RoomID       *string
	Title        *string
	Description  *string
	StartTime    *time.Time
	EndTime      *time.Time
	Participants *[]model.Participant
}

func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (model.Booking, error) {
	if actor.UserID == "" {
		return model.Booking{}, ErrForbidden
	}
	b := model.Booking{
		ID:          uuid.NewString(),
		RoomID:      strings.TrimSpace(in.RoomID),
		UserID:      actor.UserID,
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      model.StatusConfirmed,
	}
	b.Participants = normalizeParticipants(in.Participants, b.UserID)

	proposed, err := validateShape(b)
	if err != nil {
		return model.Booking{}, err
	}
	room, err := s.bookableRoom(ctx, b.RoomID)
	if err != nil {
		return model.Booking{}, err
	}
	if err := s.checkConflicts(ctx, b.RoomID, proposed, ""); err != nil {
		return model.Booking{}, err
	}
	if room.IsPremium && !actor.IsAdmin() {
		b.Status = model.StatusPending
	}

	saved, err := s.write(ctx, outbox.EventBookingCreated, b, s.store.InsertBooking)
	if err != nil {
		return model.Booking{}, err
	}
	s.logger.Info("booking created", "booking_id", saved.ID, "room_id", saved.RoomID, "user_id", saved.UserID, "status", saved.Status)
	return saved, nil
}

func (s *Service) Update(ctx context.Context, actor Actor, id string, in UpdateInput) (model.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	if !actor.CanManage(b.UserID) {
		return model.Booking{}, ErrForbidden
	}
	if b.IsCancelled() {
		return model.Booking{}, ErrBookingCancelled
	}

	roomChanged := in.RoomID != nil && strings.TrimSpace(*in.RoomID) != b.RoomID
	if in.RoomID != nil {
		b.RoomID = strings.TrimSpace(*in.RoomID)
	}
	if in.Title != nil {
		b.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		b.Description = strings.TrimSpace(*in.Description)
	}
	if in.StartTime != nil {
		b.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		b.EndTime = *in.EndTime
	}
	if in.Participants != nil {
		b.Participants = normalizeParticipants(*in.Participants, b.UserID)
	}

	proposed, err := validateShape(b)
	if err != nil {
		return model.Booking{}, err
	}
	room, err := s.bookableRoom(ctx, b.RoomID)
	if err != nil {
		return model.Booking{}, err
	}
	if roomChanged {
		if room.IsPremium && !actor.IsAdmin() {
			b.Status = model.StatusPending
		} else {
			b.Status = model.StatusConfirmed
		}
	}
	if err := s.checkConflicts(ctx, b.RoomID, proposed, b.ID); err != nil {
		return model.Booking{}, err
	}

	saved, err := s.write(ctx, outbox.EventBookingUpdated, b, s.store.UpdateBooking)
	if err != nil {
		return model.Booking{}, err
	}
	s.logger.Info("booking updated", "booking_id", saved.ID, "room_id", saved.RoomID, "actor", actor.UserID)
	return saved, nil
}

// Cancel is idempotent: cancelling a cancelled booking returns it unchanged.
func (s *Service) Cancel(ctx context.Context, actor Actor, id string) (model.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	if !actor.CanManage(b.UserID) {
		return model.Booking{}, ErrForbidden
	}
	if b.IsCancelled() {
		return b, nil
	}

	now := s.opts.Now().UTC()
	b.Status = model.StatusCancelled
	b.CancelledAt = &now

	saved, err := s.write(ctx, outbox.EventBookingCancelled, b, s.store.UpdateBooking)
	if err != nil {
		return model.Booking{}, err
	}
	s.logger.Info("booking cancelled", "booking_id", saved.ID, "actor", actor.UserID)
	return saved, nil
}

// Confirm approves a pending booking. Only administrators may confirm.
func (s *Service) Confirm(ctx context.Context, actor Actor, id string) (model.Booking, error) {
	if !actor.IsAdmin() {
		return model.Booking{}, ErrForbidden
	}
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return model.Booking{}, err
	}
	switch b.Status {
	case model.StatusCancelled:
		return model.Booking{}, ErrBookingCancelled
	case model.StatusConfirmed:
		return b, nil
	}

	proposed, err := b.Range()
	if err != nil {
		return model.Booking{}, err
	}
	if _, err := s.bookableRoom(ctx, b.RoomID); err != nil {
		return model.Booking{}, err
	}
	if err := s.checkConflicts(ctx, b.RoomID, proposed, b.ID); err != nil {
		return model.Booking{}, err
	}
	b.Status = model.StatusConfirmed

	saved, err := s.write(ctx, outbox.EventBookingConfirmed, b, s.store.UpdateBooking)
	if err != nil {
		return model.Booking{}, err
	}
	s.logger.Info("booking confirmed", "booking_id", saved.ID, "actor", actor.UserID)
	return saved, nil
}

// Get reads a booking for any member of the organization; the weekly calendar already
// shows every booking to every member.
func (s *Service) Get(ctx context.Context, actor Actor, id string) (model.Booking, error) {
	if actor.UserID == "" {
		return model.Booking{}, ErrForbidden
	}
	return s.store.GetBooking(ctx, id)
}

// ListForUser returns non-cancelled bookings the user owns or participates in that
// intersect [from, to). Zero bounds are open.
func (s *Service) ListForUser(ctx context.Context, userID string, from, to time.Time) ([]model.Booking, error) {
	if userID == "" {
		return nil, ErrForbidden
	}
	return s.store.ListBookings(ctx, storage.BookingFilter{UserID: userID, From: from, To: to})
}

func (s *Service) ListForRoom(ctx context.Context, roomID string, from, to time.Time) ([]model.Booking, error) {
	if strings.TrimSpace(roomID) == "" {
		return nil, validation("room_id is required")
	}
	return s.store.ListBookings(ctx, storage.BookingFilter{RoomID: roomID, From: from, To: to})
}

type writeFunc func(context.Context, model.Booking, outbox.Event) (model.Booking, error)

func (s *Service) write(ctx context.Context, eventType string, b model.Booking, fn writeFunc) (model.Booking, error) {
	evt, err := outbox.BookingEvent(eventType, b, s.opts.Now())
	if err != nil {
		return model.Booking{}, err
	}
	saved, err := fn(ctx, b, evt)
	if err != nil {
		return model.Booking{}, storeError(err)
	}
	return saved, nil
}

// bookableRoom loads a room and rejects inactive ones.
func (s *Service) bookableRoom(ctx context.Context, roomID string) (model.Room, error) {
	room, err := s.rooms.Get(ctx, roomID)
	if err != nil {
		return model.Room{}, err
	}
	if !room.IsActive {
		return model.Room{}, ErrRoomInactive
	}
	return room, nil
}

// checkConflicts runs the advisory check against the bookings currently stored for the
// room around proposed.
func (s *Service) checkConflicts(ctx context.Context, roomID string, proposed timerange.Range, excludeID string) error {
	existing, err := s.store.ListBookings(ctx, storage.BookingFilter{
		RoomID: roomID,
		From:   proposed.Start(),
		To:     proposed.End(),
	})
	if err != nil {
		return err
	}
	if clashes := conflict.Conflicts(roomID, proposed, existing, excludeID); len(clashes) > 0 {
		return &ConflictError{BookingID: clashes[0].ID}
	}
	return nil
}

func validateShape(b model.Booking) (timerange.Range, error) {
	if b.RoomID == "" {
		return timerange.Range{}, validation("room_id is required")
	}
	if b.Title == "" {
		return timerange.Range{}, validation("title is required")
	}
	return timerange.New(b.StartTime, b.EndTime)
}

// normalizeParticipants trims IDs, drops blanks and the owner, and de-duplicates while
// keeping the first occurrence.
func normalizeParticipants(in []model.Participant, ownerID string) []model.Participant {
	seen := make(map[string]struct{}, len(in))
	out := make([]model.Participant, 0, len(in))
	for _, p := range in {
		p.UserID = strings.TrimSpace(p.UserID)
		if p.UserID == "" || p.UserID == ownerID {
			continue
		}
		if _, ok := seen[p.UserID]; ok {
			continue
		}
		seen[p.UserID] = struct{}{}
		p.DisplayName = strings.TrimSpace(p.DisplayName)
		out = append(out, p)
	}
	return out
}
