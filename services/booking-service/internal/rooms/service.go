// Package rooms manages the room catalogue and organization settings.
package rooms

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/storage"
)

var (
	ErrNotFound   = storage.ErrNotFound
	ErrForbidden  = errors.New("forbidden")
	ErrValidation = errors.New("validation failed")
)

type Store interface {
	ListRooms(ctx context.Context, includeInactive bool) ([]model.Room, error)
	GetRoom(ctx context.Context, id string) (model.Room, error)
	InsertRoom(ctx context.Context, r model.Room) (model.Room, error)
	UpdateRoom(ctx context.Context, r model.Room) (model.Room, error)
	GetOrganization(ctx context.Context, id string) (model.Organization, error)
	UpsertOrganization(ctx context.Context, org model.Organization) (model.Organization, error)
}

// Cache is an optional read-through cache for single-room lookups.
type Cache interface {
	Get(ctx context.Context, id string) (model.Room, bool, error)
	Set(ctx context.Context, r model.Room) error
	Invalidate(ctx context.Context, id string) error
}

type Service struct {
	store  Store
	cache  Cache
	orgID  string
	logger *slog.Logger
}

// New builds the service. cache may be nil.
func New(store Store, cache Cache, orgID string, logger *slog.Logger) *Service {
	if orgID == "" {
		orgID = "default"
	}
	return &Service{store: store, cache: cache, orgID: orgID, logger: logger}
}

// List returns active rooms; inactive rooms are included only for administrators.
func (s *Service) List(ctx context.Context, actor model.Actor, includeInactive bool) ([]model.Room, error) {
	return s.store.ListRooms(ctx, includeInactive && actor.IsAdmin())
}

// Get returns a room, consulting the cache first. Cache failures fall back to the store.
func (s *Service) Get(ctx context.Context, id string) (model.Room, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return model.Room{}, fmt.Errorf("%w: room id is required", ErrValidation)
	}
	if s.cache != nil {
		room, ok, err := s.cache.Get(ctx, id)
		if err != nil {
			s.logger.Warn("room cache read failed", "room_id", id, "err", err)
		} else if ok {
			return room, nil
		}
	}
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return model.Room{}, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, room); err != nil {
			s.logger.Warn("room cache write failed", "room_id", id, "err", err)
		}
	}
	return room, nil
}

type CreateInput struct {
	Name      string
	Capacity  int
	Location  string
	Amenities []string
	IsPremium bool
	ImageURL  string
}

func (s *Service) Create(ctx context.Context, actor model.Actor, in CreateInput) (model.Room, error) {
	if !actor.IsAdmin() {
		return model.Room{}, ErrForbidden
	}
	room := model.Room{
		Name:      strings.TrimSpace(in.Name),
		Capacity:  in.Capacity,
		Location:  strings.TrimSpace(in.Location),
		Amenities: model.NormalizeAmenities(in.Amenities),
		IsActive:  true,
		IsPremium: in.IsPremium,
		ImageURL:  strings.TrimSpace(in.ImageURL),
	}
	if err := validateRoom(room); err != nil {
		return model.Room{}, err
	}
	room, err := s.store.InsertRoom(ctx, room)
	if err != nil {
		return model.Room{}, err
	}
	s.logger.Info("room created", "room_id", room.ID, "actor", actor.UserID)
	return room, nil
}

// UpdateInput carries a partial room edit; nil fields are left unchanged.
type UpdateInput struct {
	Name      *string
	Capacity  *int
	Location  *string
	Amenities *[]string
	IsPremium *bool
	ImageURL  *string
}

func (s *Service) Update(ctx context.Context, actor model.Actor, id string, in UpdateInput) (model.Room, error) {
	if !actor.IsAdmin() {
		return model.Room{}, ErrForbidden
	}
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return model.Room{}, err
	}
	if in.Name != nil {
		room.Name = strings.TrimSpace(*in.Name)
	}
	if in.Capacity != nil {
		room.Capacity = *in.Capacity
	}
	if in.Location != nil {
		room.Location = strings.TrimSpace(*in.Location)
	}
	if in.Amenities != nil {
		room.Amenities = model.NormalizeAmenities(*in.Amenities)
	}
	if in.IsPremium != nil {
		room.IsPremium = *in.IsPremium
	}
	if in.ImageURL != nil {
		room.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if err := validateRoom(room); err != nil {
		return model.Room{}, err
	}
	return s.save(ctx, room)
}

// SetActive toggles whether a room accepts new bookings. Existing bookings are kept.
func (s *Service) SetActive(ctx context.Context, actor model.Actor, id string, active bool) (model.Room, error) {
	if !actor.IsAdmin() {
		return model.Room{}, ErrForbidden
	}
	room, err := s.store.GetRoom(ctx, id)
	if err != nil {
		return model.Room{}, err
	}
	if room.IsActive == active {
		return room, nil
	}
	room.IsActive = active
	return s.save(ctx, room)
}

func (s *Service) save(ctx context.Context, room model.Room) (model.Room, error) {
	room, err := s.store.UpdateRoom(ctx, room)
	if err != nil {
		return model.Room{}, err
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, room.ID); err != nil {
			s.logger.Warn("room cache invalidate failed", "room_id", room.ID, "err", err)
		}
	}
	return room, nil
}

func validateRoom(r model.Room) error {
	if r.Name == "" {
		return fmt.Errorf("%w: name is required", ErrValidation)
	}
	if r.Capacity <= 0 {
		return fmt.Errorf("%w: capacity must be positive", ErrValidation)
	}
	return nil
}

// Organization returns the saved settings, or the defaults when none were saved yet.
func (s *Service) Organization(ctx context.Context) (model.Organization, error) {
	org, err := s.store.GetOrganization(ctx, s.orgID)
	if errors.Is(err, storage.ErrNotFound) {
		return model.DefaultOrganization(s.orgID), nil
	}
	return org, err
}

type SettingsInput struct {
	Name         string
	Timezone     string
	WorkdayStart string
	WorkdayEnd   string
}

func (s *Service) UpdateSettings(ctx context.Context, actor model.Actor, in SettingsInput) (model.Organization, error) {
	if !actor.IsAdmin() {
		return model.Organization{}, ErrForbidden
	}
	org := model.Organization{
		ID:       s.orgID,
		Name:     strings.TrimSpace(in.Name),
		Timezone: strings.TrimSpace(in.Timezone),
	}
	if org.Name == "" {
		return model.Organization{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if org.Timezone == "" {
		org.Timezone = "UTC"
	}
	if _, err := time.LoadLocation(org.Timezone); err != nil {
		return model.Organization{}, fmt.Errorf("%w: unknown timezone %q", ErrValidation, org.Timezone)
	}
	var err error
	if org.WorkdayStart, err = model.ParseClock(in.WorkdayStart); err != nil {
		return model.Organization{}, fmt.Errorf("%w: workday_start: %v", ErrValidation, err)
	}
	if org.WorkdayEnd, err = model.ParseClock(in.WorkdayEnd); err != nil {
		return model.Organization{}, fmt.Errorf("%w: workday_end: %v", ErrValidation, err)
	}
	if org.WorkdayStart >= org.WorkdayEnd {
		return model.Organization{}, fmt.Errorf("%w: workday_start must be before workday_end", ErrValidation)
	}
	return s.store.UpsertOrganization(ctx, org)
}
