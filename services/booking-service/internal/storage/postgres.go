package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/roombook/libs/db"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/outbox"
)

// PostgresStore persists rooms, bookings and organization settings. Booking writes insert
// their outbox event in the same transaction.
type PostgresStore struct {
	pool   *db.Pool
	outbox *outbox.Repository
}

func NewPostgresStore(pool *db.Pool, outboxRepo *outbox.Repository) *PostgresStore {
	return &PostgresStore{pool: pool, outbox: outboxRepo}
}

const roomColumns = `id, name, capacity, location, amenities, is_active, is_premium, image_url, created_at, updated_at`

func scanRoom(row pgx.Row) (model.Room, error) {
	var r model.Room
	err := row.Scan(&r.ID, &r.Name, &r.Capacity, &r.Location, &r.Amenities, &r.IsActive, &r.IsPremium,
		&r.ImageURL, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

func (s *PostgresStore) ListRooms(ctx context.Context, includeInactive bool) ([]model.Room, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE is_active OR $1
		ORDER BY lower(name), id
	`, includeInactive)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Room, error) {
		return scanRoom(row)
	})
}

func (s *PostgresStore) GetRoom(ctx context.Context, id string) (model.Room, error) {
	r, err := scanRoom(s.pool.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return model.Room{}, ErrNotFound
	}
	return r, err
}

func (s *PostgresStore) InsertRoom(ctx context.Context, r model.Room) (model.Room, error) {
	if r.Amenities == nil {
		r.Amenities = []string{}
	}
	return scanRoom(s.pool.QueryRow(ctx, `
		INSERT INTO rooms (id, name, capacity, location, amenities, is_active, is_premium, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+roomColumns,
		r.ID, r.Name, r.Capacity, r.Location, r.Amenities, r.IsActive, r.IsPremium, r.ImageURL))
}

func (s *PostgresStore) UpdateRoom(ctx context.Context, r model.Room) (model.Room, error) {
	if r.Amenities == nil {
		r.Amenities = []string{}
	}
	updated, err := scanRoom(s.pool.QueryRow(ctx, `
		UPDATE rooms
		SET name = $2, capacity = $3, location = $4, amenities = $5, is_active = $6,
			is_premium = $7, image_url = $8, updated_at = now()
		WHERE id = $1
		RETURNING `+roomColumns,
		r.ID, r.Name, r.Capacity, r.Location, r.Amenities, r.IsActive, r.IsPremium, r.ImageURL))
	if db.IsNoRows(err) {
		return model.Room{}, ErrNotFound
	}
	return updated, err
}

const bookingColumns = `id, room_id, user_id, title, description, start_time, end_time, status, created_at, updated_at, cancelled_at`

func scanBooking(row pgx.Row) (model.Booking, error) {
	var b model.Booking
	err := row.Scan(&b.ID, &b.RoomID, &b.UserID, &b.Title, &b.Description, &b.StartTime, &b.EndTime,
		&b.Status, &b.CreatedAt, &b.UpdatedAt, &b.CancelledAt)
	return b, err
}

func (s *PostgresStore) InsertBooking(ctx context.Context, b model.Booking, evt outbox.Event) (model.Booking, error) {
	var out model.Booking
	err := s.pool.InTx(ctx, func(tx pgx.Tx) error {
		inserted, err := scanBooking(tx.QueryRow(ctx, `
			INSERT INTO bookings (id, room_id, user_id, title, description, start_time, end_time, status, cancelled_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+bookingColumns,
			b.ID, b.RoomID, b.UserID, b.Title, b.Description, b.StartTime, b.EndTime, b.Status, b.CancelledAt))
		if err != nil {
			return err
		}
		if err := replaceParticipants(ctx, tx, b.ID, b.Participants); err != nil {
			return err
		}
		if err := s.outbox.Insert(ctx, tx, evt); err != nil {
			return fmt.Errorf("write outbox event: %w", err)
		}
		inserted.Participants = b.Participants
		out = inserted
		return nil
	})
	if err != nil {
		return model.Booking{}, mapWriteError(err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateBooking(ctx context.Context, b model.Booking, evt outbox.Event) (model.Booking, error) {
	var out model.Booking
	err := s.pool.InTx(ctx, func(tx pgx.Tx) error {
		updated, err := scanBooking(tx.QueryRow(ctx, `
			UPDATE bookings
			SET room_id = $2, title = $3, description = $4, start_time = $5, end_time = $6,
				status = $7, cancelled_at = $8, updated_at = now()
			WHERE id = $1
			RETURNING `+bookingColumns,
			b.ID, b.RoomID, b.Title, b.Description, b.StartTime, b.EndTime, b.Status, b.CancelledAt))
		if err != nil {
			return err
		}
		if err := replaceParticipants(ctx, tx, b.ID, b.Participants); err != nil {
			return err
		}
		if err := s.outbox.Insert(ctx, tx, evt); err != nil {
			return fmt.Errorf("write outbox event: %w", err)
		}
		updated.Participants = b.Participants
		out = updated
		return nil
	})
	if err != nil {
		return model.Booking{}, mapWriteError(err)
	}
	return out, nil
}

func (s *PostgresStore) GetBooking(ctx context.Context, id string) (model.Booking, error) {
	b, err := scanBooking(s.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return model.Booking{}, ErrNotFound
	}
	if err != nil {
		return model.Booking{}, err
	}
	bookings := []model.Booking{b}
	if err := s.loadParticipants(ctx, bookings); err != nil {
		return model.Booking{}, err
	}
	return bookings[0], nil
}

func (s *PostgresStore) ListBookings(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	query, args := listBookingsQuery(f)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	bookings, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Booking, error) {
		return scanBooking(row)
	})
	if err != nil {
		return nil, err
	}
	if err := s.loadParticipants(ctx, bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func listBookingsQuery(f BookingFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.RoomID != "" {
		where = append(where, "room_id = "+arg(f.RoomID))
	}
	if f.UserID != "" {
		p := arg(f.UserID)
		where = append(where, "(user_id = "+p+" OR EXISTS (SELECT 1 FROM booking_participants bp WHERE bp.booking_id = bookings.id AND bp.user_id = "+p+"))")
	}
	if !f.IncludeCancelled {
		where = append(where, "status <> 'cancelled'")
	}
	if !f.To.IsZero() {
		where = append(where, "start_time < "+arg(f.To))
	}
	if !f.From.IsZero() {
		where = append(where, "end_time > "+arg(f.From))
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	return query + " ORDER BY start_time, id", args
}

func (s *PostgresStore) loadParticipants(ctx context.Context, bookings []model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	ids := make([]string, len(bookings))
	index := make(map[string]int, len(bookings))
	for i, b := range bookings {
		ids[i] = b.ID
		index[b.ID] = i
	}
	rows, err := s.pool.Query(ctx, `
		SELECT booking_id, user_id, display_name, avatar_url
		FROM booking_participants
		WHERE booking_id = ANY($1)
		ORDER BY booking_id, user_id
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var bookingID string
		var p model.Participant
		if err := rows.Scan(&bookingID, &p.UserID, &p.DisplayName, &p.AvatarURL); err != nil {
			return err
		}
		i := index[bookingID]
		bookings[i].Participants = append(bookings[i].Participants, p)
	}
	return rows.Err()
}

func replaceParticipants(ctx context.Context, tx pgx.Tx, bookingID string, participants []model.Participant) error {
	if _, err := tx.Exec(ctx, `DELETE FROM booking_participants WHERE booking_id = $1`, bookingID); err != nil {
		return err
	}
	if len(participants) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range participants {
		batch.Queue(`
			INSERT INTO booking_participants (booking_id, user_id, display_name, avatar_url)
			VALUES ($1, $2, $3, $4)
		`, bookingID, p.UserID, p.DisplayName, p.AvatarURL)
	}
	return tx.SendBatch(ctx, batch).Close()
}

func (s *PostgresStore) GetOrganization(ctx context.Context, id string) (model.Organization, error) {
	var org model.Organization
	err := s.pool.QueryRow(ctx, `
		SELECT id, name, timezone, workday_start, workday_end, updated_at
		FROM organizations
		WHERE id = $1
	`, id).Scan(&org.ID, &org.Name, &org.Timezone, &org.WorkdayStart, &org.WorkdayEnd, &org.UpdatedAt)
	if db.IsNoRows(err) {
		return model.Organization{}, ErrNotFound
	}
	return org, err
}

func (s *PostgresStore) UpsertOrganization(ctx context.Context, org model.Organization) (model.Organization, error) {
	err := s.pool.QueryRow(ctx, `
		INSERT INTO organizations (id, name, timezone, workday_start, workday_end)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name,
			timezone = EXCLUDED.timezone,
			workday_start = EXCLUDED.workday_start,
			workday_end = EXCLUDED.workday_end,
			updated_at = now()
		RETURNING updated_at
	`, org.ID, org.Name, org.Timezone, org.WorkdayStart, org.WorkdayEnd).Scan(&org.UpdatedAt)
	return org, err
}

// mapWriteError translates constraint violations into storage sentinels.
func mapWriteError(err error) error {
	switch {
	case db.IsExclusionViolation(err):
		return fmt.Errorf("%w: %v", ErrOverlap, err)
	case db.IsNoRows(err), db.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	default:
		return err
	}
}
