package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/md-rashed-zaman/roombook/libs/auth"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/bookings"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/rooms"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/storage"
)

const testSecret = "test-secret"

var now = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

type testServer struct {
	t   *testing.T
	mux *http.ServeMux
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := storage.NewMemoryStore()
	roomSvc := rooms.New(store, nil, "default", logger)
	bookingSvc := bookings.New(store, roomSvc, logger, bookings.Options{Now: func() time.Time { return now }})

	h := New(bookingSvc, roomSvc, logger)
	h.now = func() time.Time { return now }
	mux := http.NewServeMux()
	h.Register(mux, auth.NewVerifier(testSecret, nil))
	return &testServer{t: t, mux: mux}
}

func token(t *testing.T, sub, role string) string {
	t.Helper()
	tok, err := auth.SignHS256(auth.Claims{Sub: sub, Role: role, Exp: time.Now().Add(time.Hour).Unix()}, testSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return tok
}

func (s *testServer) do(method, path, tok string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshal: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d (body %s)", rec.Code, want, rec.Body.String())
	}
}

func (s *testServer) createRoom(adminTok string, body map[string]any) roomResponse {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/v1/rooms", adminTok, body)
	expectStatus(s.t, rec, http.StatusCreated)
	return decode[roomResponse](s.t, rec)
}

func TestAuthRequired(t *testing.T) {
	s := newTestServer(t)
	expectStatus(t, s.do(http.MethodGet, "/api/v1/rooms", "", nil), http.StatusUnauthorized)
	expectStatus(t, s.do(http.MethodGet, "/api/v1/rooms", "not-a-jwt", nil), http.StatusUnauthorized)

	forged, _ := auth.SignHS256(auth.Claims{Sub: "u", Role: model.RoleAdmin}, "other-secret")
	expectStatus(t, s.do(http.MethodGet, "/api/v1/rooms", forged, nil), http.StatusUnauthorized)
}

func TestRoomRoutes(t *testing.T) {
	s := newTestServer(t)
	adminTok := token(t, "admin-1", model.RoleAdmin)
	memberTok := token(t, "user-1", model.RoleMember)

	expectStatus(t, s.do(http.MethodPost, "/api/v1/rooms", memberTok, map[string]any{"name": "A", "capacity": 2}), http.StatusForbidden)
	expectStatus(t, s.do(http.MethodPost, "/api/v1/rooms", adminTok, map[string]any{"name": "A", "capacity": 0}), http.StatusBadRequest)
	expectStatus(t, s.do(http.MethodPost, "/api/v1/rooms", adminTok, map[string]any{"name": "A", "capacity": 2, "color": "red"}), http.StatusBadRequest)

	room := s.createRoom(adminTok, map[string]any{"name": "Boardroom", "capacity": 10, "amenities": []string{"tv", "TV"}})
	if room.ID == "" || len(room.Amenities) != 1 || !room.IsActive {
		t.Fatalf("unexpected room %+v", room)
	}

	rec := s.do(http.MethodGet, "/api/v1/rooms/"+room.ID, memberTok, nil)
	expectStatus(t, rec, http.StatusOK)
	expectStatus(t, s.do(http.MethodGet, "/api/v1/rooms/missing", memberTok, nil), http.StatusNotFound)

	rec = s.do(http.MethodPatch, "/api/v1/rooms/"+room.ID, adminTok, map[string]any{"is_premium": true})
	expectStatus(t, rec, http.StatusOK)
	if !decode[roomResponse](t, rec).IsPremium {
		t.Fatal("expected premium room after patch")
	}

	expectStatus(t, s.do(http.MethodPost, "/api/v1/rooms/"+room.ID+"/active", adminTok, map[string]any{}), http.StatusBadRequest)
	expectStatus(t, s.do(http.MethodPost, "/api/v1/rooms/"+room.ID+"/active", adminTok, map[string]any{"active": false}), http.StatusOK)

	rec = s.do(http.MethodGet, "/api/v1/rooms?include_inactive=true", memberTok, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string][]roomResponse](t, rec)["rooms"]; len(got) != 0 {
		t.Fatalf("members must not list inactive rooms, got %+v", got)
	}
	rec = s.do(http.MethodGet, "/api/v1/rooms?include_inactive=true", adminTok, nil)
	if got := decode[map[string][]roomResponse](t, rec)["rooms"]; len(got) != 1 {
		t.Fatalf("admins should list inactive rooms, got %+v", got)
	}
}

func TestBookingLifecycle(t *testing.T) {
	s := newTestServer(t)
	adminTok := token(t, "admin-1", model.RoleAdmin)
	alice := token(t, "alice", model.RoleMember)
	bob := token(t, "bob", model.RoleMember)
	room := s.createRoom(adminTok, map[string]any{"name": "Boardroom", "capacity": 10})

	create := map[string]any{
		"room_id":      room.ID,
		"title":        "Planning",
		"start_time":   "2026-03-04T09:00:00Z",
		"end_time":     "2026-03-04T10:30:00Z",
		"participants": []map[string]string{{"user_id": "bob"}},
	}
	rec := s.do(http.MethodPost, "/api/v1/bookings", alice, create)
	expectStatus(t, rec, http.StatusCreated)
	booking := decode[bookingResponse](t, rec)
	if booking.Status != "confirmed" || booking.UserID != "alice" || len(booking.Participants) != 1 {
		t.Fatalf("unexpected booking %+v", booking)
	}

	clash := map[string]any{"room_id": room.ID, "title": "x", "start_time": "2026-03-04T10:00:00Z", "end_time": "2026-03-04T11:00:00Z"}
	rec = s.do(http.MethodPost, "/api/v1/bookings", bob, clash)
	expectStatus(t, rec, http.StatusConflict)
	if got := decode[conflictResponse](t, rec); got.ConflictingBookingID != booking.ID {
		t.Fatalf("unexpected conflict body %+v", got)
	}

	reversed := map[string]any{"room_id": room.ID, "title": "x", "start_time": "2026-03-04T12:00:00Z", "end_time": "2026-03-04T11:00:00Z"}
	expectStatus(t, s.do(http.MethodPost, "/api/v1/bookings", bob, reversed), http.StatusBadRequest)
	badTime := map[string]any{"room_id": room.ID, "title": "x", "start_time": "tomorrow", "end_time": "2026-03-04T11:00:00Z"}
	expectStatus(t, s.do(http.MethodPost, "/api/v1/bookings", bob, badTime), http.StatusBadRequest)

	rec = s.do(http.MethodGet, "/api/v1/bookings", bob, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[map[string][]bookingResponse](t, rec)["bookings"]; len(got) != 1 || got[0].ID != booking.ID {
		t.Fatalf("participant should see the booking, got %+v", got)
	}

	expectStatus(t, s.do(http.MethodPatch, "/api/v1/bookings/"+booking.ID, bob, map[string]any{"title": "mine now"}), http.StatusForbidden)
	rec = s.do(http.MethodPatch, "/api/v1/bookings/"+booking.ID, alice, map[string]any{"end_time": "2026-03-04T11:00:00Z"})
	expectStatus(t, rec, http.StatusOK)
	if got := decode[bookingResponse](t, rec); got.EndTime != "2026-03-04T11:00:00Z" {
		t.Fatalf("unexpected end time %s", got.EndTime)
	}

	rec = s.do(http.MethodPost, "/api/v1/bookings/"+booking.ID+"/cancel", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	if got := decode[bookingResponse](t, rec); got.Status != "cancelled" || got.CancelledAt == "" {
		t.Fatalf("unexpected cancelled booking %+v", got)
	}
	expectStatus(t, s.do(http.MethodPost, "/api/v1/bookings/"+booking.ID+"/cancel", alice, nil), http.StatusOK)
	expectStatus(t, s.do(http.MethodPatch, "/api/v1/bookings/"+booking.ID, alice, map[string]any{"title": "again"}), http.StatusConflict)

	expectStatus(t, s.do(http.MethodPost, "/api/v1/bookings", bob, clash), http.StatusCreated)
	expectStatus(t, s.do(http.MethodGet, "/api/v1/bookings/missing", bob, nil), http.StatusNotFound)
}

func TestPremiumConfirmation(t *testing.T) {
	s := newTestServer(t)
	adminTok := token(t, "admin-1", model.RoleAdmin)
	alice := token(t, "alice", model.RoleMember)
	room := s.createRoom(adminTok, map[string]any{"name": "Penthouse", "capacity": 30, "is_premium": true})

	rec := s.do(http.MethodPost, "/api/v1/bookings", alice, map[string]any{
		"room_id": room.ID, "title": "Offsite", "start_time": "2026-03-05T13:00:00Z", "end_time": "2026-03-05T15:00:00Z",
	})
	expectStatus(t, rec, http.StatusCreated)
	b := decode[bookingResponse](t, rec)
	if b.Status != "pending" {
		t.Fatalf("expected pending, got %s", b.Status)
	}

	expectStatus(t, s.do(http.MethodPost, "/api/v1/bookings/"+b.ID+"/confirm", alice, nil), http.StatusForbidden)
	rec = s.do(http.MethodPost, "/api/v1/bookings/"+b.ID+"/confirm", adminTok, nil)
	expectStatus(t, rec, http.StatusOK)
	if decode[bookingResponse](t, rec).Status != "confirmed" {
		t.Fatal("expected confirmed booking")
	}
}

func TestInactiveRoomIsUnprocessable(t *testing.T) {
	s := newTestServer(t)
	adminTok := token(t, "admin-1", model.RoleAdmin)
	alice := token(t, "alice", model.RoleMember)
	room := s.createRoom(adminTok, map[string]any{"name": "Old", "capacity": 2})
	rec := s.do(http.MethodPost, "/api/v1/bookings", alice, map[string]any{
		"room_id": room.ID, "title": "x", "start_time": "2026-03-04T09:00:00Z", "end_time": "2026-03-04T10:00:00Z",
	})
	expectStatus(t, rec, http.StatusCreated)
	existing := decode[bookingResponse](t, rec)

	expectStatus(t, s.do(http.MethodPost, "/api/v1/rooms/"+room.ID+"/active", adminTok, map[string]any{"active": false}), http.StatusOK)

	rec = s.do(http.MethodPost, "/api/v1/bookings", alice, map[string]any{
		"room_id": room.ID, "title": "x", "start_time": "2026-03-05T09:00:00Z", "end_time": "2026-03-05T10:00:00Z",
	})
	expectStatus(t, rec, http.StatusUnprocessableEntity)

	rec = s.do(http.MethodPatch, "/api/v1/bookings/"+existing.ID, alice, map[string]any{"end_time": "2026-03-04T12:00:00Z"})
	expectStatus(t, rec, http.StatusUnprocessableEntity)
}

type slotsBody struct {
	Slots []slotResponse `json:"slots"`
}

func TestAvailabilityRoutes(t *testing.T) {
	s := newTestServer(t)
	adminTok := token(t, "admin-1", model.RoleAdmin)
	alice := token(t, "alice", model.RoleMember)
	room := s.createRoom(adminTok, map[string]any{"name": "Focus", "capacity": 1})
	expectStatus(t, s.do(http.MethodPost, "/api/v1/bookings", alice, map[string]any{
		"room_id": room.ID, "title": "Deep work", "start_time": "2026-03-04T09:00:00Z", "end_time": "2026-03-04T17:00:00Z",
	}), http.StatusCreated)

	rec := s.do(http.MethodGet, "/api/v1/rooms/"+room.ID+"/free-slots?date=2026-03-04", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	free := decode[slotsBody](t, rec)
	if len(free.Slots) != 2 || free.Slots[0].EndTime != "2026-03-04T09:00:00Z" || free.Slots[1].StartTime != "2026-03-04T17:00:00Z" {
		t.Fatalf("unexpected free slots %+v", free.Slots)
	}
	expectStatus(t, s.do(http.MethodGet, "/api/v1/rooms/"+room.ID+"/free-slots?date=04/03/2026", alice, nil), http.StatusBadRequest)

	rec = s.do(http.MethodGet, "/api/v1/rooms/"+room.ID+"/slots?date=2026-03-04&duration_minutes=30", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	slots := decode[slotsBody](t, rec)
	if len(slots.Slots) != 4 {
		t.Fatalf("expected four 30-minute slots, got %+v", slots.Slots)
	}
	expectStatus(t, s.do(http.MethodGet, "/api/v1/rooms/"+room.ID+"/slots?date=2026-03-04", alice, nil), http.StatusBadRequest)
}

func TestCalendarAndDashboard(t *testing.T) {
	s := newTestServer(t)
	adminTok := token(t, "admin-1", model.RoleAdmin)
	alice := token(t, "alice", model.RoleMember)
	room := s.createRoom(adminTok, map[string]any{"name": "Boardroom", "capacity": 10})
	rec := s.do(http.MethodPost, "/api/v1/bookings", alice, map[string]any{
		"room_id": room.ID, "title": "Review", "start_time": "2026-03-04T09:00:00Z", "end_time": "2026-03-04T10:30:00Z",
	})
	expectStatus(t, rec, http.StatusCreated)
	b := decode[bookingResponse](t, rec)

	rec = s.do(http.MethodGet, "/api/v1/calendar/week?week_start=2026-03-04&room_id="+room.ID, alice, nil)
	expectStatus(t, rec, http.StatusOK)
	week := decode[weekResponse](t, rec)
	if week.WeekStart != "2026-03-02T00:00:00Z" || len(week.Cells) != 1 || len(week.Bookings) != 1 {
		t.Fatalf("unexpected week %+v", week)
	}
	if c := week.Cells[0]; c.BookingID != b.ID || c.DayIndex != 2 || c.TopOffset != 80 || c.PixelHeight != 120 {
		t.Fatalf("unexpected cell %+v", c)
	}
	expectStatus(t, s.do(http.MethodGet, "/api/v1/calendar/week?grid_start_hour=25", alice, nil), http.StatusBadRequest)
	expectStatus(t, s.do(http.MethodGet, "/api/v1/calendar/week?pixels_per_hour=-1", alice, nil), http.StatusBadRequest)

	rec = s.do(http.MethodGet, "/api/v1/dashboard", alice, nil)
	expectStatus(t, rec, http.StatusOK)
	dash := decode[dashboardResponse](t, rec)
	if len(dash.Upcoming) != 1 || len(dash.WeeklyUsage) != 7 || dash.WeeklyUsage[2] != 1.5 {
		t.Fatalf("unexpected dashboard %+v", dash)
	}
}

func TestOrganizationRoutes(t *testing.T) {
	s := newTestServer(t)
	adminTok := token(t, "admin-1", model.RoleAdmin)
	memberTok := token(t, "user-1", model.RoleMember)

	rec := s.do(http.MethodGet, "/api/v1/organization", memberTok, nil)
	expectStatus(t, rec, http.StatusOK)
	if org := decode[organizationResponse](t, rec); org.WorkdayStart != "08:00" || org.WorkdayEnd != "18:00" {
		t.Fatalf("unexpected defaults %+v", org)
	}

	body := map[string]any{"name": "Acme", "timezone": "Europe/Paris", "workday_start": "09:00", "workday_end": "17:00"}
	expectStatus(t, s.do(http.MethodPut, "/api/v1/organization", memberTok, body), http.StatusForbidden)
	rec = s.do(http.MethodPut, "/api/v1/organization", adminTok, body)
	expectStatus(t, rec, http.StatusOK)
	if org := decode[organizationResponse](t, rec); org.Name != "Acme" || org.Timezone != "Europe/Paris" {
		t.Fatalf("unexpected org %+v", org)
	}
	body["workday_end"] = "07:00"
	expectStatus(t, s.do(http.MethodPut, "/api/v1/organization", adminTok, body), http.StatusBadRequest)
}

func TestWriteServiceError_Unexpected(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	writeServiceError(rec, req, logger, errors.New("db exploded"))
	expectStatus(t, rec, http.StatusInternalServerError)
	if bytes.Contains(rec.Body.Bytes(), []byte("exploded")) {
		t.Fatal("internal error details must not leak to clients")
	}
	if !bytes.Contains(logs.Bytes(), []byte("db exploded")) {
		t.Fatal("internal error must be logged")
	}

	rec = httptest.NewRecorder()
	writeServiceError(rec, req, logger, &bookings.ConflictError{})
	expectStatus(t, rec, http.StatusConflict)
}
