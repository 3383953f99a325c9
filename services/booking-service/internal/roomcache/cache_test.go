package roomcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/redis/go-redis/v9"
)

func newCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, ttl), mr
}

func TestCache_RoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newCache(t, time.Minute)

	if _, ok, err := c.Get(ctx, "r1"); ok || err != nil {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}
	room := model.Room{ID: "r1", Name: "Boardroom", Capacity: 10, Amenities: []string{"TV"}, IsActive: true, IsPremium: true}
	if err := c.Set(ctx, room); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := c.Get(ctx, "r1")
	if err != nil || !ok {
		t.Fatalf("expected hit, ok=%v err=%v", ok, err)
	}
	if got.Name != "Boardroom" || got.Capacity != 10 || !got.IsPremium || len(got.Amenities) != 1 {
		t.Fatalf("unexpected cached room %+v", got)
	}

	if err := c.Invalidate(ctx, "r1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "r1"); ok {
		t.Fatal("expected miss after invalidate")
	}
}

func TestCache_Expires(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, 30*time.Second)

	if err := c.Set(ctx, model.Room{ID: "r1", Name: "Huddle", Capacity: 2}); err != nil {
		t.Fatalf("Set: %v", err)
	}
	mr.FastForward(31 * time.Second)
	if _, ok, _ := c.Get(ctx, "r1"); ok {
		t.Fatal("expected entry to expire")
	}
}

func TestCache_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	c, mr := newCache(t, time.Minute)

	if err := mr.Set("roombook:room:r1", "not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, ok, err := c.Get(ctx, "r1"); ok || err != nil {
		t.Fatalf("expected silent miss, ok=%v err=%v", ok, err)
	}
}

func TestReadyCheck(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	if err := ReadyCheck(rdb)(context.Background()); err != nil {
		t.Fatalf("ready check: %v", err)
	}
	mr.Close()
	if err := ReadyCheck(rdb)(context.Background()); err == nil {
		t.Fatal("expected ready check to fail once redis is gone")
	}
}
