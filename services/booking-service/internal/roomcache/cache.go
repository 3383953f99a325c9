// Package roomcache is a Redis read-through cache for room lookups. Rooms are read on
// every booking write and change rarely.
package roomcache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/model"
	"github.com/redis/go-redis/v9"
)

const DefaultTTL = 5 * time.Minute

type Cache struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func New(rdb redis.Cmdable, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{rdb: rdb, ttl: ttl, prefix: "roombook:room:"}
}

type cachedRoom struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Capacity  int       `json:"capacity"`
	Location  string    `json:"location"`
	Amenities []string  `json:"amenities"`
	IsActive  bool      `json:"is_active"`
	IsPremium bool      `json:"is_premium"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Get returns the cached room. ok is false on a miss.
func (c *Cache) Get(ctx context.Context, id string) (model.Room, bool, error) {
	raw, err := c.rdb.Get(ctx, c.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Room{}, false, nil
	}
	if err != nil {
		return model.Room{}, false, err
	}
	var cr cachedRoom
	if err := json.Unmarshal(raw, &cr); err != nil {
		// Unreadable entries are treated as misses and overwritten on the next Set.
		return model.Room{}, false, nil
	}
	return model.Room(cr), true, nil
}

func (c *Cache) Set(ctx context.Context, r model.Room) error {
	raw, err := json.Marshal(cachedRoom(r))
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.prefix+r.ID, raw, c.ttl).Err()
}

func (c *Cache) Invalidate(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, c.prefix+id).Err()
}

// ReadyCheck pings Redis for /readyz.
func ReadyCheck(rdb redis.Cmdable) func(context.Context) error {
	return func(ctx context.Context) error {
		if rdb == nil {
			return errors.New("redis not configured")
		}
		return rdb.Ping(ctx).Err()
	}
}
