package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/roombook/libs/config"
	"github.com/md-rashed-zaman/roombook/libs/db"
	"github.com/md-rashed-zaman/roombook/libs/httpx"
	"github.com/md-rashed-zaman/roombook/libs/kafkax"
	"github.com/md-rashed-zaman/roombook/libs/runtime"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/bookings"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/outbox"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/roomcache"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/rooms"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/storage"
	"github.com/redis/go-redis/v9"
)

type store interface {
	rooms.Store
	bookings.Store
}

type dependencies struct {
	store     store
	roomCache rooms.Cache
	publisher *outbox.Publisher
	rateLimit httpx.Middleware
	checks    []runtime.ReadyCheck
	closers   []func()
}

func (d *dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

// openDependencies connects Postgres, Redis and Kafka when configured. Without
// DATABASE_URL the service runs on the in-memory store; without REDIS_ADDR rooms are not
// cached and rate limiting is per instance.
func openDependencies(ctx context.Context, logger *slog.Logger) (*dependencies, error) {
	d := &dependencies{}
	brokers := kafkax.SplitBrokers(config.String("KAFKA_BROKERS", ""))

	if dbURL := config.String("DATABASE_URL", ""); dbURL != "" {
		pool, err := db.Open(ctx, dbURL, db.Options{
			MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
			MinConns: int32(config.Int("DB_MIN_CONNS", 1)),
		})
		if err != nil {
			return nil, err
		}
		d.closers = append(d.closers, pool.Close)
		if config.Bool("RUN_MIGRATIONS", true) {
			if err := storage.Migrate(ctx, pool, logger); err != nil {
				d.Close()
				return nil, err
			}
		}
		outboxRepo := outbox.NewRepository()
		d.store = storage.NewPostgresStore(pool, outboxRepo)
		d.checks = append(d.checks, runtime.ReadyCheck{Name: "db", Check: db.ReadyCheck(pool)})
		d.publisher = outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
			Brokers:   brokers,
			PollEvery: config.Seconds("OUTBOX_POLL_SECONDS", 2*time.Second),
			BatchSize: config.Int("OUTBOX_BATCH_SIZE", 50),
		})
	} else {
		logger.Warn("DATABASE_URL not set; using in-memory store (data is lost on restart, events are not published)")
		d.store = storage.NewMemoryStore()
	}
	if len(brokers) > 0 {
		d.checks = append(d.checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(brokers)})
	}

	limit := config.Int("RATE_LIMIT_PER_MINUTE", 120)
	if addr := config.String("REDIS_ADDR", ""); addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		d.closers = append(d.closers, func() { _ = rdb.Close() })
		d.roomCache = roomcache.New(rdb, config.Seconds("ROOM_CACHE_TTL_SECONDS", roomcache.DefaultTTL))
		d.checks = append(d.checks, runtime.ReadyCheck{Name: "redis", Check: roomcache.ReadyCheck(rdb)})
		d.rateLimit = httpx.NewRedisRateLimiter(rdb, limit, time.Minute, "roombook:rl", httpx.ClientKey).
			Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
	} else {
		d.rateLimit = httpx.NewRateLimiter(limit, time.Minute, httpx.ClientKey).Middleware()
	}
	return d, nil
}
