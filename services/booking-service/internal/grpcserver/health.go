// Package grpcserver exposes the booking service's gRPC surface: the standard
// grpc.health.v1 service, driven by the same readiness checks as /readyz.
package grpcserver

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name clients pass in HealthCheckRequest.Service.
const ServiceName = "roombook.booking.v1.BookingService"

type Health struct {
	srv    *health.Server
	logger *slog.Logger
}

func Register(s *grpc.Server, logger *slog.Logger) *Health {
	h := &Health{srv: health.NewServer(), logger: logger}
	healthpb.RegisterHealthServer(s, h.srv)
	h.SetServing(true)
	return h
}

// SetServing flips both the overall ("") and the named service status.
func (h *Health) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.srv.SetServingStatus("", status)
	h.srv.SetServingStatus(ServiceName, status)
}

// Shutdown marks everything NOT_SERVING permanently, so watchers see the drain.
func (h *Health) Shutdown() {
	h.srv.Shutdown()
}

// Watch re-evaluates check every interval until ctx is done.
func (h *Health) Watch(ctx context.Context, interval time.Duration, check func(context.Context) error) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	serving := true
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			err := check(checkCtx)
			cancel()
			if ok := err == nil; ok != serving {
				serving = ok
				h.SetServing(ok)
				h.logger.Warn("grpc health changed", "serving", ok, "err", err)
			}
		}
	}
}
