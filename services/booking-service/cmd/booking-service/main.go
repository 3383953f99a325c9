package main

import (
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/md-rashed-zaman/roombook/libs/auth"
	"github.com/md-rashed-zaman/roombook/libs/config"
	"github.com/md-rashed-zaman/roombook/libs/grpcx"
	"github.com/md-rashed-zaman/roombook/libs/httpx"
	otelx "github.com/md-rashed-zaman/roombook/libs/otel"
	"github.com/md-rashed-zaman/roombook/libs/runtime"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/bookings"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/calendar"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/grpcserver"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/handlers"
	"github.com/md-rashed-zaman/roombook/services/booking-service/internal/rooms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"google.golang.org/grpc"
)

func main() {
	service := config.String("SERVICE_NAME", "booking-service")
	port, err := config.Port("PORT", "8083")
	if err != nil {
		panic(err)
	}
	grpcPort, err := config.Port("GRPC_PORT", "9083")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service, config.String("LOG_LEVEL", "info"))

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := runtime.ShutdownContext(5 * time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	deps, err := openDependencies(ctx, logger)
	if err != nil {
		logger.Error("dependency setup failed", "err", err)
		panic(err)
	}
	defer deps.Close()
	if deps.publisher != nil {
		go deps.publisher.Run(ctx)
	}

	roomSvc := rooms.New(deps.store, deps.roomCache, config.String("ORGANIZATION_ID", "default"), logger)
	bookingSvc := bookings.New(deps.store, roomSvc, logger, bookings.Options{
		PixelsPerHour: float64(config.Int("CALENDAR_PIXELS_PER_HOUR", calendar.DefaultPixelsPerHour)),
		GridStartHour: config.Int("CALENDAR_GRID_START_HOUR", calendar.DefaultGridStartHour),
	})

	ready := runtime.NewReadiness(deps.checks...)
	mux := runtime.NewBaseMux(ready)
	handlers.New(bookingSvc, roomSvc, logger).Register(mux, newVerifier(logger))

	httpHandler := httpx.Chain(mux,
		httpx.WithRecover(logger),
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: config.List("CORS_ALLOWED_ORIGINS", ""),
			AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
			AllowedHeaders: []string{"Authorization", "Content-Type", httpx.RequestIDHeader},
			ExposedHeaders: []string{httpx.RequestIDHeader, "Retry-After"},
			MaxAge:         10 * time.Minute,
		}),
		deps.rateLimit,
		httpx.WithBodyLimit(int64(config.Int("REQUEST_BODY_LIMIT_BYTES", 1<<20))),
		httpx.WithTimeout(config.Seconds("REQUEST_TIMEOUT_SECONDS", 15*time.Second)),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "booking")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	grpcSrv := grpcx.NewServer([]grpc.UnaryServerInterceptor{grpcx.UnaryServerLoggingInterceptor(logger)})
	health := grpcserver.Register(grpcSrv, logger)
	go health.Watch(ctx, 5*time.Second, ready.Check)

	go func() {
		lis, err := net.Listen("tcp", ":"+grpcPort)
		if err != nil {
			logger.Error("grpc listen failed", "err", err)
			stop()
			return
		}
		logger.Info("grpc server starting", "addr", lis.Addr().String())
		if err := grpcSrv.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			logger.Error("grpc server error", "err", err)
		}
	}()

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	ready.SetDraining()
	health.Shutdown()

	shutdownCtx, cancel := runtime.ShutdownContext(10 * time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	grpcSrv.GracefulStop()
	logger.Info("servers stopped")
}

func newVerifier(logger *slog.Logger) *auth.Verifier {
	secret := config.String("JWT_SECRET", "")
	var jwks *auth.JWKSClient
	if url := config.String("JWKS_URL", ""); url != "" {
		jwks = auth.NewJWKSClient(url, config.Seconds("JWKS_CACHE_SECONDS", 5*time.Minute), &http.Client{Timeout: 5 * time.Second})
	}
	if secret == "" && jwks == nil {
		logger.Warn("neither JWT_SECRET nor JWKS_URL is set; every API request will be rejected")
	}
	return auth.NewVerifier(secret, jwks)
}
