package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/cwrk-planet/watch-party/config"
	"github.com/cwrk-planet/watch-party/internal/events"
	"github.com/cwrk-planet/watch-party/internal/logger"
	"github.com/cwrk-planet/watch-party/internal/postgres"
	"github.com/cwrk-planet/watch-party/internal/security"
	"github.com/cwrk-planet/watch-party/internal/service"
	grpcx "github.com/cwrk-planet/watch-party/internal/transport/grpc"
	httpx "github.com/cwrk-planet/watch-party/internal/transport/http"
	"github.com/cwrk-planet/watch-party/internal/transport/ws"

	"github.com/jonboulle/clockwork"
)

func main() {
	// --- config ---
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger.Init(logger.Config{
		Env:       logger.Env(cfg.Logging.Env),
		Service:   cfg.Logging.Service,
		Version:   cfg.Logging.Version,
		Backend:   logger.Backend(cfg.Logging.Backend),
		AddSource: cfg.Logging.AddSource,
		Debug:     cfg.Logging.Debug,
	})
	slog.Info("starting watch-party",
		"env", cfg.Logging.Env, "version", cfg.Logging.Version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	// --- postgres ---
	db, err := postgres.New(ctx, cfg.Postgres.ToPGConfig())
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer db.Close()

	// --- identity ---
	pub, err := security.LoadRSAPublicKeyFromPEM(cfg.Security.JWT.PublicKeyPath)
	if err != nil {
		log.Fatalf("jwt public key: %v", err)
	}
	verifier := security.NewVerifier(pub,
		cfg.Security.JWT.Issuer,
		cfg.Security.JWT.Audience,
		cfg.Security.JWT.ClockSkew,
		clock,
	)

	// --- room events ---
	var publisher events.Publisher = events.Nop{}
	if cfg.NATS.Enabled {
		np, err := events.NewNATSPublisher(cfg.NATS.ToEventsConfig())
		if err != nil {
			log.Fatalf("nats: %v", err)
		}
		defer func() { _ = np.Close() }()
		publisher = np
	}

	// --- room store ---
	roomSvc := service.NewRoomService(
		postgres.NewRoomRepository(db.Pool),
		postgres.NewMemberRepository(db.Pool),
		postgres.NewUserRepository(db.Pool),
		service.WithPublisher(publisher),
		service.WithClock(clock),
	)

	// --- live sessions ---
	registry := ws.NewRegistry()
	hub := ws.NewHub()
	protocol := ws.NewProtocol(registry, hub, clock, roomSvc)
	gateway := ws.NewGateway(ws.GatewayConfig{
		PingEvery: cfg.WS.PingEvery,
		WriteWait: cfg.WS.WriteWait,
		ReadLimit: cfg.WS.ReadLimit,
		QueueSize: cfg.WS.QueueSize,
	}, verifier, registry, hub, protocol)

	// --- HTTP ---
	router := httpx.NewRouter(httpx.RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
	}, httpx.NewHandler(roomSvc), verifier, gateway)
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	// --- gRPC health ---
	grpcSrv := grpcx.New(cfg.GRPC.Addr, db, cfg.GRPC.HealthCheckInterval, clock)
	if err := grpcSrv.Start(ctx); err != nil {
		log.Fatalf("grpc: %v", err)
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listen", "addr", cfg.HTTP.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	select {
	case <-ctx.Done():
		slog.Info("shutdown signal")
	case err := <-errCh:
		slog.Error("server error", slog.Any("err", err))
	}

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	gateway.Shutdown()
	if err := httpSrv.Shutdown(ctxShutdown); err != nil {
		slog.Error("http shutdown", slog.Any("err", err))
	}
	grpcSrv.Stop(ctxShutdown)
	slog.Info("stopped")
}
