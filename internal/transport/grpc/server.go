package grpcx

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/jonboulle/clockwork"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is reported by the health service alongside the overall "" status.
const ServiceName = "watchparty.v1.WatchParty"

// Pinger is the database reachability probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	addr     string
	gs       *grpc.Server
	ln       net.Listener
	health   *health.Server
	pinger   Pinger
	interval time.Duration
	clock    clockwork.Clock
	done     chan struct{}
}

func New(addr string, pinger Pinger, interval time.Duration, clock clockwork.Clock) *Server {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			recoveryUnaryInterceptor(),
			requestIDUnaryInterceptor(),
			deadlineUnaryInterceptor(defaultTimeout),
			loggingUnaryInterceptor(),
		),
		grpc.ChainStreamInterceptor(streamLoggingInterceptor()),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	return &Server{
		addr:     addr,
		gs:       gs,
		health:   hs,
		pinger:   pinger,
		interval: interval,
		clock:    clock,
		done:     make(chan struct{}),
	}
}

// Start listens on addr and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	slog.Info("grpc listening", "addr", s.addr)
	s.Serve(ctx, ln)
	return nil
}

// Serve runs the server and the health probe loop on ln.
func (s *Server) Serve(ctx context.Context, ln net.Listener) {
	s.ln = ln
	s.CheckNow(ctx)

	go func() {
		if err := s.gs.Serve(ln); err != nil {
			slog.Error("grpc serve stopped", slog.Any("err", err))
		}
	}()
	go s.watch(ctx)
}

// CheckNow pings the database once and publishes the result.
func (s *Server) CheckNow(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	st := healthpb.HealthCheckResponse_SERVING
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.pinger.Ping(pctx); err != nil {
		slog.Warn("health: database unreachable", slog.Any("err", err))
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}

	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(ServiceName, st)
	return st
}

func (s *Server) watch(ctx context.Context) {
	t := s.clock.NewTicker(s.interval)
	defer t.Stop()

	for {
		select {
		case <-t.Chan():
			s.CheckNow(ctx)
		case <-ctx.Done():
			return
		case <-s.done:
			return
		}
	}
}

func (s *Server) Stop(ctx context.Context) {
	close(s.done)
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.gs.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		slog.Error("grpc graceful stop timeout; forcing stop")
		s.gs.Stop()
	}

	if s.ln != nil {
		_ = s.ln.Close()
	}
}
