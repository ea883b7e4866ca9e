// Package health exposes the standard gRPC health service and keeps its status
// in step with a readiness probe.
package health

import (
	"context"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// Probe reports whether a dependency is usable.
type Probe func(ctx context.Context) error

type Server struct {
	log      *slog.Logger
	hs       *health.Server
	probe    Probe
	service  string
	interval time.Duration
}

func NewServer(log *slog.Logger, service string, probe Probe) *Server {
	return &Server{
		log:      log,
		hs:       health.NewServer(),
		probe:    probe,
		service:  service,
		interval: 5 * time.Second,
	}
}

// Check runs the probe once and publishes the result for both the named
// service and the server-wide "" entry.
func (s *Server) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.probe(ctx); err != nil {
		s.log.Warn("health probe failed", "service", s.service, "err", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.hs.SetServingStatus(s.service, status)
	s.hs.SetServingStatus("", status)
	return status
}

// Watch re-runs the probe until ctx ends, then marks everything NOT_SERVING.
func (s *Server) Watch(ctx context.Context) {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	s.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			s.hs.Shutdown()
			return
		case <-t.C:
			s.Check(ctx)
		}
	}
}

func (s *Server) Register(gs *grpc.Server) {
	healthpb.RegisterHealthServer(gs, s.hs)
}

func Run(addr string, srv *Server) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	gs := grpc.NewServer()
	srv.Register(gs)
	go func() {
		_ = gs.Serve(lis)
	}()
	return gs, nil
}
