// Package health exposes the standard gRPC health service. Its serving
// status follows the storage backend's schema check.
package health

import (
	"context"
	"net"
	"time"

	"github.com/dmitrijs2005/nutrilog/internal/logging"
	"github.com/dmitrijs2005/nutrilog/internal/storage/remote"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is reported next to the overall ("") status.
const ServiceName = "nutrilog.storage"

const DefaultInterval = 30 * time.Second

type Checker interface {
	CheckSchema(ctx context.Context) remote.SchemaStatus
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) remote.SchemaStatus

func (f CheckerFunc) CheckSchema(ctx context.Context) remote.SchemaStatus { return f(ctx) }

// AlwaysOK serves local mode, where there is no remote schema to check.
var AlwaysOK = CheckerFunc(func(context.Context) remote.SchemaStatus {
	return remote.SchemaStatus{OK: true}
})

type Server struct {
	address  string
	checker  Checker
	interval time.Duration
	logger   logging.Logger
	hs       *health.Server
}

func NewServer(address string, l logging.Logger, c Checker, interval time.Duration) *Server {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Server{
		address:  address,
		checker:  c,
		interval: interval,
		logger:   l.With("module", "health_server"),
		hs:       health.NewServer(),
	}
}

// Refresh runs the check once and publishes the result.
func (s *Server) Refresh(ctx context.Context) remote.SchemaStatus {
	st := s.checker.CheckSchema(ctx)
	status := healthpb.HealthCheckResponse_SERVING
	if !st.OK {
		status = healthpb.HealthCheckResponse_NOT_SERVING
		s.logger.Warn(ctx, "storage not healthy", "missing_tables", st.MissingTables, "message", st.Message)
	}
	s.hs.SetServingStatus("", status)
	s.hs.SetServingStatus(ServiceName, status)
	return st
}

func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer()
	healthpb.RegisterHealthServer(srv, s.hs)

	s.Refresh(ctx)

	go func() {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				s.logger.Info(ctx, "Stopping health server...")
				s.hs.Shutdown()
				srv.GracefulStop()
				return
			case <-t.C:
				s.Refresh(ctx)
			}
		}
	}()

	s.logger.Info(ctx, "Starting health server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil {
		return err
	}
	return nil
}
