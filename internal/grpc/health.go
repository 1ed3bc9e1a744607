// Package grpc exposes the terminal's readiness over the standard gRPC
// health protocol. Service pos.checkout is SERVING only while a shift is open.
package grpc

import (
	"context"
	"net"

	"github.com/fjod/go_cart/pos-terminal/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const CheckoutService = "pos.checkout"

// HealthReporter is a shift observer that flips the checkout service status
type HealthReporter struct {
	health *health.Server
	log    *zap.Logger
}

func NewHealthReporter(log *zap.Logger) *HealthReporter {
	if log == nil {
		log = zap.NewNop()
	}
	h := health.NewServer()
	h.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	h.SetServingStatus(CheckoutService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &HealthReporter{health: h, log: log}
}

func (h *HealthReporter) ShiftChanged(_ context.Context, session domain.ShiftSession) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if session.IsOpen() {
		status = healthpb.HealthCheckResponse_SERVING
	}
	h.health.SetServingStatus(CheckoutService, status)
	h.log.Info("checkout health changed",
		zap.String("shift_id", session.ID),
		zap.String("status", status.String()))
}

type Server struct {
	srv      *gogrpc.Server
	reporter *HealthReporter
	log      *zap.Logger
}

func NewServer(reporter *HealthReporter, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	srv := gogrpc.NewServer(gogrpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthpb.RegisterHealthServer(srv, reporter.health)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(srv)

	return &Server{srv: srv, reporter: reporter, log: log}
}

func (s *Server) Serve(lis net.Listener) error {
	s.log.Info("gRPC health listening", zap.String("addr", lis.Addr().String()))
	return s.srv.Serve(lis)
}

// GracefulStop reports NOT_SERVING for everything, then drains connections
func (s *Server) GracefulStop() {
	s.reporter.health.Shutdown()
	s.srv.GracefulStop()
}
