// Package health runs the gRPC side listener carrying the standard health
// service and server reflection.
package health

import (
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const ServiceName = "shoppyglobe"

type Server struct {
	grpc   *grpc.Server
	health *health.Server
}

// NewServer registers health and reflection. Both the overall ("") and the
// ServiceName statuses start as NOT_SERVING until SetServing is called.
func NewServer(opts ...grpc.ServerOption) *Server {
	s := &Server{grpc: grpc.NewServer(opts...), health: health.NewServer()}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) SetServing()    { s.set(healthpb.HealthCheckResponse_SERVING) }
func (s *Server) SetNotServing() { s.set(healthpb.HealthCheckResponse_NOT_SERVING) }

func (s *Server) set(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until Stop is called or lis fails.
func (s *Server) Serve(lis net.Listener) error {
	log.Info().Str("addr", lis.Addr().String()).Msg("grpc health listening")
	if err := s.grpc.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Stop flips every status to NOT_SERVING and drains in-flight RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
