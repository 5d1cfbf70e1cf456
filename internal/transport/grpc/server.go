package grpcx

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health-check name of the room service.
const ServiceName = "flyprep.rooms"

type Server struct {
	GRPC   *grpc.Server
	health *health.Server
}

// NewServer builds the ops gRPC server: standard health service plus
// reflection, with the logging/recovery interceptors.
func NewServer(opts ...grpc.ServerOption) *Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(UnaryServerInterceptor()),
		grpc.ChainStreamInterceptor(StreamServerInterceptor()),
	)
	gs := grpc.NewServer(opts...)

	hs := health.NewServer()
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	return &Server{GRPC: gs, health: hs}
}

// Drain reports NOT_SERVING for every service so balancers stop routing here.
func (s *Server) Drain() {
	s.health.Shutdown()
}

func (s *Server) Stop() {
	s.Drain()
	s.GRPC.GracefulStop()
}
