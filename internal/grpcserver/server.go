// Package grpcserver runs the gRPC listener: the standard health service,
// reflection and the shared interceptor chain.
package grpcserver

import (
	"net"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"moodfeed/internal/common"
)

const ServiceName = "moodfeed"

// Reflection streams are not intercepted, so only the unary health
// methods need listing.
var publicMethods = map[string]bool{
	"/grpc.health.v1.Health/Check": true,
	"/grpc.health.v1.Health/List":  true,
}

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	log    *logrus.Logger
}

func New(tokens *common.TokenManager, log *logrus.Logger) *Server {
	gs := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			LoggingInterceptor(log),
			ErrorInterceptor(log),
			common.AuthInterceptor(tokens, publicMethods),
		),
	)

	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(gs)

	return &Server{grpc: gs, health: hs, log: log}
}

// GRPC exposes the underlying server so further services can be registered
// before Serve.
func (s *Server) GRPC() *grpc.Server {
	return s.grpc
}

// SetServing flips the status reported for ServiceName.
func (s *Server) SetServing(serving bool) {
	st := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		st = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus(ServiceName, st)
}

func (s *Server) Serve(lis net.Listener) error {
	s.log.WithField("addr", lis.Addr().String()).Info("gRPC server listening")
	return s.grpc.Serve(lis)
}

func (s *Server) GracefulStop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
