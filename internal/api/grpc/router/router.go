package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	"github.com/dtroode/villa-auth/internal/api/grpc/middleware"
	"github.com/dtroode/villa-auth/internal/logger"
)

// ServiceName is the health service name reported next to the overall status.
const ServiceName = "villa.auth"

// StatusSource notifies about dependency status changes.
type StatusSource interface {
	Subscribe(fn func(healthy bool))
}

// Router represents the gRPC ops router: health checking and reflection.
type Router struct {
	status StatusSource
	logger *logger.Logger
}

// New creates new gRPC Router instance.
func New(status StatusSource, logger *logger.Logger) *Router {
	return &Router{
		status: status,
		logger: logger,
	}
}

// Register builds the gRPC server with logging and panic recovery and
// registers the health and reflection services.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recoveryOpt := recovery.WithRecoveryHandlerContext(r.recoverPanic)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recoveryOpt),
		),
		grpc.ChainStreamInterceptor(
			recovery.StreamServerInterceptor(recoveryOpt),
		),
	)

	r.registerHealth(s)
	reflection.Register(s)

	return s
}

func (r *Router) registerHealth(s *grpc.Server) {
	hs := health.NewServer()
	healthpb.RegisterHealthServer(s, hs)

	r.status.Subscribe(func(healthy bool) {
		st := healthpb.HealthCheckResponse_NOT_SERVING
		if healthy {
			st = healthpb.HealthCheckResponse_SERVING
		}
		hs.SetServingStatus("", st)
		hs.SetServingStatus(ServiceName, st)
	})
}

func (r *Router) recoverPanic(_ context.Context, p any) error {
	r.logger.Error("gRPC handler panicked", "panic", p)
	return status.Error(codes.Internal, "internal error")
}
