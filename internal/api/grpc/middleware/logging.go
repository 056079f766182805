package middleware

import (
	"context"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/villa-auth/internal/logger"
)

const healthServicePrefix = "/grpc.health.v1.Health/"

// Logging is a unary interceptor that logs gRPC calls and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// HandleGRPC logs method name, duration and status code of each unary call.
// Health checks are logged at debug level.
func (l *Logging) HandleGRPC(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	resp, err := handler(ctx, req)

	code := status.Code(err)
	args := []any{
		"method", info.FullMethod,
		"duration_ms", time.Since(start).Milliseconds(),
		"code", code.String(),
	}

	switch {
	case err != nil && code != codes.NotFound:
		l.logger.Error("gRPC request failed", append(args, "error", err.Error())...)
	case strings.HasPrefix(info.FullMethod, healthServicePrefix):
		l.logger.Debug("gRPC request completed", args...)
	default:
		l.logger.Info("gRPC request completed", args...)
	}

	return resp, err
}
