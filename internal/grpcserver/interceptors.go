package grpcserver

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"moodfeed/internal/common"
)

// LoggingInterceptor logs method, code and latency of every unary call.
func LoggingInterceptor(log *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		entry := log.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"code":     status.Code(err).String(),
			"duration": time.Since(start).String(),
		})
		if err != nil {
			entry.WithError(err).Warn("grpc request failed")
		} else {
			entry.Info("grpc request")
		}
		return resp, err
	}
}

// ErrorInterceptor turns domain errors into status errors. Anything that is
// neither a status nor a *common.Error is reported as Internal without its
// details.
func ErrorInterceptor(log *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err == nil {
			return resp, nil
		}

		var de *common.Error
		if errors.As(err, &de) {
			if de.Kind == common.KindInternal {
				log.WithError(err).WithField("method", info.FullMethod).Error("request failed")
			}
			return resp, de.GRPCStatus().Err()
		}
		if _, ok := status.FromError(err); ok {
			return resp, err
		}
		log.WithError(err).WithField("method", info.FullMethod).Error("request failed")
		return resp, status.Error(codes.Internal, "internal server error")
	}
}
