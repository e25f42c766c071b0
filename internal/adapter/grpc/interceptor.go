package grpc

import (
	"context"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor returns a gRPC unary server interceptor that logs the
// method, status code and latency of every call. Internal and Unknown codes
// log at error level.
func LoggingInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		code := status.Code(err)
		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.String("code", code.String()),
			zap.Duration("latency", time.Since(start)),
		}

		switch code {
		case codes.OK:
			logger.Info("gRPC call", fields...)
		case codes.Internal, codes.Unknown:
			logger.Error("gRPC call", append(fields, zap.Error(err))...)
		default:
			logger.Warn("gRPC call", append(fields, zap.Error(err))...)
		}

		return resp, err
	}
}

// RecoveryInterceptor turns a panic in a handler into codes.Internal
func RecoveryInterceptor(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req interface{},
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (resp interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("gRPC handler panicked",
					zap.String("method", info.FullMethod),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				resp, err = nil, status.Error(codes.Internal, "internal error")
			}
		}()
		return handler(ctx, req)
	}
}

// NewGRPCServer builds a grpc.Server with logging and recovery, the
// AllocationService and server reflection registered
func NewGRPCServer(srv AllocationServiceServer, logger *zap.Logger, opts ...grpc.ServerOption) *grpc.Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("gRPC")

	opts = append(opts, grpc.ChainUnaryInterceptor(
		RecoveryInterceptor(logger),
		LoggingInterceptor(logger),
	))

	s := grpc.NewServer(opts...)
	RegisterAllocationServiceServer(s, srv)
	reflection.Register(s)
	return s
}
