package server

import (
	grpcadapter "user-account-service/internal/adapter/grpc"
	"user-account-service/internal/adapter/ratelimit"
	"user-account-service/pkg/logger"

	"google.golang.org/grpc"
)

// SetupGRPC creates the gRPC server with request ID and rate limit interceptors.
func SetupGRPC(userServer *grpcadapter.UserServer, limiter *ratelimit.Limiter) *grpc.Server {
	grpcServer := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logger.RequestIDInterceptor(),
			grpcadapter.RateLimitInterceptor(limiter),
		),
	)
	grpcadapter.RegisterUserServiceServer(grpcServer, userServer)

	return grpcServer
}
