package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"user-account-service/cmd/api/di"
	ginrouter "user-account-service/internal/adapter/gin/router"
	"user-account-service/internal/config"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

// Server runs the gRPC and REST surfaces side by side
type Server struct {
	Config *config.Config
	Logger *zap.Logger
	GRPC   *grpc.Server
	HTTP   *http.Server
}

// New creates a new server instance from the wired container
func New(cfg *config.Config, l *zap.Logger, c *di.Container, production bool) *Server {
	return &Server{
		Config: cfg,
		Logger: l,
		GRPC:   SetupGRPC(c.GRPCServer, c.RateLimiter),
		HTTP: SetupGinServer(c.GinHandler, ginrouter.Options{
			ServiceName:  cfg.Logger.ServiceName,
			Production:   production,
			RateLimiter:  c.RateLimiter,
			HealthChecks: c.HealthChecks,
		}, httpAddress(cfg), l),
	}
}

// Start binds both listeners and serves until one of them fails.
// A failing server stops the other one, so Start returns the first
// failure. It returns nil once both servers have been stopped by Shutdown.
func (s *Server) Start(ctx context.Context) error {
	lc := net.ListenConfig{}
	grpcLis, err := lc.Listen(ctx, "tcp", grpcAddress(s.Config))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}
	httpLis, err := lc.Listen(ctx, "tcp", s.HTTP.Addr)
	if err != nil {
		_ = grpcLis.Close()
		return fmt.Errorf("failed to listen on HTTP port: %w", err)
	}

	return s.serve(grpcLis, httpLis)
}

func (s *Server) serve(grpcLis, httpLis net.Listener) error {
	var g errgroup.Group

	g.Go(func() error {
		s.Logger.Info("gRPC server running", zap.String("address", grpcLis.Addr().String()))
		if err := s.GRPC.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			s.Logger.Error("gRPC server failed, closing HTTP server", zap.Error(err))
			_ = s.HTTP.Close()
			return fmt.Errorf("gRPC server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		s.Logger.Info("REST API running", zap.String("address", httpLis.Addr().String()))
		if err := s.HTTP.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("HTTP server failed, stopping gRPC server", zap.Error(err))
			s.GRPC.Stop()
			return fmt.Errorf("HTTP server: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// Shutdown stops both servers, waiting for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	var errs []error

	s.Logger.Info("shutting down HTTP server...")
	if err := s.HTTP.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("HTTP shutdown: %w", err))
	}

	s.Logger.Info("shutting down gRPC server...")
	stopped := make(chan struct{})
	go func() {
		s.GRPC.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-ctx.Done():
		s.GRPC.Stop()
		errs = append(errs, fmt.Errorf("gRPC shutdown: %w", ctx.Err()))
	}

	return errors.Join(errs...)
}

func grpcAddress(cfg *config.Config) string {
	return ":" + cfg.App.GRPCPort
}

func httpAddress(cfg *config.Config) string {
	return ":" + cfg.App.HTTPPort
}
