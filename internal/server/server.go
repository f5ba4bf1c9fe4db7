// Package server exposes the order assistant over gRPC, with a side HTTP
// server for audio files, metrics and health.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type Config struct {
	GRPCAddr string
	HTTPAddr string // empty disables the HTTP server
	AudioDir string
}

// Server runs the gRPC and HTTP listeners.
type Server struct {
	cfg    Config
	grpc   *grpc.Server
	health *health.Server
	http   *http.Server
	logger *slog.Logger
}

// New registers svc and the health service on a new gRPC server.
func New(cfg Config, svc OrderAssistantServer, httpHandler http.Handler, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	gs := grpc.NewServer(grpc.ChainUnaryInterceptor(
		RecoveryInterceptor(logger),
		LoggingInterceptor(logger),
	))
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	RegisterOrderAssistantServer(gs, svc)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	s := &Server{cfg: cfg, grpc: gs, health: hs, logger: logger}
	if cfg.HTTPAddr != "" && httpHandler != nil {
		s.http = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           httpHandler,
			ReadHeaderTimeout: 10 * time.Second,
		}
	}
	return s
}

// GRPC exposes the underlying server, e.g. for serving on a custom listener.
func (s *Server) GRPC() *grpc.Server { return s.grpc }

// Run serves until ctx is cancelled, then stops gracefully.
func (s *Server) Run(ctx context.Context) error {
	lis, err := net.Listen("tcp", s.cfg.GRPCAddr)
	if err != nil {
		s.logger.Error("failed to listen", "addr", s.cfg.GRPCAddr, "error", err)
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("gRPC serving", "addr", lis.Addr().String())
		return s.grpc.Serve(lis)
	})
	if s.http != nil {
		g.Go(func() error {
			s.logger.Info("HTTP serving", "addr", s.http.Addr)
			if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down servers")
		s.health.Shutdown()
		if s.http != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.http.Shutdown(shutdownCtx); err != nil {
				s.logger.Warn("http shutdown failed", "error", err)
			}
		}
		s.grpc.GracefulStop()
		return nil
	})

	err = g.Wait()
	if errors.Is(err, grpc.ErrServerStopped) {
		err = nil
	}
	return err
}
