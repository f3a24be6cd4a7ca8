// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/msksk8cool/sk8school-bot/pkg/common"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// DefaultHealthInterval is how often the store is checked.
const DefaultHealthInterval = 15 * time.Second

// GRPCServer exposes the standard health service for liveness checks. Its serving
// status follows the store health checker.
type GRPCServer struct {
	server   *grpc.Server
	health   *health.Server
	checker  Checker
	port     int
	interval time.Duration
}

// NewGRPCServer creates a new gRPC server instance.
func NewGRPCServer(port int, checker Checker) *GRPCServer {
	return &GRPCServer{
		port:     port,
		checker:  checker,
		interval: DefaultHealthInterval,
	}
}

// Setup configures the gRPC server with interceptors and registers the
// health and reflection services.
func (s *GRPCServer) Setup() error {
	unaryInterceptors := []grpc.UnaryServerInterceptor{
		logging.UnaryServerInterceptor(common.InterceptorLogger(logrus.StandardLogger())),
	}
	streamInterceptors := []grpc.StreamServerInterceptor{
		logging.StreamServerInterceptor(common.InterceptorLogger(logrus.StandardLogger())),
	}

	// Create server with OpenTelemetry instrumentation
	s.server = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(unaryInterceptors...),
		grpc.ChainStreamInterceptor(streamInterceptors...),
	)

	s.health = health.NewServer()
	grpc_health_v1.RegisterHealthServer(s.server, s.health)
	reflection.Register(s.server)

	logrus.Infof("gRPC reflection and health check enabled")
	return nil
}

// checkStore sets the overall serving status from one store check.
func (s *GRPCServer) checkStore(ctx context.Context) grpc_health_v1.HealthCheckResponse_ServingStatus {
	status := grpc_health_v1.HealthCheckResponse_SERVING
	if err := s.checker.Check(ctx); err != nil {
		status = grpc_health_v1.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	return status
}

// WatchHealth checks the store until ctx is done.
func (s *GRPCServer) WatchHealth(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	last := s.checkStore(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if status := s.checkStore(ctx); status != last {
				logrus.Warnf("serving status changed: %s -> %s", last, status)
				last = status
			}
		}
	}
}

// Serve listens on the configured port and blocks until the server stops.
func (s *GRPCServer) Serve() error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen on port %d: %w", s.port, err)
	}

	logrus.Infof("gRPC server listening on port %d", s.port)
	if err := s.server.Serve(lis); err != nil {
		return fmt.Errorf("gRPC server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the gRPC server.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	logrus.Info("shutting down gRPC server...")
	s.health.Shutdown()
	s.server.GracefulStop()
	logrus.Info("gRPC server stopped")
	return nil
}
