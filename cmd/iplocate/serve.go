package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/TomasB/iplocate/internal/config"
	"github.com/TomasB/iplocate/internal/data"
	grpchandler "github.com/TomasB/iplocate/internal/handler/grpc"
	"github.com/TomasB/iplocate/internal/handler/health"
	"github.com/TomasB/iplocate/internal/handler/locate"
	"github.com/TomasB/iplocate/internal/logging"
	locationv1 "github.com/TomasB/iplocate/pkg/location/v1"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"google.golang.org/grpc"
)

const shutdownTimeout = 30 * time.Second

func serveCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and gRPC location services",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, cmd)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
		DisableFlagsInUseLine: true,
	}
}

func serve(cfg *config.Config) error {
	// Initialize structured logging
	logger, logCloser := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()
	slog.SetDefault(logger)

	logLevel := logging.ParseLevel(cfg.LogLevel)
	slog.Info("service starting", "log_level", logLevel.String(), "version", version)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(cfg)
	if err != nil {
		slog.Error("failed to open dataset", "path", cfg.DatasetPath, "format", cfg.DatasetFormat, "error", err)
		return err
	}
	defer b.lookup.Close()

	if b.dataset != nil && cfg.Preload {
		preload(ctx, cfg, b.dataset)
	}

	// Set Gin mode based on log level
	if logLevel == slog.LevelDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := newRouter(cfg, logger, b)

	// Listen for gRPC before starting anything that would need stopping
	var grpcLis net.Listener
	if cfg.GRPCPort > 0 {
		grpcLis, err = net.Listen("tcp", ":"+strconv.Itoa(cfg.GRPCPort))
		if err != nil {
			slog.Error("failed to listen for grpc", "port", cfg.GRPCPort, "error", err)
			return err
		}
	}

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: router,
	}

	var grpcServer *grpc.Server
	if grpcLis != nil {
		grpcServer = grpc.NewServer(grpc.UnaryInterceptor(grpchandler.LoggingInterceptor(logger)))
		locationv1.RegisterLocationServiceServer(grpcServer, grpchandler.NewHandler(b.lookup))
	}

	return runServers(ctx, srv, grpcServer, grpcLis)
}

// runServers serves until ctx is done or either server fails, then stops
// both. It returns the first server failure, if any.
func runServers(ctx context.Context, srv *http.Server, grpcServer *grpc.Server, grpcLis net.Listener) error {
	errCh := make(chan error, 2)

	go func() {
		slog.Info("http service started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	if grpcServer != nil {
		go func() {
			slog.Info("grpc service started", "addr", grpcLis.Addr().String())
			if err := grpcServer.Serve(grpcLis); err != nil {
				errCh <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	// Wait for interrupt signal or a server failure
	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("service shutting down")
	case runErr = <-errCh:
		slog.Error("server failed, shutting down", "error", runErr)
	}

	if err := shutdown(srv, grpcServer); err != nil && runErr == nil {
		runErr = err
	}
	if runErr == nil {
		slog.Info("service stopped")
	}
	return runErr
}

func shutdown(srv *http.Server, grpcServer *grpc.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		return err
	}
	return nil
}

// preload loads the dataset before the first request. A failure is not fatal:
// requests retry the load, and with wait_for_dataset the file is watched.
func preload(ctx context.Context, cfg *config.Config, dataset *data.DatasetLookup) {
	err := dataset.Preload()
	if err == nil {
		return
	}

	var readErr *data.DatasetReadError
	if cfg.WaitForDataset && errors.As(err, &readErr) {
		slog.Warn("dataset not available yet, watching for it", "path", cfg.DatasetPath, "error", err)
		go func() {
			if err := data.PreloadWhenAvailable(ctx, dataset); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("dataset watch stopped", "path", cfg.DatasetPath, "error", err)
			}
		}()
		return
	}
	slog.Error("dataset preload failed, loading will be retried on request", "path", cfg.DatasetPath, "error", err)
}

func newRouter(cfg *config.Config, logger *slog.Logger, b *backend) *gin.Engine {
	router := gin.New()

	router.Use(ginLogger(logger))
	router.Use(gin.Recovery())
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins: cfg.CORSOrigins,
			AllowMethods: []string{http.MethodGet},
			MaxAge:       12 * time.Hour,
		}))
	}

	// Register health endpoints
	healthHandler := health.NewHandler(b.readiness())
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// Register API endpoints
	locateHandler := locate.NewHandler(b.lookup)
	api := router.Group("/api")
	{
		api.GET("/ip/location", locateHandler.Locate)
	}

	return router
}

// ginLogger creates a Gin middleware that logs using slog
func ginLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		// Process request
		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		attrs := []any{
			"method", method,
			"path", path,
			"client_ip", c.ClientIP(),
			"status", statusCode,
			"duration_ms", duration.Milliseconds(),
		}

		if len(c.Errors) > 0 {
			logger.Error("request completed with errors", append(attrs, "errors", c.Errors.String())...)
		} else if statusCode >= 500 {
			logger.Error("request completed", attrs...)
		} else if statusCode >= 400 {
			logger.Warn("request completed", attrs...)
		} else {
			logger.Info("request completed", attrs...)
		}
	}
}

func init() {
	// gin prints route registration in debug mode; keep it off stdout JSON
	gin.DefaultWriter = os.Stderr
}
