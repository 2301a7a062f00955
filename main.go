package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pinboard/auth"
	"pinboard/config"
	"pinboard/controllers"
	"pinboard/database"
	"pinboard/grpc_server"
	"pinboard/registry"
	"pinboard/repositories"
	"pinboard/services"
	"pinboard/storage"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
)

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	switch level {
	case "debug":
		logger, err = zap.NewDevelopment()
	default:
		cfg := zap.NewProductionConfig()
		if lvl, parseErr := zapcore.ParseLevel(level); parseErr == nil {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}
		logger, err = cfg.Build()
	}
	if err != nil {
		panic(fmt.Errorf("building logger: %w", err))
	}
	return logger
}

func main() {
	// Initialize configs
	config.InitConfig()
	cfg := config.AppConfig

	logger := newLogger(cfg.LogLevel)
	defer logger.Sync() // Make sure the buffer is flushed before the program exits

	if cfg.InsecureSecret() {
		logger.Warn("Using the built-in JWT secret; set PINBOARD_JWT_SECRET before exposing this server")
	}
	auth.Configure([]byte(cfg.JwtSecret), cfg.TokenTTL, cfg.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer database.Close(db)
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database instance", zap.Error(err))
	}

	store, err := storage.New(ctx, cfg.Uploads)
	if err != nil {
		logger.Fatal("Failed to initialize image storage", zap.String("backend", cfg.Uploads.Backend), zap.Error(err))
	}
	if closer, ok := store.(io.Closer); ok {
		defer closer.Close()
	}

	pinRepo := repositories.NewPinRepository(db)
	userService := services.NewUserService(repositories.NewUserRepository(db), cfg.BcryptCost)
	pinService := services.NewPinService(pinRepo, store, services.UploadPolicy{
		MaxBytes:     cfg.Uploads.MaxBytes,
		AllowedTypes: cfg.Uploads.AllowedTypes,
	}, logger)
	commentService := services.NewCommentService(repositories.NewCommentRepository(db), pinRepo)
	likeService := services.NewLikeService(repositories.NewLikeRepository(db), pinRepo)
	boardService := services.NewBoardService(repositories.NewBoardRepository(db), pinRepo)

	container := controllers.NewContainer(controllers.Deps{
		Users:       userService,
		Pins:        pinService,
		Comments:    commentService,
		Likes:       likeService,
		Boards:      boardService,
		Uploads:     cfg.Uploads,
		CORS:        cfg.CORS,
		ServiceName: cfg.ServiceName,
		Logger:      logger,
		Ping:        sqlDB.PingContext,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           container,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("HTTP server listening", zap.Int("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", zap.Error(err))
			stop()
		}
	}()

	var grpcServer *grpc.Server
	var healthServer *health.Server
	if cfg.GRPCPort > 0 {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
		if err != nil {
			logger.Fatal("Failed to listen for gRPC", zap.Int("port", cfg.GRPCPort), zap.Error(err))
		}
		grpcServer, healthServer = grpc_server.NewServer(pinService, logger)
		go func() {
			logger.Info("gRPC server listening", zap.Int("port", cfg.GRPCPort))
			if err := grpcServer.Serve(lis); err != nil {
				logger.Error("gRPC server failed", zap.Error(err))
				stop()
			}
		}()
	}

	deregister := registerWithConsul(cfg, logger)

	<-ctx.Done()
	logger.Info("Shutting down")

	deregister()
	if healthServer != nil {
		healthServer.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server did not shut down cleanly", zap.Error(err))
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
}

// registerWithConsul announces the HTTP listener, and the gRPC listener when enabled,
// and returns the function that withdraws them. Without a consul address it does nothing.
func registerWithConsul(cfg config.Config, logger *zap.Logger) func() {
	if cfg.Consul.Address == "" {
		return func() {}
	}

	reg, err := registry.NewConsulRegistry(cfg.Consul.Address, logger)
	if err != nil {
		logger.Warn("Service registration disabled", zap.Error(err))
		return func() {}
	}

	host, err := os.Hostname()
	if err != nil {
		host = "localhost"
	}

	var ids []string
	httpID := registry.InstanceID(cfg.ServiceName, host, cfg.HTTPPort, "http")
	httpCheck := registry.CreateHTTPCheck(httpID, host, cfg.HTTPPort, "/health", "10s", "2s")
	if err := reg.Register(httpID, cfg.ServiceName, host, cfg.HTTPPort, []string{"http", "api"}, httpCheck); err != nil {
		logger.Warn("Failed to register HTTP service", zap.Error(err))
	} else {
		ids = append(ids, httpID)
	}

	if cfg.GRPCPort > 0 {
		grpcID := registry.InstanceID(cfg.ServiceName, host, cfg.GRPCPort, "grpc")
		grpcCheck := registry.CreateGRPCSCheck(grpcID, fmt.Sprintf("%s:%d", host, cfg.GRPCPort), "10s", "2s", false)
		if err := reg.Register(grpcID, cfg.ServiceName+"-grpc", host, cfg.GRPCPort, []string{"grpc"}, grpcCheck); err != nil {
			logger.Warn("Failed to register gRPC service", zap.Error(err))
		} else {
			ids = append(ids, grpcID)
		}
	}

	return func() {
		for _, id := range ids {
			if err := reg.Deregister(id); err != nil {
				logger.Warn("Failed to deregister service", zap.String("service_id", id), zap.Error(err))
			}
		}
	}
}
