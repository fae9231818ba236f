package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	grpc_adapter "github.com/JoeShih716/go-pg-ledger/internal/app/core/adapter/in/grpc"
	http_adapter "github.com/JoeShih716/go-pg-ledger/internal/app/core/adapter/in/http"
	postgres_adapter "github.com/JoeShih716/go-pg-ledger/internal/app/core/adapter/out/postgres"
	redis_adapter "github.com/JoeShih716/go-pg-ledger/internal/app/core/adapter/out/redis"
	"github.com/JoeShih716/go-pg-ledger/internal/app/core/usecase"
	"github.com/JoeShih716/go-pg-ledger/internal/config"
	"github.com/JoeShih716/go-pg-ledger/pkg/logger"
	"github.com/JoeShih716/go-pg-ledger/pkg/metrics"
	"github.com/JoeShih716/go-pg-ledger/pkg/postgres"
	"github.com/JoeShih716/go-pg-ledger/pkg/redis"
	pb "github.com/JoeShih716/go-pg-ledger/proto"
)

func main() {
	// 1. 載入設定
	cfg, err := config.Load("")
	if err != nil {
		logger.NewLogger("info").Fatal("Failed to load config", zap.Error(err))
	}
	log := logger.NewLogger(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	// 2. 初始化 PostgreSQL Client (Base Infrastructure)
	dbClient, err := postgres.NewClient(cfg.Database.Config, postgres.WithLogger(log))
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer dbClient.Close()
	log.Info("Connected to PostgreSQL successfully", zap.String("schema", cfg.Database.SchemaName))

	// 3. 初始化 Ledger
	naming, err := postgres_adapter.NewNaming(cfg.Database.SchemaName, cfg.Database.ItemsPrefix)
	if err != nil {
		log.Fatal("Invalid database naming", zap.Error(err))
	}
	var ledgerOpts []postgres_adapter.LedgerOption
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(cfg.Redis.Config)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		ledgerOpts = append(ledgerOpts, postgres_adapter.WithViewNameCache(
			redis_adapter.NewViewNameCache(redisClient, cfg.Redis.ViewNameTTL, log),
		))
		log.Info("History view name cache enabled", zap.Duration("ttl", cfg.Redis.ViewNameTTL))
	}
	ledger, err := postgres_adapter.NewPostgresLedger(dbClient, naming, ledgerOpts...)
	if err != nil {
		log.Fatal("Failed to init PostgresLedger", zap.Error(err))
	}

	// 4. 初始化 UseCase
	coreUseCase := usecase.NewCoreUseCase(ledger)
	m := metrics.New()

	// 5. 啟動 gRPC Server
	lis, err := net.Listen("tcp", cfg.GRPC.Addr)
	if err != nil {
		log.Fatal("failed to listen", zap.String("addr", cfg.GRPC.Addr), zap.Error(err))
	}
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(
		grpc_adapter.LoggingInterceptor(log),
		grpc_adapter.MetricsInterceptor(m),
	))
	pb.RegisterLedgerServiceServer(grpcServer, grpc_adapter.NewGrpcServer(coreUseCase, log))

	go func() {
		log.Info("Starting gRPC server", zap.String("addr", cfg.GRPC.Addr))
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()

	// 6. 啟動 HTTP Server
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           http_adapter.NewRouter(http_adapter.NewHandler(coreUseCase, log), log, m),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("Starting HTTP server", zap.String("addr", cfg.HTTP.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to serve HTTP", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Warn("HTTP server shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	log.Info("Server exited")
}
