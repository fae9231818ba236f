package grpc

import (
	"context"
	"path"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"github.com/JoeShih716/go-pg-ledger/pkg/metrics"
)

// LoggingInterceptor 記錄每個請求的方法、耗時與結果
func LoggingInterceptor(log *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		fields := []zap.Field{
			zap.String("method", info.FullMethod),
			zap.Duration("latency", time.Since(start)),
			zap.String("code", status.Code(err).String()),
		}
		if err != nil {
			log.Warn("grpc request failed", append(fields, zap.Error(err))...)
		} else {
			log.Debug("grpc request", fields...)
		}
		return resp, err
	}
}

// MetricsInterceptor 依方法與狀態碼記錄耗時
func MetricsInterceptor(m *metrics.Metrics) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		m.Observe("grpc", path.Base(info.FullMethod), status.Code(err).String(), time.Since(start))
		return resp, err
	}
}
