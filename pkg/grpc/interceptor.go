package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// LoggingInterceptor 記錄失敗的呼叫，成功的呼叫只在 debug 等級輸出
func LoggingInterceptor(log *zap.Logger) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		start := time.Now()
		err := invoker(ctx, method, req, reply, cc, opts...)
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("target", cc.Target()),
			zap.Duration("latency", time.Since(start)),
		}
		if err != nil {
			log.Warn("grpc call failed", append(fields, zap.String("code", status.Code(err).String()), zap.Error(err))...)
		} else {
			log.Debug("grpc call", fields...)
		}
		return err
	}
}

// TimeoutInterceptor 呼叫端沒有設定 deadline 時套用預設逾時
func TimeoutInterceptor(timeout time.Duration) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if _, ok := ctx.Deadline(); !ok && timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}
