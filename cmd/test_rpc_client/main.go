package main

import (
	"context"
	"flag"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/protobuf/types/known/structpb"

	grpc_adapter "github.com/JoeShih716/go-pg-ledger/internal/app/core/adapter/in/grpc"
	"github.com/JoeShih716/go-pg-ledger/pkg/grpc"
	"github.com/JoeShih716/go-pg-ledger/pkg/logger"
	pb "github.com/JoeShih716/go-pg-ledger/proto"
)

func main() {
	target := flag.String("target", "localhost:50051", "ledger gRPC address")
	account := flag.String("account", "ACC-0001", "account number to deposit into")
	totalCount := flag.Int("n", 10000, "total AddTransaction calls")
	concurrency := flag.Int("c", 100, "concurrent callers")
	amount := flag.String("amount", "1.00", "amount per transaction")
	flag.Parse()

	log := logger.NewLogger("info")
	defer func() { _ = log.Sync() }()

	pool := grpc.NewPool(
		grpc.WithInterceptor(grpc.TimeoutInterceptor(5*time.Second)),
		grpc.WithInterceptor(grpc.LoggingInterceptor(log)),
	)
	defer pool.Close()

	conn, err := pool.GetConnection(*target)
	if err != nil {
		log.Fatal("did not connect", zap.Error(err))
	}
	c := pb.NewLedgerServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	var failed atomic.Int64
	sem := make(chan struct{}, *concurrency)
	startTime := time.Now()

	for i := 0; i < *totalCount; i++ {
		sem <- struct{}{}
		wg.Add(1)

		go func(idx int) {
			defer wg.Done()
			defer func() { <-sem }()

			req, err := structpb.NewStruct(map[string]any{
				"accountNumber": *account,
				"amount":        *amount,
				"code":          uuid.NewString(),
				"description":   fmt.Sprintf("load test #%d", idx),
				"meta":          map[string]any{"source": "test_rpc_client", "seq": idx},
			})
			if err != nil {
				failed.Add(1)
				return
			}
			if _, err := c.AddTransaction(ctx, req); err != nil {
				failed.Add(1)
				if idx%1000 == 0 {
					log.Warn("AddTransaction failed", zap.Int("idx", idx), zap.String("code", grpc_adapter.ErrorCode(err)), zap.Error(err))
				}
			}
		}(i)
	}
	wg.Wait()

	elapsed := time.Since(startTime)
	balance, err := c.GetBalance(ctx, &structpb.Struct{Fields: map[string]*structpb.Value{
		"accountNumber": structpb.NewStringValue(*account),
	}})
	if err != nil {
		log.Warn("GetBalance failed", zap.Error(err))
	}

	fmt.Printf("Completed %d requests (%d failed) in %v\n", *totalCount, failed.Load(), elapsed)
	fmt.Printf("TPS: %.2f\n", float64(*totalCount)/elapsed.Seconds())
	if balance != nil {
		fmt.Printf("Balance of %s: %s\n", *account, balance.GetFields()["balance"].GetStringValue())
	}
}
