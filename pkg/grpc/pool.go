package grpc

import (
	"fmt"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// Pool 依目標地址共用 gRPC 連線，每個地址只維護一個 *grpc.ClientConn
// 可被多個 goroutine 同時使用
type Pool struct {
	conns        sync.Map // map[string]*grpc.ClientConn
	mu           sync.Mutex
	interceptors []grpc.UnaryClientInterceptor
	dialOptions  []grpc.DialOption
	keepalive    time.Duration
}

// PoolOption 定義了 Pool 的配置選項函數
type PoolOption func(*Pool)

// WithInterceptor 加入 UnaryClientInterceptor，依加入順序串接
func WithInterceptor(interceptor grpc.UnaryClientInterceptor) PoolOption {
	return func(p *Pool) {
		p.interceptors = append(p.interceptors, interceptor)
	}
}

// WithDialOptions 每條新連線都會附加的 DialOption (例如測試用的 bufconn dialer)
func WithDialOptions(opts ...grpc.DialOption) PoolOption {
	return func(p *Pool) {
		p.dialOptions = append(p.dialOptions, opts...)
	}
}

// WithKeepalive 設定 keepalive ping 間隔，0 代表不送 ping
func WithKeepalive(interval time.Duration) PoolOption {
	return func(p *Pool) {
		p.keepalive = interval
	}
}

// NewPool 建立連線池，預設每 10 秒送一次 keepalive ping
func NewPool(opts ...PoolOption) *Pool {
	p := &Pool{keepalive: 10 * time.Second}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// GetConnection 取得目標地址的連線，沒有或已關閉時建立新連線
//
// 參數:
//
//	target: 目標伺服器地址 (e.g., "localhost:50051")
//	opts: 只套用在這次新建連線的額外選項
//
// 回傳值:
//
//	*grpc.ClientConn: gRPC 客戶端連線物件
//	error: 若建立連線失敗則回傳錯誤
func (p *Pool) GetConnection(target string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	if conn, ok := p.load(target); ok {
		return conn, nil
	}

	// Double-check locking，避免並發時重複建立
	p.mu.Lock()
	defer p.mu.Unlock()
	if conn, ok := p.load(target); ok {
		return conn, nil
	}

	finalOpts := []grpc.DialOption{
		// 內部服務走私有網路，不加密
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if p.keepalive > 0 {
		finalOpts = append(finalOpts, grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                p.keepalive,
			Timeout:             time.Second,
			PermitWithoutStream: true,
		}))
	}
	if len(p.interceptors) > 0 {
		finalOpts = append(finalOpts, grpc.WithChainUnaryInterceptor(p.interceptors...))
	}
	finalOpts = append(finalOpts, p.dialOptions...)
	finalOpts = append(finalOpts, opts...)

	// grpc.NewClient 不會立即連線，第一次呼叫時才建立
	conn, err := grpc.NewClient(target, finalOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create grpc client for target %s: %w", target, err)
	}
	p.conns.Store(target, conn)
	return conn, nil
}

// load 讀取現有連線，已 Shutdown 的連線會被移除
func (p *Pool) load(target string) (*grpc.ClientConn, bool) {
	v, ok := p.conns.Load(target)
	if !ok {
		return nil, false
	}
	conn := v.(*grpc.ClientConn)
	if conn.GetState() == connectivity.Shutdown {
		p.conns.Delete(target)
		return nil, false
	}
	return conn, true
}

// Close 關閉所有連線，回傳第一個發生的錯誤
func (p *Pool) Close() error {
	var firstErr error
	p.conns.Range(func(key, value any) bool {
		conn := value.(*grpc.ClientConn)
		if err := conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		p.conns.Delete(key)
		return true
	})
	return firstErr
}
