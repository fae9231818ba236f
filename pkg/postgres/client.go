package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Row 一筆查詢結果，key 為欄位名稱
type Row = map[string]any

const retryInterval = 2 * time.Second

// Client 封裝 GORM DB 實例
type Client struct {
	db           *gorm.DB
	queryTimeout time.Duration
	log          *zap.Logger
}

// Option 定義了 Client 的配置選項函數
type Option func(*Client)

// WithLogger 設定連線重試時使用的 logger
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient 建立並回傳一個新的 PostgreSQL 客戶端實例 (GORM over pgx)
//
// 參數:
//
//	cfg: Config - PostgreSQL 連線配置
//	opts: ...Option - 可選設定
//
// 回傳值:
//
//	*Client: 封裝後的 PostgreSQL 客戶端
//	error: 設定缺漏回傳 ErrMissingConfig，連線測試失敗回傳 ErrUnreachable
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	connConfig, err := cfg.ConnConfig()
	if err != nil {
		return nil, err
	}
	sqlDB := stdlib.OpenDB(*connConfig)
	client, err := open(gormpostgres.New(gormpostgres.Config{Conn: sqlDB}), cfg, opts...)
	if err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return client, nil
}

// open 以指定的 dialector 建立 Client，設定連線池並做一次連線測試
func open(dialector gorm.Dialector, cfg Config, opts ...Option) (*Client, error) {
	client := &Client{
		queryTimeout: millis(cfg.QueryTimeoutMillis),
		log:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(client)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		// 所有寫入都由 stored procedure 在資料庫端處理 transaction
		SkipDefaultTransaction: true,
		// 連線測試由 ping 負責，才能套用重試次數
		DisableAutomaticPing:   true,
		Logger:                 newLogger(cfg.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	// 取得底層 sql.DB 物件以設定連線池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.db: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.IdleTimeoutMillis > 0 {
		sqlDB.SetConnMaxIdleTime(millis(cfg.IdleTimeoutMillis))
	}
	client.db = db

	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		if err = client.ping(millis(cfg.ConnectionTimeoutMillis)); err == nil {
			return client, nil
		}
		if i < attempts-1 {
			client.log.Warn("failed to connect to postgres, retrying",
				zap.Int("attempt", i+1),
				zap.Int("max_attempts", attempts),
				zap.Duration("retry_in", retryInterval),
				zap.Error(err),
			)
			time.Sleep(retryInterval)
		}
	}
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrUnreachable, attempts, err)
}

// ping 送一個 SELECT 1 確認資料庫可用
func (c *Client) ping(timeout time.Duration) error {
	ctx := context.Background()
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var one int
	return c.db.WithContext(ctx).Raw("SELECT 1").Scan(&one).Error
}

// Query 執行參數化查詢並回傳所有資料列
// placeholder 使用 ?，由 GORM 轉成 $1, $2...
// 資料庫錯誤原樣回傳
func (c *Client) Query(ctx context.Context, sql string, args ...any) ([]Row, error) {
	if c.queryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.queryTimeout)
		defer cancel()
	}
	rows, err := c.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRows(rows)
}

// scanRows 逐欄掃進 *any，保留 driver 原始的值
// 不能交給 GORM 的 map Scan：它依 ColumnType.ScanType 配置目標，pgx 對 numeric 回報 float64，會丟失精度
func scanRows(rows *sql.Rows) ([]Row, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	result := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		dest := make([]any, len(columns))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DB 回傳底層的 *gorm.DB 實例
func (c *Client) DB() *gorm.DB {
	return c.db
}

// Close 關閉資料庫連線
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// newLogger 根據配置建立 GORM Logger
func newLogger(level string) logger.Interface {
	var logLevel logger.LogLevel
	switch level {
	case "info":
		logLevel = logger.Info
	case "warn":
		logLevel = logger.Warn
	case "error":
		logLevel = logger.Error
	case "silent":
		logLevel = logger.Silent
	default:
		logLevel = logger.Error // 預設只記錄錯誤
	}

	return logger.Default.LogMode(logLevel)
}
