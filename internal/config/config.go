package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/domain"
	"github.com/JoeShih716/go-pg-ledger/pkg/postgres"
	"github.com/JoeShih716/go-pg-ledger/pkg/redis"
)

// DefaultPath 預設設定檔位置，可用環境變數 LEDGER_CONFIG 覆寫
const DefaultPath = "config/config.yaml"

// 覆寫設定檔的環境變數
const (
	EnvConfigPath  = "LEDGER_CONFIG"
	EnvDatabaseURL = "DATABASE_URL"
	EnvRedisAddr   = "REDIS_ADDR"
	EnvLogLevel    = "LOG_LEVEL"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	HTTP     HTTPConfig     `yaml:"http"`
	Log      LogConfig      `yaml:"log"`
	Redis    RedisConfig    `yaml:"redis"`
}

// DatabaseConfig 帳務資料庫設定
// 連線相關欄位直接內嵌 postgres.Config
type DatabaseConfig struct {
	postgres.Config `yaml:",inline"`

	SchemaName         string `yaml:"schema_name"`
	ItemsPrefix        string `yaml:"items_prefix"`
	MigrationTableName string `yaml:"migration_table_name"` // 由外部 migration 工具使用
}

type GRPCConfig struct {
	Addr string `yaml:"addr"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// RedisConfig 歷史 view 名稱快取，Enabled 為 false 時不連線
type RedisConfig struct {
	redis.Config `yaml:",inline"`

	Enabled     bool          `yaml:"enabled"`
	ViewNameTTL time.Duration `yaml:"view_name_ttl"`
}

// Load 讀取設定檔並套用環境變數與預設值
//
// 參數:
//
//	path: 設定檔路徑，空字串時依序使用 LEDGER_CONFIG、DefaultPath
//
// 回傳值:
//
//	Config: 設定
//	error: 讀檔、解析或驗證失敗
func Load(path string) (Config, error) {
	// .env 不存在是正常情況
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = DefaultPath
	}

	cfgData, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(cfgData)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse 解析 YAML 內容，套用環境變數覆寫與預設值後驗證
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Database.ConnectionString = v
	}
	if v := os.Getenv(EnvRedisAddr); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
}

// 補全預設配置 (如果 yaml 沒寫)
func (c *Config) applyDefaults() {
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 20
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnectAttempts == 0 {
		c.Database.ConnectAttempts = 1
	}
	if c.Database.ApplicationName == "" {
		c.Database.ApplicationName = "go-pg-ledger"
	}
	if c.Database.MigrationTableName == "" {
		c.Database.MigrationTableName = "migrations"
	}
	if c.GRPC.Addr == "" {
		c.GRPC.Addr = ":50051"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Redis.ViewNameTTL == 0 {
		c.Redis.ViewNameTTL = time.Minute
	}
}

// Validate 檢查必要欄位
func (c *Config) Validate() error {
	if c.Database.SchemaName == "" {
		return domain.NewMissingArgumentError("database.schema_name")
	}
	if c.Database.ConnectionString == "" {
		return domain.NewMissingArgumentError("database.connection_string")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return domain.NewMissingArgumentError("redis.addr")
	}
	return nil
}
