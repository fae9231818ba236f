package redis

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ViewCache 以 JSON 存放在 Redis 的泛型快取
// ttl 為 0 代表不過期
type ViewCache[T any] struct {
	client goredis.Cmdable
	ttl    time.Duration
	log    *zap.Logger
}

// NewViewCache 建立 ViewCache，log 為 nil 時不記錄任何錯誤
func NewViewCache[T any](client goredis.Cmdable, ttl time.Duration, log *zap.Logger) *ViewCache[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &ViewCache[T]{client: client, ttl: ttl, log: log}
}

// Get 讀取並解析快取，任何錯誤都視為沒有命中
func (c *ViewCache[T]) Get(ctx context.Context, key string) (*T, bool) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			c.log.Warn("view cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		c.log.Warn("view cache decode failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &v, true
}

// Set 寫入快取；寫入失敗只記錄，不影響呼叫端
func (c *ViewCache[T]) Set(ctx context.Context, key string, value *T) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("view cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.log.Warn("view cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// Delete 刪除快取
func (c *ViewCache[T]) Delete(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.log.Warn("view cache delete failed", zap.String("key", key), zap.Error(err))
	}
}
