package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/JoeShih716/go-pg-ledger/internal/app/core/adapter/out/postgres"
	"github.com/JoeShih716/go-pg-ledger/pkg/redis"
)

const viewNameKeyPrefix = "ledger:history_view:"

// ViewNameCache 以 Redis 快取帳戶歷史 view 名稱
// 存活時間應短於資料庫分區輪替的週期
type ViewNameCache struct {
	cache *redis.ViewCache[string]
}

func NewViewNameCache(client goredis.Cmdable, ttl time.Duration, log *zap.Logger) *ViewNameCache {
	return &ViewNameCache{
		cache: redis.NewViewCache[string](client, ttl, log),
	}
}

func (c *ViewNameCache) Get(ctx context.Context, accountNumber string) (string, bool) {
	name, ok := c.cache.Get(ctx, viewNameKeyPrefix+accountNumber)
	if !ok || *name == "" {
		return "", false
	}
	return *name, true
}

func (c *ViewNameCache) Set(ctx context.Context, accountNumber string, viewName string) {
	c.cache.Set(ctx, viewNameKeyPrefix+accountNumber, &viewName)
}

func (c *ViewNameCache) Invalidate(ctx context.Context, accountNumber string) {
	c.cache.Delete(ctx, viewNameKeyPrefix+accountNumber)
}

var _ postgres.ViewNameCache = (*ViewNameCache)(nil)
