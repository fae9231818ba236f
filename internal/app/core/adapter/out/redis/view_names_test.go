package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCmdable struct {
	goredis.Cmdable
	data map[string]string
}

func (m *memoryCmdable) Get(ctx context.Context, key string) *goredis.StringCmd {
	cmd := goredis.NewStringCmd(ctx, "get", key)
	if v, ok := m.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(goredis.Nil)
	}
	return cmd
}

func (m *memoryCmdable) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	m.data[key] = string(value.([]byte))
	cmd := goredis.NewStatusCmd(ctx, "set", key)
	cmd.SetVal("OK")
	return cmd
}

func (m *memoryCmdable) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	for _, k := range keys {
		delete(m.data, k)
	}
	cmd := goredis.NewIntCmd(ctx, "del")
	cmd.SetVal(int64(len(keys)))
	return cmd
}

func TestViewNameCache(t *testing.T) {
	store := &memoryCmdable{data: map[string]string{}}
	cache := NewViewNameCache(store, time.Minute, nil)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "A1")
	assert.False(t, ok)

	cache.Set(ctx, "A1", `"ledger".history_a1_2024_03`)
	assert.Equal(t, `"\"ledger\".history_a1_2024_03"`, store.data["ledger:history_view:A1"])

	name, ok := cache.Get(ctx, "A1")
	require.True(t, ok)
	assert.Equal(t, `"ledger".history_a1_2024_03`, name)

	cache.Invalidate(ctx, "A1")
	_, ok = cache.Get(ctx, "A1")
	assert.False(t, ok)
}
