package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapCmdable 以 map 模擬 Redis，只實作 Get / Set / Del
type mapCmdable struct {
	goredis.Cmdable
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newMapCmdable() *mapCmdable {
	return &mapCmdable{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *mapCmdable) Get(ctx context.Context, key string) *goredis.StringCmd {
	cmd := goredis.NewStringCmd(ctx, "get", key)
	if m.failGet != nil {
		cmd.SetErr(m.failGet)
		return cmd
	}
	v, ok := m.data[key]
	if !ok {
		cmd.SetErr(goredis.Nil)
		return cmd
	}
	cmd.SetVal(v)
	return cmd
}

func (m *mapCmdable) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx, "set", key, value)
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttls[key] = expiration
	cmd.SetVal("OK")
	return cmd
}

func (m *mapCmdable) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	cmd := goredis.NewIntCmd(ctx, "del")
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	cmd.SetVal(n)
	return cmd
}

type view struct {
	Name string `json:"name"`
}

func TestViewCacheSetGetDelete(t *testing.T) {
	store := newMapCmdable()
	cache := NewViewCache[view](store, time.Minute, nil)
	ctx := context.Background()

	_, ok := cache.Get(ctx, "k")
	assert.False(t, ok)

	cache.Set(ctx, "k", &view{Name: "v_a1"})
	assert.Equal(t, time.Minute, store.ttls["k"])

	got, ok := cache.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "v_a1", got.Name)

	cache.Delete(ctx, "k")
	_, ok = cache.Get(ctx, "k")
	assert.False(t, ok)
}

func TestViewCacheTreatsErrorsAsMiss(t *testing.T) {
	store := newMapCmdable()
	store.data["bad"] = "{not json"
	cache := NewViewCache[view](store, 0, nil)

	_, ok := cache.Get(context.Background(), "bad")
	assert.False(t, ok)

	store.failGet = errors.New("connection reset")
	_, ok = cache.Get(context.Background(), "bad")
	assert.False(t, ok)
}

func TestNewClientUnreachable(t *testing.T) {
	_, err := NewClient(Config{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
