package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"socialgraph/infrastructure/config"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewCache(&config.Config{RedisAddr: mr.Addr()}, zap.NewNop())
	t.Cleanup(func() { cache.Close() })
	return cache, mr
}

// newDownCache points the client at a port nothing listens on, so every
// command fails with a refused connection.
func newDownCache(t *testing.T, logger *zap.Logger) *Cache {
	t.Helper()
	cache := NewCache(&config.Config{RedisAddr: "127.0.0.1:1"}, logger)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestConnectProbesStore(t *testing.T) {
	cache, _ := newTestCache(t)
	assert.NoError(t, cache.Connect(context.Background()))

	down := newDownCache(t, zap.NewNop())
	assert.Error(t, down.Connect(context.Background()))
}

func TestGetSetRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.Set(ctx, "user:u1", `{"id":"u1"}`, time.Minute)

	value, ok := cache.Get(ctx, "user:u1")
	require.True(t, ok)
	assert.Equal(t, `{"id":"u1"}`, value)
	assert.Equal(t, time.Minute, mr.TTL("user:u1"))
}

func TestGetMissReturnsNotOK(t *testing.T) {
	cache, _ := newTestCache(t)

	value, ok := cache.Get(context.Background(), "user:ghost")
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestGetManyReturnsPresentKeysOnly(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	cache.Set(ctx, "user:a", "A", time.Minute)
	cache.Set(ctx, "user:c", "C", time.Minute)

	values := cache.GetMany(ctx, []string{"user:a", "user:b", "user:c"})

	assert.Equal(t, map[string]string{"user:a": "A", "user:c": "C"}, values)
}

func TestSetManyAppliesOneTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	cache.SetMany(ctx, map[string]string{"k1": "v1", "k2": "v2"}, 30*time.Second)

	for _, key := range []string{"k1", "k2"} {
		value, ok := cache.Get(ctx, key)
		require.True(t, ok, key)
		assert.NotEmpty(t, value)
		assert.Equal(t, 30*time.Second, mr.TTL(key))
	}
}

func TestDeleteRemovesKeys(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	cache.Set(ctx, "user:a", "A", time.Minute)
	cache.Set(ctx, "user:b", "B", time.Minute)

	cache.Delete(ctx, "user:a", "user:b")

	assert.False(t, mr.Exists("user:a"))
	assert.False(t, mr.Exists("user:b"))
}

func TestDeletePatternRemovesAcrossScanPages(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	// More matching keys than one SCAN page holds.
	for i := 0; i < 2*scanPageSize+10; i++ {
		cache.Set(ctx, fmt.Sprintf("user:u1:relationships:%d", i), "x", time.Minute)
	}
	cache.Set(ctx, "user:u1", "entity", time.Minute)
	cache.Set(ctx, "user:u2:relationships:all", "other", time.Minute)

	cache.DeletePattern(ctx, "user:u1:relationships:*")

	for i := 0; i < 2*scanPageSize+10; i++ {
		require.False(t, mr.Exists(fmt.Sprintf("user:u1:relationships:%d", i)))
	}
	assert.True(t, mr.Exists("user:u1"))
	assert.True(t, mr.Exists("user:u2:relationships:all"))
}

func TestIncrement(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	assert.Equal(t, int64(5), cache.Increment(ctx, "counter", 5))
	assert.Equal(t, int64(8), cache.Increment(ctx, "counter", 3))
}

func TestGetTTL(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()
	cache.Set(ctx, "user:a", "A", 5*time.Minute)

	assert.Equal(t, 5*time.Minute, cache.GetTTL(ctx, "user:a"))
	assert.Less(t, cache.GetTTL(ctx, "user:ghost"), time.Duration(0))
}

func TestOperationsDegradeWhenStoreIsDown(t *testing.T) {
	cache := newDownCache(t, zap.NewNop())
	ctx := context.Background()

	value, ok := cache.Get(ctx, "user:a")
	assert.False(t, ok)
	assert.Empty(t, value)

	// Writes are silent no-ops.
	cache.Set(ctx, "user:a", "A", time.Minute)
	cache.Delete(ctx, "user:a")
	cache.DeletePattern(ctx, "user:*")
	cache.SetMany(ctx, map[string]string{"k": "v"}, time.Minute)

	assert.Empty(t, cache.GetMany(ctx, []string{"user:a"}))
	assert.Equal(t, int64(0), cache.Increment(ctx, "counter", 1))
	assert.Less(t, cache.GetTTL(ctx, "user:a"), time.Duration(0))
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cache := newDownCache(t, zap.New(core))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, ok := cache.Get(ctx, "user:a")
		assert.False(t, ok)
	}

	entries := logs.FilterMessage("cache breaker state change").All()
	require.NotEmpty(t, entries)
	assert.Equal(t, "open", entries[len(entries)-1].ContextMap()["to"])

	// While the breaker is open, calls still degrade to misses.
	_, ok := cache.Get(ctx, "user:a")
	assert.False(t, ok)
}

func TestMissesDoNotTripBreaker(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	mr := miniredis.RunT(t)
	cache := NewCache(&config.Config{RedisAddr: mr.Addr()}, zap.New(core))
	t.Cleanup(func() { cache.Close() })
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, ok := cache.Get(ctx, "user:ghost")
		assert.False(t, ok)
	}

	assert.Empty(t, logs.FilterMessage("cache breaker state change").All())

	cache.Set(ctx, "user:a", "A", time.Minute)
	value, ok := cache.Get(ctx, "user:a")
	require.True(t, ok)
	assert.Equal(t, "A", value)
}
