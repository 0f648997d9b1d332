package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) Cache {
	t.Helper()
	c, err := NewMemoryCache(NewMemoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, (*Config)(nil).Validate(), ErrNilConfig)
	assert.ErrorIs(t, (&Config{Type: "etcd"}).Validate(), ErrUnsupported)
	assert.ErrorIs(t, (&Config{Type: TypeRedis}).Validate(), ErrEmptyAddr)
	assert.NoError(t, NewMemoryConfig().Validate())
	assert.NoError(t, NewRedisConfig("localhost:6379").Validate())
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := NewMemoryConfig()
	cfg.ApplyDefaults()

	assert.Equal(t, DefaultPoolSize, cfg.PoolSize)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultCleanupInterval, cfg.CleanupInterval)
	assert.Equal(t, DefaultMaxSize, cfg.MaxSize)
}

func TestNewCacheNilLogger(t *testing.T) {
	_, err := NewCache(NewMemoryConfig(), nil)
	assert.ErrorIs(t, err, ErrNilLogger)
}

func TestMemorySetGet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	_, err = c.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySerialize(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "bytes", []byte("raw"), 0))
	require.NoError(t, c.Set(ctx, "struct", map[string]int{"n": 1}, 0))

	got, err := c.Get(ctx, "bytes")
	require.NoError(t, err)
	assert.Equal(t, "raw", got)

	got, err = c.Get(ctx, "struct")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, got)
}

func TestMemoryExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 20*time.Millisecond))

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	time.Sleep(40 * time.Millisecond)

	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDel(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	require.NoError(t, c.Del(ctx, "a", "b", "missing"))

	exists, err := c.Exists(ctx, "a")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemorySetNX(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	ok, err := c.SetNX(ctx, "k", "first", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.SetNX(ctx, "k", "second", 0)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestMemoryExpireAndTTL(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", 0))

	ttl, err := c.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(-1), ttl)

	require.NoError(t, c.Expire(ctx, "k", time.Minute))
	ttl, err = c.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	assert.ErrorIs(t, c.Expire(ctx, "missing", time.Minute), ErrNotFound)
}

func TestMemoryTryLockUnlock(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	ok, err := c.TryLock(ctx, "lock:job", "owner-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.TryLock(ctx, "lock:job", "owner-2", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// 非持有者不能释放
	assert.ErrorIs(t, c.Unlock(ctx, "lock:job", "owner-2"), ErrLockNotHeld)

	require.NoError(t, c.Unlock(ctx, "lock:job", "owner-1"))

	ok, err = c.TryLock(ctx, "lock:job", "owner-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryClose(t *testing.T) {
	c, err := NewMemoryCache(nil, nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Ping(ctx))
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Ping(ctx), ErrClosed)
	assert.ErrorIs(t, c.Set(ctx, "k", "v", 0), ErrClosed)

	// 重复关闭无副作用
	assert.NoError(t, c.Close())
}

func TestNewRedisCacheValidation(t *testing.T) {
	_, err := NewRedisCache(nil, nil)
	assert.ErrorIs(t, err, ErrNilConfig)

	_, err = NewRedisCache(&Config{Type: TypeRedis}, nil)
	assert.ErrorIs(t, err, ErrEmptyAddr)
}
