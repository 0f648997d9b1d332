package lock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tsukikage7/quartzkit/cache"
)

func newTestLock(t *testing.T, opts ...Option) (*Lock, cache.Cache) {
	t.Helper()
	c, err := cache.NewMemoryCache(cache.NewMemoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	l, err := New(c, opts...)
	require.NoError(t, err)
	return l, c
}

func TestNewNilCache(t *testing.T) {
	_, err := New(nil)
	assert.ErrorIs(t, err, ErrNilCache)
}

func TestNewDefaults(t *testing.T) {
	l, _ := newTestLock(t)
	assert.NotEmpty(t, l.OwnerID())

	l2, _ := newTestLock(t, WithOwnerID("node-1"), WithKeyPrefix("sched:"))
	assert.Equal(t, "node-1", l2.OwnerID())
}

func TestTryLockUnlock(t *testing.T) {
	l, _ := newTestLock(t)
	ctx := context.Background()

	ok, err := l.TryLock(ctx, "fire:CLEANUP", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, l.IsHeld("fire:CLEANUP"))

	require.NoError(t, l.Unlock(ctx, "fire:CLEANUP"))
	assert.False(t, l.IsHeld("fire:CLEANUP"))
}

func TestTryLockContention(t *testing.T) {
	c, err := cache.NewMemoryCache(cache.NewMemoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	l1, err := New(c, WithOwnerID("node-1"))
	require.NoError(t, err)
	l2, err := New(c, WithOwnerID("node-2"))
	require.NoError(t, err)

	ctx := context.Background()

	ok, err := l1.TryLock(ctx, "fire", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = l2.TryLock(ctx, "fire", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, l1.Unlock(ctx, "fire"))

	ok, err = l2.TryLock(ctx, "fire", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUnlockNotHeld(t *testing.T) {
	l, _ := newTestLock(t)
	assert.ErrorIs(t, l.Unlock(context.Background(), "never-locked"), ErrLockNotHeld)
}

func TestUnlockExpired(t *testing.T) {
	l, _ := newTestLock(t)
	ctx := context.Background()

	ok, err := l.TryLock(ctx, "short", 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	assert.ErrorIs(t, l.Unlock(ctx, "short"), ErrLockNotHeld)
	assert.False(t, l.IsHeld("short"))
}

func TestAcquireRetries(t *testing.T) {
	c, err := cache.NewMemoryCache(cache.NewMemoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	l1, err := New(c, WithOwnerID("node-1"))
	require.NoError(t, err)
	l2, err := New(c, WithOwnerID("node-2"), WithRetryWait(10*time.Millisecond))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, l1.Acquire(ctx, "job", time.Minute))

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = l1.Unlock(context.Background(), "job")
	}()

	require.NoError(t, l2.Acquire(ctx, "job", time.Minute))
	assert.True(t, l2.IsHeld("job"))
}

func TestAcquireMaxRetries(t *testing.T) {
	c, err := cache.NewMemoryCache(cache.NewMemoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	l1, err := New(c)
	require.NoError(t, err)
	l2, err := New(c, WithRetryWait(5*time.Millisecond), WithMaxRetries(2))
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, l1.Acquire(ctx, "job", time.Minute))

	assert.ErrorIs(t, l2.Acquire(ctx, "job", time.Minute), ErrLockNotAcquired)
}

func TestAcquireContextCancel(t *testing.T) {
	c, err := cache.NewMemoryCache(cache.NewMemoryConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	l1, err := New(c)
	require.NoError(t, err)
	l2, err := New(c, WithRetryWait(10*time.Millisecond))
	require.NoError(t, err)

	require.NoError(t, l1.Acquire(context.Background(), "job", time.Minute))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l2.Acquire(ctx, "job", time.Minute), context.DeadlineExceeded)
}

func TestExtend(t *testing.T) {
	l, _ := newTestLock(t)
	ctx := context.Background()

	assert.ErrorIs(t, l.Extend(ctx, "job", time.Minute), ErrLockNotHeld)

	ok, err := l.TryLock(ctx, "job", 50*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, l.Extend(ctx, "job", time.Minute))

	time.Sleep(80 * time.Millisecond)
	assert.True(t, l.IsHeld("job"))
	require.NoError(t, l.Unlock(ctx, "job"))
}

func TestExtendExpired(t *testing.T) {
	l, _ := newTestLock(t)
	ctx := context.Background()

	ok, err := l.TryLock(ctx, "job", 10*time.Millisecond)
	require.NoError(t, err)
	require.True(t, ok)

	time.Sleep(30 * time.Millisecond)
	assert.ErrorIs(t, l.Extend(ctx, "job", time.Minute), ErrLockExpired)
	assert.False(t, l.IsHeld("job"))
}
