// Package lock 提供基于缓存的分布式锁.
//
// 多实例部署时用于保证同一触发只投递一次.
package lock

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Tsukikage7/quartzkit/cache"
)

// Locker 分布式锁接口.
type Locker interface {
	// TryLock 尝试获取锁，不阻塞.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// Acquire 获取锁，失败时按配置重试.
	Acquire(ctx context.Context, key string, ttl time.Duration) error

	// Unlock 释放锁.
	Unlock(ctx context.Context, key string) error

	// Extend 延长锁的过期时间.
	Extend(ctx context.Context, key string, ttl time.Duration) error
}

// Lock 基于缓存原语的分布式锁.
//
// 使用 SETNX + 过期时间实现，保证锁的原子性和自动过期.
// 每个锁实例有唯一的 owner ID，确保只有持有者能释放锁.
type Lock struct {
	cache      cache.Cache
	keyPrefix  string
	ownerID    string
	retryWait  time.Duration
	maxRetries int

	mu sync.Mutex
	// 当前持有的锁（key -> true），用于 Unlock 和 Extend 时验证所有权
	held map[string]bool
}

var _ Locker = (*Lock)(nil)

// Option 锁配置选项.
type Option func(*Lock)

// WithKeyPrefix 设置锁键前缀.
//
// 默认 "lock:".
func WithKeyPrefix(prefix string) Option {
	return func(l *Lock) {
		l.keyPrefix = prefix
	}
}

// WithOwnerID 设置锁持有者 ID.
//
// 默认自动生成 UUID.
func WithOwnerID(id string) Option {
	return func(l *Lock) {
		l.ownerID = id
	}
}

// WithRetryWait 设置重试等待时间.
//
// Lock 方法获取锁失败时的重试间隔，默认 100ms.
func WithRetryWait(wait time.Duration) Option {
	return func(l *Lock) {
		l.retryWait = wait
	}
}

// WithMaxRetries 设置最大重试次数.
//
// Lock 方法的最大重试次数，0 表示无限重试（直到 context 取消）.
func WithMaxRetries(n int) Option {
	return func(l *Lock) {
		l.maxRetries = n
	}
}

// New 创建分布式锁.
func New(c cache.Cache, opts ...Option) (*Lock, error) {
	if c == nil {
		return nil, ErrNilCache
	}

	l := &Lock{
		cache:     c,
		keyPrefix: "lock:",
		ownerID:   uuid.New().String(),
		retryWait: 100 * time.Millisecond,
		held:      make(map[string]bool),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

// TryLock 尝试获取锁.
func (l *Lock) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := l.cache.TryLock(ctx, l.keyPrefix+key, l.ownerID, ttl)
	if err != nil {
		return false, err
	}

	if acquired {
		l.mu.Lock()
		l.held[key] = true
		l.mu.Unlock()
	}
	return acquired, nil
}

// Acquire 获取锁（阻塞重试）.
func (l *Lock) Acquire(ctx context.Context, key string, ttl time.Duration) error {
	retries := 0

	for {
		acquired, err := l.TryLock(ctx, key, ttl)
		if err != nil {
			return err
		}
		if acquired {
			return nil
		}

		retries++
		if l.maxRetries > 0 && retries >= l.maxRetries {
			return ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.retryWait):
		}
	}
}

// Unlock 释放锁.
func (l *Lock) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	holding := l.held[key]
	l.mu.Unlock()

	if !holding {
		return ErrLockNotHeld
	}

	err := l.cache.Unlock(ctx, l.keyPrefix+key, l.ownerID)
	if err != nil {
		if errors.Is(err, cache.ErrLockNotHeld) {
			// 锁已过期或被抢占
			l.forget(key)
			return ErrLockNotHeld
		}
		return err
	}

	l.forget(key)
	return nil
}

// Extend 延长锁的过期时间.
func (l *Lock) Extend(ctx context.Context, key string, ttl time.Duration) error {
	l.mu.Lock()
	holding := l.held[key]
	l.mu.Unlock()

	if !holding {
		return ErrLockNotHeld
	}

	fullKey := l.keyPrefix + key

	val, err := l.cache.Get(ctx, fullKey)
	if err != nil {
		l.forget(key)
		return ErrLockExpired
	}
	if val != l.ownerID {
		l.forget(key)
		return ErrLockNotHeld
	}

	return l.cache.Expire(ctx, fullKey, ttl)
}

// OwnerID 返回当前锁持有者 ID.
func (l *Lock) OwnerID() string {
	return l.ownerID
}

// IsHeld 检查是否持有指定的锁.
func (l *Lock) IsHeld(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[key]
}

func (l *Lock) forget(key string) {
	l.mu.Lock()
	delete(l.held, key)
	l.mu.Unlock()
}
