package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Tsukikage7/quartzkit/logger"
)

// memoryCache 内存缓存实现.
type memoryCache struct {
	data    map[string]*cacheItem
	mu      sync.RWMutex
	config  *Config
	logger  logger.Logger
	closeCh chan struct{}
	closed  bool
}

// cacheItem 缓存项.
type cacheItem struct {
	value    string
	expireAt time.Time
	noExpire bool
}

// isExpired 检查是否过期.
func (i *cacheItem) isExpired() bool {
	if i.noExpire {
		return false
	}
	return time.Now().After(i.expireAt)
}

// NewMemoryCache 创建内存缓存.
func NewMemoryCache(config *Config, log logger.Logger) (Cache, error) {
	if config == nil {
		config = NewMemoryConfig()
	}
	config.ApplyDefaults()

	c := &memoryCache{
		data:    make(map[string]*cacheItem),
		config:  config,
		logger:  log,
		closeCh: make(chan struct{}),
	}

	// 启动清理协程
	go c.cleanupLoop()

	if log != nil {
		log.Debug("[cache] memory cache initialized")
	}

	return c, nil
}

// cleanupLoop 定期清理过期项.
func (m *memoryCache) cleanupLoop() {
	ticker := time.NewTicker(m.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.closeCh:
			return
		}
	}
}

// cleanup 清理过期项.
func (m *memoryCache) cleanup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, item := range m.data {
		if item.isExpired() {
			delete(m.data, key)
		}
	}
}

// serialize 将值序列化为字符串.
func (m *memoryCache) serialize(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrSerialize, err)
		}
		return string(data), nil
	}
}

func newItem(value string, ttl time.Duration) *cacheItem {
	item := &cacheItem{value: value}
	if ttl <= 0 {
		item.noExpire = true
	} else {
		item.expireAt = time.Now().Add(ttl)
	}
	return item
}

// Set 设置键值对.
func (m *memoryCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := m.serialize(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	if len(m.data) >= m.config.MaxSize {
		m.evictOne()
	}
	m.data[key] = newItem(data, ttl)
	return nil
}

// evictOne 淘汰一个过期项，没有过期项时淘汰任意一项.
// 调用方持有写锁.
func (m *memoryCache) evictOne() {
	for key, item := range m.data {
		if item.isExpired() {
			delete(m.data, key)
			return
		}
	}
	for key := range m.data {
		delete(m.data, key)
		return
	}
}

// Get 获取值.
func (m *memoryCache) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	item, exists := m.data[key]
	m.mu.RUnlock()

	if !exists || item.isExpired() {
		return "", ErrNotFound
	}
	return item.value, nil
}

// Del 删除键.
func (m *memoryCache) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// Exists 检查键是否存在.
func (m *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.RLock()
	item, exists := m.data[key]
	m.mu.RUnlock()

	return exists && !item.isExpired(), nil
}

// SetNX 仅当键不存在时设置.
func (m *memoryCache) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	data, err := m.serialize(value)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false, ErrClosed
	}
	if item, exists := m.data[key]; exists && !item.isExpired() {
		return false, nil
	}
	m.data[key] = newItem(data, ttl)
	return true, nil
}

// Expire 设置过期时间.
func (m *memoryCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, exists := m.data[key]
	if !exists || item.isExpired() {
		return ErrNotFound
	}

	if ttl <= 0 {
		item.noExpire = true
		item.expireAt = time.Time{}
	} else {
		item.noExpire = false
		item.expireAt = time.Now().Add(ttl)
	}
	return nil
}

// TTL 获取剩余过期时间.
func (m *memoryCache) TTL(ctx context.Context, key string) (time.Duration, error) {
	m.mu.RLock()
	item, exists := m.data[key]
	m.mu.RUnlock()

	if !exists || item.isExpired() {
		return 0, ErrNotFound
	}
	if item.noExpire {
		return -1, nil
	}
	return time.Until(item.expireAt), nil
}

// TryLock 尝试获取锁.
func (m *memoryCache) TryLock(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return m.SetNX(ctx, key, value, ttl)
}

// Unlock 释放锁，只有值匹配时才删除.
func (m *memoryCache) Unlock(ctx context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	item, exists := m.data[key]
	if !exists || item.isExpired() || item.value != value {
		return ErrLockNotHeld
	}
	delete(m.data, key)
	return nil
}

// Ping 健康检查.
func (m *memoryCache) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return ErrClosed
	}
	return nil
}

// Close 关闭缓存.
func (m *memoryCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	close(m.closeCh)
	m.data = make(map[string]*cacheItem)
	return nil
}

// Client 返回底层客户端，内存缓存没有底层客户端.
func (m *memoryCache) Client() any {
	return nil
}
