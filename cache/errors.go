package cache

import "errors"

// 预定义错误.
var (
	// ErrNotFound 缓存键不存在.
	ErrNotFound = errors.New("cache: key not found")

	// ErrLockNotHeld 锁未持有或已过期.
	ErrLockNotHeld = errors.New("cache: lock not held or expired")

	// ErrNilConfig 缓存配置为空.
	ErrNilConfig = errors.New("cache: nil config")

	// ErrEmptyAddr 缓存地址为空.
	ErrEmptyAddr = errors.New("cache: address is required")

	// ErrUnsupported 不支持的缓存类型.
	ErrUnsupported = errors.New("cache: unsupported cache type")

	// ErrNilLogger 日志记录器为空.
	ErrNilLogger = errors.New("cache: nil logger")

	// ErrSerialize 序列化值失败.
	ErrSerialize = errors.New("cache: failed to serialize value")

	// ErrConnect 连接失败.
	ErrConnect = errors.New("cache: connection failed")

	// ErrClosed 缓存已关闭.
	ErrClosed = errors.New("cache: cache closed")
)
