package scheduler

import (
	"time"

	"github.com/Tsukikage7/quartzkit/engine"
	"github.com/Tsukikage7/quartzkit/lock"
	"github.com/Tsukikage7/quartzkit/logger"
	"github.com/Tsukikage7/quartzkit/metrics"
)

// Option 调度器配置选项.
type Option func(*options)

// options 调度器内部配置.
type options struct {
	logger          logger.Logger
	engine          engine.Engine
	locker          lock.Locker
	collector       *metrics.PrometheusCollector
	hooks           *Hooks
	deliveryTimeout time.Duration
	lockTTL         time.Duration
}

// defaultOptions 返回默认配置.
func defaultOptions() *options {
	return &options{
		deliveryTimeout: 30 * time.Second,
		lockTTL:         time.Minute,
	}
}

// WithLogger 设置日志记录器.
func WithLogger(log logger.Logger) Option {
	return func(o *options) {
		o.logger = log
	}
}

// WithEngine 注入触发引擎.
//
// 不设置时根据 thread_pool 配置构建默认引擎.
func WithEngine(e engine.Engine) Option {
	return func(o *options) {
		o.engine = e
	}
}

// WithLocker 设置分布式触发锁.
//
// 多实例部署时，同一次触发只有持有锁的实例投递消息.
//
// 示例:
//
//	c, _ := cache.NewCache(cache.NewRedisConfig("localhost:6379"), log)
//	locker, _ := lock.New(c, lock.WithKeyPrefix("quartzkit:"))
//	s, _ := scheduler.New(cfg, scheduler.WithLocker(locker))
func WithLocker(l lock.Locker) Option {
	return func(o *options) {
		o.locker = l
	}
}

// WithCollector 设置指标收集器.
func WithCollector(c *metrics.PrometheusCollector) Option {
	return func(o *options) {
		o.collector = c
	}
}

// WithHooks 设置全局触发钩子.
func WithHooks(hooks *Hooks) Option {
	return func(o *options) {
		o.hooks = hooks
	}
}

// WithDeliveryTimeout 设置单次投递超时.
//
// 默认 30 秒.
func WithDeliveryTimeout(d time.Duration) Option {
	return func(o *options) {
		o.deliveryTimeout = d
	}
}

// WithLockTTL 设置分布式触发锁过期时间.
//
// 应大于单次投递的最大耗时，默认 1 分钟.
func WithLockTTL(d time.Duration) Option {
	return func(o *options) {
		o.lockTTL = d
	}
}
