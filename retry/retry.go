// Package retry 提供带退避策略的重试执行.
package retry

import (
	"context"
	"errors"
	"time"
)

// BackoffFunc 计算第 attempt 次重试（从 0 开始）前的等待时间.
type BackoffFunc func(attempt int, delay time.Duration) time.Duration

// ConstantBackoff 固定间隔退避.
func ConstantBackoff(attempt int, delay time.Duration) time.Duration {
	return delay
}

// ExponentialBackoff 指数退避（delay * 2^attempt）.
func ExponentialBackoff(attempt int, delay time.Duration) time.Duration {
	return delay << attempt
}

// Config 重试配置.
type Config struct {
	// MaxAttempts 最大尝试次数（含首次执行）.
	MaxAttempts int

	// Delay 基础重试间隔.
	Delay time.Duration

	// MaxDelay 单次等待上限，0 表示不限制.
	MaxDelay time.Duration

	// Backoff 退避策略，缺省指数退避.
	Backoff BackoffFunc
}

// DefaultConfig 返回默认重试配置：3 次尝试，100ms 起指数退避.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Delay:       100 * time.Millisecond,
		MaxDelay:    5 * time.Second,
		Backoff:     ExponentialBackoff,
	}
}

// wait 计算第 attempt 次重试前的等待时间.
func (c *Config) wait(attempt int) time.Duration {
	backoff := c.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff
	}
	d := backoff(attempt, c.Delay)
	if c.MaxDelay > 0 && d > c.MaxDelay {
		d = c.MaxDelay
	}
	return d
}

// RetryableFunc 判断错误是否应该重试.
type RetryableFunc func(err error) bool

// Do 执行 fn，失败时按配置重试.
//
// 返回最后一次执行的错误；ctx 取消时立即返回 ctx.Err().
func Do(ctx context.Context, cfg *Config, fn func(ctx context.Context) error) error {
	return DoWithRetryable(ctx, cfg, fn, nil)
}

// DoWithRetryable 执行 fn，由 retryable 决定哪些错误触发重试.
//
// retryable 为 nil 时所有错误都重试.
func DoWithRetryable(ctx context.Context, cfg *Config, fn func(ctx context.Context) error, retryable RetryableFunc) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxAttempts <= 0 {
		return ErrInvalidAttempts
	}

	var err error
	for attempt := 0; attempt < cfg.MaxAttempts; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if retryable != nil && !retryable(err) {
			return err
		}

		if attempt < cfg.MaxAttempts-1 {
			select {
			case <-time.After(cfg.wait(attempt)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
	return err
}
