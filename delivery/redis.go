package delivery

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/Tsukikage7/quartzkit/logger"
)

// RedisOption Redis 投递目标配置选项.
type RedisOption func(*redisOptions)

type redisOptions struct {
	logger logger.Logger
}

// WithRedisLogger 设置日志记录器.
func WithRedisLogger(log logger.Logger) RedisOption {
	return func(o *redisOptions) {
		o.logger = log
	}
}

// RedisRecipient Redis Pub/Sub 投递目标.
//
// 触发消息以 Topic 为频道名发布，Body 作为消息内容.
// 客户端由调用方持有，Close 不会关闭客户端连接.
type RedisRecipient struct {
	client redis.UniversalClient
	closed atomic.Bool
	logger logger.Logger
}

// NewRedisRecipient 创建 Redis 投递目标.
func NewRedisRecipient(client redis.UniversalClient, opts ...RedisOption) (*RedisRecipient, error) {
	if client == nil {
		return nil, ErrNoBrokers
	}

	options := &redisOptions{}
	for _, opt := range opts {
		opt(options)
	}

	return &RedisRecipient{
		client: client,
		logger: options.logger,
	}, nil
}

// Deliver 将触发消息发布到 Redis 频道.
func (r *RedisRecipient) Deliver(ctx context.Context, env *Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.closed.Load() {
		return ErrRecipientClosed
	}

	if env == nil {
		return ErrNilEnvelope
	}
	if env.Topic == "" {
		return ErrEmptyTopic
	}

	if err := r.client.Publish(ctx, env.Topic, env.Body).Err(); err != nil {
		return errors.Join(ErrDeliver, err)
	}

	if r.logger != nil {
		r.logger.Debugf("[Delivery] 消息已发布: schedule=%s, channel=%s", env.Schedule, env.Topic)
	}
	return nil
}

// Close 关闭投递目标.
func (r *RedisRecipient) Close() error {
	r.closed.Store(true)
	return nil
}
