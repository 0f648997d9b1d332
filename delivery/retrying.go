package delivery

import (
	"context"
	"errors"

	"github.com/Tsukikage7/quartzkit/retry"
)

// retryingRecipient 带重试的投递目标装饰器.
type retryingRecipient struct {
	next Recipient
	cfg  *retry.Config
}

// NewRetrying 包装投递目标，投递失败时按配置重试.
//
// 校验类错误（空消息、空主题、目标已关闭）不会重试.
//
// 示例:
//
//	recipient, _ := delivery.NewKafkaRecipient(brokers)
//	recipient = delivery.NewRetrying(recipient, retry.DefaultConfig())
func NewRetrying(next Recipient, cfg *retry.Config) Recipient {
	if cfg == nil {
		cfg = retry.DefaultConfig()
	}
	return &retryingRecipient{next: next, cfg: cfg}
}

// Deliver 投递消息，失败时重试.
func (r *retryingRecipient) Deliver(ctx context.Context, env *Envelope) error {
	return retry.DoWithRetryable(ctx, r.cfg,
		func(ctx context.Context) error {
			return r.next.Deliver(ctx, env)
		},
		deliveryRetryable)
}

// Close 关闭底层投递目标.
func (r *retryingRecipient) Close() error {
	return r.next.Close()
}

// deliveryRetryable 校验类错误不重试.
func deliveryRetryable(err error) bool {
	switch {
	case errors.Is(err, ErrNilEnvelope),
		errors.Is(err, ErrEmptyTopic),
		errors.Is(err, ErrRecipientClosed):
		return false
	}
	return true
}
