package delivery

import (
	"context"
	"sync/atomic"
)

// Func 进程内回调投递目标.
//
// 将触发消息直接交给回调函数处理，适合把调度器当作库内嵌使用的场景.
type Func func(ctx context.Context, env *Envelope) error

// NewFunc 创建回调投递目标.
func NewFunc(fn Func) (Recipient, error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return &funcRecipient{fn: fn}, nil
}

type funcRecipient struct {
	fn     Func
	closed atomic.Bool
}

// Deliver 调用回调函数.
func (r *funcRecipient) Deliver(ctx context.Context, env *Envelope) error {
	if r.closed.Load() {
		return ErrRecipientClosed
	}
	if env == nil {
		return ErrNilEnvelope
	}
	return r.fn(ctx, env)
}

// Close 关闭投递目标.
func (r *funcRecipient) Close() error {
	r.closed.Store(true)
	return nil
}

// channelRecipient 通道投递目标.
//
// 非阻塞写入：通道满时返回 ErrMailboxFull 而不是阻塞触发工作协程.
type channelRecipient struct {
	ch     chan<- *Envelope
	closed atomic.Bool
}

// NewChannel 创建通道投递目标.
//
// 调度器只向通道写入，不负责关闭通道；消费方持有读端.
func NewChannel(ch chan<- *Envelope) (Recipient, error) {
	if ch == nil {
		return nil, ErrNilChannel
	}
	return &channelRecipient{ch: ch}, nil
}

// Deliver 将消息写入通道.
func (r *channelRecipient) Deliver(ctx context.Context, env *Envelope) error {
	if r.closed.Load() {
		return ErrRecipientClosed
	}
	if env == nil {
		return ErrNilEnvelope
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	select {
	case r.ch <- env:
		return nil
	default:
		return ErrMailboxFull
	}
}

// Close 关闭投递目标，之后的投递返回 ErrRecipientClosed.
func (r *channelRecipient) Close() error {
	r.closed.Store(true)
	return nil
}
