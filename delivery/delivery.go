// Package delivery 定义调度触发消息的投递目标.
//
// 调度器在每次触发时构造 Envelope 并交给 Recipient 投递，
// 投递目标可以是进程内回调、通道，也可以是 Kafka、RabbitMQ、Redis
// 等外部消息系统.
package delivery

import (
	"context"
	"time"
)

// Envelope 单次触发产生的投递消息.
type Envelope struct {
	// Schedule 产生本次触发的调度名称（已折叠为大写）.
	Schedule string

	// Topic 目标主题 / 队列 / 频道.
	Topic string

	// Key 分区键，可为空.
	Key string

	// Body 消息负载.
	Body []byte

	// Headers 附加消息头.
	Headers map[string]string

	// ScheduledAt 计划触发时刻.
	ScheduledAt time.Time

	// FiredAt 实际触发时刻.
	FiredAt time.Time
}

// Recipient 投递目标.
//
// Deliver 在触发工作协程中被调用，实现应尊重 ctx 的取消与超时.
// 使用完毕后需调用 Close 释放底层连接.
type Recipient interface {
	// Deliver 投递一条触发消息.
	Deliver(ctx context.Context, env *Envelope) error

	// Close 关闭投递目标.
	Close() error
}
