package delivery

import (
	"context"
	"errors"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Tsukikage7/quartzkit/logger"
)

// RabbitMQOption RabbitMQ 投递目标配置选项.
type RabbitMQOption func(*rabbitMQOptions)

type rabbitMQOptions struct {
	exchange     string
	exchangeType string
	durable      bool
	logger       logger.Logger
}

// WithExchange 设置交换机名称与类型.
//
// 不设置时消息发布到默认交换机，Topic 作为路由键直达同名队列.
func WithExchange(name, kind string) RabbitMQOption {
	return func(o *rabbitMQOptions) {
		o.exchange = name
		o.exchangeType = kind
	}
}

// WithRabbitMQLogger 设置日志记录器.
func WithRabbitMQLogger(log logger.Logger) RabbitMQOption {
	return func(o *rabbitMQOptions) {
		o.logger = log
	}
}

// RabbitMQRecipient RabbitMQ 投递目标.
//
// 触发消息以 Topic 为路由键发布，消息持久化投递.
type RabbitMQRecipient struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex
	closed  bool

	exchange string
	logger   logger.Logger
}

// NewRabbitMQRecipient 创建 RabbitMQ 投递目标.
func NewRabbitMQRecipient(url string, opts ...RabbitMQOption) (*RabbitMQRecipient, error) {
	if url == "" {
		return nil, ErrNoBrokers
	}

	options := &rabbitMQOptions{
		exchangeType: "direct",
		durable:      true,
	}
	for _, opt := range opts {
		opt(options)
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Join(ErrCreateRecipient, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Join(ErrCreateRecipient, err)
	}

	if options.exchange != "" {
		err = ch.ExchangeDeclare(
			options.exchange,
			options.exchangeType,
			options.durable,
			false,
			false,
			false,
			nil,
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, errors.Join(ErrCreateRecipient, err)
		}
	}

	r := &RabbitMQRecipient{
		conn:     conn,
		channel:  ch,
		exchange: options.exchange,
		logger:   options.logger,
	}

	if r.logger != nil {
		r.logger.Debugf("[Delivery] RabbitMQ投递目标启动: exchange=%q", options.exchange)
	}

	return r, nil
}

// Deliver 将触发消息发布到 RabbitMQ.
func (r *RabbitMQRecipient) Deliver(ctx context.Context, env *Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if env == nil {
		return ErrNilEnvelope
	}
	if env.Topic == "" {
		return ErrEmptyTopic
	}

	headers := amqp.Table{}
	for k, v := range env.Headers {
		headers[k] = v
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRecipientClosed
	}

	err := r.channel.PublishWithContext(ctx,
		r.exchange,
		env.Topic,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			Timestamp:    env.FiredAt,
			MessageId:    env.Key,
			Headers:      headers,
			Body:         env.Body,
		},
	)
	if err != nil {
		return errors.Join(ErrDeliver, err)
	}
	return nil
}

// Close 关闭投递目标.
func (r *RabbitMQRecipient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if err := r.channel.Close(); err != nil {
		r.conn.Close()
		return err
	}
	return r.conn.Close()
}
