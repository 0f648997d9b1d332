package delivery

import (
	"context"
	"errors"
	"sync"

	"github.com/IBM/sarama"

	"github.com/Tsukikage7/quartzkit/logger"
)

// KafkaOption Kafka 投递目标配置选项.
type KafkaOption func(*kafkaOptions)

type kafkaOptions struct {
	logger logger.Logger
}

// WithKafkaLogger 设置日志记录器.
func WithKafkaLogger(log logger.Logger) KafkaOption {
	return func(o *kafkaOptions) {
		o.logger = log
	}
}

// KafkaRecipient Kafka 投递目标.
//
// 使用同步发送模式，保证触发消息可靠投递.
// 内置配置:
//   - Idempotent: true (幂等性，保证消息不重复)
//   - RequiredAcks: WaitForAll (等待所有副本确认)
//   - Retry.Max: 3 (最多重试3次)
//   - Compression: Snappy (使用Snappy压缩)
//
// 示例:
//
//	recipient, err := delivery.NewKafkaRecipient(
//	    []string{"localhost:9092"},
//	    delivery.WithKafkaLogger(log),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer recipient.Close()
type KafkaRecipient struct {
	producer sarama.SyncProducer
	closed   bool
	mu       sync.RWMutex
	logger   logger.Logger
}

// NewKafkaRecipient 创建 Kafka 投递目标.
func NewKafkaRecipient(brokers []string, opts ...KafkaOption) (*KafkaRecipient, error) {
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}

	options := &kafkaOptions{}
	for _, opt := range opts {
		opt(options)
	}

	config := sarama.NewConfig()
	config.Version = sarama.V3_8_0_0
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Idempotent = true
	config.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, errors.Join(ErrCreateRecipient, err)
	}

	r := &KafkaRecipient{
		producer: producer,
		logger:   options.logger,
	}

	if r.logger != nil {
		r.logger.Debugf("[Delivery] Kafka投递目标启动: brokers=%v", brokers)
	}

	return r, nil
}

// Deliver 将触发消息发送到 Kafka.
func (r *KafkaRecipient) Deliver(ctx context.Context, env *Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.RLock()
	closed := r.closed
	r.mu.RUnlock()
	if closed {
		return ErrRecipientClosed
	}

	if env == nil {
		return ErrNilEnvelope
	}
	if env.Topic == "" {
		return ErrEmptyTopic
	}

	msg := &sarama.ProducerMessage{
		Topic: env.Topic,
		Value: sarama.ByteEncoder(env.Body),
	}
	if env.Key != "" {
		msg.Key = sarama.StringEncoder(env.Key)
	}
	for k, v := range env.Headers {
		msg.Headers = append(msg.Headers, sarama.RecordHeader{
			Key:   []byte(k),
			Value: []byte(v),
		})
	}

	partition, offset, err := r.producer.SendMessage(msg)
	if err != nil {
		return errors.Join(ErrDeliver, err)
	}

	if r.logger != nil {
		r.logger.Debugf("[Delivery] 消息已投递: schedule=%s, topic=%s, partition=%d, offset=%d",
			env.Schedule, env.Topic, partition, offset)
	}
	return nil
}

// Close 关闭投递目标.
func (r *KafkaRecipient) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	if r.logger != nil {
		r.logger.Debugf("[Delivery] Kafka投递目标关闭")
	}
	return r.producer.Close()
}
