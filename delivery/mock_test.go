package delivery

import (
	"github.com/IBM/sarama"

	"github.com/Tsukikage7/quartzkit/logger"
)

// mockLogger 用于测试的模拟日志器.
type mockLogger struct {
	debugCalled bool
	warnCalled  bool
	errorCalled bool
}

func (m *mockLogger) Debug(args ...any)                         { m.debugCalled = true }
func (m *mockLogger) Debugf(format string, args ...any)         { m.debugCalled = true }
func (m *mockLogger) Info(args ...any)                          {}
func (m *mockLogger) Infof(format string, args ...any)          {}
func (m *mockLogger) Warn(args ...any)                          { m.warnCalled = true }
func (m *mockLogger) Warnf(format string, args ...any)          { m.warnCalled = true }
func (m *mockLogger) Error(args ...any)                         { m.errorCalled = true }
func (m *mockLogger) Errorf(format string, args ...any)         { m.errorCalled = true }
func (m *mockLogger) Fatal(args ...any)                         {}
func (m *mockLogger) Fatalf(format string, args ...any)         {}
func (m *mockLogger) With(fields ...logger.Field) logger.Logger { return m }
func (m *mockLogger) Sync() error                               { return nil }

// mockSyncProducer 用于测试的模拟 Kafka 生产者.
type mockSyncProducer struct {
	sent    []*sarama.ProducerMessage
	sendErr error
	closed  bool
}

func (m *mockSyncProducer) SendMessage(msg *sarama.ProducerMessage) (int32, int64, error) {
	if m.sendErr != nil {
		return 0, 0, m.sendErr
	}
	m.sent = append(m.sent, msg)
	return 0, int64(len(m.sent)) - 1, nil
}

func (m *mockSyncProducer) SendMessages(msgs []*sarama.ProducerMessage) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, msgs...)
	return nil
}

func (m *mockSyncProducer) Close() error {
	m.closed = true
	return nil
}

func (m *mockSyncProducer) TxnStatus() sarama.ProducerTxnStatusFlag { return 0 }
func (m *mockSyncProducer) IsTransactional() bool                   { return false }
func (m *mockSyncProducer) BeginTxn() error                         { return nil }
func (m *mockSyncProducer) CommitTxn() error                        { return nil }
func (m *mockSyncProducer) AbortTxn() error                         { return nil }
func (m *mockSyncProducer) AddOffsetsToTxn(offsets map[string][]*sarama.PartitionOffsetMetadata, groupID string) error {
	return nil
}
func (m *mockSyncProducer) AddMessageToTxn(msg *sarama.ConsumerMessage, groupID string, metadata *string) error {
	return nil
}
