package delivery

import "errors"

// 预定义错误.
//
// 所有错误均可通过 errors.Is 进行判断.
var (
	// ErrNilEnvelope 投递消息为空.
	ErrNilEnvelope = errors.New("delivery: nil envelope")

	// ErrEmptyTopic 消息主题为空.
	ErrEmptyTopic = errors.New("delivery: topic is required")

	// ErrNilFunc 回调函数为空.
	ErrNilFunc = errors.New("delivery: nil delivery func")

	// ErrNilChannel 投递通道为空.
	ErrNilChannel = errors.New("delivery: nil channel")

	// ErrMailboxFull 投递通道已满.
	ErrMailboxFull = errors.New("delivery: mailbox full")

	// ErrRecipientClosed 投递目标已关闭.
	ErrRecipientClosed = errors.New("delivery: recipient closed")

	// ErrNoBrokers 未配置服务器地址.
	ErrNoBrokers = errors.New("delivery: no brokers configured")

	// ErrCreateRecipient 创建投递目标失败.
	ErrCreateRecipient = errors.New("delivery: failed to create recipient")

	// ErrDeliver 消息投递失败.
	ErrDeliver = errors.New("delivery: failed to deliver message")
)
