// Package engine 提供时间触发引擎.
//
// 引擎负责求值周期规则并在每个触发点回调任务处理函数；上层调度门面
// 只持有引擎分配的不透明任务标识，不感知引擎内部的触发器状态.
//
// 默认实现基于 robfig/cron：触发点被推入有界队列，由固定大小的
// 工作协程池消费执行.
package engine

import (
	"context"
	"time"

	"github.com/Tsukikage7/quartzkit/calendar"
)

// Key 引擎分配的任务标识.
//
// 对调用方不透明；同一任务在其生命周期内标识保持不变.
type Key string

// Fire 单次触发信息.
type Fire struct {
	// Key 触发的任务标识.
	Key Key

	// ScheduledAt 计划触发时间（截断到秒）.
	ScheduledAt time.Time

	// FiredAt 实际触发时间.
	FiredAt time.Time
}

// Handler 任务触发回调.
//
// 在引擎的工作协程池中执行；ctx 在引擎关闭时取消.
type Handler func(ctx context.Context, fire Fire)

// Job 注册到引擎的任务.
type Job struct {
	// Description 任务描述，用于日志.
	Description string

	// Handler 触发回调，必填.
	Handler Handler
}

// Trigger 触发器描述.
type Trigger struct {
	// Expression Cron 表达式（5 或 6 字段，支持描述符）.
	Expression string

	// Location 触发时刻求值所用时区，nil 时为 UTC.
	Location *time.Location

	// Calendars 排除日历名称列表.
	// 日历在每次触发时按名称惰性解析，挂载新版本立即生效.
	Calendars []string
}

// Engine 时间触发引擎接口.
type Engine interface {
	// Register 注册任务和触发器，返回引擎分配的任务标识
	// 和首次触发时间（已跳过被日历排除的触发点）.
	Register(job *Job, tr *Trigger) (Key, time.Time, error)

	// Pause 暂停任务触发，任务标识保持有效.
	Pause(key Key) error

	// Resume 恢复已暂停任务.
	Resume(key Key) error

	// Delete 删除任务，标识随之失效.
	Delete(key Key) error

	// AttachCalendar 挂载排除日历.
	//
	// replace 为 true 时覆盖同名日历；updateTriggers 为 true 时
	// 引用该日历的已注册触发器改用新日历（本实现按名称惰性解析，
	// 该语义恒成立）.
	AttachCalendar(cal calendar.Calendar, replace, updateTriggers bool) error

	// Start 启动触发循环；已启动时返回 ErrAlreadyStarted.
	Start() error

	// Standby 暂停触发循环，保留全部已注册任务.
	Standby() error

	// Started 触发循环是否在运行.
	Started() bool

	// InStandby 是否处于待机状态（未启动且未关闭）.
	InStandby() bool

	// Shutdown 关闭引擎.
	//
	// daemon 模式（默认）不等待在途触发完成，可能丢弃最后的投递；
	// 非 daemon 模式等待在途触发，直到 ctx 超时.
	Shutdown(ctx context.Context) error
}

// Config 引擎配置.
type Config struct {
	// PoolSize 工作协程数量，默认 1.
	PoolSize int

	// Priority 工作协程优先级（1-10），默认 5.
	// Go 运行时不暴露协程优先级，该值仅作记录，保持配置兼容.
	Priority int

	// Daemon 为 true 时关闭引擎不等待在途触发（默认 true）.
	Daemon bool

	// QueueSize 触发队列容量，默认 64. 队列满时丢弃触发并记录告警.
	QueueSize int
}

// DefaultConfig 返回默认配置.
func DefaultConfig() *Config {
	return &Config{
		PoolSize:  1,
		Priority:  5,
		Daemon:    true,
		QueueSize: 64,
	}
}

// Validate 验证配置.
func (c *Config) Validate() error {
	if c.PoolSize < 1 {
		return ErrInvalidPoolSize
	}
	if c.Priority < 1 || c.Priority > 10 {
		return ErrInvalidPriority
	}
	return nil
}
