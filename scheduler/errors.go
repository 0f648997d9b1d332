package scheduler

import "errors"

// 预定义错误.
var (
	// ErrNilConfig 调度器配置为空.
	ErrNilConfig = errors.New("scheduler: nil config")

	// ErrScheduleNotFound 调度定义未找到.
	ErrScheduleNotFound = errors.New("scheduler: schedule not found")

	// ErrAlreadyScheduled 同名任务已在运行.
	ErrAlreadyScheduled = errors.New("scheduler: job already scheduled")

	// ErrNilRecipient 投递目标为空.
	ErrNilRecipient = errors.New("scheduler: nil recipient")

	// ErrSchedulerClosed 调度器已关闭.
	ErrSchedulerClosed = errors.New("scheduler: scheduler is closed")

	// ErrInvalidTimezone 无效的时区名称.
	ErrInvalidTimezone = errors.New("scheduler: invalid timezone")

	// ErrInvalidThreadPool 无效的线程池配置.
	ErrInvalidThreadPool = errors.New("scheduler: invalid thread pool config")

	// ErrUnknownCalendar 调度引用了未定义的日历.
	ErrUnknownCalendar = errors.New("scheduler: unknown calendar reference")
)
