package engine

import "errors"

// 预定义错误.
var (
	// ErrNilJob 任务为空.
	ErrNilJob = errors.New("engine: nil job")

	// ErrNilHandler 任务处理函数为空.
	ErrNilHandler = errors.New("engine: job handler is required")

	// ErrNilTrigger 触发器为空.
	ErrNilTrigger = errors.New("engine: nil trigger")

	// ErrJobNotFound 任务未找到（标识未注册或已删除）.
	ErrJobNotFound = errors.New("engine: job not found")

	// ErrAlreadyStarted 触发循环已在运行.
	ErrAlreadyStarted = errors.New("engine: already started")

	// ErrEngineClosed 引擎已关闭.
	ErrEngineClosed = errors.New("engine: engine is closed")

	// ErrInvalidPoolSize 工作协程数量非法.
	ErrInvalidPoolSize = errors.New("engine: pool size must be at least 1")

	// ErrInvalidPriority 优先级超出 1-10 范围.
	ErrInvalidPriority = errors.New("engine: priority must be between 1 and 10")
)
