package retry

import "errors"

// 预定义错误.
var (
	// ErrInvalidAttempts 最大尝试次数非法.
	ErrInvalidAttempts = errors.New("retry: max attempts must be positive")
)
