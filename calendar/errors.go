package calendar

import (
	"errors"
	"fmt"
)

// 预定义错误.
var (
	// ErrNilConfig 日历配置为空.
	ErrNilConfig = errors.New("calendar: nil config")

	// ErrUnknownType 未知的日历类型.
	ErrUnknownType = errors.New("calendar: unknown calendar type")

	// ErrNameEmpty 日历名称为空.
	ErrNameEmpty = errors.New("calendar: name is required")

	// ErrInvalidDay 排除日取值非法.
	ErrInvalidDay = errors.New("calendar: invalid day value")

	// ErrExists 同名日历已存在（仅在禁用替换时返回）.
	ErrExists = errors.New("calendar: calendar already exists")

	// ErrNotFound 日历未找到.
	ErrNotFound = errors.New("calendar: calendar not found")
)

// BuildError 日历构建错误.
type BuildError struct {
	Name  string
	Field string
	Cause error
}

// Error 实现 error 接口.
func (e *BuildError) Error() string {
	return fmt.Sprintf("calendar: failed to build %q (field %s): %v", e.Name, e.Field, e.Cause)
}

// Unwrap 返回底层错误.
func (e *BuildError) Unwrap() error {
	return e.Cause
}
