package schedule

import (
	"errors"
	"fmt"
)

// 预定义错误.
var (
	// ErrNameEmpty 调度名称为空.
	ErrNameEmpty = errors.New("schedule: name is required")

	// ErrExpressionEmpty 调度表达式为空.
	ErrExpressionEmpty = errors.New("schedule: cron expression is required")

	// ErrDuplicate 同名调度已存在（名称折叠后比较）.
	ErrDuplicate = errors.New("schedule: schedule already exists")
)

// InvalidExpressionError 非法的 Cron 表达式.
//
// 携带底层解析错误，可通过 errors.Is(err, ErrInvalidExpression) 判断.
type InvalidExpressionError struct {
	Expression string
	Cause      error
}

// ErrInvalidExpression 非法表达式的哨兵错误，用于 errors.Is 匹配.
var ErrInvalidExpression = errors.New("schedule: invalid cron expression")

// Error 实现 error 接口.
func (e *InvalidExpressionError) Error() string {
	return fmt.Sprintf("schedule: invalid cron expression %q: %v", e.Expression, e.Cause)
}

// Is 支持 errors.Is(err, ErrInvalidExpression).
func (e *InvalidExpressionError) Is(target error) bool {
	return target == ErrInvalidExpression
}

// Unwrap 返回底层解析错误.
func (e *InvalidExpressionError) Unwrap() error {
	return e.Cause
}
