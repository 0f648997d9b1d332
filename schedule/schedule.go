// Package schedule 提供调度定义模型和注册表.
//
// 调度名称不区分大小写，统一折叠为大写后存储；Cron 表达式在定义创建时
// 即完成语法验证（快速失败），注册表中不会存在非法定义.
package schedule

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// parser 调度表达式解析器.
//
// 支持 5 字段（分级）和 6 字段（秒级）表达式，以及 @daily 等描述符.
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// NormalizeKey 将调度或日历名称折叠为规范形式（大写）.
//
// 所有按名称访问注册表的入口都必须经过此函数，调用方不得自行折叠.
func NormalizeKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Parse 解析调度表达式.
//
// 返回解析后的 cron.Schedule，用于计算下一次触发时间.
func Parse(expression string) (cron.Schedule, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, ErrExpressionEmpty
	}
	sched, err := parser.Parse(expression)
	if err != nil {
		return nil, &InvalidExpressionError{Expression: expression, Cause: err}
	}
	return sched, nil
}

// Validate 验证调度表达式的语法.
func Validate(expression string) error {
	_, err := Parse(expression)
	return err
}

// Definition 调度定义.
//
// 创建后不可变；名称在注册表中唯一.
type Definition struct {
	name        string
	expression  string
	description string
	location    *time.Location
	calendars   []string
	sched       cron.Schedule
}

// NewDefinition 创建调度定义.
//
// 参数:
//   - name: 调度名称（不区分大小写，折叠为大写存储）
//   - expression: Cron 表达式，立即验证，非法时返回 InvalidExpressionError
//   - description: 可选的人类可读描述
//   - loc: 时区，nil 时使用 UTC
//   - calendars: 关联的排除日历名称列表（可为空）
func NewDefinition(name, expression, description string, loc *time.Location, calendars []string) (*Definition, error) {
	key := NormalizeKey(name)
	if key == "" {
		return nil, ErrNameEmpty
	}

	sched, err := Parse(expression)
	if err != nil {
		return nil, err
	}

	if loc == nil {
		loc = time.UTC
	}

	// 日历名称同样折叠，保持与日历注册表一致
	cals := make([]string, 0, len(calendars))
	for _, c := range calendars {
		if k := NormalizeKey(c); k != "" {
			cals = append(cals, k)
		}
	}

	return &Definition{
		name:        key,
		expression:  expression,
		description: description,
		location:    loc,
		calendars:   cals,
		sched:       sched,
	}, nil
}

// Name 返回规范化后的调度名称.
func (d *Definition) Name() string { return d.name }

// Expression 返回原始 Cron 表达式.
func (d *Definition) Expression() string { return d.expression }

// Description 返回调度描述.
func (d *Definition) Description() string { return d.description }

// Location 返回调度时区.
func (d *Definition) Location() *time.Location { return d.location }

// Calendars 返回关联日历名称的副本.
func (d *Definition) Calendars() []string {
	out := make([]string, len(d.calendars))
	copy(out, d.calendars)
	return out
}

// Next 返回严格晚于 t 的下一次触发时间（按定义时区计算）.
func (d *Definition) Next(t time.Time) time.Time {
	return d.sched.Next(t.In(d.location))
}
