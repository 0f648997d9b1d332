// Package calendar 提供命名排除日历.
//
// 日历用于抑制本应触发的调度：触发引擎在每次触发前询问调度关联的
// 全部日历，任一日历排除该时刻则本次触发被跳过.
package calendar

import (
	"time"
)

// 日历类型常量.
const (
	TypeAnnual  = "annual"
	TypeHoliday = "holiday"
	TypeDaily   = "daily"
	TypeWeekly  = "weekly"
	TypeMonthly = "monthly"
	TypeCron    = "cron"
)

// Calendar 排除日历接口.
type Calendar interface {
	// Name 返回规范化后的日历名称.
	Name() string

	// Type 返回日历类型.
	Type() string

	// IsExcluded 判断时刻 t 是否被该日历排除.
	IsExcluded(t time.Time) bool
}

// Config 日历配置.
//
// Type 决定生效的字段:
//   - annual:  ExcludeDates，格式 "01-02"（月-日，每年重复）
//   - holiday: ExcludeDates，格式 "2026-01-02"（具体日期）
//   - daily:   ExcludeStart/ExcludeEnd，格式 "15:04"（每日时间窗口）
//   - weekly:  ExcludeDays，星期名称（"saturday", "sunday", ...）
//   - monthly: ExcludeDaysOfMonth，月内日期（1-31）
//   - cron:    Expression，命中表达式的时刻被排除
type Config struct {
	// Type 日历类型.
	Type string `json:"type" yaml:"type" mapstructure:"type"`

	// Description 可选描述.
	Description string `json:"description" yaml:"description" mapstructure:"description"`

	// Timezone IANA 时区名称，空值时由调用方提供默认时区.
	Timezone string `json:"timezone" yaml:"timezone" mapstructure:"timezone"`

	// ExcludeDates 排除日期列表（annual / holiday）.
	ExcludeDates []string `json:"exclude_dates" yaml:"exclude_dates" mapstructure:"exclude_dates"`

	// ExcludeDays 排除的星期列表（weekly）.
	ExcludeDays []string `json:"exclude_days" yaml:"exclude_days" mapstructure:"exclude_days"`

	// ExcludeDaysOfMonth 排除的月内日期列表（monthly）.
	ExcludeDaysOfMonth []int `json:"exclude_days_of_month" yaml:"exclude_days_of_month" mapstructure:"exclude_days_of_month"`

	// ExcludeStart 每日排除窗口起点，格式 "15:04"（daily）.
	ExcludeStart string `json:"exclude_start" yaml:"exclude_start" mapstructure:"exclude_start"`

	// ExcludeEnd 每日排除窗口终点，格式 "15:04"（daily）.
	ExcludeEnd string `json:"exclude_end" yaml:"exclude_end" mapstructure:"exclude_end"`

	// Expression Cron 表达式（cron）.
	Expression string `json:"expression" yaml:"expression" mapstructure:"expression"`
}

// Build 根据配置构建日历.
//
// name 折叠为大写；cfg.Timezone 为空时使用 defaultLoc（nil 时为 UTC）.
func Build(name string, cfg *Config, defaultLoc *time.Location) (Calendar, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	loc := defaultLoc
	if loc == nil {
		loc = time.UTC
	}
	if cfg.Timezone != "" {
		parsed, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, &BuildError{Name: name, Field: "timezone", Cause: err}
		}
		loc = parsed
	}

	switch cfg.Type {
	case TypeAnnual:
		return newAnnual(name, cfg.ExcludeDates, loc)
	case TypeHoliday:
		return newHoliday(name, cfg.ExcludeDates, loc)
	case TypeDaily:
		return newDaily(name, cfg.ExcludeStart, cfg.ExcludeEnd, loc)
	case TypeWeekly:
		return newWeekly(name, cfg.ExcludeDays, loc)
	case TypeMonthly:
		return newMonthly(name, cfg.ExcludeDaysOfMonth, loc)
	case TypeCron:
		return newCronCalendar(name, cfg.Expression, loc)
	default:
		return nil, &BuildError{Name: name, Field: "type", Cause: ErrUnknownType}
	}
}
