package scheduler

import (
	"fmt"
	"time"

	"github.com/Tsukikage7/quartzkit/calendar"
	"github.com/Tsukikage7/quartzkit/schedule"
)

// 线程池默认值.
const (
	DefaultPoolCount    = 1
	DefaultPoolPriority = 5
)

// Config 调度器声明式配置.
//
// 示例 (YAML):
//
//	default_timezone: UTC
//	thread_pool:
//	  count: 4
//	  priority: 5
//	  daemon: true
//	calendars:
//	  winter_closed:
//	    type: annual
//	    exclude_dates: ["12-25", "01-01"]
//	schedules:
//	  cleanup:
//	    expression: "0 0 * * *"
//	    description: nightly cleanup
//	    calendars: [winter_closed]
type Config struct {
	// DefaultTimezone 默认时区，调度和日历未指定时区时使用.
	// 缺省 "UTC".
	DefaultTimezone string `json:"default_timezone" yaml:"default_timezone" mapstructure:"default_timezone"`

	// ThreadPool 触发执行池配置.
	ThreadPool ThreadPoolConfig `json:"thread_pool" yaml:"thread_pool" mapstructure:"thread_pool"`

	// Schedules 调度定义，键为调度名称（不区分大小写）.
	Schedules map[string]ScheduleConfig `json:"schedules" yaml:"schedules" mapstructure:"schedules"`

	// Calendars 排除日历定义，键为日历名称（不区分大小写）.
	Calendars map[string]calendar.Config `json:"calendars" yaml:"calendars" mapstructure:"calendars"`
}

// ThreadPoolConfig 触发执行池配置.
type ThreadPoolConfig struct {
	// Count 并发执行协程数，缺省 1.
	Count int `json:"count" yaml:"count" mapstructure:"count"`

	// Priority 执行优先级（1-10），缺省 5.
	// Go 运行时不支持协程优先级，该值仅作为配置兼容保留.
	Priority int `json:"priority" yaml:"priority" mapstructure:"priority"`

	// Daemon 守护模式，缺省 true.
	// 守护模式下关闭调度器不等待在途触发完成.
	Daemon *bool `json:"daemon" yaml:"daemon" mapstructure:"daemon"`
}

// ScheduleConfig 单个调度定义.
type ScheduleConfig struct {
	// Expression Cron 表达式（5 或 6 字段，支持描述符）.
	Expression string `json:"expression" yaml:"expression" mapstructure:"expression"`

	// Description 调度描述.
	Description string `json:"description" yaml:"description" mapstructure:"description"`

	// Calendars 引用的排除日历名称列表.
	Calendars []string `json:"calendars" yaml:"calendars" mapstructure:"calendars"`

	// Timezone 该调度的时区，缺省使用 DefaultTimezone.
	Timezone string `json:"timezone" yaml:"timezone" mapstructure:"timezone"`
}

// ApplyDefaults 填充缺省值.
func (c *Config) ApplyDefaults() {
	if c.DefaultTimezone == "" {
		c.DefaultTimezone = "UTC"
	}
	if c.ThreadPool.Count <= 0 {
		c.ThreadPool.Count = DefaultPoolCount
	}
	if c.ThreadPool.Priority == 0 {
		c.ThreadPool.Priority = DefaultPoolPriority
	}
	if c.ThreadPool.Daemon == nil {
		daemon := true
		c.ThreadPool.Daemon = &daemon
	}
}

// Validate 校验配置.
//
// 校验在构造时快速失败：时区必须可加载，
// 所有表达式必须可解析，日历引用必须已定义.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}

	if c.DefaultTimezone != "" {
		if _, err := time.LoadLocation(c.DefaultTimezone); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidTimezone, c.DefaultTimezone)
		}
	}

	if c.ThreadPool.Count < 0 {
		return fmt.Errorf("%w: count %d", ErrInvalidThreadPool, c.ThreadPool.Count)
	}
	if c.ThreadPool.Priority < 0 || c.ThreadPool.Priority > 10 {
		return fmt.Errorf("%w: priority %d", ErrInvalidThreadPool, c.ThreadPool.Priority)
	}

	for name, sc := range c.Schedules {
		if err := schedule.Validate(sc.Expression); err != nil {
			return fmt.Errorf("schedule %q: %w", name, err)
		}
		if sc.Timezone != "" {
			if _, err := time.LoadLocation(sc.Timezone); err != nil {
				return fmt.Errorf("%w: %q (schedule %q)", ErrInvalidTimezone, sc.Timezone, name)
			}
		}
		for _, ref := range sc.Calendars {
			if !c.hasCalendar(ref) {
				return fmt.Errorf("%w: %q (schedule %q)", ErrUnknownCalendar, ref, name)
			}
		}
	}

	for name, cc := range c.Calendars {
		if cc.Timezone != "" {
			if _, err := time.LoadLocation(cc.Timezone); err != nil {
				return fmt.Errorf("%w: %q (calendar %q)", ErrInvalidTimezone, cc.Timezone, name)
			}
		}
	}

	return nil
}

// hasCalendar 检查日历是否已定义（名称折叠后比较）.
func (c *Config) hasCalendar(ref string) bool {
	want := schedule.NormalizeKey(ref)
	for name := range c.Calendars {
		if schedule.NormalizeKey(name) == want {
			return true
		}
	}
	return false
}

// location 解析默认时区，Validate 通过后不会失败.
func (c *Config) location() *time.Location {
	if c.DefaultTimezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
