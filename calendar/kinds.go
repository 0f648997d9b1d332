package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Tsukikage7/quartzkit/schedule"
)

// base 各日历类型的公共部分.
type base struct {
	name string
	typ  string
	loc  *time.Location
}

func newBase(name, typ string, loc *time.Location) (base, error) {
	key := schedule.NormalizeKey(name)
	if key == "" {
		return base{}, ErrNameEmpty
	}
	return base{name: key, typ: typ, loc: loc}, nil
}

func (b base) Name() string { return b.name }
func (b base) Type() string { return b.typ }

// annual 每年重复的排除日期（月-日）.
type annual struct {
	base
	days map[string]struct{} // "01-02"
}

func newAnnual(name string, dates []string, loc *time.Location) (Calendar, error) {
	b, err := newBase(name, TypeAnnual, loc)
	if err != nil {
		return nil, err
	}

	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		parsed, err := time.Parse("01-02", strings.TrimSpace(d))
		if err != nil {
			return nil, &BuildError{Name: name, Field: "exclude_dates", Cause: err}
		}
		days[parsed.Format("01-02")] = struct{}{}
	}

	return &annual{base: b, days: days}, nil
}

func (c *annual) IsExcluded(t time.Time) bool {
	_, ok := c.days[t.In(c.loc).Format("01-02")]
	return ok
}

// holiday 具体排除日期（年-月-日）.
type holiday struct {
	base
	days map[string]struct{} // "2026-01-02"
}

func newHoliday(name string, dates []string, loc *time.Location) (Calendar, error) {
	b, err := newBase(name, TypeHoliday, loc)
	if err != nil {
		return nil, err
	}

	days := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		parsed, err := time.Parse("2006-01-02", strings.TrimSpace(d))
		if err != nil {
			return nil, &BuildError{Name: name, Field: "exclude_dates", Cause: err}
		}
		days[parsed.Format("2006-01-02")] = struct{}{}
	}

	return &holiday{base: b, days: days}, nil
}

func (c *holiday) IsExcluded(t time.Time) bool {
	_, ok := c.days[t.In(c.loc).Format("2006-01-02")]
	return ok
}

// daily 每日时间窗口排除.
//
// 窗口为 [start, end)，按日历时区的当日时间判断.
// start > end 时窗口跨越午夜.
type daily struct {
	base
	start int // 当日分钟数
	end   int
}

func newDaily(name, start, end string, loc *time.Location) (Calendar, error) {
	b, err := newBase(name, TypeDaily, loc)
	if err != nil {
		return nil, err
	}

	s, err := parseMinuteOfDay(start)
	if err != nil {
		return nil, &BuildError{Name: name, Field: "exclude_start", Cause: err}
	}
	e, err := parseMinuteOfDay(end)
	if err != nil {
		return nil, &BuildError{Name: name, Field: "exclude_end", Cause: err}
	}

	return &daily{base: b, start: s, end: e}, nil
}

func parseMinuteOfDay(v string) (int, error) {
	parsed, err := time.Parse("15:04", strings.TrimSpace(v))
	if err != nil {
		return 0, err
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

func (c *daily) IsExcluded(t time.Time) bool {
	local := t.In(c.loc)
	m := local.Hour()*60 + local.Minute()

	if c.start <= c.end {
		return m >= c.start && m < c.end
	}
	// 跨午夜窗口
	return m >= c.start || m < c.end
}

// weekly 按星期排除.
type weekly struct {
	base
	days map[time.Weekday]struct{}
}

// weekdayNames 接受完整星期名与 cron 风格三字母缩写.
var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
	"sun":       time.Sunday,
	"mon":       time.Monday,
	"tue":       time.Tuesday,
	"wed":       time.Wednesday,
	"thu":       time.Thursday,
	"fri":       time.Friday,
	"sat":       time.Saturday,
}

func newWeekly(name string, days []string, loc *time.Location) (Calendar, error) {
	b, err := newBase(name, TypeWeekly, loc)
	if err != nil {
		return nil, err
	}

	set := make(map[time.Weekday]struct{}, len(days))
	for _, d := range days {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(d))]
		if !ok {
			return nil, &BuildError{Name: name, Field: "exclude_days", Cause: fmt.Errorf("%w: %q", ErrInvalidDay, d)}
		}
		set[wd] = struct{}{}
	}

	return &weekly{base: b, days: set}, nil
}

func (c *weekly) IsExcluded(t time.Time) bool {
	_, ok := c.days[t.In(c.loc).Weekday()]
	return ok
}

// monthly 按月内日期排除.
type monthly struct {
	base
	days map[int]struct{}
}

func newMonthly(name string, days []int, loc *time.Location) (Calendar, error) {
	b, err := newBase(name, TypeMonthly, loc)
	if err != nil {
		return nil, err
	}

	set := make(map[int]struct{}, len(days))
	for _, d := range days {
		if d < 1 || d > 31 {
			return nil, &BuildError{Name: name, Field: "exclude_days_of_month", Cause: fmt.Errorf("%w: %d", ErrInvalidDay, d)}
		}
		set[d] = struct{}{}
	}

	return &monthly{base: b, days: set}, nil
}

func (c *monthly) IsExcluded(t time.Time) bool {
	_, ok := c.days[t.In(c.loc).Day()]
	return ok
}

// cronCalendar 排除命中 Cron 表达式的时刻.
type cronCalendar struct {
	base
	sched cron.Schedule
}

func newCronCalendar(name, expression string, loc *time.Location) (Calendar, error) {
	b, err := newBase(name, TypeCron, loc)
	if err != nil {
		return nil, err
	}

	sched, err := schedule.Parse(expression)
	if err != nil {
		return nil, &BuildError{Name: name, Field: "expression", Cause: err}
	}

	return &cronCalendar{base: b, sched: sched}, nil
}

func (c *cronCalendar) IsExcluded(t time.Time) bool {
	// 表达式精度为秒：t 被排除当且仅当截断到秒后恰好是表达式的触发点.
	instant := t.In(c.loc).Truncate(time.Second)
	return c.sched.Next(instant.Add(-time.Second)).Equal(instant)
}
