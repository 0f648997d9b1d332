// Package scheduler 提供声明式的消息投递调度器.
//
// 调度定义和排除日历来自配置，运行期通过名称引用：
// 调用 Schedule 把一个投递目标和消息绑定到命名调度上，
// 之后每次触发都会把消息投递到目标.
// 名称不区分大小写，统一折叠为大写比较.
package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Tsukikage7/quartzkit/calendar"
	"github.com/Tsukikage7/quartzkit/delivery"
	"github.com/Tsukikage7/quartzkit/engine"
	"github.com/Tsukikage7/quartzkit/logger"
	"github.com/Tsukikage7/quartzkit/schedule"
)

// Scheduler 消息投递调度器.
//
// 示例:
//
//	cfg := config.MustLoad[scheduler.Config]("scheduler.yaml")
//	s, err := scheduler.New(cfg, scheduler.WithLogger(log))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	recipient, _ := delivery.NewKafkaRecipient([]string{"localhost:9092"})
//	first, err := s.Schedule("cleanup", recipient, []byte(`{"action":"cleanup"}`))
//
//	s.Start()
//	defer s.Shutdown(context.Background())
type Scheduler struct {
	cfg  *Config
	opts *options

	defs   *schedule.Registry
	engine engine.Engine
	met    *schedulerMetrics

	mu      sync.RWMutex
	running map[string]*runningJob
	closed  bool
}

// runningJob 运行中任务记录.
type runningJob struct {
	key       engine.Key
	recipient delivery.Recipient
}

// New 创建调度器.
//
// 配置中的所有表达式、时区和日历在此处校验并构建，
// 任何一项非法都立即失败.
// 创建后调度器处于待机状态，需调用 Start 开始触发.
func New(cfg *Config, opts ...Option) (*Scheduler, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	s := &Scheduler{
		cfg:     cfg,
		opts:    o,
		defs:    schedule.NewRegistry(),
		met:     newSchedulerMetrics(o.collector),
		running: make(map[string]*runningJob),
	}

	defaultLoc := cfg.location()

	for name, sc := range cfg.Schedules {
		loc := defaultLoc
		if sc.Timezone != "" {
			var err error
			loc, err = time.LoadLocation(sc.Timezone)
			if err != nil {
				return nil, fmt.Errorf("%w: schedule %q: %v", ErrInvalidTimezone, name, err)
			}
		}
		def, err := schedule.NewDefinition(name, sc.Expression, sc.Description, loc, sc.Calendars)
		if err != nil {
			return nil, fmt.Errorf("schedule %q: %w", name, err)
		}
		if err := s.defs.Register(def); err != nil {
			return nil, err
		}
	}

	eng := o.engine
	if eng == nil {
		ecfg := engine.DefaultConfig()
		ecfg.PoolSize = cfg.ThreadPool.Count
		ecfg.Priority = cfg.ThreadPool.Priority
		ecfg.Daemon = *cfg.ThreadPool.Daemon

		var eopts []engine.Option
		if o.logger != nil {
			eopts = append(eopts, engine.WithLogger(o.logger))
		}
		eopts = append(eopts, engine.WithDropHandler(func(key engine.Key, scheduledAt time.Time) {
			name := s.nameForKey(key)
			s.met.RecordMisfire(name)
			s.logErrorf("fire dropped (queue full): %s at %s", name, scheduledAt)
		}))

		var err error
		eng, err = engine.New(ecfg, eopts...)
		if err != nil {
			return nil, err
		}
	}
	s.engine = eng

	for name, cc := range cfg.Calendars {
		cal, err := calendar.Build(name, &cc, defaultLoc)
		if err != nil {
			return nil, err
		}
		if err := s.engine.AttachCalendar(cal, true, true); err != nil {
			return nil, err
		}
	}

	s.logDebugf("scheduler built [schedules:%d, calendars:%d, pool:%d]",
		s.defs.Len(), len(cfg.Calendars), cfg.ThreadPool.Count)

	return s, nil
}

// Schedule 将投递目标和消息绑定到命名调度上.
//
// 每次触发时 message 会作为消息体投递到 rcpt.
// 同一调度名称同时只能有一个运行中任务，重复绑定返回
// ErrAlreadyScheduled.
// 返回首次触发时间.
func (s *Scheduler) Schedule(name string, rcpt delivery.Recipient, message []byte) (time.Time, error) {
	if rcpt == nil {
		return time.Time{}, ErrNilRecipient
	}

	def, exists := s.defs.Lookup(name)
	if !exists {
		return time.Time{}, fmt.Errorf("%w: %q", ErrScheduleNotFound, name)
	}

	key := schedule.NormalizeKey(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return time.Time{}, ErrSchedulerClosed
	}
	if _, exists := s.running[key]; exists {
		return time.Time{}, fmt.Errorf("%w: %q", ErrAlreadyScheduled, key)
	}

	job := &engine.Job{
		Description: def.Description(),
		Handler:     s.fireHandler(key, rcpt, message),
	}
	trigger := &engine.Trigger{
		Expression: def.Expression(),
		Location:   def.Location(),
		Calendars:  def.Calendars(),
	}

	engineKey, first, err := s.engine.Register(job, trigger)
	if err != nil {
		return time.Time{}, err
	}

	s.running[key] = &runningJob{key: engineKey, recipient: rcpt}
	s.met.SetRunningJobs(len(s.running))
	s.logDebugf("job scheduled: %s [first:%s]", key, first)

	return first, nil
}

// fireHandler 构造触发回调，在引擎工作协程中执行投递.
func (s *Scheduler) fireHandler(name string, rcpt delivery.Recipient, message []byte) engine.Handler {
	return func(ctx context.Context, fire engine.Fire) {
		fc := &FireContext{
			Schedule:    name,
			ScheduledAt: fire.ScheduledAt,
			FiredAt:     fire.FiredAt,
		}

		if err := s.opts.hooks.runBeforeHooks(ctx, fc); err != nil {
			fc.Skipped = true
			fc.SkipReason = "blocked by before hook"
			fc.Error = err
			s.met.RecordSkip(name, "before_hook")
			s.opts.hooks.runSkipHooks(ctx, fc)
			s.logDebugf("fire blocked by hook: %s [error:%v]", name, err)
			return
		}

		// 分布式触发锁：锁按触发点保留到 TTL 过期，
		// 期间同一触发在其他实例上不会重复投递
		if s.opts.locker != nil {
			lockKey := "fire:" + name + ":" + fire.ScheduledAt.UTC().Format(time.RFC3339)
			acquired, err := s.opts.locker.TryLock(ctx, lockKey, s.opts.lockTTL)
			if err != nil {
				fc.Skipped = true
				fc.SkipReason = "failed to acquire fire lock"
				fc.Error = err
				s.met.RecordSkip(name, "lock_error")
				s.opts.hooks.runSkipHooks(ctx, fc)
				s.logErrorf("fire lock failed: %s [error:%v]", name, err)
				return
			}
			if !acquired {
				fc.Skipped = true
				fc.SkipReason = "fire claimed by another instance"
				s.met.RecordSkip(name, "lock_held")
				s.opts.hooks.runSkipHooks(ctx, fc)
				s.logDebugf("fire claimed elsewhere: %s", name)
				return
			}
		}

		env := &delivery.Envelope{
			Schedule:    name,
			Topic:       strings.ToLower(name),
			Key:         name,
			Body:        message,
			Headers:     map[string]string{"schedule": name},
			ScheduledAt: fire.ScheduledAt,
			FiredAt:     fire.FiredAt,
		}

		dctx := ctx
		var cancel context.CancelFunc
		if s.opts.deliveryTimeout > 0 {
			dctx, cancel = context.WithTimeout(ctx, s.opts.deliveryTimeout)
			defer cancel()
		}

		start := time.Now()
		err := rcpt.Deliver(dctx, env)
		fc.Duration = time.Since(start)
		fc.Error = err

		if err != nil {
			s.met.RecordError(name)
			s.opts.hooks.runErrorHooks(ctx, fc)
			s.opts.hooks.runAfterHooks(ctx, fc)
			s.logErrorf("delivery failed: %s [duration:%v] [error:%v]", name, fc.Duration, err)
			return
		}

		s.met.RecordFire(name, fc.Duration)
		s.opts.hooks.runAfterHooks(ctx, fc)
		s.logDebugf("delivered: %s [duration:%v]", name, fc.Duration)
	}
}

// CreateSchedule 在运行期注册新的调度定义.
//
// loc 为 nil 时使用默认时区.
// 日历名称按引用惰性解析，允许引用稍后挂载的日历.
func (s *Scheduler) CreateSchedule(name, description, expression string, calendars []string, loc *time.Location) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrSchedulerClosed
	}

	if loc == nil {
		loc = s.cfg.location()
	}

	def, err := schedule.NewDefinition(name, expression, description, loc, calendars)
	if err != nil {
		return err
	}
	if err := s.defs.Register(def); err != nil {
		return err
	}

	s.logDebugf("schedule created: %s [expr:%s]", def.Name(), expression)
	return nil
}

// AttachCalendar 构建并挂载排除日历.
//
// replace 为 true 时覆盖同名日历，重复挂载是幂等的；
// 为 false 时同名日历已存在会失败.
func (s *Scheduler) AttachCalendar(name string, cc *calendar.Config, replace bool) error {
	s.mu.RLock()
	closed := s.closed
	s.mu.RUnlock()
	if closed {
		return ErrSchedulerClosed
	}

	cal, err := calendar.Build(name, cc, s.cfg.location())
	if err != nil {
		return err
	}
	return s.engine.AttachCalendar(cal, replace, true)
}

// Schedules 返回所有调度定义名称，按字典序排序.
func (s *Scheduler) Schedules() []string {
	return s.defs.Names()
}

// SuspendJob 暂停运行中任务.
//
// 返回是否成功暂停；任务不存在时返回 false.
func (s *Scheduler) SuspendJob(name string) bool {
	rj, exists := s.lookupRunning(name)
	if !exists {
		return false
	}
	if err := s.engine.Pause(rj.key); err != nil {
		return false
	}
	s.logDebugf("job suspended: %s", schedule.NormalizeKey(name))
	return true
}

// ResumeJob 恢复已暂停的任务.
func (s *Scheduler) ResumeJob(name string) bool {
	rj, exists := s.lookupRunning(name)
	if !exists {
		return false
	}
	if err := s.engine.Resume(rj.key); err != nil {
		return false
	}
	s.logDebugf("job resumed: %s", schedule.NormalizeKey(name))
	return true
}

// CancelJob 取消运行中任务.
//
// 只阻止后续触发，已在投递中的触发不会被打断.
// 任务记录在引擎确认删除后才移除；返回是否成功取消.
func (s *Scheduler) CancelJob(name string) bool {
	key := schedule.NormalizeKey(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	rj, exists := s.running[key]
	if !exists {
		return false
	}
	if err := s.engine.Delete(rj.key); err != nil {
		s.logErrorf("cancel failed: %s [error:%v]", key, err)
		return false
	}

	delete(s.running, key)
	s.met.SetRunningJobs(len(s.running))
	s.logDebugf("job cancelled: %s", key)
	return true
}

// SuspendAll 暂停所有运行中任务.
//
// 返回是否全部暂停成功.
func (s *Scheduler) SuspendAll() bool {
	ok := true
	for _, rj := range s.snapshotRunning() {
		if err := s.engine.Pause(rj.key); err != nil {
			ok = false
		}
	}
	s.logDebugf("all jobs suspended")
	return ok
}

// ResumeAll 恢复所有运行中任务.
func (s *Scheduler) ResumeAll() bool {
	ok := true
	for _, rj := range s.snapshotRunning() {
		if err := s.engine.Resume(rj.key); err != nil {
			ok = false
		}
	}
	s.logDebugf("all jobs resumed")
	return ok
}

// Start 启动触发.
//
// 返回是否由本次调用启动；已在运行或已关闭时返回 false.
func (s *Scheduler) Start() bool {
	if err := s.engine.Start(); err != nil {
		return false
	}
	s.logDebugf("scheduler started")
	return true
}

// Standby 暂停触发，所有任务和定义保留.
//
// 之后可再次调用 Start 恢复触发，待机是幂等的.
func (s *Scheduler) Standby() error {
	if err := s.engine.Standby(); err != nil {
		return err
	}
	s.logDebugf("scheduler in standby")
	return nil
}

// IsStarted 调度器是否在触发.
func (s *Scheduler) IsStarted() bool {
	return s.engine.Started()
}

// IsInStandbyMode 调度器是否处于待机状态.
func (s *Scheduler) IsInStandbyMode() bool {
	return s.engine.InStandby()
}

// RunningJobs 返回运行中任务名称，按字典序排序.
func (s *Scheduler) RunningJobs() []string {
	s.mu.RLock()
	names := make([]string, 0, len(s.running))
	for name := range s.running {
		names = append(names, name)
	}
	s.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Shutdown 关闭调度器.
//
// 守护模式下立即放弃在途触发；否则等待在途触发完成或 ctx 超时.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.engine.Shutdown(ctx)
	s.logDebugf("scheduler shut down")
	return err
}

// nameForKey 按引擎键反查调度名称.
func (s *Scheduler) nameForKey(key engine.Key) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for name, rj := range s.running {
		if rj.key == key {
			return name
		}
	}
	return string(key)
}

// lookupRunning 按名称查找运行中任务.
func (s *Scheduler) lookupRunning(name string) (*runningJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rj, exists := s.running[schedule.NormalizeKey(name)]
	return rj, exists
}

// snapshotRunning 拷贝运行中任务列表.
func (s *Scheduler) snapshotRunning() []*runningJob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*runningJob, 0, len(s.running))
	for _, rj := range s.running {
		jobs = append(jobs, rj)
	}
	return jobs
}

// 日志辅助方法.

func (s *Scheduler) log() logger.Logger {
	return s.opts.logger
}

func (s *Scheduler) logDebugf(format string, args ...any) {
	if log := s.log(); log != nil {
		log.Debugf("[Scheduler] "+format, args...)
	}
}

func (s *Scheduler) logErrorf(format string, args ...any) {
	if log := s.log(); log != nil {
		log.Errorf("[Scheduler] "+format, args...)
	}
}
