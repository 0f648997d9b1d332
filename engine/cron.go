package engine

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/Tsukikage7/quartzkit/calendar"
	"github.com/Tsukikage7/quartzkit/logger"
	"github.com/Tsukikage7/quartzkit/schedule"
)

// Option 引擎配置选项.
type Option func(*cronEngine)

// WithLogger 设置日志记录器.
func WithLogger(log logger.Logger) Option {
	return func(e *cronEngine) {
		e.log = log
	}
}

// WithDropHandler 设置触发丢弃回调.
//
// 队列满导致触发被丢弃时调用，用于向上层暴露丢失的触发.
func WithDropHandler(fn func(key Key, scheduledAt time.Time)) Option {
	return func(e *cronEngine) {
		e.onDrop = fn
	}
}

// cronEngine 基于 robfig/cron 的触发引擎实现.
type cronEngine struct {
	cfg    *Config
	log    logger.Logger
	onDrop func(key Key, scheduledAt time.Time)

	mu        sync.RWMutex
	cron      *cron.Cron
	jobs      map[Key]*engineJob
	calendars *calendar.Registry
	started   bool
	closed    bool

	queue  chan fireTask
	wg     sync.WaitGroup // 在途触发（含排队）
	ctx    context.Context
	cancel context.CancelFunc
}

// engineJob 引擎内部任务记录.
type engineJob struct {
	key     Key
	job     Job
	trigger Trigger
	sched   cron.Schedule
	entryID cron.EntryID
	paused  atomic.Bool
}

// fireTask 进入工作队列的单次触发.
type fireTask struct {
	ej          *engineJob
	scheduledAt time.Time
	firedAt     time.Time
}

// locationSchedule 按触发器自身时区求值的调度包装.
//
// robfig/cron 的运行循环使用单一时区，这里在 Next 入口转换，
// 使每个触发器独立携带时区.
type locationSchedule struct {
	sched cron.Schedule
	loc   *time.Location
}

func (s locationSchedule) Next(t time.Time) time.Time {
	return s.sched.Next(t.In(s.loc))
}

// New 创建默认触发引擎.
//
// 引擎创建后处于待机状态，调用 Start 后才开始触发.
func New(cfg *Config, opts ...Option) (Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 64
	}

	ctx, cancel := context.WithCancel(context.Background())

	e := &cronEngine{
		cfg:       cfg,
		cron:      cron.New(),
		jobs:      make(map[Key]*engineJob),
		calendars: calendar.NewRegistry(),
		queue:     make(chan fireTask, queueSize),
		ctx:       ctx,
		cancel:    cancel,
	}

	for _, opt := range opts {
		opt(e)
	}

	for i := 0; i < cfg.PoolSize; i++ {
		go e.worker()
	}

	return e, nil
}

// Register 注册任务和触发器.
func (e *cronEngine) Register(job *Job, tr *Trigger) (Key, time.Time, error) {
	if job == nil {
		return "", time.Time{}, ErrNilJob
	}
	if job.Handler == nil {
		return "", time.Time{}, ErrNilHandler
	}
	if tr == nil {
		return "", time.Time{}, ErrNilTrigger
	}

	parsed, err := schedule.Parse(tr.Expression)
	if err != nil {
		return "", time.Time{}, err
	}

	loc := tr.Location
	if loc == nil {
		loc = time.UTC
	}
	sched := locationSchedule{sched: parsed, loc: loc}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return "", time.Time{}, ErrEngineClosed
	}

	ej := &engineJob{
		key:     Key(uuid.New().String()),
		job:     *job,
		trigger: *tr,
		sched:   sched,
	}

	ej.entryID = e.cron.Schedule(sched, cron.FuncJob(func() {
		e.onFire(ej)
	}))
	e.jobs[ej.key] = ej

	first := e.firstFireLocked(ej, time.Now())

	e.logDebugf("job registered: %s [expr:%s, first:%s]", ej.key, tr.Expression, first)
	return ej.key, first, nil
}

// firstFireLocked 计算首次触发时间，跳过被日历排除的触发点.
func (e *cronEngine) firstFireLocked(ej *engineJob, now time.Time) time.Time {
	next := ej.sched.Next(now)
	for i := 0; i < 10000 && !next.IsZero(); i++ {
		if !e.excludedLocked(ej.trigger.Calendars, next) {
			return next
		}
		next = ej.sched.Next(next)
	}
	return next
}

// excludedLocked 判断时刻 t 是否被任一日历排除.
// 未挂载的日历名称视为不排除.
func (e *cronEngine) excludedLocked(names []string, t time.Time) bool {
	for _, name := range names {
		if cal, ok := e.calendars.Get(name); ok && cal.IsExcluded(t) {
			return true
		}
	}
	return false
}

// onFire 在 cron 运行循环中被调用，将触发转入工作队列.
// 必须保持非阻塞：队列满时丢弃并告警.
func (e *cronEngine) onFire(ej *engineJob) {
	if ej.paused.Load() {
		e.logDebugf("fire skipped (paused): %s", ej.key)
		return
	}

	now := time.Now()
	task := fireTask{
		ej:          ej,
		scheduledAt: now.Truncate(time.Second),
		firedAt:     now,
	}
	dropped := false

	// 读锁同时保护入队：Shutdown 持写锁后才关闭队列
	e.mu.RLock()
	if e.closed {
		e.mu.RUnlock()
		return
	}
	if e.excludedLocked(ej.trigger.Calendars, now) {
		e.mu.RUnlock()
		e.logDebugf("fire skipped (calendar excluded): %s at %s", ej.key, now)
		return
	}

	e.wg.Add(1)
	select {
	case e.queue <- task:
	default:
		e.wg.Done()
		dropped = true
	}
	e.mu.RUnlock()

	// 回调在锁外执行，上层处理函数可能反查自身状态
	if dropped {
		e.logWarnf("fire dropped (queue full): %s", ej.key)
		if e.onDrop != nil {
			e.onDrop(ej.key, task.scheduledAt)
		}
	}
}

// worker 消费触发队列.
func (e *cronEngine) worker() {
	for task := range e.queue {
		e.run(task)
	}
}

// run 执行单次触发回调.
func (e *cronEngine) run(task fireTask) {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logErrorf("fire handler panic: %s [panic:%v]", task.ej.key, r)
		}
	}()

	task.ej.job.Handler(e.ctx, Fire{
		Key:         task.ej.key,
		ScheduledAt: task.scheduledAt,
		FiredAt:     task.firedAt,
	})
}

// Pause 暂停任务.
func (e *cronEngine) Pause(key Key) error {
	e.mu.RLock()
	ej, exists := e.jobs[key]
	e.mu.RUnlock()

	if !exists {
		return ErrJobNotFound
	}
	ej.paused.Store(true)
	e.logDebugf("job paused: %s", key)
	return nil
}

// Resume 恢复任务.
func (e *cronEngine) Resume(key Key) error {
	e.mu.RLock()
	ej, exists := e.jobs[key]
	e.mu.RUnlock()

	if !exists {
		return ErrJobNotFound
	}
	ej.paused.Store(false)
	e.logDebugf("job resumed: %s", key)
	return nil
}

// Delete 删除任务.
//
// 只阻止后续触发；已进入工作队列的触发仍会执行.
func (e *cronEngine) Delete(key Key) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ej, exists := e.jobs[key]
	if !exists {
		return ErrJobNotFound
	}

	e.cron.Remove(ej.entryID)
	delete(e.jobs, key)
	e.logDebugf("job deleted: %s", key)
	return nil
}

// AttachCalendar 挂载排除日历.
func (e *cronEngine) AttachCalendar(cal calendar.Calendar, replace, updateTriggers bool) error {
	// updateTriggers: 触发器按名称惰性解析日历，覆盖后自然生效
	_ = updateTriggers

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	return e.calendars.Put(cal, replace)
}

// Start 启动触发循环.
func (e *cronEngine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if e.started {
		return ErrAlreadyStarted
	}

	e.cron.Start()
	e.started = true
	e.logDebugf("engine started [pool:%d, daemon:%v]", e.cfg.PoolSize, e.cfg.Daemon)
	return nil
}

// Standby 暂停触发循环，已注册任务保留.
func (e *cronEngine) Standby() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return ErrEngineClosed
	}
	if !e.started {
		return nil
	}

	e.cron.Stop()
	e.started = false
	e.logDebugf("engine in standby")
	return nil
}

// Started 触发循环是否在运行.
func (e *cronEngine) Started() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.started
}

// InStandby 是否处于待机状态.
func (e *cronEngine) InStandby() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return !e.started && !e.closed
}

// Shutdown 关闭引擎.
func (e *cronEngine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.started = false
	stopCtx := e.cron.Stop()
	e.mu.Unlock()

	// 等待 cron 运行循环退出后关闭队列
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}

	// 写锁确保没有触发回调还在入队
	e.mu.Lock()
	close(e.queue)
	e.mu.Unlock()

	if e.cfg.Daemon {
		// daemon 模式：放弃在途触发
		e.cancel()
		e.logDebugf("engine shut down (daemon, in-flight fires abandoned)")
		return nil
	}

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.cancel()
		e.logDebugf("engine shut down (drained)")
		return nil
	case <-ctx.Done():
		e.cancel()
		e.logWarnf("engine shutdown timed out waiting for in-flight fires")
		return ctx.Err()
	}
}

// 日志辅助方法.

func (e *cronEngine) logDebugf(format string, args ...any) {
	if e.log != nil {
		e.log.Debugf("[Engine] "+format, args...)
	}
}

func (e *cronEngine) logWarnf(format string, args ...any) {
	if e.log != nil {
		e.log.Warnf("[Engine] "+format, args...)
	}
}

func (e *cronEngine) logErrorf(format string, args ...any) {
	if e.log != nil {
		e.log.Errorf("[Engine] "+format, args...)
	}
}
