package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Tsukikage7/quartzkit/calendar"
	"github.com/Tsukikage7/quartzkit/delivery"
	"github.com/Tsukikage7/quartzkit/engine"
)

// mockEngine 用于测试的模拟触发引擎.
type mockEngine struct {
	mu        sync.Mutex
	seq       int
	jobs      map[engine.Key]*engine.Job
	paused    map[engine.Key]bool
	calendars map[string]calendar.Calendar
	started   bool
	closed    bool

	registerErr error
	deleteErr   error
	firstFire   time.Time
}

func newMockEngine() *mockEngine {
	return &mockEngine{
		jobs:      make(map[engine.Key]*engine.Job),
		paused:    make(map[engine.Key]bool),
		calendars: make(map[string]calendar.Calendar),
		firstFire: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *mockEngine) Register(job *engine.Job, tr *engine.Trigger) (engine.Key, time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registerErr != nil {
		return "", time.Time{}, m.registerErr
	}

	m.seq++
	key := engine.Key(fmt.Sprintf("key-%d", m.seq))
	m.jobs[key] = job
	return key, m.firstFire, nil
}

func (m *mockEngine) Pause(key engine.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[key]; !exists {
		return engine.ErrJobNotFound
	}
	m.paused[key] = true
	return nil
}

func (m *mockEngine) Resume(key engine.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.jobs[key]; !exists {
		return engine.ErrJobNotFound
	}
	m.paused[key] = false
	return nil
}

func (m *mockEngine) Delete(key engine.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, exists := m.jobs[key]; !exists {
		return engine.ErrJobNotFound
	}
	delete(m.jobs, key)
	delete(m.paused, key)
	return nil
}

func (m *mockEngine) AttachCalendar(cal calendar.Calendar, replace, updateTriggers bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calendars[cal.Name()] = cal
	return nil
}

func (m *mockEngine) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return engine.ErrEngineClosed
	}
	if m.started {
		return engine.ErrAlreadyStarted
	}
	m.started = true
	return nil
}

func (m *mockEngine) Standby() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return engine.ErrEngineClosed
	}
	m.started = false
	return nil
}

func (m *mockEngine) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

func (m *mockEngine) InStandby() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.started && !m.closed
}

func (m *mockEngine) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.started = false
	return nil
}

// fire 模拟一次触发，同步执行回调.
func (m *mockEngine) fire(key engine.Key, at time.Time) {
	m.mu.Lock()
	job, exists := m.jobs[key]
	paused := m.paused[key]
	m.mu.Unlock()

	if !exists || paused {
		return
	}
	job.Handler(context.Background(), engine.Fire{Key: key, ScheduledAt: at, FiredAt: at})
}

func (m *mockEngine) jobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

// mockRecipient 用于测试的模拟投递目标.
type mockRecipient struct {
	mu         sync.Mutex
	delivered  []*delivery.Envelope
	deliverErr error
	closed     bool
}

func (m *mockRecipient) Deliver(ctx context.Context, env *delivery.Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.deliverErr != nil {
		return m.deliverErr
	}
	m.delivered = append(m.delivered, env)
	return nil
}

func (m *mockRecipient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockRecipient) envelopes() []*delivery.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*delivery.Envelope(nil), m.delivered...)
}
