package calendar

import (
	"fmt"
	"sort"
	"sync"

	"github.com/Tsukikage7/quartzkit/schedule"
)

// Registry 日历注册表.
//
// 以规范化（大写）名称为键；重复挂载同名日历采用覆盖语义，
// 引用该日历的触发器在下一次触发时即读到新日历（按名称惰性解析）.
type Registry struct {
	mu   sync.RWMutex
	cals map[string]Calendar
}

// NewRegistry 创建日历注册表.
func NewRegistry() *Registry {
	return &Registry{
		cals: make(map[string]Calendar),
	}
}

// Put 挂载日历.
//
// replace 为 true 时覆盖同名日历（幂等）；为 false 时同名返回 ErrExists.
func (r *Registry) Put(cal Calendar, replace bool) error {
	if cal == nil {
		return ErrNilConfig
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.cals[cal.Name()]; exists && !replace {
		return fmt.Errorf("%w: %s", ErrExists, cal.Name())
	}

	r.cals[cal.Name()] = cal
	return nil
}

// Get 按名称查找日历（不区分大小写）.
func (r *Registry) Get(name string) (Calendar, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cal, exists := r.cals[schedule.NormalizeKey(name)]
	return cal, exists
}

// Names 返回所有已挂载日历的名称（排序后）.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cals))
	for name := range r.cals {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len 返回已挂载日历数量.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cals)
}
