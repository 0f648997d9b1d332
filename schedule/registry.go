package schedule

import (
	"fmt"
	"sort"
	"sync"
)

// Registry 调度定义注册表.
//
// 以规范化（大写）名称为键的进程内映射.
// 定义一经注册即不可删除，注册表随进程生命周期存在.
type Registry struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewRegistry 创建调度注册表.
func NewRegistry() *Registry {
	return &Registry{
		defs: make(map[string]*Definition),
	}
}

// Register 注册调度定义.
//
// 名称折叠后冲突时返回 ErrDuplicate.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return ErrNameEmpty
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.defs[def.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, def.Name())
	}

	r.defs[def.Name()] = def
	return nil
}

// Lookup 按名称查找调度定义（不区分大小写）.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	def, exists := r.defs[NormalizeKey(name)]
	return def, exists
}

// Names 返回所有已注册调度的名称（排序后）.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.defs))
	for name := range r.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len 返回已注册调度数量.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.defs)
}
