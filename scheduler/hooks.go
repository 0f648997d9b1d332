package scheduler

import (
	"context"
	"time"
)

// FireContext 单次触发的执行上下文.
type FireContext struct {
	// Schedule 调度名称（已折叠为大写）.
	Schedule string

	// ScheduledAt 计划触发时刻.
	ScheduledAt time.Time

	// FiredAt 实际触发时刻.
	FiredAt time.Time

	// Error 投递错误（仅在 AfterFire/OnError 中有值）.
	Error error

	// Duration 投递耗时（仅在 AfterFire/OnError 中有值）.
	Duration time.Duration

	// Skipped 是否被跳过.
	Skipped bool

	// SkipReason 跳过原因.
	SkipReason string
}

// BeforeFireHook 投递前回调.
// 返回 error 将阻止本次投递.
type BeforeFireHook func(ctx context.Context, fc *FireContext) error

// AfterFireHook 投递后回调.
type AfterFireHook func(ctx context.Context, fc *FireContext)

// OnErrorHook 投递错误回调.
type OnErrorHook func(ctx context.Context, fc *FireContext)

// OnSkipHook 触发跳过回调.
type OnSkipHook func(ctx context.Context, fc *FireContext)

// Hooks 触发钩子集合.
type Hooks struct {
	// BeforeFire 投递前回调列表.
	BeforeFire []BeforeFireHook

	// AfterFire 投递后回调列表（无论成功失败都会调用）.
	AfterFire []AfterFireHook

	// OnError 投递错误回调列表.
	OnError []OnErrorHook

	// OnSkip 触发跳过回调列表.
	OnSkip []OnSkipHook
}

// runBeforeHooks 执行前置钩子.
func (h *Hooks) runBeforeHooks(ctx context.Context, fc *FireContext) error {
	if h == nil {
		return nil
	}
	for _, hook := range h.BeforeFire {
		if err := hook(ctx, fc); err != nil {
			return err
		}
	}
	return nil
}

// runAfterHooks 执行后置钩子.
func (h *Hooks) runAfterHooks(ctx context.Context, fc *FireContext) {
	if h == nil {
		return
	}
	for _, hook := range h.AfterFire {
		hook(ctx, fc)
	}
}

// runErrorHooks 执行错误钩子.
func (h *Hooks) runErrorHooks(ctx context.Context, fc *FireContext) {
	if h == nil {
		return
	}
	for _, hook := range h.OnError {
		hook(ctx, fc)
	}
}

// runSkipHooks 执行跳过钩子.
func (h *Hooks) runSkipHooks(ctx context.Context, fc *FireContext) {
	if h == nil {
		return
	}
	for _, hook := range h.OnSkip {
		hook(ctx, fc)
	}
}

// HooksBuilder 钩子构建器.
type HooksBuilder struct {
	hooks *Hooks
}

// NewHooks 创建钩子构建器.
func NewHooks() *HooksBuilder {
	return &HooksBuilder{
		hooks: &Hooks{},
	}
}

// BeforeFire 添加前置钩子.
func (b *HooksBuilder) BeforeFire(hook BeforeFireHook) *HooksBuilder {
	b.hooks.BeforeFire = append(b.hooks.BeforeFire, hook)
	return b
}

// AfterFire 添加后置钩子.
func (b *HooksBuilder) AfterFire(hook AfterFireHook) *HooksBuilder {
	b.hooks.AfterFire = append(b.hooks.AfterFire, hook)
	return b
}

// OnError 添加错误钩子.
func (b *HooksBuilder) OnError(hook OnErrorHook) *HooksBuilder {
	b.hooks.OnError = append(b.hooks.OnError, hook)
	return b
}

// OnSkip 添加跳过钩子.
func (b *HooksBuilder) OnSkip(hook OnSkipHook) *HooksBuilder {
	b.hooks.OnSkip = append(b.hooks.OnSkip, hook)
	return b
}

// Build 构建钩子.
func (b *HooksBuilder) Build() *Hooks {
	return b.hooks
}
