package scheduler

import (
	"time"

	"github.com/Tsukikage7/quartzkit/metrics"
)

// schedulerMetrics 调度器指标记录器.
//
// 封装 metrics.PrometheusCollector，提供调度器特定的指标记录方法.
type schedulerMetrics struct {
	collector *metrics.PrometheusCollector
}

// newSchedulerMetrics 创建调度器指标记录器.
func newSchedulerMetrics(collector *metrics.PrometheusCollector) *schedulerMetrics {
	return &schedulerMetrics{collector: collector}
}

// RecordFire 记录一次成功投递.
func (m *schedulerMetrics) RecordFire(schedule string, latency time.Duration) {
	if m == nil || m.collector == nil {
		return
	}
	labels := map[string]string{"schedule": schedule}
	m.collector.Counter("scheduler_fires_total", labels)
	m.collector.Histogram("scheduler_fire_duration_seconds", latency.Seconds(), labels)
}

// RecordError 记录投递错误.
func (m *schedulerMetrics) RecordError(schedule string) {
	if m == nil || m.collector == nil {
		return
	}
	m.collector.Counter("scheduler_fire_errors_total", map[string]string{"schedule": schedule})
}

// RecordMisfire 记录因队列满被丢弃的触发.
func (m *schedulerMetrics) RecordMisfire(schedule string) {
	if m == nil || m.collector == nil {
		return
	}
	m.collector.Counter("scheduler_misfires_total", map[string]string{"schedule": schedule})
}

// RecordSkip 记录触发跳过.
func (m *schedulerMetrics) RecordSkip(schedule, reason string) {
	if m == nil || m.collector == nil {
		return
	}
	m.collector.Counter("scheduler_fires_skipped_total", map[string]string{
		"schedule": schedule,
		"reason":   reason,
	})
}

// SetRunningJobs 更新运行中任务数.
func (m *schedulerMetrics) SetRunningJobs(n int) {
	if m == nil || m.collector == nil {
		return
	}
	m.collector.Gauge("scheduler_running_jobs", float64(n), nil)
}
