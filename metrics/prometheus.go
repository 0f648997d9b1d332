package metrics

import (
	"net/http"
	"sort"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusCollector Prometheus 指标收集器实现.
//
// 指标按需创建并注册到私有注册表，避免与默认注册表冲突.
type PrometheusCollector struct {
	config *Config

	// 自定义指标注册表
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
	gauges     map[string]*prometheus.GaugeVec
	mu         sync.RWMutex

	registry *prometheus.Registry
}

// NewPrometheus 创建 Prometheus 指标收集器.
func NewPrometheus(cfg *Config) (*PrometheusCollector, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Namespace == "" {
		cfg.Namespace = "quartzkit"
	}

	return &PrometheusCollector{
		config:     cfg,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		registry:   prometheus.NewRegistry(),
	}, nil
}

// Counter 增加计数器.
//
// 使用示例:
//
//	collector.Counter("scheduler_fires_total", map[string]string{"schedule": "NIGHTLY_REPORT"})
func (c *PrometheusCollector) Counter(name string, labels map[string]string) {
	c.mu.RLock()
	counter, exists := c.counters[name]
	c.mu.RUnlock()

	labelNames, labelValues := extractLabels(labels)

	if !exists {
		c.mu.Lock()
		// 双重检查
		if counter, exists = c.counters[name]; !exists {
			counter = prometheus.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: c.config.Namespace,
					Name:      name,
					Help:      "Custom counter: " + name,
				},
				labelNames,
			)

			if err := c.registry.Register(counter); err == nil {
				c.counters[name] = counter
			}
		}
		c.mu.Unlock()
	}

	if counter != nil {
		counter.WithLabelValues(labelValues...).Inc()
	}
}

// Histogram 观察自定义直方图.
func (c *PrometheusCollector) Histogram(name string, value float64, labels map[string]string) {
	c.mu.RLock()
	histogram, exists := c.histograms[name]
	c.mu.RUnlock()

	labelNames, labelValues := extractLabels(labels)

	if !exists {
		c.mu.Lock()
		// 双重检查
		if histogram, exists = c.histograms[name]; !exists {
			histogram = prometheus.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: c.config.Namespace,
					Name:      name,
					Help:      "Custom histogram: " + name,
					Buckets:   prometheus.DefBuckets,
				},
				labelNames,
			)

			if err := c.registry.Register(histogram); err == nil {
				c.histograms[name] = histogram
			}
		}
		c.mu.Unlock()
	}

	if histogram != nil {
		histogram.WithLabelValues(labelValues...).Observe(value)
	}
}

// Gauge 设置自定义仪表盘.
func (c *PrometheusCollector) Gauge(name string, value float64, labels map[string]string) {
	c.mu.RLock()
	gauge, exists := c.gauges[name]
	c.mu.RUnlock()

	labelNames, labelValues := extractLabels(labels)

	if !exists {
		c.mu.Lock()
		// 双重检查
		if gauge, exists = c.gauges[name]; !exists {
			gauge = prometheus.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: c.config.Namespace,
					Name:      name,
					Help:      "Custom gauge: " + name,
				},
				labelNames,
			)

			if err := c.registry.Register(gauge); err == nil {
				c.gauges[name] = gauge
			}
		}
		c.mu.Unlock()
	}

	if gauge != nil {
		gauge.WithLabelValues(labelValues...).Set(value)
	}
}

// extractLabels 从 map 中提取 label 名称和值，确保顺序一致.
// 通过排序 key 来保证每次调用的顺序稳定.
func extractLabels(labels map[string]string) ([]string, []string) {
	labelNames := make([]string, 0, len(labels))
	for k := range labels {
		labelNames = append(labelNames, k)
	}
	sort.Strings(labelNames)

	labelValues := make([]string, 0, len(labels))
	for _, k := range labelNames {
		labelValues = append(labelValues, labels[k])
	}

	return labelNames, labelValues
}

// GetHandler 返回 metrics 的 HTTP 处理器.
func (c *PrometheusCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// GetPath 返回 metrics 路径.
func (c *PrometheusCollector) GetPath() string {
	if c.config.Path == "" {
		return "/metrics"
	}
	return c.config.Path
}
