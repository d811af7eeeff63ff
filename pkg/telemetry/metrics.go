package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsConfig configures metrics collection.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded.
	Enabled bool `yaml:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `yaml:"namespace,omitempty"`

	// Addr is the listen address for the metrics endpoint (CLI only).
	Addr string `yaml:"addr,omitempty"`
}

// Metrics provides Prometheus metrics for the runtime.
// A Metrics created with Enabled=false, or a nil *Metrics, records nothing.
type Metrics struct {
	enabled bool

	mounts        prometheus.Counter
	destroys      prometheus.Counter
	updates       prometheus.Counter
	effectRuns    prometheus.Counter
	effectErrors  prometheus.Counter
	flushPasses   prometheus.Counter
	notifications prometheus.Counter
	liveInstances prometheus.Gauge
	liveWrappers  prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates a metrics collector on its own registry.
func NewMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return &Metrics{}
	}
	ns := cfg.Namespace
	if ns == "" {
		ns = "mutor"
	}
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Namespace: ns, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Namespace: ns, Name: name, Help: help})
	}

	m := &Metrics{
		enabled:       true,
		mounts:        counter("mounts_total", "Component instances mounted."),
		destroys:      counter("destroys_total", "Component instances destroyed."),
		updates:       counter("updates_total", "Component updates executed."),
		effectRuns:    counter("effect_runs_total", "Effect callback executions."),
		effectErrors:  counter("effect_errors_total", "Effect bodies or cleanups that failed."),
		flushPasses:   counter("flush_passes_total", "Scheduler notification passes."),
		notifications: counter("notifications_total", "State writes queued for propagation."),
		liveInstances: gauge("live_instances", "Mounted component instances."),
		liveWrappers:  gauge("live_wrappers", "Observation wrappers currently registered."),
		registry:      prometheus.NewRegistry(),
	}
	m.registry.MustRegister(
		m.mounts, m.destroys, m.updates, m.effectRuns, m.effectErrors,
		m.flushPasses, m.notifications, m.liveInstances, m.liveWrappers,
	)
	return m
}

// Enabled reports whether the collector records anything.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Registry returns the private registry, or nil when disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if !m.Enabled() {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if !m.Enabled() {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// InstanceMounted records a mount.
func (m *Metrics) InstanceMounted() {
	if m.Enabled() {
		m.mounts.Inc()
		m.liveInstances.Inc()
	}
}

// InstanceDestroyed records a destroy.
func (m *Metrics) InstanceDestroyed() {
	if m.Enabled() {
		m.destroys.Inc()
		m.liveInstances.Dec()
	}
}

// UpdateRan records a component update.
func (m *Metrics) UpdateRan() {
	if m.Enabled() {
		m.updates.Inc()
	}
}

// EffectRan records an effect execution and whether it failed.
func (m *Metrics) EffectRan(failed bool) {
	if m.Enabled() {
		m.effectRuns.Inc()
		if failed {
			m.effectErrors.Inc()
		}
	}
}

// FlushPass records one scheduler pass.
func (m *Metrics) FlushPass() {
	if m.Enabled() {
		m.flushPasses.Inc()
	}
}

// Notified records a queued state write.
func (m *Metrics) Notified() {
	if m.Enabled() {
		m.notifications.Inc()
	}
}

// WrapperCreated records a new observation wrapper.
func (m *Metrics) WrapperCreated() {
	if m.Enabled() {
		m.liveWrappers.Inc()
	}
}

// WrapperReleased records a torn down observation wrapper.
func (m *Metrics) WrapperReleased() {
	if m.Enabled() {
		m.liveWrappers.Dec()
	}
}
