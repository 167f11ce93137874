package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "hrportal"

// Metrics holds the Prometheus collectors of the service. A nil *Metrics
// is valid and records nothing, so services can run without it in tests.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	leaveEvents   *prometheus.CounterVec
	payrollEvents *prometheus.CounterVec
	docReviews    *prometheus.CounterVec
	pushes        *prometheus.CounterVec
	wsConnections prometheus.Gauge
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors on a private registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"method", "route"}),
		leaveEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "leave",
			Name:      "requests_total",
			Help:      "Leave requests by outcome (submitted, senior_approved, approved, rejected, cancelled).",
		}, []string{"outcome"}),
		payrollEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payroll",
			Name:      "transitions_total",
			Help:      "Payroll record transitions by target status.",
		}, []string{"status"}),
		docReviews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "reviews_total",
			Help:      "Document reviews by outcome.",
		}, []string{"outcome"}),
		pushes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "push",
			Name:      "messages_total",
			Help:      "Push messages by result (sent, failed, unregistered, skipped).",
		}, []string{"result"}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "chat",
			Name:      "ws_connections",
			Help:      "Open chat WebSocket connections on this instance.",
		}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Scheduled job runs.",
		}, []string{"job", "success"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "scheduler",
			Name:      "job_run_duration_seconds",
			Help:      "Duration of scheduled job runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}, []string{"job"}),
	}
	m.registry.MustRegister(
		m.httpRequests, m.httpDuration, m.leaveEvents, m.payrollEvents,
		m.docReviews, m.pushes, m.wsConnections, m.jobRuns, m.jobDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler exposes the registry for scraping
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one handled request. route is the matched gin
// pattern so ids do not explode label cardinality.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// LeaveEvent counts a leave workflow step
func (m *Metrics) LeaveEvent(outcome string) {
	if m == nil {
		return
	}
	m.leaveEvents.WithLabelValues(outcome).Inc()
}

// PayrollTransition counts a payroll status change
func (m *Metrics) PayrollTransition(status string) {
	if m == nil {
		return
	}
	m.payrollEvents.WithLabelValues(status).Inc()
}

// DocumentReviewed counts an approve or reject decision
func (m *Metrics) DocumentReviewed(outcome string) {
	if m == nil {
		return
	}
	m.docReviews.WithLabelValues(outcome).Inc()
}

// PushResult counts push delivery outcomes
func (m *Metrics) PushResult(result string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pushes.WithLabelValues(result).Add(float64(n))
}

// WSConnected tracks open chat sockets; pass -1 on disconnect
func (m *Metrics) WSConnected(delta int) {
	if m == nil {
		return
	}
	m.wsConnections.Add(float64(delta))
}

// JobRun records a scheduled job execution
func (m *Metrics) JobRun(job string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, strconv.FormatBool(err == nil)).Inc()
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
}
