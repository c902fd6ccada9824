package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	emailsQueued    prometheus.Counter
	emailsFailed    prometheus.Counter
	schedulerRuns   *prometheus.CounterVec
	marksTotal      *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	emailsQueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "report_emails_queued_total",
		Help: "Total report emails handed to the mail queue",
	})

	emailsFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "report_emails_failed_total",
		Help: "Total report emails that could not be queued",
	})

	schedulerRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "scheduler_runs_total",
		Help: "Scheduled report job executions by job and outcome",
	}, []string{"job", "outcome"})

	marksTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_marks_total",
		Help: "Attendance records written by status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, emailsQueued, emailsFailed, schedulerRuns, marksTotal, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		emailsQueued:    emailsQueued,
		emailsFailed:    emailsFailed,
		schedulerRuns:   schedulerRuns,
		marksTotal:      marksTotal,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordEmailQueued counts a report email handed to the queue.
func (m *MetricsService) RecordEmailQueued() {
	if m == nil {
		return
	}
	m.emailsQueued.Inc()
}

// RecordEmailFailed counts a report email that could not be queued.
func (m *MetricsService) RecordEmailFailed() {
	if m == nil {
		return
	}
	m.emailsFailed.Inc()
}

// RecordSchedulerRun counts a scheduled job execution.
func (m *MetricsService) RecordSchedulerRun(job string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.schedulerRuns.WithLabelValues(job, outcome).Inc()
}

// RecordMark counts an attendance write by status.
func (m *MetricsService) RecordMark(status string) {
	if m == nil {
		return
	}
	m.marksTotal.WithLabelValues(status).Inc()
}
