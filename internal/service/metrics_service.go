package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/attendance-api/internal/models"
)

// MetricsService encapsulates Prometheus instrumentation. All methods are
// safe on a nil receiver so metrics can be disabled by passing nil.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	events          *prometheus.CounterVec
	reviews         *prometheus.CounterVec
	saves           *prometheus.CounterVec
	saveDuration    prometheus.Histogram
	lastSave        prometheus.Gauge

	saveFailures uint64
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

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "attendance_events_recorded_total",
		Help: "Attendance events recorded by type",
	}, []string{"type"})

	reviews := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "correction_reviews_total",
		Help: "Correction request decisions by outcome",
	}, []string{"decision", "applied"})

	saves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "document_saves_total",
		Help: "Application document writes by result",
	}, []string{"result"})

	saveDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "document_save_duration_seconds",
		Help:    "Latency of application document writes",
		Buckets: prometheus.DefBuckets,
	})

	lastSave := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "document_last_successful_save_timestamp_seconds",
		Help: "Unix time of the last successful document write",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, events, reviews, saves, saveDuration, lastSave, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		events:          events,
		reviews:         reviews,
		saves:           saves,
		saveDuration:    saveDuration,
		lastSave:        lastSave,
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

// Registry returns the underlying registry.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
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

// RecordAttendanceEvent counts a recorded clock event.
func (m *MetricsService) RecordAttendanceEvent(kind models.EventKind) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(string(kind)).Inc()
}

// RecordCorrectionReview counts an approve or deny decision.
func (m *MetricsService) RecordCorrectionReview(decision models.CorrectionStatus, applied bool) {
	if m == nil {
		return
	}
	m.reviews.WithLabelValues(string(decision), fmt.Sprintf("%t", applied)).Inc()
}

// ObserveDocumentSave records the outcome and latency of a document write.
func (m *MetricsService) ObserveDocumentSave(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.saveDuration.Observe(duration.Seconds())
	if success {
		m.saves.WithLabelValues("success").Inc()
		m.lastSave.SetToCurrentTime()
		return
	}
	m.saves.WithLabelValues("failure").Inc()
	atomic.AddUint64(&m.saveFailures, 1)
}

// SaveFailures reports how many document writes have failed since start.
func (m *MetricsService) SaveFailures() uint64 {
	if m == nil {
		return 0
	}
	return atomic.LoadUint64(&m.saveFailures)
}
