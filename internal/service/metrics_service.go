package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// donation workflow.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	requestsCreated    prometheus.Counter
	donationsConfirmed prometheus.Counter
	unitsCollected     prometheus.Counter
	alertsSent         *prometheus.CounterVec
	emailsEnqueued     prometheus.Counter
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

	requestsCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blood_requests_created_total",
		Help: "Total blood requests created",
	})

	donationsConfirmed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "donations_confirmed_total",
		Help: "Total donations confirmed by hospitals",
	})

	unitsCollected := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "blood_units_collected_total",
		Help: "Total blood units credited to hospital inventories",
	})

	alertsSent := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "donor_alerts_sent_total",
		Help: "Total donor alerts created, by kind",
	}, []string{"kind"})

	emailsEnqueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "notification_emails_enqueued_total",
		Help: "Total notification emails handed to the background queue",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, requestsCreated, donationsConfirmed, unitsCollected, alertsSent, emailsEnqueued, goroutines)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		requestsCreated:    requestsCreated,
		donationsConfirmed: donationsConfirmed,
		unitsCollected:     unitsCollected,
		alertsSent:         alertsSent,
		emailsEnqueued:     emailsEnqueued,
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

// ObserveHTTPRequest records per-route request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordRequestCreated counts a newly opened blood request.
func (m *MetricsService) RecordRequestCreated() {
	if m == nil {
		return
	}
	m.requestsCreated.Inc()
}

// RecordDonationConfirmed counts a confirmed donation and its credited units.
func (m *MetricsService) RecordDonationConfirmed(units int) {
	if m == nil {
		return
	}
	m.donationsConfirmed.Inc()
	if units > 0 {
		m.unitsCollected.Add(float64(units))
	}
}

// RecordAlertSent counts a created alert by kind.
func (m *MetricsService) RecordAlertSent(kind string) {
	if m == nil {
		return
	}
	m.alertsSent.WithLabelValues(kind).Inc()
}

// RecordEmailEnqueued counts a notification email handed to the queue.
func (m *MetricsService) RecordEmailEnqueued() {
	if m == nil {
		return
	}
	m.emailsEnqueued.Inc()
}
