package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics mengumpulkan metrik Prometheus untuk aplikasi.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	commissionsTotal prometheus.Counter
	commissionStatus *prometheus.CounterVec
	summaryCache     *prometheus.CounterVec
}

// NewMetrics menginisialisasi registry dan metrik dasar.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "staybook_http_requests_total",
		Help: "Jumlah permintaan HTTP berdasarkan route dan status.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "staybook_http_request_duration_seconds",
		Help:    "Durasi permintaan HTTP per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	commissions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "staybook_commission_entries_recorded_total",
		Help: "Jumlah entri komisi GRO yang dicatat.",
	})
	commissionStatus := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "staybook_commission_status_changes_total",
		Help: "Perubahan status entri komisi berdasarkan status tujuan.",
	}, []string{"status"})
	summaryCache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "staybook_summary_cache_requests_total",
		Help: "Permintaan cache ringkasan GRO berdasarkan hasil.",
	}, []string{"result"})
	registry.MustRegister(requests, duration, commissions, commissionStatus, summaryCache)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		commissionsTotal: commissions,
		commissionStatus: commissionStatus,
		summaryCache:     summaryCache,
	}
}

// Handler mengembalikan http.Handler untuk endpoint /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware mencatat metrik untuk setiap permintaan HTTP.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// CommissionRecorded menghitung entri komisi baru.
func (m *Metrics) CommissionRecorded() {
	if m == nil {
		return
	}
	m.commissionsTotal.Inc()
}

// CommissionStatusChanged menghitung transisi status komisi.
func (m *Metrics) CommissionStatusChanged(status string) {
	if m == nil {
		return
	}
	m.commissionStatus.WithLabelValues(status).Inc()
}

// SummaryCacheRequest mencatat hit, miss, atau error cache ringkasan.
func (m *Metrics) SummaryCacheRequest(result string) {
	if m == nil {
		return
	}
	m.summaryCache.WithLabelValues(result).Inc()
}

// Registerer mengekspos registry untuk pendaftaran metrik khusus.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
