package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/KaramelBytes/moviedash/internal/dataset"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server's Prometheus collectors. Each server owns its
// registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	RecomputeDuration *prometheus.HistogramVec
	DatasetRows       prometheus.Gauge
}

// NewMetrics registers the collectors, including cache counters read from c.
func NewMetrics(c *dataset.Cache) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	f := promauto.With(reg)
	m := &Metrics{
		registry: reg,
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "moviedash_http_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moviedash_http_request_duration_seconds",
				Help:    "API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		RecomputeDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "moviedash_recompute_duration_seconds",
				Help:    "Duration of filter and aggregation passes in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"view"},
		),
		DatasetRows: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "moviedash_dataset_rows",
				Help: "Rows in the most recently served dataset",
			},
		),
	}
	f.NewCounterFunc(
		prometheus.CounterOpts{Name: "moviedash_dataset_cache_hits_total", Help: "Dataset cache hits"},
		func() float64 { return float64(c.Stats().Hits) },
	)
	f.NewCounterFunc(
		prometheus.CounterOpts{Name: "moviedash_dataset_cache_misses_total", Help: "Dataset cache misses (loads)"},
		func() float64 { return float64(c.Stats().Misses) },
	)
	f.NewGaugeFunc(
		prometheus.GaugeOpts{Name: "moviedash_dataset_cache_entries", Help: "Datasets currently cached"},
		func() float64 { return float64(c.Stats().Entries) },
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRecompute records the time since start for view.
func (m *Metrics) ObserveRecompute(view string, start time.Time) {
	m.RecomputeDuration.WithLabelValues(view).Observe(time.Since(start).Seconds())
}

// Middleware records request counts and latency by route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
