// Package metrics exposes Prometheus counters for the planning API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"grid-asset-prioritizer/internal/selection"
)

// Metrics groups the collectors registered for one server.
type Metrics struct {
	registry          *prometheus.Registry
	httpRequestsTotal *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	selectionsTotal   *prometheus.CounterVec
	selectedAssets    prometheus.Histogram
	budgetUtilization prometheus.Gauge
	feedAssets        prometheus.Gauge
}

// New creates the collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		selectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "asset_selections_total",
			Help: "Total selection runs by result status.",
		}, []string{"status"}),
		selectedAssets: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "asset_selection_size",
			Help:    "Number of assets picked per selection run.",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),
		budgetUtilization: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "asset_selection_budget_utilization_ratio",
			Help: "Share of the budget used by the latest selection run.",
		}),
		feedAssets: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "asset_feed_assets",
			Help: "Number of assets in the loaded feed.",
		}),
	}

	m.registry.MustRegister(
		m.httpRequestsTotal,
		m.httpDuration,
		m.selectionsTotal,
		m.selectedAssets,
		m.budgetUtilization,
		m.feedAssets,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveSelection records the outcome of one selection run.
func (m *Metrics) ObserveSelection(result selection.Result) {
	m.selectionsTotal.WithLabelValues(string(result.Status)).Inc()
	m.selectedAssets.Observe(float64(result.SelectedCount))
	if result.Budget > 0 {
		m.budgetUtilization.Set(result.UsedBudget / result.Budget)
	}
}

// SetFeedSize records how many assets the feed holds.
func (m *Metrics) SetFeedSize(n int) {
	m.feedAssets.Set(float64(n))
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// Instrument wraps a handler to count requests and time them under route.
func (m *Metrics) Instrument(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)
		m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
	})
}
