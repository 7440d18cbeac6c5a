package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for omnieval
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RateLimitedTotal prometheus.Counter
	RateLimitClients prometheus.Gauge
	PanelsTotal      *prometheus.CounterVec
	ReportsTotal     *prometheus.CounterVec
	ArticlesLoaded   prometheus.Gauge
}

// New creates and registers all metrics with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "omnieval_http_requests_total",
			Help: "Total number of HTTP requests by route, method and status",
		}, []string{"route", "method", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "omnieval_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "omnieval_http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		}),
		RateLimitClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "omnieval_http_rate_limit_clients",
			Help: "Number of clients currently holding a rate limit bucket",
		}),
		PanelsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "omnieval_panels_total",
			Help: "Total number of panels computed by kind",
		}, []string{"kind"}),
		ReportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "omnieval_reports_total",
			Help: "Total number of article reports computed by source",
		}, []string{"source"}),
		ArticlesLoaded: factory.NewGauge(prometheus.GaugeOpts{
			Name: "omnieval_articles_loaded",
			Help: "Number of article bundles held in memory",
		}),
	}
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(route, method, status string, seconds float64) {
	m.RequestsTotal.WithLabelValues(route, method, status).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(seconds)
}

// IncrementRateLimited increments the rate-limited counter by 1
func (m *Metrics) IncrementRateLimited() {
	m.RateLimitedTotal.Inc()
}

// SetRateLimitClients sets the number of tracked rate limit clients
func (m *Metrics) SetRateLimitClients(count int) {
	m.RateLimitClients.Set(float64(count))
}

// IncrementPanels counts a computed panel
func (m *Metrics) IncrementPanels(kind string) {
	m.PanelsTotal.WithLabelValues(kind).Inc()
}

// IncrementReports counts a computed report
func (m *Metrics) IncrementReports(source string) {
	m.ReportsTotal.WithLabelValues(source).Inc()
}

// SetArticlesLoaded sets the number of loaded bundles
func (m *Metrics) SetArticlesLoaded(count int) {
	m.ArticlesLoaded.Set(float64(count))
}
