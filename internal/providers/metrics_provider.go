package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"kcald/internal/services"
	"kcald/internal/structures"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(endpoint, method string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncAiRequests(kind string, success bool)
	ObserveAiDuration(kind string, duration time.Duration)
	IncRollovers()
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	aiRequestsTotal     *prometheus.CounterVec
	aiRequestDuration   *prometheus.HistogramVec
	rolloversTotal      prometheus.Counter
}

func (m *MetricsProvider) IncRequestsTotal(endpoint, method string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, method, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func (m *MetricsProvider) IncAiRequests(kind string, success bool) {
	outcome := "ok"
	if !success {
		outcome = "error"
	}
	m.aiRequestsTotal.WithLabelValues(kind, outcome).Inc()
}

func (m *MetricsProvider) ObserveAiDuration(kind string, duration time.Duration) {
	m.aiRequestDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

func (m *MetricsProvider) IncRollovers() {
	m.rolloversTotal.Inc()
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, service services.TrackerServiceInterface) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kcald_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "method", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kcald_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kcald_cache_hits_total",
			Help: "Total number of cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kcald_cache_misses_total",
			Help: "Total number of cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "kcald_persistence_duration_seconds",
			Help:    "Duration of snapshot persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		aiRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "kcald_ai_requests_total",
			Help: "Total number of AI model calls by kind and outcome",
		}, []string{"kind", "outcome"}),

		aiRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kcald_ai_request_duration_seconds",
			Help:    "AI model call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		}, []string{"kind"}),

		rolloversTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "kcald_rollovers_total",
			Help: "Total number of day rollovers performed",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kcald_consumed_calories",
		Help: "Calories consumed so far today",
	}, func() float64 {
		return float64(service.ConsumedCalories())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kcald_log_entries",
		Help: "Number of meal entries in today's log",
	}, func() float64 {
		return float64(service.LogSize())
	})

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "kcald_history_days",
		Help: "Number of archived days in history",
	}, func() float64 {
		return float64(service.HistorySize())
	})

	return m
}

type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_, _ string, _ int)              {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncAiRequests(_ string, _ bool)                   {}
func (n *noopMetrics) ObserveAiDuration(_ string, _ time.Duration)      {}
func (n *noopMetrics) IncRollovers()                                    {}
