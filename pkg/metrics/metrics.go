package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the prometheus collectors exposed by the service.
type Metrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	dbQueryDuration *prometheus.HistogramVec
	dbPoolOpen      *prometheus.GaugeVec
	dbPoolIdle      *prometheus.GaugeVec
	dbPoolInUse     *prometheus.GaugeVec

	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	cacheDegraded *prometheus.CounterVec
}

// New registers and returns the service collectors.
func New(service string) *Metrics {
	constLabels := prometheus.Labels{"service": service}

	return &Metrics{
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests.",
			ConstLabels: constLabels,
		}, []string{"method", "path", "status"}),

		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "path"}),

		dbQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency.",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation", "outcome"}),

		dbPoolOpen: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_open_connections",
			Help:        "Open connections in the database pool.",
			ConstLabels: constLabels,
		}, []string{"db"}),

		dbPoolIdle: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_idle_connections",
			Help:        "Idle connections in the database pool.",
			ConstLabels: constLabels,
		}, []string{"db"}),

		dbPoolInUse: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_pool_in_use_connections",
			Help:        "Connections currently in use.",
			ConstLabels: constLabels,
		}, []string{"db"}),

		cacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_cache_hits_total",
			Help:        "Slot cache hits.",
			ConstLabels: constLabels,
		}, []string{"store"}),

		cacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_cache_misses_total",
			Help:        "Slot cache misses.",
			ConstLabels: constLabels,
		}, []string{"store"}),

		cacheDegraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name:        "slot_cache_degraded_total",
			Help:        "Cache operations treated as miss or no-op because the store was unavailable.",
			ConstLabels: constLabels,
		}, []string{"store", "operation"}),
	}
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveDBQuery records one database query.
func (m *Metrics) ObserveDBQuery(operation string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.dbQueryDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// SetDBPoolStats records connection pool gauges.
func (m *Metrics) SetDBPoolStats(db string, open, idle, inUse int) {
	m.dbPoolOpen.WithLabelValues(db).Set(float64(open))
	m.dbPoolIdle.WithLabelValues(db).Set(float64(idle))
	m.dbPoolInUse.WithLabelValues(db).Set(float64(inUse))
}

// IncCacheHit records a slot cache hit.
func (m *Metrics) IncCacheHit(store string) {
	m.cacheHits.WithLabelValues(store).Inc()
}

// IncCacheMiss records a slot cache miss.
func (m *Metrics) IncCacheMiss(store string) {
	m.cacheMisses.WithLabelValues(store).Inc()
}

// IncCacheDegraded records a cache operation absorbed in degraded mode.
func (m *Metrics) IncCacheDegraded(store, operation string) {
	m.cacheDegraded.WithLabelValues(store, operation).Inc()
}
