// Package metrics provides Prometheus metrics for the fantail stats pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the fantail service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Payload decoding
	recordsDecoded prometheus.Counter
	shapeMisses    prometheus.Counter

	// Upstream fetches
	fetches       *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	fetchDuration prometheus.Histogram

	// Category cache
	categoryCacheHits   prometheus.Counter
	categoryCacheMisses prometheus.Counter

	// Pipeline stages
	aggregations      prometheus.Counter
	aggregationErrors prometheus.Counter
	weekFallbacks     prometheus.Counter
	rankings          prometheus.Counter
	rankingDuration   prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "fantail",
		subsystem:        "stats",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.recordsDecoded = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "records_decoded_total",
		Help:      "Total number of entity records recovered from upstream payloads",
	})

	m.shapeMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "shape_misses_total",
		Help:      "Total number of payloads that yielded zero records (schema drift indicator)",
	})

	m.fetches = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_fetches_total",
			Help:      "Total number of upstream fetches by spec type",
		},
		[]string{"spec_type"},
	)

	m.fetchErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "upstream_fetch_errors_total",
			Help:      "Total number of failed upstream fetches by spec type",
		},
		[]string{"spec_type"},
	)

	m.fetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "upstream_fetch_duration_milliseconds",
		Help:      "Upstream fetch duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.categoryCacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "category_cache_hits_total",
		Help:      "Total number of category resolutions served from cache",
	})

	m.categoryCacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "category_cache_misses_total",
		Help:      "Total number of category resolutions that required a settings fetch",
	})

	m.aggregations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregations_total",
		Help:      "Total number of stat aggregation runs",
	})

	m.aggregationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregation_errors_total",
		Help:      "Total number of aggregation runs aborted by fetch failures",
	})

	m.weekFallbacks = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "week_fallbacks_total",
		Help:      "Total number of week scopes re-aggregated day by day",
	})

	m.rankings = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rankings_total",
		Help:      "Total number of power ranking computations",
	})

	m.rankingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_duration_milliseconds",
		Help:      "Power ranking computation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// RecordRecordsDecoded adds to the decoded record counter.
func RecordRecordsDecoded(n int) {
	globalManager.recordsDecoded.Add(float64(n))
}

// RecordShapeMiss increments the zero-record payload counter.
func RecordShapeMiss() {
	globalManager.shapeMisses.Inc()
}

// RecordFetch increments the fetch counter for a spec type.
func RecordFetch(specType string) {
	globalManager.fetches.WithLabelValues(specType).Inc()
}

// RecordFetchError increments the fetch error counter for a spec type.
func RecordFetchError(specType string) {
	globalManager.fetchErrors.WithLabelValues(specType).Inc()
}

// RecordFetchDuration records one fetch round trip in milliseconds.
func RecordFetchDuration(latencyMs float64) {
	globalManager.fetchDuration.Observe(latencyMs)
}

// RecordCategoryCacheHit increments the category cache hit counter.
func RecordCategoryCacheHit() {
	globalManager.categoryCacheHits.Inc()
}

// RecordCategoryCacheMiss increments the category cache miss counter.
func RecordCategoryCacheMiss() {
	globalManager.categoryCacheMisses.Inc()
}

// RecordAggregation increments the aggregation run counter.
func RecordAggregation() {
	globalManager.aggregations.Inc()
}

// RecordAggregationError increments the aborted aggregation counter.
func RecordAggregationError() {
	globalManager.aggregationErrors.Inc()
}

// RecordWeekFallback increments the day-by-day fallback counter.
func RecordWeekFallback() {
	globalManager.weekFallbacks.Inc()
}

// RecordRanking increments the ranking computation counter.
func RecordRanking() {
	globalManager.rankings.Inc()
}

// RecordRankingDuration records one ranking computation in milliseconds.
func RecordRankingDuration(latencyMs float64) {
	globalManager.rankingDuration.Observe(latencyMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
