// Package metrics provides Prometheus metrics for the aeroscore judging service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Ranking engine
	rankingsComputed     *prometheus.CounterVec
	rankingBuildLatency  prometheus.Histogram
	rankedEntries        *prometheus.GaugeVec
	panelFallbacks       *prometheus.CounterVec
	duplicateFeedRows    prometheus.Counter
	unvalidatedSkipped   prometheus.Counter
	competitorsValidated prometheus.Counter

	// Judge submissions
	scoresSubmitted *prometheus.CounterVec
	scoresDeleted   *prometheus.CounterVec

	// Live display state
	activeVote prometheus.Gauge
	activeShow prometheus.Gauge
	logEntries prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

	// Store
	storeQueryLatency *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "aeroscore",
		subsystem:        "judging",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	constLabels := prometheus.Labels(m.customLabels)

	m.rankingsComputed = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("rankings_computed_total"),
		Help:        "Total number of ranking builds by variant",
		ConstLabels: constLabels,
	}, []string{"variant"})

	m.rankingBuildLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ranking_build_latency_milliseconds"),
		Help:        "Time spent loading the snapshot and ranking every category",
		Buckets:     m.histogramBuckets,
		ConstLabels: constLabels,
	})

	m.rankedEntries = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("ranked_entries"),
		Help:        "Number of ranked entries per category in the latest build",
		ConstLabels: constLabels,
	}, []string{"category"})

	m.panelFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("panel_tolerance_fallbacks_total"),
		Help:        "Panels whose two central judges disagreed beyond tolerance, by score type",
		ConstLabels: constLabels,
	}, []string{"score_type"})

	m.duplicateFeedRows = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("duplicate_feed_rows_total"),
		Help:        "Observation rows dropped as duplicates of an earlier (judge, score type) row",
		ConstLabels: constLabels,
	})

	m.unvalidatedSkipped = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("unvalidated_competitors_skipped_total"),
		Help:        "Competitors left out of rankings because they have no validated total",
		ConstLabels: constLabels,
	})

	m.competitorsValidated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("competitors_validated_total"),
		Help:        "Total number of head-judge validations",
		ConstLabels: constLabels,
	})

	m.scoresSubmitted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scores_submitted_total"),
		Help:        "Judge score submissions by score type",
		ConstLabels: constLabels,
	}, []string{"score_type"})

	m.scoresDeleted = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("scores_deleted_total"),
		Help:        "Judge score deletions by score type",
		ConstLabels: constLabels,
	}, []string{"score_type"})

	m.activeVote = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("vote_active"),
		Help:        "1 while a competitor is open for judging",
		ConstLabels: constLabels,
	})

	m.activeShow = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("show_active"),
		Help:        "1 while a competitor is on the display screen",
		ConstLabels: constLabels,
	})

	m.logEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name("activity_log_entries"),
		Help:        "Entries currently held by the activity log ring",
		ConstLabels: constLabels,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_requests_total"),
			Help:        "Total number of HTTP requests by endpoint and method",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("http_request_duration_milliseconds"),
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("errors_by_endpoint_total"),
			Help:        "HTTP errors by endpoint, method and error type",
			ConstLabels: constLabels,
		},
		[]string{"endpoint", "method", "error_type"},
	)

	m.storeQueryLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("store_query_latency_milliseconds"),
			Help:        "Store operation latency in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: constLabels,
		},
		[]string{"operation"},
	)

	m.storeErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        m.name("store_errors_total"),
			Help:        "Store operation failures",
			ConstLabels: constLabels,
		},
		[]string{"operation"},
	)
}

// RecordRankingsComputed increments the ranking build counter for variant
// ("standard" or "extended").
func RecordRankingsComputed(variant string) {
	if !globalManager.enabled {
		return
	}
	globalManager.rankingsComputed.WithLabelValues(variant).Inc()
}

// RecordRankingBuildLatency records how long a ranking build took.
func RecordRankingBuildLatency(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.rankingBuildLatency.Observe(latencyMs)
}

// UpdateRankedEntries sets the entry count for a category.
func UpdateRankedEntries(category string, count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.rankedEntries.WithLabelValues(category).Set(float64(count))
}

// RecordPanelFallbacks adds n tolerance fallbacks for scoreType.
func RecordPanelFallbacks(scoreType string, n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.panelFallbacks.WithLabelValues(scoreType).Add(float64(n))
}

// RecordDuplicateFeedRows adds n dropped duplicate rows.
func RecordDuplicateFeedRows(n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.duplicateFeedRows.Add(float64(n))
}

// RecordUnvalidatedSkipped adds n competitors skipped for lack of a validated total.
func RecordUnvalidatedSkipped(n int) {
	if !globalManager.enabled || n <= 0 {
		return
	}
	globalManager.unvalidatedSkipped.Add(float64(n))
}

// RecordCompetitorValidated increments the validation counter.
func RecordCompetitorValidated() {
	if !globalManager.enabled {
		return
	}
	globalManager.competitorsValidated.Inc()
}

// RecordScoreSubmitted increments submissions for scoreType.
func RecordScoreSubmitted(scoreType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.scoresSubmitted.WithLabelValues(scoreType).Inc()
}

// RecordScoreDeleted increments deletions for scoreType.
func RecordScoreDeleted(scoreType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.scoresDeleted.WithLabelValues(scoreType).Inc()
}

// UpdateVoteActive flags whether a vote is open.
func UpdateVoteActive(active bool) {
	if !globalManager.enabled {
		return
	}
	globalManager.activeVote.Set(boolToFloat(active))
}

// UpdateShowActive flags whether a competitor is on screen.
func UpdateShowActive(active bool) {
	if !globalManager.enabled {
		return
	}
	globalManager.activeShow.Set(boolToFloat(active))
}

// UpdateActivityLogEntries sets the activity log size.
func UpdateActivityLogEntries(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.logEntries.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an HTTP error for endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordStoreQueryLatency records a store operation latency.
func RecordStoreQueryLatency(operation string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.storeQueryLatency.WithLabelValues(operation).Observe(latencyMs)
}

// RecordStoreError increments failures for a store operation.
func RecordStoreError(operation string) {
	if !globalManager.enabled {
		return
	}
	globalManager.storeErrors.WithLabelValues(operation).Inc()
}

// Configure replaces the global manager with one built from opts on a fresh
// registry, which GetRegistry then returns. Call it at startup, before any
// recorder runs or the registry is served.
func Configure(opts ...Option) {
	registry := prometheus.NewRegistry()
	customRegistry = registry
	globalManager = NewManager(append(append([]Option{}, opts...), WithPrometheusRegistry(registry))...)
}

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
