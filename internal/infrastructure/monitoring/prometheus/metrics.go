package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric family the service records.
type AppMetrics struct {
	// HTTP surface
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Search pipeline
	SearchRequestsTotal CounterVec
	SearchDuration      HistogramVec
	SearchResultCount   HistogramVec
	CacheHitsTotal      CounterVec
	CacheMissesTotal    CounterVec

	// External sources
	SourceRequestsTotal CounterVec
	SourceDuration      HistogramVec

	// Structure engine
	ExportRequestsTotal CounterVec
	ExportDuration      HistogramVec
	ValidationsTotal    CounterVec

	// Storage and history
	DBQueryDuration    HistogramVec
	HistoryEventsTotal CounterVec

	// Health
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	httpDurationBuckets   = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	sourceDurationBuckets = []float64{.05, .1, .25, .5, 1, 2, 5, 10, 15}
	exportDurationBuckets = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5}
	dbDurationBuckets     = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1}
	resultCountBuckets    = []float64{0, 1, 5, 10, 20, 50, 100}
)

// NewAppMetrics registers every metric family against the collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", httpDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.SearchRequestsTotal = collector.RegisterCounter("search_requests_total", "Search requests", "search_type", "status")
	m.SearchDuration = collector.RegisterHistogram("search_duration_seconds", "End-to-end search duration", httpDurationBuckets, "search_type")
	m.SearchResultCount = collector.RegisterHistogram("search_result_count", "Results returned per search", resultCountBuckets, "search_type")
	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")

	m.SourceRequestsTotal = collector.RegisterCounter("source_requests_total", "External source requests", "source", "status")
	m.SourceDuration = collector.RegisterHistogram("source_request_duration_seconds", "External source request duration", sourceDurationBuckets, "source")

	m.ExportRequestsTotal = collector.RegisterCounter("export_requests_total", "Structure exports", "format", "status")
	m.ExportDuration = collector.RegisterHistogram("export_duration_seconds", "Structure export duration", exportDurationBuckets, "format")
	m.ValidationsTotal = collector.RegisterCounter("validations_total", "Structure validations", "result")

	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", dbDurationBuckets, "operation")
	m.HistoryEventsTotal = collector.RegisterCounter("history_events_total", "Search history writes", "status")

	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Component health (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component", "component", "code")

	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// Recording helpers
// ─────────────────────────────────────────────────────────────────────────────

func (m *AppMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *AppMetrics) RecordSearch(searchType string, resultCount int, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SearchRequestsTotal.WithLabelValues(searchType, status).Inc()
	m.SearchDuration.WithLabelValues(searchType).Observe(duration.Seconds())
	if err == nil {
		m.SearchResultCount.WithLabelValues(searchType).Observe(float64(resultCount))
	}
}

func (m *AppMetrics) RecordSourceCall(source string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SourceRequestsTotal.WithLabelValues(source, status).Inc()
	m.SourceDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (m *AppMetrics) RecordExport(format string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.ExportRequestsTotal.WithLabelValues(format, status).Inc()
	m.ExportDuration.WithLabelValues(format).Observe(duration.Seconds())
}

func (m *AppMetrics) RecordValidation(valid bool) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	m.ValidationsTotal.WithLabelValues(result).Inc()
}

func (m *AppMetrics) RecordCacheAccess(cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		m.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func (m *AppMetrics) RecordHistoryEvent(err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.HistoryEventsTotal.WithLabelValues(status).Inc()
}

func (m *AppMetrics) SetComponentHealth(component string, up bool) {
	val := 0.0
	if up {
		val = 1.0
	}
	m.HealthCheckStatus.WithLabelValues(component).Set(val)
}

func (m *AppMetrics) RecordError(component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
