package prometheus

import (
	"strconv"
	"time"
)

// AppMetrics holds every metric ReviewPulse exports.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Analytics engine
	QueriesTotal     CounterVec
	QueryDuration    HistogramVec
	GroupsPerQuery   HistogramVec
	DetailRows       HistogramVec
	ValidationErrors CounterVec

	// Result cache
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	CacheErrorsTotal CounterVec

	// Dataset
	DatasetRecords      GaugeVec
	DatasetLoadDuration HistogramVec

	// System health
	ErrorsTotal CounterVec
}

// Default buckets.
var (
	DefaultHTTPDurationBuckets  = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultQueryDurationBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}
	DefaultLoadDurationBuckets  = []float64{.1, .5, 1, 2.5, 5, 10, 30, 60}
	DefaultCountBuckets         = []float64{0, 1, 2, 4, 8, 16, 32}
	DefaultRowBuckets           = []float64{0, 10, 50, 100, 500, 1000, 5000, 10000}
)

// NewAppMetrics registers all metrics on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "In-flight HTTP requests", "method")

	m.QueriesTotal = collector.RegisterCounter("analytics_queries_total", "Dashboard queries by outcome", "status", "source")
	m.QueryDuration = collector.RegisterHistogram("analytics_query_duration_seconds", "Dashboard query latency", DefaultQueryDurationBuckets, "source")
	m.GroupsPerQuery = collector.RegisterHistogram("analytics_groups_per_query", "Resolved reporting groups per query", DefaultCountBuckets)
	m.DetailRows = collector.RegisterHistogram("analytics_detail_rows", "Rows in the detail review listing", DefaultRowBuckets)
	m.ValidationErrors = collector.RegisterCounter("analytics_validation_errors_total", "Rejected queries by error code", "code")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Result cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Result cache misses", "cache")
	m.CacheErrorsTotal = collector.RegisterCounter("cache_errors_total", "Result cache failures", "cache", "operation")

	m.DatasetRecords = collector.RegisterGauge("dataset_records", "Records in the loaded dataset", "source")
	m.DatasetLoadDuration = collector.RegisterHistogram("dataset_load_duration_seconds", "Dataset load duration", DefaultLoadDurationBuckets, "source")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_code")

	return m
}

// NewNoopAppMetrics returns AppMetrics backed by the no-op collector.
func NewNoopAppMetrics() *AppMetrics {
	return NewAppMetrics(NewNoopCollector())
}

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(m *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordQuery records one analytics query.  status is "ok", "invalid", "error"
// or "abandoned"; source is "engine" or "cache".
func RecordQuery(m *AppMetrics, status, source string, duration time.Duration) {
	m.QueriesTotal.WithLabelValues(status, source).Inc()
	m.QueryDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordCacheAccess records a cache hit or miss.
func RecordCacheAccess(m *AppMetrics, cache string, hit bool) {
	if hit {
		m.CacheHitsTotal.WithLabelValues(cache).Inc()
		return
	}
	m.CacheMissesTotal.WithLabelValues(cache).Inc()
}

// RecordDatasetLoad records the outcome of loading the dataset.
func RecordDatasetLoad(m *AppMetrics, source string, records int, duration time.Duration) {
	m.DatasetRecords.WithLabelValues(source).Set(float64(records))
	m.DatasetLoadDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordError counts an error by component and code.
func RecordError(m *AppMetrics, component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}

//Personal.AI order the ending
