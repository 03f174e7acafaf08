package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestRecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordHTTPRequest("GET", "/api/v1/search", 200, 25*time.Millisecond)

	body := scrape(t, c)
	assert.Contains(t, body, `molsearch_http_requests_total{method="GET",path="/api/v1/search",status="200"} 1`)
	assert.Contains(t, body, `molsearch_http_request_duration_seconds_count{method="GET",path="/api/v1/search"} 1`)
}

func TestRecordSearch(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordSearch("name", 7, 120*time.Millisecond, nil)
	m.RecordSearch("name", 0, 10*time.Millisecond, assert.AnError)

	body := scrape(t, c)
	assert.Contains(t, body, `molsearch_search_requests_total{search_type="name",status="ok"} 1`)
	assert.Contains(t, body, `molsearch_search_requests_total{search_type="name",status="error"} 1`)
	// Result counts are only observed for successful searches.
	assert.Contains(t, body, `molsearch_search_result_count_count{search_type="name"} 1`)
}

func TestRecordSourceCall(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordSourceCall("pubchem", 300*time.Millisecond, nil)
	m.RecordSourceCall("chembl", time.Second, assert.AnError)

	body := scrape(t, c)
	assert.Contains(t, body, `molsearch_source_requests_total{source="pubchem",status="ok"} 1`)
	assert.Contains(t, body, `molsearch_source_requests_total{source="chembl",status="error"} 1`)
}

func TestRecordExportAndValidation(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordExport("sdf", 50*time.Millisecond, nil)
	m.RecordValidation(true)
	m.RecordValidation(false)

	body := scrape(t, c)
	assert.Contains(t, body, `molsearch_export_requests_total{format="sdf",status="ok"} 1`)
	assert.Contains(t, body, `molsearch_validations_total{result="valid"} 1`)
	assert.Contains(t, body, `molsearch_validations_total{result="invalid"} 1`)
}

func TestRecordCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordCacheAccess("search", true)
	m.RecordCacheAccess("search", true)
	m.RecordCacheAccess("search", false)

	body := scrape(t, c)
	assert.Contains(t, body, `molsearch_cache_hits_total{cache="search"} 2`)
	assert.Contains(t, body, `molsearch_cache_misses_total{cache="search"} 1`)
}

func TestRecordHistoryEvent(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordHistoryEvent(nil)
	m.RecordHistoryEvent(assert.AnError)

	body := scrape(t, c)
	assert.Contains(t, body, `molsearch_history_events_total{status="ok"} 1`)
	assert.Contains(t, body, `molsearch_history_events_total{status="error"} 1`)
}

func TestSetComponentHealth(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.SetComponentHealth("postgres", true)
	m.SetComponentHealth("redis", false)

	body := scrape(t, c)
	assert.Contains(t, body, `molsearch_health_check_status{component="postgres"} 1`)
	assert.Contains(t, body, `molsearch_health_check_status{component="redis"} 0`)
}

func TestRecordError(t *testing.T) {
	m, c := newTestAppMetrics(t)

	m.RecordError("search", "SRC_001")

	body := scrape(t, c)
	assert.Contains(t, body, `molsearch_errors_total{code="SRC_001",component="search"} 1`)
}
