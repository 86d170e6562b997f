package metrics_test

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimestats/querygateway/internal/metrics"
)

func TestObserveQuery(t *testing.T) {
	m := metrics.New("test")

	m.ObserveQuery("shootings", 3*time.Millisecond, nil)
	m.ObserveQuery("shootings", 5*time.Millisecond, nil)
	m.ObserveQuery("shootings", time.Millisecond, errors.New("no such table: CaseInfo"))

	expected := `
# HELP test_queries_total Total storage queries by name and result
# TYPE test_queries_total counter
test_queries_total{query="shootings",result="error"} 1
test_queries_total{query="shootings",result="success"} 2
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_queries_total")
	assert.NoError(t, err)

	count, err := testutil.GatherAndCount(m.Registry(), "test_query_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestObserveRequest(t *testing.T) {
	m := metrics.New("test")

	m.ObserveRequest("/shootings", http.MethodGet, http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest("/shootings", http.MethodGet, http.StatusBadRequest, time.Millisecond)
	m.ObserveRequest("/shootings", http.MethodGet, http.StatusBadRequest, time.Millisecond)

	expected := `
# HELP test_http_requests_total Total HTTP requests by route, method and status code
# TYPE test_http_requests_total counter
test_http_requests_total{method="GET",route="/shootings",status="200"} 1
test_http_requests_total{method="GET",route="/shootings",status="400"} 2
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_http_requests_total")
	assert.NoError(t, err)
}

func TestObserveRequest_UnknownMethod(t *testing.T) {
	m := metrics.New("test")

	m.ObserveRequest("unmatched", "PROPFIND", http.StatusMethodNotAllowed, time.Millisecond)
	m.ObserveRequest("unmatched", "X-RANDOM-1", http.StatusMethodNotAllowed, time.Millisecond)
	m.ObserveRequest("unmatched", http.MethodPost, http.StatusMethodNotAllowed, time.Millisecond)

	expected := `
# HELP test_http_requests_total Total HTTP requests by route, method and status code
# TYPE test_http_requests_total counter
test_http_requests_total{method="POST",route="unmatched",status="405"} 1
test_http_requests_total{method="other",route="unmatched",status="405"} 2
`
	err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "test_http_requests_total")
	assert.NoError(t, err)
}

func TestNilMetrics(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.ObserveQuery("shootings", time.Millisecond, nil)
		m.ObserveRequest("/shootings", http.MethodGet, http.StatusOK, time.Millisecond)
	})
}

func TestHandler(t *testing.T) {
	m := metrics.New("test")
	m.ObserveQuery("total_incidents", time.Millisecond, nil)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)

	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `test_queries_total{query="total_incidents",result="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
