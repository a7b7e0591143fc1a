package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/riskibarqy/livescore/internal/platform/resilience"
)

func TestMetrics_CacheAndLeagueCounters(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveCacheLookup("soccer", false)
	m.ObserveCacheLookup("soccer", true)
	m.ObserveCacheLookup("soccer", true)
	m.ObserveLeagueFailure("nba", 422)

	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("soccer", "hit")); got != 2 {
		t.Fatalf("expected 2 hits, got %v", got)
	}
	if got := testutil.ToFloat64(m.cacheLookups.WithLabelValues("soccer", "miss")); got != 1 {
		t.Fatalf("expected 1 miss, got %v", got)
	}
	if got := testutil.ToFloat64(m.leagueFailures.WithLabelValues("nba", "422")); got != 1 {
		t.Fatalf("expected league failure counter, got %v", got)
	}
}

func TestMetrics_TrackCircuitBreaker(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	breaker := resilience.NewCircuitBreaker(1, time.Minute, 1)
	m.TrackCircuitBreaker("api-football", breaker)

	if got := testutil.ToFloat64(m.circuitState.WithLabelValues("api-football")); got != 0 {
		t.Fatalf("expected closed gauge, got %v", got)
	}
	breaker.RecordFailure()
	if got := testutil.ToFloat64(m.circuitState.WithLabelValues("api-football")); got != 2 {
		t.Fatalf("expected open gauge, got %v", got)
	}
}

func TestMetrics_HandlerExposesSeries(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.ObserveUpstreamRequest("api-basketball", "/games", "ok", 120*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "GET /v1/live/{sport}", http.StatusOK, 5*time.Millisecond)
	m.StreamClientConnected()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		`livescore_upstream_requests_total{endpoint="/games",outcome="ok",provider="api-basketball"} 1`,
		`livescore_http_requests_total{method="GET",route="GET /v1/live/{sport}",status="200"} 1`,
		`livescore_live_stream_clients 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveCacheLookup("soccer", true)
	m.ObserveUpstreamRequest("p", "/e", "ok", time.Second)
	m.SetCircuitState("p", resilience.CircuitStateOpen)
	m.StreamClientDisconnected()
}
