package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/livescore/internal/platform/resilience"
)

const metricsNamespace = "livescore"

// Metrics owns a private Prometheus registry so tests can build as many
// instances as they need.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	cacheLookups     *prometheus.CounterVec
	leagueFailures   *prometheus.CounterVec
	circuitState     *prometheus.GaugeVec
	streamClients    prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_requests_total",
			Help:      "Upstream provider calls, by outcome.",
		}, []string{"provider", "endpoint", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "Upstream provider latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 4, 8},
		}, []string{"provider", "endpoint"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "live_cache_lookups_total",
			Help:      "Live snapshot cache lookups, by result.",
		}, []string{"sport", "result"}),
		leagueFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "live_league_failures_total",
			Help:      "League sub-requests that failed during a fan-out.",
		}, []string{"sport", "league_id"}),
		circuitState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "circuit_breaker_state",
			Help:      "0 closed, 1 half open, 2 open.",
		}, []string{"provider"}),
		streamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "live_stream_clients",
			Help:      "Connected live websocket clients.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.upstreamRequests,
		m.upstreamDuration,
		m.cacheLookups,
		m.leagueFailures,
		m.circuitState,
		m.streamClients,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) ObserveHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveUpstreamRequest(provider, endpoint, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.upstreamRequests.WithLabelValues(provider, endpoint, outcome).Inc()
	if elapsed > 0 {
		m.upstreamDuration.WithLabelValues(provider, endpoint).Observe(elapsed.Seconds())
	}
}

func (m *Metrics) ObserveCacheLookup(sport string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(sport, result).Inc()
}

func (m *Metrics) ObserveLeagueFailure(sport string, leagueID int64) {
	if m == nil {
		return
	}
	m.leagueFailures.WithLabelValues(sport, strconv.FormatInt(leagueID, 10)).Inc()
}

func (m *Metrics) SetCircuitState(provider string, state resilience.CircuitState) {
	if m == nil {
		return
	}
	value := 0.0
	switch state {
	case resilience.CircuitStateHalfOpen:
		value = 1
	case resilience.CircuitStateOpen:
		value = 2
	}
	m.circuitState.WithLabelValues(provider).Set(value)
}

// TrackCircuitBreaker mirrors every state change of breaker into the gauge.
func (m *Metrics) TrackCircuitBreaker(provider string, breaker *resilience.CircuitBreaker) {
	if m == nil || breaker == nil {
		return
	}
	m.SetCircuitState(provider, breaker.State())
	breaker.OnStateChange(func(_, to resilience.CircuitState) {
		m.SetCircuitState(provider, to)
	})
}

func (m *Metrics) StreamClientConnected() {
	if m == nil {
		return
	}
	m.streamClients.Inc()
}

func (m *Metrics) StreamClientDisconnected() {
	if m == nil {
		return
	}
	m.streamClients.Dec()
}
