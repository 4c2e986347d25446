package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Provider outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeThrottle = "throttled"
)

type Recorder interface {
	IncProviderRequest(endpoint, outcome string)
	IncSearchFired()
	IncSearchDiscarded()
	IncSelection()
	IncRequestsTotal(endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
}

// Metrics registers its collectors on a private registry so several
// instances can coexist in one process (tests, mostly).
type Metrics struct {
	registry         *prometheus.Registry
	providerRequests *prometheus.CounterVec
	searchFired      prometheus.Counter
	searchDiscarded  prometheus.Counter
	selections       prometheus.Counter
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		providerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_provider_requests_total",
			Help: "Calls to the weather provider by endpoint and outcome",
		}, []string{"endpoint", "outcome"}),
		searchFired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_search_fired_total",
			Help: "Debounced location searches that reached the weather client",
		}),
		searchDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_search_discarded_total",
			Help: "Location search results dropped because a newer search was issued",
		}),
		selections: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "weather_location_selections_total",
			Help: "Locations picked from the search box",
		}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "weather_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"endpoint", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "weather_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	m.registry.MustRegister(
		m.providerRequests,
		m.searchFired,
		m.searchDiscarded,
		m.selections,
		m.requestsTotal,
		m.requestDuration,
	)
	return m
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncProviderRequest(endpoint, outcome string) {
	m.providerRequests.WithLabelValues(endpoint, outcome).Inc()
}

func (m *Metrics) IncSearchFired() {
	m.searchFired.Inc()
}

func (m *Metrics) IncSearchDiscarded() {
	m.searchDiscarded.Inc()
}

func (m *Metrics) IncSelection() {
	m.selections.Inc()
}

func (m *Metrics) IncRequestsTotal(endpoint string, status int) {
	m.requestsTotal.WithLabelValues(endpoint, httpStatusBucket(status)).Inc()
}

func (m *Metrics) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
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

// Noop discards everything.
func Noop() Recorder { return noopMetrics{} }

type noopMetrics struct{}

func (noopMetrics) IncProviderRequest(_, _ string)                   {}
func (noopMetrics) IncSearchFired()                                  {}
func (noopMetrics) IncSearchDiscarded()                              {}
func (noopMetrics) IncSelection()                                    {}
func (noopMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
