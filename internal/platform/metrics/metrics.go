package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus counters and gauges for the remix loop and its
// status server.
type Metrics struct {
	registry           *prometheus.Registry
	requestsTotal      prometheus.Counter
	errorsTotal        prometheus.Counter
	ticksTotal         prometheus.Counter
	changesTotal       prometheus.Counter
	emptyWindowsTotal  prometheus.Counter
	listingErrorsTotal prometheus.Counter
	toolFailuresTotal  *prometheus.CounterVec
	chunks             prometheus.Gauge
	lastRenderTime     prometheus.Gauge
}

// New creates and registers Prometheus metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "remix_requests_total",
		Help: "Total number of HTTP requests received",
	})
	errorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "remix_errors_total",
		Help: "Total number of HTTP responses with error status (4xx or 5xx)",
	})
	ticksTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "remix_ticks_total",
		Help: "Total number of reconciliation ticks run",
	})
	changesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "remix_chunk_changes_total",
		Help: "Total number of ticks that found a changed chunk set",
	})
	emptyWindowsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "remix_empty_windows_total",
		Help: "Total number of ticks skipped because no chunks exist for the window",
	})
	listingErrorsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "remix_listing_errors_total",
		Help: "Total number of failed archive listings",
	})
	toolFailuresTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "remix_tool_failures_total",
		Help: "Total number of failed packaging tool invocations",
	}, []string{"step"})
	chunks := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "remix_chunks",
		Help: "Number of chunks in the current window",
	})
	lastRenderTime := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "remix_last_render_timestamp_seconds",
		Help: "Unix time of the last successful rendering pass",
	})

	registry.MustRegister(
		requestsTotal,
		errorsTotal,
		ticksTotal,
		changesTotal,
		emptyWindowsTotal,
		listingErrorsTotal,
		toolFailuresTotal,
		chunks,
		lastRenderTime,
	)

	return &Metrics{
		registry:           registry,
		requestsTotal:      requestsTotal,
		errorsTotal:        errorsTotal,
		ticksTotal:         ticksTotal,
		changesTotal:       changesTotal,
		emptyWindowsTotal:  emptyWindowsTotal,
		listingErrorsTotal: listingErrorsTotal,
		toolFailuresTotal:  toolFailuresTotal,
		chunks:             chunks,
		lastRenderTime:     lastRenderTime,
	}
}

// IncRequests increments the total request counter.
func (m *Metrics) IncRequests() {
	m.requestsTotal.Inc()
}

// IncErrors increments the errors counter.
func (m *Metrics) IncErrors() {
	m.errorsTotal.Inc()
}

// IncTicks increments the tick counter.
func (m *Metrics) IncTicks() {
	m.ticksTotal.Inc()
}

// IncChanges increments the changed chunk set counter.
func (m *Metrics) IncChanges() {
	m.changesTotal.Inc()
}

// IncEmptyWindows increments the empty window counter.
func (m *Metrics) IncEmptyWindows() {
	m.emptyWindowsTotal.Inc()
}

// IncListingErrors increments the listing error counter.
func (m *Metrics) IncListingErrors() {
	m.listingErrorsTotal.Inc()
}

// IncToolFailures increments the failure counter for a packaging step
// ("remix" or "isml").
func (m *Metrics) IncToolFailures(step string) {
	m.toolFailuresTotal.WithLabelValues(step).Inc()
}

// SetChunks sets the current chunk gauge.
func (m *Metrics) SetChunks(n int) {
	m.chunks.Set(float64(n))
}

// SetLastRender records the unix time of a successful rendering pass.
func (m *Metrics) SetLastRender(unixSeconds float64) {
	m.lastRenderTime.Set(unixSeconds)
}

// Handler returns an http.Handler that serves Prometheus metrics.
// updateGauges is called before each scrape to refresh gauge values.
func (m *Metrics) Handler(updateGauges func()) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if updateGauges != nil {
			updateGauges()
		}
		promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}).ServeHTTP(w, r)
	})
}
