// Package metrics holds the Prometheus collectors of the service
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// upstreamRequests counts upstream HTTP requests by source and outcome.
	upstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rwmarket_upstream_requests_total",
		Help: "Total number of upstream API requests by source and status",
	}, []string{"source", "status"})

	// upstreamDuration tracks upstream request latency.
	upstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rwmarket_upstream_request_duration_seconds",
		Help:    "Upstream API request duration by source",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"source"})

	// upstreamRetries counts retried upstream attempts.
	upstreamRetries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rwmarket_upstream_retries_total",
		Help: "Total number of retried upstream requests by source",
	}, []string{"source"})

	// pagesFetched counts market pages fetched by the aggregator.
	pagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rwmarket_market_pages_fetched_total",
		Help: "Total number of item market pages fetched",
	})

	// aggregationErrors counts aborted pagination runs.
	aggregationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rwmarket_market_aggregation_errors_total",
		Help: "Total number of aborted item market aggregations",
	})

	// classifiedItems counts classified listings by kind and ranked war flag.
	classifiedItems = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rwmarket_classified_items_total",
		Help: "Total number of classified listings by kind and ranked war membership",
	}, []string{"kind", "ranked_war"})

	// priceLookups counts cache item price lookups by outcome.
	priceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rwmarket_price_lookups_total",
		Help: "Total number of cache item price lookups by outcome",
	}, []string{"outcome"}) // outcome: ok, empty, error

	// priceCacheHits tracks the price lookup cache.
	priceCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rwmarket_price_cache_requests_total",
		Help: "Price lookup cache requests by backend and result",
	}, []string{"backend", "result"}) // result: hit, miss

	// quoteTotal tracks the last computed cache quote total per side.
	quoteTotal = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rwmarket_cache_quote_total",
		Help: "Last computed cache buy quote total by war side",
	}, []string{"side"})

	exportsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rwmarket_exports_swept_total",
		Help: "Total number of saved exports deleted by retention",
	})
)

// Recorder provides methods to record service metrics
type Recorder struct{}

// NewRecorder creates a new metrics recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// RecordUpstream records one upstream request
func (m *Recorder) RecordUpstream(source, status string, d time.Duration) {
	upstreamRequests.WithLabelValues(source, status).Inc()
	upstreamDuration.WithLabelValues(source).Observe(d.Seconds())
}

// RecordRetry records a retried upstream attempt
func (m *Recorder) RecordRetry(source string) {
	upstreamRetries.WithLabelValues(source).Inc()
}

// RecordPage records a fetched market page
func (m *Recorder) RecordPage() {
	pagesFetched.Inc()
}

// RecordAggregationError records an aborted pagination run
func (m *Recorder) RecordAggregationError() {
	aggregationErrors.Inc()
}

// RecordClassified records one classified listing
func (m *Recorder) RecordClassified(kind string, rankedWar bool) {
	rw := "false"
	if rankedWar {
		rw = "true"
	}
	classifiedItems.WithLabelValues(kind, rw).Inc()
}

// RecordLookup records a price lookup outcome
func (m *Recorder) RecordLookup(outcome string) {
	priceLookups.WithLabelValues(outcome).Inc()
}

// RecordCacheResult records a price cache hit or miss
func (m *Recorder) RecordCacheResult(backend string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	priceCacheHits.WithLabelValues(backend, result).Inc()
}

// RecordQuoteTotal records the latest quote total for a war side
func (m *Recorder) RecordQuoteTotal(side string, total int64) {
	quoteTotal.WithLabelValues(side).Set(float64(total))
}

// RecordExportsSwept records exports deleted by the retention sweeper
func (m *Recorder) RecordExportsSwept(n int) {
	exportsSwept.Add(float64(n))
}
