// Package metrics provides Prometheus metrics for the oracle server.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UpstreamRequestsTotal is a counter of price feed requests.
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of price feed requests",
		},
		[]string{"source", "status"},
	)

	// UpstreamRequestDuration is a histogram of price feed latencies.
	UpstreamRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Price feed request latencies",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"source"},
	)

	// PriceStalenessSeconds is a gauge of the age of the last fetched price.
	PriceStalenessSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "price_staleness_seconds",
			Help: "Age of the last fetched price at fetch time",
		},
		[]string{"feed"},
	)

	// LastPrice is a gauge of the last fetched price.
	LastPrice = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "last_price",
			Help: "Last price returned by the feed",
		},
		[]string{"feed"},
	)

	// SignedContextsTotal is a counter of signed context attempts.
	SignedContextsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signed_contexts_total",
			Help: "Total number of signed context requests",
		},
		[]string{"direction", "status"},
	)

	// HTTPRequestsTotal is a counter of total HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"endpoint", "status"},
	)

	// HTTPRequestDuration is a histogram of HTTP request latencies.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latencies",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"endpoint"},
	)

	// StreamClients is a gauge of connected websocket clients.
	StreamClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "stream_clients",
			Help: "Number of connected websocket clients",
		},
	)
)

var registerOnce sync.Once

// Init registers all metrics with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			UpstreamRequestsTotal,
			UpstreamRequestDuration,
			PriceStalenessSeconds,
			LastPrice,
			SignedContextsTotal,
			HTTPRequestsTotal,
			HTTPRequestDuration,
			StreamClients,
		)
	})
}

// NewServer returns an HTTP server exposing metrics at path.
func NewServer(addr, path string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle(path, promhttp.Handler())
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// ServeHTTP serves Prometheus metrics on the specified address.
func ServeHTTP(addr, path string) error {
	return NewServer(addr, path).ListenAndServe()
}

// RecordUpstreamRequest records a price feed request.
func RecordUpstreamRequest(source, status string, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(source, status).Inc()
	UpstreamRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordPrice records the last fetched price and its age.
func RecordPrice(feed string, price float64, age time.Duration) {
	LastPrice.WithLabelValues(feed).Set(price)
	PriceStalenessSeconds.WithLabelValues(feed).Set(age.Seconds())
}

// RecordSignedContext records a signed context attempt.
func RecordSignedContext(direction, status string) {
	SignedContextsTotal.WithLabelValues(direction, status).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, status string, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(endpoint, status).Inc()
	HTTPRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordStreamClients records the number of connected websocket clients.
func RecordStreamClients(n int) {
	StreamClients.Set(float64(n))
}
