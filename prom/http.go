// Package prom contains prometheus metrics exported by freedome.
package prom

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// All API handlers share one set of metric families, told apart by the
// "handler" label.
var (
	inFlight = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "freedome_requests_in_flight",
			Help: "Number of requests currently being served by the handler.",
		},
		[]string{"handler"},
	)
	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "freedome_requests_total",
			Help: "Total number of requests for the handler.",
		},
		[]string{"handler", "method", "code"},
	)
	duration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "freedome_response_duration_seconds",
			Help:    "A histogram of request latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)
	writeHeader = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "freedome_write_header_duration_seconds",
			Help:    "A histogram of time to first write latencies.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler"},
	)
	// Most replies are small JSON documents, logos go the other way.
	responseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "freedome_response_size_bytes",
			Help:    "A histogram of response sizes.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 7),
		},
		[]string{"handler"},
	)
)

func init() {
	promRegister(inFlight)
	promRegister(requests)
	promRegister(duration)
	promRegister(writeHeader)
	promRegister(responseSize)
}

// Handler returns a handler that exports metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// InstrumentHandler decorates an HTTP handler with prometheus metrics jazz.
// The same name can be instrumented any number of times.
func InstrumentHandler(name string, handler http.Handler) http.Handler {
	labels := prometheus.Labels{"handler": name}

	handler = promhttp.InstrumentHandlerInFlight(inFlight.With(labels), handler)
	handler = promhttp.InstrumentHandlerCounter(requests.MustCurryWith(labels), handler)
	handler = promhttp.InstrumentHandlerDuration(duration.MustCurryWith(labels), handler)
	handler = promhttp.InstrumentHandlerTimeToWriteHeader(writeHeader.MustCurryWith(labels), handler)
	handler = promhttp.InstrumentHandlerResponseSize(responseSize.MustCurryWith(labels), handler)

	return handler
}

// allow prometheus double-registrations so that tests can build the
// server more than once.
func promRegister(c prometheus.Collector) {
	err := prometheus.Register(c)
	if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
		return
	}
	if err != nil {
		panic(err)
	}
}
