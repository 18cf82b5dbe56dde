package prom

import "github.com/prometheus/client_golang/prometheus"

var geocodeCache = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "freedome_geocode_cache_total",
		Help: "Geocode cache lookups by result.",
	},
	[]string{"result"},
)

var geocodeRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "freedome_geocode_requests_total",
		Help: "Requests made to the maps provider, by operation and outcome.",
	},
	[]string{"op", "outcome"},
)

func init() {
	promRegister(geocodeCache)
	promRegister(geocodeRequests)
}

// GeocodeCacheHit counts a geocode answered from the cache.
func GeocodeCacheHit() { geocodeCache.WithLabelValues("hit").Inc() }

// GeocodeCacheMiss counts a geocode that had to go to the maps provider.
func GeocodeCacheMiss() { geocodeCache.WithLabelValues("miss").Inc() }

// MapsRequest counts a call to the maps provider.
func MapsRequest(op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	geocodeRequests.WithLabelValues(op, outcome).Inc()
}
