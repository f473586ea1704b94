package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	remoteRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonbook",
			Name:      "remote_requests_total",
			Help:      "Remote store calls by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	cacheReads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonbook",
			Name:      "cache_reads_total",
			Help:      "Local cache reads by result (hit, stale, miss).",
		},
		[]string{"result"},
	)

	backgroundRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonbook",
			Name:      "background_refreshes_total",
			Help:      "Stale-while-revalidate refreshes by outcome.",
		},
		[]string{"outcome"},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "salonbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(remoteRequests, cacheReads, backgroundRefreshes, httpRequests)
	})
}

// IncRemote increments the remote call counter for an action/outcome pair.
func IncRemote(action, outcome string) {
	remoteRequests.WithLabelValues(action, outcome).Inc()
}

// IncCacheRead increments the cache read counter for a result label.
func IncCacheRead(result string) {
	cacheReads.WithLabelValues(result).Inc()
}

// IncRefresh increments the background refresh counter for an outcome.
func IncRefresh(outcome string) {
	backgroundRefreshes.WithLabelValues(outcome).Inc()
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
