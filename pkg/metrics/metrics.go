package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

var (
	FeedCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coastbus_feed_cache_hits_total",
		Help: "Feed cache lookups answered from a fresh entry.",
	}, []string{"feed"})

	FeedCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coastbus_feed_cache_misses_total",
		Help: "Feed cache lookups that required an upstream fetch.",
	}, []string{"feed"})

	FeedFetchErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coastbus_feed_fetch_errors_total",
		Help: "Upstream feed fetches that failed or decoded badly.",
	}, []string{"feed"})

	StoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coastbus_store_errors_total",
		Help: "Schedule store queries that failed.",
	})
)

// Serve exposes /metrics on its own listener, separate from the API server
func Serve(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server stopped")
		}
	}()
}
