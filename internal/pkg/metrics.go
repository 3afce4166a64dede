package pkg

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yatube",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "yatube",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	// FeedCacheLookups result = hit | miss | error
	FeedCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yatube",
		Name:      "feed_cache_lookups_total",
		Help:      "Global feed cache lookups.",
	}, []string{"result"})

	OutboxDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "yatube",
		Name:      "outbox_deliveries_total",
		Help:      "Outbox events delivered or failed.",
	}, []string{"event", "result"})
)
