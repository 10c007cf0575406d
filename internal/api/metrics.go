package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "registry_client_requests_total",
		Help: "Requests issued to the registry backend by method and status.",
	}, []string{"method", "status"})

	coalescedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "registry_client_coalesced_requests_total",
		Help: "GET calls answered from an identical in-flight request.",
	})

	requestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "registry_client_request_duration_seconds",
		Help:    "Round-trip latency of registry backend requests.",
		Buckets: prometheus.DefBuckets,
	})
)
