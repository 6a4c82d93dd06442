package web

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventdesk_http_requests_total",
		Help: "HTTP requests served, by method and status code.",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "eventdesk_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	importRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "eventdesk_import_rows_total",
		Help: "Import rows processed, by outcome.",
	}, []string{"outcome"})

	importBatchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "eventdesk_import_batches_total",
		Help: "Import batches processed.",
	})
)
