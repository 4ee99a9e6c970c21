package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "reviews"

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests."},
		[]string{"route", "method", "status"},
	)
	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)
	RecordsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "records_total", Help: "Raw records by cleaning outcome."},
		[]string{"outcome"}, // outcome: kept|excluded|invalid
	)
	LoadDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "load_duration_seconds",
			Help:    "Dataset load duration seconds by stage.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"}, // stage: parse|clean|aggregate|total
	)
	CacheEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Snapshot cache hits/misses/writes."},
		[]string{"event"},
	)
)

func InitRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(HTTPRequests, HTTPLatency, RecordsProcessed, LoadDuration, CacheEvents)
	return reg
}

func MetricsHandler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

func ObserveHTTP(route, method string, status int, dur time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(dur.Seconds())
}

func ObserveRecords(kept, excluded, invalid int) {
	RecordsProcessed.WithLabelValues("kept").Add(float64(kept))
	RecordsProcessed.WithLabelValues("excluded").Add(float64(excluded))
	RecordsProcessed.WithLabelValues("invalid").Add(float64(invalid))
}

func ObserveStage(stage string, dur time.Duration) {
	LoadDuration.WithLabelValues(stage).Observe(dur.Seconds())
}

func ObserveCache(event string) { // event: hit|miss|write|error
	CacheEvents.WithLabelValues(event).Inc()
}
