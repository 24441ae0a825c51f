package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PublishAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postloom_publish_attempts_total",
		Help: "Publish attempts handed to a platform adapter",
	}, []string{"platform"})
	PublishSuccesses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postloom_publish_successes_total",
		Help: "Publishes confirmed by the platform",
	}, []string{"platform"})
	PublishFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postloom_publish_failures_total",
		Help: "Publishes that reached terminal failed state",
	}, []string{"platform"})
	PublishRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postloom_publish_retries_total",
		Help: "Retryable publish failures re-enqueued with backoff",
	}, []string{"platform"})
	PublishDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "postloom_publish_duration_seconds",
		Help:    "Adapter publish call duration",
		Buckets: prometheus.DefBuckets,
	})
	DataSyncRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "postloom_data_sync_runs_total",
		Help: "Account data sync jobs processed",
	})
	DataSyncErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "postloom_data_sync_errors_total",
		Help: "Account data sync jobs that failed",
	})
)

func init() {
	prometheus.MustRegister(PublishAttempts, PublishSuccesses, PublishFailures, PublishRetries, PublishDuration, DataSyncRuns, DataSyncErrors)
}

// StartServer exposes /metrics and /health on addr. A blank addr disables it.
func StartServer(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

// ObservePublishDuration records one adapter call duration.
func ObservePublishDuration(start time.Time) {
	PublishDuration.Observe(time.Since(start).Seconds())
}
