package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	IngestedUsers = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twitscan_ingested_users_total",
		Help: "Users written by the persistence gateway",
	})
	IngestedPosts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twitscan_ingested_posts_total",
		Help: "Posts written by the persistence gateway",
	})
	IngestDuplicates = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitscan_ingest_duplicates_total",
		Help: "Ingest calls that found the record already stored",
	}, []string{"kind"})
	IngestErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twitscan_ingest_errors_total",
		Help: "Total ingestion errors",
	})
	IngestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "twitscan_ingest_duration_seconds",
		Help:    "Ingestion duration seconds",
		Buckets: prometheus.DefBuckets,
	})
	ScoreCalls = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "twitscan_score_calls_total",
		Help: "Pairwise score computations",
	})
	ScoreDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "twitscan_score_duration_seconds",
		Help:    "Pairwise score duration seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})
	CacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitscan_score_cache_lookups_total",
		Help: "Profile cache lookups by result",
	}, []string{"result"})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitscan_api_retries_total",
		Help: "Total API retry attempts",
	}, []string{"endpoint"})
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitscan_command_runs_total",
		Help: "CLI command invocations",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twitscan_command_errors_total",
		Help: "CLI command failures",
	}, []string{"command"})
)

func init() {
	prometheus.MustRegister(IngestedUsers, IngestedPosts, IngestDuplicates, IngestErrors, IngestDuration,
		ScoreCalls, ScoreDuration, CacheLookups, APIRetries, CommandRuns, CommandErrors)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

// ObserveIngestDuration records a run duration
func ObserveIngestDuration(start time.Time) {
	IngestDuration.Observe(time.Since(start).Seconds())
}

func ObserveScoreDuration(start time.Time) {
	ScoreDuration.Observe(time.Since(start).Seconds())
}

func IncDuplicate(kind string) { IngestDuplicates.WithLabelValues(kind).Inc() }

func IncCacheHit()  { CacheLookups.WithLabelValues("hit").Inc() }
func IncCacheMiss() { CacheLookups.WithLabelValues("miss").Inc() }

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

func IncCommandRun(cmd string)   { CommandRuns.WithLabelValues(cmd).Inc() }
func IncCommandError(cmd string) { CommandErrors.WithLabelValues(cmd).Inc() }
