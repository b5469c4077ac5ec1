package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func TestMetricsExposure(t *testing.T) {
	IngestedUsers.Inc()
	IngestedPosts.Inc()
	IngestErrors.Inc()
	IncDuplicate("user")
	IncAPIRetry("/test")
	IncCacheHit()
	IncCacheMiss()
	IncCommandRun("info")
	IncCommandError("info")
	ScoreCalls.Inc()
	ObserveIngestDuration(time.Now().Add(-1500 * time.Millisecond))
	ObserveScoreDuration(time.Now())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, m := range []string{
		"twitscan_ingested_users_total",
		"twitscan_ingested_posts_total",
		"twitscan_ingest_duplicates_total",
		"twitscan_ingest_errors_total",
		"twitscan_ingest_duration_seconds",
		"twitscan_score_calls_total",
		"twitscan_score_duration_seconds",
		"twitscan_score_cache_lookups_total",
		"twitscan_api_retries_total",
		"twitscan_command_runs_total",
		"twitscan_command_errors_total",
	} {
		if !strings.Contains(body, m) {
			t.Fatalf("expected metric %s in body", m)
		}
	}
}
