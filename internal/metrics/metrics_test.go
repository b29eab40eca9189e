package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestNewCollector_RegistersMetrics はコレクターがレジストリに登録されることを検証する。
func TestNewCollector_RegistersMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	if c == nil {
		t.Fatal("expected non-nil collector")
	}
}

// TestCollector_RecordAuthAttempt は認証試行カウンターの記録を検証する。
func TestCollector_RecordAuthAttempt(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordAuthAttempt("login", "success")
	c.RecordAuthAttempt("login", "success")
	c.RecordAuthAttempt("signup", "validation_failed")

	got := testutil.ToFloat64(c.authAttempts.WithLabelValues("login", "success"))
	if got != 2 {
		t.Errorf("login success count = %v, want 2", got)
	}

	got = testutil.ToFloat64(c.authAttempts.WithLabelValues("signup", "validation_failed"))
	if got != 1 {
		t.Errorf("signup validation_failed count = %v, want 1", got)
	}
}

// TestCollector_RecordStaleFetchDiscard は破棄カウンターの記録を検証する。
func TestCollector_RecordStaleFetchDiscard(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordStaleFetchDiscard()

	got := testutil.ToFloat64(c.staleFetchDiscard)
	if got != 1 {
		t.Errorf("stale fetch discard count = %v, want 1", got)
	}
}

// TestCollector_RecordBookmarkFetchFailure は失敗理由ラベルの記録を検証する。
func TestCollector_RecordBookmarkFetchFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordBookmarkFetchFailure("docstore_error")
	c.RecordBookmarkFetchFailure("docstore_error")
	c.RecordBookmarkFetchFailure("session_missing")

	got := testutil.ToFloat64(c.bookmarkFetchFail.WithLabelValues("docstore_error"))
	if got != 2 {
		t.Errorf("docstore_error count = %v, want 2", got)
	}
}

// TestSetupMetricsRoute_ServesMetrics は/metricsパスでメトリクスが返ることを検証する。
func TestSetupMetricsRoute_ServesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordAuthAttempt("login", "success")
	c.RecordBookmarkFetchLatency(120 * time.Millisecond)
	c.RecordHTTPStatus(200)

	handler := SetupMetricsRoute(reg)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, _ := io.ReadAll(resp.Body)
	bodyStr := string(body)

	for _, name := range []string{
		"bukuma_auth_attempts_total",
		"bukuma_bookmark_fetch_latency_seconds",
		"bukuma_http_status_total",
	} {
		if !strings.Contains(bodyStr, name) {
			t.Errorf("response should contain %s metric", name)
		}
	}
}
