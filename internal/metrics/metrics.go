// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordAuthAttempt(operation string, outcome string)
	RecordBookmarkFetchLatency(duration time.Duration)
	RecordBookmarkFetchFailure(reason string)
	RecordStaleFetchDiscard()
	RecordTitleLookup(outcome string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	authAttempts         *prometheus.CounterVec
	bookmarkFetchLatency prometheus.Histogram
	bookmarkFetchFail    *prometheus.CounterVec
	staleFetchDiscard    prometheus.Counter
	titleLookup          *prometheus.CounterVec
	httpStatus           *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bukuma_auth_attempts_total",
			Help: "認証試行の合計数（操作・結果別）",
		}, []string{"operation", "outcome"}),
		bookmarkFetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "bukuma_bookmark_fetch_latency_seconds",
			Help:    "ブックマーク一覧取得のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		bookmarkFetchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bukuma_bookmark_fetch_fail_total",
			Help: "ブックマーク一覧取得失敗の合計数（理由別）",
		}, []string{"reason"}),
		staleFetchDiscard: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bukuma_stale_fetch_discard_total",
			Help: "セッション差し替えにより破棄された取得結果の合計数",
		}),
		titleLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bukuma_title_lookup_total",
			Help: "タイトル解決試行の合計数（結果別）",
		}, []string{"outcome"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bukuma_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.authAttempts,
		c.bookmarkFetchLatency,
		c.bookmarkFetchFail,
		c.staleFetchDiscard,
		c.titleLookup,
		c.httpStatus,
	)

	return c
}

// RecordAuthAttempt は認証試行を記録する。operationはlogin/signup、
// outcomeはsuccess/validation_failed/auth_failedのいずれか。
func (c *Collector) RecordAuthAttempt(operation string, outcome string) {
	c.authAttempts.WithLabelValues(operation, outcome).Inc()
}

// RecordBookmarkFetchLatency はブックマーク取得のレイテンシを記録する。
func (c *Collector) RecordBookmarkFetchLatency(duration time.Duration) {
	c.bookmarkFetchLatency.Observe(duration.Seconds())
}

// RecordBookmarkFetchFailure はブックマーク取得失敗を記録する。
func (c *Collector) RecordBookmarkFetchFailure(reason string) {
	c.bookmarkFetchFail.WithLabelValues(reason).Inc()
}

// RecordStaleFetchDiscard はセッション差し替えによる取得結果の破棄を記録する。
func (c *Collector) RecordStaleFetchDiscard() {
	c.staleFetchDiscard.Inc()
}

// RecordTitleLookup はタイトル解決の試行を記録する。outcomeはhit/missのいずれか。
func (c *Collector) RecordTitleLookup(outcome string) {
	c.titleLookup.WithLabelValues(outcome).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}

// compile-time interface check
var _ MetricsCollector = (*Collector)(nil)
