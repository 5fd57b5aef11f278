// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 結果ラベルの値
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// MetricsCollector はメトリクス収集のインターフェース。
// 認証サービス、分析サービス、HTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordLogin(success bool)
	RecordSessionIssued()
	RecordSessionValidation(valid bool)
	RecordSessionRevoked()
	RecordAtypicalFlag(flag string)
	RecordReportLatency(report string, duration time.Duration)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	logins            *prometheus.CounterVec
	sessionsIssued    prometheus.Counter
	sessionValidation *prometheus.CounterVec
	sessionsRevoked   prometheus.Counter
	atypicalFlags     *prometheus.CounterVec
	reportLatency     *prometheus.HistogramVec
	httpStatus        *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kakeibo_login_total",
			Help: "ログイン試行の合計数（結果別）",
		}, []string{"result"}),
		sessionsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kakeibo_sessions_issued_total",
			Help: "発行されたセッションの合計数",
		}),
		sessionValidation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kakeibo_session_validations_total",
			Help: "セッション検証の合計数（結果別）",
		}, []string{"result"}),
		sessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kakeibo_sessions_revoked_total",
			Help: "ログアウトにより破棄されたセッションの合計数",
		}),
		atypicalFlags: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kakeibo_atypical_flags_total",
			Help: "非定型支出として付与されたフラグの合計数",
		}, []string{"flag"}),
		reportLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kakeibo_report_latency_seconds",
			Help:    "分析レポート生成のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}, []string{"report"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kakeibo_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.logins,
		c.sessionsIssued,
		c.sessionValidation,
		c.sessionsRevoked,
		c.atypicalFlags,
		c.reportLatency,
		c.httpStatus,
	)

	return c
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	c.logins.WithLabelValues(resultLabel(success)).Inc()
}

// RecordSessionIssued はセッション発行を記録する。
func (c *Collector) RecordSessionIssued() {
	c.sessionsIssued.Inc()
}

// RecordSessionValidation はセッション検証の結果を記録する。
func (c *Collector) RecordSessionValidation(valid bool) {
	c.sessionValidation.WithLabelValues(resultLabel(valid)).Inc()
}

// RecordSessionRevoked はセッション破棄を記録する。
func (c *Collector) RecordSessionRevoked() {
	c.sessionsRevoked.Inc()
}

// RecordAtypicalFlag は非定型支出フラグの付与を記録する。
func (c *Collector) RecordAtypicalFlag(flag string) {
	c.atypicalFlags.WithLabelValues(flag).Inc()
}

// RecordReportLatency はレポート生成のレイテンシを記録する。
func (c *Collector) RecordReportLatency(report string, duration time.Duration) {
	c.reportLatency.WithLabelValues(report).Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func resultLabel(ok bool) string {
	if ok {
		return ResultSuccess
	}
	return ResultFailure
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// Nop は何も記録しないMetricsCollector。
// メトリクスを無効化した場合やテストで使用する。
type Nop struct{}

func (Nop) RecordLogin(bool) {}
func (Nop) RecordSessionIssued() {}
func (Nop) RecordSessionValidation(bool) {}
func (Nop) RecordSessionRevoked() {}
func (Nop) RecordAtypicalFlag(string) {}
func (Nop) RecordReportLatency(string, time.Duration) {}
func (Nop) RecordHTTPStatus(int) {}

// compile-time interface checks
var _ MetricsCollector = (*Collector)(nil)
var _ MetricsCollector = Nop{}
