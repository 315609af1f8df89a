// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// 認証失敗は理由ラベル付きで記録するが、この分類は内部観測専用であり
// HTTPレスポンスには一切反映されない。
type Collector struct {
	authSuccess     *prometheus.CounterVec
	authFailure     *prometheus.CounterVec
	tokensIssued    prometheus.Counter
	wheelSpins      prometheus.Counter
	tasksCompleted  prometheus.Counter
	withdrawals     prometheus.Counter
	withdrawnAmount prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		authSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spinbux_auth_success_total",
			Help: "認証成功の合計数（方式別）",
		}, []string{"method"}),
		authFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "spinbux_auth_failure_total",
			Help: "認証失敗の合計数（内部分類の理由別）",
		}, []string{"reason"}),
		tokensIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spinbux_tokens_issued_total",
			Help: "発行したセッショントークンの合計数",
		}),
		wheelSpins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spinbux_wheel_spins_total",
			Help: "記録したルーレットスピンの合計数",
		}),
		tasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spinbux_tasks_completed_total",
			Help: "完了したタスクの合計数",
		}),
		withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spinbux_withdrawals_total",
			Help: "受け付けた出金リクエストの合計数",
		}),
		withdrawnAmount: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "spinbux_withdrawn_amount_total",
			Help: "出金リクエストの合計金額",
		}),
	}

	reg.MustRegister(
		c.authSuccess,
		c.authFailure,
		c.tokensIssued,
		c.wheelSpins,
		c.tasksCompleted,
		c.withdrawals,
		c.withdrawnAmount,
	)

	return c
}

// RecordAuthSuccess は認証成功を方式別に記録する。
func (c *Collector) RecordAuthSuccess(method string) {
	c.authSuccess.WithLabelValues(method).Inc()
}

// RecordAuthFailure は認証失敗を理由別に記録する。
func (c *Collector) RecordAuthFailure(reason string) {
	c.authFailure.WithLabelValues(reason).Inc()
}

// RecordTokenIssued はトークン発行を記録する。
func (c *Collector) RecordTokenIssued() {
	c.tokensIssued.Inc()
}

// RecordWheelSpin はスピン1回を記録する。
func (c *Collector) RecordWheelSpin() {
	c.wheelSpins.Inc()
}

// RecordTaskCompleted はタスク完了1件を記録する。
func (c *Collector) RecordTaskCompleted() {
	c.tasksCompleted.Inc()
}

// RecordWithdrawal は出金リクエスト1件と金額を記録する。
func (c *Collector) RecordWithdrawal(amount int64) {
	c.withdrawals.Inc()
	c.withdrawnAmount.Add(float64(amount))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
