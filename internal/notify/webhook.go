// Package notify は運用者向けの外部通知を提供する。
// 出金リクエスト発生時に、設定されたWebhook URLへイベントをPOSTする。
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hitoshi/spinbux/internal/model"
)

// HTTPDoer はHTTPリクエスト送信を抽象化するインターフェース。
// 本番ではsafeurl製のSSRF防止クライアントを注入する。
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// WebhookNotifier は出金イベントをWebhook URLへ通知する。
type WebhookNotifier struct {
	client HTTPDoer
	url    string
}

// NewWebhookNotifier はWebhookNotifierを生成する。
// urlの安全性検証（SSRFチェック）は呼び出し側が設定読み込み時に行う。
func NewWebhookNotifier(client HTTPDoer, url string) *WebhookNotifier {
	return &WebhookNotifier{
		client: client,
		url:    url,
	}
}

// withdrawalEvent はWebhookに送信するイベントのボディ。
type withdrawalEvent struct {
	Event         string `json:"event"`
	WithdrawalID  string `json:"withdrawal_id"`
	UserID        int64  `json:"user_id"`
	WalletAddress string `json:"wallet_address"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
}

// NotifyWithdrawal は出金リクエストイベントをPOSTする。
// 2xx以外の応答はエラーとして返す。リトライは行わない。
func (n *WebhookNotifier) NotifyWithdrawal(ctx context.Context, withdrawal *model.Withdrawal) error {
	body, err := json.Marshal(withdrawalEvent{
		Event:         "withdrawal.requested",
		WithdrawalID:  withdrawal.ID,
		UserID:        withdrawal.UserID,
		WalletAddress: withdrawal.WalletAddress,
		Amount:        withdrawal.Amount,
		Status:        string(withdrawal.Status),
	})
	if err != nil {
		return fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	return nil
}
