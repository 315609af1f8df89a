package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/spinbux/internal/model"
)

func testWithdrawal() *model.Withdrawal {
	return &model.Withdrawal{
		ID:            "wd-1",
		UserID:        42,
		WalletAddress: "EQabc123",
		Amount:        500,
		Status:        model.WithdrawalStatusPending,
	}
}

func TestNotifyWithdrawal_PostsEvent(t *testing.T) {
	var gotBody []byte
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.Client(), server.URL)

	if err := n.NotifyWithdrawal(context.Background(), testWithdrawal()); err != nil {
		t.Fatalf("NotifyWithdrawal() error = %v", err)
	}

	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", gotContentType)
	}

	var event withdrawalEvent
	if err := json.Unmarshal(gotBody, &event); err != nil {
		t.Fatalf("failed to decode event body: %v", err)
	}
	if event.Event != "withdrawal.requested" {
		t.Errorf("event = %q, want %q", event.Event, "withdrawal.requested")
	}
	if event.WithdrawalID != "wd-1" {
		t.Errorf("withdrawal_id = %q, want %q", event.WithdrawalID, "wd-1")
	}
	if event.Amount != 500 {
		t.Errorf("amount = %d, want 500", event.Amount)
	}
}

func TestNotifyWithdrawal_Non2xxIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	n := NewWebhookNotifier(server.Client(), server.URL)

	if err := n.NotifyWithdrawal(context.Background(), testWithdrawal()); err == nil {
		t.Error("NotifyWithdrawal() error = nil, want error for 500 response")
	}
}

func TestNotifyWithdrawal_UnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close() // 接続先を先に閉じる

	n := NewWebhookNotifier(http.DefaultClient, url)

	if err := n.NotifyWithdrawal(context.Background(), testWithdrawal()); err == nil {
		t.Error("NotifyWithdrawal() error = nil, want error for unreachable host")
	}
}
