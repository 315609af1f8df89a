package repository

import (
	"testing"

	"github.com/hitoshi/spinbux/internal/model"
)

// PostgresWithdrawalRepoはWithdrawalRepositoryインターフェースを満たすことを検証
func TestPostgresWithdrawalRepo_ImplementsInterface(t *testing.T) {
	var _ WithdrawalRepository = (*PostgresWithdrawalRepo)(nil)
}

// NewPostgresWithdrawalRepoが正しく初期化されることを検証
func TestNewPostgresWithdrawalRepo_Initializes(t *testing.T) {
	repo := NewPostgresWithdrawalRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// Withdrawalモデルの初期状態がpendingで構築されることを検証
func TestPostgresWithdrawalRepo_WithdrawalModel_PendingStatus(t *testing.T) {
	withdrawal := &model.Withdrawal{
		ID:            "e7f1d1f2-0000-4000-8000-000000000001",
		UserID:        42,
		WalletAddress: "EQabc123",
		Amount:        500,
		Status:        model.WithdrawalStatusPending,
	}

	if withdrawal.Status != model.WithdrawalStatusPending {
		t.Errorf("withdrawal.Status = %q, want %q", withdrawal.Status, model.WithdrawalStatusPending)
	}
}
