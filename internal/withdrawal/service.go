// Package withdrawal は残高出金に関するビジネスロジックを提供する。
package withdrawal

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/spinbux/internal/model"
	"github.com/hitoshi/spinbux/internal/repository"
)

// MetricsRecorder は出金のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordWithdrawal(amount int64)
}

// Notifier は出金イベントの外部通知インターフェース。
// 通知失敗は出金処理自体を失敗させない（ベストエフォート）。
type Notifier interface {
	NotifyWithdrawal(ctx context.Context, withdrawal *model.Withdrawal) error
}

// ServiceConfig は出金サービスの設定。
type ServiceConfig struct {
	MinAmount int64 // 出金に必要な最低残高
}

// Service は出金に関するビジネスロジックを提供する。
type Service struct {
	userRepo       repository.UserRepository
	withdrawalRepo repository.WithdrawalRepository
	notifier       Notifier
	metrics        MetricsRecorder
	config         ServiceConfig
	now            func() time.Time
}

// NewService はServiceを生成する。notifierとmetricsはnilでもよい。
func NewService(
	userRepo repository.UserRepository,
	withdrawalRepo repository.WithdrawalRepository,
	notifier Notifier,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:       userRepo,
		withdrawalRepo: withdrawalRepo,
		notifier:       notifier,
		metrics:        metrics,
		config:         config,
		now:            time.Now,
	}
}

// Request は残高全額の出金リクエストを受け付ける。
// 残高が最低額未満の場合はINSUFFICIENT_BALANCEを返す。
// 引き落としはトランザクション内の条件付き更新で行われ、並行する
// リクエストが同じ残高を二重に引き落とすことはない。
func (s *Service) Request(ctx context.Context, userID int64, walletAddress string) (*model.Withdrawal, error) {
	walletAddress = strings.TrimSpace(walletAddress)
	if walletAddress == "" {
		return nil, model.NewInvalidWalletError()
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	amount, err := s.userRepo.ClaimBalance(ctx, userID, s.config.MinAmount, walletAddress)
	if err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, model.NewInsufficientBalanceError(s.config.MinAmount)
	}

	withdrawal := &model.Withdrawal{
		ID:            uuid.New().String(),
		UserID:        userID,
		WalletAddress: walletAddress,
		Amount:        amount,
		Status:        model.WithdrawalStatusPending,
		CreatedAt:     s.now(),
	}
	if err := s.withdrawalRepo.Create(ctx, withdrawal); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordWithdrawal(amount)
	}
	slog.Info("withdrawal requested",
		slog.Int64("user_id", userID),
		slog.String("withdrawal_id", withdrawal.ID),
		slog.Int64("amount", amount),
	)

	// 外部通知はベストエフォート。失敗してもリクエスト自体は成立させる。
	if s.notifier != nil {
		if err := s.notifier.NotifyWithdrawal(ctx, withdrawal); err != nil {
			slog.Error("withdrawal webhook notification failed",
				slog.String("withdrawal_id", withdrawal.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	return withdrawal, nil
}

// List はユーザーの出金リクエスト一覧（新しい順）を返す。
func (s *Service) List(ctx context.Context, userID int64) ([]*model.Withdrawal, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}
	return s.withdrawalRepo.ListByUserID(ctx, userID)
}
