// Package wheel はルーレットスピンに関するビジネスロジックを提供する。
package wheel

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/spinbux/internal/model"
	"github.com/hitoshi/spinbux/internal/repository"
)

// MetricsRecorder はスピンのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordWheelSpin()
}

// SpinInput はスピン記録リクエストの入力を表す。
type SpinInput struct {
	Prize      string
	PrizeValue int64
	KeysSpent  int
}

// SpinResult はスピン記録後の状態を表す。
type SpinResult struct {
	Spin *model.WheelSpin
	User *model.User // 台帳更新後のユーザー
}

// Service はルーレットに関するビジネスロジックを提供する。
type Service struct {
	spinRepo repository.WheelSpinRepository
	userRepo repository.UserRepository
	metrics  MetricsRecorder
	now      func() time.Time
}

// NewService はServiceを生成する。metricsにnilを渡すと記録は無効化される。
func NewService(spinRepo repository.WheelSpinRepository, userRepo repository.UserRepository, metrics MetricsRecorder) *Service {
	return &Service{
		spinRepo: spinRepo,
		userRepo: userRepo,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Spin はスピン結果を台帳に適用し、スピン記録を永続化する。
// キーの減算・残高加算・回数加算は1回の条件付きUPDATEで行われるため、
// 並行リクエストでもキー残数が負になることはない。
func (s *Service) Spin(ctx context.Context, userID int64, input SpinInput) (*SpinResult, error) {
	if input.Prize == "" {
		return nil, model.NewInvalidRequestError("prizeは必須です")
	}
	if input.KeysSpent <= 0 {
		return nil, model.NewInvalidRequestError("keysSpentは正の整数で指定してください")
	}
	if input.PrizeValue < 0 {
		return nil, model.NewInvalidRequestError("prizeValueは0以上で指定してください")
	}

	// 存在しないユーザーとキー不足を区別するため先に台帳を引く
	existing, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, model.NewUserNotFoundError()
	}

	user, err := s.userRepo.ApplySpin(ctx, userID, input.KeysSpent, input.PrizeValue)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewInsufficientKeysError()
	}

	spin := &model.WheelSpin{
		ID:         uuid.New().String(),
		UserID:     userID,
		Prize:      input.Prize,
		PrizeValue: input.PrizeValue,
		KeysSpent:  input.KeysSpent,
		CreatedAt:  s.now(),
	}
	if err := s.spinRepo.Create(ctx, spin); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordWheelSpin()
	}
	slog.Info("wheel spin recorded",
		slog.Int64("user_id", userID),
		slog.String("spin_id", spin.ID),
		slog.String("prize", input.Prize),
		slog.Int64("prize_value", input.PrizeValue),
	)

	return &SpinResult{Spin: spin, User: user}, nil
}

// SpinHistory はスピン履歴のページを表す。
type SpinHistory struct {
	Spins  []*model.WheelSpin
	Total  int
	Limit  int
	Offset int
}

// ListSpins はユーザーのスピン履歴（新しい順）を返す。
// limitは1〜100の範囲に丸められる。
func (s *Service) ListSpins(ctx context.Context, userID int64, limit, offset int) (*SpinHistory, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	spins, total, err := s.spinRepo.ListByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return &SpinHistory{
		Spins:  spins,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}
