// Package auth はTelegram initData検証とセッショントークン管理を提供する。
package auth

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/spinbux/internal/model"
	"github.com/hitoshi/spinbux/internal/repository"
	"github.com/hitoshi/spinbux/internal/security"
)

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
// 失敗理由の分類は内部観測専用であり、HTTPレスポンスには反映しない。
type MetricsRecorder interface {
	RecordAuthSuccess(method string)
	RecordAuthFailure(reason string)
	RecordTokenIssued()
}

// noopMetrics はメトリクス未設定時のフォールバック実装。
type noopMetrics struct{}

func (noopMetrics) RecordAuthSuccess(string) {}
func (noopMetrics) RecordAuthFailure(string) {}
func (noopMetrics) RecordTokenIssued()       {}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// BotToken はTelegramのbotトークン（initData検証の共有シークレット）。
	// 空文字列の場合、initData検証は無効化され、直接指定の
	// userId/usernameによる認証のみ受け付ける。
	BotToken string
}

// AuthenticateInput は認証リクエストの入力を表す。
// InitDataが与えられた場合はペイロード検証を行い、そうでない場合は
// UserID/Usernameの直接指定を受け付ける（参照実装互換）。
type AuthenticateInput struct {
	InitData string
	UserID   int64
	Username string
	Referrer *int64
}

// AuthResult は認証成功時の結果を表す。
type AuthResult struct {
	Token string
	User  *model.User
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	tokens    *TokenService
	userRepo  repository.UserRepository
	sanitizer security.NameSanitizerService
	metrics   MetricsRecorder
	config    ServiceConfig
}

// NewService はServiceを生成する。metricsにnilを渡すと記録は無効化される。
func NewService(
	tokens *TokenService,
	userRepo repository.UserRepository,
	sanitizer security.NameSanitizerService,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Service{
		tokens:    tokens,
		userRepo:  userRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
		config:    config,
	}
}

// Authenticate は識別ペイロードまたは直接指定の識別子を検証し、
// ユーザーを解決（未登録なら作成）してセッショントークンを発行する。
func (s *Service) Authenticate(ctx context.Context, input AuthenticateInput) (*AuthResult, error) {
	userID := input.UserID
	username := input.Username
	referrer := input.Referrer

	if s.config.BotToken != "" && input.InitData != "" {
		// 1. 署名検証。失敗理由（署名不一致/パース不能）は区別しない。
		if !VerifyInitData(input.InitData, s.config.BotToken) {
			s.metrics.RecordAuthFailure("payload")
			slog.Warn("init data verification failed")
			return nil, model.NewInvalidInitDataError()
		}

		// 2. 検証済みペイロードからユーザー情報を取り出す
		tgUser, err := ParseInitDataUser(input.InitData)
		if err != nil {
			s.metrics.RecordAuthFailure("payload")
			slog.Warn("init data has no usable user field", slog.String("error", err.Error()))
			return nil, model.NewInvalidInitDataError()
		}
		userID = tgUser.ID
		username = tgUser.DisplayName()
	}

	if userID == 0 || username == "" {
		return nil, model.NewInvalidRequestError("userIdとusernameは必須です")
	}

	// 3. 表示名のサニタイズ。トークン区切り文字の除去はここで保証する。
	username = s.sanitizer.SanitizeUsername(username)
	if username == "" {
		return nil, model.NewInvalidRequestError("usernameが不正です")
	}

	// 4. ユーザー解決。未登録の場合は台帳に新規作成する。
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		now := time.Now()
		user = &model.User{
			ID:        userID,
			Username:  username,
			Referrer:  referrer,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		slog.Info("new user created",
			slog.Int64("user_id", userID),
			slog.String("username", username),
		)
	}

	// 5. セッショントークンを発行
	token := s.tokens.Issue(user.ID, user.Username)
	s.metrics.RecordAuthSuccess(authMethod(input))
	s.metrics.RecordTokenIssued()

	return &AuthResult{Token: token, User: user}, nil
}

// Refresh は提示されたトークンから識別子を取り出し、新しいトークンを
// 発行する。参照実装互換のため、提示トークンの署名は検証しない
// （構文的に正しければ署名が壊れていてもリフレッシュできる）。
// 取り出したユーザーIDが台帳に存在しない場合はUSER_NOT_FOUNDを返す。
func (s *Service) Refresh(ctx context.Context, token string) (*AuthResult, error) {
	claims, err := s.tokens.DecodeUnverified(token)
	if err != nil {
		s.metrics.RecordAuthFailure("malformed")
		return nil, model.NewUnauthorizedError()
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	newToken := s.tokens.Issue(user.ID, user.Username)
	s.metrics.RecordAuthSuccess("refresh")
	s.metrics.RecordTokenIssued()

	return &AuthResult{Token: newToken, User: user}, nil
}

// authMethod は認証方式のメトリクスラベルを返す。
func authMethod(input AuthenticateInput) string {
	if input.InitData != "" {
		return "init_data"
	}
	return "direct"
}
