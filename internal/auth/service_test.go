package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/spinbux/internal/model"
	"github.com/hitoshi/spinbux/internal/repository"
	"github.com/hitoshi/spinbux/internal/security"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id int64) (*model.User, error)
	createFn   func(ctx context.Context, user *model.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdateUsername(_ context.Context, _ int64, _ string) error {
	return nil
}

func (m *mockUserRepo) AddKeys(_ context.Context, _ int64, _ int) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) ApplySpin(_ context.Context, _ int64, _ int, _ int64) (*model.User, error) {
	return nil, nil
}

func (m *mockUserRepo) ClaimBalance(_ context.Context, _ int64, _ int64, _ string) (int64, error) {
	return 0, nil
}

func (m *mockUserRepo) ListTopByBalance(_ context.Context, _, _ int) ([]*model.User, int, error) {
	return nil, 0, nil
}

func (m *mockUserRepo) RankByBalance(_ context.Context, _ int64) (int, error) {
	return 0, nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)

func newTestService(userRepo repository.UserRepository, botToken string) *Service {
	tokens := NewTokenService("test-secret", 24*time.Hour)
	return NewService(tokens, userRepo, security.NewNameSanitizer(), nil, ServiceConfig{BotToken: botToken})
}

// --- テスト ---

func TestAuthenticate_DirectIdentity_NewUser(t *testing.T) {
	ctx := context.Background()

	var created *model.User
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}

	svc := newTestService(userRepo, "")

	result, err := svc.Authenticate(ctx, AuthenticateInput{UserID: 42, Username: "alice"})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if result.Token == "" {
		t.Error("expected non-empty token")
	}
	if result.User.ID != 42 {
		t.Errorf("user ID = %d, want 42", result.User.ID)
	}

	// 未登録ユーザーが台帳に作成されること
	if created == nil {
		t.Fatal("expected user to be created")
	}
	if created.Username != "alice" {
		t.Errorf("created username = %q, want %q", created.Username, "alice")
	}
}

func TestAuthenticate_DirectIdentity_ExistingUser(t *testing.T) {
	ctx := context.Background()

	existing := &model.User{ID: 42, Username: "alice", Balance: 500}
	createCalled := false
	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return existing, nil
		},
		createFn: func(ctx context.Context, user *model.User) error {
			createCalled = true
			return nil
		},
	}

	svc := newTestService(userRepo, "")

	result, err := svc.Authenticate(ctx, AuthenticateInput{UserID: 42, Username: "alice"})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if createCalled {
		t.Error("existing user should not be re-created")
	}
	if result.User != existing {
		t.Error("expected existing user to be returned")
	}
}

func TestAuthenticate_InitData_VerifiedAndParsed(t *testing.T) {
	ctx := context.Background()

	var created *model.User
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}

	svc := newTestService(userRepo, realBotToken)

	result, err := svc.Authenticate(ctx, AuthenticateInput{InitData: realInitData})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	// ペイロード内の識別子が使われること（直接指定は無視される）
	if result.User.ID != 99281932 {
		t.Errorf("user ID = %d, want 99281932", result.User.ID)
	}
	if created == nil || created.Username != "rogue" {
		t.Errorf("created username = %v, want %q", created, "rogue")
	}
}

func TestAuthenticate_InitData_InvalidSignature(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(&mockUserRepo{}, "999999:WRONG_TOKEN")

	_, err := svc.Authenticate(ctx, AuthenticateInput{InitData: realInitData})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidInitData {
		t.Errorf("Authenticate() error = %v, want INVALID_INIT_DATA", err)
	}
}

func TestAuthenticate_InitData_VerificationDisabledWithoutBotToken(t *testing.T) {
	ctx := context.Background()

	// BotToken未設定の場合、initDataは無視され直接指定の識別子が使われる
	svc := newTestService(&mockUserRepo{}, "")

	result, err := svc.Authenticate(ctx, AuthenticateInput{
		InitData: "hash=invalid",
		UserID:   7,
		Username: "dave",
	})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}
	if result.User.ID != 7 {
		t.Errorf("user ID = %d, want 7", result.User.ID)
	}
}

func TestAuthenticate_MissingIdentity(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(&mockUserRepo{}, "")

	_, err := svc.Authenticate(ctx, AuthenticateInput{Username: "alice"})

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRequest {
		t.Errorf("Authenticate() error = %v, want INVALID_REQUEST", err)
	}
}

func TestAuthenticate_SanitizesUsername(t *testing.T) {
	ctx := context.Background()

	var created *model.User
	userRepo := &mockUserRepo{
		createFn: func(ctx context.Context, user *model.User) error {
			created = user
			return nil
		},
	}

	svc := newTestService(userRepo, "")

	// トークン区切り文字を含む表示名はサニタイズされる
	result, err := svc.Authenticate(ctx, AuthenticateInput{UserID: 42, Username: "a.li.ce"})
	if err != nil {
		t.Fatalf("Authenticate() error = %v", err)
	}

	if created.Username != "alice" {
		t.Errorf("created username = %q, want %q", created.Username, "alice")
	}
	// 発行されたトークンは4フィールドのままであること
	if got := len(strings.Split(result.Token, ".")); got != 4 {
		t.Errorf("token has %d parts, want 4", got)
	}
}

func TestRefresh_IssuesNewToken(t *testing.T) {
	ctx := context.Background()

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}

	svc := newTestService(userRepo, "")

	token := svc.tokens.Issue(42, "alice")

	result, err := svc.Refresh(ctx, token)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if result.User.ID != 42 {
		t.Errorf("user ID = %d, want 42", result.User.ID)
	}
	if _, err := svc.tokens.Verify(result.Token); err != nil {
		t.Errorf("refreshed token should verify, got error %v", err)
	}
}

func TestRefresh_AcceptsBrokenSignature(t *testing.T) {
	ctx := context.Background()

	userRepo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.User, error) {
			return &model.User{ID: id, Username: "alice"}, nil
		},
	}

	svc := newTestService(userRepo, "")

	// リフレッシュは署名を検証しない（参照実装互換の既知の挙動）
	result, err := svc.Refresh(ctx, "42.alice.1700000000.deadbeef")
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if result.User.ID != 42 {
		t.Errorf("user ID = %d, want 42", result.User.ID)
	}
}

func TestRefresh_MalformedToken(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(&mockUserRepo{}, "")

	_, err := svc.Refresh(ctx, "not-a-token")

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUnauthorized {
		t.Errorf("Refresh() error = %v, want UNAUTHORIZED", err)
	}
}

func TestRefresh_UnknownUser(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(&mockUserRepo{}, "")

	token := svc.tokens.Issue(42, "alice")

	_, err := svc.Refresh(ctx, token)

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("Refresh() error = %v, want USER_NOT_FOUND", err)
	}
}
