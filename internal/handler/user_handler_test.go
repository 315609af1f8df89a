package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/spinbux/internal/middleware"
	"github.com/hitoshi/spinbux/internal/model"
)

// --- モック定義 ---

type mockUserService struct {
	getProfileFn    func(ctx context.Context, userID int64) (*model.User, error)
	updateProfileFn func(ctx context.Context, userID int64, username string) (*model.User, error)
}

func (m *mockUserService) GetProfile(ctx context.Context, userID int64) (*model.User, error) {
	if m.getProfileFn != nil {
		return m.getProfileFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID int64, username string) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, userID, username)
	}
	return nil, nil
}

var _ UserServiceInterface = (*mockUserService)(nil)

// --- テスト ---

func TestGetProfile_ReturnsProfile(t *testing.T) {
	svc := &mockUserService{
		getProfileFn: func(ctx context.Context, userID int64) (*model.User, error) {
			if userID != 42 {
				t.Errorf("userID = %d, want 42", userID)
			}
			return &model.User{
				ID: 42, Username: "alice", Balance: 700,
				TotalKeys: 3, TotalSpins: 12, Wins: 4,
				WalletAddress: "EQabc123",
			}, nil
		},
	}
	h := NewUserHandler(svc)

	req := authedRequest(http.MethodGet, "/api/users/me", 42)
	rec := httptest.NewRecorder()

	h.GetProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Balance != 700 {
		t.Errorf("balance = %d, want 700", resp.Balance)
	}
	if resp.WalletAddress == nil || *resp.WalletAddress != "EQabc123" {
		t.Errorf("walletAddress = %v, want EQabc123", resp.WalletAddress)
	}
}

func TestGetProfile_OmitsEmptyWallet(t *testing.T) {
	svc := &mockUserService{
		getProfileFn: func(ctx context.Context, userID int64) (*model.User, error) {
			return &model.User{ID: 42, Username: "alice"}, nil
		},
	}
	h := NewUserHandler(svc)

	req := authedRequest(http.MethodGet, "/api/users/me", 42)
	rec := httptest.NewRecorder()

	h.GetProfile(rec, req)

	var resp profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// ウォレット未設定の場合はnullを返す
	if resp.WalletAddress != nil {
		t.Errorf("walletAddress = %v, want nil", *resp.WalletAddress)
	}
}

func TestGetProfile_Unauthenticated(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()

	h.GetProfile(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestUpdateProfile_UpdatesUsername(t *testing.T) {
	svc := &mockUserService{
		updateProfileFn: func(ctx context.Context, userID int64, username string) (*model.User, error) {
			if username != "newname" {
				t.Errorf("username = %q, want %q", username, "newname")
			}
			return &model.User{ID: userID, Username: username}, nil
		},
	}
	h := NewUserHandler(svc)

	body := `{"username": "newname"}`
	req := httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(body))
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), 42))
	rec := httptest.NewRecorder()

	h.UpdateProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp profileResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Username != "newname" {
		t.Errorf("username = %q, want %q", resp.Username, "newname")
	}
}

func TestUpdateProfile_EmptyUsername(t *testing.T) {
	h := NewUserHandler(&mockUserService{})

	req := httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(`{"username": ""}`))
	req = req.WithContext(middleware.ContextWithUserID(req.Context(), 42))
	rec := httptest.NewRecorder()

	h.UpdateProfile(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
