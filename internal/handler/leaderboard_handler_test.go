package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/spinbux/internal/leaderboard"
	"github.com/hitoshi/spinbux/internal/model"
)

// --- モック定義 ---

type mockLeaderboardService struct {
	listFn     func(ctx context.Context, currentUserID *int64, limit, offset int) (*leaderboard.Page, error)
	userRankFn func(ctx context.Context, userID int64) (*leaderboard.Entry, error)
}

func (m *mockLeaderboardService) List(ctx context.Context, currentUserID *int64, limit, offset int) (*leaderboard.Page, error) {
	if m.listFn != nil {
		return m.listFn(ctx, currentUserID, limit, offset)
	}
	return nil, nil
}

func (m *mockLeaderboardService) UserRank(ctx context.Context, userID int64) (*leaderboard.Entry, error) {
	if m.userRankFn != nil {
		return m.userRankFn(ctx, userID)
	}
	return nil, nil
}

var _ LeaderboardServiceInterface = (*mockLeaderboardService)(nil)

// --- テスト ---

func TestLeaderboardList_AnonymousHasNoUserRank(t *testing.T) {
	svc := &mockLeaderboardService{
		listFn: func(ctx context.Context, currentUserID *int64, limit, offset int) (*leaderboard.Page, error) {
			// 匿名リクエストではcurrentUserIDがnilで渡されること
			if currentUserID != nil {
				t.Errorf("currentUserID = %v, want nil", *currentUserID)
			}
			return &leaderboard.Page{
				Entries: []leaderboard.Entry{
					{Rank: 1, UserID: 7, Username: "top", Balance: 9000},
				},
				Total: 1,
			}, nil
		},
	}
	h := NewLeaderboardHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	// userRankフィールドがレスポンスに含まれないこと
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&raw); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if _, ok := raw["userRank"]; ok {
		t.Error("anonymous response should omit userRank")
	}
}

func TestLeaderboardList_AuthedIncludesUserRank(t *testing.T) {
	rank := 5
	svc := &mockLeaderboardService{
		listFn: func(ctx context.Context, currentUserID *int64, limit, offset int) (*leaderboard.Page, error) {
			if currentUserID == nil || *currentUserID != 42 {
				t.Errorf("currentUserID = %v, want 42", currentUserID)
			}
			return &leaderboard.Page{
				Entries:  []leaderboard.Entry{{Rank: 1, UserID: 7, Username: "top", Balance: 9000}},
				Total:    10,
				UserRank: &rank,
			}, nil
		},
	}
	h := NewLeaderboardHandler(svc)

	req := authedRequest(http.MethodGet, "/api/leaderboard", 42)
	rec := httptest.NewRecorder()

	h.List(rec, req)

	var resp leaderboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.UserRank == nil || *resp.UserRank != 5 {
		t.Errorf("userRank = %v, want 5", resp.UserRank)
	}
}

func TestLeaderboardUserRank_ReturnsEntry(t *testing.T) {
	svc := &mockLeaderboardService{
		userRankFn: func(ctx context.Context, userID int64) (*leaderboard.Entry, error) {
			if userID != 7 {
				t.Errorf("userID = %d, want 7", userID)
			}
			return &leaderboard.Entry{Rank: 3, UserID: 7, Username: "bronze", Balance: 300}, nil
		},
	}
	h := NewLeaderboardHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard/7", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userId", "7")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.UserRank(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d: %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	var resp leaderboardEntry
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Rank != 3 {
		t.Errorf("rank = %d, want 3", resp.Rank)
	}
}

func TestLeaderboardUserRank_NonNumericID(t *testing.T) {
	h := NewLeaderboardHandler(&mockLeaderboardService{})

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard/abc", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userId", "abc")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.UserRank(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestLeaderboardUserRank_UnknownUser(t *testing.T) {
	svc := &mockLeaderboardService{
		userRankFn: func(ctx context.Context, userID int64) (*leaderboard.Entry, error) {
			return nil, model.NewUserNotFoundError()
		},
	}
	h := NewLeaderboardHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/leaderboard/999", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("userId", "999")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()

	h.UserRank(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
