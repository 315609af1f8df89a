package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/spinbux/internal/leaderboard"
	"github.com/hitoshi/spinbux/internal/middleware"
	"github.com/hitoshi/spinbux/internal/model"
)

// LeaderboardServiceInterface はランキングハンドラーが必要とするサービスインターフェース。
type LeaderboardServiceInterface interface {
	List(ctx context.Context, currentUserID *int64, limit, offset int) (*leaderboard.Page, error)
	UserRank(ctx context.Context, userID int64) (*leaderboard.Entry, error)
}

// LeaderboardHandler は残高ランキングのHTTPハンドラー。
type LeaderboardHandler struct {
	service LeaderboardServiceInterface
}

// NewLeaderboardHandler はLeaderboardHandlerを生成する。
func NewLeaderboardHandler(service LeaderboardServiceInterface) *LeaderboardHandler {
	return &LeaderboardHandler{service: service}
}

// leaderboardEntry はランキング1行のレスポンス。
type leaderboardEntry struct {
	Rank       int    `json:"rank"`
	UserID     int64  `json:"userId"`
	Username   string `json:"username"`
	Balance    int64  `json:"balance"`
	TotalSpins int    `json:"totalSpins"`
	Wins       int64  `json:"wins"`
}

// leaderboardResponse はランキングページのレスポンス。
// userRankは認証済みリクエストでのみ含まれる。
type leaderboardResponse struct {
	Entries  []leaderboardEntry `json:"entries"`
	Total    int                `json:"total"`
	UserRank *int               `json:"userRank,omitempty"`
	Limit    int                `json:"limit"`
	Offset   int                `json:"offset"`
}

func toLeaderboardEntry(e leaderboard.Entry) leaderboardEntry {
	return leaderboardEntry{
		Rank:       e.Rank,
		UserID:     e.UserID,
		Username:   e.Username,
		Balance:    e.Balance,
		TotalSpins: e.TotalSpins,
		Wins:       e.Wins,
	}
}

// List は残高降順のランキングを返す。認証は任意で、認証済みの場合は
// リクエストユーザーの順位も併せて返す。
// GET /api/leaderboard?limit=&offset=
func (h *LeaderboardHandler) List(w http.ResponseWriter, r *http.Request) {
	var currentUserID *int64
	if userID, err := middleware.UserIDFromContext(r.Context()); err == nil && userID != 0 {
		currentUserID = &userID
	}

	limit, offset := parsePagination(r)

	page, err := h.service.List(r.Context(), currentUserID, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	entries := make([]leaderboardEntry, 0, len(page.Entries))
	for _, e := range page.Entries {
		entries = append(entries, toLeaderboardEntry(e))
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{
		Entries:  entries,
		Total:    page.Total,
		UserRank: page.UserRank,
		Limit:    page.Limit,
		Offset:   page.Offset,
	})
}

// UserRank は指定ユーザーの順位を返す。
// GET /api/leaderboard/{userId}
func (h *LeaderboardHandler) UserRank(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userId"), 10, 64)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("userIdは数値で指定してください"))
		return
	}

	entry, err := h.service.UserRank(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toLeaderboardEntry(*entry))
}
