package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/spinbux/internal/middleware"
	"github.com/hitoshi/spinbux/internal/model"
)

// UserServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type UserServiceInterface interface {
	GetProfile(ctx context.Context, userID int64) (*model.User, error)
	UpdateProfile(ctx context.Context, userID int64, username string) (*model.User, error)
}

// UserHandler はユーザープロフィールのHTTPハンドラー。
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// profileResponse はプロフィールのAPIレスポンス。
type profileResponse struct {
	UserID        int64     `json:"userId"`
	Username      string    `json:"username"`
	Balance       int64     `json:"balance"`
	TotalKeys     int       `json:"totalKeys"`
	TotalSpins    int       `json:"totalSpins"`
	Wins          int64     `json:"wins"`
	WalletAddress *string   `json:"walletAddress"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toProfileResponse(user *model.User) profileResponse {
	resp := profileResponse{
		UserID:     user.ID,
		Username:   user.Username,
		Balance:    user.Balance,
		TotalKeys:  user.TotalKeys,
		TotalSpins: user.TotalSpins,
		Wins:       user.Wins,
		CreatedAt:  user.CreatedAt,
	}
	if user.WalletAddress != "" {
		resp.WalletAddress = &user.WalletAddress
	}
	return resp
}

// GetProfile は現在のユーザーのプロフィールを返す。
// GET /api/users/me
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	user, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user))
}

// updateProfileRequest はプロフィール更新リクエストのボディ。
type updateProfileRequest struct {
	Username string `json:"username"`
}

// UpdateProfile は表示名を更新する。
// PUT /api/users/me
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req updateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}
	if req.Username == "" {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("usernameは必須です"))
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, req.Username)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(user))
}
