package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/hitoshi/spinbux/internal/auth"
	"github.com/hitoshi/spinbux/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Authenticate(ctx context.Context, input auth.AuthenticateInput) (*auth.AuthResult, error)
	Refresh(ctx context.Context, token string) (*auth.AuthResult, error)
}

// AuthHandler はTelegram認証とトークンリフレッシュのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface) *AuthHandler {
	return &AuthHandler{service: service}
}

// authenticateRequest は認証リクエストのボディ。
// initDataが与えられた場合はペイロード検証を行い、そうでない場合は
// userId/usernameの直接指定を受け付ける。
type authenticateRequest struct {
	InitData string `json:"initData"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Ref      *int64 `json:"ref"`
}

// authResponse は認証成功時のレスポンス。
type authResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
}

// Authenticate は識別ペイロードを検証しセッショントークンを発行する。
// POST /auth/telegram
func (h *AuthHandler) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	if req.InitData == "" && (req.UserID == 0 || req.Username == "") {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("initDataまたはuserIdとusernameを指定してください"))
		return
	}

	result, err := h.service.Authenticate(r.Context(), auth.AuthenticateInput{
		InitData: req.InitData,
		UserID:   req.UserID,
		Username: req.Username,
		Referrer: req.Ref,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:    result.Token,
		UserID:   result.User.ID,
		Username: result.User.Username,
	})
}

// Refresh は提示されたトークンから新しいトークンを発行する。
// POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		writeUnauthorized(w)
		return
	}
	token := strings.TrimPrefix(header, "Bearer ")

	result, err := h.service.Refresh(r.Context(), token)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token:    result.Token,
		UserID:   result.User.ID,
		Username: result.User.Username,
	})
}
