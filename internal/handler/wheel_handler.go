package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/spinbux/internal/middleware"
	"github.com/hitoshi/spinbux/internal/model"
	"github.com/hitoshi/spinbux/internal/wheel"
)

// WheelServiceInterface はルーレットハンドラーが必要とするサービスインターフェース。
type WheelServiceInterface interface {
	Spin(ctx context.Context, userID int64, input wheel.SpinInput) (*wheel.SpinResult, error)
	ListSpins(ctx context.Context, userID int64, limit, offset int) (*wheel.SpinHistory, error)
}

// WheelHandler はルーレットスピンのHTTPハンドラー。
type WheelHandler struct {
	service WheelServiceInterface
}

// NewWheelHandler はWheelHandlerを生成する。
func NewWheelHandler(service WheelServiceInterface) *WheelHandler {
	return &WheelHandler{service: service}
}

// spinRequest はスピン記録リクエストのボディ。
type spinRequest struct {
	Prize      string `json:"prize"`
	PrizeValue int64  `json:"prizeValue"`
	KeysSpent  int    `json:"keysSpent"`
}

// spinResponse はスピン記録成功時のレスポンス。
type spinResponse struct {
	SpinID     string `json:"spinId"`
	Prize      string `json:"prize"`
	PrizeValue int64  `json:"prizeValue"`
	Balance    int64  `json:"balance"`
	TotalKeys  int    `json:"totalKeys"`
	TotalSpins int    `json:"totalSpins"`
}

// Spin はスピン結果を台帳に適用する。
// POST /api/wheel/spin
func (h *WheelHandler) Spin(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req spinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	result, err := h.service.Spin(r.Context(), userID, wheel.SpinInput{
		Prize:      req.Prize,
		PrizeValue: req.PrizeValue,
		KeysSpent:  req.KeysSpent,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, spinResponse{
		SpinID:     result.Spin.ID,
		Prize:      result.Spin.Prize,
		PrizeValue: result.Spin.PrizeValue,
		Balance:    result.User.Balance,
		TotalKeys:  result.User.TotalKeys,
		TotalSpins: result.User.TotalSpins,
	})
}

// spinHistoryItem はスピン履歴1件のレスポンス。
type spinHistoryItem struct {
	SpinID     string    `json:"spinId"`
	Prize      string    `json:"prize"`
	PrizeValue int64     `json:"prizeValue"`
	KeysSpent  int       `json:"keysSpent"`
	CreatedAt  time.Time `json:"createdAt"`
}

// spinHistoryResponse はスピン履歴ページのレスポンス。
type spinHistoryResponse struct {
	Spins  []spinHistoryItem `json:"spins"`
	Total  int               `json:"total"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
}

// ListSpins はスピン履歴を新しい順で返す。
// GET /api/wheel/spins?limit=&offset=
func (h *WheelHandler) ListSpins(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	limit, offset := parsePagination(r)

	history, err := h.service.ListSpins(r.Context(), userID, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]spinHistoryItem, 0, len(history.Spins))
	for _, s := range history.Spins {
		items = append(items, spinHistoryItem{
			SpinID:     s.ID,
			Prize:      s.Prize,
			PrizeValue: s.PrizeValue,
			KeysSpent:  s.KeysSpent,
			CreatedAt:  s.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, spinHistoryResponse{
		Spins:  items,
		Total:  history.Total,
		Limit:  history.Limit,
		Offset: history.Offset,
	})
}

// parsePagination はクエリパラメータからlimit/offsetを取り出す。
// 不正な値は0として扱い、具体的な丸め込みはサービス層に任せる。
func parsePagination(r *http.Request) (limit, offset int) {
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	return limit, offset
}
