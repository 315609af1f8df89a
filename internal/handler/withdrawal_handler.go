package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/hitoshi/spinbux/internal/middleware"
	"github.com/hitoshi/spinbux/internal/model"
)

// WithdrawalServiceInterface は出金ハンドラーが必要とするサービスインターフェース。
type WithdrawalServiceInterface interface {
	Request(ctx context.Context, userID int64, walletAddress string) (*model.Withdrawal, error)
	List(ctx context.Context, userID int64) ([]*model.Withdrawal, error)
}

// WithdrawalHandler は出金リクエストのHTTPハンドラー。
type WithdrawalHandler struct {
	service WithdrawalServiceInterface
}

// NewWithdrawalHandler はWithdrawalHandlerを生成する。
func NewWithdrawalHandler(service WithdrawalServiceInterface) *WithdrawalHandler {
	return &WithdrawalHandler{service: service}
}

// withdrawalRequest は出金リクエストのボディ。
type withdrawalRequest struct {
	WalletAddress string `json:"walletAddress"`
}

// withdrawalResponse は出金1件のレスポンス。
type withdrawalResponse struct {
	WithdrawalID  string    `json:"withdrawalId"`
	WalletAddress string    `json:"walletAddress"`
	Amount        int64     `json:"amount"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toWithdrawalResponse(w *model.Withdrawal) withdrawalResponse {
	return withdrawalResponse{
		WithdrawalID:  w.ID,
		WalletAddress: w.WalletAddress,
		Amount:        w.Amount,
		Status:        string(w.Status),
		CreatedAt:     w.CreatedAt,
	}
}

// Request は残高全額の出金リクエストを受け付ける。
// POST /api/withdrawals
func (h *WithdrawalHandler) Request(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	var req withdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewInvalidRequestError("リクエストボディの解析に失敗しました"))
		return
	}

	withdrawal, err := h.service.Request(r.Context(), userID, req.WalletAddress)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toWithdrawalResponse(withdrawal))
}

// List はユーザーの出金リクエスト一覧（新しい順）を返す。
// GET /api/withdrawals
func (h *WithdrawalHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	withdrawals, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	items := make([]withdrawalResponse, 0, len(withdrawals))
	for _, wd := range withdrawals {
		items = append(items, toWithdrawalResponse(wd))
	}

	writeJSON(w, http.StatusOK, map[string]any{"withdrawals": items})
}
