// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, game, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeInvalidInitData     = "INVALID_INIT_DATA"
	ErrCodeInvalidRequest      = "INVALID_REQUEST"
	ErrCodeUserNotFound        = "USER_NOT_FOUND"
	ErrCodeTaskNotFound        = "TASK_NOT_FOUND"
	ErrCodeTaskAlreadyDone     = "TASK_ALREADY_COMPLETED"
	ErrCodeInsufficientKeys    = "INSUFFICIENT_KEYS"
	ErrCodeInsufficientBalance = "INSUFFICIENT_BALANCE"
	ErrCodeInvalidWallet       = "INVALID_WALLET"
)

// NewUnauthorizedError は認証エラーを生成する。
// トークン欠落・署名不一致・期限切れのいずれであっても同一のエラーを返し、
// 失敗理由を外部に漏らさない。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "再度ログインしてください。",
	}
}

// NewInvalidInitDataError はTelegram識別ペイロードの検証失敗エラーを生成する。
func NewInvalidInitDataError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidInitData,
		Message:  "Telegram認証データの検証に失敗しました。",
		Category: "auth",
		Action:   "Telegramアプリからミニアプリを開き直してください。",
	}
}

// NewInvalidRequestError はリクエスト形式エラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "リクエスト内容を確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewTaskNotFoundError はタスク未検出エラーを生成する。
func NewTaskNotFoundError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskNotFound,
		Message:  fmt.Sprintf("指定されたタスクが見つかりません: %s", taskID),
		Category: "game",
		Action:   "タスク一覧を再取得してください。",
	}
}

// NewTaskAlreadyDoneError はタスク重複完了エラーを生成する。
func NewTaskAlreadyDoneError(taskID string) *APIError {
	return &APIError{
		Code:     ErrCodeTaskAlreadyDone,
		Message:  fmt.Sprintf("このタスクは既に完了しています: %s", taskID),
		Category: "game",
		Action:   "他のタスクに挑戦してください。",
	}
}

// NewInsufficientKeysError はキー不足エラーを生成する。
func NewInsufficientKeysError() *APIError {
	return &APIError{
		Code:     ErrCodeInsufficientKeys,
		Message:  "キーが不足しています。",
		Category: "game",
		Action:   "タスクを完了してキーを獲得してください。",
	}
}

// NewInsufficientBalanceError は残高不足エラーを生成する。
func NewInsufficientBalanceError(min int64) *APIError {
	return &APIError{
		Code:     ErrCodeInsufficientBalance,
		Message:  fmt.Sprintf("出金には%d以上の残高が必要です。", min),
		Category: "game",
		Action:   "残高を増やしてから再度お試しください。",
	}
}

// NewInvalidWalletError はウォレットアドレス不正エラーを生成する。
func NewInvalidWalletError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidWallet,
		Message:  "ウォレットアドレスが不正です。",
		Category: "validation",
		Action:   "TONウォレットアドレスを確認してください。",
	}
}
