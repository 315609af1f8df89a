package model

import "time"

// WithdrawalStatus は出金リクエストの状態を表す。
type WithdrawalStatus string

const (
	// WithdrawalStatusPending は送金処理待ちの状態。
	WithdrawalStatusPending WithdrawalStatus = "pending"
	// WithdrawalStatusCompleted は送金完了の状態。
	WithdrawalStatusCompleted WithdrawalStatus = "completed"
	// WithdrawalStatusFailed は送金失敗の状態。
	WithdrawalStatusFailed WithdrawalStatus = "failed"
)

// Withdrawal は残高の出金リクエストを表す。
type Withdrawal struct {
	ID            string
	UserID        int64
	WalletAddress string
	Amount        int64
	Status        WithdrawalStatus
	TransactionID string
	CreatedAt     time.Time
}
