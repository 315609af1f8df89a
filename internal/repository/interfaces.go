// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/spinbux/internal/model"
)

// UserRepository はユーザー台帳の永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.User, error)

	// Create はユーザーを作成する。
	Create(ctx context.Context, user *model.User) error

	// UpdateUsername は表示名を更新する。
	UpdateUsername(ctx context.Context, id int64, username string) error

	// AddKeys はキー残数を加算し、更新後のユーザーを返す。
	// ユーザーが存在しない場合はnilを返す。
	AddKeys(ctx context.Context, id int64, delta int) (*model.User, error)

	// ApplySpin はスピン1回分の台帳更新を原子的に適用する。
	// total_keysがkeysSpent以上の場合のみ、キーを減算し、prizeValueを
	// 残高と勝利累計に加算し、スピン回数を加算する。
	// キー不足で適用されなかった場合は (nil, nil) を返す。
	ApplySpin(ctx context.Context, id int64, keysSpent int, prizeValue int64) (*model.User, error)

	// ClaimBalance は残高がmin以上の場合に残高全額を引き落とし、
	// 引き落とした金額とウォレットアドレスを記録する。
	// 残高不足の場合は (0, nil) を返す。
	ClaimBalance(ctx context.Context, id int64, min int64, walletAddress string) (int64, error)

	// ListTopByBalance は残高降順のユーザー一覧と総ユーザー数を返す。
	ListTopByBalance(ctx context.Context, limit, offset int) ([]*model.User, int, error)

	// RankByBalance は指定ユーザーの残高順位（1始まり）を返す。
	// ユーザーが存在しない場合は0を返す。
	RankByBalance(ctx context.Context, id int64) (int, error)
}

// TaskRepository はタスクカタログと完了記録の永続化インターフェース。
type TaskRepository interface {
	// List は全タスクを返す。
	List(ctx context.Context) ([]*model.Task, error)

	// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Task, error)

	// LastCompletedAt はユーザーの直近完了日時を返す。未完了の場合はnilを返す。
	LastCompletedAt(ctx context.Context, userID int64, taskID string) (*time.Time, error)

	// RecordCompletion はタスク完了を記録する。
	RecordCompletion(ctx context.Context, completion *model.TaskCompletion) error

	// ListCompletions はユーザーの完了記録一覧を返す。
	ListCompletions(ctx context.Context, userID int64) ([]*model.TaskCompletion, error)
}

// WheelSpinRepository はスピン履歴の永続化インターフェース。
type WheelSpinRepository interface {
	// Create はスピン記録を作成する。
	Create(ctx context.Context, spin *model.WheelSpin) error

	// ListByUserID はユーザーのスピン履歴（新しい順）と総件数を返す。
	ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*model.WheelSpin, int, error)

	// DeleteOlderThan は指定日時より古いスピン記録を削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// WithdrawalRepository は出金リクエストの永続化インターフェース。
type WithdrawalRepository interface {
	// Create は出金リクエストを作成する。
	Create(ctx context.Context, withdrawal *model.Withdrawal) error

	// ListByUserID はユーザーの出金リクエスト一覧（新しい順）を返す。
	ListByUserID(ctx context.Context, userID int64) ([]*model.Withdrawal, error)
}
