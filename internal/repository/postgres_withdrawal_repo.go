package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/spinbux/internal/model"
)

// PostgresWithdrawalRepo はPostgreSQLを使用した出金リポジトリ。
type PostgresWithdrawalRepo struct {
	db *sql.DB
}

// NewPostgresWithdrawalRepo はPostgresWithdrawalRepoを生成する。
func NewPostgresWithdrawalRepo(db *sql.DB) *PostgresWithdrawalRepo {
	return &PostgresWithdrawalRepo{db: db}
}

// Create は出金リクエストを作成する。
func (r *PostgresWithdrawalRepo) Create(ctx context.Context, withdrawal *model.Withdrawal) error {
	var txID sql.NullString
	if withdrawal.TransactionID != "" {
		txID = sql.NullString{String: withdrawal.TransactionID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO withdrawals (id, user_id, wallet_address, amount, status, transaction_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		withdrawal.ID, withdrawal.UserID, withdrawal.WalletAddress,
		withdrawal.Amount, withdrawal.Status, txID, withdrawal.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert withdrawal: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの出金リクエスト一覧（新しい順）を返す。
func (r *PostgresWithdrawalRepo) ListByUserID(ctx context.Context, userID int64) ([]*model.Withdrawal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, wallet_address, amount, status, transaction_id, created_at
		 FROM withdrawals WHERE user_id = $1
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdrawals: %w", err)
	}
	defer rows.Close()

	var withdrawals []*model.Withdrawal
	for rows.Next() {
		w := &model.Withdrawal{}
		var txID sql.NullString
		if err := rows.Scan(
			&w.ID, &w.UserID, &w.WalletAddress,
			&w.Amount, &w.Status, &txID, &w.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		if txID.Valid {
			w.TransactionID = txID.String
		}
		withdrawals = append(withdrawals, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdrawals: %w", err)
	}
	return withdrawals, nil
}

// compile-time interface check
var _ WithdrawalRepository = (*PostgresWithdrawalRepo)(nil)
