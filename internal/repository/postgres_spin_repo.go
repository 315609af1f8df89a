package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/spinbux/internal/model"
)

// PostgresWheelSpinRepo はPostgreSQLを使用したスピン履歴リポジトリ。
type PostgresWheelSpinRepo struct {
	db *sql.DB
}

// NewPostgresWheelSpinRepo はPostgresWheelSpinRepoを生成する。
func NewPostgresWheelSpinRepo(db *sql.DB) *PostgresWheelSpinRepo {
	return &PostgresWheelSpinRepo{db: db}
}

// Create はスピン記録を作成する。
func (r *PostgresWheelSpinRepo) Create(ctx context.Context, spin *model.WheelSpin) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wheel_spins (id, user_id, prize, prize_value, keys_spent, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		spin.ID, spin.UserID, spin.Prize, spin.PrizeValue, spin.KeysSpent, spin.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert wheel spin: %w", err)
	}
	return nil
}

// ListByUserID はユーザーのスピン履歴（新しい順）と総件数を返す。
func (r *PostgresWheelSpinRepo) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*model.WheelSpin, int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, prize, prize_value, keys_spent, created_at
		 FROM wheel_spins WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wheel spins: %w", err)
	}
	defer rows.Close()

	var spins []*model.WheelSpin
	for rows.Next() {
		spin := &model.WheelSpin{}
		if err := rows.Scan(
			&spin.ID, &spin.UserID, &spin.Prize,
			&spin.PrizeValue, &spin.KeysSpent, &spin.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan wheel spin: %w", err)
		}
		spins = append(spins, spin)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate wheel spins: %w", err)
	}

	var total int
	err = r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM wheel_spins WHERE user_id = $1`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count wheel spins: %w", err)
	}

	return spins, total, nil
}

// DeleteOlderThan は指定日時より古いスピン記録を削除し、削除件数を返す。
func (r *PostgresWheelSpinRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM wheel_spins WHERE created_at < $1`, cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old wheel spins: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ WheelSpinRepository = (*PostgresWheelSpinRepo)(nil)
