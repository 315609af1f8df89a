package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/spinbux/internal/model"
)

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, username, referrer, wallet_address, balance, total_keys, total_spins, wins, created_at, updated_at`

// scanUser は1行分のユーザーをスキャンする。
func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	user := &model.User{}
	var referrer sql.NullInt64
	var wallet sql.NullString
	err := row.Scan(
		&user.ID, &user.Username, &referrer, &wallet,
		&user.Balance, &user.TotalKeys, &user.TotalSpins, &user.Wins,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if referrer.Valid {
		user.Referrer = &referrer.Int64
	}
	if wallet.Valid {
		user.WalletAddress = wallet.String
	}
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return user, nil
}

// Create はユーザーを作成する。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	var referrer sql.NullInt64
	if user.Referrer != nil {
		referrer = sql.NullInt64{Int64: *user.Referrer, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, username, referrer, balance, total_keys, total_spins, wins, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Username, referrer,
		user.Balance, user.TotalKeys, user.TotalSpins, user.Wins,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// UpdateUsername は表示名を更新する。
func (r *PostgresUserRepo) UpdateUsername(ctx context.Context, id int64, username string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET username = $2, updated_at = now() WHERE id = $1`,
		id, username,
	)
	if err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("user not found: %d", id)
	}
	return nil
}

// AddKeys はキー残数を加算し、更新後のユーザーを返す。
func (r *PostgresUserRepo) AddKeys(ctx context.Context, id int64, delta int) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users SET total_keys = total_keys + $2, updated_at = now()
		 WHERE id = $1
		 RETURNING `+userColumns,
		id, delta,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add keys: %w", err)
	}
	return user, nil
}

// ApplySpin はスピン1回分の台帳更新を原子的に適用する。
// 条件付きUPDATE1文で実行するため、並行スピンでもキー残数が負にならない。
func (r *PostgresUserRepo) ApplySpin(ctx context.Context, id int64, keysSpent int, prizeValue int64) (*model.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`UPDATE users
		 SET total_keys = total_keys - $2,
		     balance = balance + $3,
		     total_spins = total_spins + 1,
		     wins = wins + CASE WHEN $3 > 0 THEN $3 ELSE 0 END,
		     updated_at = now()
		 WHERE id = $1 AND total_keys >= $2
		 RETURNING `+userColumns,
		id, keysSpent, prizeValue,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply spin: %w", err)
	}
	return user, nil
}

// ClaimBalance は残高がmin以上の場合に残高全額を引き落とす。
// SELECT FOR UPDATEとUPDATEを同一トランザクションで行い、
// 並行する出金リクエストによる二重払いを防ぐ。
func (r *PostgresUserRepo) ClaimBalance(ctx context.Context, id int64, min int64, walletAddress string) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var balance int64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM users WHERE id = $1 FOR UPDATE`, id,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("user not found: %d", id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock user row: %w", err)
	}

	if balance < min {
		return 0, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE users SET balance = 0, wallet_address = $2, updated_at = now() WHERE id = $1`,
		id, walletAddress,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to claim balance: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return balance, nil
}

// ListTopByBalance は残高降順のユーザー一覧と総ユーザー数を返す。
// 同額の場合は先に登録したユーザーを上位にする。
func (r *PostgresUserRepo) ListTopByBalance(ctx context.Context, limit, offset int) ([]*model.User, int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 ORDER BY balance DESC, created_at ASC
		 LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users by balance: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	return users, total, nil
}

// RankByBalance は指定ユーザーの残高順位（1始まり）を返す。
func (r *PostgresUserRepo) RankByBalance(ctx context.Context, id int64) (int, error) {
	var rank int
	err := r.db.QueryRowContext(ctx,
		`SELECT rank FROM (
		   SELECT id, rank() OVER (ORDER BY balance DESC, created_at ASC) AS rank
		   FROM users
		 ) ranked WHERE id = $1`,
		id,
	).Scan(&rank)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to rank user: %w", err)
	}
	return rank, nil
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
