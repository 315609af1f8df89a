package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/spinbux/internal/model"
)

// PostgresTaskRepo はPostgreSQLを使用したタスクリポジトリ。
type PostgresTaskRepo struct {
	db *sql.DB
}

// NewPostgresTaskRepo はPostgresTaskRepoを生成する。
func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// List は全タスクを返す。
func (r *PostgresTaskRepo) List(ctx context.Context) ([]*model.Task, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, reward, type, duration_seconds
		 FROM tasks ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task := &model.Task{}
		if err := rows.Scan(
			&task.ID, &task.Name, &task.Description,
			&task.Reward, &task.Type, &task.DurationSeconds,
		); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

// FindByID は指定IDのタスクを取得する。見つからない場合はnilを返す。
func (r *PostgresTaskRepo) FindByID(ctx context.Context, id string) (*model.Task, error) {
	task := &model.Task{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, reward, type, duration_seconds
		 FROM tasks WHERE id = $1`, id,
	).Scan(&task.ID, &task.Name, &task.Description, &task.Reward, &task.Type, &task.DurationSeconds)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task by ID: %w", err)
	}
	return task, nil
}

// LastCompletedAt はユーザーの直近完了日時を返す。未完了の場合はnilを返す。
func (r *PostgresTaskRepo) LastCompletedAt(ctx context.Context, userID int64, taskID string) (*time.Time, error) {
	var completedAt time.Time
	err := r.db.QueryRowContext(ctx,
		`SELECT completed_at FROM task_completions
		 WHERE user_id = $1 AND task_id = $2
		 ORDER BY completed_at DESC LIMIT 1`,
		userID, taskID,
	).Scan(&completedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task completion: %w", err)
	}
	return &completedAt, nil
}

// RecordCompletion はタスク完了を記録する。
func (r *PostgresTaskRepo) RecordCompletion(ctx context.Context, completion *model.TaskCompletion) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO task_completions (user_id, task_id, completed_at)
		 VALUES ($1, $2, $3)`,
		completion.UserID, completion.TaskID, completion.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record task completion: %w", err)
	}
	return nil
}

// ListCompletions はユーザーの完了記録一覧を返す。
func (r *PostgresTaskRepo) ListCompletions(ctx context.Context, userID int64) ([]*model.TaskCompletion, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, task_id, completed_at FROM task_completions
		 WHERE user_id = $1 ORDER BY completed_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list task completions: %w", err)
	}
	defer rows.Close()

	var completions []*model.TaskCompletion
	for rows.Next() {
		c := &model.TaskCompletion{}
		if err := rows.Scan(&c.UserID, &c.TaskID, &c.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan task completion: %w", err)
		}
		completions = append(completions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate task completions: %w", err)
	}
	return completions, nil
}

// compile-time interface check
var _ TaskRepository = (*PostgresTaskRepo)(nil)
