// Package task はタスクカタログと完了報酬に関するビジネスロジックを提供する。
package task

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/spinbux/internal/model"
	"github.com/hitoshi/spinbux/internal/repository"
)

// MetricsRecorder はタスク完了のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordTaskCompleted()
}

// TaskWithStatus はタスクとユーザーの完了状況を結合した構造体。
type TaskWithStatus struct {
	model.Task
	Completed   bool
	CompletedAt *time.Time
}

// CompleteResult はタスク完了処理の結果を表す。
type CompleteResult struct {
	Task *model.Task
	User *model.User // 報酬付与後のユーザー
}

// Service はタスクに関するビジネスロジックを提供する。
type Service struct {
	taskRepo repository.TaskRepository
	userRepo repository.UserRepository
	metrics  MetricsRecorder
	now      func() time.Time
}

// NewService はServiceを生成する。metricsにnilを渡すと記録は無効化される。
func NewService(taskRepo repository.TaskRepository, userRepo repository.UserRepository, metrics MetricsRecorder) *Service {
	return &Service{
		taskRepo: taskRepo,
		userRepo: userRepo,
		metrics:  metrics,
		now:      time.Now,
	}
}

// List はタスク一覧をユーザーの完了状況付きで返す。
func (s *Service) List(ctx context.Context, userID int64) ([]TaskWithStatus, error) {
	tasks, err := s.taskRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	completions, err := s.taskRepo.ListCompletions(ctx, userID)
	if err != nil {
		return nil, err
	}

	latest := make(map[string]time.Time, len(completions))
	for _, c := range completions {
		if t, ok := latest[c.TaskID]; !ok || c.CompletedAt.After(t) {
			latest[c.TaskID] = c.CompletedAt
		}
	}

	result := make([]TaskWithStatus, 0, len(tasks))
	for _, t := range tasks {
		tws := TaskWithStatus{Task: *t}
		if completedAt, ok := latest[t.ID]; ok {
			tws.Completed = !s.repeatable(t, completedAt)
			at := completedAt
			tws.CompletedAt = &at
		}
		result = append(result, tws)
	}
	return result, nil
}

// Complete はタスクを完了扱いにし、報酬のキーを付与する。
// watch_ad/specialタスクは1回のみ、dailyタスクはUTC日付ごとに1回完了できる。
func (s *Service) Complete(ctx context.Context, userID int64, taskID string) (*CompleteResult, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, model.NewTaskNotFoundError(taskID)
	}

	lastCompleted, err := s.taskRepo.LastCompletedAt(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if lastCompleted != nil && !s.repeatable(task, *lastCompleted) {
		return nil, model.NewTaskAlreadyDoneError(taskID)
	}

	user, err := s.userRepo.AddKeys(ctx, userID, task.Reward)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	completion := &model.TaskCompletion{
		UserID:      userID,
		TaskID:      taskID,
		CompletedAt: s.now(),
	}
	if err := s.taskRepo.RecordCompletion(ctx, completion); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordTaskCompleted()
	}
	slog.Info("task completed",
		slog.Int64("user_id", userID),
		slog.String("task_id", taskID),
		slog.Int("reward", task.Reward),
	)

	return &CompleteResult{Task: task, User: user}, nil
}

// repeatable は直近完了済みのタスクを再度完了できるかを返す。
// dailyタスクのみ、完了日時が現在とは別のUTC日付であれば再完了できる。
func (s *Service) repeatable(task *model.Task, lastCompleted time.Time) bool {
	if task.Type != model.TaskTypeDaily {
		return false
	}
	y1, m1, d1 := lastCompleted.UTC().Date()
	y2, m2, d2 := s.now().UTC().Date()
	return y1 != y2 || m1 != m2 || d1 != d2
}
