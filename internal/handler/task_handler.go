package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/spinbux/internal/middleware"
	"github.com/hitoshi/spinbux/internal/task"
)

// TaskServiceInterface はタスクハンドラーが必要とするサービスインターフェース。
type TaskServiceInterface interface {
	List(ctx context.Context, userID int64) ([]task.TaskWithStatus, error)
	Complete(ctx context.Context, userID int64, taskID string) (*task.CompleteResult, error)
}

// TaskHandler はタスク管理のHTTPハンドラー。
type TaskHandler struct {
	service TaskServiceInterface
}

// NewTaskHandler はTaskHandlerを生成する。
func NewTaskHandler(service TaskServiceInterface) *TaskHandler {
	return &TaskHandler{service: service}
}

// taskResponse はタスク1件のAPIレスポンス。
type taskResponse struct {
	TaskID      string     `json:"taskId"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Reward      int        `json:"reward"`
	Type        string     `json:"type"`
	Duration    int        `json:"duration"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// ListTasks はタスク一覧を完了状況付きで返す。
// GET /api/tasks
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	tasks, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, taskResponse{
			TaskID:      t.ID,
			Name:        t.Name,
			Description: t.Description,
			Reward:      t.Reward,
			Type:        string(t.Type),
			Duration:    t.DurationSeconds,
			Completed:   t.Completed,
			CompletedAt: t.CompletedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"tasks": resp})
}

// completeTaskResponse はタスク完了のAPIレスポンス。
type completeTaskResponse struct {
	Success   bool `json:"success"`
	Reward    int  `json:"reward"`
	TotalKeys int  `json:"totalKeys"`
}

// CompleteTask はタスクを完了扱いにして報酬を付与する。
// POST /api/tasks/{id}/complete
func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorized(w)
		return
	}

	taskID := chi.URLParam(r, "id")

	result, err := h.service.Complete(r.Context(), userID, taskID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completeTaskResponse{
		Success:   true,
		Reward:    result.Task.Reward,
		TotalKeys: result.User.TotalKeys,
	})
}
