package model

import "time"

// TaskType はタスクの種別を表す。
type TaskType string

const (
	// TaskTypeWatchAd は広告視聴タスク。
	TaskTypeWatchAd TaskType = "watch_ad"
	// TaskTypeDaily はデイリータスク。UTC日付ごとに1回完了できる。
	TaskTypeDaily TaskType = "daily"
	// TaskTypeSpecial はスペシャルタスク（友達招待等）。
	TaskTypeSpecial TaskType = "special"
)

// Task は報酬付きタスクのカタログエントリを表す。
type Task struct {
	ID              string
	Name            string
	Description     string
	Reward          int // 完了時に付与されるキー数
	Type            TaskType
	DurationSeconds int
}

// TaskCompletion はユーザーによるタスク完了の記録を表す。
type TaskCompletion struct {
	UserID      int64
	TaskID      string
	CompletedAt time.Time
}
