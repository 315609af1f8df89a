// Package cleanup はスピン履歴の自動削除ジョブを提供する。
// 保持期間（デフォルト90日）を超過したスピン記録を日次バッチで削除する。
// ユーザーの台帳（残高・キー・回数）はスピン時に反映済みのため、
// 履歴の削除が集計値に影響することはない。
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// SpinPruner は古いスピン記録の削除に必要なインターフェース。
type SpinPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupJob は保持期間を超過したスピン履歴の自動削除ジョブ。
// 日次実行のバッチジョブとして設計されており、冪等な削除処理を保証する。
type CleanupJob struct {
	spins         SpinPruner
	logger        *slog.Logger
	RetentionDays int // スピン履歴の保持日数（デフォルト: 90）
}

// NewCleanupJob は新しいCleanupJobを生成する。
// デフォルトの保持日数は90日。
func NewCleanupJob(spins SpinPruner, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		spins:         spins,
		logger:        logger,
		RetentionDays: 90,
	}
}

// Run は保持期間を超過したスピン記録を削除する。
// 冪等: 削除対象がない場合でもエラーにならない。
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()

	cutoff := time.Now().AddDate(0, 0, -j.RetentionDays)

	deletedCount, err := j.spins.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("スピン履歴クリーンアップジョブの実行に失敗しました",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("スピン履歴クリーンアップの実行に失敗: %w", err)
	}

	duration := time.Since(start)
	j.logger.Info("スピン履歴クリーンアップジョブが完了しました",
		slog.Int64("deleted_count", deletedCount),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(duration.Milliseconds())),
	)

	return nil
}
