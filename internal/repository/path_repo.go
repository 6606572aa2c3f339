package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"MindPeak/internal/model"
	"MindPeak/storage/database"
)

// PathRepo 引导路径进度的持久化
type PathRepo struct{}

// Get 读取用户的路径进度；尚未进入路径时返回 nil
func (PathRepo) Get(ctx context.Context, userID int64) (*model.PathProgress, error) {
	var progress model.PathProgress
	err := database.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		First(&progress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query path progress: %w", err)
	}

	return &progress, nil
}

// Save 持久化路径进度，按 user_id upsert
// DayPathEngine 的每次状态转移都必须先通过这里才算提交
func (PathRepo) Save(ctx context.Context, progress *model.PathProgress) error {
	progress.LastUpdated = time.Now()

	err := database.DB().WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"current_day", "completed_days", "last_updated", "updated_at",
			}),
		}).Create(progress).Error

	if err != nil {
		return fmt.Errorf("failed to save path progress: %w", err)
	}

	return nil
}
