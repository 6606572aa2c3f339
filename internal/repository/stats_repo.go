package repository

import (
	"context"
	"fmt"
	"time"

	"MindPeak/internal/model"
	"MindPeak/storage/database"
)

// StatsRepo 徽章和练习完成数，两个计数互相独立、可独立失败
type StatsRepo struct{}

// BadgeCount 统计用户已获得的徽章数
func (StatsRepo) BadgeCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := database.DB().WithContext(ctx).
		Model(&model.Badge{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count badges: %w", err)
	}

	return count, nil
}

// ExerciseCompletionCount 统计用户的练习完成数
func (StatsRepo) ExerciseCompletionCount(ctx context.Context, userID int64) (int64, error) {
	var count int64
	err := database.DB().WithContext(ctx).
		Model(&model.ExerciseCompletion{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count exercise completions: %w", err)
	}

	return count, nil
}

// HasBadge 判断用户是否持有指定徽章
func (StatsRepo) HasBadge(ctx context.Context, userID int64, code string) (bool, error) {
	var count int64
	err := database.DB().WithContext(ctx).
		Model(&model.Badge{}).
		Where("user_id = ? AND code = ?", userID, code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query badge: %w", err)
	}

	return count > 0, nil
}

// AwardBadge 授予徽章，重复授予直接跳过（幂等）
func (StatsRepo) AwardBadge(ctx context.Context, userID int64, code string) error {
	held, err := StatsRepo{}.HasBadge(ctx, userID, code)
	if err != nil {
		return err
	}
	if held {
		return nil
	}

	badge := model.Badge{
		UserID:    userID,
		Code:      code,
		AwardedAt: time.Now(),
	}

	if err := database.DB().WithContext(ctx).Create(&badge).Error; err != nil {
		return fmt.Errorf("failed to award badge: %w", err)
	}

	return nil
}

// RecordExerciseCompletion 记录一次练习完成
func (StatsRepo) RecordExerciseCompletion(ctx context.Context, userID int64, exerciseID string) error {
	completion := model.ExerciseCompletion{
		UserID:      userID,
		ExerciseID:  exerciseID,
		CompletedAt: time.Now(),
	}

	if err := database.DB().WithContext(ctx).Create(&completion).Error; err != nil {
		return fmt.Errorf("failed to record exercise completion: %w", err)
	}

	return nil
}
