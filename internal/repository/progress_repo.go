package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"MindPeak/internal/model"
	"MindPeak/storage/database"
)

// ProgressRepo 远端进阶标志记录的读写
type ProgressRepo struct{}

// Get 读取用户的进阶记录；从未写过时返回 nil（全部标志视为缺失）
func (ProgressRepo) Get(ctx context.Context, userID int64) (*model.ProgressRecord, error) {
	var record model.ProgressRecord
	err := database.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query progress record: %w", err)
	}

	return &record, nil
}

// Merge 部分更新，nil 字段不动；记录不存在时先插入
// 注意单调性：这里不做 true->false 的防护，显式账号重置走 Reset
func (ProgressRepo) Merge(ctx context.Context, userID int64, patch model.ProgressPatch) error {
	updates := map[string]interface{}{}
	if patch.OnboardingCompleted != nil {
		updates["onboarding_completed"] = *patch.OnboardingCompleted
	}
	if patch.QuestionnaireCompleted != nil {
		updates["questionnaire_completed"] = *patch.QuestionnaireCompleted
	}
	if patch.WelcomeShown != nil {
		updates["welcome_shown"] = *patch.WelcomeShown
	}
	if patch.GuidedPathCompleted != nil {
		updates["guided_path_completed"] = *patch.GuidedPathCompleted
	}

	if len(updates) == 0 {
		return nil
	}

	db := database.DB().WithContext(ctx)

	record := model.ProgressRecord{
		UserID:                 userID,
		OnboardingCompleted:    patch.OnboardingCompleted,
		QuestionnaireCompleted: patch.QuestionnaireCompleted,
		WelcomeShown:           patch.WelcomeShown,
		GuidedPathCompleted:    patch.GuidedPathCompleted,
	}

	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(&record).Error

	if err != nil {
		return fmt.Errorf("failed to merge progress record: %w", err)
	}

	return nil
}

// Reset 管理员发起的账号重置，唯一允许远端 true 变回 false 的路径
func (ProgressRepo) Reset(ctx context.Context, userID int64) error {
	f := false
	err := database.DB().WithContext(ctx).
		Model(&model.ProgressRecord{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"onboarding_completed":    f,
			"questionnaire_completed": f,
			"welcome_shown":           f,
			"guided_path_completed":   f,
		}).Error

	if err != nil {
		return fmt.Errorf("failed to reset progress record: %w", err)
	}

	return nil
}
