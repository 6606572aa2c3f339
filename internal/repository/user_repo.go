package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"MindPeak/internal/model"
	pkgerrors "MindPeak/pkg/errors"
	"MindPeak/storage/database"
)

// api 中使用的 userID 都是 public_id

type UserRepo struct{}

// GetByPublicID 根据 PublicID 查询用户
func (UserRepo) GetByPublicID(ctx context.Context, publicID int64) (*model.User, error) {
	var user model.User
	err := database.DB().WithContext(ctx).
		Where("public_id = ?", publicID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.UserNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	return &user, nil
}

// Create 创建用户
func (UserRepo) Create(ctx context.Context, user *model.User) error {
	if err := database.DB().WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
