package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"MindPeak/internal/model/dto"
	"MindPeak/internal/repository"
	pkgerrors "MindPeak/pkg/errors"
)

// api 中使用的 userID 都是 public_id

var (
	userService *UserService
	userOnce    sync.Once
)

func User() *UserService {
	userOnce.Do(func() {
		userService = &UserService{
			users: repository.UserRepo{},
			stats: repository.StatsRepo{},
		}
	})
	return userService
}

type UserService struct {
	users repository.UserRepo
	stats repository.StatsRepo
}

// GetProfile 获取用户资料
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*dto.UserProfileData, error) {
	user, err := s.users.GetByPublicID(ctx, userID)
	if err != nil {
		return nil, err
	}

	data := &dto.UserProfileData{
		PublicID:  strconv.FormatInt(user.PublicID, 10),
		Nickname:  user.Nickname,
		IsAdmin:   user.IsAdmin,
		IsPremium: user.IsPremium,
	}
	if user.RegisteredAt != nil {
		data.RegisteredAt = user.RegisteredAt.Format(time.RFC3339)
	}

	return data, nil
}

// CompleteExercise 记录一次练习完成
// 完成数是老用户判定的信号之一，所以必须落库而不是只进缓存
func (s *UserService) CompleteExercise(ctx context.Context, userID int64, exerciseID string) (*dto.CompleteExerciseData, error) {
	exerciseID = strings.TrimSpace(exerciseID)
	if exerciseID == "" {
		return nil, pkgerrors.ExerciseInvalid
	}

	if _, err := s.users.GetByPublicID(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.stats.RecordExerciseCompletion(ctx, userID, exerciseID); err != nil {
		return nil, err
	}

	count, err := s.stats.ExerciseCompletionCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &dto.CompleteExerciseData{
		ExerciseID:     exerciseID,
		CompletedCount: count,
	}, nil
}
