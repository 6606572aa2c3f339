package cache

import (
	"context"
	"fmt"
	"strconv"

	ri "github.com/redis/go-redis/v9"

	"MindPeak/storage/redis"
)

// 设备侧进阶标志缓存。键值词汇是跨端同步契约：值只有字面量 "true" 或
// 键不存在，其他取值一律视为缺失。不要在这里存 JSON

const flagPrefix = "flags"

// 标志名，远端记录和这里共用同一套词汇
const (
	FlagOnboardingCompleted    = "onboarding_completed"
	FlagQuestionnaireCompleted = "questionnaire_completed"
	FlagWelcomeShown           = "welcome_shown"
	FlagGuidedPathCompleted    = "guided_path_completed"
	FlagUnlockAll              = "unlock_all" // 仅设备侧，完全解锁徽章
)

// ProgressionFlagNames 四个会被远端镜像的标志（不含 unlock_all）
var ProgressionFlagNames = []string{
	FlagOnboardingCompleted,
	FlagQuestionnaireCompleted,
	FlagWelcomeShown,
	FlagGuidedPathCompleted,
}

// FlagStore 设备侧标志缓存，get/set/remove 三个动作
// SignalCollector 和 ProgressionGate 都通过它读写，方便在测试里替换
type FlagStore interface {
	Get(ctx context.Context, userID int64, flag string) (bool, error)
	Set(ctx context.Context, userID int64, flag string) error
	Remove(ctx context.Context, userID int64, flag string) error
}

type redisFlagStore struct{}

// NewFlagStore 返回基于 redis 的 FlagStore
func NewFlagStore() FlagStore {
	return redisFlagStore{}
}

func flagKey(userID int64, flag string) string {
	return redis.Key(flagPrefix, strconv.FormatInt(userID, 10), flag)
}

func (redisFlagStore) Get(ctx context.Context, userID int64, flag string) (bool, error) {
	val, err := redis.Client().Get(ctx, flagKey(userID, flag)).Result()
	if err != nil {
		if err == ri.Nil {
			return false, nil
		}
		return false, fmt.Errorf("failed to get flag %s: %w", flag, err)
	}

	return val == "true", nil
}

func (redisFlagStore) Set(ctx context.Context, userID int64, flag string) error {
	// 无 TTL：标志只会被登出清理或账号重置清理
	if err := redis.Client().Set(ctx, flagKey(userID, flag), "true", 0).Err(); err != nil {
		return fmt.Errorf("failed to set flag %s: %w", flag, err)
	}
	return nil
}

func (redisFlagStore) Remove(ctx context.Context, userID int64, flag string) error {
	if err := redis.Client().Del(ctx, flagKey(userID, flag)).Err(); err != nil {
		return fmt.Errorf("failed to remove flag %s: %w", flag, err)
	}
	return nil
}

// ClearUserFlags 登出时清空某用户的全部设备侧标志（远端记录保留）
func ClearUserFlags(ctx context.Context, store FlagStore, userID int64) error {
	flags := append([]string{}, ProgressionFlagNames...)
	flags = append(flags, FlagUnlockAll)

	var firstErr error
	for _, flag := range flags {
		if err := store.Remove(ctx, userID, flag); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
