package progression

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"MindPeak/internal/cache"
	"MindPeak/internal/model"
	"MindPeak/pkg/logger"
	"MindPeak/pkg/metrics"
)

// Identity 当前登录身份，来自身份提供方
type Identity struct {
	UserID  int64
	IsAdmin bool
}

// Signals 一次评估收集到的用户事实，每次评估重新计算，不落盘
type Signals struct {
	BadgeCount             int64
	CompletedExerciseCount int64
	RegisteredAt           *time.Time
	IsPremium              bool
	IsAdmin                bool
	HasUnlockAll           bool
}

// 收集器的只读依赖，按需在测试里替换

type UserStore interface {
	GetByPublicID(ctx context.Context, publicID int64) (*model.User, error)
}

type RecordStore interface {
	Get(ctx context.Context, userID int64) (*model.ProgressRecord, error)
}

type StatsStore interface {
	BadgeCount(ctx context.Context, userID int64) (int64, error)
	ExerciseCompletionCount(ctx context.Context, userID int64) (int64, error)
}

// CollectResult 全部子信号 join 之后的完整结果
// Collect 返回即代表所有子信号都已报数，闸门不会看到半成品
type CollectResult struct {
	Signals Signals
	Remote  Flags
	Local   Flags
	Merged  Flags
}

// Collector 信号收集器。只收集事实，不做任何决策
type Collector struct {
	Users   UserStore
	Records RecordStore
	Stats   StatsStore
	Flags   cache.FlagStore
	Timeout time.Duration
}

// Collect 并发发起全部子查询并等待全部完成
//
// 任何一个子查询失败都降级到该信号最安全的默认值（计数 0、标志缺失）
// 并记日志，不向上传播：部分结果好过把用户堵死。来源有超时兜底，
// 单个存储卡死最多拖住 Timeout
func (c *Collector) Collect(ctx context.Context, ident Identity) CollectResult {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var (
		wg     sync.WaitGroup
		result CollectResult
	)
	result.Signals.IsAdmin = ident.IsAdmin

	wg.Add(5)

	// 用户行：premium、注册时间
	go func() {
		defer wg.Done()
		user, err := c.Users.GetByPublicID(ctx, ident.UserID)
		if err != nil {
			c.degrade(ident.UserID, "user", err)
			return
		}
		result.Signals.IsPremium = user.IsPremium
		result.Signals.RegisteredAt = user.RegisteredAt
		if user.IsAdmin {
			result.Signals.IsAdmin = true
		}
	}()

	// 徽章数
	go func() {
		defer wg.Done()
		count, err := c.Stats.BadgeCount(ctx, ident.UserID)
		if err != nil {
			c.degrade(ident.UserID, "badge_count", err)
			return
		}
		result.Signals.BadgeCount = count
	}()

	// 练习完成数
	go func() {
		defer wg.Done()
		count, err := c.Stats.ExerciseCompletionCount(ctx, ident.UserID)
		if err != nil {
			c.degrade(ident.UserID, "exercise_count", err)
			return
		}
		result.Signals.CompletedExerciseCount = count
	}()

	// 远端标志记录
	go func() {
		defer wg.Done()
		record, err := c.Records.Get(ctx, ident.UserID)
		if err != nil {
			c.degrade(ident.UserID, "remote_flags", err)
			return
		}
		result.Remote = flagsFromRecord(record)
	}()

	// 设备侧标志 + 完全解锁徽章
	go func() {
		defer wg.Done()
		local, unlockAll := c.collectLocalFlags(ctx, ident.UserID)
		result.Local = local
		result.Signals.HasUnlockAll = unlockAll
	}()

	wg.Wait()

	result.Merged = ReconcileAll(result.Remote, result.Local)

	// 刷新方向唯一：远端 true、本地缺失时写回本地。绝不写 true->false
	c.refreshDown(ctx, ident.UserID, result.Remote, result.Local)

	return result
}

func (c *Collector) collectLocalFlags(ctx context.Context, userID int64) (Flags, bool) {
	read := func(flag string) FlagValue {
		present, err := c.Flags.Get(ctx, userID, flag)
		if err != nil {
			c.degrade(userID, "local:"+flag, err)
			return FlagAbsent
		}
		return flagFromBool(present)
	}

	local := Flags{
		Onboarding:    read(cache.FlagOnboardingCompleted),
		Questionnaire: read(cache.FlagQuestionnaireCompleted),
		Welcome:       read(cache.FlagWelcomeShown),
		GuidedPath:    read(cache.FlagGuidedPathCompleted),
	}

	unlockAll, err := c.Flags.Get(ctx, userID, cache.FlagUnlockAll)
	if err != nil {
		c.degrade(userID, "local:"+cache.FlagUnlockAll, err)
		unlockAll = false
	}

	return local, unlockAll
}

func (c *Collector) refreshDown(ctx context.Context, userID int64, remote, local Flags) {
	pairs := []struct {
		name   string
		remote FlagValue
		local  FlagValue
	}{
		{cache.FlagOnboardingCompleted, remote.Onboarding, local.Onboarding},
		{cache.FlagQuestionnaireCompleted, remote.Questionnaire, local.Questionnaire},
		{cache.FlagWelcomeShown, remote.Welcome, local.Welcome},
		{cache.FlagGuidedPathCompleted, remote.GuidedPath, local.GuidedPath},
	}

	for _, p := range pairs {
		if p.remote == FlagTrue && p.local != FlagTrue {
			if err := c.Flags.Set(ctx, userID, p.name); err != nil {
				// 本地缓存刷新失败不影响本次评估，下次 Collect 还会再试
				logger.Logger.Warn("Failed to refresh flag down to local cache",
					zap.Int64("user_id", userID),
					zap.String("flag", p.name),
					zap.Error(err),
				)
			}
		}
	}
}

func (c *Collector) degrade(userID int64, signal string, err error) {
	metrics.RecordSignalFailure(context.Background(), signal)
	logger.Logger.Warn("Signal fetch failed, degrading to default",
		zap.Int64("user_id", userID),
		zap.String("signal", signal),
		zap.Error(err),
	)
}
