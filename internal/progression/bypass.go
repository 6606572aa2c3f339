package progression

import (
	"context"

	"go.uber.org/zap"

	"MindPeak/internal/cache"
	"MindPeak/pkg/logger"
)

// BypassPolicy 管理员和持有完全解锁徽章的用户对整个闸门短路：
// 不收集、不解析、不跳转，对任何路由生效
type BypassPolicy struct {
	Flags cache.FlagStore
}

func (b BypassPolicy) Bypass(ctx context.Context, ident Identity) bool {
	if ident.IsAdmin {
		return true
	}

	unlocked, err := b.Flags.Get(ctx, ident.UserID, cache.FlagUnlockAll)
	if err != nil {
		// 读不到就当没有，走正常评估
		logger.Logger.Warn("Failed to read unlock-all flag",
			zap.Int64("user_id", ident.UserID),
			zap.Error(err),
		)
		return false
	}

	return unlocked
}
