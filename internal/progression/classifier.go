package progression

import "time"

// 老用户判定。刻意写成启发式的析取而不是打分：任何一条命中都说明
// 账号早于当前漏斗存在，绝不能被塞回新手引导。宁可漏判新用户，
// 不可错关老用户

// ClassifierConfig 老用户判定的可调参数
type ClassifierConfig struct {
	// 账号超过该年龄即视为老用户
	ExistingAccountAge time.Duration
	// premium 是否还需要问卷已完成才算老用户。
	// 历史上两处实现不一致，这里收敛成唯一配置，默认 true（较严格的组合）
	PremiumRequiresQuestionnaire bool
}

// IsExistingUser 纯函数：该用户是否是不能被推回新手引导的老用户
func IsExistingUser(cfg ClassifierConfig, sig Signals, flags Flags, now time.Time) bool {
	if sig.BadgeCount > 0 {
		return true
	}

	if sig.CompletedExerciseCount > 0 {
		return true
	}

	// 注册时间缺失：早期导入的存量账号没有这个字段
	if sig.RegisteredAt == nil {
		return true
	}

	// 注册时间在未来：时钟或导入异常，防御性按老用户处理
	if sig.RegisteredAt.After(now) {
		return true
	}

	if sig.IsPremium {
		if !cfg.PremiumRequiresQuestionnaire || flags.Questionnaire.True() {
			return true
		}
	}

	if now.Sub(*sig.RegisteredAt) > cfg.ExistingAccountAge {
		return true
	}

	return false
}
