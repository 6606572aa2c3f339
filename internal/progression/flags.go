package progression

import "MindPeak/internal/model"

// FlagValue 三态标志：缺失 / false / true
// 远端记录里 NULL 即缺失；设备侧缓存只有 "true"/不存在 两种取值
type FlagValue int8

const (
	FlagAbsent FlagValue = iota
	FlagFalse
	FlagTrue
)

// True 只有明确为 true 才算数，缺失按未完成处理
func (v FlagValue) True() bool {
	return v == FlagTrue
}

func flagFromPtr(p *bool) FlagValue {
	if p == nil {
		return FlagAbsent
	}
	if *p {
		return FlagTrue
	}
	return FlagFalse
}

func flagFromBool(present bool) FlagValue {
	if present {
		return FlagTrue
	}
	return FlagAbsent
}

// Flags 一次评估用到的四个进阶标志
type Flags struct {
	Onboarding    FlagValue
	Questionnaire FlagValue
	Welcome       FlagValue
	GuidedPath    FlagValue
}

func flagsFromRecord(record *model.ProgressRecord) Flags {
	if record == nil {
		return Flags{}
	}
	return Flags{
		Onboarding:    flagFromPtr(record.OnboardingCompleted),
		Questionnaire: flagFromPtr(record.QuestionnaireCompleted),
		Welcome:       flagFromPtr(record.WelcomeShown),
		GuidedPath:    flagFromPtr(record.GuidedPathCompleted),
	}
}

// Reconcile 合并远端与设备侧的同一个标志
// 远端权威；设备侧的 true 只在刚写本地、还没镜像到远端的窗口里领先，
// 此时信它。true 永远不会被降级成 false
func Reconcile(remote, local FlagValue) FlagValue {
	if remote == FlagTrue || local == FlagTrue {
		return FlagTrue
	}
	return remote
}

// ReconcileAll 按标志逐个合并
func ReconcileAll(remote, local Flags) Flags {
	return Flags{
		Onboarding:    Reconcile(remote.Onboarding, local.Onboarding),
		Questionnaire: Reconcile(remote.Questionnaire, local.Questionnaire),
		Welcome:       Reconcile(remote.Welcome, local.Welcome),
		GuidedPath:    Reconcile(remote.GuidedPath, local.GuidedPath),
	}
}
