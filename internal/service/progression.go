package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"MindPeak/config"
	"MindPeak/internal/cache"
	"MindPeak/internal/model"
	"MindPeak/internal/model/dto"
	"MindPeak/internal/progression"
	"MindPeak/internal/queue"
	"MindPeak/internal/repository"
	pkgerrors "MindPeak/pkg/errors"
	"MindPeak/pkg/logger"
)

var (
	progressionService *ProgressionService
	progressionOnce    sync.Once
)

// Progression 获取进阶闸门服务单例
func Progression() *ProgressionService {
	progressionOnce.Do(func() {
		flags := cache.NewFlagStore()

		collector := &progression.Collector{
			Users:   repository.UserRepo{},
			Records: repository.ProgressRepo{},
			Stats:   repository.StatsRepo{},
			Flags:   flags,
			Timeout: time.Duration(config.Cfg.SignalCollectTimeoutSeconds) * time.Second,
		}

		classifier := progression.ClassifierConfig{
			ExistingAccountAge:           time.Duration(config.Cfg.ExistingAccountAgeDays) * 24 * time.Hour,
			PremiumRequiresQuestionnaire: config.Cfg.PremiumRequiresQuestionnaire,
		}

		progressionService = &ProgressionService{
			flags:    flags,
			records:  repository.ProgressRepo{},
			stats:    repository.StatsRepo{},
			gate: progression.NewGate(
				collector,
				classifier,
				progression.NewRoutePolicy(config.Cfg.LandingRoutes()),
				progression.BypassPolicy{Flags: flags},
				config.Cfg.GuidedPathDays,
			),
		}
	})
	return progressionService
}

type ProgressionService struct {
	flags   cache.FlagStore
	records repository.ProgressRepo
	stats   repository.StatsRepo
	gate    *progression.Gate
}

// Gate 暴露闸门给中间件
func (s *ProgressionService) Gate() *progression.Gate {
	return s.gate
}

// Evaluate 对一次路由进入做闸门评估
func (s *ProgressionService) Evaluate(ctx context.Context, ident progression.Identity, route string) (*dto.GateDecisionData, error) {
	if route == "" {
		return nil, pkgerrors.RouteMissing
	}

	decision, err := s.gate.Evaluate(ctx, ident, route)
	if err != nil {
		return nil, err
	}

	data := &dto.GateDecisionData{
		Status:       decision.State.String(),
		EvaluationID: decision.EvaluationID,
	}

	if decision.State == progression.StateRedirecting {
		data.Stage = decision.Stage.String()
		data.Redirect = &dto.RedirectInfo{
			Target:  decision.Target,
			Replace: decision.Replace,
		}
	}

	return data, nil
}

// 允许通过 API 标记完成的阶段；guided_path 只能由路径状态机推进
var stepFlags = map[string]string{
	"onboarding":    cache.FlagOnboardingCompleted,
	"questionnaire": cache.FlagQuestionnaireCompleted,
	"welcome":       cache.FlagWelcomeShown,
}

// CompleteStep 标记某个漏斗阶段完成
//
// 先写设备侧再镜像远端：本地写入后用户立刻能通过下一次评估，
// 远端镜像失败时靠 Reconcile 的本地 true 领先语义兜底，并留日志重试
func (s *ProgressionService) CompleteStep(ctx context.Context, ident progression.Identity, step string) (*dto.CompleteStepData, error) {
	flag, ok := stepFlags[step]
	if !ok {
		return nil, pkgerrors.StepInvalid
	}

	if err := s.flags.Set(ctx, ident.UserID, flag); err != nil {
		return nil, fmt.Errorf("failed to set local flag: %w", err)
	}

	t := true
	patch := model.ProgressPatch{}
	switch flag {
	case cache.FlagOnboardingCompleted:
		patch.OnboardingCompleted = &t
	case cache.FlagQuestionnaireCompleted:
		patch.QuestionnaireCompleted = &t
	case cache.FlagWelcomeShown:
		patch.WelcomeShown = &t
	}

	if err := s.records.Merge(ctx, ident.UserID, patch); err != nil {
		// 本地已生效，远端镜像等下一次写入或人工修复
		logger.Logger.Error("Failed to mirror step completion to remote record",
			zap.Int64("user_id", ident.UserID),
			zap.String("step", step),
			zap.Error(err),
		)
	}

	if err := queue.PublishStageCompleted(model.StageCompletedMessage{
		UserID: ident.UserID,
		Stage:  step,
	}); err != nil {
		logger.Logger.Warn("Failed to publish stage completed event",
			zap.Int64("user_id", ident.UserID),
			zap.String("step", step),
			zap.Error(err),
		)
	}

	return &dto.CompleteStepData{Step: step, Completed: true}, nil
}

// Status 汇总当前用户的进阶状态，走和闸门同一条收集管线
func (s *ProgressionService) Status(ctx context.Context, ident progression.Identity) (*dto.ProgressionStatusData, error) {
	result := s.gate.Collector.Collect(ctx, ident)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	isExisting := progression.IsExistingUser(s.gate.Classifier, result.Signals, result.Merged, time.Now())

	data := &dto.ProgressionStatusData{
		BadgeCount:             result.Signals.BadgeCount,
		CompletedExerciseCount: result.Signals.CompletedExerciseCount,
		IsPremium:              result.Signals.IsPremium,
		IsExisting:             isExisting,
		OnboardingCompleted:    result.Merged.Onboarding.True(),
		QuestionnaireCompleted: result.Merged.Questionnaire.True(),
		WelcomeShown:           result.Merged.Welcome.True(),
		GuidedPathCompleted:    result.Merged.GuidedPath.True(),
	}
	if result.Signals.RegisteredAt != nil {
		data.RegisteredAt = result.Signals.RegisteredAt.Format(time.RFC3339)
	}

	return data, nil
}

// SignOut 登出：清空设备侧标志并作废飞行中的评估。远端记录保留
func (s *ProgressionService) SignOut(ctx context.Context, userID int64) error {
	s.gate.InvalidateIdentity(userID)

	if err := cache.ClearUserFlags(ctx, s.flags, userID); err != nil {
		return fmt.Errorf("failed to clear local flags: %w", err)
	}

	logger.Logger.Info("Cleared local flags on sign-out",
		zap.Int64("user_id", userID),
	)

	return nil
}

// Reset 管理员发起的账号重置，唯一允许 true 退回 false 的路径：
// 远端记录归零、设备侧标志清空、飞行中评估作废
func (s *ProgressionService) Reset(ctx context.Context, ident progression.Identity, targetUserID int64) error {
	if !ident.IsAdmin {
		return pkgerrors.AdminOnly
	}

	if err := s.records.Reset(ctx, targetUserID); err != nil {
		return err
	}

	if err := cache.ClearUserFlags(ctx, s.flags, targetUserID); err != nil {
		return fmt.Errorf("failed to clear local flags: %w", err)
	}

	s.gate.InvalidateIdentity(targetUserID)

	logger.Logger.Info("Progression record reset by administrator",
		zap.Int64("admin_id", ident.UserID),
		zap.Int64("user_id", targetUserID),
	)

	return nil
}
