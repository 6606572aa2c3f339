package service

import (
	"context"
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
	"MindPeak/pkg/metrics"
)

var (
	pathService *PathService
	pathOnce    sync.Once
)

// Path 获取引导路径服务单例
func Path() *PathService {
	pathOnce.Do(func() {
		engine, err := progression.NewDayPathEngine(config.Cfg.GuidedPathDays, repository.PathRepo{})
		if err != nil {
			// 配置错误时引擎为 nil，接口层返回 PATH_MISCONFIGURED，
			// 闸门那一侧对应的阶段检查也已放行
			logger.Logger.Error("Day path engine disabled",
				zap.Int("path_days", config.Cfg.GuidedPathDays),
				zap.Error(err),
			)
		}

		pathService = &PathService{
			engine:  engine,
			flags:   cache.NewFlagStore(),
			records: repository.ProgressRepo{},
		}
	})
	return pathService
}

type PathService struct {
	engine  *progression.DayPathEngine
	flags   cache.FlagStore
	records repository.ProgressRepo
}

func (s *PathService) toState(progress *model.PathProgress) *dto.PathStateData {
	return &dto.PathStateData{
		CurrentDay:    progress.CurrentDay,
		TotalDays:     s.engine.Days(),
		CompletedDays: append([]int{}, progress.CompletedDays...),
		PathCompleted: progress.CompletedDays.Contains(s.engine.Days()),
		StartedAt:     progress.StartedAt,
		LastUpdated:   progress.LastUpdated,
	}
}

func (s *PathService) ready() error {
	if s.engine == nil {
		return pkgerrors.PathMisconfig
	}
	return nil
}

// State 读取（首次进入即创建）路径状态
func (s *PathService) State(ctx context.Context, userID int64) (*dto.PathStateData, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	progress, err := s.engine.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.toState(progress), nil
}

// Advance 前进一天
func (s *PathService) Advance(ctx context.Context, userID int64) (*dto.PathStateData, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	progress, event, err := s.engine.Advance(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics.RecordPathTransition(ctx, "advance")

	if event == progression.EventPathCompleted {
		s.onPathCompleted(ctx, userID)
	}

	return s.toState(progress), nil
}

// Retreat 后退一天
func (s *PathService) Retreat(ctx context.Context, userID int64) (*dto.PathStateData, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	progress, err := s.engine.Retreat(ctx, userID)
	if err != nil {
		return nil, err
	}
	metrics.RecordPathTransition(ctx, "retreat")

	return s.toState(progress), nil
}

// JumpTo 跳转到 frontier 以内的任意一天
func (s *PathService) JumpTo(ctx context.Context, userID int64, day int) (*dto.PathStateData, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	progress, err := s.engine.JumpTo(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	metrics.RecordPathTransition(ctx, "jump")

	return s.toState(progress), nil
}

// CompleteDay 标记某天完成
//
// 返回的 completed 表示整条路径是否就此走完，接口层据此下发庆祝页跳转
func (s *PathService) CompleteDay(ctx context.Context, userID int64, day int) (*dto.PathStateData, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}

	progress, event, err := s.engine.MarkCompleted(ctx, userID, day)
	if err != nil {
		return nil, false, err
	}
	metrics.RecordPathTransition(ctx, "complete_day")

	pathCompleted := event == progression.EventPathCompleted
	if pathCompleted {
		s.onPathCompleted(ctx, userID)
	}

	return s.toState(progress), pathCompleted, nil
}

// onPathCompleted 最后一天完成：guided_path_completed 写进两个存储并发事件
// 标志写入幂等，重复触发无害
func (s *PathService) onPathCompleted(ctx context.Context, userID int64) {
	if err := s.flags.Set(ctx, userID, cache.FlagGuidedPathCompleted); err != nil {
		logger.Logger.Error("Failed to set guided path flag in local cache",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	t := true
	if err := s.records.Merge(ctx, userID, model.ProgressPatch{GuidedPathCompleted: &t}); err != nil {
		logger.Logger.Error("Failed to mirror guided path completion to remote record",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}

	if err := queue.PublishPathCompleted(model.PathCompletedMessage{
		UserID:      userID,
		CompletedAt: time.Now(),
		TotalDays:   s.engine.Days(),
	}); err != nil {
		logger.Logger.Warn("Failed to publish path completed event",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
}
