package progression

import (
	"context"
	"sort"
	"time"

	"MindPeak/internal/model"
	pkgerrors "MindPeak/pkg/errors"
)

// PathEvent 路径状态机对外发出的事件
type PathEvent int

const (
	EventNone PathEvent = iota
	EventPathCompleted
)

// PathStore 路径进度的持久化依赖
type PathStore interface {
	Get(ctx context.Context, userID int64) (*model.PathProgress, error)
	Save(ctx context.Context, progress *model.PathProgress) error
}

// DayPathEngine 多日引导路径的状态机，状态 = {1..N}
//
// 每次转移都先持久化成功才算提交：持久化失败时返回错误，
// 内存状态不前进，下一次远端读取不会和内存悄悄分叉
type DayPathEngine struct {
	days  int
	store PathStore
}

// NewDayPathEngine 天数由外部协作方配置；<=0 属配置错误
func NewDayPathEngine(days int, store PathStore) (*DayPathEngine, error) {
	if days <= 0 {
		return nil, pkgerrors.PathMisconfig
	}
	return &DayPathEngine{days: days, store: store}, nil
}

// Days 路径总天数 N
func (e *DayPathEngine) Days() int {
	return e.days
}

// Load 读取进度；首次进入路径时创建 currentDay=1 的初始记录并持久化
// 记录永不删除，重新进入即恢复
func (e *DayPathEngine) Load(ctx context.Context, userID int64) (*model.PathProgress, error) {
	progress, err := e.store.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	if progress != nil {
		return progress, nil
	}

	now := time.Now()
	progress = &model.PathProgress{
		UserID:        userID,
		CurrentDay:    1,
		CompletedDays: model.DaySet{},
		StartedAt:     now,
		LastUpdated:   now,
	}

	if err := e.store.Save(ctx, progress); err != nil {
		return nil, err
	}

	return progress, nil
}

// Advance 前进一天，仅当当前天已完成；已在第 N 天时发出路径完成事件
func (e *DayPathEngine) Advance(ctx context.Context, userID int64) (*model.PathProgress, PathEvent, error) {
	progress, err := e.Load(ctx, userID)
	if err != nil {
		return nil, EventNone, err
	}

	if !progress.CompletedDays.Contains(progress.CurrentDay) {
		return nil, EventNone, pkgerrors.PathDayPending
	}

	if progress.CurrentDay >= e.days {
		return progress, EventPathCompleted, nil
	}

	next := *progress
	next.CurrentDay = progress.CurrentDay + 1

	if err := e.store.Save(ctx, &next); err != nil {
		return nil, EventNone, err
	}

	return &next, EventNone, nil
}

// Retreat 后退一天，永远允许，下限 1，不动 completedDays
func (e *DayPathEngine) Retreat(ctx context.Context, userID int64) (*model.PathProgress, error) {
	progress, err := e.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if progress.CurrentDay <= 1 {
		return progress, nil
	}

	next := *progress
	next.CurrentDay = progress.CurrentDay - 1

	if err := e.store.Save(ctx, &next); err != nil {
		return nil, err
	}

	return &next, nil
}

// JumpTo 自由跳转到 frontier 以内的任意一天
// frontier = max(completedDays) + 1，不能越过
func (e *DayPathEngine) JumpTo(ctx context.Context, userID int64, day int) (*model.PathProgress, error) {
	if day < 1 || day > e.days {
		return nil, pkgerrors.PathDayInvalid
	}

	progress, err := e.Load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if day > progress.CompletedDays.Max()+1 {
		return nil, pkgerrors.PathDayLocked
	}

	if day == progress.CurrentDay {
		return progress, nil
	}

	next := *progress
	next.CurrentDay = day

	if err := e.store.Save(ctx, &next); err != nil {
		return nil, err
	}

	return &next, nil
}

// MarkCompleted 幂等地标记某天完成；第 N 天完成时发出路径完成事件，
// 由调用方负责把 guided_path_completed 写进两个存储并跳转庆祝页
func (e *DayPathEngine) MarkCompleted(ctx context.Context, userID int64, day int) (*model.PathProgress, PathEvent, error) {
	if day < 1 || day > e.days {
		return nil, EventNone, pkgerrors.PathDayInvalid
	}

	progress, err := e.Load(ctx, userID)
	if err != nil {
		return nil, EventNone, err
	}

	if day > progress.CompletedDays.Max()+1 {
		return nil, EventNone, pkgerrors.PathDayLocked
	}

	event := EventNone
	if day == e.days {
		event = EventPathCompleted
	}

	if progress.CompletedDays.Contains(day) {
		// 幂等：重复标记不写第二遍
		return progress, event, nil
	}

	next := *progress
	next.CompletedDays = append(model.DaySet{}, progress.CompletedDays...)
	next.CompletedDays = append(next.CompletedDays, day)
	sort.Ints(next.CompletedDays)

	if err := e.store.Save(ctx, &next); err != nil {
		return nil, EventNone, err
	}

	return &next, event, nil
}
