package progression

import (
	"context"
	"errors"
	"testing"
	"time"

	"MindPeak/internal/cache"
	"MindPeak/internal/model"
)

func testCollector(users *stubUsers, records *stubRecords, stats *stubStats, flags *memFlagStore) *Collector {
	return &Collector{
		Users:   users,
		Records: records,
		Stats:   stats,
		Flags:   flags,
		Timeout: 5 * time.Second,
	}
}

func TestCollectJoinsAllSignals(t *testing.T) {
	registered := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	users := &stubUsers{user: &model.User{PublicID: 1, IsPremium: true, RegisteredAt: timePtr(registered)}}
	records := &stubRecords{record: &model.ProgressRecord{UserID: 1, OnboardingCompleted: boolPtr(true)}}
	stats := &stubStats{badges: 2, exercises: 5}
	flags := newMemFlagStore()
	flags.Set(context.Background(), 1, cache.FlagWelcomeShown)

	result := testCollector(users, records, stats, flags).Collect(context.Background(), Identity{UserID: 1})

	if result.Signals.BadgeCount != 2 || result.Signals.CompletedExerciseCount != 5 {
		t.Errorf("counts = %d/%d, want 2/5", result.Signals.BadgeCount, result.Signals.CompletedExerciseCount)
	}
	if !result.Signals.IsPremium {
		t.Error("IsPremium not picked up from user row")
	}
	if result.Signals.RegisteredAt == nil || !result.Signals.RegisteredAt.Equal(registered) {
		t.Errorf("RegisteredAt = %v, want %v", result.Signals.RegisteredAt, registered)
	}
	if result.Remote.Onboarding != FlagTrue {
		t.Errorf("remote Onboarding = %v, want true", result.Remote.Onboarding)
	}
	if result.Local.Welcome != FlagTrue {
		t.Errorf("local Welcome = %v, want true", result.Local.Welcome)
	}
	if result.Merged.Onboarding != FlagTrue || result.Merged.Welcome != FlagTrue {
		t.Errorf("merged = %+v, want onboarding and welcome true", result.Merged)
	}
}

// 任何子信号失败都降级到安全默认值，不向上传播
func TestCollectDegradesFailedSignals(t *testing.T) {
	users := &stubUsers{err: errors.New("db down")}
	records := &stubRecords{err: errors.New("db down")}
	stats := &stubStats{badgeErr: errors.New("db down"), exerciseErr: errors.New("db down")}
	flags := newMemFlagStore()
	flags.getErr = errors.New("redis down")

	result := testCollector(users, records, stats, flags).Collect(context.Background(), Identity{UserID: 1})

	if result.Signals.BadgeCount != 0 || result.Signals.CompletedExerciseCount != 0 {
		t.Error("failed counts must degrade to zero")
	}
	if result.Signals.IsPremium || result.Signals.HasUnlockAll {
		t.Error("failed boolean signals must degrade to false")
	}
	if result.Merged != (Flags{}) {
		t.Errorf("merged = %+v, want all absent", result.Merged)
	}
}

// 刷新方向唯一：远端 true 回写本地，绝不反向
func TestCollectRefreshesDown(t *testing.T) {
	users := &stubUsers{user: &model.User{PublicID: 1, RegisteredAt: timePtr(time.Now())}}
	records := &stubRecords{record: &model.ProgressRecord{
		UserID:              1,
		OnboardingCompleted: boolPtr(true),
		WelcomeShown:        boolPtr(false),
	}}
	flags := newMemFlagStore()

	testCollector(users, records, &stubStats{}, flags).Collect(context.Background(), Identity{UserID: 1})

	if ok, _ := flags.Get(context.Background(), 1, cache.FlagOnboardingCompleted); !ok {
		t.Error("remote true must be mirrored to local cache")
	}
	if ok, _ := flags.Get(context.Background(), 1, cache.FlagWelcomeShown); ok {
		t.Error("remote false must not be written to local cache")
	}
	if got := flags.setCount(); got != 1 {
		t.Errorf("writes to local cache = %d, want 1", got)
	}
}

// 本地 true 领先远端时不会被抹掉，也不会触发本地回写
func TestCollectLocalTrueLeads(t *testing.T) {
	users := &stubUsers{user: &model.User{PublicID: 1, RegisteredAt: timePtr(time.Now())}}
	flags := newMemFlagStore()
	flags.Set(context.Background(), 1, cache.FlagQuestionnaireCompleted)
	flags.sets = nil

	result := testCollector(users, &stubRecords{}, &stubStats{}, flags).Collect(context.Background(), Identity{UserID: 1})

	if result.Merged.Questionnaire != FlagTrue {
		t.Errorf("merged Questionnaire = %v, want true", result.Merged.Questionnaire)
	}
	if got := flags.setCount(); got != 0 {
		t.Errorf("writes to local cache = %d, want 0", got)
	}
}

func TestCollectReadsUnlockAll(t *testing.T) {
	users := &stubUsers{user: &model.User{PublicID: 1, RegisteredAt: timePtr(time.Now())}}
	flags := newMemFlagStore()
	flags.Set(context.Background(), 1, cache.FlagUnlockAll)

	result := testCollector(users, &stubRecords{}, &stubStats{}, flags).Collect(context.Background(), Identity{UserID: 1})

	if !result.Signals.HasUnlockAll {
		t.Error("unlock_all flag not collected")
	}
}
