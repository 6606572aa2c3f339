package progression

import (
	"context"
	"errors"
	"testing"

	pkgerrors "MindPeak/pkg/errors"
)

func newTestEngine(t *testing.T, days int, store PathStore) *DayPathEngine {
	t.Helper()
	engine, err := NewDayPathEngine(days, store)
	if err != nil {
		t.Fatalf("NewDayPathEngine: %v", err)
	}
	return engine
}

func TestNewDayPathEngineRejectsInvalidDays(t *testing.T) {
	for _, days := range []int{0, -1} {
		if _, err := NewDayPathEngine(days, newMemPathStore()); !errors.Is(err, pkgerrors.PathMisconfig) {
			t.Errorf("days=%d: err = %v, want PathMisconfig", days, err)
		}
	}
}

func TestLoadCreatesInitialProgress(t *testing.T) {
	store := newMemPathStore()
	engine := newTestEngine(t, 7, store)

	progress, err := engine.Load(context.Background(), 42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if progress.CurrentDay != 1 {
		t.Errorf("CurrentDay = %d, want 1", progress.CurrentDay)
	}
	if len(progress.CompletedDays) != 0 {
		t.Errorf("CompletedDays = %v, want empty", progress.CompletedDays)
	}
	if store.saves != 1 {
		t.Errorf("initial progress not persisted, saves = %d", store.saves)
	}

	// 再次读取不重建
	again, err := engine.Load(context.Background(), 42)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.saves != 1 {
		t.Errorf("Load must not rewrite existing progress, saves = %d", store.saves)
	}
	if again.CurrentDay != 1 {
		t.Errorf("CurrentDay = %d, want 1", again.CurrentDay)
	}
}

func TestAdvanceRequiresCurrentDayCompleted(t *testing.T) {
	engine := newTestEngine(t, 7, newMemPathStore())
	ctx := context.Background()

	if _, _, err := engine.Advance(ctx, 1); !errors.Is(err, pkgerrors.PathDayPending) {
		t.Fatalf("Advance on pending day: err = %v, want PathDayPending", err)
	}

	if _, _, err := engine.MarkCompleted(ctx, 1, 1); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}

	progress, event, err := engine.Advance(ctx, 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if event != EventNone {
		t.Errorf("event = %v, want none", event)
	}
	if progress.CurrentDay != 2 {
		t.Errorf("CurrentDay = %d, want 2", progress.CurrentDay)
	}
}

func TestRetreatFloorsAtDayOne(t *testing.T) {
	store := newMemPathStore()
	engine := newTestEngine(t, 7, store)
	ctx := context.Background()

	progress, err := engine.Retreat(ctx, 1)
	if err != nil {
		t.Fatalf("Retreat: %v", err)
	}
	if progress.CurrentDay != 1 {
		t.Errorf("CurrentDay = %d, want 1", progress.CurrentDay)
	}

	// 完成第 1 天并前进后，后退永远允许且不清 completedDays
	engine.MarkCompleted(ctx, 1, 1)
	engine.Advance(ctx, 1)

	progress, err = engine.Retreat(ctx, 1)
	if err != nil {
		t.Fatalf("Retreat: %v", err)
	}
	if progress.CurrentDay != 1 {
		t.Errorf("CurrentDay = %d, want 1", progress.CurrentDay)
	}
	if !progress.CompletedDays.Contains(1) {
		t.Error("Retreat must not clear completed days")
	}
}

func TestJumpToRespectsFrontier(t *testing.T) {
	engine := newTestEngine(t, 7, newMemPathStore())
	ctx := context.Background()

	// frontier = max(completed)+1 = 1
	if _, err := engine.JumpTo(ctx, 1, 2); !errors.Is(err, pkgerrors.PathDayLocked) {
		t.Fatalf("jump beyond frontier: err = %v, want PathDayLocked", err)
	}

	engine.MarkCompleted(ctx, 1, 1)
	engine.MarkCompleted(ctx, 1, 2)

	// frontier 现在是 3
	progress, err := engine.JumpTo(ctx, 1, 3)
	if err != nil {
		t.Fatalf("JumpTo: %v", err)
	}
	if progress.CurrentDay != 3 {
		t.Errorf("CurrentDay = %d, want 3", progress.CurrentDay)
	}

	// 回头任意跳
	if _, err := engine.JumpTo(ctx, 1, 1); err != nil {
		t.Fatalf("jump back: %v", err)
	}

	for _, day := range []int{0, 8} {
		if _, err := engine.JumpTo(ctx, 1, day); !errors.Is(err, pkgerrors.PathDayInvalid) {
			t.Errorf("day=%d: err = %v, want PathDayInvalid", day, err)
		}
	}
}

func TestMarkCompletedIdempotent(t *testing.T) {
	store := newMemPathStore()
	engine := newTestEngine(t, 7, store)
	ctx := context.Background()

	if _, _, err := engine.MarkCompleted(ctx, 1, 1); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	savesAfterFirst := store.saves

	progress, event, err := engine.MarkCompleted(ctx, 1, 1)
	if err != nil {
		t.Fatalf("repeat MarkCompleted: %v", err)
	}
	if event != EventNone {
		t.Errorf("event = %v, want none", event)
	}
	if store.saves != savesAfterFirst {
		t.Error("repeated completion must not write again")
	}
	if got := len(progress.CompletedDays); got != 1 {
		t.Errorf("CompletedDays has %d entries, want 1", got)
	}
}

func TestMarkCompletedFinalDayEmitsEvent(t *testing.T) {
	engine := newTestEngine(t, 3, newMemPathStore())
	ctx := context.Background()

	for day := 1; day <= 2; day++ {
		if _, event, err := engine.MarkCompleted(ctx, 1, day); err != nil || event != EventNone {
			t.Fatalf("day %d: event=%v err=%v", day, event, err)
		}
	}

	progress, event, err := engine.MarkCompleted(ctx, 1, 3)
	if err != nil {
		t.Fatalf("final day: %v", err)
	}
	if event != EventPathCompleted {
		t.Errorf("event = %v, want EventPathCompleted", event)
	}
	if !progress.CompletedDays.Contains(3) {
		t.Error("final day missing from CompletedDays")
	}

	// 重复完成最后一天仍然报事件（由消费侧幂等），但不写存储
	_, event, err = engine.MarkCompleted(ctx, 1, 3)
	if err != nil {
		t.Fatalf("repeat final day: %v", err)
	}
	if event != EventPathCompleted {
		t.Errorf("repeat event = %v, want EventPathCompleted", event)
	}
}

// 持久化失败的转移不能提交
func TestTransitionsRollBackOnSaveFailure(t *testing.T) {
	store := newMemPathStore()
	engine := newTestEngine(t, 7, store)
	ctx := context.Background()

	engine.MarkCompleted(ctx, 1, 1)

	store.saveErr = errors.New("connection reset")

	if _, _, err := engine.Advance(ctx, 1); err == nil {
		t.Fatal("Advance should surface save failure")
	}
	if _, _, err := engine.MarkCompleted(ctx, 1, 2); err == nil {
		t.Fatal("MarkCompleted should surface save failure")
	}

	store.saveErr = nil

	progress, err := engine.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if progress.CurrentDay != 1 {
		t.Errorf("CurrentDay = %d, want 1 (failed advance must not commit)", progress.CurrentDay)
	}
	if progress.CompletedDays.Contains(2) {
		t.Error("failed completion must not commit")
	}
}

// 中断后重新进入恢复原状态
func TestProgressSurvivesReentry(t *testing.T) {
	store := newMemPathStore()
	engine := newTestEngine(t, 7, store)
	ctx := context.Background()

	engine.MarkCompleted(ctx, 1, 1)
	engine.Advance(ctx, 1)
	engine.MarkCompleted(ctx, 1, 2)

	// 新的引擎实例模拟进程重启
	reborn := newTestEngine(t, 7, store)
	progress, err := reborn.Load(ctx, 1)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if progress.CurrentDay != 2 {
		t.Errorf("CurrentDay = %d, want 2", progress.CurrentDay)
	}
	if !progress.CompletedDays.Contains(1) || !progress.CompletedDays.Contains(2) {
		t.Errorf("CompletedDays = %v, want {1,2}", progress.CompletedDays)
	}
}
