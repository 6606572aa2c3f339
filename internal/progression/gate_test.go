package progression

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"MindPeak/internal/cache"
	"MindPeak/internal/model"
	pkgerrors "MindPeak/pkg/errors"
)

func newTestGate(users *stubUsers, records *stubRecords, stats *stubStats, flags *memFlagStore, pathDays int) *Gate {
	return NewGate(
		testCollector(users, records, stats, flags),
		classifierCfg(),
		testPolicy(),
		BypassPolicy{Flags: flags},
		pathDays,
	)
}

func freshUser() *stubUsers {
	return &stubUsers{user: &model.User{PublicID: 1, RegisteredAt: timePtr(time.Now().Add(-time.Hour))}}
}

func TestEvaluateRedirectsNewUser(t *testing.T) {
	gate := newTestGate(freshUser(), &stubRecords{}, &stubStats{}, newMemFlagStore(), 7)

	decision, err := gate.Evaluate(context.Background(), Identity{UserID: 1}, "/home")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if decision.State != StateRedirecting {
		t.Fatalf("State = %v, want redirecting", decision.State)
	}
	if decision.Stage != StageIntro || decision.Target != RouteIntro {
		t.Errorf("redirect = %v -> %q, want intro -> %q", decision.Stage, decision.Target, RouteIntro)
	}
	if !decision.Replace {
		t.Error("redirect must use replace semantics")
	}
	if decision.EvaluationID == "" {
		t.Error("missing evaluation ID")
	}
}

func TestEvaluateAllowsUnlockedUser(t *testing.T) {
	records := &stubRecords{record: &model.ProgressRecord{
		UserID:                 1,
		OnboardingCompleted:    boolPtr(true),
		QuestionnaireCompleted: boolPtr(true),
		WelcomeShown:           boolPtr(true),
		GuidedPathCompleted:    boolPtr(true),
	}}
	gate := newTestGate(freshUser(), records, &stubStats{}, newMemFlagStore(), 7)

	decision, err := gate.Evaluate(context.Background(), Identity{UserID: 1}, "/home")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if decision.State != StateAllowed {
		t.Errorf("State = %v, want allowed", decision.State)
	}
}

// 管理员对整个闸门短路，连信号都不收集
func TestEvaluateAdminBypassShortCircuits(t *testing.T) {
	users := freshUser()
	gate := newTestGate(users, &stubRecords{}, &stubStats{}, newMemFlagStore(), 7)

	decision, err := gate.Evaluate(context.Background(), Identity{UserID: 1, IsAdmin: true}, "/home")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if decision.State != StateBypassed {
		t.Fatalf("State = %v, want bypassed", decision.State)
	}
	if atomic.LoadInt32(&users.calls) != 0 {
		t.Error("admin bypass must not hit the user store")
	}
}

func TestEvaluateUnlockAllBypass(t *testing.T) {
	users := freshUser()
	flags := newMemFlagStore()
	flags.Set(context.Background(), 1, cache.FlagUnlockAll)

	gate := newTestGate(users, &stubRecords{}, &stubStats{}, flags, 7)

	decision, err := gate.Evaluate(context.Background(), Identity{UserID: 1}, "/onboarding/intro")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if decision.State != StateBypassed {
		t.Fatalf("State = %v, want bypassed", decision.State)
	}
	if atomic.LoadInt32(&users.calls) != 0 {
		t.Error("unlock-all bypass must not hit the user store")
	}
}

// 决策必须等到所有信号到齐：慢到货的用户行携带的是放行性信号
func TestEvaluateWaitsForSlowSignals(t *testing.T) {
	users := &stubUsers{
		user:  &model.User{PublicID: 1, RegisteredAt: timePtr(time.Now().Add(-30 * 24 * time.Hour))},
		delay: 50 * time.Millisecond,
	}
	records := &stubRecords{record: &model.ProgressRecord{UserID: 1, OnboardingCompleted: boolPtr(true)}}

	gate := newTestGate(users, records, &stubStats{}, newMemFlagStore(), 7)

	decision, err := gate.Evaluate(context.Background(), Identity{UserID: 1}, "/home")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	// 账号年龄只有等用户行到货才知道；过早决策会误判成新用户并跳问卷
	if decision.State != StateAllowed {
		t.Errorf("State = %v, want allowed (existing user by account age)", decision.State)
	}
}

// 收集期间身份变化，结果作废
func TestEvaluateStaleIdentityDiscarded(t *testing.T) {
	users := freshUser()
	gate := newTestGate(users, &stubRecords{}, &stubStats{}, newMemFlagStore(), 7)

	users.onGet = func() {
		gate.InvalidateIdentity(1)
	}

	_, err := gate.Evaluate(context.Background(), Identity{UserID: 1}, "/home")
	if !errors.Is(err, pkgerrors.ErrStaleEvaluation) {
		t.Fatalf("err = %v, want ErrStaleEvaluation", err)
	}
}

// 路径天数配置错误时该级检查放行，绝不成环
func TestEvaluatePathDaysMisconfigFailsOpen(t *testing.T) {
	records := &stubRecords{record: &model.ProgressRecord{
		UserID:                 1,
		OnboardingCompleted:    boolPtr(true),
		QuestionnaireCompleted: boolPtr(true),
		WelcomeShown:           boolPtr(true),
		// guided_path 缺失
	}}
	gate := newTestGate(freshUser(), records, &stubStats{}, newMemFlagStore(), 0)

	decision, err := gate.Evaluate(context.Background(), Identity{UserID: 1}, "/home")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if decision.State != StateAllowed {
		t.Errorf("State = %v, want allowed when path days misconfigured", decision.State)
	}
}

func TestEvaluateContextCanceled(t *testing.T) {
	users := freshUser()
	users.delay = 100 * time.Millisecond

	gate := newTestGate(users, &stubRecords{}, &stubStats{}, newMemFlagStore(), 7)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := gate.Evaluate(ctx, Identity{UserID: 1}, "/home"); err == nil {
		t.Fatal("Evaluate should surface context cancellation")
	}
}

// 每次评估从零重算：标志变了，下一次评估立刻反映
func TestEvaluateDoesNotCacheStageConclusions(t *testing.T) {
	records := &stubRecords{}
	gate := newTestGate(freshUser(), records, &stubStats{}, newMemFlagStore(), 7)
	ctx := context.Background()

	first, err := gate.Evaluate(ctx, Identity{UserID: 1}, "/home")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if first.Stage != StageIntro {
		t.Fatalf("Stage = %v, want intro", first.Stage)
	}

	records.record = &model.ProgressRecord{UserID: 1, OnboardingCompleted: boolPtr(true)}

	second, err := gate.Evaluate(ctx, Identity{UserID: 1}, "/home")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if second.Stage != StageQuestionnaire {
		t.Errorf("Stage = %v, want questionnaire after onboarding completes", second.Stage)
	}
}
