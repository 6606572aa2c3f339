package progression

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	pkgerrors "MindPeak/pkg/errors"
	"MindPeak/pkg/logger"
	"MindPeak/pkg/metrics"
)

// GateState 一次评估的状态机：Pending -> Redirecting | Allowed | Bypassed
// 导航只有一个提交点，杜绝双跳和闪烁
type GateState int8

const (
	StatePending GateState = iota
	StateAllowed
	StateRedirecting
	StateBypassed
)

func (s GateState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAllowed:
		return "allowed"
	case StateRedirecting:
		return "redirect"
	case StateBypassed:
		return "bypassed"
	default:
		return "unknown"
	}
}

// Decision 闸门对一次路由进入的最终裁决
type Decision struct {
	State        GateState
	Stage        Stage  // Redirecting 时的目标阶段
	Target       string // Redirecting 时的跳转路由
	Replace      bool   // 始终 replace，被拦截路由不能留在历史栈
	EvaluationID string
}

// Gate 有状态的编排器，也是唯一允许产生副作用的组件
//
// 流程：BypassPolicy -> Collector（全量 join）-> 分类 -> 解析 -> 提交。
// Collector 返回之前绝不解析：过早的部分数据是误跳转的头号来源，
// 要在结构上堵死而不是事后修补
type Gate struct {
	Collector  *Collector
	Classifier ClassifierConfig
	Policy     *RoutePolicy
	Bypass     BypassPolicy
	PathDays   int

	// 每用户的评估序号，登出/换号时递增，飞行中的旧结果直接作废
	seqMu sync.Mutex
	seq   map[int64]uint64
}

func NewGate(collector *Collector, classifier ClassifierConfig, policy *RoutePolicy, bypass BypassPolicy, pathDays int) *Gate {
	return &Gate{
		Collector:  collector,
		Classifier: classifier,
		Policy:     policy,
		Bypass:     bypass,
		PathDays:   pathDays,
		seq:        make(map[int64]uint64),
	}
}

func (g *Gate) currentSeq(userID int64) uint64 {
	g.seqMu.Lock()
	defer g.seqMu.Unlock()
	return g.seq[userID]
}

// InvalidateIdentity 身份变化（登出/重新登录）时调用，
// 使该用户所有飞行中的评估作废
func (g *Gate) InvalidateIdentity(userID int64) {
	g.seqMu.Lock()
	g.seq[userID]++
	g.seqMu.Unlock()
}

// Evaluate 对一次路由进入做完整评估
//
// 每次路由进入都从零重算，阶段结论不跨导航缓存（两次导航之间标志
// 可能已经变了）。身份在收集期间发生变化时返回 ErrStaleEvaluation，
// 结果必须丢弃而不是并进新身份的评估
func (g *Gate) Evaluate(ctx context.Context, ident Identity, route string) (Decision, error) {
	start := time.Now()
	decision := Decision{
		State:        StatePending,
		Replace:      true,
		EvaluationID: uuid.NewString(),
	}

	// 短路：管理员或完全解锁，连收集都不做
	if g.Bypass.Bypass(ctx, ident) {
		decision.State = StateBypassed
		g.commit(ident, route, &decision, start)
		return decision, nil
	}

	seqBefore := g.currentSeq(ident.UserID)

	result := g.Collector.Collect(ctx, ident)

	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	if g.currentSeq(ident.UserID) != seqBefore {
		logger.Logger.Info("Discarding stale evaluation after identity change",
			zap.Int64("user_id", ident.UserID),
			zap.String("evaluation_id", decision.EvaluationID),
		)
		return Decision{}, pkgerrors.ErrStaleEvaluation
	}

	// 收集后再兜一次底：unlock_all 可能在 bypass 检查失败后读成功
	if result.Signals.IsAdmin || result.Signals.HasUnlockAll {
		decision.State = StateBypassed
		g.commit(ident, route, &decision, start)
		return decision, nil
	}

	isExisting := IsExistingUser(g.Classifier, result.Signals, result.Merged, time.Now())

	ov := g.Policy.OverridesFor(route)
	if g.PathDays <= 0 {
		// 管理配置错误：引导路径天数非法，这一级闸门失效但放行，绝不成环
		logger.Logger.Error("Guided path day count misconfigured, skipping guided path stage",
			zap.Int("path_days", g.PathDays),
		)
		ov.SkipGuidedPath = true
	}

	res := Resolve(result.Merged, isExisting, ov, g.Policy.IsDefaultLanding(route))

	if res.Allowed {
		decision.State = StateAllowed
		decision.Stage = StageUnlocked
	} else {
		decision.State = StateRedirecting
		decision.Stage = res.Stage
		decision.Target = StageRoute(res.Stage)
	}

	g.commit(ident, route, &decision, start)
	return decision, nil
}

// commit 唯一提交点：记录指标和日志。导航本身由调用方按 Decision 执行一次
func (g *Gate) commit(ident Identity, route string, decision *Decision, start time.Time) {
	metrics.RecordGateDecision(context.Background(), decision.State.String(), decision.Stage.String(), time.Since(start))

	logger.Logger.Info("Gate decision committed",
		zap.Int64("user_id", ident.UserID),
		zap.String("route", route),
		zap.String("state", decision.State.String()),
		zap.String("target", decision.Target),
		zap.String("evaluation_id", decision.EvaluationID),
		zap.Duration("elapsed", time.Since(start)),
	)
}
