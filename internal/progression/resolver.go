package progression

// Stage 漏斗阶段，严格有序
type Stage int

const (
	StageIntro Stage = iota + 1
	StageQuestionnaire
	StageWelcome
	StageGuidedPath
	StageUnlocked
)

func (s Stage) String() string {
	switch s {
	case StageIntro:
		return "intro"
	case StageQuestionnaire:
		return "questionnaire"
	case StageWelcome:
		return "welcome"
	case StageGuidedPath:
		return "guided_path"
	case StageUnlocked:
		return "unlocked"
	default:
		return "unknown"
	}
}

// 各阶段对应的客户端路由
const (
	RouteIntro         = "/onboarding/intro"
	RouteQuestionnaire = "/onboarding/questionnaire"
	RouteWelcome       = "/onboarding/welcome"
	RouteGuidedPath    = "/path"
	RouteCelebration   = "/path/celebration"
)

// RouteOverrides 每条路由可豁免的检查
// 阶段页面至少豁免自己那级检查，否则会原地跳转成环
type RouteOverrides struct {
	SkipOnboarding    bool
	SkipQuestionnaire bool
	SkipWelcome       bool
	SkipGuidedPath    bool
}

// RoutePolicy 路由策略表：豁免声明 + 默认落地路由集合
type RoutePolicy struct {
	overrides map[string]RouteOverrides
	landing   map[string]bool
}

// NewRoutePolicy 构建策略表，landing 为默认落地路由集合
func NewRoutePolicy(landing []string) *RoutePolicy {
	p := &RoutePolicy{
		overrides: map[string]RouteOverrides{
			RouteIntro:         {SkipOnboarding: true},
			RouteQuestionnaire: {SkipQuestionnaire: true},
			RouteWelcome:       {SkipWelcome: true},
			RouteGuidedPath:    {SkipGuidedPath: true},
			RouteCelebration:   {SkipGuidedPath: true},
		},
		landing: make(map[string]bool, len(landing)),
	}

	for _, route := range landing {
		p.landing[route] = true
	}

	return p
}

// OverridesFor 查询路由的豁免声明，未声明的路由没有任何豁免
func (p *RoutePolicy) OverridesFor(route string) RouteOverrides {
	return p.overrides[route]
}

// IsDefaultLanding 是否属于默认落地路由
// 不在集合里的深链（资料页、支付页等）对第 4 级检查直接放行
func (p *RoutePolicy) IsDefaultLanding(route string) bool {
	return p.landing[route]
}

// StageRoute 阶段对应的跳转目标
func StageRoute(stage Stage) string {
	switch stage {
	case StageIntro:
		return RouteIntro
	case StageQuestionnaire:
		return RouteQuestionnaire
	case StageWelcome:
		return RouteWelcome
	case StageGuidedPath:
		return RouteGuidedPath
	default:
		return ""
	}
}

// Resolution 决策结果
type Resolution struct {
	Allowed bool
	Stage   Stage // Allowed 为 false 时的目标阶段
}

// Resolve 纯函数：有序短路检查，后面的检查默认前面的都已通过
//
//  1. 未豁免且 onboarding 未完成 -> Intro
//  2. 未豁免且问卷未完成且非老用户 -> Questionnaire
//  3. 未豁免且 welcome 未看过且非老用户 -> Welcome
//  4. 未豁免且路径未完成且非老用户且请求的是默认落地路由 -> GuidedPath
//  5. 放行
func Resolve(flags Flags, isExisting bool, ov RouteOverrides, defaultLanding bool) Resolution {
	if !ov.SkipOnboarding && !flags.Onboarding.True() {
		return Resolution{Stage: StageIntro}
	}

	if !ov.SkipQuestionnaire && !flags.Questionnaire.True() && !isExisting {
		return Resolution{Stage: StageQuestionnaire}
	}

	if !ov.SkipWelcome && !flags.Welcome.True() && !isExisting {
		return Resolution{Stage: StageWelcome}
	}

	if !ov.SkipGuidedPath && !flags.GuidedPath.True() && !isExisting && defaultLanding {
		return Resolution{Stage: StageGuidedPath}
	}

	return Resolution{Allowed: true, Stage: StageUnlocked}
}
