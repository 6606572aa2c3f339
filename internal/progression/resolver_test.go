package progression

import "testing"

func testPolicy() *RoutePolicy {
	return NewRoutePolicy([]string{"/", "/home", "/exercises"})
}

func TestResolveOrderedChecks(t *testing.T) {
	tests := []struct {
		name       string
		flags      Flags
		isExisting bool
		route      string
		allowed    bool
		stage      Stage
	}{
		{
			name:  "brand new user lands on intro",
			route: "/home",
			stage: StageIntro,
		},
		{
			name:  "onboarding done goes to questionnaire",
			flags: Flags{Onboarding: FlagTrue},
			route: "/home",
			stage: StageQuestionnaire,
		},
		{
			name:  "questionnaire done goes to welcome",
			flags: Flags{Onboarding: FlagTrue, Questionnaire: FlagTrue},
			route: "/home",
			stage: StageWelcome,
		},
		{
			name:  "welcome shown goes to guided path on landing route",
			flags: Flags{Onboarding: FlagTrue, Questionnaire: FlagTrue, Welcome: FlagTrue},
			route: "/home",
			stage: StageGuidedPath,
		},
		{
			name:    "all flags true is fully unlocked",
			flags:   Flags{Onboarding: FlagTrue, Questionnaire: FlagTrue, Welcome: FlagTrue, GuidedPath: FlagTrue},
			route:   "/home",
			allowed: true,
		},
		{
			name:    "deep link skips the guided path check",
			flags:   Flags{Onboarding: FlagTrue, Questionnaire: FlagTrue, Welcome: FlagTrue},
			route:   "/profile/settings",
			allowed: true,
		},
		{
			name:       "existing user skips questionnaire welcome and path",
			flags:      Flags{Onboarding: FlagTrue},
			isExisting: true,
			route:      "/home",
			allowed:    true,
		},
		{
			name:       "existing user still needs onboarding",
			isExisting: true,
			route:      "/home",
			stage:      StageIntro,
		},
		{
			name:  "false flag behaves like absent",
			flags: Flags{Onboarding: FlagFalse},
			route: "/home",
			stage: StageIntro,
		},
	}

	policy := testPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ov := policy.OverridesFor(tt.route)
			res := Resolve(tt.flags, tt.isExisting, ov, policy.IsDefaultLanding(tt.route))

			if res.Allowed != tt.allowed {
				t.Fatalf("Allowed = %v, want %v", res.Allowed, tt.allowed)
			}
			if !tt.allowed && res.Stage != tt.stage {
				t.Errorf("Stage = %v, want %v", res.Stage, tt.stage)
			}
		})
	}
}

// 阶段页面必须豁免自己那级检查，否则原地成环
func TestResolveStagePagesExemptThemselves(t *testing.T) {
	policy := testPolicy()

	tests := []struct {
		route string
		flags Flags
	}{
		{RouteIntro, Flags{}},
		{RouteQuestionnaire, Flags{Onboarding: FlagTrue}},
		{RouteWelcome, Flags{Onboarding: FlagTrue, Questionnaire: FlagTrue}},
		{RouteGuidedPath, Flags{Onboarding: FlagTrue, Questionnaire: FlagTrue, Welcome: FlagTrue}},
		{RouteCelebration, Flags{Onboarding: FlagTrue, Questionnaire: FlagTrue, Welcome: FlagTrue}},
	}

	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			ov := policy.OverridesFor(tt.route)
			res := Resolve(tt.flags, false, ov, policy.IsDefaultLanding(tt.route))

			if !res.Allowed && StageRoute(res.Stage) == tt.route {
				t.Errorf("route %s redirects to itself", tt.route)
			}
		})
	}
}

// 对任意标志组合，老用户只可能被 onboarding 检查拦住
func TestResolveExistingUserOnlyBlockedByOnboarding(t *testing.T) {
	policy := testPolicy()
	values := []FlagValue{FlagAbsent, FlagFalse, FlagTrue}

	for _, q := range values {
		for _, w := range values {
			for _, g := range values {
				flags := Flags{Onboarding: FlagTrue, Questionnaire: q, Welcome: w, GuidedPath: g}
				res := Resolve(flags, true, policy.OverridesFor("/home"), true)
				if !res.Allowed {
					t.Fatalf("existing user blocked at %v with flags %+v", res.Stage, flags)
				}
			}
		}
	}
}

func TestStageRoute(t *testing.T) {
	tests := []struct {
		stage Stage
		want  string
	}{
		{StageIntro, RouteIntro},
		{StageQuestionnaire, RouteQuestionnaire},
		{StageWelcome, RouteWelcome},
		{StageGuidedPath, RouteGuidedPath},
		{StageUnlocked, ""},
	}

	for _, tt := range tests {
		if got := StageRoute(tt.stage); got != tt.want {
			t.Errorf("StageRoute(%v) = %q, want %q", tt.stage, got, tt.want)
		}
	}
}
