package progression

import (
	"testing"
	"time"
)

func classifierCfg() ClassifierConfig {
	return ClassifierConfig{
		ExistingAccountAge:           7 * 24 * time.Hour,
		PremiumRequiresQuestionnaire: true,
	}
}

func TestIsExistingUser(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	fresh := timePtr(now.Add(-time.Hour))

	tests := []struct {
		name  string
		sig   Signals
		flags Flags
		want  bool
	}{
		{
			name: "fresh account with no history",
			sig:  Signals{RegisteredAt: fresh},
			want: false,
		},
		{
			name: "any badge marks existing",
			sig:  Signals{BadgeCount: 1, RegisteredAt: fresh},
			want: true,
		},
		{
			name: "any completed exercise marks existing",
			sig:  Signals{CompletedExerciseCount: 3, RegisteredAt: fresh},
			want: true,
		},
		{
			name: "missing registration timestamp marks existing",
			sig:  Signals{},
			want: true,
		},
		{
			name: "future registration timestamp marks existing",
			sig:  Signals{RegisteredAt: timePtr(now.Add(48 * time.Hour))},
			want: true,
		},
		{
			name: "account older than threshold marks existing",
			sig:  Signals{RegisteredAt: timePtr(now.Add(-8 * 24 * time.Hour))},
			want: true,
		},
		{
			name: "account exactly at threshold is not existing",
			sig:  Signals{RegisteredAt: timePtr(now.Add(-7 * 24 * time.Hour))},
			want: false,
		},
		{
			name:  "premium with questionnaire done marks existing",
			sig:   Signals{IsPremium: true, RegisteredAt: fresh},
			flags: Flags{Questionnaire: FlagTrue},
			want:  true,
		},
		{
			name: "premium without questionnaire is not existing under strict config",
			sig:  Signals{IsPremium: true, RegisteredAt: fresh},
			want: false,
		},
	}

	cfg := classifierCfg()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsExistingUser(cfg, tt.sig, tt.flags, now); got != tt.want {
				t.Errorf("IsExistingUser() = %v, want %v", got, tt.want)
			}
		})
	}
}

// 宽松配置下 premium 本身就够
func TestIsExistingUserPremiumLoose(t *testing.T) {
	now := time.Now()
	cfg := classifierCfg()
	cfg.PremiumRequiresQuestionnaire = false

	sig := Signals{IsPremium: true, RegisteredAt: timePtr(now.Add(-time.Hour))}
	if !IsExistingUser(cfg, sig, Flags{}, now) {
		t.Error("premium alone should mark existing when questionnaire is not required")
	}
}
