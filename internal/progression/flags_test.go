package progression

import (
	"testing"

	"MindPeak/internal/model"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name   string
		remote FlagValue
		local  FlagValue
		want   FlagValue
	}{
		{"both absent", FlagAbsent, FlagAbsent, FlagAbsent},
		{"remote true wins", FlagTrue, FlagAbsent, FlagTrue},
		{"local true wins during mirror window", FlagFalse, FlagTrue, FlagTrue},
		{"local absent keeps remote false", FlagFalse, FlagAbsent, FlagFalse},
		{"both true", FlagTrue, FlagTrue, FlagTrue},
		{"remote absent local absent stays absent", FlagAbsent, FlagFalse, FlagAbsent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reconcile(tt.remote, tt.local); got != tt.want {
				t.Errorf("Reconcile(%v, %v) = %v, want %v", tt.remote, tt.local, got, tt.want)
			}
		})
	}
}

// true 一旦出现就不会被另一侧的任何取值降级
func TestReconcileMonotonic(t *testing.T) {
	values := []FlagValue{FlagAbsent, FlagFalse, FlagTrue}
	for _, other := range values {
		if got := Reconcile(FlagTrue, other); got != FlagTrue {
			t.Errorf("Reconcile(true, %v) = %v, want true", other, got)
		}
		if got := Reconcile(other, FlagTrue); got != FlagTrue {
			t.Errorf("Reconcile(%v, true) = %v, want true", other, got)
		}
	}
}

func TestFlagsFromRecord(t *testing.T) {
	if got := flagsFromRecord(nil); got != (Flags{}) {
		t.Errorf("nil record should produce all-absent flags, got %+v", got)
	}

	record := &model.ProgressRecord{
		OnboardingCompleted:    boolPtr(true),
		QuestionnaireCompleted: boolPtr(false),
		// WelcomeShown / GuidedPathCompleted 保持 NULL
	}

	got := flagsFromRecord(record)
	if got.Onboarding != FlagTrue {
		t.Errorf("Onboarding = %v, want true", got.Onboarding)
	}
	if got.Questionnaire != FlagFalse {
		t.Errorf("Questionnaire = %v, want false", got.Questionnaire)
	}
	if got.Welcome != FlagAbsent || got.GuidedPath != FlagAbsent {
		t.Errorf("NULL columns should map to absent, got %+v", got)
	}
}

func TestFlagValueTrue(t *testing.T) {
	if FlagAbsent.True() || FlagFalse.True() {
		t.Error("absent and false must not count as true")
	}
	if !FlagTrue.True() {
		t.Error("true must count as true")
	}
}
