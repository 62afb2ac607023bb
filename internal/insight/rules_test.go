package insight

import (
	"strings"
	"testing"
)

func TestBuildEmpty(t *testing.T) {
	if got := Build(nil); got != nil {
		t.Errorf("expected nil for no habits, got %v", got)
	}
}

func TestBuildCelebrationMilestones(t *testing.T) {
	for _, streak := range []int{7, 21, 30, 100} {
		got := Build([]HabitActivity{{Name: "Meditation", CurrentStreak: streak}})
		if len(got) != 1 || got[0].Type != TypeCelebration {
			t.Fatalf("streak %d: expected one celebration, got %v", streak, got)
		}
	}

	// Strict equality: past the milestone means no celebration.
	for _, streak := range []int{0, 6, 8, 31, 99} {
		got := Build([]HabitActivity{{Name: "Meditation", CurrentStreak: streak}})
		for _, c := range got {
			if c.Type == TypeCelebration {
				t.Fatalf("streak %d: unexpected celebration", streak)
			}
		}
	}
}

func TestBuildCelebrationTitlesNameTheHabit(t *testing.T) {
	got := Build([]HabitActivity{
		{Name: "Meditation", CurrentStreak: 7},
		{Name: "Running", CurrentStreak: 7},
	})
	if len(got) != 2 {
		t.Fatalf("expected a celebration per habit, got %v", got)
	}
	if got[0].Title == got[1].Title {
		t.Fatalf("titles collide: %q; the second habit's celebration would be lost to dedup", got[0].Title)
	}
	for _, c := range got {
		if !strings.Contains(c.Title, "Meditation") && !strings.Contains(c.Title, "Running") {
			t.Errorf("title %q does not name its habit", c.Title)
		}
	}
}

func TestBuildPattern(t *testing.T) {
	h := HabitActivity{Name: "Journaling", TimeOfDay: "Morning", CompletedCount: 25, Rate: 83}
	got := Build([]HabitActivity{h})
	if len(got) == 0 || got[0].Type != TypePattern {
		t.Fatalf("expected pattern insight first, got %v", got)
	}

	// Under 10 completions the rule does not fire, whatever the rate.
	h.CompletedCount = 9
	for _, c := range Build([]HabitActivity{h}) {
		if c.Type == TypePattern {
			t.Fatal("pattern fired below the completion threshold")
		}
	}

	// Evening habits never match the pattern rule.
	h.CompletedCount = 25
	h.TimeOfDay = "Evening"
	for _, c := range Build([]HabitActivity{h}) {
		if c.Type == TypePattern {
			t.Fatal("pattern fired for an evening habit")
		}
	}
}

func TestBuildPrediction(t *testing.T) {
	habits := []HabitActivity{{Name: "A", Rate: 80}, {Name: "B", Rate: 65}}
	got := Build(habits)
	if len(got) != 1 || got[0].Type != TypePrediction {
		t.Fatalf("expected single prediction for avg 72.5, got %v", got)
	}

	habits[0].Rate = 70 // avg 67.5
	for _, c := range Build(habits) {
		if c.Type == TypePrediction {
			t.Fatal("prediction fired at avg <= 70")
		}
	}
}

func TestBuildSuggestion(t *testing.T) {
	h := HabitActivity{Name: "Stretching", TimeOfDay: "Evening", Rate: 40}
	got := Build([]HabitActivity{h})
	if len(got) != 1 || got[0].Type != TypeSuggestion {
		t.Fatalf("expected suggestion, got %v", got)
	}
}

func TestBuildCapAndOrder(t *testing.T) {
	// Each habit hits a different rule; the cap keeps the first three in
	// rule order: pattern, celebration, prediction.
	habits := []HabitActivity{
		{Name: "Morning Pages", TimeOfDay: "Morning", CompletedCount: 27, Rate: 90},
		{Name: "Meditation", CurrentStreak: 21, Rate: 95},
		{Name: "Reading", Rate: 95},
		{Name: "Late Workout", TimeOfDay: "Evening", Rate: 10},
	}

	got := Build(habits)
	if len(got) != MaxPerRun {
		t.Fatalf("expected %d insights, got %d", MaxPerRun, len(got))
	}
	want := []string{TypePattern, TypeCelebration, TypePrediction}
	for i, typ := range want {
		if got[i].Type != typ {
			t.Errorf("position %d: got %s, want %s", i, got[i].Type, typ)
		}
	}
}
