package insight

import "fmt"

// MaxPerRun caps how many insights a single generation run persists.
const MaxPerRun = 3

var milestones = map[int]bool{7: true, 21: true, 30: true, 100: true}

// HabitActivity is a habit's trailing-30-day activity summary, the input
// the rules operate on.
type HabitActivity struct {
	Name           string
	TimeOfDay      string
	CurrentStreak  int
	CompletedCount int // completed ledger entries inside the window
	Rate           int // 30-day completion rate, 0-100
}

// Candidate is an insight the rules want persisted.
type Candidate struct {
	Type        string
	Title       string
	Description string
}

// Build runs the four insight rules over the habits, in fixed order:
// pattern, celebration, prediction, suggestion. At most MaxPerRun
// candidates are returned; anything past the cap is discarded, not queued.
func Build(habits []HabitActivity) []Candidate {
	if len(habits) == 0 {
		return nil
	}

	var out []Candidate

	// Pattern: strong morning habits.
	for _, h := range habits {
		if h.CompletedCount >= 10 && h.Rate > 80 && h.TimeOfDay == "Morning" {
			out = append(out, Candidate{
				Type:  TypePattern,
				Title: fmt.Sprintf("%s thriving in mornings!", h.Name),
				Description: fmt.Sprintf(
					"You complete %q %d%% of the time in the morning. Your consistency is impressive!",
					h.Name, h.Rate),
			})
		}
	}

	// Celebration: streak milestones, matched by strict equality. A habit
	// that streaks past a milestone between runs is not retroactively
	// celebrated. The title names the habit so two habits hitting the same
	// milestone celebrate independently.
	for _, h := range habits {
		if milestones[h.CurrentStreak] {
			out = append(out, Candidate{
				Type:  TypeCelebration,
				Title: fmt.Sprintf("%s: %d-day streak!", h.Name, h.CurrentStreak),
				Description: fmt.Sprintf(
					"You've maintained %q for %d days straight. You're building real momentum!",
					h.Name, h.CurrentStreak),
			})
		}
	}

	// Prediction: one insight when the overall average rate is high.
	total := 0
	for _, h := range habits {
		total += h.Rate
	}
	avg := float64(total) / float64(len(habits))
	if avg > 70 {
		out = append(out, Candidate{
			Type:  TypePrediction,
			Title: "High success probability today",
			Description: fmt.Sprintf(
				"Based on your %.0f%% completion rate, you're likely to complete most of your habits today. Keep it up!",
				avg),
		})
	}

	// Suggestion: struggling evening habits.
	for _, h := range habits {
		if h.Rate < 50 && h.TimeOfDay == "Evening" {
			out = append(out, Candidate{
				Type:  TypeSuggestion,
				Title: fmt.Sprintf("Try moving %q to mornings", h.Name),
				Description: fmt.Sprintf(
					"Your evening completion rate is %d%%. Morning habits often have higher success rates.",
					h.Rate),
			})
		}
	}

	if len(out) > MaxPerRun {
		out = out[:MaxPerRun]
	}
	return out
}
