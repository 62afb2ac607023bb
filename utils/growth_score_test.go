package utils

import "testing"

func TestGrowthScore(t *testing.T) {
	tests := []struct {
		name      string
		visions   int
		habits    int
		avgStreak float64
		checkIns  int
		want      int
	}{
		{"zero", 0, 0, 0, 0, 0},
		{"weighted_sum", 3, 5, 4, 10, 73}, // 30 + 25 + 8 + 10
		{"rounding", 0, 0, 0.6, 0, 1},     // 1.2 rounds to 1
		{"exactly_100", 10, 0, 0, 0, 100},
		{"clamped", 50, 40, 30, 200, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GrowthScore(tt.visions, tt.habits, tt.avgStreak, tt.checkIns)
			if got != tt.want {
				t.Errorf("GrowthScore() = %d, want %d", got, tt.want)
			}
		})
	}
}
