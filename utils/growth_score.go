package utils

import "math"

// GrowthScore folds engagement totals into the composite 0-100 score shown
// on the analytics screen: visions weigh 10, habits 5, the average current
// streak 2 and each check-in 1, clamped at 100.
func GrowthScore(visionCount, habitCount int, avgCurrentStreak float64, checkInCount int) int {
	raw := float64(visionCount)*10 +
		float64(habitCount)*5 +
		avgCurrentStreak*2 +
		float64(checkInCount)

	score := int(math.Round(raw))
	if score > 100 {
		return 100
	}
	return score
}
