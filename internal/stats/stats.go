package stats

// Overview is the analytics screen payload: raw totals plus the composite
// growth score derived from them.
type Overview struct {
	TotalVisions  int     `json:"total_visions"`
	TotalHabits   int     `json:"total_habits"`
	AvgStreak     float64 `json:"avg_streak"`
	LongestStreak int     `json:"longest_streak"`
	TotalCheckIns int     `json:"total_check_ins"`
	DaysOnAscend  int     `json:"days_on_ascend"`
	GrowthScore   int     `json:"growth_score"`
}
