package calendar

import "time"

// Day is one cell of the habit completion heatmap.
type Day struct {
	Date      time.Time `json:"date"`
	Completed bool      `json:"completed"`
	IsToday   bool      `json:"is_today"`
}

// Heatmap covers the trailing weeks of a habit's ledger, oldest day first.
type Heatmap struct {
	HabitID string `json:"habit_id"`
	Weeks   int    `json:"weeks"`
	Days    []*Day `json:"days"`
}
