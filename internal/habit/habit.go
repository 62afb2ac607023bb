package habit

import (
	"time"

	"github.com/google/uuid"
)

type Habit struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	UserID          uuid.UUID  `json:"user_id" db:"user_id"`
	Name            string     `json:"name" db:"name"`
	Frequency       string     `json:"frequency" db:"frequency"`
	TimeOfDay       string     `json:"time_of_day" db:"time_of_day"`
	CurrentStreak   int        `json:"current_streak" db:"current_streak"`
	LongestStreak   int        `json:"longest_streak" db:"longest_streak"`
	Paused          bool       `json:"paused" db:"paused"`
	PauseReason     *string    `json:"pause_reason,omitempty" db:"pause_reason"`
	ReminderEnabled bool       `json:"reminder_enabled" db:"reminder_enabled"`
	ReminderTime    *string    `json:"reminder_time,omitempty" db:"reminder_time"`
	LinkedVisionID  *uuid.UUID `json:"linked_vision_id,omitempty" db:"linked_vision_id"`
	LinkedPathID    *uuid.UUID `json:"linked_path_id,omitempty" db:"linked_path_id"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at" db:"updated_at"`
}

// TodayHabit is a habit joined with today's ledger entry for the dashboard.
type TodayHabit struct {
	Habit
	CompletedToday bool `json:"completed_today"`
}

// Stats carries the rolling completion rates shown on the habit detail screen.
type Stats struct {
	SevenDayRate  int `json:"seven_day_rate"`
	ThirtyDayRate int `json:"thirty_day_rate"`
	NinetyDayRate int `json:"ninety_day_rate"`
}

type HabitDetail struct {
	Habit
	Stats Stats `json:"stats"`
}

type CreateHabitRequest struct {
	Name            string  `json:"name" validate:"required"`
	Frequency       string  `json:"frequency" validate:"required"`
	TimeOfDay       string  `json:"time_of_day" validate:"required"`
	ReminderEnabled bool    `json:"reminder_enabled"`
	ReminderTime    *string `json:"reminder_time,omitempty"`
	LinkedVisionID  *string `json:"linked_vision_id,omitempty"`
	LinkedPathID    *string `json:"linked_path_id,omitempty"`
}

type UpdateHabitRequest struct {
	Name            *string `json:"name,omitempty"`
	Frequency       *string `json:"frequency,omitempty"`
	TimeOfDay       *string `json:"time_of_day,omitempty"`
	ReminderEnabled *bool   `json:"reminder_enabled,omitempty"`
	ReminderTime    *string `json:"reminder_time,omitempty"`
}

type RecordCompletionRequest struct {
	Date      string  `json:"date,omitempty"` // "2006-01-02", defaults to today
	Completed bool    `json:"completed"`
	Notes     *string `json:"notes,omitempty"`
}

type PauseRequest struct {
	Paused bool    `json:"paused"`
	Reason *string `json:"reason,omitempty"`
}

var timesOfDay = map[string]bool{
	"Morning":   true,
	"Afternoon": true,
	"Evening":   true,
	"Night":     true,
}

func ValidTimeOfDay(s string) bool {
	return timesOfDay[s]
}
