package checkin

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type CheckIn struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Date      time.Time `json:"date" db:"date"`
	Energy    int       `json:"energy" db:"energy"`
	Mood      string    `json:"mood" db:"mood"`
	Gratitude string    `json:"gratitude" db:"gratitude"`
	Challenge *string   `json:"challenge,omitempty" db:"challenge"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type SubmitRequest struct {
	Energy    int     `json:"energy"`
	Mood      string  `json:"mood"`
	Gratitude string  `json:"gratitude"`
	Challenge *string `json:"challenge,omitempty"`
}

type StreakResponse struct {
	Streak        int `json:"streak"`
	TotalCheckIns int `json:"total_check_ins"`
}

var moods = map[string]bool{
	"Sad":     true,
	"Anxious": true,
	"Neutral": true,
	"Happy":   true,
	"Joyful":  true,
	"Excited": true,
}

// ValidateSubmission rejects a check-in before any write is attempted,
// naming the offending field.
func ValidateSubmission(req *SubmitRequest) error {
	if req.Energy < 1 || req.Energy > 5 {
		return fmt.Errorf("energy must be between 1 and 5")
	}
	if !moods[req.Mood] {
		return fmt.Errorf("unknown mood %q", req.Mood)
	}
	if strings.TrimSpace(req.Gratitude) == "" {
		return fmt.Errorf("gratitude must not be empty")
	}
	return nil
}
