package lesson

import (
	"time"

	"github.com/google/uuid"
)

type Lesson struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Title        string    `json:"title" db:"title"`
	Category     string    `json:"category" db:"category"`
	Content      string    `json:"content" db:"content"`
	KeyTakeaways []string  `json:"key_takeaways" db:"key_takeaways"`
	ReadTime     int       `json:"read_time" db:"read_time"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// LessonSummary is the library listing row: no content body, plus the
// requesting user's completion state.
type LessonSummary struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Category    string     `json:"category"`
	ReadTime    int        `json:"read_time"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
