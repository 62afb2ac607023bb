package insight

import (
	"time"

	"github.com/google/uuid"
)

const (
	TypePattern     = "pattern"
	TypePrediction  = "prediction"
	TypeCelebration = "celebration"
	TypeSuggestion  = "suggestion"
)

type Insight struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Type        string    `json:"type" db:"type"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Dismissed   bool      `json:"dismissed" db:"dismissed"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
