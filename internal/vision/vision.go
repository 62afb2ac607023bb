package vision

import (
	"time"

	"github.com/google/uuid"
)

type Vision struct {
	ID           uuid.UUID `json:"id" db:"id"`
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	Title        string    `json:"title" db:"title"`
	Description  *string   `json:"description,omitempty" db:"description"`
	Category     string    `json:"category" db:"category"`
	Color        *string   `json:"color,omitempty" db:"color"`
	Icon         *string   `json:"icon,omitempty" db:"icon"`
	WhyItMatters *string   `json:"why_it_matters,omitempty" db:"why_it_matters"`
	Timeline     *string   `json:"timeline,omitempty" db:"timeline"`
	HealthScore  int       `json:"health_score" db:"health_score"`
	Archived     bool      `json:"archived" db:"archived"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// VisionWithProgress adds the derived path-completion percentage
// (completed paths / total paths, 0 when there are no paths).
type VisionWithProgress struct {
	Vision
	Progress   int `json:"progress"`
	PathsTotal int `json:"paths_total"`
	PathsDone  int `json:"paths_done"`
}

type Path struct {
	ID              uuid.UUID  `json:"id" db:"id"`
	VisionID        uuid.UUID  `json:"vision_id" db:"vision_id"`
	Name            string     `json:"name" db:"name"`
	Description     *string    `json:"description,omitempty" db:"description"`
	Status          string     `json:"status" db:"status"`
	OrderIndex      int        `json:"order_index" db:"order_index"`
	DependsOnPathID *uuid.UUID `json:"depends_on_path_id,omitempty" db:"depends_on_path_id"`
	Deadline        *time.Time `json:"deadline,omitempty" db:"deadline"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
}

type CreateVisionRequest struct {
	Title        string  `json:"title" validate:"required"`
	Description  *string `json:"description,omitempty"`
	Category     string  `json:"category" validate:"required"`
	Color        *string `json:"color,omitempty"`
	Icon         *string `json:"icon,omitempty"`
	WhyItMatters *string `json:"why_it_matters,omitempty"`
	Timeline     *string `json:"timeline,omitempty"`
}

type UpdateVisionRequest struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Category     *string `json:"category,omitempty"`
	Color        *string `json:"color,omitempty"`
	WhyItMatters *string `json:"why_it_matters,omitempty"`
	Timeline     *string `json:"timeline,omitempty"`
	HealthScore  *int    `json:"health_score,omitempty"`
}

type CreatePathRequest struct {
	Name            string  `json:"name" validate:"required"`
	Description     *string `json:"description,omitempty"`
	OrderIndex      *int    `json:"order_index,omitempty"`
	DependsOnPathID *string `json:"depends_on_path_id,omitempty"`
	Deadline        *string `json:"deadline,omitempty"` // "2006-01-02"
}

type UpdatePathRequest struct {
	Name       *string `json:"name,omitempty"`
	Status     *string `json:"status,omitempty"`
	OrderIndex *int    `json:"order_index,omitempty"`
	Deadline   *string `json:"deadline,omitempty"`
}

var categories = map[string]bool{
	"Health":        true,
	"Career":        true,
	"Relationships": true,
	"Finance":       true,
	"Learning":      true,
	"Lifestyle":     true,
}

func ValidCategory(s string) bool {
	return categories[s]
}

var pathStatuses = map[string]bool{
	"not-started": true,
	"in-progress": true,
	"completed":   true,
}

func ValidPathStatus(s string) bool {
	return pathStatuses[s]
}
