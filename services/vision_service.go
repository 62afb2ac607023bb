package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ascendAPI/internal/vision"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VisionService struct {
	db *pgxpool.Pool
}

func NewVisionService(db *pgxpool.Pool) *VisionService {
	return &VisionService{db: db}
}

func (s *VisionService) CreateVision(ctx context.Context, clerkID string, req *vision.CreateVisionRequest) (*vision.Vision, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !vision.ValidCategory(req.Category) {
		return nil, fmt.Errorf("invalid category %q", req.Category)
	}

	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	INSERT INTO visions (user_id, title, description, category, color, icon, why_it_matters, timeline)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, user_id, title, description, category, color, icon, why_it_matters,
		timeline, health_score, archived, created_at, updated_at
	`

	v := &vision.Vision{}
	err = s.db.QueryRow(ctx, query,
		userID, req.Title, req.Description, req.Category,
		req.Color, req.Icon, req.WhyItMatters, req.Timeline,
	).Scan(
		&v.ID, &v.UserID, &v.Title, &v.Description, &v.Category, &v.Color, &v.Icon,
		&v.WhyItMatters, &v.Timeline, &v.HealthScore, &v.Archived, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision: %w", err)
	}

	return v, nil
}

// GetVisions lists the user's active visions with derived path progress;
// consumers render the percentage, they never recompute it.
func (s *VisionService) GetVisions(ctx context.Context, clerkID string, includeArchived bool) ([]*vision.VisionWithProgress, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		v.id, v.user_id, v.title, v.description, v.category, v.color, v.icon,
		v.why_it_matters, v.timeline, v.health_score, v.archived, v.created_at, v.updated_at,
		COUNT(p.id) AS paths_total,
		COUNT(p.id) FILTER (WHERE p.status = 'completed') AS paths_done
	FROM visions v
	LEFT JOIN paths p ON p.vision_id = v.id
	WHERE v.user_id = $1 AND (v.archived = false OR $2)
	GROUP BY v.id
	ORDER BY v.created_at DESC
	`

	rows, err := s.db.Query(ctx, query, userID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch visions: %w", err)
	}
	defer rows.Close()

	var visions []*vision.VisionWithProgress
	for rows.Next() {
		v := &vision.VisionWithProgress{}
		err := rows.Scan(
			&v.ID, &v.UserID, &v.Title, &v.Description, &v.Category, &v.Color, &v.Icon,
			&v.WhyItMatters, &v.Timeline, &v.HealthScore, &v.Archived, &v.CreatedAt, &v.UpdatedAt,
			&v.PathsTotal, &v.PathsDone,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vision: %w", err)
		}
		if v.PathsTotal > 0 {
			v.Progress = v.PathsDone * 100 / v.PathsTotal
		}
		visions = append(visions, v)
	}
	return visions, rows.Err()
}

func (s *VisionService) GetVision(ctx context.Context, clerkID string, visionID uuid.UUID) (*vision.Vision, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, title, description, category, color, icon, why_it_matters,
		timeline, health_score, archived, created_at, updated_at
	FROM visions
	WHERE id = $1 AND user_id = $2
	`

	v := &vision.Vision{}
	err = s.db.QueryRow(ctx, query, visionID, userID).Scan(
		&v.ID, &v.UserID, &v.Title, &v.Description, &v.Category, &v.Color, &v.Icon,
		&v.WhyItMatters, &v.Timeline, &v.HealthScore, &v.Archived, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vision not found")
		}
		return nil, fmt.Errorf("failed to get vision: %w", err)
	}

	return v, nil
}

func (s *VisionService) UpdateVision(ctx context.Context, clerkID string, visionID uuid.UUID, req *vision.UpdateVisionRequest) (*vision.Vision, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Category != nil && !vision.ValidCategory(*req.Category) {
		return nil, fmt.Errorf("invalid category %q", *req.Category)
	}
	if req.HealthScore != nil && (*req.HealthScore < 0 || *req.HealthScore > 100) {
		return nil, fmt.Errorf("health_score must be between 0 and 100")
	}

	query := `
	UPDATE visions SET
		title = COALESCE($3, title),
		description = COALESCE($4, description),
		category = COALESCE($5, category),
		color = COALESCE($6, color),
		why_it_matters = COALESCE($7, why_it_matters),
		timeline = COALESCE($8, timeline),
		health_score = COALESCE($9, health_score),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING id, user_id, title, description, category, color, icon, why_it_matters,
		timeline, health_score, archived, created_at, updated_at
	`

	v := &vision.Vision{}
	err = s.db.QueryRow(ctx, query, visionID, userID,
		req.Title, req.Description, req.Category, req.Color,
		req.WhyItMatters, req.Timeline, req.HealthScore,
	).Scan(
		&v.ID, &v.UserID, &v.Title, &v.Description, &v.Category, &v.Color, &v.Icon,
		&v.WhyItMatters, &v.Timeline, &v.HealthScore, &v.Archived, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vision not found")
		}
		return nil, fmt.Errorf("failed to update vision: %w", err)
	}

	return v, nil
}

func (s *VisionService) SetArchived(ctx context.Context, clerkID string, visionID uuid.UUID, archived bool) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		`UPDATE visions SET archived = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
		visionID, userID, archived,
	)
	if err != nil {
		return fmt.Errorf("failed to archive vision: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("vision not found")
	}
	return nil
}

func (s *VisionService) DeleteVision(ctx context.Context, clerkID string, visionID uuid.UUID) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		`DELETE FROM visions WHERE id = $1 AND user_id = $2`,
		visionID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete vision: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("vision not found")
	}
	return nil
}

func (s *VisionService) GetPaths(ctx context.Context, clerkID string, visionID uuid.UUID) ([]*vision.Path, error) {
	if err := s.checkVisionOwner(ctx, clerkID, visionID); err != nil {
		return nil, err
	}

	query := `
	SELECT id, vision_id, name, description, status, order_index,
		depends_on_path_id, deadline, completed_at, created_at
	FROM paths
	WHERE vision_id = $1
	ORDER BY order_index, created_at
	`

	rows, err := s.db.Query(ctx, query, visionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch paths: %w", err)
	}
	defer rows.Close()

	var paths []*vision.Path
	for rows.Next() {
		p := &vision.Path{}
		err := rows.Scan(
			&p.ID, &p.VisionID, &p.Name, &p.Description, &p.Status, &p.OrderIndex,
			&p.DependsOnPathID, &p.Deadline, &p.CompletedAt, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan path: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

func (s *VisionService) CreatePath(ctx context.Context, clerkID string, visionID uuid.UUID, req *vision.CreatePathRequest) (*vision.Path, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := s.checkVisionOwner(ctx, clerkID, visionID); err != nil {
		return nil, err
	}

	var dependsOn *uuid.UUID
	if req.DependsOnPathID != nil {
		id, err := uuid.Parse(*req.DependsOnPathID)
		if err != nil {
			return nil, fmt.Errorf("invalid depends_on_path_id: %w", err)
		}
		dependsOn = &id
	}

	var deadline *time.Time
	if req.Deadline != nil {
		d, err := time.Parse("2006-01-02", *req.Deadline)
		if err != nil {
			return nil, fmt.Errorf("invalid deadline, expected YYYY-MM-DD: %w", err)
		}
		deadline = &d
	}

	orderIndex := 0
	if req.OrderIndex != nil {
		orderIndex = *req.OrderIndex
	} else {
		// Append to the end by default.
		err := s.db.QueryRow(ctx,
			`SELECT COALESCE(MAX(order_index) + 1, 0) FROM paths WHERE vision_id = $1`,
			visionID,
		).Scan(&orderIndex)
		if err != nil {
			return nil, fmt.Errorf("failed to compute order index: %w", err)
		}
	}

	query := `
	INSERT INTO paths (vision_id, name, description, status, order_index, depends_on_path_id, deadline)
	VALUES ($1, $2, $3, 'not-started', $4, $5, $6)
	RETURNING id, vision_id, name, description, status, order_index,
		depends_on_path_id, deadline, completed_at, created_at
	`

	p := &vision.Path{}
	err := s.db.QueryRow(ctx, query, visionID, req.Name, req.Description, orderIndex, dependsOn, deadline).Scan(
		&p.ID, &p.VisionID, &p.Name, &p.Description, &p.Status, &p.OrderIndex,
		&p.DependsOnPathID, &p.Deadline, &p.CompletedAt, &p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create path: %w", err)
	}

	return p, nil
}

func (s *VisionService) UpdatePath(ctx context.Context, clerkID string, pathID uuid.UUID, req *vision.UpdatePathRequest) (*vision.Path, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Status != nil && !vision.ValidPathStatus(*req.Status) {
		return nil, fmt.Errorf("invalid status %q", *req.Status)
	}

	var deadline *time.Time
	if req.Deadline != nil {
		d, err := time.Parse("2006-01-02", *req.Deadline)
		if err != nil {
			return nil, fmt.Errorf("invalid deadline, expected YYYY-MM-DD: %w", err)
		}
		deadline = &d
	}

	// completed_at tracks the transition into 'completed' and clears on the
	// way out.
	query := `
	UPDATE paths p SET
		name = COALESCE($3, p.name),
		status = COALESCE($4, p.status),
		order_index = COALESCE($5, p.order_index),
		deadline = COALESCE($6, p.deadline),
		completed_at = CASE
			WHEN $4 = 'completed' AND p.status != 'completed' THEN NOW()
			WHEN $4 IS NOT NULL AND $4 != 'completed' THEN NULL
			ELSE p.completed_at
		END
	FROM visions v
	WHERE p.id = $1 AND p.vision_id = v.id AND v.user_id = $2
	RETURNING p.id, p.vision_id, p.name, p.description, p.status, p.order_index,
		p.depends_on_path_id, p.deadline, p.completed_at, p.created_at
	`

	p := &vision.Path{}
	err = s.db.QueryRow(ctx, query, pathID, userID, req.Name, req.Status, req.OrderIndex, deadline).Scan(
		&p.ID, &p.VisionID, &p.Name, &p.Description, &p.Status, &p.OrderIndex,
		&p.DependsOnPathID, &p.Deadline, &p.CompletedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("path not found")
		}
		return nil, fmt.Errorf("failed to update path: %w", err)
	}

	return p, nil
}

func (s *VisionService) DeletePath(ctx context.Context, clerkID string, pathID uuid.UUID) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `
		DELETE FROM paths p
		USING visions v
		WHERE p.id = $1 AND p.vision_id = v.id AND v.user_id = $2
	`, pathID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete path: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("path not found")
	}
	return nil
}

func (s *VisionService) checkVisionOwner(ctx context.Context, clerkID string, visionID uuid.UUID) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM visions WHERE id = $1 AND user_id = $2)`,
		visionID, userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check vision: %w", err)
	}
	if !exists {
		return fmt.Errorf("vision not found")
	}
	return nil
}
