package services

import (
	"context"
	"errors"
	"fmt"

	"ascendAPI/internal/lesson"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LessonService struct {
	db *pgxpool.Pool
}

func NewLessonService(db *pgxpool.Pool) *LessonService {
	return &LessonService{db: db}
}

// GetLessons returns the lesson library with the caller's completion state
// folded in.
func (s *LessonService) GetLessons(ctx context.Context, clerkID string) ([]*lesson.LessonSummary, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT l.id, l.title, l.category, l.read_time,
			ul.lesson_id IS NOT NULL AS completed, ul.completed_at
		FROM lessons l
		LEFT JOIN user_lessons ul ON ul.lesson_id = l.id AND ul.user_id = $1
		ORDER BY l.category, l.created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*lesson.LessonSummary
	for rows.Next() {
		l := &lesson.LessonSummary{}
		if err := rows.Scan(&l.ID, &l.Title, &l.Category, &l.ReadTime, &l.Completed, &l.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan lesson: %w", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (s *LessonService) GetLesson(ctx context.Context, lessonID uuid.UUID) (*lesson.Lesson, error) {
	query := `
	SELECT id, title, category, content, key_takeaways, read_time, created_at
	FROM lessons
	WHERE id = $1
	`

	l := &lesson.Lesson{}
	err := s.db.QueryRow(ctx, query, lessonID).Scan(
		&l.ID, &l.Title, &l.Category, &l.Content, &l.KeyTakeaways, &l.ReadTime, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lesson not found")
		}
		return nil, fmt.Errorf("failed to get lesson: %w", err)
	}

	return l, nil
}

// MarkComplete records that the user finished a lesson. Re-marking keeps the
// original completion time.
func (s *LessonService) MarkComplete(ctx context.Context, clerkID string, lessonID uuid.UUID) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM lessons WHERE id = $1)`,
		lessonID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check lesson: %w", err)
	}
	if !exists {
		return fmt.Errorf("lesson not found")
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO user_lessons (user_id, lesson_id, completed_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, lesson_id) DO NOTHING
	`, userID, lessonID)
	if err != nil {
		return fmt.Errorf("failed to mark lesson complete: %w", err)
	}
	return nil
}
