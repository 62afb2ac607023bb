package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"ascendAPI/internal/insight"
	"ascendAPI/internal/streak"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var insightsGenerated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "insights_generated_total",
		Help: "Insights persisted by the generator, by type",
	},
	[]string{"type"},
)

type InsightService struct {
	db *pgxpool.Pool
}

func NewInsightService(db *pgxpool.Pool) *InsightService {
	return &InsightService{db: db}
}

// Generate scans the user's habits and their trailing-30-day ledger and
// persists at most three insights. Inserts are deduplicated on
// (user_id, type, title), so racing or repeated runs cannot duplicate an
// insight and a dismissed one is never resurrected.
func (s *InsightService) Generate(ctx context.Context, clerkID string) (int, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return 0, err
	}
	return s.generateForUser(ctx, userID)
}

func (s *InsightService) generateForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	activities, err := s.habitActivities(ctx, userID)
	if err != nil {
		return 0, err
	}

	candidates := insight.Build(activities)
	today := streak.Day(time.Now())
	inserted := 0
	for _, c := range candidates {
		// Titled insights (pattern, celebration, suggestion) name their
		// habit, so any prior row is a true duplicate. The prediction title
		// is constant; only a same-day row blocks it, so the rule can fire
		// again on a later day.
		query := `
		INSERT INTO insights (user_id, type, title, description)
		SELECT $1, $2, $3, $4
		WHERE NOT EXISTS (
			SELECT 1 FROM insights
			WHERE user_id = $1 AND type = $2 AND title = $3
				AND ($2 != 'prediction' OR created_at >= $5)
		)
		`
		result, err := s.db.Exec(ctx, query, userID, c.Type, c.Title, c.Description, today)
		if err != nil {
			return inserted, fmt.Errorf("failed to insert insight: %w", err)
		}
		if result.RowsAffected() > 0 {
			insightsGenerated.WithLabelValues(c.Type).Inc()
			inserted++
		}
	}
	return inserted, nil
}

// habitActivities summarizes every habit's trailing-30-day ledger into the
// shape the insight rules consume.
func (s *InsightService) habitActivities(ctx context.Context, userID uuid.UUID) ([]insight.HabitActivity, error) {
	today := streak.Day(time.Now())
	windowStart := today.AddDate(0, 0, -29)

	// The window bound is computed here, not as CURRENT_DATE, so the SQL
	// filter and the Go-side rate math agree on what "today" is.
	query := `
	SELECT h.id, h.name, h.time_of_day, h.current_streak, h.frequency,
		COALESCE(array_agg(hc.date) FILTER (WHERE hc.completed), '{}') AS completed_dates
	FROM habits h
	LEFT JOIN habit_completions hc
		ON hc.habit_id = h.id AND hc.date >= $2
	WHERE h.user_id = $1
	GROUP BY h.id
	ORDER BY h.created_at
	`

	rows, err := s.db.Query(ctx, query, userID, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch habit activity: %w", err)
	}
	defer rows.Close()

	var activities []insight.HabitActivity
	for rows.Next() {
		var (
			id        uuid.UUID
			name      string
			timeOfDay string
			current   int
			frequency string
			dates     []time.Time
		)
		if err := rows.Scan(&id, &name, &timeOfDay, &current, &frequency, &dates); err != nil {
			return nil, fmt.Errorf("failed to scan habit activity: %w", err)
		}

		freq, err := streak.ParseFrequency(frequency)
		if err != nil {
			log.Printf("Insight scan: habit %s has bad frequency %q, skipping", id, frequency)
			continue
		}

		activities = append(activities, insight.HabitActivity{
			Name:           name,
			TimeOfDay:      timeOfDay,
			CurrentStreak:  current,
			CompletedCount: len(dates),
			Rate:           streak.CompletionRate(freq, dates, windowStart, today),
		})
	}
	return activities, rows.Err()
}

// GenerateAll runs the sweep for every user; the daily cron entry calls it.
func (s *InsightService) GenerateAll(ctx context.Context) error {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT user_id FROM habits`)
	if err != nil {
		return fmt.Errorf("failed to list users with habits: %w", err)
	}
	defer rows.Close()

	var userIDs []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan user id: %w", err)
		}
		userIDs = append(userIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	total := 0
	for _, id := range userIDs {
		n, err := s.generateForUser(ctx, id)
		if err != nil {
			log.Printf("Insight sweep: user %s failed: %v", id, err)
			continue
		}
		total += n
	}
	log.Printf("Insight sweep: %d insights for %d users", total, len(userIDs))
	return nil
}

// GetInsights returns the user-facing feed; dismissed insights stay in the
// table but never reappear here.
func (s *InsightService) GetInsights(ctx context.Context, clerkID string) ([]*insight.Insight, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, type, title, description, dismissed, created_at
	FROM insights
	WHERE user_id = $1 AND dismissed = false
	ORDER BY created_at DESC
	LIMIT 50
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch insights: %w", err)
	}
	defer rows.Close()

	var insights []*insight.Insight
	for rows.Next() {
		i := &insight.Insight{}
		err := rows.Scan(&i.ID, &i.UserID, &i.Type, &i.Title, &i.Description, &i.Dismissed, &i.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		insights = append(insights, i)
	}
	return insights, rows.Err()
}

// DismissInsight marks the insight dismissed; rows are kept, never deleted.
func (s *InsightService) DismissInsight(ctx context.Context, clerkID string, insightID uuid.UUID) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx,
		`UPDATE insights SET dismissed = true WHERE id = $1 AND user_id = $2`,
		insightID, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to dismiss insight: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("insight not found")
	}
	return nil
}
