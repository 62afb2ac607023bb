package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"ascendAPI/internal/stats"
	"ascendAPI/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

type AnalyticsService struct {
	db *pgxpool.Pool
}

func NewAnalyticsService(db *pgxpool.Pool) *AnalyticsService {
	return &AnalyticsService{db: db}
}

// GetOverview aggregates the numbers behind the analytics screen. Everything
// comes out of one round trip per table so the handler stays cheap.
func (s *AnalyticsService) GetOverview(ctx context.Context, clerkID string) (*stats.Overview, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	overview := &stats.Overview{}

	var avgStreak *float64
	var longestStreak *int
	err = s.db.QueryRow(ctx, `
		SELECT COUNT(*), AVG(current_streak), MAX(longest_streak)
		FROM habits
		WHERE user_id = $1
	`, userID).Scan(&overview.TotalHabits, &avgStreak, &longestStreak)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate habits: %w", err)
	}
	if avgStreak != nil {
		overview.AvgStreak = math.Round(*avgStreak*10) / 10
	}
	if longestStreak != nil {
		overview.LongestStreak = *longestStreak
	}

	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM visions WHERE user_id = $1 AND archived = false`,
		userID,
	).Scan(&overview.TotalVisions)
	if err != nil {
		return nil, fmt.Errorf("failed to count visions: %w", err)
	}

	err = s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM check_ins WHERE user_id = $1`,
		userID,
	).Scan(&overview.TotalCheckIns)
	if err != nil {
		return nil, fmt.Errorf("failed to count check-ins: %w", err)
	}

	var createdAt time.Time
	err = s.db.QueryRow(ctx,
		`SELECT created_at FROM users WHERE id = $1`,
		userID,
	).Scan(&createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get account age: %w", err)
	}
	overview.DaysOnAscend = int(time.Since(createdAt).Hours()/24) + 1

	avg := 0.0
	if avgStreak != nil {
		avg = *avgStreak
	}
	overview.GrowthScore = utils.GrowthScore(
		overview.TotalVisions,
		overview.TotalHabits,
		avg,
		overview.TotalCheckIns,
	)

	return overview, nil
}
