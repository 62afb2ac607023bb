package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ascendAPI/internal/checkin"
	"ascendAPI/internal/streak"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CheckInService struct {
	db *pgxpool.Pool
}

func NewCheckInService(db *pgxpool.Pool) *CheckInService {
	return &CheckInService{db: db}
}

// SubmitCheckIn upserts today's check-in keyed on (user_id, date); a second
// submission on the same day overwrites the first.
func (s *CheckInService) SubmitCheckIn(ctx context.Context, clerkID string, req *checkin.SubmitRequest) (*checkin.CheckIn, error) {
	if err := checkin.ValidateSubmission(req); err != nil {
		return nil, err
	}

	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	// Today's date comes from streak.Day, not CURRENT_DATE, so the upsert
	// key matches the rest of the date math when the database session
	// timezone is not UTC.
	query := `
	INSERT INTO check_ins (user_id, date, energy, mood, gratitude, challenge)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (user_id, date)
	DO UPDATE SET energy = $3, mood = $4, gratitude = $5, challenge = $6
	RETURNING id, user_id, date, energy, mood, gratitude, challenge, created_at
	`

	c := &checkin.CheckIn{}
	err = s.db.QueryRow(ctx, query, userID, streak.Day(time.Now()), req.Energy, req.Mood, req.Gratitude, req.Challenge).Scan(
		&c.ID,
		&c.UserID,
		&c.Date,
		&c.Energy,
		&c.Mood,
		&c.Gratitude,
		&c.Challenge,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save check-in: %w", err)
	}

	return c, nil
}

// GetToday returns today's check-in, or nil when the user has not checked
// in yet.
func (s *CheckInService) GetToday(ctx context.Context, clerkID string) (*checkin.CheckIn, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT id, user_id, date, energy, mood, gratitude, challenge, created_at
	FROM check_ins
	WHERE user_id = $1 AND date = $2
	`

	c := &checkin.CheckIn{}
	err = s.db.QueryRow(ctx, query, userID, streak.Day(time.Now())).Scan(
		&c.ID,
		&c.UserID,
		&c.Date,
		&c.Energy,
		&c.Mood,
		&c.Gratitude,
		&c.Challenge,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get today's check-in: %w", err)
	}

	return c, nil
}

// GetHistory returns the user's check-ins over the trailing `days` days,
// newest first, for the mood/energy trend view.
func (s *CheckInService) GetHistory(ctx context.Context, clerkID string, days int) ([]*checkin.CheckIn, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if days <= 0 || days > 365 {
		days = 30
	}

	query := `
	SELECT id, user_id, date, energy, mood, gratitude, challenge, created_at
	FROM check_ins
	WHERE user_id = $1 AND date >= $2
	ORDER BY date DESC
	`

	since := streak.Day(time.Now()).AddDate(0, 0, -(days - 1))
	rows, err := s.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-ins: %w", err)
	}
	defer rows.Close()

	var checkIns []*checkin.CheckIn
	for rows.Next() {
		c := &checkin.CheckIn{}
		err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.Date,
			&c.Energy,
			&c.Mood,
			&c.Gratitude,
			&c.Challenge,
			&c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan check-in: %w", err)
		}
		checkIns = append(checkIns, c)
	}
	return checkIns, rows.Err()
}

// GetStreak computes the consecutive-day check-in streak ending today.
// Only the last 30 dates matter: the walk stops at the first gap, so a
// longer history cannot extend it.
func (s *CheckInService) GetStreak(ctx context.Context, clerkID string) (*checkin.StreakResponse, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, `
		SELECT date FROM check_ins
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT 30
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch check-in dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan check-in date: %w", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to fetch check-in dates: %w", err)
	}

	var total int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM check_ins WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count check-ins: %w", err)
	}

	return &checkin.StreakResponse{
		Streak:        streak.CheckInStreak(dates, time.Now()),
		TotalCheckIns: total,
	}, nil
}
