package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ascendAPI/internal/calendar"
	"ascendAPI/internal/habit"
	"ascendAPI/internal/streak"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HabitService struct {
	db *pgxpool.Pool
}

func NewHabitService(db *pgxpool.Pool) *HabitService {
	return &HabitService{db: db}
}

const habitColumns = `
	id, user_id, name, frequency, time_of_day, current_streak, longest_streak,
	paused, pause_reason, reminder_enabled, reminder_time,
	linked_vision_id, linked_path_id, created_at, updated_at`

func scanHabit(row pgx.Row, h *habit.Habit) error {
	return row.Scan(
		&h.ID,
		&h.UserID,
		&h.Name,
		&h.Frequency,
		&h.TimeOfDay,
		&h.CurrentStreak,
		&h.LongestStreak,
		&h.Paused,
		&h.PauseReason,
		&h.ReminderEnabled,
		&h.ReminderTime,
		&h.LinkedVisionID,
		&h.LinkedPathID,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
}

func (s *HabitService) CreateHabit(ctx context.Context, clerkID string, req *habit.CreateHabitRequest) (*habit.Habit, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if _, err := streak.ParseFrequency(req.Frequency); err != nil {
		return nil, err
	}
	if !habit.ValidTimeOfDay(req.TimeOfDay) {
		return nil, fmt.Errorf("invalid time_of_day %q", req.TimeOfDay)
	}

	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var visionID, pathID *uuid.UUID
	if req.LinkedVisionID != nil {
		id, err := uuid.Parse(*req.LinkedVisionID)
		if err != nil {
			return nil, fmt.Errorf("invalid linked_vision_id: %w", err)
		}
		visionID = &id
	}
	if req.LinkedPathID != nil {
		id, err := uuid.Parse(*req.LinkedPathID)
		if err != nil {
			return nil, fmt.Errorf("invalid linked_path_id: %w", err)
		}
		pathID = &id
	}

	query := `
	INSERT INTO habits (
		user_id, name, frequency, time_of_day, reminder_enabled, reminder_time,
		linked_vision_id, linked_path_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING` + habitColumns

	h := &habit.Habit{}
	err = scanHabit(s.db.QueryRow(ctx, query,
		userID, req.Name, req.Frequency, req.TimeOfDay,
		req.ReminderEnabled, req.ReminderTime, visionID, pathID,
	), h)
	if err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	return h, nil
}

func (s *HabitService) GetHabits(ctx context.Context, clerkID string) ([]*habit.Habit, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `SELECT` + habitColumns + `
	FROM habits
	WHERE user_id = $1
	ORDER BY created_at ASC`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch habits: %w", err)
	}
	defer rows.Close()

	var habits []*habit.Habit
	for rows.Next() {
		h := &habit.Habit{}
		if err := scanHabit(rows, h); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

// GetTodayHabits joins each habit with today's ledger entry so the
// dashboard never recomputes streak math itself.
func (s *HabitService) GetTodayHabits(ctx context.Context, clerkID string) ([]*habit.TodayHabit, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	SELECT
		h.id, h.user_id, h.name, h.frequency, h.time_of_day,
		h.current_streak, h.longest_streak, h.paused, h.pause_reason,
		h.reminder_enabled, h.reminder_time, h.linked_vision_id,
		h.linked_path_id, h.created_at, h.updated_at,
		COALESCE(hc.completed, false) AS completed_today
	FROM habits h
	LEFT JOIN habit_completions hc
		ON hc.habit_id = h.id AND hc.date = $2
	WHERE h.user_id = $1 AND h.paused = false
	ORDER BY h.time_of_day, h.created_at`

	rows, err := s.db.Query(ctx, query, userID, streak.Day(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch today's habits: %w", err)
	}
	defer rows.Close()

	var habits []*habit.TodayHabit
	for rows.Next() {
		th := &habit.TodayHabit{}
		err := rows.Scan(
			&th.ID,
			&th.UserID,
			&th.Name,
			&th.Frequency,
			&th.TimeOfDay,
			&th.CurrentStreak,
			&th.LongestStreak,
			&th.Paused,
			&th.PauseReason,
			&th.ReminderEnabled,
			&th.ReminderTime,
			&th.LinkedVisionID,
			&th.LinkedPathID,
			&th.CreatedAt,
			&th.UpdatedAt,
			&th.CompletedToday,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		habits = append(habits, th)
	}
	return habits, rows.Err()
}

// GetHabitDetail returns the habit with its 7/30/90-day completion rates.
func (s *HabitService) GetHabitDetail(ctx context.Context, clerkID string, habitID uuid.UUID) (*habit.HabitDetail, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	h := &habit.Habit{}
	query := `SELECT` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2`
	if err := scanHabit(s.db.QueryRow(ctx, query, habitID, userID), h); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("habit not found")
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	freq, err := streak.ParseFrequency(h.Frequency)
	if err != nil {
		return nil, err
	}

	today := streak.Day(time.Now())
	dates, err := s.completedDates(ctx, s.db, habitID, today.AddDate(0, 0, -89))
	if err != nil {
		return nil, err
	}

	detail := &habit.HabitDetail{Habit: *h}
	detail.Stats = habit.Stats{
		SevenDayRate:  streak.CompletionRate(freq, dates, today.AddDate(0, 0, -6), today),
		ThirtyDayRate: streak.CompletionRate(freq, dates, today.AddDate(0, 0, -29), today),
		NinetyDayRate: streak.CompletionRate(freq, dates, today.AddDate(0, 0, -89), today),
	}
	return detail, nil
}

func (s *HabitService) UpdateHabit(ctx context.Context, clerkID string, habitID uuid.UUID, req *habit.UpdateHabitRequest) (*habit.Habit, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if req.Frequency != nil {
		if _, err := streak.ParseFrequency(*req.Frequency); err != nil {
			return nil, err
		}
	}
	if req.TimeOfDay != nil && !habit.ValidTimeOfDay(*req.TimeOfDay) {
		return nil, fmt.Errorf("invalid time_of_day %q", *req.TimeOfDay)
	}

	query := `
	UPDATE habits SET
		name = COALESCE($3, name),
		frequency = COALESCE($4, frequency),
		time_of_day = COALESCE($5, time_of_day),
		reminder_enabled = COALESCE($6, reminder_enabled),
		reminder_time = COALESCE($7, reminder_time),
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING` + habitColumns

	h := &habit.Habit{}
	err = scanHabit(s.db.QueryRow(ctx, query, habitID, userID,
		req.Name, req.Frequency, req.TimeOfDay, req.ReminderEnabled, req.ReminderTime,
	), h)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("habit not found")
		}
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}
	return h, nil
}

func (s *HabitService) SetPaused(ctx context.Context, clerkID string, habitID uuid.UUID, req *habit.PauseRequest) (*habit.Habit, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	query := `
	UPDATE habits SET paused = $3, pause_reason = $4, updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING` + habitColumns

	h := &habit.Habit{}
	err = scanHabit(s.db.QueryRow(ctx, query, habitID, userID, req.Paused, req.Reason), h)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("habit not found")
		}
		return nil, fmt.Errorf("failed to update habit: %w", err)
	}
	return h, nil
}

// DeleteHabit removes the habit and, via cascade, its completion ledger.
func (s *HabitService) DeleteHabit(ctx context.Context, clerkID string, habitID uuid.UUID) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, `DELETE FROM habits WHERE id = $1 AND user_id = $2`, habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("habit not found")
	}
	return nil
}

// RecordCompletion is the sole mutation path for the completion ledger. The
// ledger upsert and the streak update commit in one transaction: an
// interrupted call never leaves the two disagreeing. The streak only moves
// when the stored value for the day actually transitions, so re-marking an
// already-completed day is a no-op, unmarking the top of the streak
// decrements it by one, and past-day writes recompute from full history.
func (s *HabitService) RecordCompletion(ctx context.Context, clerkID string, habitID uuid.UUID, date time.Time, completed bool, notes *string) (*habit.Habit, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	date = streak.Day(date)
	today := streak.Day(time.Now())
	if date.After(today) {
		return nil, fmt.Errorf("cannot record a completion in the future")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	h := &habit.Habit{}
	query := `SELECT` + habitColumns + ` FROM habits WHERE id = $1 AND user_id = $2 FOR UPDATE`
	if err := scanHabit(tx.QueryRow(ctx, query, habitID, userID), h); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("habit not found")
		}
		return nil, fmt.Errorf("failed to get habit: %w", err)
	}

	freq, err := streak.ParseFrequency(h.Frequency)
	if err != nil {
		return nil, err
	}

	var prev *bool
	err = tx.QueryRow(ctx,
		`SELECT completed FROM habit_completions WHERE habit_id = $1 AND date = $2`,
		habitID, date,
	).Scan(&prev)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to read ledger: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO habit_completions (habit_id, date, completed, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (habit_id, date)
		DO UPDATE SET completed = $3, notes = $4
	`, habitID, date, completed, notes)
	if err != nil {
		return nil, fmt.Errorf("failed to write ledger: %w", err)
	}

	transition := (prev == nil && completed) || (prev != nil && *prev != completed)
	if transition {
		// Recompute from the ledger itself rather than incrementing blindly;
		// a year of history bounds the walk.
		dates, err := s.completedDates(ctx, tx, habitID, today.AddDate(0, 0, -365))
		if err != nil {
			return nil, err
		}

		h.CurrentStreak = streak.Current(freq, dates, today)
		if h.CurrentStreak > h.LongestStreak {
			// The longest streak is a ratchet: it only ever goes up.
			h.LongestStreak = h.CurrentStreak
		}

		_, err = tx.Exec(ctx, `
			UPDATE habits SET current_streak = $2, longest_streak = $3, updated_at = NOW()
			WHERE id = $1
		`, habitID, h.CurrentStreak, h.LongestStreak)
		if err != nil {
			return nil, fmt.Errorf("failed to update streak: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit completion: %w", err)
	}

	if transition {
		log.Printf("RecordCompletion: habit %s date %s completed=%t streak=%d", habitID, date.Format("2006-01-02"), completed, h.CurrentStreak)
	}
	return h, nil
}

// GetCalendar builds the trailing 12-week completion heatmap.
func (s *HabitService) GetCalendar(ctx context.Context, clerkID string, habitID uuid.UUID) (*calendar.Heatmap, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM habits WHERE id = $1 AND user_id = $2)`,
		habitID, userID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check habit: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("habit not found")
	}

	const weeks = 12
	today := streak.Day(time.Now())
	start := today.AddDate(0, 0, -(weeks*7 - 1))

	dates, err := s.completedDates(ctx, s.db, habitID, start)
	if err != nil {
		return nil, err
	}
	done := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		done[streak.Day(d)] = true
	}

	heatmap := &calendar.Heatmap{HabitID: habitID.String(), Weeks: weeks}
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		heatmap.Days = append(heatmap.Days, &calendar.Day{
			Date:      d,
			Completed: done[d],
			IsToday:   d.Equal(today),
		})
	}
	return heatmap, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// completedDates returns the habit's completed ledger dates on or after
// since, newest first. The bound comes from streak.Day so it cannot drift
// from the Go-side walk when the database session timezone is not UTC.
func (s *HabitService) completedDates(ctx context.Context, q querier, habitID uuid.UUID, since time.Time) ([]time.Time, error) {
	rows, err := q.Query(ctx, `
		SELECT date FROM habit_completions
		WHERE habit_id = $1 AND completed = true
			AND date >= $2
		ORDER BY date DESC
	`, habitID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch completions: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan completion date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}
