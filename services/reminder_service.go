package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"ascendAPI/internal/notification"
	"ascendAPI/internal/streak"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PushProvider abstracts the FCM client so reminder dispatch can be tested
// without Firebase credentials.
type PushProvider interface {
	SendPush(ctx context.Context, tokens []notification.DeviceToken, title, body string, data map[string]string) error
}

type ReminderService struct {
	db   *pgxpool.Pool
	push PushProvider
}

func NewReminderService(db *pgxpool.Pool, push PushProvider) *ReminderService {
	return &ReminderService{db: db, push: push}
}

func (s *ReminderService) RegisterDevice(ctx context.Context, clerkID string, req *notification.RegisterDeviceRequest) error {
	if req.Token == "" {
		return fmt.Errorf("token is required")
	}

	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO device_tokens (user_id, token, platform)
		VALUES ($1, $2, $3)
		ON CONFLICT (token) DO UPDATE SET user_id = EXCLUDED.user_id, platform = EXCLUDED.platform
	`, userID, req.Token, req.Platform)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// DispatchDue finds habits whose reminder_time matches the current minute
// and haven't been completed today, and pushes a nudge to each owner's
// devices. Runs from the cron scheduler once a minute.
func (s *ReminderService) DispatchDue(ctx context.Context) error {
	if s.push == nil {
		return nil
	}

	now := time.Now().UTC().Format("15:04")

	rows, err := s.db.Query(ctx, `
		SELECT h.id, h.user_id, h.name
		FROM habits h
		WHERE h.reminder_enabled = true
		  AND h.reminder_time = $1
		  AND h.paused = false
		  AND NOT EXISTS (
			SELECT 1 FROM habit_completions hc
			WHERE hc.habit_id = h.id AND hc.date = $2 AND hc.completed
		  )
	`, now, streak.Day(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to find due reminders: %w", err)
	}
	defer rows.Close()

	type dueHabit struct {
		id     string
		userID string
		name   string
	}
	var due []dueHabit
	for rows.Next() {
		var d dueHabit
		if err := rows.Scan(&d.id, &d.userID, &d.name); err != nil {
			return fmt.Errorf("failed to scan due reminder: %w", err)
		}
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, d := range due {
		tokens, err := s.tokensForUser(ctx, d.userID)
		if err != nil {
			log.Printf("Reminders: failed to load tokens for user %s: %v", d.userID, err)
			continue
		}
		if len(tokens) == 0 {
			continue
		}

		err = s.push.SendPush(ctx, tokens,
			"Time for "+d.name,
			"Keep your streak going - mark it done when you finish.",
			map[string]string{"habit_id": d.id, "type": "habit_reminder"},
		)
		if err != nil {
			log.Printf("Reminders: push failed for habit %s: %v", d.id, err)
		}
	}

	return nil
}

func (s *ReminderService) tokensForUser(ctx context.Context, userID string) ([]notification.DeviceToken, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, token, platform, created_at
		FROM device_tokens
		WHERE user_id = $1
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []notification.DeviceToken
	for rows.Next() {
		var t notification.DeviceToken
		if err := rows.Scan(&t.ID, &t.UserID, &t.Token, &t.Platform, &t.CreatedAt); err != nil {
			return nil, err
		}
		tokens = append(tokens, t)
	}
	return tokens, rows.Err()
}
