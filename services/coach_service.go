package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ascendAPI/internal/coach"

	"github.com/jackc/pgx/v5/pgxpool"
)

const coachSystemPrompt = "You are Ascend's AI coach. You help people make progress on their " +
	"visions and habits. Be warm, concrete and brief; suggest one next action at a time."

// fallbackReply is streamed when no upstream model endpoint is configured,
// so the app works out of the box in development.
const fallbackReply = "I'm here to help you move forward. Pick one habit you care " +
	"about today and tell me what's getting in the way - we'll work through it together."

type CoachService struct {
	db     *pgxpool.Pool
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewCoachService(db *pgxpool.Pool, apiURL, apiKey, model string) *CoachService {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &CoachService{
		db:     db,
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// ChatStream relays a chat completion from the upstream model, invoking
// onDelta for every content fragment as it arrives. It returns the full
// assembled reply once the stream ends.
func (s *CoachService) ChatStream(ctx context.Context, messages []coach.Message, onDelta func(string) error) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("messages are required")
	}

	if s.apiURL == "" {
		if err := onDelta(fallbackReply); err != nil {
			return "", err
		}
		return fallbackReply, nil
	}

	if messages[0].Role != "system" {
		messages = append([]coach.Message{{Role: "system", Content: coachSystemPrompt}}, messages...)
	}

	payload, err := json.Marshal(map[string]any{
		"model":    s.model,
		"messages": messages,
		"stream":   true,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("coach upstream unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var upstream struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &upstream) == nil && upstream.Error != "" {
			return "", fmt.Errorf("coach upstream error: %s", upstream.Error)
		}
		return "", fmt.Errorf("coach upstream returned status %d", resp.StatusCode)
	}

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}
		if data == "[DONE]" {
			break
		}

		var chunk coach.StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Partial or malformed frames are skipped, not fatal.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		full.WriteString(delta)
		if err := onDelta(delta); err != nil {
			return full.String(), err
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), fmt.Errorf("coach stream interrupted: %w", err)
	}

	return full.String(), nil
}

func (s *CoachService) SaveMessage(ctx context.Context, clerkID, role, message string) error {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO ai_conversations (user_id, role, message) VALUES ($1, $2, $3)`,
		userID, role, message,
	)
	if err != nil {
		return fmt.Errorf("failed to save conversation message: %w", err)
	}
	return nil
}

func (s *CoachService) GetHistory(ctx context.Context, clerkID string, limit int) ([]*coach.StoredMessage, error) {
	userID, err := userIDByClerkID(ctx, s.db, clerkID)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, role, message, created_at
		FROM ai_conversations
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch conversation history: %w", err)
	}
	defer rows.Close()

	var messages []*coach.StoredMessage
	for rows.Next() {
		m := &coach.StoredMessage{}
		if err := rows.Scan(&m.ID, &m.UserID, &m.Role, &m.Message, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation message: %w", err)
		}
		messages = append(messages, m)
	}
	// Oldest first for rendering.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, rows.Err()
}
