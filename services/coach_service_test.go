package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ascendAPI/internal/coach"
)

func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"choices":[{"delta":{"content":%q}}]}`+"\n\n", content)
}

func TestChatStreamAssemblesDeltas(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, sseChunk("Start "))
		fmt.Fprint(w, sseChunk("with "))
		fmt.Fprint(w, "data: {not valid json\n\n") // must be skipped
		fmt.Fprint(w, sseChunk("one habit."))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer upstream.Close()

	svc := NewCoachService(nil, upstream.URL, "test-key", "")

	var deltas []string
	reply, err := svc.ChatStream(context.Background(), []coach.Message{
		{Role: "user", Content: "help me"},
	}, func(d string) error {
		deltas = append(deltas, d)
		return nil
	})
	if err != nil {
		t.Fatalf("ChatStream returned error: %v", err)
	}

	want := "Start with one habit."
	if reply != want {
		t.Errorf("assembled reply = %q, want %q", reply, want)
	}
	if len(deltas) != 3 {
		t.Errorf("got %d deltas, want 3 (malformed frame must be skipped): %v", len(deltas), deltas)
	}
}

func TestChatStreamUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":"rate limit exceeded"}`)
	}))
	defer upstream.Close()

	svc := NewCoachService(nil, upstream.URL, "test-key", "")

	_, err := svc.ChatStream(context.Background(), []coach.Message{
		{Role: "user", Content: "help me"},
	}, func(string) error { return nil })
	if err == nil {
		t.Fatal("expected error for non-OK upstream response")
	}
	if !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("error %q should carry the upstream message", err)
	}
}

func TestChatStreamFallbackWithoutUpstream(t *testing.T) {
	svc := NewCoachService(nil, "", "", "")

	reply, err := svc.ChatStream(context.Background(), []coach.Message{
		{Role: "user", Content: "hello"},
	}, func(string) error { return nil })
	if err != nil {
		t.Fatalf("ChatStream returned error: %v", err)
	}
	if reply == "" {
		t.Error("fallback reply should not be empty")
	}
}

func TestChatStreamRequiresMessages(t *testing.T) {
	svc := NewCoachService(nil, "", "", "")

	if _, err := svc.ChatStream(context.Background(), nil, func(string) error { return nil }); err == nil {
		t.Error("expected error for empty messages")
	}
}

func TestChatStreamPrependsSystemPrompt(t *testing.T) {
	var gotRoles []string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []coach.Message `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode upstream request: %v", err)
		}
		for _, m := range body.Messages {
			gotRoles = append(gotRoles, m.Role)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer upstream.Close()

	svc := NewCoachService(nil, upstream.URL, "", "")
	_, err := svc.ChatStream(context.Background(), []coach.Message{
		{Role: "user", Content: "hi"},
	}, func(string) error { return nil })
	if err != nil {
		t.Fatalf("ChatStream returned error: %v", err)
	}

	if len(gotRoles) != 2 || gotRoles[0] != "system" || gotRoles[1] != "user" {
		t.Errorf("upstream roles = %v, want [system user]", gotRoles)
	}
}
