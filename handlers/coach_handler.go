package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"ascendAPI/internal/coach"
	"ascendAPI/middleware"
	"ascendAPI/services"
)

type CoachHandler struct {
	coachService *services.CoachService
}

func NewCoachHandler(coachService *services.CoachService) *CoachHandler {
	return &CoachHandler{
		coachService: coachService,
	}
}

// Chat streams the coach's reply as server-sent events. Each content
// fragment goes out as a "data:" frame in the chat-completion chunk shape,
// terminated by "data: [DONE]".
func (h *CoachHandler) Chat(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.GetClerkID(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req coach.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Messages) == 0 {
		respondWithError(w, http.StatusBadRequest, "messages are required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	// Persist the user's latest message before streaming starts.
	last := req.Messages[len(req.Messages)-1]
	if last.Role == "user" {
		if err := h.coachService.SaveMessage(r.Context(), clerkID, "user", last.Content); err != nil {
			log.Printf("Coach Handler: failed to save user message: %v", err)
		}
	}

	// Headers go out with the first delta, so an upstream failure before any
	// content can still surface as a plain HTTP error.
	started := false
	startStream := func() {
		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		started = true
	}

	reply, err := h.coachService.ChatStream(r.Context(), req.Messages, func(delta string) error {
		if !started {
			startStream()
		}
		frame, err := json.Marshal(map[string]any{
			"choices": []map[string]any{
				{"delta": map[string]string{"content": delta}},
			},
		})
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "data: %s\n\n", frame); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil {
		log.Printf("Coach Handler: stream error: %v", err)
		if !started {
			respondWithError(w, http.StatusBadGateway, err.Error())
			return
		}
		errFrame, _ := json.Marshal(map[string]string{"error": err.Error()})
		fmt.Fprintf(w, "data: %s\n\n", errFrame)
		flusher.Flush()
		return
	}

	if !started {
		startStream()
	}
	fmt.Fprint(w, "data: [DONE]\n\n")
	flusher.Flush()

	if reply != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.coachService.SaveMessage(ctx, clerkID, "assistant", reply); err != nil {
			log.Printf("Coach Handler: failed to save assistant reply: %v", err)
		}
	}
}

func (h *CoachHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid 'limit' query parameter")
			return
		}
		limit = parsed
	}

	history, err := h.coachService.GetHistory(ctx, clerkID, limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, history)
}
