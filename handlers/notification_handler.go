package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ascendAPI/internal/notification"
	"ascendAPI/middleware"
	"ascendAPI/services"
)

type NotificationHandler struct {
	reminderService *services.ReminderService
}

func NewNotificationHandler(reminderService *services.ReminderService) *NotificationHandler {
	return &NotificationHandler{
		reminderService: reminderService,
	}
}

func (h *NotificationHandler) RegisterDevice(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req notification.RegisterDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Token == "" {
		respondWithError(w, http.StatusBadRequest, "token is required")
		return
	}

	if err := h.reminderService.RegisterDevice(ctx, clerkID, &req); err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "Device registered successfully"})
}
