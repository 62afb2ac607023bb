package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ascendAPI/internal/vision"
	"ascendAPI/middleware"
	"ascendAPI/services"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type VisionHandler struct {
	visionService *services.VisionService
}

func NewVisionHandler(visionService *services.VisionService) *VisionHandler {
	return &VisionHandler{
		visionService: visionService,
	}
}

func (h *VisionHandler) CreateVision(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	var req vision.CreateVisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v, err := h.visionService.CreateVision(ctx, clerkID, &req)
	if err != nil {
		if strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "invalid") {
			respondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusCreated, v)
}

func (h *VisionHandler) GetVisions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	includeArchived := r.URL.Query().Get("archived") == "true"

	visions, err := h.visionService.GetVisions(ctx, clerkID, includeArchived)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, visions)
}

func (h *VisionHandler) GetVision(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	visionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vision id")
		return
	}

	v, err := h.visionService.GetVision(ctx, clerkID, visionID)
	if err != nil {
		if err.Error() == "vision not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, v)
}

func (h *VisionHandler) UpdateVision(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	visionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vision id")
		return
	}

	var req vision.UpdateVisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v, err := h.visionService.UpdateVision(ctx, clerkID, visionID, &req)
	if err != nil {
		switch {
		case err.Error() == "vision not found":
			respondWithError(w, http.StatusNotFound, err.Error())
		case strings.Contains(err.Error(), "invalid") || strings.Contains(err.Error(), "must be"):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusOK, v)
}

func (h *VisionHandler) ArchiveVision(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

func (h *VisionHandler) UnarchiveVision(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *VisionHandler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	visionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vision id")
		return
	}

	if err := h.visionService.SetArchived(ctx, clerkID, visionID, archived); err != nil {
		if err.Error() == "vision not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]bool{"archived": archived})
}

func (h *VisionHandler) DeleteVision(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	visionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vision id")
		return
	}

	if err := h.visionService.DeleteVision(ctx, clerkID, visionID); err != nil {
		if err.Error() == "vision not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Vision deleted successfully"})
}

func (h *VisionHandler) GetPaths(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	visionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vision id")
		return
	}

	paths, err := h.visionService.GetPaths(ctx, clerkID, visionID)
	if err != nil {
		if err.Error() == "vision not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, paths)
}

func (h *VisionHandler) CreatePath(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	visionID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid vision id")
		return
	}

	var req vision.CreatePathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.visionService.CreatePath(ctx, clerkID, visionID, &req)
	if err != nil {
		switch {
		case err.Error() == "vision not found":
			respondWithError(w, http.StatusNotFound, err.Error())
		case strings.Contains(err.Error(), "required") || strings.Contains(err.Error(), "invalid"):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, p)
}

func (h *VisionHandler) UpdatePath(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	pathID, err := uuid.Parse(mux.Vars(r)["pathId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid path id")
		return
	}

	var req vision.UpdatePathRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.visionService.UpdatePath(ctx, clerkID, pathID, &req)
	if err != nil {
		switch {
		case err.Error() == "path not found":
			respondWithError(w, http.StatusNotFound, err.Error())
		case strings.Contains(err.Error(), "invalid"):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	respondWithJSON(w, http.StatusOK, p)
}

func (h *VisionHandler) DeletePath(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	clerkID, ok := middleware.GetClerkID(ctx)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "User not authenticated")
		return
	}

	pathID, err := uuid.Parse(mux.Vars(r)["pathId"])
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid path id")
		return
	}

	if err := h.visionService.DeletePath(ctx, clerkID, pathID); err != nil {
		if err.Error() == "path not found" {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Path deleted successfully"})
}
