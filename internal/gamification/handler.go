package gamification

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// currentUser resolves the token subject to a synced profile. It writes the
// error response itself and returns false when the request cannot continue.
func (h *Handler) currentUser(w http.ResponseWriter, r *http.Request) (*models.UserProfile, bool) {
	clerkID, ok := middleware.ClerkID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return nil, false
	}

	user, err := h.service.UserByClerkID(r.Context(), clerkID)
	if err != nil {
		writeError(w, err, "Failed to load profile")
		return nil, false
	}
	return user, true
}

// ── Summary ─────────────────────────────────────────────

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Summary(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, "Failed to get summary")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Completions ─────────────────────────────────────────

func (h *Handler) CompleteQuiz(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.CompleteQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.CompleteQuiz(r.Context(), user.ID, req)
	if err != nil {
		writeError(w, err, "Failed to complete quiz")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) CompleteTrackModule(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.CompleteModuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if req.Module == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "module is required"})
		return
	}

	resp, err := h.service.CompleteTrackModule(r.Context(), user.ID, mux.Vars(r)["slug"], req.Module)
	if err != nil {
		writeError(w, err, "Failed to complete module")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) RecordProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req models.RecordProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	resp, err := h.service.CompleteActivity(r.Context(), user.ID, req.Type, req.Ref, req.Score)
	if err != nil {
		writeError(w, err, "Failed to record progress")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) ListProgress(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	activity := models.ActivityType(r.URL.Query().Get("type"))
	rows, err := h.service.ListProgress(r.Context(), user.ID, activity)
	if err != nil {
		writeError(w, err, "Failed to list progress")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// ── Badges & Daily Goal ─────────────────────────────────

func (h *Handler) ListBadges(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	badges, err := h.service.ListBadges(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, "Failed to list badges")
		return
	}
	writeJSON(w, http.StatusOK, badges)
}

func (h *Handler) BadgeCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, BadgeCatalog())
}

func (h *Handler) GetDailyGoal(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	goal, err := h.service.DailyGoal(r.Context(), user.ID)
	if err != nil {
		writeError(w, err, "Failed to get daily goal")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

// ── Leaderboard ─────────────────────────────────────────

func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	limit := intQueryParam(r.URL.Query(), "limit", DefaultLeaderboardLimit)
	resp, err := h.service.Leaderboard(r.Context(), user.ID, limit)
	if err != nil {
		writeError(w, err, "Failed to get leaderboard")
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ── Helpers ─────────────────────────────────────────────

// writeError maps service sentinels to status codes. Anything else is logged
// and reported as fallback.
func writeError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Profile not found, sync the user first"})
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	default:
		log.Printf("[gamification] %s: %v", fallback, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: fallback})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func intQueryParam(query url.Values, key string, defaultVal int) int {
	v := query.Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return n
}
