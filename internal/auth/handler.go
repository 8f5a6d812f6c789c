// Package auth keeps the local profile in step with the external auth provider.
// Credentials never reach this service; the provider's user ID arrives as the
// token subject.
package auth

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jmoiron/sqlx"
	"github.com/learnhub/backend/internal/middleware"
	"github.com/learnhub/backend/internal/models"
)

type Handler struct {
	db *sqlx.DB
}

func NewHandler(db *sqlx.DB) *Handler {
	return &Handler{db: db}
}

// SyncUser upserts the caller's profile keyed by clerk_id. Gamification
// counters are never touched here.
func (h *Handler) SyncUser(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.ClerkID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SyncUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Email is required"})
		return
	}
	if req.Username == "" {
		req.Username = DefaultUsername(req.Email)
	}

	user, err := UpsertUser(r.Context(), h.db, clerkID, req)
	if err != nil {
		log.Printf("[auth] sync %s failed: %v", clerkID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to sync user"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	clerkID, ok := middleware.ClerkID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var user models.UserProfile
	err := h.db.GetContext(r.Context(), &user,
		`SELECT id, clerk_id, username, email, avatar_url, bio, points, xp, level,
		        streak, last_active, created_at, updated_at
		 FROM user_profiles WHERE clerk_id = $1`,
		clerkID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		return
	}
	if err != nil {
		log.Printf("[auth] load %s failed: %v", clerkID, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// UpsertUser creates the profile on first sign-in and refreshes the
// provider-owned fields afterwards. avatar_url and bio keep their stored value
// when the request omits them.
func UpsertUser(ctx context.Context, db *sqlx.DB, clerkID string, req models.SyncUserRequest) (*models.UserProfile, error) {
	var user models.UserProfile
	err := db.GetContext(ctx, &user,
		`INSERT INTO user_profiles (id, clerk_id, username, email, avatar_url, bio)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (clerk_id) DO UPDATE SET
		    username = EXCLUDED.username,
		    email = EXCLUDED.email,
		    avatar_url = COALESCE(EXCLUDED.avatar_url, user_profiles.avatar_url),
		    bio = COALESCE(EXCLUDED.bio, user_profiles.bio),
		    updated_at = NOW()
		 RETURNING id, clerk_id, username, email, avatar_url, bio, points, xp, level,
		           streak, last_active, created_at, updated_at`,
		uuid.NewString(), clerkID, req.Username, req.Email, req.AvatarURL, req.Bio,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DefaultUsername derives a username from the local part of an email address.
func DefaultUsername(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if name := slug.Make(local); name != "" {
		return name
	}
	return "learner"
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
