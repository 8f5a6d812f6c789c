package models

import "time"

// UserProfile is created on first sign-in and keyed by the auth provider's user ID.
type UserProfile struct {
	ID         string     `db:"id" json:"id"`
	ClerkID    string     `db:"clerk_id" json:"clerk_id"`
	Username   string     `db:"username" json:"username"`
	Email      string     `db:"email" json:"email"`
	AvatarURL  *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Bio        *string    `db:"bio" json:"bio,omitempty"`
	Points     int        `db:"points" json:"points"`
	XP         int        `db:"xp" json:"xp"`
	Level      int        `db:"level" json:"level"`
	Streak     int        `db:"streak" json:"streak"`
	LastActive *time.Time `db:"last_active" json:"last_active,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// SyncUserRequest carries the profile fields the client received from the auth provider.
type SyncUserRequest struct {
	Username  string  `json:"username"`
	Email     string  `json:"email"`
	AvatarURL *string `json:"avatar_url,omitempty"`
	Bio       *string `json:"bio,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
