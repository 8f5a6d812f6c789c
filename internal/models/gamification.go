package models

import "time"

// ── Core Gamification Structs ─────────────────────────────

type ActivityType string

const (
	ActivityQuiz        ActivityType = "quiz"
	ActivityLab         ActivityType = "lab"
	ActivityDeepDive    ActivityType = "deep-dive"
	ActivityCheatsheet  ActivityType = "cheatsheet"
	ActivityTrackModule ActivityType = "track-module"
	ActivityTrack       ActivityType = "track"
)

// ValidActivityTypes lists every type a progress row may carry.
var ValidActivityTypes = map[ActivityType]bool{
	ActivityQuiz:        true,
	ActivityLab:         true,
	ActivityDeepDive:    true,
	ActivityCheatsheet:  true,
	ActivityTrackModule: true,
	ActivityTrack:       true,
}

const (
	StatusStarted   = "started"
	StatusCompleted = "completed"
)

// Progress is one row per (user, type, ref).
type Progress struct {
	ID        string       `db:"id" json:"id"`
	UserID    string       `db:"user_id" json:"user_id"`
	Type      ActivityType `db:"type" json:"type"`
	Ref       string       `db:"ref" json:"ref"`
	Status    string       `db:"status" json:"status"`
	Score     *int         `db:"score" json:"score,omitempty"`
	Points    int          `db:"points" json:"points"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// Badge is an awarded achievement. Rows are never removed.
type Badge struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Name        string    `db:"name" json:"name"`
	Icon        string    `db:"icon" json:"icon"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	AwardedAt   time.Time `db:"awarded_at" json:"awarded_at"`
}

// ── Request Types ─────────────────────────────────────────

type CompleteQuizRequest struct {
	Slug  string `json:"slug"`
	Score int    `json:"score"`
	Total int    `json:"total"`
}

type CompleteModuleRequest struct {
	Module string `json:"module"`
}

type RecordProgressRequest struct {
	Type  ActivityType `json:"type"`
	Ref   string       `json:"ref"`
	Score *int         `json:"score,omitempty"`
}

// ── Response Types ────────────────────────────────────────

type DailyGoalInfo struct {
	Completed int  `json:"completed"`
	Target    int  `json:"target"`
	Achieved  bool `json:"achieved"`
}

type CompletionResponse struct {
	Success        bool          `json:"success"`
	Points         int           `json:"points"`
	XPAwarded      int           `json:"xp_awarded"`
	XP             int           `json:"xp"`
	Level          int           `json:"level"`
	Streak         int           `json:"streak"`
	StreakBonus    bool          `json:"streak_bonus"`
	BadgesAwarded  []string      `json:"badges_awarded"`
	DailyGoal      DailyGoalInfo `json:"daily_goal"`
	TrackCompleted bool          `json:"track_completed,omitempty"`
}

type SummaryResponse struct {
	Profile         UserProfile          `json:"profile"`
	Level           int                  `json:"level"`
	XPForNextLevel  int                  `json:"xp_for_next_level"`
	XPProgress      int                  `json:"xp_progress"`
	Badges          []Badge              `json:"badges"`
	DailyGoal       DailyGoalInfo        `json:"daily_goal"`
	CompletedByType map[ActivityType]int `json:"completed_by_type"`
}

type BadgeDescriptor struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type LeaderboardEntry struct {
	Rank          int    `db:"rank" json:"rank"`
	UserID        string `db:"id" json:"user_id"`
	Username      string `db:"username" json:"username"`
	XP            int    `db:"xp" json:"xp"`
	Level         int    `db:"level" json:"level"`
	Streak        int    `db:"streak" json:"streak"`
	IsCurrentUser bool   `db:"-" json:"is_current_user"`
}

type LeaderboardResponse struct {
	Entries []LeaderboardEntry `json:"entries"`
}
