package gamification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/learnhub/backend/internal/models"
	"github.com/lib/pq"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const profileColumns = `id, clerk_id, username, email, avatar_url, bio, points, xp, level,
	streak, last_active, created_at, updated_at`

// ── Profiles ────────────────────────────────────────────

func (s *Store) GetUserByID(ctx context.Context, userID string) (*models.UserProfile, error) {
	var u models.UserProfile
	err := s.db.GetContext(ctx, &u,
		`SELECT `+profileColumns+` FROM user_profiles WHERE id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Store) GetUserByClerkID(ctx context.Context, clerkID string) (*models.UserProfile, error) {
	var u models.UserProfile
	err := s.db.GetContext(ctx, &u,
		`SELECT `+profileColumns+` FROM user_profiles WHERE clerk_id = $1`, clerkID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by clerk id: %w", err)
	}
	return &u, nil
}

func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, `SELECT id FROM user_profiles ORDER BY created_at`); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return ids, nil
}

// ── XP & Streak ─────────────────────────────────────────

// AddXP increments xp and recomputes level in the same statement, so
// level = xp/500 + 1 holds after every write.
func (s *Store) AddXP(ctx context.Context, userID string, amount int) (xp, level int, err error) {
	err = s.db.QueryRowxContext(ctx,
		`UPDATE user_profiles SET
		    xp = xp + $2,
		    level = (xp + $2) / $3 + 1,
		    updated_at = NOW()
		 WHERE id = $1
		 RETURNING xp, level`,
		userID, amount, XPPerLevel,
	).Scan(&xp, &level)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrUserNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("add xp: %w", err)
	}
	return xp, level, nil
}

// UpdateStreak locks the profile row, applies NextStreak and stamps last_active.
func (s *Store) UpdateStreak(ctx context.Context, userID string, now time.Time) (streak int, bonus bool, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin streak tx: %w", err)
	}
	defer tx.Rollback()

	var row struct {
		Streak     int        `db:"streak"`
		LastActive *time.Time `db:"last_active"`
	}
	err = tx.GetContext(ctx, &row,
		`SELECT streak, last_active FROM user_profiles WHERE id = $1 FOR UPDATE`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, ErrUserNotFound
	}
	if err != nil {
		return 0, false, fmt.Errorf("lock profile: %w", err)
	}

	streak, bonus = NextStreak(row.LastActive, row.Streak, now)

	if _, err := tx.ExecContext(ctx,
		`UPDATE user_profiles SET streak = $2, last_active = $3, updated_at = NOW() WHERE id = $1`,
		userID, streak, now,
	); err != nil {
		return 0, false, fmt.Errorf("write streak: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit streak: %w", err)
	}
	return streak, bonus, nil
}

// ResetBrokenStreaks zeroes streaks whose last activity is before cutoff.
func (s *Store) ResetBrokenStreaks(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE user_profiles SET streak = 0, updated_at = NOW()
		 WHERE streak > 0 AND (last_active IS NULL OR last_active < $1)`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("reset streaks: %w", err)
	}
	return res.RowsAffected()
}

// ── Progress ────────────────────────────────────────────

// UpsertProgress inserts or updates the (user, type, ref) row. Points are added
// to the profile only when the row is created.
func (s *Store) UpsertProgress(ctx context.Context, p *models.Progress) (created bool, err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin progress tx: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM user_profiles WHERE id = $1)`, p.UserID); err != nil {
		return false, fmt.Errorf("check user: %w", err)
	}
	if !exists {
		return false, ErrUserNotFound
	}

	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	// xmax is 0 only for a freshly inserted tuple.
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO progress (id, user_id, type, ref, status, score, points)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, type, ref) DO UPDATE SET
		    status = EXCLUDED.status,
		    score = EXCLUDED.score,
		    points = EXCLUDED.points,
		    updated_at = NOW()
		 RETURNING id, created_at, updated_at, (xmax = 0) AS inserted`,
		p.ID, p.UserID, p.Type, p.Ref, p.Status, p.Score, p.Points,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &created)
	if err != nil {
		return false, fmt.Errorf("upsert progress: %w", err)
	}

	if created && p.Points != 0 {
		if _, err := tx.ExecContext(ctx,
			`UPDATE user_profiles SET points = points + $2, updated_at = NOW() WHERE id = $1`,
			p.UserID, p.Points,
		); err != nil {
			return false, fmt.Errorf("add points: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit progress: %w", err)
	}
	return created, nil
}

func (s *Store) ListProgress(ctx context.Context, userID string, activity models.ActivityType) ([]models.Progress, error) {
	query := `SELECT id, user_id, type, ref, status, score, points, created_at, updated_at
		 FROM progress WHERE user_id = $1`
	args := []interface{}{userID}
	if activity != "" {
		query += ` AND type = $2`
		args = append(args, activity)
	}
	query += ` ORDER BY updated_at DESC`

	var rows []models.Progress
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	if rows == nil {
		rows = []models.Progress{}
	}
	return rows, nil
}

// CompletedCounts groups the user's completed progress rows by type and
// returns the best completed quiz score.
func (s *Store) CompletedCounts(ctx context.Context, userID string) (map[models.ActivityType]int, int, error) {
	var groups []struct {
		Type  models.ActivityType `db:"type"`
		Count int                 `db:"count"`
	}
	err := s.db.SelectContext(ctx, &groups,
		`SELECT type, COUNT(*) AS count FROM progress
		 WHERE user_id = $1 AND status = $2
		 GROUP BY type`,
		userID, models.StatusCompleted,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("count completed: %w", err)
	}

	counts := make(map[models.ActivityType]int, len(groups))
	for _, g := range groups {
		counts[g.Type] = g.Count
	}

	var best int
	err = s.db.GetContext(ctx, &best,
		`SELECT COALESCE(MAX(score), 0) FROM progress
		 WHERE user_id = $1 AND type = $2 AND status = $3`,
		userID, models.ActivityQuiz, models.StatusCompleted,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("best quiz score: %w", err)
	}
	return counts, best, nil
}

// CountCompletedRefs counts completed rows of one type whose ref is in refs.
func (s *Store) CountCompletedRefs(ctx context.Context, userID string, activity models.ActivityType, refs []string) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM progress
		 WHERE user_id = $1 AND type = $2 AND status = $3 AND ref = ANY($4)`,
		userID, activity, models.StatusCompleted, pq.Array(refs),
	)
	if err != nil {
		return 0, fmt.Errorf("count refs: %w", err)
	}
	return n, nil
}

func (s *Store) CountCompletedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT COUNT(*) FROM progress
		 WHERE user_id = $1 AND status = $2 AND updated_at >= $3`,
		userID, models.StatusCompleted, since,
	)
	if err != nil {
		return 0, fmt.Errorf("count today: %w", err)
	}
	return n, nil
}

// ── Badges ──────────────────────────────────────────────

func (s *Store) ListBadges(ctx context.Context, userID string) ([]models.Badge, error) {
	var badges []models.Badge
	err := s.db.SelectContext(ctx, &badges,
		`SELECT id, user_id, name, icon, description, category, awarded_at
		 FROM badges WHERE user_id = $1 ORDER BY awarded_at, name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	if badges == nil {
		badges = []models.Badge{}
	}
	return badges, nil
}

// AwardBadge inserts the badge unless the user already holds one with that
// name. awarded is false when the row already existed.
func (s *Store) AwardBadge(ctx context.Context, userID string, b models.BadgeDescriptor) (awarded bool, err error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO badges (id, user_id, name, icon, description, category)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (user_id, name) DO NOTHING`,
		uuid.NewString(), userID, b.Name, b.Icon, b.Description, b.Category,
	)
	if err != nil {
		return false, fmt.Errorf("award badge: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("award badge: %w", err)
	}
	return n == 1, nil
}

// ── Leaderboard ─────────────────────────────────────────

func (s *Store) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	var entries []models.LeaderboardEntry
	err := s.db.SelectContext(ctx, &entries,
		`SELECT ROW_NUMBER() OVER (ORDER BY xp DESC, created_at) AS rank,
		        id, username, xp, level, streak
		 FROM user_profiles
		 ORDER BY xp DESC, created_at
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return entries, nil
}
