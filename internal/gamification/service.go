package gamification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/learnhub/backend/internal/content"
	"github.com/learnhub/backend/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

const (
	DefaultLeaderboardLimit = 20
	MaxLeaderboardLimit     = 100
)

// Repository is the persistence the service needs. *Store implements it.
type Repository interface {
	GetUserByID(ctx context.Context, userID string) (*models.UserProfile, error)
	GetUserByClerkID(ctx context.Context, clerkID string) (*models.UserProfile, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	AddXP(ctx context.Context, userID string, amount int) (xp, level int, err error)
	UpdateStreak(ctx context.Context, userID string, now time.Time) (streak int, bonus bool, err error)
	ResetBrokenStreaks(ctx context.Context, cutoff time.Time) (int64, error)
	UpsertProgress(ctx context.Context, p *models.Progress) (created bool, err error)
	ListProgress(ctx context.Context, userID string, activity models.ActivityType) ([]models.Progress, error)
	CompletedCounts(ctx context.Context, userID string) (map[models.ActivityType]int, int, error)
	CountCompletedRefs(ctx context.Context, userID string, activity models.ActivityType, refs []string) (int, error)
	CountCompletedSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListBadges(ctx context.Context, userID string) ([]models.Badge, error)
	AwardBadge(ctx context.Context, userID string, b models.BadgeDescriptor) (bool, error)
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

type Service struct {
	store           Repository
	catalog         *content.Catalog
	dailyGoalTarget int
	now             func() time.Time
}

func NewService(store Repository, catalog *content.Catalog, dailyGoalTarget int) *Service {
	return &Service{
		store:           store,
		catalog:         catalog,
		dailyGoalTarget: dailyGoalTarget,
		now:             func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) UserByClerkID(ctx context.Context, clerkID string) (*models.UserProfile, error) {
	return s.store.GetUserByClerkID(ctx, clerkID)
}

// ── Progress ────────────────────────────────────────────

// ProgressInput describes one progress write. Status defaults to completed.
type ProgressInput struct {
	UserID string
	Type   models.ActivityType
	Ref    string
	Status string
	Score  *int
	Points int
}

// NormalizeRef slugifies each "/"-separated segment of ref. It returns "" when
// any segment is empty after normalisation.
func NormalizeRef(ref string) string {
	parts := strings.Split(strings.TrimSpace(ref), "/")
	for i, p := range parts {
		parts[i] = slug.Make(p)
		if parts[i] == "" {
			return ""
		}
	}
	return strings.Join(parts, "/")
}

// RecordProgress upserts the (user, type, ref) row. created is true only for
// the first write, which is also the only write that adds points.
func (s *Service) RecordProgress(ctx context.Context, in ProgressInput) (*models.Progress, bool, error) {
	if !models.ValidActivityTypes[in.Type] {
		return nil, false, fmt.Errorf("%w: unknown activity type %q", ErrInvalidInput, in.Type)
	}
	ref := NormalizeRef(in.Ref)
	if ref == "" {
		return nil, false, fmt.Errorf("%w: ref is required", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = models.StatusCompleted
	}
	if status != models.StatusCompleted && status != models.StatusStarted {
		return nil, false, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}
	if in.Score != nil && (*in.Score < 0 || *in.Score > 100) {
		return nil, false, fmt.Errorf("%w: score must be between 0 and 100", ErrInvalidInput)
	}

	p := &models.Progress{
		UserID: in.UserID,
		Type:   in.Type,
		Ref:    ref,
		Status: status,
		Score:  in.Score,
		Points: in.Points,
	}
	created, err := s.store.UpsertProgress(ctx, p)
	if err != nil {
		return nil, false, err
	}
	return p, created, nil
}

func (s *Service) ListProgress(ctx context.Context, userID string, activity models.ActivityType) ([]models.Progress, error) {
	if activity != "" && !models.ValidActivityTypes[activity] {
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrInvalidInput, activity)
	}
	return s.store.ListProgress(ctx, userID, activity)
}

// ── XP & Streak ─────────────────────────────────────────

// AwardXP adds amount to the user's XP and returns the new xp and level.
func (s *Service) AwardXP(ctx context.Context, userID string, amount int) (xp, level int, err error) {
	if amount < 0 {
		return 0, 0, fmt.Errorf("%w: xp amount must not be negative", ErrInvalidInput)
	}
	return s.store.AddXP(ctx, userID, amount)
}

func (s *Service) UpdateStreak(ctx context.Context, userID string) (streak int, bonus bool, err error) {
	return s.store.UpdateStreak(ctx, userID, s.now())
}

// SweepStreaks zeroes the streak of every user who was not active yesterday or today.
func (s *Service) SweepStreaks(ctx context.Context) (int64, error) {
	cutoff := utcDay(s.now()).AddDate(0, 0, -1)
	return s.store.ResetBrokenStreaks(ctx, cutoff)
}

// ── Badges ──────────────────────────────────────────────

func (s *Service) stats(ctx context.Context, userID string) (Stats, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	counts, best, err := s.store.CompletedCounts(ctx, userID)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{
		CompletedByType: counts,
		BestQuizScore:   best,
		Streak:          user.Streak,
		Level:           CalculateLevel(user.XP),
		XP:              user.XP,
		Points:          user.Points,
	}
	for _, n := range counts {
		st.TotalCompleted += n
	}
	return st, nil
}

// CheckBadges awards every qualifying badge the user does not hold yet and
// returns the names inserted by this call.
func (s *Service) CheckBadges(ctx context.Context, userID string) ([]string, error) {
	st, err := s.stats(ctx, userID)
	if err != nil {
		return nil, err
	}

	held, err := s.store.ListBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	heldSet := make(map[string]bool, len(held))
	for _, b := range held {
		heldSet[b.Name] = true
	}

	awarded := []string{}
	for _, b := range QualifyingBadges(st) {
		if heldSet[b.Name] {
			continue
		}
		ok, err := s.store.AwardBadge(ctx, userID, b)
		if err != nil {
			return awarded, err
		}
		if ok {
			log.Printf("[gamification] user %s earned badge %q", userID, b.Name)
			awarded = append(awarded, b.Name)
		}
	}
	return awarded, nil
}

func (s *Service) ListBadges(ctx context.Context, userID string) ([]models.Badge, error) {
	return s.store.ListBadges(ctx, userID)
}

// ── Daily Goal ──────────────────────────────────────────

func (s *Service) DailyGoal(ctx context.Context, userID string) (models.DailyGoalInfo, error) {
	n, err := s.store.CountCompletedSince(ctx, userID, utcDay(s.now()))
	if err != nil {
		return models.DailyGoalInfo{}, err
	}
	return models.DailyGoalInfo{
		Completed: n,
		Target:    s.dailyGoalTarget,
		Achieved:  n >= s.dailyGoalTarget,
	}, nil
}

// ── Completion Flows ────────────────────────────────────

func (s *Service) CompleteQuiz(ctx context.Context, userID string, req models.CompleteQuizRequest) (*models.CompletionResponse, error) {
	if req.Total <= 0 || req.Score < 0 || req.Score > req.Total {
		return nil, fmt.Errorf("%w: score must be between 0 and total", ErrInvalidInput)
	}
	ref := NormalizeRef(req.Slug)
	if !s.catalog.Has(models.ActivityQuiz, ref) {
		return nil, fmt.Errorf("%w: quiz %q", ErrNotFound, req.Slug)
	}

	score := ScorePercent(req.Score, req.Total)
	return s.complete(ctx, userID, ProgressInput{
		Type:  models.ActivityQuiz,
		Ref:   ref,
		Score: &score,
	})
}

// CompleteActivity is the generic completion path for labs, deep dives and
// cheatsheets. Track progress goes through CompleteTrackModule.
func (s *Service) CompleteActivity(ctx context.Context, userID string, activity models.ActivityType, ref string, score *int) (*models.CompletionResponse, error) {
	switch activity {
	case models.ActivityLab, models.ActivityDeepDive, models.ActivityCheatsheet, models.ActivityQuiz:
	case models.ActivityTrack, models.ActivityTrackModule:
		return nil, fmt.Errorf("%w: use the track module endpoint", ErrInvalidInput)
	default:
		return nil, fmt.Errorf("%w: unknown activity type %q", ErrInvalidInput, activity)
	}

	ref = NormalizeRef(ref)
	if !s.catalog.Has(activity, ref) {
		return nil, fmt.Errorf("%w: %s %q", ErrNotFound, activity, ref)
	}
	return s.complete(ctx, userID, ProgressInput{Type: activity, Ref: ref, Score: score})
}

func (s *Service) CompleteTrackModule(ctx context.Context, userID, trackSlug, moduleSlug string) (*models.CompletionResponse, error) {
	trackSlug, moduleSlug = NormalizeRef(trackSlug), NormalizeRef(moduleSlug)
	track, ok := s.catalog.Track(trackSlug)
	if !ok {
		return nil, fmt.Errorf("%w: track %q", ErrNotFound, trackSlug)
	}
	if !track.HasModule(moduleSlug) {
		return nil, fmt.Errorf("%w: module %q in track %q", ErrNotFound, moduleSlug, trackSlug)
	}

	resp, err := s.complete(ctx, userID, ProgressInput{
		Type: models.ActivityTrackModule,
		Ref:  content.ModuleRef(trackSlug, moduleSlug),
	})
	if err != nil {
		return nil, err
	}

	refs := make([]string, len(track.Modules))
	for i, m := range track.Modules {
		refs[i] = content.ModuleRef(trackSlug, m.Slug)
	}
	done, err := s.store.CountCompletedRefs(ctx, userID, models.ActivityTrackModule, refs)
	if err != nil {
		return nil, err
	}
	if done < len(refs) {
		return resp, nil
	}

	_, created, err := s.RecordProgress(ctx, ProgressInput{
		UserID: userID,
		Type:   models.ActivityTrack,
		Ref:    trackSlug,
		Points: ActivityPoints[models.ActivityTrack],
	})
	if err != nil {
		return nil, err
	}
	if !created {
		return resp, nil
	}

	log.Printf("[gamification] user %s completed track %s", userID, trackSlug)
	resp.TrackCompleted = true
	resp.Points += ActivityPoints[models.ActivityTrack]
	if err := s.finish(ctx, userID, ActivityPoints[models.ActivityTrack], resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// complete records a completed activity, then applies XP, streak, badges and
// the daily goal in that order.
func (s *Service) complete(ctx context.Context, userID string, in ProgressInput) (*models.CompletionResponse, error) {
	in.UserID = userID
	in.Status = models.StatusCompleted
	in.Points = ActivityPoints[in.Type]

	_, created, err := s.RecordProgress(ctx, in)
	if err != nil {
		return nil, err
	}

	resp := &models.CompletionResponse{Success: true}
	xp := 0
	if created {
		resp.Points = in.Points
		xp = in.Points
	}

	streak, bonus, err := s.UpdateStreak(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp.Streak = streak
	resp.StreakBonus = bonus
	if bonus {
		xp += StreakBonusXP
	}

	if err := s.finish(ctx, userID, xp, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// finish awards xp, re-evaluates badges and the daily goal, and fills the
// totals on resp.
func (s *Service) finish(ctx context.Context, userID string, xp int, resp *models.CompletionResponse) error {
	if xp > 0 {
		if _, _, err := s.AwardXP(ctx, userID, xp); err != nil {
			return err
		}
		resp.XPAwarded += xp
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	resp.XP = user.XP
	resp.Level = user.Level

	badges, err := s.CheckBadges(ctx, userID)
	if err != nil {
		return err
	}
	resp.BadgesAwarded = append(resp.BadgesAwarded, badges...)
	if resp.BadgesAwarded == nil {
		resp.BadgesAwarded = []string{}
	}

	goal, err := s.DailyGoal(ctx, userID)
	if err != nil {
		return err
	}
	resp.DailyGoal = goal
	return nil
}

// ── Summary & Leaderboard ───────────────────────────────

func (s *Service) Summary(ctx context.Context, userID string) (*models.SummaryResponse, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	badges, err := s.store.ListBadges(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts, _, err := s.store.CompletedCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	goal, err := s.DailyGoal(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &models.SummaryResponse{
		Profile:         *user,
		Level:           CalculateLevel(user.XP),
		XPForNextLevel:  XPForNextLevel(user.XP),
		XPProgress:      XPProgress(user.XP),
		Badges:          badges,
		DailyGoal:       goal,
		CompletedByType: counts,
	}, nil
}

// Leaderboard returns the top users by XP with the caller marked.
func (s *Service) Leaderboard(ctx context.Context, currentUserID string, limit int) (*models.LeaderboardResponse, error) {
	if limit <= 0 {
		limit = DefaultLeaderboardLimit
	}
	if limit > MaxLeaderboardLimit {
		limit = MaxLeaderboardLimit
	}

	entries, err := s.store.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].IsCurrentUser = entries[i].UserID == currentUserID
	}
	return &models.LeaderboardResponse{Entries: entries}, nil
}

// BackfillBadges re-runs badge evaluation for every user and returns how many
// badges were newly awarded.
func (s *Service) BackfillBadges(ctx context.Context) (int, error) {
	ids, err := s.store.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, id := range ids {
		awarded, err := s.CheckBadges(ctx, id)
		if err != nil {
			return total, fmt.Errorf("backfill %s: %w", id, err)
		}
		total += len(awarded)
	}
	return total, nil
}
