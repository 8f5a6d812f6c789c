package gamification

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/learnhub/backend/internal/models"
)

// fakeRepo is an in-memory Repository with the same uniqueness rules as the
// database schema.
type fakeRepo struct {
	mu       sync.Mutex
	now      func() time.Time
	users    map[string]*models.UserProfile
	progress map[string]*models.Progress
	badges   map[string][]models.Badge
	seq      int
}

func newFakeRepo(now func() time.Time) *fakeRepo {
	return &fakeRepo{
		now:      now,
		users:    make(map[string]*models.UserProfile),
		progress: make(map[string]*models.Progress),
		badges:   make(map[string][]models.Badge),
	}
}

func (f *fakeRepo) addUser(id string) *models.UserProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	u := &models.UserProfile{
		ID:        id,
		ClerkID:   "clerk_" + id,
		Username:  id,
		Email:     id + "@example.com",
		Level:     1,
		CreatedAt: f.now().Add(time.Duration(f.seq) * time.Second),
	}
	f.users[id] = u
	return u
}

func progressKey(userID string, t models.ActivityType, ref string) string {
	return userID + "|" + string(t) + "|" + ref
}

func (f *fakeRepo) GetUserByID(_ context.Context, userID string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetUserByClerkID(_ context.Context, clerkID string) (*models.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ClerkID == clerkID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeRepo) ListUserIDs(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeRepo) AddXP(_ context.Context, userID string, amount int) (int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return 0, 0, ErrUserNotFound
	}
	u.XP += amount
	u.Level = u.XP/XPPerLevel + 1
	return u.XP, u.Level, nil
}

func (f *fakeRepo) UpdateStreak(_ context.Context, userID string, now time.Time) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return 0, false, ErrUserNotFound
	}
	streak, bonus := NextStreak(u.LastActive, u.Streak, now)
	u.Streak = streak
	u.LastActive = &now
	return streak, bonus, nil
}

func (f *fakeRepo) ResetBrokenStreaks(_ context.Context, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, u := range f.users {
		if u.Streak > 0 && (u.LastActive == nil || u.LastActive.Before(cutoff)) {
			u.Streak = 0
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) UpsertProgress(_ context.Context, p *models.Progress) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[p.UserID]
	if !ok {
		return false, ErrUserNotFound
	}

	now := f.now()
	key := progressKey(p.UserID, p.Type, p.Ref)
	if existing, ok := f.progress[key]; ok {
		existing.Status = p.Status
		existing.Score = p.Score
		existing.Points = p.Points
		existing.UpdatedAt = now
		*p = *existing
		return false, nil
	}

	f.seq++
	p.ID = fmt.Sprintf("progress-%d", f.seq)
	p.CreatedAt = now
	p.UpdatedAt = now
	cp := *p
	f.progress[key] = &cp
	u.Points += p.Points
	return true, nil
}

func (f *fakeRepo) ListProgress(_ context.Context, userID string, activity models.ActivityType) ([]models.Progress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := []models.Progress{}
	for _, p := range f.progress {
		if p.UserID == userID && (activity == "" || p.Type == activity) {
			rows = append(rows, *p)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	return rows, nil
}

func (f *fakeRepo) CompletedCounts(_ context.Context, userID string) (map[models.ActivityType]int, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.ActivityType]int)
	best := 0
	for _, p := range f.progress {
		if p.UserID != userID || p.Status != models.StatusCompleted {
			continue
		}
		counts[p.Type]++
		if p.Type == models.ActivityQuiz && p.Score != nil && *p.Score > best {
			best = *p.Score
		}
	}
	return counts, best, nil
}

func (f *fakeRepo) CountCompletedRefs(_ context.Context, userID string, activity models.ActivityType, refs []string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ref := range refs {
		if p, ok := f.progress[progressKey(userID, activity, ref)]; ok && p.Status == models.StatusCompleted {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) CountCompletedSince(_ context.Context, userID string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.progress {
		if p.UserID == userID && p.Status == models.StatusCompleted && !p.UpdatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepo) ListBadges(_ context.Context, userID string) ([]models.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]models.Badge{}, f.badges[userID]...)
	return out, nil
}

func (f *fakeRepo) AwardBadge(_ context.Context, userID string, b models.BadgeDescriptor) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, held := range f.badges[userID] {
		if held.Name == b.Name {
			return false, nil
		}
	}
	f.seq++
	f.badges[userID] = append(f.badges[userID], models.Badge{
		ID:          fmt.Sprintf("badge-%d", f.seq),
		UserID:      userID,
		Name:        b.Name,
		Icon:        b.Icon,
		Description: b.Description,
		Category:    b.Category,
		AwardedAt:   f.now(),
	})
	return true, nil
}

func (f *fakeRepo) Leaderboard(_ context.Context, limit int) ([]models.LeaderboardEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	users := make([]*models.UserProfile, 0, len(f.users))
	for _, u := range f.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].XP != users[j].XP {
			return users[i].XP > users[j].XP
		}
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	entries := []models.LeaderboardEntry{}
	for i, u := range users {
		if i == limit {
			break
		}
		entries = append(entries, models.LeaderboardEntry{
			Rank: i + 1, UserID: u.ID, Username: u.Username, XP: u.XP, Level: u.Level, Streak: u.Streak,
		})
	}
	return entries, nil
}
