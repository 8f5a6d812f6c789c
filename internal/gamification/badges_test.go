package gamification

import (
	"testing"

	"github.com/learnhub/backend/internal/models"
)

func names(badges []models.BadgeDescriptor) map[string]bool {
	out := make(map[string]bool, len(badges))
	for _, b := range badges {
		out[b.Name] = true
	}
	return out
}

func TestBadgeRulesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, r := range BadgeRules {
		if seen[r.Badge.Name] {
			t.Errorf("duplicate badge rule %q", r.Badge.Name)
		}
		seen[r.Badge.Name] = true
		if r.Qualifies == nil {
			t.Errorf("badge %q has no predicate", r.Badge.Name)
		}
	}
	if len(BadgeCatalog()) != len(BadgeRules) {
		t.Errorf("catalog has %d entries, want %d", len(BadgeCatalog()), len(BadgeRules))
	}
}

func TestQualifyingBadges(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  []string
		never []string
	}{
		{
			name:  "nothing done",
			stats: Stats{Level: 1},
			never: []string{"First Steps", "Quiz Master", "On Fire"},
		},
		{
			name: "first quiz high score",
			stats: Stats{
				CompletedByType: map[models.ActivityType]int{models.ActivityQuiz: 1},
				TotalCompleted:  1,
				BestQuizScore:   95,
				Streak:          1,
				Level:           1,
			},
			want:  []string{"First Steps", "Quiz Master"},
			never: []string{"Quiz Enthusiast", "On Fire"},
		},
		{
			name: "quiz at threshold",
			stats: Stats{
				CompletedByType: map[models.ActivityType]int{models.ActivityQuiz: 1},
				TotalCompleted:  1,
				BestQuizScore:   QuizMasterScore,
			},
			want: []string{"Quiz Master"},
		},
		{
			name: "quiz below threshold",
			stats: Stats{
				CompletedByType: map[models.ActivityType]int{models.ActivityQuiz: 1},
				TotalCompleted:  1,
				BestQuizScore:   89,
			},
			want:  []string{"First Steps"},
			never: []string{"Quiz Master"},
		},
		{
			name:  "streaks",
			stats: Stats{Streak: 7},
			want:  []string{"On Fire", "Consistency King"},
			never: []string{"Unstoppable"},
		},
		{
			name:  "levels",
			stats: Stats{Level: 10},
			want:  []string{"Level 5", "Level 10"},
			never: []string{"Level 25"},
		},
		{
			name: "track finished",
			stats: Stats{
				CompletedByType: map[models.ActivityType]int{models.ActivityTrackModule: 3, models.ActivityTrack: 1},
				TotalCompleted:  4,
			},
			want: []string{"First Steps", "Track Finisher"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := names(QualifyingBadges(tt.stats))
			for _, n := range tt.want {
				if !got[n] {
					t.Errorf("expected %q to qualify", n)
				}
			}
			for _, n := range tt.never {
				if got[n] {
					t.Errorf("did not expect %q to qualify", n)
				}
			}
		})
	}
}

func TestQualifyingBadgesMonotonic(t *testing.T) {
	lower := Stats{
		CompletedByType: map[models.ActivityType]int{models.ActivityLab: 1},
		TotalCompleted:  1,
		Streak:          3,
		Level:           5,
	}
	higher := Stats{
		CompletedByType: map[models.ActivityType]int{models.ActivityLab: 10, models.ActivityQuiz: 5},
		TotalCompleted:  15,
		BestQuizScore:   100,
		Streak:          8,
		Level:           6,
	}

	got := names(QualifyingBadges(higher))
	for n := range names(QualifyingBadges(lower)) {
		if !got[n] {
			t.Errorf("%q qualified at lower stats but not higher", n)
		}
	}
}
