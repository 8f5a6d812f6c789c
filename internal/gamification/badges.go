package gamification

import "github.com/learnhub/backend/internal/models"

// Stats is the aggregate a badge rule is evaluated against.
type Stats struct {
	CompletedByType map[models.ActivityType]int
	TotalCompleted  int
	BestQuizScore   int
	Streak          int
	Level           int
	XP              int
	Points          int
}

func (s Stats) completed(t models.ActivityType) int {
	return s.CompletedByType[t]
}

// BadgeRule pairs a badge with the predicate that earns it.
type BadgeRule struct {
	Badge     models.BadgeDescriptor
	Qualifies func(Stats) bool
}

const (
	CategoryMilestone  = "milestone"
	CategoryQuiz       = "quiz"
	CategoryLab        = "lab"
	CategoryDeepDive   = "deep-dive"
	CategoryCheatsheet = "cheatsheet"
	CategoryTrack      = "track"
	CategoryStreak     = "streak"
	CategoryLevel      = "level"
)

// QuizMasterScore is the minimum quiz percentage for Quiz Master.
const QuizMasterScore = 90

func completedAtLeast(t models.ActivityType, n int) func(Stats) bool {
	return func(s Stats) bool { return s.completed(t) >= n }
}

func totalAtLeast(n int) func(Stats) bool {
	return func(s Stats) bool { return s.TotalCompleted >= n }
}

func streakAtLeast(n int) func(Stats) bool {
	return func(s Stats) bool { return s.Streak >= n }
}

func levelAtLeast(n int) func(Stats) bool {
	return func(s Stats) bool { return s.Level >= n }
}

// BadgeRules is the only place badge thresholds are defined.
var BadgeRules = []BadgeRule{
	{
		Badge:     models.BadgeDescriptor{Name: "First Steps", Icon: "👣", Description: "Complete your first activity", Category: CategoryMilestone},
		Qualifies: totalAtLeast(1),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Quiz Master", Icon: "🧠", Description: "Score 90% or higher on a quiz", Category: CategoryQuiz},
		Qualifies: func(s Stats) bool { return s.completed(models.ActivityQuiz) > 0 && s.BestQuizScore >= QuizMasterScore },
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Quiz Enthusiast", Icon: "📝", Description: "Complete 5 quizzes", Category: CategoryQuiz},
		Qualifies: completedAtLeast(models.ActivityQuiz, 5),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Lab Explorer", Icon: "🧪", Description: "Complete your first lab", Category: CategoryLab},
		Qualifies: completedAtLeast(models.ActivityLab, 1),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Lab Veteran", Icon: "🔬", Description: "Complete 10 labs", Category: CategoryLab},
		Qualifies: completedAtLeast(models.ActivityLab, 10),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Deep Diver", Icon: "🤿", Description: "Finish your first deep dive", Category: CategoryDeepDive},
		Qualifies: completedAtLeast(models.ActivityDeepDive, 1),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Cheatsheet Collector", Icon: "📚", Description: "Study 5 cheatsheets", Category: CategoryCheatsheet},
		Qualifies: completedAtLeast(models.ActivityCheatsheet, 5),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Track Finisher", Icon: "🏁", Description: "Complete every module of a track", Category: CategoryTrack},
		Qualifies: completedAtLeast(models.ActivityTrack, 1),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Dedicated Learner", Icon: "🎓", Description: "Complete 10 activities", Category: CategoryMilestone},
		Qualifies: totalAtLeast(10),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Knowledge Seeker", Icon: "🦉", Description: "Complete 50 activities", Category: CategoryMilestone},
		Qualifies: totalAtLeast(50),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "On Fire", Icon: "🔥", Description: "3-day streak", Category: CategoryStreak},
		Qualifies: streakAtLeast(3),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Consistency King", Icon: "👑", Description: "7-day streak", Category: CategoryStreak},
		Qualifies: streakAtLeast(7),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Unstoppable", Icon: "🚀", Description: "30-day streak", Category: CategoryStreak},
		Qualifies: streakAtLeast(30),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Level 5", Icon: "⭐", Description: "Reach level 5", Category: CategoryLevel},
		Qualifies: levelAtLeast(5),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Level 10", Icon: "🌟", Description: "Reach level 10", Category: CategoryLevel},
		Qualifies: levelAtLeast(10),
	},
	{
		Badge:     models.BadgeDescriptor{Name: "Level 25", Icon: "💫", Description: "Reach level 25", Category: CategoryLevel},
		Qualifies: levelAtLeast(25),
	},
}

// QualifyingBadges returns every badge the stats earn, in rule-table order.
// The caller is responsible for skipping badges the user already holds.
func QualifyingBadges(s Stats) []models.BadgeDescriptor {
	var earned []models.BadgeDescriptor
	for _, r := range BadgeRules {
		if r.Qualifies(s) {
			earned = append(earned, r.Badge)
		}
	}
	return earned
}

// BadgeCatalog lists every badge that can be earned.
func BadgeCatalog() []models.BadgeDescriptor {
	out := make([]models.BadgeDescriptor, len(BadgeRules))
	for i, r := range BadgeRules {
		out[i] = r.Badge
	}
	return out
}
