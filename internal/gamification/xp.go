package gamification

import (
	"math"

	"github.com/learnhub/backend/internal/models"
)

// XPPerLevel is the width of every level band.
const XPPerLevel = 500

// StreakBonusXP is granted on the first activity of a consecutive day.
const StreakBonusXP = 5

// CalculateLevel returns floor(xp/500) + 1.
func CalculateLevel(xp int) int {
	return xp/XPPerLevel + 1
}

// XPForNextLevel returns the XP still needed to reach CalculateLevel(xp)+1.
func XPForNextLevel(xp int) int {
	return CalculateLevel(xp)*XPPerLevel - xp
}

// XPProgress returns the percentage (0-100) through the current level band,
// rounded half away from zero, so 999 XP reports 100.
func XPProgress(xp int) int {
	into := xp % XPPerLevel
	return int(math.Round(float64(into) / XPPerLevel * 100))
}

// ActivityPoints is the fixed points award per completed activity type.
var ActivityPoints = map[models.ActivityType]int{
	models.ActivityQuiz:        10,
	models.ActivityLab:         20,
	models.ActivityDeepDive:    15,
	models.ActivityCheatsheet:  5,
	models.ActivityTrackModule: 10,
	models.ActivityTrack:       50,
}

// ScorePercent converts a raw score to a 0-100 percentage.
func ScorePercent(score, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(score) * 100 / float64(total)))
}
