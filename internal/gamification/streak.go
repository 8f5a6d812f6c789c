package gamification

import "time"

// NextStreak computes the streak after activity at now. Days are compared as
// UTC calendar dates. bonus is true only when the streak was extended by a
// consecutive day.
func NextStreak(lastActive *time.Time, streak int, now time.Time) (next int, bonus bool) {
	if lastActive == nil {
		return 1, false
	}

	switch days := daysBetween(*lastActive, now); {
	case days <= 0:
		if streak < 1 {
			return 1, false
		}
		return streak, false
	case days == 1:
		return streak + 1, true
	default:
		return 1, false
	}
}

func utcDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

func daysBetween(from, to time.Time) int {
	return int(utcDay(to).Sub(utcDay(from)).Hours() / 24)
}
