package services

import "time"

// NextStreakOnSession returns the streak after a session recorded today. A zero
// lastPracticeDate means no session was ever recorded. A today that precedes
// the last practice date leaves the streak untouched.
func NextStreakOnSession(lastPracticeDate time.Time, currentStreak int, today time.Time) int {
	if currentStreak < 0 {
		currentStreak = 0
	}
	if lastPracticeDate.IsZero() {
		return 1
	}

	switch diff := DaysBetween(lastPracticeDate, today); {
	case diff <= 0:
		return currentStreak
	case diff == 1:
		return currentStreak + 1
	default:
		return 1
	}
}

func ResetStreakOnMissedDay() int {
	return 0
}

// NeedsInquiry reports whether a missed-day reflection must be written before
// the next session can start.
func NeedsInquiry(lastPracticeDate time.Time, today time.Time, hasTodaysReflection bool) bool {
	if lastPracticeDate.IsZero() {
		return false
	}
	if DaysBetween(lastPracticeDate, today) <= 1 {
		return false
	}
	return !hasTodaysReflection
}
