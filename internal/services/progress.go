package services

import "time"

type ExperimentProgress struct {
	CurrentDay    int     `json:"current_day"`
	DaysCompleted int     `json:"days_completed"`
	DaysRemaining int     `json:"days_remaining"`
	Progress      float64 `json:"progress"`
}

// ComputeProgress clamps every value to the experiment window. Durations below
// one day are rejected at creation, so they only yield the day-one state here.
func ComputeProgress(startDate time.Time, durationDays int, today time.Time) ExperimentProgress {
	if durationDays < 1 {
		return ExperimentProgress{CurrentDay: 1}
	}

	daysSinceStart := DaysBetween(startDate, today)
	daysCompleted := clampInt(daysSinceStart, 0, durationDays)
	return ExperimentProgress{
		CurrentDay:    clampInt(daysSinceStart+1, 1, durationDays),
		DaysCompleted: daysCompleted,
		DaysRemaining: durationDays - daysCompleted,
		Progress:      float64(daysCompleted) / float64(durationDays),
	}
}

func ExperimentEndDate(startDate time.Time, durationDays int) time.Time {
	return startDate.AddDate(0, 0, durationDays)
}

func clampInt(value int, low int, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
