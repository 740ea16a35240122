package services

import (
	"errors"
	"testing"
	"time"
)

func mustParseDay(t *testing.T, raw string) time.Time {
	t.Helper()
	day, err := ParseDay(raw, time.UTC)
	if err != nil {
		t.Fatalf("parse day %q: %v", raw, err)
	}
	return day
}

func TestComputeProgressAfterWindowElapsed(t *testing.T) {
	got := ComputeProgress(mustParseDay(t, "2026-01-10"), 7, mustParseDay(t, "2026-01-20"))
	want := ExperimentProgress{CurrentDay: 7, DaysCompleted: 7, DaysRemaining: 0, Progress: 1}
	if got != want {
		t.Fatalf("ComputeProgress() = %+v, want %+v", got, want)
	}
}

func TestComputeProgressInsideWindow(t *testing.T) {
	got := ComputeProgress(mustParseDay(t, "2026-01-10"), 7, mustParseDay(t, "2026-01-12"))
	if got.CurrentDay != 3 || got.DaysCompleted != 2 || got.DaysRemaining != 5 {
		t.Fatalf("unexpected progress: %+v", got)
	}
	if got.Progress != 2.0/7.0 {
		t.Fatalf("expected progress 2/7, got %v", got.Progress)
	}
}

func TestComputeProgressOnStartDate(t *testing.T) {
	start := mustParseDay(t, "2026-01-10")
	got := ComputeProgress(start, 14, start)
	want := ExperimentProgress{CurrentDay: 1, DaysCompleted: 0, DaysRemaining: 14, Progress: 0}
	if got != want {
		t.Fatalf("ComputeProgress() = %+v, want %+v", got, want)
	}
}

func TestComputeProgressClampsAcrossDurations(t *testing.T) {
	start := mustParseDay(t, "2026-01-10")

	for duration := 1; duration <= 30; duration++ {
		for offset := -10; offset <= 45; offset++ {
			today := start.AddDate(0, 0, offset)
			got := ComputeProgress(start, duration, today)

			if got.DaysCompleted+got.DaysRemaining != duration {
				t.Fatalf("D=%d offset=%d: completed+remaining = %d", duration, offset, got.DaysCompleted+got.DaysRemaining)
			}
			if got.CurrentDay < 1 || got.CurrentDay > duration {
				t.Fatalf("D=%d offset=%d: current day %d out of range", duration, offset, got.CurrentDay)
			}
			if got.Progress < 0 || got.Progress > 1 {
				t.Fatalf("D=%d offset=%d: progress %v out of range", duration, offset, got.Progress)
			}
			if offset <= 0 && (got.CurrentDay != 1 || got.Progress != 0) {
				t.Fatalf("D=%d offset=%d: expected day one with zero progress, got %+v", duration, offset, got)
			}
			if offset >= duration && (got.CurrentDay != duration || got.DaysCompleted != duration || got.Progress != 1) {
				t.Fatalf("D=%d offset=%d: expected completed window, got %+v", duration, offset, got)
			}
		}
	}
}

func TestComputeProgressWithoutDuration(t *testing.T) {
	start := mustParseDay(t, "2026-01-10")
	got := ComputeProgress(start, 0, start.AddDate(0, 0, 3))
	if got != (ExperimentProgress{CurrentDay: 1}) {
		t.Fatalf("expected day-one state, got %+v", got)
	}
}

func TestExperimentEndDate(t *testing.T) {
	end := ExperimentEndDate(mustParseDay(t, "2026-01-28"), 7)
	if DayKey(end) != "2026-02-04" {
		t.Fatalf("expected 2026-02-04, got %s", DayKey(end))
	}
}

func TestParseDayUsesLocalMidnight(t *testing.T) {
	location := time.FixedZone("UTC-8", -8*60*60)
	day, err := ParseDay(" 2026-03-01 ", location)
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	if day.Location() != location || day.Hour() != 0 || DayKey(day) != "2026-03-01" {
		t.Fatalf("expected local midnight of 2026-03-01, got %v", day)
	}

	if _, err := ParseDay("2026-02-30", location); !errors.Is(err, ErrInvalidDay) {
		t.Fatalf("expected ErrInvalidDay, got %v", err)
	}
}

func TestTodayKeyFollowsLocation(t *testing.T) {
	instant := time.Date(2026, 1, 20, 23, 30, 0, 0, time.UTC)
	ahead := time.FixedZone("UTC+3", 3*60*60)
	if got := TodayKey(instant, ahead); got != "2026-01-21" {
		t.Fatalf("expected 2026-01-21, got %s", got)
	}
	if got := TodayKey(instant, nil); got != "2026-01-20" {
		t.Fatalf("expected 2026-01-20, got %s", got)
	}
}
