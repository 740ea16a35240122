package services

import (
	"errors"
	"strings"
	"time"
)

const DayLayout = "2006-01-02"

var ErrInvalidDay = errors.New("invalid calendar day")

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// ParseDay reads a YYYY-MM-DD value as local midnight in location. The string
// is never interpreted as a UTC instant.
func ParseDay(raw string, location *time.Location) (time.Time, error) {
	if location == nil {
		location = time.UTC
	}
	parsed, err := time.ParseInLocation(DayLayout, strings.TrimSpace(raw), location)
	if err != nil {
		return time.Time{}, ErrInvalidDay
	}
	year, month, day := parsed.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location), nil
}

func DayKey(value time.Time) string {
	return value.Format(DayLayout)
}

func TodayKey(now time.Time, location *time.Location) string {
	return DayKey(DateAtLocation(now, location))
}

// DaysBetween counts calendar days from one date to another, each read in its
// own location. Negative when to precedes from. Wall-clock hours are ignored,
// so a 23h or 25h DST day still counts as one.
func DaysBetween(from time.Time, to time.Time) int {
	return int(calendarDate(to).Sub(calendarDate(from)) / (24 * time.Hour))
}

func calendarDate(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func IsValidDayKey(raw string) bool {
	_, err := time.Parse(DayLayout, raw)
	return err == nil
}
