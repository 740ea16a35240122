package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/hridaya/internal/models"
)

const (
	DefaultRecentLogLimit = 20
	MaxRecentLogLimit     = 100
	MaxSitDurationMinutes = 24 * 60
)

var (
	ErrNoActiveExperiment   = errors.New("no active experiment")
	ErrInvalidLogEntryType  = errors.New("invalid log entry type")
	ErrUnknownMetric        = errors.New("rating for unknown metric")
	ErrRatingOutOfScale     = errors.New("rating outside metric scale")
	ErrInvalidSitDuration   = errors.New("invalid sit duration")
	ErrLogEntryLoadFailed   = errors.New("load log entries failed")
	ErrLogEntryCreateFailed = errors.New("create log entry failed")
	ErrLogEntryDateInFuture = errors.New("log entry date is in the future")
)

type LogEntryRepository interface {
	Create(ctx context.Context, entry *models.LogEntry) error
	ListRecentByUser(ctx context.Context, userID uint, limit int) ([]models.LogEntry, error)
	ListByExperimentDay(ctx context.Context, experimentID uuid.UUID, day string) ([]models.LogEntry, error)
	ListByExperiment(ctx context.Context, experimentID uuid.UUID, since string, limit int) ([]models.LogEntry, error)
}

type LogEntryInput struct {
	EntryType          string
	EntryDate          string
	Ratings            map[string]float64
	Notes              string
	SitDurationMinutes *int
	TechniqueNotes     string
}

type LogService struct {
	logs        LogEntryRepository
	experiments ExperimentRepository
}

func NewLogService(logs LogEntryRepository, experiments ExperimentRepository) *LogService {
	return &LogService{
		logs:        logs,
		experiments: experiments,
	}
}

// Create records an entry against the user's active experiment.
func (service *LogService) Create(ctx context.Context, userID uint, input LogEntryInput, today time.Time) (models.LogEntry, error) {
	experiment, found, err := service.experiments.FindActive(ctx, userID)
	if err != nil {
		return models.LogEntry{}, fmt.Errorf("%w: %v", ErrExperimentLoadFailed, err)
	}
	if !found {
		return models.LogEntry{}, ErrNoActiveExperiment
	}

	entry, err := BuildLogEntry(experiment, input, today)
	if err != nil {
		return models.LogEntry{}, err
	}
	if err := service.logs.Create(ctx, &entry); err != nil {
		return models.LogEntry{}, fmt.Errorf("%w: %v", ErrLogEntryCreateFailed, err)
	}
	return entry, nil
}

// BuildLogEntry validates input against the experiment metrics. Session fields
// are dropped for end-of-day entries.
func BuildLogEntry(experiment models.Experiment, input LogEntryInput, today time.Time) (models.LogEntry, error) {
	entryType := strings.TrimSpace(input.EntryType)
	if !models.IsValidLogEntryType(entryType) {
		return models.LogEntry{}, ErrInvalidLogEntryType
	}

	entryDate := strings.TrimSpace(input.EntryDate)
	if entryDate == "" {
		entryDate = DayKey(today)
	}
	if !IsValidDayKey(entryDate) {
		return models.LogEntry{}, ErrInvalidDay
	}
	if entryDate > DayKey(today) {
		return models.LogEntry{}, ErrLogEntryDateInFuture
	}

	ratings := make(map[string]float64, len(input.Ratings))
	for metricID, value := range input.Ratings {
		metric, ok := experiment.MetricByID(metricID)
		if !ok {
			return models.LogEntry{}, fmt.Errorf("%w: %s", ErrUnknownMetric, metricID)
		}
		if !ValidateRating(metric, value) {
			return models.LogEntry{}, fmt.Errorf("%w: %s", ErrRatingOutOfScale, metricID)
		}
		ratings[metricID] = value
	}

	entry := models.LogEntry{
		UserID:       experiment.UserID,
		ExperimentID: experiment.ID,
		EntryType:    entryType,
		EntryDate:    entryDate,
		Ratings:      ratings,
		Notes:        optionalText(input.Notes),
	}
	if entryType != models.LogEndOfDay {
		if minutes := input.SitDurationMinutes; minutes != nil {
			if *minutes < 0 || *minutes > MaxSitDurationMinutes {
				return models.LogEntry{}, ErrInvalidSitDuration
			}
			value := *minutes
			entry.SitDurationMinutes = &value
		}
		entry.TechniqueNotes = optionalText(input.TechniqueNotes)
	}
	return entry, nil
}

func (service *LogService) Recent(ctx context.Context, userID uint, limit int) ([]models.LogEntry, error) {
	entries, err := service.logs.ListRecentByUser(ctx, userID, SanitizeRecentLogLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogEntryLoadFailed, err)
	}
	return entries, nil
}

// Today lists today's entries of the active experiment in the order they were
// written. No active experiment yields an empty list.
func (service *LogService) Today(ctx context.Context, userID uint, today time.Time) ([]models.LogEntry, error) {
	experiment, found, err := service.experiments.FindActive(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExperimentLoadFailed, err)
	}
	if !found {
		return []models.LogEntry{}, nil
	}
	return service.ForExperimentDay(ctx, experiment.ID, today)
}

func (service *LogService) ForExperimentDay(ctx context.Context, experimentID uuid.UUID, today time.Time) ([]models.LogEntry, error) {
	entries, err := service.logs.ListByExperimentDay(ctx, experimentID, DayKey(today))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogEntryLoadFailed, err)
	}
	return entries, nil
}

// ForExperiment lists an owned experiment's entries newest first.
func (service *LogService) ForExperiment(ctx context.Context, userID uint, experimentID uuid.UUID, since string, limit int) ([]models.LogEntry, error) {
	_, found, err := service.experiments.FindForUser(ctx, userID, experimentID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExperimentLoadFailed, err)
	}
	if !found {
		return nil, ErrExperimentNotFound
	}

	since = strings.TrimSpace(since)
	if since != "" && !IsValidDayKey(since) {
		return nil, ErrInvalidDay
	}
	if limit < 0 {
		limit = 0
	}

	entries, err := service.logs.ListByExperiment(ctx, experimentID, since, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLogEntryLoadFailed, err)
	}
	return entries, nil
}

// SuggestEntryType picks the first of before_sit, after_sit and eod that has
// no entry today. When all three exist another after_sit is suggested.
func SuggestEntryType(todayLogs []models.LogEntry) string {
	logged := make([]string, 0, len(todayLogs))
	for _, entry := range todayLogs {
		logged = append(logged, entry.EntryType)
	}
	for _, entryType := range models.LogEntryTypes {
		if !slices.Contains(logged, entryType) {
			return entryType
		}
	}
	return models.LogAfterSit
}

func SanitizeRecentLogLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLogLimit
	}
	if limit > MaxRecentLogLimit {
		return MaxRecentLogLimit
	}
	return limit
}

func optionalText(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
