package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/hridaya/internal/models"
)

const (
	DefaultExperimentDuration = 7
	MaxExperimentDuration     = 365
)

var (
	ErrExperimentNotFound           = errors.New("experiment not found")
	ErrExperimentNotActive          = errors.New("experiment is not active")
	ErrActiveExperimentExists       = errors.New("an active experiment already exists")
	ErrExperimentTitleRequired      = errors.New("experiment title is required")
	ErrExperimentHypothesisRequired = errors.New("experiment hypothesis is required")
	ErrExperimentProtocolRequired   = errors.New("experiment protocol is required")
	ErrInvalidDuration              = errors.New("duration must be between 1 and 365 days")
	ErrMetricsRequired              = errors.New("at least one metric is required")
	ErrInvalidMetric                = errors.New("invalid metric definition")
	ErrConclusionRequired           = errors.New("conclusion is required")
	ErrExperimentLoadFailed         = errors.New("load experiment failed")
	ErrExperimentSaveFailed         = errors.New("save experiment failed")
)

var metricIDWhitespace = regexp.MustCompile(`\s+`)

// DefaultMetric is offered to new experiments.
var DefaultMetric = models.MetricDefinition{
	ID:          "state",
	Name:        "State",
	Description: "General sense of well-being",
	Scale:       [2]int{1, 7},
}

type ExperimentRepository interface {
	Create(ctx context.Context, experiment *models.Experiment) error
	ListByUser(ctx context.Context, userID uint) ([]models.Experiment, error)
	FindForUser(ctx context.Context, userID uint, experimentID uuid.UUID) (models.Experiment, bool, error)
	FindActive(ctx context.Context, userID uint) (models.Experiment, bool, error)
	CloseActive(ctx context.Context, userID uint, experimentID uuid.UUID, status string, conclusion *string) (bool, error)
}

type ExperimentInput struct {
	Title        string
	Hypothesis   string
	Protocol     string
	Metrics      []models.MetricDefinition
	DurationDays int
	StartDate    string
}

// ExperimentSummary is an experiment with its derived end date.
type ExperimentSummary struct {
	models.Experiment
	EndDate string `json:"end_date"`
}

func SummarizeExperiment(experiment models.Experiment) ExperimentSummary {
	summary := ExperimentSummary{Experiment: experiment}
	if start, err := ParseDay(experiment.StartDate, time.UTC); err == nil {
		summary.EndDate = DayKey(ExperimentEndDate(start, experiment.DurationDays))
	}
	return summary
}

type ExperimentService struct {
	experiments ExperimentRepository
}

func NewExperimentService(experiments ExperimentRepository) *ExperimentService {
	return &ExperimentService{experiments: experiments}
}

// NormalizeExperimentInput trims text fields, derives metric ids from names and
// fills the default scale and start date.
func NormalizeExperimentInput(input ExperimentInput, today time.Time) (ExperimentInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Hypothesis = strings.TrimSpace(input.Hypothesis)
	input.Protocol = strings.TrimSpace(input.Protocol)
	input.StartDate = strings.TrimSpace(input.StartDate)

	switch {
	case input.Title == "":
		return ExperimentInput{}, ErrExperimentTitleRequired
	case input.Hypothesis == "":
		return ExperimentInput{}, ErrExperimentHypothesisRequired
	case input.Protocol == "":
		return ExperimentInput{}, ErrExperimentProtocolRequired
	case input.DurationDays < 1 || input.DurationDays > MaxExperimentDuration:
		return ExperimentInput{}, ErrInvalidDuration
	case len(input.Metrics) == 0:
		return ExperimentInput{}, ErrMetricsRequired
	}

	if input.StartDate == "" {
		input.StartDate = DayKey(today)
	} else if !IsValidDayKey(input.StartDate) {
		return ExperimentInput{}, ErrInvalidDay
	}

	metrics := make([]models.MetricDefinition, 0, len(input.Metrics))
	seen := make(map[string]bool, len(input.Metrics))
	for _, metric := range input.Metrics {
		metric.Name = strings.TrimSpace(metric.Name)
		metric.Description = strings.TrimSpace(metric.Description)
		metric.ID = strings.TrimSpace(metric.ID)
		if metric.Name == "" {
			return ExperimentInput{}, ErrInvalidMetric
		}
		if metric.ID == "" {
			metric.ID = MetricIDFromName(metric.Name)
		}
		if metric.Scale == [2]int{} {
			metric.Scale = DefaultMetric.Scale
		}
		// "date" is the key of every chart point.
		if metric.ID == "date" || seen[metric.ID] || metric.ScaleMin() >= metric.ScaleMax() {
			return ExperimentInput{}, ErrInvalidMetric
		}
		seen[metric.ID] = true
		metrics = append(metrics, metric)
	}
	input.Metrics = metrics
	return input, nil
}

func MetricIDFromName(name string) string {
	return metricIDWhitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
}

func (service *ExperimentService) Create(ctx context.Context, userID uint, input ExperimentInput, today time.Time) (models.Experiment, error) {
	normalized, err := NormalizeExperimentInput(input, today)
	if err != nil {
		return models.Experiment{}, err
	}

	_, hasActive, err := service.experiments.FindActive(ctx, userID)
	if err != nil {
		return models.Experiment{}, fmt.Errorf("%w: %v", ErrExperimentLoadFailed, err)
	}
	if hasActive {
		return models.Experiment{}, ErrActiveExperimentExists
	}

	experiment := models.Experiment{
		UserID:       userID,
		Title:        normalized.Title,
		Hypothesis:   normalized.Hypothesis,
		Protocol:     normalized.Protocol,
		Metrics:      normalized.Metrics,
		DurationDays: normalized.DurationDays,
		StartDate:    normalized.StartDate,
		Status:       models.ExperimentActive,
	}
	if err := service.experiments.Create(ctx, &experiment); err != nil {
		return models.Experiment{}, fmt.Errorf("%w: %v", ErrExperimentSaveFailed, err)
	}
	return experiment, nil
}

// Active reports found=false when the user has no running experiment.
func (service *ExperimentService) Active(ctx context.Context, userID uint) (models.Experiment, bool, error) {
	experiment, found, err := service.experiments.FindActive(ctx, userID)
	if err != nil {
		return models.Experiment{}, false, fmt.Errorf("%w: %v", ErrExperimentLoadFailed, err)
	}
	return experiment, found, nil
}

func (service *ExperimentService) List(ctx context.Context, userID uint) ([]models.Experiment, error) {
	experiments, err := service.experiments.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExperimentLoadFailed, err)
	}
	return experiments, nil
}

func (service *ExperimentService) Get(ctx context.Context, userID uint, experimentID uuid.UUID) (models.Experiment, error) {
	experiment, found, err := service.experiments.FindForUser(ctx, userID, experimentID)
	if err != nil {
		return models.Experiment{}, fmt.Errorf("%w: %v", ErrExperimentLoadFailed, err)
	}
	if !found {
		return models.Experiment{}, ErrExperimentNotFound
	}
	return experiment, nil
}

func (service *ExperimentService) Complete(ctx context.Context, userID uint, experimentID uuid.UUID, conclusion string) (models.Experiment, error) {
	conclusion = strings.TrimSpace(conclusion)
	if conclusion == "" {
		return models.Experiment{}, ErrConclusionRequired
	}
	return service.close(ctx, userID, experimentID, models.ExperimentCompleted, &conclusion)
}

func (service *ExperimentService) Abandon(ctx context.Context, userID uint, experimentID uuid.UUID) (models.Experiment, error) {
	return service.close(ctx, userID, experimentID, models.ExperimentAbandoned, nil)
}

func (service *ExperimentService) close(ctx context.Context, userID uint, experimentID uuid.UUID, status string, conclusion *string) (models.Experiment, error) {
	closed, err := service.experiments.CloseActive(ctx, userID, experimentID, status, conclusion)
	if err != nil {
		return models.Experiment{}, fmt.Errorf("%w: %v", ErrExperimentSaveFailed, err)
	}

	experiment, err := service.Get(ctx, userID, experimentID)
	if err != nil {
		return models.Experiment{}, err
	}
	if !closed {
		return models.Experiment{}, ErrExperimentNotActive
	}
	return experiment, nil
}

// Progress places today inside the experiment window. Dates are read in the
// location of today.
func (service *ExperimentService) Progress(experiment models.Experiment, today time.Time) (ExperimentProgress, error) {
	start, err := ParseDay(experiment.StartDate, today.Location())
	if err != nil {
		return ExperimentProgress{}, err
	}
	return ComputeProgress(start, experiment.DurationDays, today), nil
}

// ValidateRating reports whether value lies inside the metric scale.
func ValidateRating(metric models.MetricDefinition, value float64) bool {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return false
	}
	return value >= float64(metric.ScaleMin()) && value <= float64(metric.ScaleMax())
}
