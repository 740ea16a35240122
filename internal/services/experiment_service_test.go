package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/terraincognita07/hridaya/internal/models"
)

func TestNormalizeExperimentInput(t *testing.T) {
	input := validExperimentInput()
	input.Title = "  Morning metta  "
	input.StartDate = ""

	normalized, err := NormalizeExperimentInput(input, testToday)
	if err != nil {
		t.Fatalf("NormalizeExperimentInput: %v", err)
	}
	if normalized.Title != "Morning metta" {
		t.Fatalf("expected trimmed title, got %q", normalized.Title)
	}
	if normalized.StartDate != "2026-01-20" {
		t.Fatalf("expected start date to default to today, got %q", normalized.StartDate)
	}
	if normalized.Metrics[0].ID != "state" || normalized.Metrics[0].Scale != [2]int{1, 7} {
		t.Fatalf("unexpected first metric: %+v", normalized.Metrics[0])
	}
	if normalized.Metrics[1].ID != "mental_clarity" || normalized.Metrics[1].Scale != [2]int{0, 10} {
		t.Fatalf("unexpected second metric: %+v", normalized.Metrics[1])
	}
}

func TestNormalizeExperimentInputRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ExperimentInput)
		want   error
	}{
		{name: "blank title", mutate: func(input *ExperimentInput) { input.Title = " " }, want: ErrExperimentTitleRequired},
		{name: "blank hypothesis", mutate: func(input *ExperimentInput) { input.Hypothesis = "" }, want: ErrExperimentHypothesisRequired},
		{name: "blank protocol", mutate: func(input *ExperimentInput) { input.Protocol = "" }, want: ErrExperimentProtocolRequired},
		{name: "zero duration", mutate: func(input *ExperimentInput) { input.DurationDays = 0 }, want: ErrInvalidDuration},
		{name: "duration too long", mutate: func(input *ExperimentInput) { input.DurationDays = MaxExperimentDuration + 1 }, want: ErrInvalidDuration},
		{name: "no metrics", mutate: func(input *ExperimentInput) { input.Metrics = nil }, want: ErrMetricsRequired},
		{name: "bad start date", mutate: func(input *ExperimentInput) { input.StartDate = "2026-13-01" }, want: ErrInvalidDay},
		{name: "unnamed metric", mutate: func(input *ExperimentInput) { input.Metrics[0].Name = " " }, want: ErrInvalidMetric},
		{name: "duplicate metric", mutate: func(input *ExperimentInput) { input.Metrics[1].Name = "state" }, want: ErrInvalidMetric},
		{name: "reserved metric id", mutate: func(input *ExperimentInput) { input.Metrics[0].Name = "Date" }, want: ErrInvalidMetric},
		{name: "inverted scale", mutate: func(input *ExperimentInput) { input.Metrics[1].Scale = [2]int{5, 5} }, want: ErrInvalidMetric},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			input := validExperimentInput()
			input.Metrics = append([]models.MetricDefinition{}, input.Metrics...)
			testCase.mutate(&input)
			if _, err := NormalizeExperimentInput(input, testToday); !errors.Is(err, testCase.want) {
				t.Fatalf("expected %v, got %v", testCase.want, err)
			}
		})
	}
}

func TestExperimentServiceLifecycle(t *testing.T) {
	repos := openTestRepositories(t)
	user := createServiceTestUser(t, repos, "lifecycle@example.com")
	service := NewExperimentService(repos.Experiments)
	ctx := t.Context()

	created, err := service.Create(ctx, user.ID, validExperimentInput(), testToday)
	if err != nil {
		t.Fatalf("create experiment: %v", err)
	}
	if created.ID == uuid.Nil || created.Status != models.ExperimentActive {
		t.Fatalf("unexpected created experiment: %+v", created)
	}

	if _, err := service.Create(ctx, user.ID, validExperimentInput(), testToday); !errors.Is(err, ErrActiveExperimentExists) {
		t.Fatalf("expected ErrActiveExperimentExists, got %v", err)
	}

	active, found, err := service.Active(ctx, user.ID)
	if err != nil || !found || active.ID != created.ID {
		t.Fatalf("expected active experiment %s, got %v found=%v err=%v", created.ID, active.ID, found, err)
	}

	progress, err := service.Progress(active, testToday)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress != (ExperimentProgress{CurrentDay: 7, DaysCompleted: 7, DaysRemaining: 0, Progress: 1}) {
		t.Fatalf("unexpected progress: %+v", progress)
	}

	if _, err := service.Complete(ctx, user.ID, created.ID, "  "); !errors.Is(err, ErrConclusionRequired) {
		t.Fatalf("expected ErrConclusionRequired, got %v", err)
	}

	completed, err := service.Complete(ctx, user.ID, created.ID, "Mood lifted on most days")
	if err != nil {
		t.Fatalf("complete experiment: %v", err)
	}
	if completed.Status != models.ExperimentCompleted || completed.Conclusion == nil || *completed.Conclusion != "Mood lifted on most days" {
		t.Fatalf("unexpected completed experiment: %+v", completed)
	}

	if _, err := service.Abandon(ctx, user.ID, created.ID); !errors.Is(err, ErrExperimentNotActive) {
		t.Fatalf("expected ErrExperimentNotActive, got %v", err)
	}

	if _, found, err := service.Active(ctx, user.ID); err != nil || found {
		t.Fatalf("expected no active experiment, found=%v err=%v", found, err)
	}

	second, err := service.Create(ctx, user.ID, validExperimentInput(), testToday)
	if err != nil {
		t.Fatalf("create second experiment: %v", err)
	}
	abandoned, err := service.Abandon(ctx, user.ID, second.ID)
	if err != nil {
		t.Fatalf("abandon experiment: %v", err)
	}
	if abandoned.Status != models.ExperimentAbandoned || abandoned.Conclusion != nil {
		t.Fatalf("unexpected abandoned experiment: %+v", abandoned)
	}

	experiments, err := service.List(ctx, user.ID)
	if err != nil {
		t.Fatalf("list experiments: %v", err)
	}
	if len(experiments) != 2 || experiments[0].ID != second.ID {
		t.Fatalf("expected newest experiment first, got %d experiments", len(experiments))
	}
}

func TestExperimentServiceScopesByOwner(t *testing.T) {
	repos := openTestRepositories(t)
	owner := createServiceTestUser(t, repos, "owner@example.com")
	other := createServiceTestUser(t, repos, "other@example.com")
	service := NewExperimentService(repos.Experiments)
	ctx := t.Context()

	created, err := service.Create(ctx, owner.ID, validExperimentInput(), testToday)
	if err != nil {
		t.Fatalf("create experiment: %v", err)
	}

	if _, err := service.Get(ctx, other.ID, created.ID); !errors.Is(err, ErrExperimentNotFound) {
		t.Fatalf("expected ErrExperimentNotFound for another user, got %v", err)
	}
	if _, err := service.Abandon(ctx, other.ID, created.ID); !errors.Is(err, ErrExperimentNotFound) {
		t.Fatalf("expected ErrExperimentNotFound when closing another user's experiment, got %v", err)
	}
	if _, err := service.Create(ctx, other.ID, validExperimentInput(), testToday); err != nil {
		t.Fatalf("expected another user to start their own experiment, got %v", err)
	}
}

func TestSummarizeExperimentDerivesEndDate(t *testing.T) {
	summary := SummarizeExperiment(models.Experiment{StartDate: "2026-01-10", DurationDays: 7})
	if summary.EndDate != "2026-01-17" {
		t.Fatalf("expected end date 2026-01-17, got %q", summary.EndDate)
	}
}

func TestValidateRating(t *testing.T) {
	metric := models.MetricDefinition{ID: "state", Scale: [2]int{1, 7}}
	for _, value := range []float64{1, 4.5, 7} {
		if !ValidateRating(metric, value) {
			t.Fatalf("expected %v to be inside the scale", value)
		}
	}
	for _, value := range []float64{0, 7.5, -1} {
		if ValidateRating(metric, value) {
			t.Fatalf("expected %v to be outside the scale", value)
		}
	}
}
