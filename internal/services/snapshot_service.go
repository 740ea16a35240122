package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/hridaya/internal/models"
	"golang.org/x/sync/errgroup"
)

const snapshotRecentLogLimit = 50

var ErrSnapshotLoadFailed = errors.New("load dashboard failed")

type SnapshotUserRepository interface {
	FindByID(ctx context.Context, userID uint) (models.User, error)
}

// DashboardSnapshot is everything the dashboard renders after one refresh.
type DashboardSnapshot struct {
	Profile          models.User         `json:"profile"`
	IsFirstTime      bool                `json:"is_first_time"`
	ActiveExperiment *ExperimentSummary  `json:"active_experiment"`
	Progress         *ExperimentProgress `json:"progress"`
	Experiments      []ExperimentSummary `json:"experiments"`
	RecentLogs       []models.LogEntry   `json:"recent_logs"`
	TodayLogs        []models.LogEntry   `json:"today_logs"`
	NextEntryType    string              `json:"next_entry_type"`
}

type SnapshotService struct {
	users       SnapshotUserRepository
	experiments ExperimentRepository
	logs        LogEntryRepository
}

func NewSnapshotService(users SnapshotUserRepository, experiments ExperimentRepository, logs LogEntryRepository) *SnapshotService {
	return &SnapshotService{
		users:       users,
		experiments: experiments,
		logs:        logs,
	}
}

// Refresh loads the profile, active experiment, experiment list and recent
// logs concurrently. Any failure fails the whole refresh.
func (service *SnapshotService) Refresh(ctx context.Context, userID uint, today time.Time) (DashboardSnapshot, error) {
	var (
		profile     models.User
		active      models.Experiment
		hasActive   bool
		experiments []models.Experiment
		recentLogs  []models.LogEntry
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		profile, err = service.users.FindByID(groupCtx, userID)
		return err
	})
	group.Go(func() error {
		var err error
		active, hasActive, err = service.experiments.FindActive(groupCtx, userID)
		return err
	})
	group.Go(func() error {
		var err error
		experiments, err = service.experiments.ListByUser(groupCtx, userID)
		return err
	})
	group.Go(func() error {
		var err error
		recentLogs, err = service.logs.ListRecentByUser(groupCtx, userID, snapshotRecentLogLimit)
		return err
	})
	if err := group.Wait(); err != nil {
		return DashboardSnapshot{}, fmt.Errorf("%w: %v", ErrSnapshotLoadFailed, err)
	}

	snapshot := DashboardSnapshot{
		Profile:     profile,
		IsFirstTime: profile.OnboardedAt == nil,
		Experiments: make([]ExperimentSummary, 0, len(experiments)),
		RecentLogs:  recentLogs,
		TodayLogs:   []models.LogEntry{},
	}
	for _, experiment := range experiments {
		snapshot.Experiments = append(snapshot.Experiments, SummarizeExperiment(experiment))
	}

	if hasActive {
		summary := SummarizeExperiment(active)
		snapshot.ActiveExperiment = &summary

		todayLogs, err := service.logs.ListByExperimentDay(ctx, active.ID, DayKey(today))
		if err != nil {
			return DashboardSnapshot{}, fmt.Errorf("%w: %v", ErrSnapshotLoadFailed, err)
		}
		snapshot.TodayLogs = todayLogs

		if start, err := ParseDay(active.StartDate, today.Location()); err == nil {
			progress := ComputeProgress(start, active.DurationDays, today)
			snapshot.Progress = &progress
		}
	}
	snapshot.NextEntryType = SuggestEntryType(snapshot.TodayLogs)

	return snapshot, nil
}
