package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/terraincognita07/hridaya/internal/models"
	"gorm.io/gorm"
)

type LogEntryRepository struct {
	database *gorm.DB
}

func NewLogEntryRepository(database *gorm.DB) *LogEntryRepository {
	return &LogEntryRepository{database: database}
}

func (repo *LogEntryRepository) Create(ctx context.Context, entry *models.LogEntry) error {
	return repo.database.WithContext(ctx).Create(entry).Error
}

func (repo *LogEntryRepository) ListRecentByUser(ctx context.Context, userID uint, limit int) ([]models.LogEntry, error) {
	entries := make([]models.LogEntry, 0)
	query := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("entry_date DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *LogEntryRepository) ListByExperimentDay(ctx context.Context, experimentID uuid.UUID, day string) ([]models.LogEntry, error) {
	entries := make([]models.LogEntry, 0)
	if err := repo.database.WithContext(ctx).
		Where("experiment_id = ? AND entry_date = ?", experimentID, day).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// ListByExperiment returns entries newest first. An empty since and a zero
// limit disable the respective filter.
func (repo *LogEntryRepository) ListByExperiment(ctx context.Context, experimentID uuid.UUID, since string, limit int) ([]models.LogEntry, error) {
	query := repo.database.WithContext(ctx).Where("experiment_id = ?", experimentID)
	if since != "" {
		query = query.Where("entry_date >= ?", since)
	}
	query = query.Order("entry_date DESC, created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	entries := make([]models.LogEntry, 0)
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
