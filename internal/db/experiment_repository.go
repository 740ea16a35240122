package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/terraincognita07/hridaya/internal/models"
	"gorm.io/gorm"
)

type ExperimentRepository struct {
	database *gorm.DB
}

func NewExperimentRepository(database *gorm.DB) *ExperimentRepository {
	return &ExperimentRepository{database: database}
}

func (repo *ExperimentRepository) Create(ctx context.Context, experiment *models.Experiment) error {
	return repo.database.WithContext(ctx).Create(experiment).Error
}

func (repo *ExperimentRepository) ListByUser(ctx context.Context, userID uint) ([]models.Experiment, error) {
	experiments := make([]models.Experiment, 0)
	if err := repo.database.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&experiments).Error; err != nil {
		return nil, err
	}
	return experiments, nil
}

func (repo *ExperimentRepository) FindForUser(ctx context.Context, userID uint, experimentID uuid.UUID) (models.Experiment, bool, error) {
	experiment := models.Experiment{}
	result := repo.database.WithContext(ctx).
		Where("id = ? AND user_id = ?", experimentID, userID).
		Limit(1).
		Find(&experiment)
	if result.Error != nil {
		return models.Experiment{}, false, result.Error
	}
	return experiment, result.RowsAffected > 0, nil
}

func (repo *ExperimentRepository) FindActive(ctx context.Context, userID uint) (models.Experiment, bool, error) {
	experiment := models.Experiment{}
	result := repo.database.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, models.ExperimentActive).
		Order("created_at DESC").
		Limit(1).
		Find(&experiment)
	if result.Error != nil {
		return models.Experiment{}, false, result.Error
	}
	return experiment, result.RowsAffected > 0, nil
}

// CloseActive moves an active experiment to a terminal status. It reports
// false when no active experiment with that id belongs to the user.
func (repo *ExperimentRepository) CloseActive(ctx context.Context, userID uint, experimentID uuid.UUID, status string, conclusion *string) (bool, error) {
	updates := map[string]any{"status": status}
	if conclusion != nil {
		updates["conclusion"] = *conclusion
	}
	result := repo.database.WithContext(ctx).Model(&models.Experiment{}).
		Where("id = ? AND user_id = ? AND status = ?", experimentID, userID, models.ExperimentActive).
		Updates(updates)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
