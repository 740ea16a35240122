package db

import (
	"context"

	"github.com/terraincognita07/hridaya/internal/models"
	"gorm.io/gorm"
)

type JournalRepository struct {
	database *gorm.DB
}

func NewJournalRepository(database *gorm.DB) *JournalRepository {
	return &JournalRepository{database: database}
}

// ListByUser returns entries oldest first, optionally restricted to one type.
func (repo *JournalRepository) ListByUser(ctx context.Context, userID uint, entryType string) ([]models.JournalEntry, error) {
	query := repo.database.WithContext(ctx).Where("user_id = ?", userID)
	if entryType != "" {
		query = query.Where("entry_type = ?", entryType)
	}

	entries := make([]models.JournalEntry, 0)
	if err := query.Order("entry_date ASC, created_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *JournalRepository) ExistsOnDay(ctx context.Context, userID uint, entryType string, day string) (bool, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.JournalEntry{}).
		Where("user_id = ? AND entry_type = ? AND entry_date = ?", userID, entryType, day).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ReplaceAll swaps a user's journal for entries in one transaction and applies
// the profile updates alongside.
func (repo *JournalRepository) ReplaceAll(ctx context.Context, userID uint, entries []models.JournalEntry, profileUpdates map[string]any) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.JournalEntry{}).Error; err != nil {
			return err
		}
		for index := range entries {
			entries[index].UserID = userID
		}
		if len(entries) > 0 {
			if err := tx.Create(&entries).Error; err != nil {
				return err
			}
		}
		if len(profileUpdates) == 0 {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(profileUpdates).Error
	})
}
