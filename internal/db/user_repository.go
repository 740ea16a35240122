package db

import (
	"context"
	"time"

	"github.com/terraincognita07/hridaya/internal/models"
	"gorm.io/gorm"
)

type UserRepository struct {
	database *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{database: database}
}

func (repo *UserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (repo *UserRepository) FindByID(ctx context.Context, userID uint) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).First(&user, userID).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) FindByNormalizedEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := repo.database.WithContext(ctx).Where("lower(trim(email)) = ?", email).First(&user).Error; err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (repo *UserRepository) ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).Model(&models.User{}).
		Where("lower(trim(email)) = ?", email).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *UserRepository) Create(ctx context.Context, user *models.User) error {
	return repo.database.WithContext(ctx).Create(user).Error
}

func (repo *UserRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string, mustChangePassword bool) error {
	return repo.database.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(map[string]any{
		"password_hash":        passwordHash,
		"must_change_password": mustChangePassword,
	}).Error
}

func (repo *UserRepository) MarkOnboarded(ctx context.Context, userID uint, at time.Time) error {
	return repo.database.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("onboarded_at", at).Error
}

func (repo *UserRepository) UpdateByID(ctx context.Context, userID uint, updates map[string]any) error {
	return repo.database.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
}

// UpdateWithJournalEntry applies profile updates and appends a journal entry in
// one transaction. A nil entry only applies the updates.
func (repo *UserRepository) UpdateWithJournalEntry(ctx context.Context, userID uint, updates map[string]any, entry *models.JournalEntry) error {
	return repo.database.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if entry != nil {
			entry.UserID = userID
			if err := tx.Create(entry).Error; err != nil {
				return err
			}
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&models.User{}).Where("id = ?", userID).Updates(updates).Error
	})
}
