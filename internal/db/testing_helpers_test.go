package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/hridaya/internal/models"
	"gorm.io/gorm"
)

func openTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(filepath.Join(t.TempDir(), "hridaya-test.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return database
}

func createTestUser(t *testing.T, database *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "hash",
		CurrentNode:  models.DefaultCurrentNode,
		CreatedAt:    time.Now().UTC(),
	}
	if err := database.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func createTestExperiment(t *testing.T, repo *ExperimentRepository, userID uint, title string) models.Experiment {
	t.Helper()

	experiment := models.Experiment{
		UserID:       userID,
		Title:        title,
		Hypothesis:   "Morning sits steady the day",
		Protocol:     "Sit 20 minutes after waking",
		Metrics:      []models.MetricDefinition{{ID: "state", Name: "State", Scale: [2]int{1, 7}}},
		DurationDays: 7,
		StartDate:    "2026-01-10",
		Status:       models.ExperimentActive,
	}
	if err := repo.Create(t.Context(), &experiment); err != nil {
		t.Fatalf("create experiment: %v", err)
	}
	return experiment
}
