package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/terraincognita07/hridaya/internal/db"
	"github.com/terraincognita07/hridaya/internal/models"
)

var testToday = time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC)

func openTestRepositories(t *testing.T) *db.Repositories {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "hridaya-services-test.db"))
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
	return db.NewRepositories(database)
}

func createServiceTestUser(t *testing.T, repos *db.Repositories, email string) models.User {
	t.Helper()

	user := models.User{
		Email:        email,
		PasswordHash: "hash",
		CurrentNode:  models.DefaultCurrentNode,
		CreatedAt:    time.Now().UTC(),
	}
	if err := repos.Users.Create(t.Context(), &user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func validExperimentInput() ExperimentInput {
	return ExperimentInput{
		Title:        "Morning metta",
		Hypothesis:   "Metta before work lifts my baseline mood",
		Protocol:     "Twenty minutes after waking",
		Metrics:      []models.MetricDefinition{{Name: "State"}, {Name: "Mental Clarity", Scale: [2]int{0, 10}}},
		DurationDays: 7,
		StartDate:    "2026-01-10",
	}
}
