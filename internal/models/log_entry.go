package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	LogBeforeSit = "before_sit"
	LogAfterSit  = "after_sit"
	LogEndOfDay  = "eod"
)

// LogEntryTypes lists entry types in the order a practice day usually fills them.
var LogEntryTypes = []string{LogBeforeSit, LogAfterSit, LogEndOfDay}

type LogEntry struct {
	ID                 uuid.UUID          `gorm:"type:text;primaryKey" json:"id"`
	UserID             uint               `gorm:"not null;index" json:"-"`
	ExperimentID       uuid.UUID          `gorm:"type:text;not null;index" json:"experiment_id"`
	EntryType          string             `gorm:"not null" json:"entry_type"`
	EntryDate          string             `gorm:"type:text;not null;index" json:"entry_date"`
	Ratings            map[string]float64 `gorm:"serializer:json" json:"ratings"`
	Notes              *string            `json:"notes"`
	SitDurationMinutes *int               `json:"sit_duration_minutes"`
	TechniqueNotes     *string            `json:"technique_notes"`
	CreatedAt          time.Time          `json:"created_at"`
}

func (entry *LogEntry) BeforeCreate(*gorm.DB) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return nil
}

func IsValidLogEntryType(value string) bool {
	switch value {
	case LogBeforeSit, LogAfterSit, LogEndOfDay:
		return true
	default:
		return false
	}
}
