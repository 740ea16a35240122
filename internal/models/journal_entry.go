package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	JournalSession       = "session"
	JournalMissedDay     = "missed_day"
	JournalReadinessGate = "readiness_gate"
)

// JournalEntry is an append-only curriculum record. Attributes depend on the
// entry type: practice_id and reflection for sessions, response for missed
// days, node and response for readiness gates.
type JournalEntry struct {
	ID         uuid.UUID         `gorm:"type:text;primaryKey" json:"id"`
	UserID     uint              `gorm:"not null;index" json:"-"`
	EntryType  string            `gorm:"not null" json:"entry_type"`
	EntryDate  string            `gorm:"type:text;not null" json:"entry_date"`
	Attributes datatypes.JSONMap `gorm:"type:json" json:"attributes"`
	CreatedAt  time.Time         `json:"created_at"`
}

func (entry *JournalEntry) BeforeCreate(*gorm.DB) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	return nil
}

func IsValidJournalEntryType(value string) bool {
	switch value {
	case JournalSession, JournalMissedDay, JournalReadinessGate:
		return true
	default:
		return false
	}
}

func (entry JournalEntry) StringAttribute(key string) string {
	value, _ := entry.Attributes[key].(string)
	return value
}
