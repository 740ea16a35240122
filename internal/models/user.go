package models

import (
	"time"

	"gorm.io/datatypes"
)

const DefaultCurrentNode = "metta-self"

type User struct {
	ID                 uint                                  `gorm:"primaryKey" json:"id"`
	Email              string                                `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string                                `gorm:"not null" json:"-"`
	MustChangePassword bool                                  `gorm:"not null;default:false" json:"-"`
	OnboardedAt        *time.Time                            `json:"onboarded_at"`
	Vow                *string                               `json:"vow"`
	Streak             int                                   `gorm:"not null;default:0" json:"streak"`
	LastPracticeDate   *string                               `json:"last_practice_date"`
	CurrentNode        string                                `gorm:"not null;default:metta-self" json:"current_node"`
	CompletedNodes     datatypes.JSONSlice[string]           `gorm:"type:json" json:"completed_nodes"`
	TrackProgress      datatypes.JSONType[map[string]string] `gorm:"type:json" json:"track_progress"`
	CreatedAt          time.Time                             `gorm:"not null" json:"created_at"`
	UpdatedAt          time.Time                             `json:"updated_at"`
}

// TrackObject returns the object the category's track currently points at.
// Tracks that were never advanced start at self.
func (user User) TrackObject(category string) string {
	if object, ok := user.TrackProgress.Data()[category]; ok && object != "" {
		return object
	}
	return ObjectSelf
}

func (user User) HasCompletedNode(node string) bool {
	for _, completed := range user.CompletedNodes {
		if completed == node {
			return true
		}
	}
	return false
}
