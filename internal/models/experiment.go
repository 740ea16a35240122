package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ExperimentActive    = "active"
	ExperimentCompleted = "completed"
	ExperimentAbandoned = "abandoned"
)

// MetricDefinition is one rated dimension of an experiment. Scale holds the
// inclusive lower and upper bounds.
type MetricDefinition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Scale       [2]int `json:"scale"`
}

func (metric MetricDefinition) ScaleMin() int { return metric.Scale[0] }

func (metric MetricDefinition) ScaleMax() int { return metric.Scale[1] }

type Experiment struct {
	ID           uuid.UUID                             `gorm:"type:text;primaryKey" json:"id"`
	UserID       uint                                  `gorm:"not null;index" json:"-"`
	Title        string                                `gorm:"not null" json:"title"`
	Hypothesis   string                                `gorm:"not null" json:"hypothesis"`
	Protocol     string                                `gorm:"not null" json:"protocol"`
	Metrics      datatypes.JSONSlice[MetricDefinition] `gorm:"type:json" json:"metrics"`
	DurationDays int                                   `gorm:"not null" json:"duration_days"`
	StartDate    string                                `gorm:"type:text;not null" json:"start_date"`
	Status       string                                `gorm:"not null;default:active;index" json:"status"`
	Conclusion   *string                               `json:"conclusion"`
	CreatedAt    time.Time                             `json:"created_at"`
	UpdatedAt    time.Time                             `json:"updated_at"`
}

func (experiment *Experiment) BeforeCreate(*gorm.DB) error {
	if experiment.ID == uuid.Nil {
		experiment.ID = uuid.New()
	}
	return nil
}

func (experiment Experiment) IsActive() bool {
	return experiment.Status == ExperimentActive
}

func (experiment Experiment) MetricByID(metricID string) (MetricDefinition, bool) {
	for _, metric := range experiment.Metrics {
		if metric.ID == metricID {
			return metric, true
		}
	}
	return MetricDefinition{}, false
}
