package models

import (
	"time"

	"gorm.io/datatypes"
)

// Job statuses
const (
	JobStatusScheduled  = "scheduled"
	JobStatusEnRoute    = "en_route"
	JobStatusInProgress = "in_progress"
	JobStatusCompleted  = "completed"
	JobStatusCancelled  = "cancelled"
)

// Job is one scheduled or performed visit
type Job struct {
	Base
	CustomerID      string                      `gorm:"not null;index" json:"customer_id"`
	ServiceID       string                      `gorm:"not null;index" json:"service_id"`
	TechnicianID    *string                     `gorm:"index" json:"technician_id,omitempty"`
	ScheduledDate   string                      `gorm:"not null;size:10;index" json:"scheduled_date"` // YYYY-MM-DD
	Status          string                      `gorm:"not null;default:'scheduled'" json:"status"`
	Notes           string                      `gorm:"type:text" json:"notes"`
	TechNotes       string                      `gorm:"type:text" json:"tech_notes"`
	BeforePhotos    datatypes.JSONSlice[string] `json:"before_photos"`
	AfterPhotos     datatypes.JSONSlice[string] `json:"after_photos"`
	Completed       *time.Time                  `json:"completed,omitempty"`
	RecurringPlanID *string                     `gorm:"index" json:"recurring_plan_id,omitempty"`
}

// TableName specifies the table name for the Job model
func (Job) TableName() string {
	return "jobs"
}

// IsTerminal reports whether no further status changes are allowed
func (j Job) IsTerminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusCancelled
}
