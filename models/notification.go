package models

import "time"

// Notification categories
const (
	NotificationJobCreated   = "job_created"
	NotificationStatusUpdate = "status_update"
	NotificationReminder     = "reminder"
	NotificationCompletion   = "completion"
)

// Notification delivery states
const (
	NotificationPending = "pending"
	NotificationSent    = "sent"
	NotificationFailed  = "failed"
)

// Notification is one SMS delivery attempt. Pending rows form the outbox.
type Notification struct {
	Base
	JobID       string     `gorm:"index" json:"job_id"`
	Category    string     `gorm:"not null;index" json:"category"`
	Destination string     `gorm:"not null" json:"destination"` // phone number
	Message     string     `gorm:"type:text;not null" json:"message"`
	Status      string     `gorm:"not null;default:'pending';index" json:"status"`
	Attempts    int        `gorm:"not null;default:0" json:"attempts"`
	LastError   string     `json:"last_error,omitempty"`
	WebhookURL  string     `json:"webhook_url"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
}

// TableName specifies the table name for the Notification model
func (Notification) TableName() string {
	return "notifications"
}
