package models

// Plan frequencies
const (
	FrequencyWeekly   = "weekly"
	FrequencyBiweekly = "biweekly"
	FrequencyMonthly  = "monthly"
)

// RecurringPlan is a standing order that the recurrence engine turns into jobs
type RecurringPlan struct {
	Base
	CustomerID string `gorm:"not null;index" json:"customer_id"`
	ServiceID  string `gorm:"not null" json:"service_id"`
	Frequency  string `gorm:"not null" json:"frequency"`
	AnchorDay  int    `json:"anchor_day,omitempty"`                    // day of month monthly plans return to; 0 means the day of NextDate
	NextDate   string `gorm:"not null;size:10;index" json:"next_date"` // YYYY-MM-DD
	Active     bool   `gorm:"not null;index" json:"active"`
}

// TableName specifies the table name for the RecurringPlan model
func (RecurringPlan) TableName() string {
	return "recurring_plans"
}

// IsValidFrequency reports whether f is a supported plan frequency
func IsValidFrequency(f string) bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}
