package models

// Service is a purchasable cleaning offering
type Service struct {
	Base
	Name        string  `gorm:"not null" json:"name"`
	Description string  `json:"description"`
	Price       float64 `gorm:"not null;check:price >= 0" json:"price"`
	Duration    int     `gorm:"not null;check:duration > 0" json:"duration"` // minutes
	Active      bool    `gorm:"not null" json:"active"`
}

// TableName specifies the table name for the Service model
func (Service) TableName() string {
	return "services"
}
