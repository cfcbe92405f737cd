package models

// Customer is the service-recipient profile linked to a customer User
type Customer struct {
	Base
	UserID  *string `gorm:"uniqueIndex" json:"user_id,omitempty"` // nil for customers created by an admin
	Name    string  `gorm:"not null" json:"name"`
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Notes   string  `gorm:"type:text" json:"notes"`
}

// TableName specifies the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}
