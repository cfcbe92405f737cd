package models

// Role names accepted on User.Role
const (
	RoleAdmin      = "admin"
	RoleTechnician = "technician"
	RoleCustomer   = "customer"
)

// User represents an account in the system (admin, technician or customer)
type User struct {
	Base
	Auth0ID *string `gorm:"uniqueIndex" json:"auth0_id,omitempty"` // Auth0 user ID (from 'sub' claim), nil for seeded users
	Email   string  `gorm:"uniqueIndex;not null" json:"email"`
	Name    string  `gorm:"not null" json:"name"`
	Role    string  `gorm:"not null;default:'customer'" json:"role"`
	Phone   string  `json:"phone"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsValidRole reports whether role is one of the known roles
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTechnician, RoleCustomer:
		return true
	}
	return false
}
