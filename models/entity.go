package models

import "time"

// Entity is implemented by every record kept in a store collection.
type Entity interface {
	TableName() string
	GetID() string
	// Stamp assigns the store-generated identity. It is only called once, at creation.
	Stamp(id string, created time.Time)
}

// Base carries the identity fields shared by all collections
type Base struct {
	ID      string    `gorm:"primaryKey;size:36" json:"id"`
	Created time.Time `gorm:"column:created;not null" json:"created"`
}

// GetID returns the record identifier
func (b *Base) GetID() string {
	return b.ID
}

// Stamp sets the identifier and creation timestamp
func (b *Base) Stamp(id string, created time.Time) {
	b.ID = id
	b.Created = created
}
