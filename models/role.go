package models

import "time"

// Role is a free-standing label. Nothing references it yet.
type Role struct {
	ID        uint   `gorm:"primaryKey"`
	Rol       string `gorm:"size:255;uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Role) TableName() string {
	return "roles"
}
