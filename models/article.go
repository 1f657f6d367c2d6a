package models

import "time"

// Article is an inventory item. It has no relation to people.
type Article struct {
	ID                uint    `gorm:"primaryKey;autoIncrement"`
	Name              string  `gorm:"size:255;not null"`
	Type              string  `gorm:"size:255;not null"`
	Description       string  `gorm:"type:text;not null"`
	Price             float64 `gorm:"type:decimal(10,2);not null"`
	AvailableQuantity int64   `gorm:"not null;default:0"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Article) TableName() string {
	return "articles"
}
