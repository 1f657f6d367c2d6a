package models

import "time"

// WorkExperience is a job held by a Person. Dates are kept as YYYY-MM-DD text.
type WorkExperience struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	PersonID    uint    `gorm:"not null;index"`
	Position    string  `gorm:"size:255;not null"`
	Company     string  `gorm:"size:255;not null"`
	StartDate   string  `gorm:"size:10;not null"`
	EndDate     *string `gorm:"size:10"`
	Description *string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (WorkExperience) TableName() string {
	return "work_experiences"
}
