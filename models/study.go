package models

import "time"

// Study is an academic record owned by a Person. Dates are kept as YYYY-MM-DD text.
type Study struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	PersonID    uint    `gorm:"not null;index"`
	Institution string  `gorm:"size:255;not null"`
	Degree      string  `gorm:"size:255;not null"`
	Level       string  `gorm:"size:255;not null"`
	StartDate   *string `gorm:"size:10"`
	EndDate     *string `gorm:"size:10"`
	Description *string `gorm:"type:text"`
	ImgName     *string // stored certification filename, nil until a file is uploaded
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (Study) TableName() string {
	return "studies"
}
