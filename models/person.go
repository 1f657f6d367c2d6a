package models

import (
	"fmt"
	"strings"
	"time"
)

// Person represents a curriculum owner. It corresponds to the 'people' table.
// Studies and work experiences reference it by person_id; removing them is the
// lifecycle manager's job, so no ON DELETE constraint is declared here.
type Person struct {
	ID          uint    `gorm:"primaryKey;autoIncrement"`
	FirstName   string  `gorm:"size:255;not null"`
	LastName    string  `gorm:"size:255;not null"`
	DateOfBirth *string `gorm:"size:10"`
	IDCard      *string
	PhoneNumber *string
	Address     *string
	Email       *string `gorm:"uniqueIndex"`
	LinkedinURL *string
	FacebookURL *string
	IndeedURL   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName explicitly sets the table name for GORM.
func (Person) TableName() string {
	return "people"
}

// FolderName is the name of the person's folder tree under the uploads root.
func (p Person) FolderName() string {
	return FolderName(p.ID, p.FirstName, p.LastName)
}

// FolderName builds "{id}-{first_name}_{last_name}" with every space replaced by an underscore.
func FolderName(id uint, firstName, lastName string) string {
	fullName := strings.ReplaceAll(firstName+"_"+lastName, " ", "_")
	return fmt.Sprintf("%d-%s", id, fullName)
}
