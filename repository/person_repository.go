package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/camden-git/curriculumbackend/models"
	"gorm.io/gorm"
)

// GormPersonRepository handles database operations for Person rows
type GormPersonRepository struct {
	db *gorm.DB
}

// NewGormPersonRepository creates a new instance of GormPersonRepository
func NewGormPersonRepository(db *gorm.DB) PersonRepository {
	return &GormPersonRepository{db: db}
}

func (r *GormPersonRepository) WithTx(tx *gorm.DB) PersonRepository {
	return &GormPersonRepository{db: tx}
}

// Create inserts a new person and fills in its ID
func (r *GormPersonRepository) Create(ctx context.Context, person *models.Person) error {
	if err := r.db.WithContext(ctx).Create(person).Error; err != nil {
		return fmt.Errorf("failed to create person %s %s: %w", person.FirstName, person.LastName, err)
	}
	return nil
}

// GetByID retrieves a person by ID. A missing row is reported as gorm.ErrRecordNotFound.
func (r *GormPersonRepository) GetByID(ctx context.Context, id uint) (*models.Person, error) {
	var person models.Person
	err := r.db.WithContext(ctx).First(&person, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get person by ID %d: %w", id, err)
	}
	return &person, nil
}

// ListAll retrieves all people ordered by ID
func (r *GormPersonRepository) ListAll(ctx context.Context) ([]models.Person, error) {
	var people []models.Person
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&people).Error; err != nil {
		return nil, fmt.Errorf("failed to list people: %w", err)
	}
	return people, nil
}

// Save writes every column of person, including explicit NULLs
func (r *GormPersonRepository) Save(ctx context.Context, person *models.Person) error {
	if err := r.db.WithContext(ctx).Save(person).Error; err != nil {
		return fmt.Errorf("failed to update person ID %d: %w", person.ID, err)
	}
	return nil
}

// Delete removes a person by their ID
func (r *GormPersonRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Person{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete person ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
