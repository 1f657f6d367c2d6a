package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/camden-git/curriculumbackend/models"
	"gorm.io/gorm"
)

type GormWorkExperienceRepository struct {
	db *gorm.DB
}

func NewGormWorkExperienceRepository(db *gorm.DB) WorkExperienceRepository {
	return &GormWorkExperienceRepository{db: db}
}

func (r *GormWorkExperienceRepository) WithTx(tx *gorm.DB) WorkExperienceRepository {
	return &GormWorkExperienceRepository{db: tx}
}

func (r *GormWorkExperienceRepository) Create(ctx context.Context, we *models.WorkExperience) error {
	if err := r.db.WithContext(ctx).Create(we).Error; err != nil {
		return fmt.Errorf("failed to create work experience for person ID %d: %w", we.PersonID, err)
	}
	return nil
}

func (r *GormWorkExperienceRepository) GetByID(ctx context.Context, id uint) (*models.WorkExperience, error) {
	var we models.WorkExperience
	err := r.db.WithContext(ctx).First(&we, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get work experience by ID %d: %w", id, err)
	}
	return &we, nil
}

func (r *GormWorkExperienceRepository) ListAll(ctx context.Context) ([]models.WorkExperience, error) {
	var list []models.WorkExperience
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list work experiences: %w", err)
	}
	return list, nil
}

func (r *GormWorkExperienceRepository) ListByPerson(ctx context.Context, personID uint) ([]models.WorkExperience, error) {
	var list []models.WorkExperience
	err := r.db.WithContext(ctx).Where("person_id = ?", personID).Order("id ASC").Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list work experiences for person ID %d: %w", personID, err)
	}
	return list, nil
}

func (r *GormWorkExperienceRepository) Save(ctx context.Context, we *models.WorkExperience) error {
	if err := r.db.WithContext(ctx).Save(we).Error; err != nil {
		return fmt.Errorf("failed to update work experience ID %d: %w", we.ID, err)
	}
	return nil
}

func (r *GormWorkExperienceRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.WorkExperience{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete work experience ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormWorkExperienceRepository) DeleteByPerson(ctx context.Context, personID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("person_id = ?", personID).Delete(&models.WorkExperience{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete work experiences of person ID %d: %w", personID, result.Error)
	}
	return result.RowsAffected, nil
}
