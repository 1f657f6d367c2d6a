package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/camden-git/curriculumbackend/models"
	"gorm.io/gorm"
)

type GormStudyRepository struct {
	db *gorm.DB
}

func NewGormStudyRepository(db *gorm.DB) StudyRepository {
	return &GormStudyRepository{db: db}
}

func (r *GormStudyRepository) WithTx(tx *gorm.DB) StudyRepository {
	return &GormStudyRepository{db: tx}
}

func (r *GormStudyRepository) Create(ctx context.Context, study *models.Study) error {
	if err := r.db.WithContext(ctx).Create(study).Error; err != nil {
		return fmt.Errorf("failed to create study for person ID %d: %w", study.PersonID, err)
	}
	return nil
}

func (r *GormStudyRepository) GetByID(ctx context.Context, id uint) (*models.Study, error) {
	var study models.Study
	err := r.db.WithContext(ctx).First(&study, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get study by ID %d: %w", id, err)
	}
	return &study, nil
}

// GetForPerson retrieves a study only when it belongs to personID
func (r *GormStudyRepository) GetForPerson(ctx context.Context, personID, studyID uint) (*models.Study, error) {
	var study models.Study
	err := r.db.WithContext(ctx).Where("person_id = ?", personID).First(&study, studyID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get study ID %d of person ID %d: %w", studyID, personID, err)
	}
	return &study, nil
}

func (r *GormStudyRepository) ListAll(ctx context.Context) ([]models.Study, error) {
	var studies []models.Study
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&studies).Error; err != nil {
		return nil, fmt.Errorf("failed to list studies: %w", err)
	}
	return studies, nil
}

func (r *GormStudyRepository) ListByPerson(ctx context.Context, personID uint) ([]models.Study, error) {
	var studies []models.Study
	err := r.db.WithContext(ctx).Where("person_id = ?", personID).Order("id ASC").Find(&studies).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list studies for person ID %d: %w", personID, err)
	}
	return studies, nil
}

func (r *GormStudyRepository) Save(ctx context.Context, study *models.Study) error {
	if err := r.db.WithContext(ctx).Save(study).Error; err != nil {
		return fmt.Errorf("failed to update study ID %d: %w", study.ID, err)
	}
	return nil
}

// SetImgName records the stored certification filename
func (r *GormStudyRepository) SetImgName(ctx context.Context, studyID uint, imgName string) error {
	result := r.db.WithContext(ctx).Model(&models.Study{}).Where("id = ?", studyID).Update("img_name", imgName)
	if result.Error != nil {
		return fmt.Errorf("failed to set img_name of study ID %d: %w", studyID, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormStudyRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Study{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete study ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormStudyRepository) DeleteByPerson(ctx context.Context, personID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("person_id = ?", personID).Delete(&models.Study{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to delete studies of person ID %d: %w", personID, result.Error)
	}
	return result.RowsAffected, nil
}
