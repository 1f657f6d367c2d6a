package repository

import (
	"context"
	"time"

	"github.com/camden-git/curriculumbackend/models"
	"gorm.io/gorm"
)

type GormTokenRepository struct {
	db *gorm.DB
}

func NewGormTokenRepository(db *gorm.DB) TokenRepository {
	return &GormTokenRepository{db: db}
}

func (r *GormTokenRepository) Create(ctx context.Context, token *models.PersonalAccessToken) error {
	return r.db.WithContext(ctx).Create(token).Error
}

func (r *GormTokenRepository) GetByID(ctx context.Context, id uint) (*models.PersonalAccessToken, error) {
	var token models.PersonalAccessToken
	if err := r.db.WithContext(ctx).First(&token, id).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// Touch stamps last_used_at without bumping updated_at
func (r *GormTokenRepository) Touch(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.PersonalAccessToken{}).
		Where("id = ?", id).
		UpdateColumn("last_used_at", time.Now()).Error
}

func (r *GormTokenRepository) DeleteByUser(ctx context.Context, userID uint) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.PersonalAccessToken{})
	return result.RowsAffected, result.Error
}
