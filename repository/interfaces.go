package repository

import (
	"context"

	"github.com/camden-git/curriculumbackend/models"
	"gorm.io/gorm"
)

// PersonRepository defines the methods for person data operations.
// WithTx returns a copy bound to a running transaction.
type PersonRepository interface {
	WithTx(tx *gorm.DB) PersonRepository
	Create(ctx context.Context, person *models.Person) error
	GetByID(ctx context.Context, id uint) (*models.Person, error)
	ListAll(ctx context.Context) ([]models.Person, error)
	Save(ctx context.Context, person *models.Person) error
	Delete(ctx context.Context, id uint) error
}

// StudyRepository defines the methods for study data operations
type StudyRepository interface {
	WithTx(tx *gorm.DB) StudyRepository
	Create(ctx context.Context, study *models.Study) error
	GetByID(ctx context.Context, id uint) (*models.Study, error)
	GetForPerson(ctx context.Context, personID, studyID uint) (*models.Study, error)
	ListAll(ctx context.Context) ([]models.Study, error)
	ListByPerson(ctx context.Context, personID uint) ([]models.Study, error)
	Save(ctx context.Context, study *models.Study) error
	SetImgName(ctx context.Context, studyID uint, imgName string) error
	Delete(ctx context.Context, id uint) error
	DeleteByPerson(ctx context.Context, personID uint) (int64, error)
}

// WorkExperienceRepository defines the methods for work experience data operations
type WorkExperienceRepository interface {
	WithTx(tx *gorm.DB) WorkExperienceRepository
	Create(ctx context.Context, we *models.WorkExperience) error
	GetByID(ctx context.Context, id uint) (*models.WorkExperience, error)
	ListAll(ctx context.Context) ([]models.WorkExperience, error)
	ListByPerson(ctx context.Context, personID uint) ([]models.WorkExperience, error)
	Save(ctx context.Context, we *models.WorkExperience) error
	Delete(ctx context.Context, id uint) error
	DeleteByPerson(ctx context.Context, personID uint) (int64, error)
}

// ArticleRepository defines the methods for article data operations
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id uint) (*models.Article, error)
	ListAll(ctx context.Context) ([]models.Article, error)
	Save(ctx context.Context, article *models.Article) error
	Delete(ctx context.Context, id uint) error
}

// RoleRepository defines the methods for role data operations
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	GetByID(ctx context.Context, id uint) (*models.Role, error)
	ListAll(ctx context.Context) ([]models.Role, error)
	Save(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id uint) error
}

// UserRepository defines the methods for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	ListAll(ctx context.Context) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	// Delete removes the user together with every token issued to them
	Delete(ctx context.Context, id uint) error
	Count(ctx context.Context) (int64, error)
}

// TokenRepository defines the methods for personal access token operations
type TokenRepository interface {
	Create(ctx context.Context, token *models.PersonalAccessToken) error
	GetByID(ctx context.Context, id uint) (*models.PersonalAccessToken, error)
	Touch(ctx context.Context, id uint) error
	DeleteByUser(ctx context.Context, userID uint) (int64, error)
}
