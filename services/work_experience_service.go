package services

import (
	"context"

	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/repository"
	"github.com/camden-git/curriculumbackend/validation"
	"gorm.io/gorm"
)

type WorkExperienceInput struct {
	Position    string  `json:"position" validate:"required,max=255"`
	Company     string  `json:"company" validate:"required,max=255"`
	StartDate   string  `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" validate:"omitnil,datetime=2006-01-02"`
	Description *string `json:"description"`
}

type WorkExperiencePatch struct {
	Position    *string `json:"position" validate:"omitnil,min=1,max=255"`
	Company     *string `json:"company" validate:"omitnil,min=1,max=255"`
	StartDate   *string `json:"start_date" validate:"omitnil,min=1,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" validate:"omitnil,datetime=2006-01-02"`
	Description *string `json:"description"`

	Nulls validation.Nulls `json:"-"`
}

// WorkExperienceService manages work experiences scoped to their person. No folder is
// involved, so it takes no person lock.
type WorkExperienceService struct {
	people   repository.PersonRepository
	works    repository.WorkExperienceRepository
	validate *validation.Validator
}

func NewWorkExperienceService(db *gorm.DB, v *validation.Validator) *WorkExperienceService {
	return &WorkExperienceService{
		people:   repository.NewGormPersonRepository(db),
		works:    repository.NewGormWorkExperienceRepository(db),
		validate: v,
	}
}

func (s *WorkExperienceService) ensurePerson(ctx context.Context, personID uint) error {
	if _, err := s.people.GetByID(ctx, personID); err != nil {
		return notFound(err, "person", personID)
	}
	return nil
}

func (s *WorkExperienceService) List(ctx context.Context, personID uint) ([]models.WorkExperience, error) {
	if err := s.ensurePerson(ctx, personID); err != nil {
		return nil, err
	}
	return s.works.ListByPerson(ctx, personID)
}

func (s *WorkExperienceService) Get(ctx context.Context, personID, id uint) (*models.WorkExperience, error) {
	if err := s.ensurePerson(ctx, personID); err != nil {
		return nil, err
	}
	we, err := s.works.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "work experience", id)
	}
	if we.PersonID != personID {
		return nil, notFound(gorm.ErrRecordNotFound, "work experience", id)
	}
	return we, nil
}

func (s *WorkExperienceService) Create(ctx context.Context, personID uint, in WorkExperienceInput) (*models.WorkExperience, error) {
	if err := s.ensurePerson(ctx, personID); err != nil {
		return nil, err
	}
	in.EndDate = validation.Trimmed(in.EndDate)
	in.Description = validation.Trimmed(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	we := &models.WorkExperience{
		PersonID:    personID,
		Position:    in.Position,
		Company:     in.Company,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Description: in.Description,
	}
	if err := s.works.Create(ctx, we); err != nil {
		return nil, err
	}
	return we, nil
}

func (s *WorkExperienceService) Update(ctx context.Context, personID, id uint, patch WorkExperiencePatch) (*models.WorkExperience, error) {
	we, err := s.Get(ctx, personID, id)
	if err != nil {
		return nil, err
	}

	if patch.Nulls == nil {
		patch.Nulls = validation.Nulls{}
	}
	if patch.EndDate != nil && validation.Blank(patch.EndDate) {
		patch.EndDate = nil
		patch.Nulls["end_date"] = true
	}
	extra := &validation.Errors{}
	patch.Nulls.RequireIfPresent(extra, "position", "company", "start_date")
	if err := s.validate.Merge(patch, extra); err != nil {
		return nil, err
	}

	if patch.Position != nil {
		we.Position = *patch.Position
	}
	if patch.Company != nil {
		we.Company = *patch.Company
	}
	if patch.StartDate != nil {
		we.StartDate = *patch.StartDate
	}
	validation.NullableText(&we.EndDate, patch.EndDate, "end_date", patch.Nulls)
	validation.NullableText(&we.Description, patch.Description, "description", patch.Nulls)

	if err := s.works.Save(ctx, we); err != nil {
		return nil, err
	}
	return we, nil
}

func (s *WorkExperienceService) Delete(ctx context.Context, personID, id uint) error {
	we, err := s.Get(ctx, personID, id)
	if err != nil {
		return err
	}
	return notFound(s.works.Delete(ctx, we.ID), "work experience", id)
}
