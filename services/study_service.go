package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/camden-git/curriculumbackend/database"
	"github.com/camden-git/curriculumbackend/media"
	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/repository"
	"github.com/camden-git/curriculumbackend/utils"
	"github.com/camden-git/curriculumbackend/validation"
	"gorm.io/gorm"
)

// uploadTimestampLayout gives stored certification names second resolution (YmdHis).
const uploadTimestampLayout = "20060102150405"

// StudyInput is the create payload of a study.
type StudyInput struct {
	Institution string  `json:"institution" validate:"required,max=255"`
	Degree      string  `json:"degree" validate:"required,max=255"`
	Level       string  `json:"level" validate:"required,max=255"`
	StartDate   *string `json:"start_date" validate:"omitnil,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" validate:"omitnil,datetime=2006-01-02"`
	Description *string `json:"description"`
}

// StudyPatch is the partial update payload of a study.
type StudyPatch struct {
	Institution *string `json:"institution" validate:"omitnil,min=1,max=255"`
	Degree      *string `json:"degree" validate:"omitnil,min=1,max=255"`
	Level       *string `json:"level" validate:"omitnil,min=1,max=255"`
	StartDate   *string `json:"start_date" validate:"omitnil,datetime=2006-01-02"`
	EndDate     *string `json:"end_date" validate:"omitnil,datetime=2006-01-02"`
	Description *string `json:"description"`

	Nulls validation.Nulls `json:"-"`
}

// Upload is a certification file received from a client.
type Upload struct {
	Filename string
	Content  io.Reader
}

// StudyService manages studies scoped to their person, including the certification file
// stored in the person's CertificationImages folder.
type StudyService struct {
	db              *gorm.DB
	people          repository.PersonRepository
	studies         repository.StudyRepository
	store           media.Store
	locks           *KeyedMutex
	validate        *validation.Validator
	maxUploadSize   int64
	publicURLPrefix string
	now             func() time.Time
}

func NewStudyService(db *gorm.DB, store media.Store, locks *KeyedMutex, v *validation.Validator, maxUploadSize int64, publicURLPrefix string) *StudyService {
	return &StudyService{
		db:              db,
		people:          repository.NewGormPersonRepository(db),
		studies:         repository.NewGormStudyRepository(db),
		store:           store,
		locks:           locks,
		validate:        v,
		maxUploadSize:   maxUploadSize,
		publicURLPrefix: strings.TrimSuffix(publicURLPrefix, "/"),
		now:             time.Now,
	}
}

// SetClock replaces the clock used for stored filenames.
func (s *StudyService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *StudyService) person(ctx context.Context, personID uint) (*models.Person, error) {
	person, err := s.people.GetByID(ctx, personID)
	if err != nil {
		return nil, notFound(err, "person", personID)
	}
	return person, nil
}

func (s *StudyService) List(ctx context.Context, personID uint) ([]models.Study, error) {
	if _, err := s.person(ctx, personID); err != nil {
		return nil, err
	}
	return s.studies.ListByPerson(ctx, personID)
}

// Get returns the study only when it belongs to personID.
func (s *StudyService) Get(ctx context.Context, personID, studyID uint) (*models.Study, error) {
	if _, err := s.person(ctx, personID); err != nil {
		return nil, err
	}
	study, err := s.studies.GetForPerson(ctx, personID, studyID)
	if err != nil {
		return nil, notFound(err, "study", studyID)
	}
	return study, nil
}

func (s *StudyService) Create(ctx context.Context, personID uint, in StudyInput) (*models.Study, error) {
	if _, err := s.person(ctx, personID); err != nil {
		return nil, err
	}
	in.StartDate = validation.Trimmed(in.StartDate)
	in.EndDate = validation.Trimmed(in.EndDate)
	in.Description = validation.Trimmed(in.Description)
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	study := &models.Study{
		PersonID:    personID,
		Institution: in.Institution,
		Degree:      in.Degree,
		Level:       in.Level,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Description: in.Description,
	}
	if err := s.studies.Create(ctx, study); err != nil {
		return nil, err
	}
	return study, nil
}

func (s *StudyService) Update(ctx context.Context, personID, studyID uint, patch StudyPatch) (*models.Study, error) {
	study, err := s.Get(ctx, personID, studyID)
	if err != nil {
		return nil, err
	}

	if patch.Nulls == nil {
		patch.Nulls = validation.Nulls{}
	}
	for key, f := range map[string]**string{"start_date": &patch.StartDate, "end_date": &patch.EndDate} {
		if *f != nil && validation.Blank(*f) {
			*f = nil
			patch.Nulls[key] = true
		}
	}
	extra := &validation.Errors{}
	patch.Nulls.RequireIfPresent(extra, "institution", "degree", "level")
	if err := s.validate.Merge(patch, extra); err != nil {
		return nil, err
	}

	if patch.Institution != nil {
		study.Institution = *patch.Institution
	}
	if patch.Degree != nil {
		study.Degree = *patch.Degree
	}
	if patch.Level != nil {
		study.Level = *patch.Level
	}
	validation.NullableText(&study.StartDate, patch.StartDate, "start_date", patch.Nulls)
	validation.NullableText(&study.EndDate, patch.EndDate, "end_date", patch.Nulls)
	validation.NullableText(&study.Description, patch.Description, "description", patch.Nulls)

	if err := s.studies.Save(ctx, study); err != nil {
		return nil, err
	}
	return study, nil
}

// Delete removes the study's certification file, when one is recorded, and then the row.
// A file that cannot be removed keeps the row in place.
func (s *StudyService) Delete(ctx context.Context, personID, studyID uint) error {
	unlock := s.locks.Lock(personID)
	defer unlock()

	person, err := s.person(ctx, personID)
	if err != nil {
		return err
	}
	study, err := s.studies.GetForPerson(ctx, personID, studyID)
	if err != nil {
		return notFound(err, "study", studyID)
	}

	if study.ImgName != nil && *study.ImgName != "" {
		filePath := media.CertificationPath(person.FolderName(), *study.ImgName)
		if err := s.store.Delete(filePath); err != nil {
			return &StorageConsistencyError{Op: "delete", Path: filePath, Err: err}
		}
	}

	if err := s.studies.Delete(ctx, study.ID); err != nil {
		return notFound(err, "study", studyID)
	}
	return nil
}

// UploadCertificationFile validates and stores a certification file for the study and
// records its name in img_name. It returns the public path of the stored file.
//
// The file is written before the row is updated. When the row update fails the file is
// left on disk and reported as a StorageConsistencyError.
func (s *StudyService) UploadCertificationFile(ctx context.Context, personID, studyID uint, upload *Upload) (string, error) {
	unlock := s.locks.Lock(personID)
	defer unlock()

	person, err := s.person(ctx, personID)
	if err != nil {
		return "", err
	}
	study, err := s.studies.GetForPerson(ctx, personID, studyID)
	if err != nil {
		return "", notFound(err, "study", studyID)
	}

	data, err := s.readUpload(upload)
	if err != nil {
		return "", err
	}

	ext := media.Extension(upload.Filename)
	fileName := fmt.Sprintf("%d_%d_%s_%s.%s",
		person.ID, study.ID, utils.SanitizeBaseName(upload.Filename), s.now().Format(uploadTimestampLayout), ext)
	folder := person.FolderName()

	relPath, err := s.store.Save(media.CertificationDir(folder), fileName, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to store certification file: %w", err)
	}

	err = database.Run(ctx, s.db, func(uow *database.UnitOfWork) error {
		return s.studies.WithTx(uow.Tx()).SetImgName(ctx, study.ID, fileName)
	})
	if err != nil {
		scErr := &StorageConsistencyError{Op: "record upload", Path: relPath, Err: err}
		log.Printf("services.study: file stored but img_name not updated, leaving it on disk: %v", scErr)
		return "", scErr
	}

	log.Printf("services.study: stored certification %s for study %d", relPath, study.ID)
	return s.publicPath(folder, fileName), nil
}

func (s *StudyService) readUpload(upload *Upload) ([]byte, error) {
	if upload == nil || upload.Content == nil {
		return nil, validation.Single("file", "The file field is required.")
	}
	data, err := io.ReadAll(io.LimitReader(upload.Content, s.maxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, validation.Single("file", "The file field is required.")
	}
	if int64(len(data)) > s.maxUploadSize {
		return nil, validation.Single("file",
			fmt.Sprintf("The file field must not be greater than %d kilobytes.", s.maxUploadSize/1024))
	}

	if _, err := media.InspectCertification(upload.Filename, data); err != nil {
		switch {
		case errors.Is(err, media.ErrUnsupportedType), errors.Is(err, media.ErrTypeMismatch):
			return nil, validation.Single("file", "The file field must be a file of type: "+
				strings.Join(media.AllowedCertificationExtensions(), ", ")+".")
		case errors.Is(err, media.ErrCorruptImage):
			return nil, validation.Single("file", "The file field must be a valid image.")
		default:
			return nil, err
		}
	}
	return data, nil
}

// publicPath is PublicURLPrefix joined with the escaped relative path segments.
func (s *StudyService) publicPath(folder, fileName string) string {
	segments := []string{folder, media.SubDirCertificationImages, fileName}
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return s.publicURLPrefix + "/" + strings.Join(segments, "/")
}
