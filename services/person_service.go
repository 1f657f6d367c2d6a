package services

import (
	"context"
	"errors"
	"log"
	"path"

	"github.com/camden-git/curriculumbackend/database"
	"github.com/camden-git/curriculumbackend/media"
	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/repository"
	"github.com/camden-git/curriculumbackend/validation"
	"gorm.io/gorm"
)

const msgEmailTaken = "The email has already been taken."

// PersonInput is the create payload of a person.
type PersonInput struct {
	FirstName   string  `json:"first_name" validate:"required,max=255,excludesall=/\\"`
	LastName    string  `json:"last_name" validate:"required,max=255,excludesall=/\\"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitnil,datetime=2006-01-02"`
	IDCard      *string `json:"id_card" validate:"omitnil,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitnil,max=255"`
	Address     *string `json:"address" validate:"omitnil,max=255"`
	Email       *string `json:"email" validate:"omitnil,email,max=255"`
	LinkedinURL *string `json:"linkedin_url" validate:"omitnil,url,max=255"`
	FacebookURL *string `json:"facebook_url" validate:"omitnil,url,max=255"`
	IndeedURL   *string `json:"indeed_url" validate:"omitnil,url,max=255"`
}

func (in *PersonInput) normalize() {
	for _, p := range []**string{&in.DateOfBirth, &in.IDCard, &in.PhoneNumber, &in.Address,
		&in.Email, &in.LinkedinURL, &in.FacebookURL, &in.IndeedURL} {
		*p = validation.Trimmed(*p)
	}
}

// PersonPatch is the partial update payload of a person. Nil fields are left unchanged;
// Nulls lists the keys the client sent as an explicit null.
type PersonPatch struct {
	FirstName   *string `json:"first_name" validate:"omitnil,min=1,max=255,excludesall=/\\"`
	LastName    *string `json:"last_name" validate:"omitnil,min=1,max=255,excludesall=/\\"`
	DateOfBirth *string `json:"date_of_birth" validate:"omitnil,datetime=2006-01-02"`
	IDCard      *string `json:"id_card" validate:"omitnil,max=255"`
	PhoneNumber *string `json:"phone_number" validate:"omitnil,max=255"`
	Address     *string `json:"address" validate:"omitnil,max=255"`
	Email       *string `json:"email" validate:"omitnil,email,max=255"`
	LinkedinURL *string `json:"linkedin_url" validate:"omitnil,url,max=255"`
	FacebookURL *string `json:"facebook_url" validate:"omitnil,url,max=255"`
	IndeedURL   *string `json:"indeed_url" validate:"omitnil,url,max=255"`

	Nulls validation.Nulls `json:"-"`
}

// optional fields sent as "" are validated as absent and applied as a clear
func (p *PersonPatch) normalize() {
	if p.Nulls == nil {
		p.Nulls = validation.Nulls{}
	}
	fields := map[string]**string{
		"date_of_birth": &p.DateOfBirth, "id_card": &p.IDCard, "phone_number": &p.PhoneNumber,
		"address": &p.Address, "email": &p.Email, "linkedin_url": &p.LinkedinURL,
		"facebook_url": &p.FacebookURL, "indeed_url": &p.IndeedURL,
	}
	for key, f := range fields {
		if *f != nil && validation.Blank(*f) {
			*f = nil
			p.Nulls[key] = true
		}
	}
}

func (p *PersonPatch) apply(person *models.Person) {
	if p.FirstName != nil {
		person.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		person.LastName = *p.LastName
	}
	validation.NullableText(&person.DateOfBirth, p.DateOfBirth, "date_of_birth", p.Nulls)
	validation.NullableText(&person.IDCard, p.IDCard, "id_card", p.Nulls)
	validation.NullableText(&person.PhoneNumber, p.PhoneNumber, "phone_number", p.Nulls)
	validation.NullableText(&person.Address, p.Address, "address", p.Nulls)
	validation.NullableText(&person.Email, p.Email, "email", p.Nulls)
	validation.NullableText(&person.LinkedinURL, p.LinkedinURL, "linkedin_url", p.Nulls)
	validation.NullableText(&person.FacebookURL, p.FacebookURL, "facebook_url", p.Nulls)
	validation.NullableText(&person.IndeedURL, p.IndeedURL, "indeed_url", p.Nulls)
}

// PersonService is the person lifecycle manager. It keeps every person row and the
// {id}-{first}_{last} folder tree under the uploads base in step.
type PersonService struct {
	db       *gorm.DB
	people   repository.PersonRepository
	studies  repository.StudyRepository
	works    repository.WorkExperienceRepository
	store    media.Store
	locks    *KeyedMutex
	validate *validation.Validator
}

// NewPersonService wires the lifecycle manager. locks must be shared with every other
// service that touches person folders.
func NewPersonService(db *gorm.DB, store media.Store, locks *KeyedMutex, v *validation.Validator) *PersonService {
	return &PersonService{
		db:       db,
		people:   repository.NewGormPersonRepository(db),
		studies:  repository.NewGormStudyRepository(db),
		works:    repository.NewGormWorkExperienceRepository(db),
		store:    store,
		locks:    locks,
		validate: v,
	}
}

func (s *PersonService) List(ctx context.Context) ([]models.Person, error) {
	return s.people.ListAll(ctx)
}

func (s *PersonService) Get(ctx context.Context, id uint) (*models.Person, error) {
	person, err := s.people.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "person", id)
	}
	return person, nil
}

func (s *PersonService) emailTaken(ctx context.Context, email *string, excludeID uint) (*validation.Errors, error) {
	if email == nil {
		return nil, nil
	}
	taken, err := database.ValueTaken(ctx, s.db, "people", "email", *email, excludeID)
	if err != nil {
		return nil, err
	}
	if taken {
		return validation.Single("email", msgEmailTaken), nil
	}
	return nil, nil
}

// Create inserts the person and creates its folder tree. The row insert is rolled back
// when any directory cannot be created.
func (s *PersonService) Create(ctx context.Context, in PersonInput) (*models.Person, error) {
	in.normalize()
	extra, err := s.emailTaken(ctx, in.Email, 0)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Merge(in, extra); err != nil {
		return nil, err
	}

	person := &models.Person{
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		DateOfBirth: in.DateOfBirth,
		IDCard:      in.IDCard,
		PhoneNumber: in.PhoneNumber,
		Address:     in.Address,
		Email:       in.Email,
		LinkedinURL: in.LinkedinURL,
		FacebookURL: in.FacebookURL,
		IndeedURL:   in.IndeedURL,
	}

	err = database.Run(ctx, s.db, func(uow *database.UnitOfWork) error {
		if err := s.people.WithTx(uow.Tx()).Create(ctx, person); err != nil {
			return duplicateEmail(err)
		}

		folder := person.FolderName()
		existed, err := s.store.Exists(folder)
		if err != nil {
			return &StorageConsistencyError{Op: "stat", Path: folder, Err: err}
		}
		if existed {
			log.Printf("services.person: folder %s already exists, reusing it for person %d", folder, person.ID)
		} else {
			uow.OnRollback("remove folder "+folder, func() error {
				return s.store.RemoveAll(folder)
			})
		}

		for _, sub := range media.PersonSubDirs {
			dir := path.Join(folder, sub)
			if err := s.store.EnsureDir(dir); err != nil {
				return &StorageConsistencyError{Op: "mkdir", Path: dir, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		logStorageError("create", err)
		return nil, err
	}

	log.Printf("services.person: created person %d with folder %s", person.ID, person.FolderName())
	return person, nil
}

// Update applies patch to the person and renames the folder tree when the derived folder
// name changes. A failed rename rolls the row update back; a failed commit moves the
// folder back.
func (s *PersonService) Update(ctx context.Context, id uint, patch PersonPatch) (*models.Person, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	person, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	patch.normalize()
	extra, err := s.emailTaken(ctx, patch.Email, id)
	if err != nil {
		return nil, err
	}
	if extra == nil {
		extra = &validation.Errors{}
	}
	patch.Nulls.RequireIfPresent(extra, "first_name", "last_name")
	if err := s.validate.Merge(patch, extra); err != nil {
		return nil, err
	}

	oldFolder := person.FolderName()
	patch.apply(person)
	newFolder := person.FolderName()

	err = database.Run(ctx, s.db, func(uow *database.UnitOfWork) error {
		if err := s.people.WithTx(uow.Tx()).Save(ctx, person); err != nil {
			return duplicateEmail(err)
		}
		if oldFolder == newFolder {
			return nil
		}
		if err := s.store.Move(oldFolder, newFolder); err != nil {
			return &StorageConsistencyError{Op: "move", Path: oldFolder, Err: err}
		}
		uow.OnRollback("move folder back to "+oldFolder, func() error {
			return s.store.Move(newFolder, oldFolder)
		})
		return nil
	})
	if err != nil {
		logStorageError("update", err)
		return nil, err
	}

	if oldFolder != newFolder {
		log.Printf("services.person: renamed folder %s -> %s", oldFolder, newFolder)
	}
	return person, nil
}

// Delete removes the person's studies, work experiences and row in one transaction and
// then the folder tree. A folder that cannot be removed after commit is only logged.
func (s *PersonService) Delete(ctx context.Context, id uint) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	person, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	folder := person.FolderName()

	err = database.Run(ctx, s.db, func(uow *database.UnitOfWork) error {
		tx := uow.Tx()
		if _, err := s.studies.WithTx(tx).DeleteByPerson(ctx, id); err != nil {
			return err
		}
		if _, err := s.works.WithTx(tx).DeleteByPerson(ctx, id); err != nil {
			return err
		}
		return s.people.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return notFound(err, "person", id)
	}

	if err := s.store.RemoveAll(folder); err != nil {
		scErr := &StorageConsistencyError{Op: "remove", Path: folder, Err: err}
		log.Printf("services.person: Warning: person %d deleted but its folder remains: %v", id, scErr)
	}
	return nil
}

func duplicateEmail(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return validation.Single("email", msgEmailTaken)
	}
	return err
}

func logStorageError(op string, err error) {
	var scErr *StorageConsistencyError
	if errors.As(err, &scErr) {
		log.Printf("services.person: %s rolled back: %v", op, err)
	}
}
