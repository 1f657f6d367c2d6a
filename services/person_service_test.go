package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/camden-git/curriculumbackend/media"
	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersonService_CreateBuildsFolderTree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Mary Ann", LastName: "De la Cruz", Email: strPtr("mary@example.com")})
	require.NoError(t, err)
	require.NotZero(t, person.ID)

	folder := fmt.Sprintf("%d-Mary_Ann_De_la_Cruz", person.ID)
	assert.Equal(t, folder, person.FolderName())
	dirs, err := env.local.ListDirs(folder)
	require.NoError(t, err)
	assert.ElementsMatch(t, media.PersonSubDirs, dirs)

	got, err := env.people.Get(ctx, person.ID)
	require.NoError(t, err)
	assert.Equal(t, "mary@example.com", *got.Email)
}

func TestPersonService_CreateValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.people.Create(ctx, PersonInput{
		FirstName:   "",
		LastName:    "Doe",
		DateOfBirth: strPtr("yesterday"),
		Email:       strPtr("nope"),
		LinkedinURL: strPtr("not a url"),
	})
	verr, ok := validation.AsErrors(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.Contains(t, verr.Fields, "first_name")
	assert.Contains(t, verr.Fields, "date_of_birth")
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "linkedin_url")

	_, err = env.people.Create(ctx, PersonInput{FirstName: "../etc", LastName: "Doe"})
	verr, ok = validation.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "first_name")

	assert.Empty(t, env.store.Calls(), "invalid input must not touch storage")
}

func TestPersonService_CreateBlankOptionalFieldsAreNull(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.people.Create(ctx, PersonInput{FirstName: "A", LastName: "One", Email: strPtr("")})
	require.NoError(t, err)
	b, err := env.people.Create(ctx, PersonInput{FirstName: "B", LastName: "Two", Email: strPtr("  ")})
	require.NoError(t, err)
	assert.Nil(t, a.Email)
	assert.Nil(t, b.Email)
}

func TestPersonService_CreateDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe", Email: strPtr("jane@example.com")})
	require.NoError(t, err)

	_, err = env.people.Create(ctx, PersonInput{FirstName: "John", LastName: "Doe", Email: strPtr("jane@example.com")})
	verr, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{msgEmailTaken}, verr.Fields["email"])

	people, err := env.people.List(ctx)
	require.NoError(t, err)
	assert.Len(t, people, 1)
}

func TestPersonService_CreateRollsBackWhenMkdirFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.store.Fail("mkdir", "1-Jane_Doe/Docs")
	_, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.Error(t, err)

	var scErr *StorageConsistencyError
	require.True(t, errors.As(err, &scErr))
	assert.Equal(t, "mkdir", scErr.Op)
	assert.Equal(t, "1-Jane_Doe/Docs", scErr.Path)

	var count int64
	require.NoError(t, env.db.Model(&models.Person{}).Count(&count).Error)
	assert.Zero(t, count, "row insert must be rolled back")
	assert.False(t, env.exists(t, "1-Jane_Doe"), "partially created folder must be removed")
}

func TestPersonService_UpdateRenamesFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe", Address: strPtr("Main St")})
	require.NoError(t, err)
	require.NoError(t, env.local.EnsureDir(person.FolderName()+"/Docs/keep"))

	updated, err := env.people.Update(ctx, person.ID, PersonPatch{LastName: strPtr("Smith")})
	require.NoError(t, err)
	assert.Equal(t, "Jane", updated.FirstName)
	assert.Equal(t, "Smith", updated.LastName)
	require.NotNil(t, updated.Address, "unsupplied fields are unchanged")

	assert.False(t, env.exists(t, "1-Jane_Doe"))
	assert.True(t, env.exists(t, "1-Jane_Smith/Docs/keep"), "tree contents move with the folder")
}

func TestPersonService_UpdateWithoutNameChangeSkipsFilesystem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	env.store.Reset()

	updated, err := env.people.Update(ctx, person.ID, PersonPatch{
		FirstName:   strPtr("Jane"),
		PhoneNumber: strPtr("+506 8888 7777"),
	})
	require.NoError(t, err)
	assert.Equal(t, "+506 8888 7777", *updated.PhoneNumber)
	assert.Empty(t, env.store.Calls())
}

func TestPersonService_UpdateNullClearsNullableField(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe", Email: strPtr("jane@example.com")})
	require.NoError(t, err)

	updated, err := env.people.Update(ctx, person.ID, PersonPatch{Nulls: validation.Nulls{"email": true}})
	require.NoError(t, err)
	assert.Nil(t, updated.Email)

	_, err = env.people.Update(ctx, person.ID, PersonPatch{Nulls: validation.Nulls{"first_name": true}})
	verr, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "first_name")
}

func TestPersonService_UpdateEmailUniquenessIgnoresSelf(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	jane, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe", Email: strPtr("jane@example.com")})
	require.NoError(t, err)
	john, err := env.people.Create(ctx, PersonInput{FirstName: "John", LastName: "Doe", Email: strPtr("john@example.com")})
	require.NoError(t, err)

	_, err = env.people.Update(ctx, jane.ID, PersonPatch{Email: strPtr("jane@example.com")})
	require.NoError(t, err)

	_, err = env.people.Update(ctx, john.ID, PersonPatch{Email: strPtr("jane@example.com")})
	verr, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, []string{msgEmailTaken}, verr.Fields["email"])
}

func TestPersonService_UpdateRollsBackWhenMoveFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)

	env.store.Fail("move", "1-Jane_Doe")
	_, err = env.people.Update(ctx, person.ID, PersonPatch{LastName: strPtr("Smith")})
	var scErr *StorageConsistencyError
	require.True(t, errors.As(err, &scErr))
	assert.Equal(t, "move", scErr.Op)

	got, err := env.people.Get(ctx, person.ID)
	require.NoError(t, err)
	assert.Equal(t, "Doe", got.LastName, "row update must be rolled back")
	assert.True(t, env.exists(t, "1-Jane_Doe"))
	assert.False(t, env.exists(t, "1-Jane_Smith"))
}

func TestPersonService_UpdateMissingPerson(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.people.Update(context.Background(), 42, PersonPatch{FirstName: strPtr("x")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersonService_DeleteRemovesRowsAndFolder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	_, err = env.studies.Create(ctx, person.ID, StudyInput{Institution: "INA", Degree: "Dev", Level: "Tech"})
	require.NoError(t, err)
	_, err = env.works.Create(ctx, person.ID, WorkExperienceInput{Position: "Dev", Company: "Acme", StartDate: "2020-01-01"})
	require.NoError(t, err)

	require.NoError(t, env.people.Delete(ctx, person.ID))

	_, err = env.people.Get(ctx, person.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, env.exists(t, person.FolderName()))

	var studies, works int64
	require.NoError(t, env.db.Model(&models.Study{}).Count(&studies).Error)
	require.NoError(t, env.db.Model(&models.WorkExperience{}).Count(&works).Error)
	assert.Zero(t, studies)
	assert.Zero(t, works)

	assert.ErrorIs(t, env.people.Delete(ctx, person.ID), ErrNotFound)
}

func TestPersonService_DeleteKeepsSucceedingWhenFolderRemovalFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)

	env.store.Fail("rmdir", person.FolderName())
	require.NoError(t, env.people.Delete(ctx, person.ID))

	_, err = env.people.Get(ctx, person.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, env.exists(t, person.FolderName()), "folder is left as debris")
}

func TestPersonService_ConcurrentUpdatesOfSamePersonStayInSync(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := env.people.Update(ctx, person.ID, PersonPatch{LastName: strPtr(fmt.Sprintf("Name%d", i))})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, err := env.people.Get(ctx, person.ID)
	require.NoError(t, err)
	dirs, err := env.local.ListDirs("")
	require.NoError(t, err)
	assert.Equal(t, []string{got.FolderName()}, dirs)
	assert.Zero(t, env.locks.Len())
}
