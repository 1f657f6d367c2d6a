package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/validation"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func fixedClock(ts string) func() time.Time {
	tm, err := time.Parse("2006-01-02 15:04:05", ts)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return tm }
}

func TestStudyService_JaneDoeScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	require.Equal(t, uint(1), person.ID)
	for _, sub := range []string{"ProfilePhotos", "CertificationImages", "Docs"} {
		assert.True(t, env.exists(t, "1-Jane_Doe/"+sub))
	}

	_, err = env.people.Update(ctx, person.ID, PersonPatch{LastName: strPtr("Smith")})
	require.NoError(t, err)
	assert.True(t, env.exists(t, "1-Jane_Smith"))
	assert.False(t, env.exists(t, "1-Jane_Doe"))

	study, err := env.studies.Create(ctx, person.ID, StudyInput{Institution: "INA", Degree: "Dev", Level: "Técnico"})
	require.NoError(t, err)
	require.NotZero(t, study.ID)
	assert.Nil(t, study.ImgName)

	env.studies.SetClock(fixedClock("2024-03-05 14:07:09"))
	publicPath, err := env.studies.UploadCertificationFile(ctx, person.ID, study.ID,
		&Upload{Filename: "cert.png", Content: bytes.NewReader(pngBytes(t))})
	require.NoError(t, err)

	wantName := fmt.Sprintf("1_%d_cert_20240305140709.png", study.ID)
	assert.Equal(t, "/storage/uploads/1-Jane_Smith/CertificationImages/"+wantName, publicPath)
	assert.True(t, env.exists(t, "1-Jane_Smith/CertificationImages/"+wantName))

	stored, err := env.studies.Get(ctx, person.ID, study.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ImgName)
	assert.Equal(t, wantName, *stored.ImgName)

	require.NoError(t, env.studies.Delete(ctx, person.ID, study.ID))
	assert.False(t, env.exists(t, "1-Jane_Smith/CertificationImages/"+wantName))
	_, err = env.studies.Get(ctx, person.ID, study.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.people.Delete(ctx, person.ID))
	assert.False(t, env.exists(t, "1-Jane_Smith"))
	_, err = env.people.Get(ctx, person.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStudyService_RepeatedUploadsGetDistinctNames(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	study, err := env.studies.Create(ctx, person.ID, StudyInput{Institution: "INA", Degree: "Dev", Level: "Tech"})
	require.NoError(t, err)

	env.studies.SetClock(fixedClock("2024-03-05 14:07:09"))
	first, err := env.studies.UploadCertificationFile(ctx, person.ID, study.ID,
		&Upload{Filename: "My Cert.PNG", Content: bytes.NewReader(pngBytes(t))})
	require.NoError(t, err)

	env.studies.SetClock(fixedClock("2024-03-05 14:07:10"))
	second, err := env.studies.UploadCertificationFile(ctx, person.ID, study.ID,
		&Upload{Filename: "My Cert.PNG", Content: bytes.NewReader(pngBytes(t))})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasSuffix(first, "_My_Cert_20240305140709.png"))

	stored, err := env.studies.Get(ctx, person.ID, study.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(second, "/"+*stored.ImgName), "img_name points to the latest upload")

	files := 0
	for _, name := range []string{"1_1_My_Cert_20240305140709.png", "1_1_My_Cert_20240305140710.png"} {
		if env.exists(t, "1-Jane_Doe/CertificationImages/"+name) {
			files++
		}
	}
	assert.Equal(t, 2, files, "the previous upload is kept on disk")
}

func TestStudyService_UploadValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.studies.maxUploadSize = 1024

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	study, err := env.studies.Create(ctx, person.ID, StudyInput{Institution: "INA", Degree: "Dev", Level: "Tech"})
	require.NoError(t, err)

	cases := map[string]*Upload{
		"missing":       nil,
		"empty":         {Filename: "a.png", Content: bytes.NewReader(nil)},
		"too large":     {Filename: "a.pdf", Content: bytes.NewReader(bytes.Repeat([]byte("%PDF-1.4 "), 200))},
		"wrong type":    {Filename: "a.exe", Content: bytes.NewReader([]byte("MZ\x90\x00"))},
		"mismatch":      {Filename: "a.png", Content: bytes.NewReader([]byte("%PDF-1.4\n%EOF"))},
		"corrupt image": {Filename: "a.png", Content: bytes.NewReader(pngBytes(t)[:40])},
	}
	for name, upload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := env.studies.UploadCertificationFile(ctx, person.ID, study.ID, upload)
			verr, ok := validation.AsErrors(err)
			require.True(t, ok, "expected validation error, got %v", err)
			assert.Contains(t, verr.Fields, "file")
		})
	}

	full, err := env.local.GetFullPath("1-Jane_Doe/CertificationImages")
	require.NoError(t, err)
	entries, err := os.ReadDir(full)
	require.NoError(t, err)
	assert.Empty(t, entries, "rejected uploads leave no file behind")
	stored, err := env.studies.Get(ctx, person.ID, study.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ImgName)
}

func TestStudyService_UploadAcceptsPDF(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	study, err := env.studies.Create(ctx, person.ID, StudyInput{Institution: "INA", Degree: "Dev", Level: "Tech"})
	require.NoError(t, err)

	p, err := env.studies.UploadCertificationFile(ctx, person.ID, study.ID,
		&Upload{Filename: "title.pdf", Content: strings.NewReader("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n%%EOF\n")})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(p, ".pdf"))
}

func TestStudyService_ScopedToPerson(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	jane, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	john, err := env.people.Create(ctx, PersonInput{FirstName: "John", LastName: "Doe"})
	require.NoError(t, err)
	study, err := env.studies.Create(ctx, jane.ID, StudyInput{Institution: "INA", Degree: "Dev", Level: "Tech"})
	require.NoError(t, err)

	_, err = env.studies.Get(ctx, john.ID, study.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, env.studies.Delete(ctx, john.ID, study.ID), ErrNotFound)
	_, err = env.studies.UploadCertificationFile(ctx, john.ID, study.ID,
		&Upload{Filename: "a.png", Content: bytes.NewReader(pngBytes(t))})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = env.studies.List(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStudyService_DeleteWithoutFileSkipsFilesystem(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	study, err := env.studies.Create(ctx, person.ID, StudyInput{Institution: "INA", Degree: "Dev", Level: "Tech"})
	require.NoError(t, err)
	env.store.Reset()

	require.NoError(t, env.studies.Delete(ctx, person.ID, study.ID))
	assert.Empty(t, env.store.Calls())
}

func TestStudyService_DeleteKeepsRowWhenFileRemovalFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	study, err := env.studies.Create(ctx, person.ID, StudyInput{Institution: "INA", Degree: "Dev", Level: "Tech"})
	require.NoError(t, err)
	_, err = env.studies.UploadCertificationFile(ctx, person.ID, study.ID,
		&Upload{Filename: "a.png", Content: bytes.NewReader(pngBytes(t))})
	require.NoError(t, err)

	env.store.Fail("delete", "")
	err = env.studies.Delete(ctx, person.ID, study.ID)
	var scErr *StorageConsistencyError
	require.True(t, errors.As(err, &scErr))

	_, err = env.studies.Get(ctx, person.ID, study.ID)
	assert.NoError(t, err)
}

func TestStudyService_UploadLeavesFileWhenRowUpdateFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	study, err := env.studies.Create(ctx, person.ID, StudyInput{Institution: "INA", Degree: "Dev", Level: "Tech"})
	require.NoError(t, err)

	// make the img_name update fail after the file is written
	require.NoError(t, env.db.Exec(`CREATE TRIGGER block_img BEFORE UPDATE OF img_name ON studies
		BEGIN SELECT RAISE(ABORT, 'blocked'); END`).Error)

	env.studies.SetClock(fixedClock("2024-03-05 14:07:09"))
	_, err = env.studies.UploadCertificationFile(ctx, person.ID, study.ID,
		&Upload{Filename: "a.png", Content: bytes.NewReader(pngBytes(t))})
	var scErr *StorageConsistencyError
	require.True(t, errors.As(err, &scErr))
	assert.Equal(t, "record upload", scErr.Op)

	assert.True(t, env.exists(t, "1-Jane_Doe/CertificationImages/1_1_a_20240305140709.png"))
	var s models.Study
	require.NoError(t, env.db.First(&s, study.ID).Error)
	assert.Nil(t, s.ImgName)
}

func TestStudyService_UpdatePartial(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	person, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	study, err := env.studies.Create(ctx, person.ID, StudyInput{
		Institution: "INA", Degree: "Dev", Level: "Tech", StartDate: strPtr("2019-02-01"),
	})
	require.NoError(t, err)

	updated, err := env.studies.Update(ctx, person.ID, study.ID, StudyPatch{Degree: strPtr("Senior Dev")})
	require.NoError(t, err)
	assert.Equal(t, "INA", updated.Institution)
	assert.Equal(t, "Senior Dev", updated.Degree)
	require.NotNil(t, updated.StartDate)

	updated, err = env.studies.Update(ctx, person.ID, study.ID, StudyPatch{Nulls: validation.Nulls{"start_date": true}})
	require.NoError(t, err)
	assert.Nil(t, updated.StartDate)

	_, err = env.studies.Update(ctx, person.ID, study.ID, StudyPatch{Level: strPtr(""), EndDate: strPtr("tomorrow")})
	verr, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.Contains(t, verr.Fields, "level")
	assert.Contains(t, verr.Fields, "end_date")
}
