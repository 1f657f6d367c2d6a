package services

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/camden-git/curriculumbackend/database"
	"github.com/camden-git/curriculumbackend/media"
	"github.com/camden-git/curriculumbackend/validation"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var errInjected = errors.New("injected storage failure")

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrateModels(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// recordingStore wraps a real store, records mutating calls and fails the ones asked to.
type recordingStore struct {
	media.Store

	mu       sync.Mutex
	calls    []string
	failOn   map[string]bool
	failPath string
}

func newRecordingStore(t *testing.T) (*recordingStore, *media.LocalStorage) {
	t.Helper()
	ls, err := media.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	return &recordingStore{Store: ls, failOn: map[string]bool{}}, ls
}

func (s *recordingStore) record(op, p string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, op+" "+p)
	if s.failOn[op] && (s.failPath == "" || s.failPath == p) {
		return errInjected
	}
	return nil
}

func (s *recordingStore) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *recordingStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = nil
	s.failOn = map[string]bool{}
	s.failPath = ""
}

func (s *recordingStore) Fail(op, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failOn[op] = true
	s.failPath = path
}

func (s *recordingStore) EnsureDir(rel string) error {
	if err := s.record("mkdir", rel); err != nil {
		return err
	}
	return s.Store.EnsureDir(rel)
}

func (s *recordingStore) Move(oldRel, newRel string) error {
	if err := s.record("move", oldRel); err != nil {
		return err
	}
	return s.Store.Move(oldRel, newRel)
}

func (s *recordingStore) RemoveAll(rel string) error {
	if err := s.record("rmdir", rel); err != nil {
		return err
	}
	return s.Store.RemoveAll(rel)
}

func (s *recordingStore) Delete(rel string) error {
	if err := s.record("delete", rel); err != nil {
		return err
	}
	return s.Store.Delete(rel)
}

type testEnv struct {
	db      *gorm.DB
	store   *recordingStore
	local   *media.LocalStorage
	locks   *KeyedMutex
	people  *PersonService
	studies *StudyService
	works   *WorkExperienceService
	auth    *AuthService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := openTestDB(t)
	store, local := newRecordingStore(t)
	locks := NewKeyedMutex()
	v := validation.New()
	return &testEnv{
		db:      db,
		store:   store,
		local:   local,
		locks:   locks,
		people:  NewPersonService(db, store, locks, v),
		studies: NewStudyService(db, store, locks, v, 10<<20, "/storage/uploads"),
		works:   NewWorkExperienceService(db, v),
		auth:    NewAuthService(db, v),
	}
}

func (e *testEnv) exists(t *testing.T, rel string) bool {
	t.Helper()
	ok, err := e.local.Exists(rel)
	require.NoError(t, err)
	return ok
}

func strPtr(s string) *string { return &s }
