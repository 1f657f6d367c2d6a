package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned for a missing, malformed or revoked bearer token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrSetupDone is returned by Setup once a user exists.
	ErrSetupDone = errors.New("setup already completed")
)

// StorageConsistencyError reports that the database and the folder tree could not be
// kept in step. Op names the filesystem step, Path the relative path it touched.
type StorageConsistencyError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageConsistencyError) Error() string {
	return fmt.Sprintf("storage consistency: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *StorageConsistencyError) Unwrap() error {
	return e.Err
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error, what string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", what, id, ErrNotFound)
	}
	return err
}
