package media

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrOutsideBase is returned for relative paths that resolve outside the storage root
// or onto the root itself.
var ErrOutsideBase = errors.New("path resolves outside the storage base")

// Store is the hierarchical blob storage used for person folder trees.
// All paths are relative to the store's base and use forward slashes.
type Store interface {
	// EnsureDir creates relDir and any missing parents
	EnsureDir(relDir string) error
	// Move renames a file or directory; the destination must not exist
	Move(oldRel, newRel string) error
	// RemoveAll recursively deletes relDir; a missing directory is not an error
	RemoveAll(relDir string) error
	// Save writes data to relDir/filename and returns the stored relative path
	Save(relDir, filename string, data io.Reader) (string, error)
	// Delete removes a single file; a missing file is not an error
	Delete(relPath string) error
	// Exists reports whether relPath exists
	Exists(relPath string) (bool, error)
	// ListDirs returns the names of the directories directly under relDir ("" for the base)
	ListDirs(relDir string) ([]string, error)
	// GetFullPath returns the absolute filesystem path for a relative path
	GetFullPath(relPath string) (string, error)
}

// LocalStorage implements the Store interface using the local filesystem
type LocalStorage struct {
	basePath string // absolute path to UPLOADS_PATH
}

// NewLocalStorage creates a new local filesystem store rooted at basePath
func NewLocalStorage(basePath string) (*LocalStorage, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}

	log.Printf("media.store: Initialized LocalStorage at %s", absBasePath)
	return &LocalStorage{basePath: absBasePath}, nil
}

// BasePath returns the absolute storage root.
func (ls *LocalStorage) BasePath() string {
	return ls.basePath
}

// GetFullPath calculates the absolute path and performs security check
func (ls *LocalStorage) GetFullPath(relativePath string) (string, error) {
	return ls.resolve(relativePath, true)
}

func (ls *LocalStorage) resolve(relativePath string, allowBase bool) (string, error) {
	cleanRelativePath := filepath.Clean(filepath.FromSlash(relativePath))
	if filepath.IsAbs(cleanRelativePath) {
		return "", fmt.Errorf("invalid path '%s': %w", relativePath, ErrOutsideBase)
	}

	fullPath := filepath.Join(ls.basePath, cleanRelativePath)
	rel, err := filepath.Rel(ls.basePath, fullPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid path '%s': %w", relativePath, ErrOutsideBase)
	}
	if rel == "." && !allowBase {
		return "", fmt.Errorf("refusing to operate on the storage base itself: %w", ErrOutsideBase)
	}
	return fullPath, nil
}

func (ls *LocalStorage) EnsureDir(relDir string) error {
	dirPath, err := ls.resolve(relDir, false)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory '%s': %w", relDir, err)
	}
	return nil
}

func (ls *LocalStorage) Move(oldRel, newRel string) error {
	oldPath, err := ls.resolve(oldRel, false)
	if err != nil {
		return err
	}
	newPath, err := ls.resolve(newRel, false)
	if err != nil {
		return err
	}

	if _, err := os.Stat(oldPath); err != nil {
		return fmt.Errorf("cannot move '%s': %w", oldRel, err)
	}
	if _, err := os.Stat(newPath); err == nil {
		return fmt.Errorf("cannot move '%s' to '%s': %w", oldRel, newRel, os.ErrExist)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat move destination '%s': %w", newRel, err)
	}

	if err := os.MkdirAll(filepath.Dir(newPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent of '%s': %w", newRel, err)
	}
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("failed to move '%s' to '%s': %w", oldRel, newRel, err)
	}
	log.Printf("media.store: Moved %s -> %s", oldPath, newPath)
	return nil
}

func (ls *LocalStorage) RemoveAll(relDir string) error {
	dirPath, err := ls.resolve(relDir, false)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dirPath); err != nil {
		return fmt.Errorf("failed to remove directory '%s': %w", relDir, err)
	}
	log.Printf("media.store: Removed directory %s", dirPath)
	return nil
}

// Save writes data under a UUID staging name first and renames it into place, so a
// failed copy never leaves a truncated file under the final name.
func (ls *LocalStorage) Save(relDir string, filename string, data io.Reader) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", fmt.Errorf("invalid filename '%s'", filename)
	}

	targetDir, err := ls.resolve(relDir, false)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create directory '%s': %w", relDir, err)
	}

	stagingPath := filepath.Join(targetDir, "."+uuid.NewString()+".part")
	outFile, err := os.Create(stagingPath)
	if err != nil {
		return "", fmt.Errorf("failed to create staging file in '%s': %w", relDir, err)
	}

	if _, err := io.Copy(outFile, data); err != nil {
		outFile.Close()
		os.Remove(stagingPath)
		return "", fmt.Errorf("failed to write data for '%s': %w", filename, err)
	}
	if err := outFile.Close(); err != nil {
		os.Remove(stagingPath)
		return "", fmt.Errorf("failed to flush data for '%s': %w", filename, err)
	}

	fullSavePath := filepath.Join(targetDir, filename)
	if err := os.Rename(stagingPath, fullSavePath); err != nil {
		os.Remove(stagingPath)
		return "", fmt.Errorf("failed to move staged file to '%s': %w", fullSavePath, err)
	}

	relativePath, err := filepath.Rel(ls.basePath, fullSavePath)
	if err != nil {
		log.Printf("media.store: Error calculating relative path for '%s' from '%s': %v", fullSavePath, ls.basePath, err)
		return "", fmt.Errorf("internal error calculating relative path: %w", err)
	}

	log.Printf("media.store: Saved file to %s", fullSavePath)
	return filepath.ToSlash(relativePath), nil
}

// Delete removes a file
func (ls *LocalStorage) Delete(relativePath string) error {
	fullPath, err := ls.resolve(relativePath, false)
	if err != nil {
		return err
	}

	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) { // Ignore "not exist" errors
		return fmt.Errorf("failed to delete file '%s': %w", relativePath, err)
	}
	if err == nil {
		log.Printf("media.store: Deleted file %s", fullPath)
	}
	return nil
}

func (ls *LocalStorage) Exists(relativePath string) (bool, error) {
	fullPath, err := ls.resolve(relativePath, true)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat '%s': %w", relativePath, err)
}

func (ls *LocalStorage) ListDirs(relDir string) ([]string, error) {
	dirPath, err := ls.resolve(relDir, true)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory '%s': %w", relDir, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
