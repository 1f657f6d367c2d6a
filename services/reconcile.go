package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strconv"
	"strings"

	"github.com/camden-git/curriculumbackend/media"
	"github.com/camden-git/curriculumbackend/models"
	"github.com/camden-git/curriculumbackend/repository"
	"github.com/facette/natsort"
	"gorm.io/gorm"
)

type IssueKind string

const (
	IssueMissingFolder IssueKind = "missing_folder"
	IssueMissingSubdir IssueKind = "missing_subdir"
	IssueStaleName     IssueKind = "stale_name"
	IssueOrphanFolder  IssueKind = "orphan_folder"
)

// Issue is one disagreement between the people table and the uploads base.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	PersonID uint      `json:"person_id,omitempty"`
	Folder   string    `json:"folder"`
	Expected string    `json:"expected,omitempty"`
	Fixed    bool      `json:"fixed"`
}

func (i Issue) String() string {
	s := fmt.Sprintf("%s folder=%q", i.Kind, i.Folder)
	if i.PersonID != 0 {
		s += fmt.Sprintf(" person=%d", i.PersonID)
	}
	if i.Expected != "" && i.Expected != i.Folder {
		s += fmt.Sprintf(" expected=%q", i.Expected)
	}
	if i.Fixed {
		s += " (fixed)"
	}
	return s
}

type ReconcileOptions struct {
	// Fix creates missing trees and renames stale folders.
	Fix bool
	// PruneOrphans removes folders that belong to no person.
	PruneOrphans bool
}

type ReconcileReport struct {
	People  int     `json:"people"`
	Folders int     `json:"folders"`
	Issues  []Issue `json:"issues"`
}

// Reconciler detects and repairs drift between person rows and their folder trees,
// such as a crash between a committed row and its directory step.
type Reconciler struct {
	people repository.PersonRepository
	store  media.Store
	locks  *KeyedMutex
}

func NewReconciler(db *gorm.DB, store media.Store, locks *KeyedMutex) *Reconciler {
	return &Reconciler{
		people: repository.NewGormPersonRepository(db),
		store:  store,
		locks:  locks,
	}
}

// parseFolderID returns the id prefix of a "{id}-..." folder name.
func parseFolderID(name string) (uint, bool) {
	idPart, _, found := strings.Cut(name, "-")
	if !found {
		return 0, false
	}
	id, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// Run scans the uploads base. Repairs happen only when opts asks for them; failures
// are joined into the returned error and the report still lists every issue found.
func (r *Reconciler) Run(ctx context.Context, opts ReconcileOptions) (*ReconcileReport, error) {
	people, err := r.people.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	dirs, err := r.store.ListDirs("")
	if err != nil {
		return nil, fmt.Errorf("failed to scan uploads base: %w", err)
	}
	natsort.Sort(dirs)

	report := &ReconcileReport{People: len(people)}
	present := make(map[string]bool, len(dirs))
	byID := make(map[uint][]string)
	known := make(map[uint]bool, len(people))
	for _, p := range people {
		known[p.ID] = true
	}

	var orphans []string
	for _, dir := range dirs {
		if strings.HasPrefix(dir, ".") {
			continue
		}
		report.Folders++
		present[dir] = true
		id, ok := parseFolderID(dir)
		if !ok || !known[id] {
			orphans = append(orphans, dir)
			continue
		}
		byID[id] = append(byID[id], dir)
	}

	var errs []error
	for _, p := range people {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		issues, extraOrphans, err := r.checkPerson(p, present, byID[p.ID], opts.Fix)
		report.Issues = append(report.Issues, issues...)
		orphans = append(orphans, extraOrphans...)
		if err != nil {
			errs = append(errs, err)
		}
	}

	natsort.Sort(orphans)
	for _, dir := range orphans {
		issue := Issue{Kind: IssueOrphanFolder, Folder: dir}
		if id, ok := parseFolderID(dir); ok {
			issue.PersonID = id
		}
		if opts.PruneOrphans {
			if err := r.store.RemoveAll(dir); err != nil {
				errs = append(errs, fmt.Errorf("prune %s: %w", dir, err))
			} else {
				issue.Fixed = true
			}
		}
		report.Issues = append(report.Issues, issue)
	}

	for _, issue := range report.Issues {
		log.Printf("services.reconcile: %s", issue)
	}
	return report, errors.Join(errs...)
}

func (r *Reconciler) checkPerson(p models.Person, present map[string]bool, sameID []string, fix bool) ([]Issue, []string, error) {
	unlock := r.locks.Lock(p.ID)
	defer unlock()

	expected := p.FolderName()
	var issues []Issue
	var orphans []string

	if !present[expected] {
		if len(sameID) == 1 {
			issue := Issue{Kind: IssueStaleName, PersonID: p.ID, Folder: sameID[0], Expected: expected}
			if fix {
				if err := r.store.Move(sameID[0], expected); err != nil {
					return append(issues, issue), nil, fmt.Errorf("rename %s: %w", sameID[0], err)
				}
				issue.Fixed = true
			}
			issues = append(issues, issue)
			if !fix {
				return issues, nil, nil
			}
		} else {
			// with several candidates the right one cannot be chosen automatically
			orphans = append(orphans, sameID...)
			issue := Issue{Kind: IssueMissingFolder, PersonID: p.ID, Folder: expected, Expected: expected}
			if fix {
				if err := r.ensureTree(expected); err != nil {
					return append(issues, issue), orphans, err
				}
				issue.Fixed = true
			}
			return append(issues, issue), orphans, nil
		}
	} else {
		for _, dir := range sameID {
			if dir != expected {
				orphans = append(orphans, dir)
			}
		}
	}

	for _, sub := range media.PersonSubDirs {
		dir := path.Join(expected, sub)
		exists, err := r.store.Exists(dir)
		if err != nil {
			return issues, orphans, err
		}
		if exists {
			continue
		}
		issue := Issue{Kind: IssueMissingSubdir, PersonID: p.ID, Folder: dir, Expected: expected}
		if fix {
			if err := r.store.EnsureDir(dir); err != nil {
				return append(issues, issue), orphans, err
			}
			issue.Fixed = true
		}
		issues = append(issues, issue)
	}
	return issues, orphans, nil
}

func (r *Reconciler) ensureTree(folder string) error {
	for _, sub := range media.PersonSubDirs {
		if err := r.store.EnsureDir(path.Join(folder, sub)); err != nil {
			return fmt.Errorf("create %s: %w", folder, err)
		}
	}
	return nil
}
