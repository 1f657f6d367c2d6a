package services

import (
	"context"
	"testing"

	"github.com/camden-git/curriculumbackend/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueKinds(r *ReconcileReport) map[IssueKind][]string {
	out := map[IssueKind][]string{}
	for _, i := range r.Issues {
		out[i.Kind] = append(out[i.Kind], i.Folder)
	}
	return out
}

func TestReconciler_DetectsAndRepairs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	rec := NewReconciler(env.db, env.local, env.locks)

	// healthy person
	_, err := env.people.Create(ctx, PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	// row committed without any folder
	ghost := models.Person{FirstName: "No", LastName: "Folder"}
	require.NoError(t, env.db.Create(&ghost).Error)
	// folder left under an old name, one subdir missing
	stale := models.Person{FirstName: "New", LastName: "Name"}
	require.NoError(t, env.db.Create(&stale).Error)
	require.NoError(t, env.local.EnsureDir(models.FolderName(stale.ID, "Old", "Name")+"/Docs"))
	// debris
	require.NoError(t, env.local.EnsureDir("99-Gone_Person/Docs"))
	require.NoError(t, env.local.EnsureDir("scratch"))

	report, err := rec.Run(ctx, ReconcileOptions{})
	require.NoError(t, err)
	kinds := issueKinds(report)
	assert.Equal(t, []string{ghost.FolderName()}, kinds[IssueMissingFolder])
	assert.Equal(t, []string{"3-Old_Name"}, kinds[IssueStaleName])
	assert.Equal(t, []string{"99-Gone_Person", "scratch"}, kinds[IssueOrphanFolder])
	assert.Equal(t, 3, report.People)
	assert.Equal(t, 4, report.Folders)

	report, err = rec.Run(ctx, ReconcileOptions{Fix: true, PruneOrphans: true})
	require.NoError(t, err)
	for _, issue := range report.Issues {
		assert.True(t, issue.Fixed, "issue %s", issue)
	}

	report, err = rec.Run(ctx, ReconcileOptions{})
	require.NoError(t, err)
	assert.Empty(t, report.Issues)
	assert.True(t, env.exists(t, "3-New_Name/ProfilePhotos"))
	assert.True(t, env.exists(t, "2-No_Folder/CertificationImages"))
	assert.False(t, env.exists(t, "99-Gone_Person"))
}

func TestParseFolderID(t *testing.T) {
	id, ok := parseFolderID("12-Jane_Doe")
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)

	for _, bad := range []string{"Jane_Doe", "x-Jane", "0-Zero", "-1-Neg"} {
		_, ok := parseFolderID(bad)
		assert.False(t, ok, bad)
	}
}
