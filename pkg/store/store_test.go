package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/islandlink/pkg/errors"
	"github.com/matzehuels/islandlink/pkg/islands"
	"github.com/matzehuels/islandlink/pkg/pipeline"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleResult() *pipeline.Result {
	return &pipeline.Result{Groups: []pipeline.GroupResult{
		{
			Index: 1, Sites: 2, Population: 10, Average: 5,
			CableBefore: 5, CableAfter: 5,
			View: islands.View{Edges: []islands.Edge{{From: 1, To: 0}}},
		},
		{
			Index: 2, Name: "west", Sites: 3, Population: 4, Average: 3.75,
			CableBefore: 6.16, CableAfter: 4, Commits: 1,
			View: islands.View{Edges: []islands.Edge{{From: 1, To: 0}, {From: 2, To: 1}}},
		},
	}}
}

func TestSaveAndGetRun(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	saved, err := db.SaveRun(ctx, "islands.txt", sampleResult())
	require.NoError(t, err)
	assert.Len(t, saved.ID, 36)
	assert.Equal(t, 2, saved.GroupCount)

	got, err := db.GetRun(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "islands.txt", got.Source)
	assert.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	require.Len(t, got.Groups, 2)

	g := got.Groups[1]
	assert.Equal(t, 2, g.Index)
	assert.Equal(t, "west", g.Name)
	assert.InDelta(t, 3.75, g.Average, 1e-9)
	assert.Equal(t, 1, g.Commits)
	assert.Equal(t, []islands.Edge{{From: 1, To: 0}, {From: 2, To: 1}}, g.Edges)
}

func TestGetRunNotFound(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	_, err := db.GetRun(ctx, "3f1f8b62-3c1c-4d8e-9a56-0a8b7a3c9c11")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)

	_, err = db.GetRun(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, errors.ErrCodeNotFound), "got %v", err)
}

func TestListRuns(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var ids []string
	for i, src := range []string{"a.txt", "b.txt", "c.txt"} {
		db.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		run, err := db.SaveRun(ctx, src, sampleResult())
		require.NoError(t, err)
		ids = append(ids, run.ID)
	}

	runs, err := db.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID, "newest first")
	assert.Equal(t, "c.txt", runs[0].Source)
	assert.Equal(t, 2, runs[0].GroupCount)
	assert.Empty(t, runs[0].Groups)

	limited, err := db.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestSaveEmptyRun(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	run, err := db.SaveRun(ctx, "empty.txt", &pipeline.Result{})
	require.NoError(t, err)

	runs, err := db.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Zero(t, runs[0].GroupCount)
}
