package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DylanKirbs/BiomeClassification/internal/koppen"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, RunClassify, "worldclim")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, RunStatusRunning, run.Status)

	summary := &RunSummary{
		CellsVisited:    100,
		CellsClassified: 90,
		ClassCounts:     map[koppen.Label]int64{koppen.Af: 60, koppen.BWh: 30},
	}
	require.NoError(t, s.CompleteRun(ctx, run.ID, summary))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunClassify, got.Kind)
	assert.Equal(t, "worldclim", got.GridName)
	assert.Equal(t, RunStatusComplete, got.Status)
	require.NotNil(t, got.Summary)
	assert.EqualValues(t, 90, got.Summary.CellsClassified)
	assert.EqualValues(t, 60, got.Summary.ClassCounts[koppen.Af])
}

func TestSQLiteFailRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, RunTrain, "demo")
	require.NoError(t, err)
	require.NoError(t, s.FailRun(ctx, run.ID, "layer tavg_07 missing"))

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, RunStatusFailed, got.Status)
	require.NotNil(t, got.Summary)
	assert.Equal(t, "layer tavg_07 missing", got.Summary.Error)
}

func TestSQLiteRunNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetRun(ctx, "no-such-run")
	assert.ErrorIs(t, err, ErrRunNotFound)

	assert.ErrorIs(t, s.CompleteRun(ctx, "no-such-run", &RunSummary{}), ErrRunNotFound)
	assert.ErrorIs(t, s.FailRun(ctx, "no-such-run", "boom"), ErrRunNotFound)
}

func TestSQLiteListRuns(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	classify, err := s.CreateRun(ctx, RunClassify, "worldclim")
	require.NoError(t, err)
	train, err := s.CreateRun(ctx, RunTrain, "worldclim")
	require.NoError(t, err)
	_, err = s.CreateRun(ctx, RunPredict, "demo")
	require.NoError(t, err)

	require.NoError(t, s.CompleteRun(ctx, train.ID, &RunSummary{}))

	all, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byKind, err := s.ListRuns(ctx, RunFilter{Kind: RunClassify})
	require.NoError(t, err)
	require.Len(t, byKind, 1)
	assert.Equal(t, classify.ID, byKind[0].ID)

	byStatus, err := s.ListRuns(ctx, RunFilter{Status: RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, train.ID, byStatus[0].ID)

	byGrid, err := s.ListRuns(ctx, RunFilter{GridName: "demo"})
	require.NoError(t, err)
	assert.Len(t, byGrid, 1)

	limited, err := s.ListRuns(ctx, RunFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
