package store

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	// Replace global logger with a no-op to avoid nil pointer panics in tests.
	zap.ReplaceGlobals(zap.NewNop())
}

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgresMigrate(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS runs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCreateRun(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO runs").
		WithArgs(pgxmock.AnyArg(), "classify", "worldclim", "running", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), RunClassify, "worldclim")
	require.NoError(t, err)
	assert.Equal(t, RunClassify, run.Kind)
	assert.Equal(t, RunStatusRunning, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteRun(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE runs SET status").
		WithArgs("complete", pgxmock.AnyArg(), pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.CompleteRun(context.Background(), "run-1", &RunSummary{CellsClassified: 42})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCompleteRunNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectExec("UPDATE runs SET status").
		WithArgs("complete", pgxmock.AnyArg(), pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.CompleteRun(context.Background(), "ghost", &RunSummary{})
	assert.ErrorIs(t, err, ErrRunNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetRun(t *testing.T) {
	s, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"id", "kind", "grid_name", "status", "summary", "created_at", "updated_at"}).
		AddRow("run-1", "predict", "worldclim", "complete", []byte(`{"cells_classified": 7}`), int64(1700000000), int64(1700000100))
	mock.ExpectQuery("SELECT id, kind, grid_name, status, summary").
		WithArgs("run-1").
		WillReturnRows(rows)

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, RunPredict, run.Kind)
	assert.Equal(t, RunStatusComplete, run.Status)
	require.NotNil(t, run.Summary)
	assert.EqualValues(t, 7, run.Summary.CellsClassified)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListRuns(t *testing.T) {
	s, mock := newMockStore(t)

	rows := pgxmock.NewRows([]string{"id", "kind", "grid_name", "status", "summary", "created_at", "updated_at"}).
		AddRow("run-2", "train", "demo", "running", []byte(nil), int64(1700000200), int64(1700000200)).
		AddRow("run-1", "train", "demo", "complete", []byte(`{}`), int64(1700000000), int64(1700000100))
	mock.ExpectQuery("SELECT id, kind, grid_name, status, summary").
		WithArgs("train", 100).
		WillReturnRows(rows)

	runs, err := s.ListRuns(context.Background(), RunFilter{Kind: RunTrain})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Nil(t, runs[0].Summary)
	assert.NotNil(t, runs[1].Summary)
	assert.NoError(t, mock.ExpectationsWereMet())
}
