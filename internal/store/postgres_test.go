package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CHIRAYUMAHAR-07/Hospital-Readmission-Prediction-Healthcare-Analytics-Lakehouse/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return &PostgresStore{pool: mock}, mock
}

func TestPostgres_Migrate(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS runs").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, st.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_CreateRun(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO runs`)).
		WithArgs(pgxmock.AnyArg(), "in.csv", "INGESTED", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := st.CreateRun(context.Background(), "in.csv")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStateIngested, run.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateRunState(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET state`)).
		WithArgs("PROMOTED", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, st.UpdateRunState(context.Background(), "run-1", model.RunStatePromoted))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_UpdateRunState_NotFound(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE runs SET state`)).
		WithArgs("FAILED", pgxmock.AnyArg(), "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := st.UpdateRunState(context.Background(), "ghost", model.RunStateFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestPostgres_AppendStage(t *testing.T) {
	st, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(position), 0) + 1`)).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"pos"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO run_stages`)).
		WithArgs(pgxmock.AnyArg(), "run-1", 1, "2_clean", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	stage := model.StageResult{Name: "2_clean", Status: model.StageStatusComplete, RowsOut: 97}
	require.NoError(t, st.AppendStage(context.Background(), "run-1", stage))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetRun(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, input, state, created_at, updated_at FROM runs`)).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "input", "state", "created_at", "updated_at"}).
			AddRow("run-1", "in.csv", "PROMOTED", now, now))

	stageJSON, err := json.Marshal(model.StageResult{Name: "1_ingest", Status: model.StageStatusComplete})
	require.NoError(t, err)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT result FROM run_stages`)).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"result"}).AddRow(stageJSON))

	run, err := st.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatePromoted, run.State)
	require.Len(t, run.Stages, 1)
	assert.Equal(t, "1_ingest", run.Stages[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_ListRuns_FilterAndLimit(t *testing.T) {
	st, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, input, state, created_at, updated_at FROM runs WHERE 1=1 AND state = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`)).
		WithArgs("FAILED", 5, 10).
		WillReturnRows(pgxmock.NewRows([]string{"id", "input", "state", "created_at", "updated_at"}).
			AddRow("run-9", "x.csv", "FAILED", now, now))

	runs, err := st.ListRuns(context.Background(), RunFilter{
		State:  model.RunStateFailed,
		Limit:  5,
		Offset: 10,
	})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, model.RunStateFailed, runs[0].State)
	assert.NoError(t, mock.ExpectationsWereMet())
}
