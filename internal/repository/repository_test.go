package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/entity"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), Config{DSN: "sqlite://:memory:"}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	return db
}

func sampleRun(id string, started time.Time) entity.RunSummary {
	return entity.RunSummary{
		RunID:      id,
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Documents:  3,
		Accepted:   2,
		Records:    2,
		GateOpen:   false,
		Diagnostics: []entity.Diagnostic{
			{Kind: constants.DiagDuplicateRecord, Severity: constants.SeverityWarning, Document: "b.pdf", Identifier: "A1", Message: "duplicate"},
			{Kind: constants.DiagUnmatchedIdentifier, Severity: constants.SeverityWarning, Identifier: "Z9", Message: "not in ledger"},
		},
	}
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), Config{DSN: "mysql://x"}, nil)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestHealthCheck(t *testing.T) {
	db := openMemory(t)
	assert.Equal(t, SQLite, db.Dialect())
	assert.NoError(t, db.HealthCheck(context.Background(), time.Second))
}

func TestSaveAndGetRun(t *testing.T) {
	db := openMemory(t)
	repo := NewRunRepository(db)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 9, 0, 0, 123, time.UTC)

	require.NoError(t, repo.SaveRun(ctx, sampleRun("run-1", started)))

	got, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.True(t, got.StartedAt.Equal(started))
	assert.Equal(t, 3, got.Documents)
	assert.Equal(t, 2, got.Accepted)
	assert.False(t, got.GateOpen)
	require.Len(t, got.Diagnostics, 2)
	assert.Equal(t, constants.DiagDuplicateRecord, got.Diagnostics[0].Kind)
	assert.Equal(t, "b.pdf", got.Diagnostics[0].Document)
	assert.Equal(t, "Z9", got.Diagnostics[1].Identifier)
}

func TestSaveRunRejectsDuplicateID(t *testing.T) {
	db := openMemory(t)
	repo := NewRunRepository(db)
	ctx := context.Background()

	run := sampleRun("run-1", time.Now())
	require.NoError(t, repo.SaveRun(ctx, run))
	err := repo.SaveRun(ctx, run)
	assert.ErrorIs(t, err, common.ErrDatabase)

	got, err := repo.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got.Diagnostics, 2)
}

func TestSaveRunRequiresID(t *testing.T) {
	repo := NewRunRepository(openMemory(t))
	err := repo.SaveRun(context.Background(), entity.RunSummary{})
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestListRunsNewestFirst(t *testing.T) {
	db := openMemory(t)
	repo := NewRunRepository(db)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "new", "mid"} {
		offsets := []time.Duration{0, 2 * time.Hour, time.Hour}
		run := sampleRun(id, base.Add(offsets[i]))
		run.GateOpen = id == "new"
		require.NoError(t, repo.SaveRun(ctx, run))
	}

	runs, err := repo.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "new", runs[0].RunID)
	assert.True(t, runs[0].GateOpen)
	assert.Equal(t, "mid", runs[1].RunID)
	assert.Empty(t, runs[0].Diagnostics)
}

func TestGetRunNotFound(t *testing.T) {
	repo := NewRunRepository(openMemory(t))
	_, err := repo.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: Postgres}
	assert.Equal(t, "a = $1 AND b = $2", pg.rebind("a = ? AND b = ?"))
	lite := &DB{dialect: SQLite}
	assert.Equal(t, "a = ?", lite.rebind("a = ?"))
}
