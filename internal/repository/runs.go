package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/joseph-ayodele/audity/constants"
	"github.com/joseph-ayodele/audity/internal/common"
	"github.com/joseph-ayodele/audity/internal/entity"
)

type RunRepository interface {
	SaveRun(ctx context.Context, run entity.RunSummary) error
	ListRuns(ctx context.Context, limit int) ([]entity.RunSummary, error)
	GetRun(ctx context.Context, runID string) (entity.RunSummary, error)
}

type runRepo struct {
	db *DB
}

func NewRunRepository(db *DB) RunRepository {
	return &runRepo{db: db}
}

// fixed width so text ordering matches time ordering
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SaveRun stores the run and its diagnostics in one transaction.
func (r *runRepo) SaveRun(ctx context.Context, run entity.RunSummary) error {
	if run.RunID == "" {
		return common.NewAppError("DB_ERROR", "run id is required", common.ErrInvalidInput)
	}
	tx, err := r.db.sql.BeginTx(ctx, nil)
	if err != nil {
		return r.fail("begin", run.RunID, err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, r.db.rebind(`INSERT INTO audit_runs
		(run_id, started_at, finished_at, documents, accepted, records, gate_open)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		run.RunID,
		run.StartedAt.UTC().Format(timeLayout),
		run.FinishedAt.UTC().Format(timeLayout),
		run.Documents, run.Accepted, run.Records, boolInt(run.GateOpen))
	if err != nil {
		return r.fail("insert run", run.RunID, err)
	}

	stmt, err := tx.PrepareContext(ctx, r.db.rebind(`INSERT INTO audit_diagnostics
		(run_id, seq, kind, severity, document, unique_id, company_name, date, message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`))
	if err != nil {
		return r.fail("prepare diagnostics", run.RunID, err)
	}
	defer stmt.Close()
	for i, d := range run.Diagnostics {
		if _, err := stmt.ExecContext(ctx, run.RunID, i, string(d.Kind), string(d.Severity),
			d.Document, d.Identifier, d.CompanyName, d.Date, d.Message); err != nil {
			return r.fail("insert diagnostic", run.RunID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return r.fail("commit", run.RunID, err)
	}
	r.db.log.Info("audit run saved", "run_id", run.RunID, "diagnostics", len(run.Diagnostics), "gate_open", run.GateOpen)
	return nil
}

// ListRuns returns the most recent runs first, without diagnostics.
func (r *runRepo) ListRuns(ctx context.Context, limit int) ([]entity.RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(`SELECT
		run_id, started_at, finished_at, documents, accepted, records, gate_open
		FROM audit_runs ORDER BY started_at DESC, run_id LIMIT ?`), limit)
	if err != nil {
		return nil, r.fail("list runs", "", err)
	}
	defer rows.Close()

	var out []entity.RunSummary
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, r.fail("scan run", "", err)
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, r.fail("list runs", "", err)
	}
	return out, nil
}

// GetRun returns one run with its diagnostics in their original order.
func (r *runRepo) GetRun(ctx context.Context, runID string) (entity.RunSummary, error) {
	row := r.db.sql.QueryRowContext(ctx, r.db.rebind(`SELECT
		run_id, started_at, finished_at, documents, accepted, records, gate_open
		FROM audit_runs WHERE run_id = ?`), runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return entity.RunSummary{}, common.NewAppError("NOT_FOUND", "run "+runID, common.ErrNotFound)
	}
	if err != nil {
		return entity.RunSummary{}, r.fail("get run", runID, err)
	}

	rows, err := r.db.sql.QueryContext(ctx, r.db.rebind(`SELECT
		kind, severity, document, unique_id, company_name, date, message
		FROM audit_diagnostics WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return entity.RunSummary{}, r.fail("get diagnostics", runID, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			d              entity.Diagnostic
			kind, severity string
		)
		if err := rows.Scan(&kind, &severity, &d.Document, &d.Identifier, &d.CompanyName, &d.Date, &d.Message); err != nil {
			return entity.RunSummary{}, r.fail("scan diagnostic", runID, err)
		}
		d.Kind = constants.DiagnosticKind(kind)
		d.Severity = constants.Severity(severity)
		run.Diagnostics = append(run.Diagnostics, d)
	}
	if err := rows.Err(); err != nil {
		return entity.RunSummary{}, r.fail("get diagnostics", runID, err)
	}
	return run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (entity.RunSummary, error) {
	var (
		run               entity.RunSummary
		started, finished string
		gate              int
	)
	if err := s.Scan(&run.RunID, &started, &finished, &run.Documents, &run.Accepted, &run.Records, &gate); err != nil {
		return entity.RunSummary{}, err
	}
	var err error
	if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
		return entity.RunSummary{}, err
	}
	if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
		return entity.RunSummary{}, err
	}
	run.GateOpen = gate != 0
	return run, nil
}

func (r *runRepo) fail(op, runID string, err error) error {
	r.db.log.Error("audit run store failed", "op", op, "run_id", runID, "error", err)
	return common.NewAppError("DB_ERROR", op, fmt.Errorf("%w: %v", common.ErrDatabase, err))
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
