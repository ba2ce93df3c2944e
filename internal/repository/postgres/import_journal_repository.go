package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/b2b-portal/internal/domain"
	"github.com/andresuchdata/b2b-portal/internal/repository"
	"github.com/jmoiron/sqlx"
)

type importJournalRepository struct {
	db *DB
}

func NewImportJournalRepository(db *DB) repository.ImportJournal {
	return &importJournalRepository{db: db}
}

type importRunRow struct {
	ID            string       `db:"id"`
	Source        string       `db:"source"`
	State         string       `db:"state"`
	TotalRows     int          `db:"total_rows"`
	CompletedRows int          `db:"completed_rows"`
	FailedRows    int          `db:"failed_rows"`
	Progress      int          `db:"progress"`
	StartedAt     sql.NullTime `db:"started_at"`
	CompletedAt   sql.NullTime `db:"completed_at"`
}

type importLogRow struct {
	RowNumber int       `db:"row_number"`
	Success   bool      `db:"success"`
	Message   string    `db:"message"`
	ProductID string    `db:"product_id"`
	LoggedAt  time.Time `db:"logged_at"`
}

// SaveRun upserts the run and replaces its log entries.
func (r *importJournalRepository) SaveRun(ctx context.Context, status domain.ImportJobStatus) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		run := toRunRow(status)
		query := `
			INSERT INTO import_runs (
				id, source, state, total_rows, completed_rows, failed_rows,
				progress, started_at, completed_at
			) VALUES (
				:id, :source, :state, :total_rows, :completed_rows, :failed_rows,
				:progress, :started_at, :completed_at
			)
			ON CONFLICT (id)
			DO UPDATE SET
				state = EXCLUDED.state,
				total_rows = EXCLUDED.total_rows,
				completed_rows = EXCLUDED.completed_rows,
				failed_rows = EXCLUDED.failed_rows,
				progress = EXCLUDED.progress,
				started_at = EXCLUDED.started_at,
				completed_at = EXCLUDED.completed_at,
				updated_at = NOW()
		`
		if _, err := tx.NamedExecContext(ctx, query, run); err != nil {
			return fmt.Errorf("failed to upsert import run: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM import_log_entries WHERE run_id = $1`, status.ID); err != nil {
			return fmt.Errorf("failed to clear import log: %w", err)
		}

		stmt, err := tx.PreparexContext(ctx, `
			INSERT INTO import_log_entries (run_id, row_number, success, message, product_id, logged_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, e := range status.Log {
			if _, err := stmt.ExecContext(ctx, status.ID, e.Row, e.Success, e.Message, e.ProductID, e.At); err != nil {
				return fmt.Errorf("failed to insert import log entry: %w", err)
			}
		}
		return nil
	})
}

func (r *importJournalRepository) GetRun(ctx context.Context, id string) (*domain.ImportJobStatus, error) {
	var run importRunRow
	err := r.db.GetContext(ctx, &run, `
		SELECT id, source, state, total_rows, completed_rows, failed_rows, progress, started_at, completed_at
		FROM import_runs
		WHERE id = $1
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load import run: %w", err)
	}

	var entries []importLogRow
	if err := r.db.SelectContext(ctx, &entries, `
		SELECT row_number, success, message, product_id, logged_at
		FROM import_log_entries
		WHERE run_id = $1
		ORDER BY row_number
	`, id); err != nil {
		return nil, fmt.Errorf("failed to load import log: %w", err)
	}

	status := fromRunRow(run, entries)
	return &status, nil
}

// ListRuns returns the most recent runs without their log entries.
func (r *importJournalRepository) ListRuns(ctx context.Context, limit int) ([]domain.ImportJobStatus, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []importRunRow
	if err := r.db.SelectContext(ctx, &runs, `
		SELECT id, source, state, total_rows, completed_rows, failed_rows, progress, started_at, completed_at
		FROM import_runs
		ORDER BY created_at DESC
		LIMIT $1
	`, limit); err != nil {
		return nil, fmt.Errorf("failed to list import runs: %w", err)
	}

	out := make([]domain.ImportJobStatus, 0, len(runs))
	for _, run := range runs {
		out = append(out, fromRunRow(run, nil))
	}
	return out, nil
}

func toRunRow(s domain.ImportJobStatus) importRunRow {
	return importRunRow{
		ID:            s.ID,
		Source:        s.Source,
		State:         string(s.State),
		TotalRows:     s.TotalRows,
		CompletedRows: s.Completed,
		FailedRows:    s.Failed,
		Progress:      s.Progress,
		StartedAt:     nullTime(s.StartedAt),
		CompletedAt:   nullTime(s.CompletedAt),
	}
}

func fromRunRow(run importRunRow, entries []importLogRow) domain.ImportJobStatus {
	s := domain.ImportJobStatus{
		ID:        run.ID,
		Source:    run.Source,
		State:     domain.ImportState(run.State),
		TotalRows: run.TotalRows,
		Completed: run.CompletedRows,
		Failed:    run.FailedRows,
		Progress:  run.Progress,
		Log:       make([]domain.LogEntry, 0, len(entries)),
	}
	if run.StartedAt.Valid {
		t := run.StartedAt.Time
		s.StartedAt = &t
	}
	if run.CompletedAt.Valid {
		t := run.CompletedAt.Time
		s.CompletedAt = &t
	}
	for _, e := range entries {
		s.Log = append(s.Log, domain.LogEntry{
			Row:       e.RowNumber,
			Success:   e.Success,
			Message:   e.Message,
			ProductID: e.ProductID,
			At:        e.LoggedAt,
		})
	}
	return s
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
