package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const runColumns = "id, status, dry_run, source, total_rows, valid_rows, skipped_rows, processed_rows, failed_rows, users_created, schools_created, errors_json, report_json, started_at, finished_at"

// InsertRun persists a new migration run record.
func (s *Store) InsertRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO migration_runs (
            id, status, dry_run, source, total_rows, valid_rows, skipped_rows,
            processed_rows, failed_rows, users_created, schools_created,
            errors_json, report_json, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		string(run.Status),
		boolToInt(run.DryRun),
		nullableString(run.Source),
		run.TotalRows,
		run.ValidRows,
		run.SkippedRows,
		run.ProcessedRows,
		run.FailedRows,
		run.UsersCreated,
		run.SchoolsCreated,
		nullableString(run.ErrorsJSON),
		nullableString(run.ReportJSON),
		formatTime(run.StartedAt),
		nullableFinished(run.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// UpdateRun persists changes to an existing run record.
func (s *Store) UpdateRun(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}

	_, err := s.db.ExecContext(
		ctx,
		`UPDATE migration_runs
         SET status = ?, dry_run = ?, source = ?, total_rows = ?, valid_rows = ?,
             skipped_rows = ?, processed_rows = ?, failed_rows = ?, users_created = ?,
             schools_created = ?, errors_json = ?, report_json = ?, finished_at = ?
         WHERE id = ?`,
		string(run.Status),
		boolToInt(run.DryRun),
		nullableString(run.Source),
		run.TotalRows,
		run.ValidRows,
		run.SkippedRows,
		run.ProcessedRows,
		run.FailedRows,
		run.UsersCreated,
		run.SchoolsCreated,
		nullableString(run.ErrorsJSON),
		nullableString(run.ReportJSON),
		nullableFinished(run.FinishedAt),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// GetRun fetches a run record by identifier, or nil when absent.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM migration_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns all migration runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM migration_runs ORDER BY started_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func nullableFinished(value *time.Time) any {
	if value == nil {
		return nil
	}
	return formatTime(*value)
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id          string
		status      string
		dryRun      int
		source      sql.NullString
		totalRows   int
		validRows   int
		skippedRows int
		processed   int
		failedRows  int
		users       int
		schools     int
		errorsJSON  sql.NullString
		reportJSON  sql.NullString
		startedRaw  string
		finishedRaw sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&status,
		&dryRun,
		&source,
		&totalRows,
		&validRows,
		&skippedRows,
		&processed,
		&failedRows,
		&users,
		&schools,
		&errorsJSON,
		&reportJSON,
		&startedRaw,
		&finishedRaw,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:             id,
		Status:         RunStatus(status),
		DryRun:         dryRun != 0,
		Source:         source.String,
		TotalRows:      totalRows,
		ValidRows:      validRows,
		SkippedRows:    skippedRows,
		ProcessedRows:  processed,
		FailedRows:     failedRows,
		UsersCreated:   users,
		SchoolsCreated: schools,
		ErrorsJSON:     errorsJSON.String,
		ReportJSON:     reportJSON.String,
	}
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return run, nil
}
