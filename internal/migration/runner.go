package migration

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"transplant/internal/config"
	"transplant/internal/logging"
	"transplant/internal/phpserial"
	"transplant/internal/store"
)

// Options control a single migration run.
type Options struct {
	// DryRun validates and counts without writing users, schools, or
	// progress. The audit record is still persisted.
	DryRun bool
	// Source labels where the export came from, usually the CSV path.
	Source string
}

// Runner drives a complete migration: parse, validate, provision, and
// reconcile, with an audit record covering the whole run.
type Runner struct {
	store          Store
	logger         *slog.Logger
	passwordLength int
	defaultCountry string
}

// NewRunner constructs a migration runner from the active configuration.
func NewRunner(cfg *config.Config, st Store, logger *slog.Logger) *Runner {
	return &Runner{
		store:          st,
		logger:         logging.NewComponentLogger(logger, "runner"),
		passwordLength: cfg.Migration.PasswordLength,
		defaultCountry: cfg.Migration.DefaultCountry,
	}
}

// Run executes one migration over the export document. Row-level failures
// are recorded and skipped; only document-level parse failures abort the
// run. The returned result mirrors the persisted audit record.
func (r *Runner) Run(ctx context.Context, input io.Reader, opts Options) (*Result, error) {
	run := &store.Run{
		ID:        uuid.NewString(),
		Status:    store.RunPending,
		DryRun:    opts.DryRun,
		Source:    opts.Source,
		StartedAt: time.Now().UTC(),
	}
	if err := r.store.InsertRun(ctx, run); err != nil {
		return nil, Wrap(ErrStorage, "runner", "create run", "", err)
	}

	ctx = logging.WithRunID(ctx, run.ID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("migration run started", logging.Bool("dry_run", opts.DryRun), logging.String("source", opts.Source))

	run.Status = store.RunProcessing
	if err := r.store.UpdateRun(ctx, run); err != nil {
		return nil, Wrap(ErrStorage, "runner", "update run", "", err)
	}

	result := &Result{RunID: run.ID, DryRun: opts.DryRun}

	rows, err := ParseRows(input)
	if err != nil {
		wrapped := Wrap(ErrCSV, "runner", "parse export", "", err)
		r.finalize(ctx, run, result, store.RunFailed)
		return result, wrapped
	}
	result.TotalRows = len(rows)

	var valid []Row
	for _, row := range rows {
		ok, reason := Validate(row)
		if !ok {
			result.SkippedRows++
			result.Errors = append(result.Errors, RowError{Row: row.Line, Email: row.Email, Reason: reason})
			continue
		}
		valid = append(valid, row)
	}
	result.ValidRows = len(valid)

	if opts.DryRun {
		result.ProcessedRows = result.ValidRows
		r.finalize(ctx, run, result, store.RunCompleted)
		logger.Info(
			"dry run completed",
			logging.Int("total_rows", result.TotalRows),
			logging.Int("valid_rows", result.ValidRows),
			logging.Int("skipped_rows", result.SkippedRows),
		)
		return result, nil
	}

	schools := NewResolver(r.store, r.defaultCountry, r.logger)
	progress := NewReconciler(r.store, r.logger)
	provisioner := NewProvisioner(r.store, schools, progress, r.logger, r.passwordLength)
	recorder := &phpserial.Recorder{}

	for _, row := range valid {
		rowCtx := logging.WithRow(ctx, row.Line)
		if err := provisioner.ProcessRow(rowCtx, row, result, recorder); err != nil {
			result.FailedRows++
			result.Errors = append(result.Errors, RowError{Row: row.Line, Email: row.Email, Reason: err.Error()})
			logging.WithContext(rowCtx, r.logger).Error("row failed", logging.Error(err))
			continue
		}
		result.ProcessedRows++
	}
	result.SchoolsCreated = schools.Created()
	result.Warnings = recorder.Warnings()

	r.finalize(ctx, run, result, store.RunCompleted)
	logger.Info(
		"migration run completed",
		logging.Int("processed_rows", result.ProcessedRows),
		logging.Int("failed_rows", result.FailedRows),
		logging.Int("users_created", result.UsersCreated),
		logging.Int("schools_created", result.SchoolsCreated),
	)
	return result, nil
}

// finalize writes the terminal audit record. Finalization failures are
// logged rather than returned so they never mask the run's own outcome.
func (r *Runner) finalize(ctx context.Context, run *store.Run, result *Result, status store.RunStatus) {
	run.Status = status
	run.TotalRows = result.TotalRows
	run.ValidRows = result.ValidRows
	run.SkippedRows = result.SkippedRows
	run.ProcessedRows = result.ProcessedRows
	run.FailedRows = result.FailedRows
	run.UsersCreated = result.UsersCreated
	run.SchoolsCreated = result.SchoolsCreated

	if len(result.Errors) > 0 {
		if encoded, err := json.Marshal(result.Errors); err == nil {
			run.ErrorsJSON = string(encoded)
		}
	}
	if !result.DryRun && status == store.RunCompleted {
		report := Report{Credentials: result.Credentials, Warnings: result.Warnings}
		if encoded, err := json.Marshal(report); err == nil {
			run.ReportJSON = string(encoded)
		}
	}

	now := time.Now().UTC()
	run.FinishedAt = &now

	if err := r.store.UpdateRun(ctx, run); err != nil {
		logging.WithContext(ctx, r.logger).Error("failed to finalize run record", logging.Error(err))
	}
}
