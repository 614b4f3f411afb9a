// Package recovery re-seeds a database from a legacy export: the full
// user and school migration followed by the evidence placeholder pass.
// It is a human-triggered disaster recovery tool and fails fast.
package recovery

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"transplant/internal/config"
	"transplant/internal/evidence"
	"transplant/internal/logging"
	"transplant/internal/migration"
	"transplant/internal/store"
)

// Outcome bundles the results of both recovery phases.
type Outcome struct {
	Migration *migration.Result
	Evidence  *evidence.Summary
}

// Orchestrator runs the two recovery phases in order against one store.
type Orchestrator struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
}

// New constructs a recovery orchestrator.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		store:  st,
		logger: logging.NewComponentLogger(logger, "recovery"),
	}
}

// Run executes a live migration over the export at csvPath, then seeds
// evidence placeholders from the same document. The first failure aborts
// the whole recovery; there is no partial rollback.
func (o *Orchestrator) Run(ctx context.Context, csvPath string) (*Outcome, error) {
	o.logger.Info("recovery started", logging.String("csv_path", csvPath))

	input, err := os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	runner := migration.NewRunner(o.cfg, o.store, o.logger)
	result, err := runner.Run(ctx, input, migration.Options{Source: csvPath})
	input.Close()
	if err != nil {
		return nil, fmt.Errorf("user migration: %w", err)
	}

	input, err = os.Open(csvPath)
	if err != nil {
		return nil, fmt.Errorf("reopen export: %w", err)
	}
	defer input.Close()

	migrator := evidence.NewMigrator(o.cfg, o.store, o.logger)
	summary, err := migrator.Migrate(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("evidence migration: %w", err)
	}

	o.logger.Info(
		"recovery completed",
		logging.Int("users_created", result.UsersCreated),
		logging.Int("schools_created", result.SchoolsCreated),
		logging.Int("evidence_created", summary.RecordsCreated),
	)
	return &Outcome{Migration: result, Evidence: summary}, nil
}
