// Package evidence seeds placeholder evidence records for legacy
// submissions. The original files never left the old platform, so each
// legacy item becomes a placeholder the school must resubmit against.
package evidence

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"transplant/internal/config"
	"transplant/internal/logging"
	"transplant/internal/migration"
	"transplant/internal/phpserial"
	"transplant/internal/store"
)

// StatusPending marks placeholders awaiting resubmission.
const StatusPending = "pending_resubmission"

// Store is the persistence surface the evidence migrator needs.
type Store interface {
	FindSchool(ctx context.Context, name, district, country string) (*store.School, error)
	InsertEvidence(ctx context.Context, evidence *store.Evidence) error
	CountEvidence(ctx context.Context, schoolID string, stage store.Stage) (int, error)
}

// Summary aggregates the outcome of one evidence migration pass.
type Summary struct {
	RowsExamined   int `json:"rowsExamined"`
	SchoolsMatched int `json:"schoolsMatched"`
	SchoolsMissing int `json:"schoolsMissing"`
	RecordsCreated int `json:"recordsCreated"`
	StagesSkipped  int `json:"stagesSkipped"`
}

// Migrator walks a legacy export and creates placeholder evidence records
// for every stage that carried submissions. Schools must already exist;
// the user migration creates them first.
type Migrator struct {
	store          Store
	logger         *slog.Logger
	defaultCountry string
}

// NewMigrator constructs an evidence migrator from the active configuration.
func NewMigrator(cfg *config.Config, st Store, logger *slog.Logger) *Migrator {
	return &Migrator{
		store:          st,
		logger:         logging.NewComponentLogger(logger, "evidence"),
		defaultCountry: cfg.Migration.DefaultCountry,
	}
}

// Migrate seeds evidence placeholders from the export document. Stages
// that already have evidence records are skipped, so re-running after a
// partial failure never duplicates placeholders.
func (m *Migrator) Migrate(ctx context.Context, input io.Reader) (*Summary, error) {
	logger := logging.WithContext(ctx, m.logger)

	rows, err := migration.ParseRows(input)
	if err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}

	summary := &Summary{}

	// Rows for the same school can carry different stage values, so counts
	// are max-merged per school before anything is written.
	type schoolCounts struct {
		info   *migration.SchoolInfo
		counts map[store.Stage]int
	}
	byKey := map[string]*schoolCounts{}
	var order []string

	for _, row := range rows {
		if ok, _ := migration.Validate(row); !ok {
			continue
		}
		summary.RowsExamined++

		info := migration.ExtractSchoolInfo(row, m.defaultCountry)
		if info == nil {
			continue
		}

		key := info.DedupKey()
		entry, ok := byKey[key]
		if !ok {
			entry = &schoolCounts{info: info, counts: map[store.Stage]int{}}
			byKey[key] = entry
			order = append(order, key)
		}
		mergeCount(entry.counts, store.StageInspire, row.Stage1)
		mergeCount(entry.counts, store.StageInvestigate, row.Stage2)
		mergeCount(entry.counts, store.StageAct, row.Stage3)
	}

	for _, key := range order {
		entry := byKey[key]
		info := entry.info

		school, err := m.store.FindSchool(ctx, info.Name, info.District, info.Country)
		if err != nil {
			return summary, fmt.Errorf("lookup school %q: %w", info.Name, err)
		}
		if school == nil {
			summary.SchoolsMissing++
			logger.Warn("school not migrated yet, skipping evidence", logging.String("name", info.Name))
			continue
		}
		summary.SchoolsMatched++

		for _, stage := range []store.Stage{store.StageInspire, store.StageInvestigate, store.StageAct} {
			created, skipped, err := m.seedStage(ctx, school.ID, stage, entry.counts[stage])
			if err != nil {
				return summary, err
			}
			summary.RecordsCreated += created
			if skipped {
				summary.StagesSkipped++
			}
		}
	}

	logger.Info(
		"evidence migration finished",
		logging.Int("schools_matched", summary.SchoolsMatched),
		logging.Int("records_created", summary.RecordsCreated),
		logging.Int("stages_skipped", summary.StagesSkipped),
	)
	return summary, nil
}

func mergeCount(counts map[store.Stage]int, stage store.Stage, value string) {
	if n, _ := phpserial.EvidenceCount(value); n > counts[stage] {
		counts[stage] = n
	}
}

// seedStage creates one placeholder per legacy item for a stage, unless
// the stage already has evidence records.
func (m *Migrator) seedStage(ctx context.Context, schoolID string, stage store.Stage, count int) (int, bool, error) {
	if count <= 0 {
		return 0, false, nil
	}

	existing, err := m.store.CountEvidence(ctx, schoolID, stage)
	if err != nil {
		return 0, false, fmt.Errorf("count evidence for school %s: %w", schoolID, err)
	}
	if existing > 0 {
		return 0, true, nil
	}

	for i := 1; i <= count; i++ {
		record := &store.Evidence{
			ID:                uuid.NewString(),
			SchoolID:          schoolID,
			Stage:             stage,
			Title:             fmt.Sprintf("Legacy submission %d of %d", i, count),
			Description:       "Carried over from the previous platform; the original file was not transferred.",
			Status:            StatusPending,
			NeedsResubmission: true,
			IsMigrated:        true,
		}
		if err := m.store.InsertEvidence(ctx, record); err != nil {
			return 0, false, fmt.Errorf("insert evidence for school %s: %w", schoolID, err)
		}
	}
	return count, false, nil
}
