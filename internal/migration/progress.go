package migration

import (
	"context"
	"log/slog"

	"transplant/internal/logging"
	"transplant/internal/store"
)

// Progress carries one row's contribution to a school's cumulative state.
type Progress struct {
	Stage1Complete      bool
	Stage2Complete      bool
	Stage3Complete      bool
	CurrentStage        store.Stage
	Round               int
	LegacyEvidenceCount int
}

// Reconciler folds per-row progress signals into school records. School
// state is monotonic: completion flags never unset, the current stage never
// regresses, round and evidence counts only grow.
type Reconciler struct {
	store  Store
	logger *slog.Logger
}

// NewReconciler constructs a progress reconciler.
func NewReconciler(st Store, logger *slog.Logger) *Reconciler {
	return &Reconciler{store: st, logger: logging.NewComponentLogger(logger, "progress")}
}

// Update applies one row's signals to the school as a single conditional
// write. A missing school is a no-op; an unchanged school writes nothing.
func (r *Reconciler) Update(ctx context.Context, schoolID string, incoming Progress) error {
	logger := logging.WithContext(ctx, r.logger)

	school, err := r.store.FindSchoolByID(ctx, schoolID)
	if err != nil {
		return Wrap(ErrStorage, "progress", "load school", schoolID, err)
	}
	if school == nil {
		logger.Warn("school not found, skipping progress update", logging.String(logging.FieldSchoolID, schoolID))
		return nil
	}

	var update store.SchoolUpdate

	if incoming.Round > school.CurrentRound {
		round := incoming.Round
		update.CurrentRound = &round
	}

	// Flags only ever flip false -> true.
	newlyComplete := false
	inspire := school.InspireCompleted
	if incoming.Stage1Complete && !school.InspireCompleted {
		inspire = true
		update.InspireCompleted = &inspire
		newlyComplete = true
	}
	investigate := school.InvestigateCompleted
	if incoming.Stage2Complete && !school.InvestigateCompleted {
		investigate = true
		update.InvestigateCompleted = &investigate
		newlyComplete = true
	}
	act := school.ActCompleted
	if incoming.Stage3Complete && !school.ActCompleted {
		act = true
		update.ActCompleted = &act
		newlyComplete = true
	}

	// Max-merge guards against double-counting multiple rows per school.
	if incoming.LegacyEvidenceCount > school.LegacyEvidenceCount {
		count := incoming.LegacyEvidenceCount
		update.LegacyEvidenceCount = &count
	}

	if incoming.CurrentStage.Rank() > school.CurrentStage.Rank() {
		stage := incoming.CurrentStage
		update.CurrentStage = &stage
	}

	if school.IsMigrated && newlyComplete {
		percentage := progressPercentage(inspire, investigate, act)
		update.ProgressPercentage = &percentage
	}

	if update.IsZero() {
		return nil
	}
	if err := r.store.UpdateSchoolProgress(ctx, schoolID, update); err != nil {
		return Wrap(ErrStorage, "progress", "update school", schoolID, err)
	}

	logger.Debug(
		"reconciled school progress",
		logging.String(logging.FieldSchoolID, schoolID),
		logging.Bool("newly_complete", newlyComplete),
	)
	return nil
}

// progressPercentage weights the three stages 33/33/34.
func progressPercentage(inspire, investigate, act bool) int {
	total := 0
	if inspire {
		total += 33
	}
	if investigate {
		total += 33
	}
	if act {
		total += 34
	}
	return total
}
