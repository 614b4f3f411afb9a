package migration

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"transplant/internal/logging"
	"transplant/internal/store"
	"transplant/internal/testsupport"
)

func seedSchool(t *testing.T, st *store.Store, migrated bool) string {
	t.Helper()

	school := &store.School{
		ID:           uuid.NewString(),
		Name:         "Hill Top Primary",
		Country:      "United Kingdom",
		IsMigrated:   migrated,
		CurrentStage: store.StageInspire,
	}
	if err := st.InsertSchool(context.Background(), school); err != nil {
		t.Fatalf("InsertSchool: %v", err)
	}
	return school.ID
}

func TestReconcilerAccumulatesProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	rec := NewReconciler(st, logging.NewNop())
	ctx := context.Background()
	id := seedSchool(t, st, true)

	err := rec.Update(ctx, id, Progress{
		Stage1Complete:      true,
		CurrentStage:        store.StageInvestigate,
		Round:               2,
		LegacyEvidenceCount: 3,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	school, err := st.FindSchoolByID(ctx, id)
	if err != nil {
		t.Fatalf("FindSchoolByID: %v", err)
	}
	if !school.InspireCompleted {
		t.Error("inspire flag not set")
	}
	if school.CurrentStage != store.StageInvestigate {
		t.Errorf("stage = %s, want investigate", school.CurrentStage)
	}
	if school.CurrentRound != 2 {
		t.Errorf("round = %d, want 2", school.CurrentRound)
	}
	if school.LegacyEvidenceCount != 3 {
		t.Errorf("evidence = %d, want 3", school.LegacyEvidenceCount)
	}
	if school.ProgressPercentage != 33 {
		t.Errorf("percentage = %d, want 33", school.ProgressPercentage)
	}
}

func TestReconcilerNeverRegresses(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	rec := NewReconciler(st, logging.NewNop())
	ctx := context.Background()
	id := seedSchool(t, st, true)

	full := Progress{
		Stage1Complete:      true,
		Stage2Complete:      true,
		Stage3Complete:      true,
		CurrentStage:        store.StageAct,
		Round:               3,
		LegacyEvidenceCount: 7,
	}
	if err := rec.Update(ctx, id, full); err != nil {
		t.Fatalf("Update: %v", err)
	}

	// A later row with weaker signals must change nothing.
	weaker := Progress{
		Stage1Complete:      true,
		CurrentStage:        store.StageInspire,
		Round:               1,
		LegacyEvidenceCount: 2,
	}
	if err := rec.Update(ctx, id, weaker); err != nil {
		t.Fatalf("Update weaker: %v", err)
	}

	school, err := st.FindSchoolByID(ctx, id)
	if err != nil {
		t.Fatalf("FindSchoolByID: %v", err)
	}
	if !school.InspireCompleted || !school.InvestigateCompleted || !school.ActCompleted {
		t.Error("completion flags regressed")
	}
	if school.CurrentStage != store.StageAct {
		t.Errorf("stage regressed to %s", school.CurrentStage)
	}
	if school.CurrentRound != 3 {
		t.Errorf("round regressed to %d", school.CurrentRound)
	}
	if school.LegacyEvidenceCount != 7 {
		t.Errorf("evidence regressed to %d", school.LegacyEvidenceCount)
	}
	if school.ProgressPercentage != 100 {
		t.Errorf("percentage = %d, want 100", school.ProgressPercentage)
	}
}

func TestReconcilerSkipsPercentageForUnmigratedSchools(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	rec := NewReconciler(st, logging.NewNop())
	ctx := context.Background()
	id := seedSchool(t, st, false)

	if err := rec.Update(ctx, id, Progress{Stage1Complete: true, CurrentStage: store.StageInspire}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	school, err := st.FindSchoolByID(ctx, id)
	if err != nil {
		t.Fatalf("FindSchoolByID: %v", err)
	}
	if !school.InspireCompleted {
		t.Error("inspire flag not set")
	}
	if school.ProgressPercentage != 0 {
		t.Errorf("percentage = %d, want 0 for unmigrated school", school.ProgressPercentage)
	}
}

func TestReconcilerIgnoresMissingSchool(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	rec := NewReconciler(st, logging.NewNop())

	if err := rec.Update(context.Background(), uuid.NewString(), Progress{Stage1Complete: true}); err != nil {
		t.Fatalf("Update for missing school should be a no-op, got %v", err)
	}
}
