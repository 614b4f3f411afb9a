package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"transplant/internal/store"
	"transplant/internal/testsupport"
)

func TestOpenAppliesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	count, err := st.CountSchools(ctx)
	if err != nil {
		t.Fatalf("CountSchools: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected empty schools table, got %d", count)
	}
}

func TestReopenKeepsSchemaVersion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
}

func TestSchoolRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	lat := 51.5
	lon := -0.12
	school := &store.School{
		ID:             uuid.NewString(),
		Name:           "Oakwood Primary",
		Type:           "primary",
		Country:        "United Kingdom",
		LegacyDistrict: "Camden",
		Latitude:       &lat,
		Longitude:      &lon,
		ShowOnMap:      true,
		IsMigrated:     true,
		CurrentStage:   store.StageInspire,
	}
	if err := st.InsertSchool(ctx, school); err != nil {
		t.Fatalf("InsertSchool: %v", err)
	}

	found, err := st.FindSchool(ctx, "Oakwood Primary", "Camden", "United Kingdom")
	if err != nil {
		t.Fatalf("FindSchool: %v", err)
	}
	if found == nil || found.ID != school.ID {
		t.Fatalf("expected to find inserted school, got %#v", found)
	}
	if found.Latitude == nil || *found.Latitude != lat {
		t.Fatalf("latitude not persisted: %#v", found.Latitude)
	}
	if !found.ShowOnMap || !found.IsMigrated {
		t.Fatalf("boolean flags not persisted: %#v", found)
	}

	missing, err := st.FindSchool(ctx, "Oakwood Primary", "Islington", "United Kingdom")
	if err != nil {
		t.Fatalf("FindSchool: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected no match for different district, got %#v", missing)
	}
}

func TestUpdateSchoolProgressPartial(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	school := &store.School{
		ID:           uuid.NewString(),
		Name:         "Riverside Academy",
		Country:      "Ireland",
		IsMigrated:   true,
		CurrentStage: store.StageInspire,
	}
	if err := st.InsertSchool(ctx, school); err != nil {
		t.Fatalf("InsertSchool: %v", err)
	}

	round := 2
	inspire := true
	stage := store.StageInvestigate
	percentage := 33
	update := store.SchoolUpdate{
		CurrentRound:       &round,
		InspireCompleted:   &inspire,
		CurrentStage:       &stage,
		ProgressPercentage: &percentage,
	}
	if err := st.UpdateSchoolProgress(ctx, school.ID, update); err != nil {
		t.Fatalf("UpdateSchoolProgress: %v", err)
	}

	updated, err := st.FindSchoolByID(ctx, school.ID)
	if err != nil {
		t.Fatalf("FindSchoolByID: %v", err)
	}
	if updated.CurrentRound != 2 || !updated.InspireCompleted {
		t.Fatalf("update not applied: %#v", updated)
	}
	if updated.CurrentStage != store.StageInvestigate || updated.ProgressPercentage != 33 {
		t.Fatalf("update not applied: %#v", updated)
	}
	if updated.InvestigateCompleted || updated.ActCompleted {
		t.Fatalf("untouched fields changed: %#v", updated)
	}

	if err := st.UpdateSchoolProgress(ctx, school.ID, store.SchoolUpdate{}); err != nil {
		t.Fatalf("zero update should be a no-op: %v", err)
	}
}

func TestUserUniqueEmail(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	user := &store.User{
		ID:           uuid.NewString(),
		Email:        "jo.bloggs@example.org",
		Role:         store.RoleTeacher,
		PasswordHash: "hash",
	}
	if err := st.InsertUser(ctx, user); err != nil {
		t.Fatalf("InsertUser: %v", err)
	}

	duplicate := &store.User{
		ID:           uuid.NewString(),
		Email:        "jo.bloggs@example.org",
		Role:         store.RoleTeacher,
		PasswordHash: "hash2",
	}
	if err := st.InsertUser(ctx, duplicate); err == nil {
		t.Fatal("expected unique constraint violation for duplicate email")
	}

	found, err := st.FindUserByEmail(ctx, "jo.bloggs@example.org")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if found == nil || found.ID != user.ID {
		t.Fatalf("unexpected lookup result: %#v", found)
	}

	absent, err := st.FindUserByEmail(ctx, "nobody@example.org")
	if err != nil {
		t.Fatalf("FindUserByEmail: %v", err)
	}
	if absent != nil {
		t.Fatalf("expected nil for unknown email, got %#v", absent)
	}
}

func TestMembershipsForSchoolOrdering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	school := &store.School{ID: uuid.NewString(), Name: "Hillcrest", Country: "United Kingdom", CurrentStage: store.StageInspire}
	if err := st.InsertSchool(ctx, school); err != nil {
		t.Fatalf("InsertSchool: %v", err)
	}

	for i, role := range []string{store.RoleHeadTeacher, store.RoleTeacher} {
		user := &store.User{ID: uuid.NewString(), Email: uuid.NewString() + "@example.org", Role: store.RoleTeacher, PasswordHash: "h"}
		if err := st.InsertUser(ctx, user); err != nil {
			t.Fatalf("InsertUser %d: %v", i, err)
		}
		membership := &store.Membership{
			ID:                 uuid.NewString(),
			UserID:             user.ID,
			SchoolID:           school.ID,
			Role:               role,
			IsVerified:         true,
			VerificationMethod: store.VerificationMigration,
		}
		if err := st.InsertMembership(ctx, membership); err != nil {
			t.Fatalf("InsertMembership %d: %v", i, err)
		}
	}

	memberships, err := st.MembershipsForSchool(ctx, school.ID)
	if err != nil {
		t.Fatalf("MembershipsForSchool: %v", err)
	}
	if len(memberships) != 2 {
		t.Fatalf("expected 2 memberships, got %d", len(memberships))
	}
	if memberships[0].Role != store.RoleHeadTeacher {
		t.Fatalf("expected head_teacher first, got %q", memberships[0].Role)
	}
	if !memberships[0].IsVerified || memberships[0].VerificationMethod != store.VerificationMigration {
		t.Fatalf("verification fields not persisted: %#v", memberships[0])
	}
}

func TestRunLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	run := &store.Run{
		ID:     uuid.NewString(),
		Status: store.RunPending,
		DryRun: true,
		Source: "export.csv",
	}
	if err := st.InsertRun(ctx, run); err != nil {
		t.Fatalf("InsertRun: %v", err)
	}

	run.Status = store.RunCompleted
	run.TotalRows = 10
	run.ValidRows = 8
	run.SkippedRows = 2
	run.ProcessedRows = 8
	run.ErrorsJSON = `[{"row":3,"email":"","reason":"Missing email"}]`
	finished := time.Now().UTC()
	run.FinishedAt = &finished
	if err := st.UpdateRun(ctx, run); err != nil {
		t.Fatalf("UpdateRun: %v", err)
	}

	fetched, err := st.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if fetched == nil || fetched.Status != store.RunCompleted {
		t.Fatalf("unexpected run: %#v", fetched)
	}
	if fetched.TotalRows != 10 || fetched.SkippedRows != 2 || !fetched.DryRun {
		t.Fatalf("counts not persisted: %#v", fetched)
	}
	if fetched.FinishedAt == nil {
		t.Fatal("expected finished_at to be set")
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Fatalf("unexpected run list: %#v", runs)
	}
}

func TestEvidenceCount(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	school := &store.School{ID: uuid.NewString(), Name: "Gorse Hill", Country: "United Kingdom", CurrentStage: store.StageInspire}
	if err := st.InsertSchool(ctx, school); err != nil {
		t.Fatalf("InsertSchool: %v", err)
	}

	evidence := &store.Evidence{
		ID:                uuid.NewString(),
		SchoolID:          school.ID,
		Stage:             store.StageInvestigate,
		Title:             "Legacy investigate evidence",
		Status:            "migrated",
		NeedsResubmission: true,
		IsMigrated:        true,
	}
	if err := st.InsertEvidence(ctx, evidence); err != nil {
		t.Fatalf("InsertEvidence: %v", err)
	}

	count, err := st.CountEvidence(ctx, school.ID, store.StageInvestigate)
	if err != nil {
		t.Fatalf("CountEvidence: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 evidence record, got %d", count)
	}

	none, err := st.CountEvidence(ctx, school.ID, store.StageAct)
	if err != nil {
		t.Fatalf("CountEvidence: %v", err)
	}
	if none != 0 {
		t.Fatalf("expected 0 evidence records for act stage, got %d", none)
	}
}
