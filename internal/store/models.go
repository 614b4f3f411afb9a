package store

import (
	"strings"
	"time"
)

// Stage is one of the three programme phases, traversed in fixed order.
type Stage string

const (
	StageInspire     Stage = "inspire"
	StageInvestigate Stage = "investigate"
	StageAct         Stage = "act"
)

var stageRanks = map[Stage]int{
	StageInspire:     1,
	StageInvestigate: 2,
	StageAct:         3,
}

// Rank returns the position of the stage in the fixed programme order,
// or 0 for an unknown stage.
func (s Stage) Rank() int {
	return stageRanks[s]
}

// ParseStage converts a string into a known Stage.
func ParseStage(value string) (Stage, bool) {
	normalized := Stage(strings.ToLower(strings.TrimSpace(value)))
	_, ok := stageRanks[normalized]
	return normalized, ok
}

// Membership roles assigned during migration.
const (
	RoleHeadTeacher = "head_teacher"
	RoleTeacher     = "teacher"
)

// VerificationMigration marks memberships created by the migration pipeline.
const VerificationMigration = "migration"

// RunStatus represents the lifecycle of a migration run.
type RunStatus string

const (
	RunPending    RunStatus = "pending"
	RunProcessing RunStatus = "processing"
	RunCompleted  RunStatus = "completed"
	RunFailed     RunStatus = "failed"
)

// School is a persisted school record with its cumulative programme progress.
type School struct {
	ID                   string
	Name                 string
	Type                 string
	Country              string
	LegacyDistrict       string
	Website              string
	PhoneNumber          string
	Latitude             *float64
	Longitude            *float64
	ShowOnMap            bool
	IsMigrated           bool
	CurrentRound         int
	InspireCompleted     bool
	InvestigateCompleted bool
	ActCompleted         bool
	CurrentStage         Stage
	LegacyEvidenceCount  int
	ProgressPercentage   int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// SchoolUpdate is a partial update applied to a school's progress state.
// Nil fields are left untouched.
type SchoolUpdate struct {
	CurrentRound         *int
	InspireCompleted     *bool
	InvestigateCompleted *bool
	ActCompleted         *bool
	CurrentStage         *Stage
	LegacyEvidenceCount  *int
	ProgressPercentage   *int
}

// IsZero reports whether the update would change nothing.
func (u SchoolUpdate) IsZero() bool {
	return u.CurrentRound == nil &&
		u.InspireCompleted == nil &&
		u.InvestigateCompleted == nil &&
		u.ActCompleted == nil &&
		u.CurrentStage == nil &&
		u.LegacyEvidenceCount == nil &&
		u.ProgressPercentage == nil
}

// User is a persisted platform account created by the migration pipeline.
type User struct {
	ID                        string
	Email                     string
	FirstName                 string
	LastName                  string
	PhoneNumber               string
	Role                      string
	IsMigrated                bool
	LegacyUserID              string
	NeedsEvidenceResubmission bool
	NeedsPasswordReset        bool
	PasswordHash              string
	CreatedAt                 time.Time
}

// Membership links a user to a school with a role.
type Membership struct {
	ID                 string
	UserID             string
	SchoolID           string
	Role               string
	IsVerified         bool
	VerificationMethod string
	CreatedAt          time.Time
}

// Evidence is a placeholder record for legacy submissions carried over
// from the old platform.
type Evidence struct {
	ID                string
	SchoolID          string
	Stage             Stage
	Title             string
	Description       string
	Status            string
	NeedsResubmission bool
	IsMigrated        bool
	CreatedAt         time.Time
}

// Run is the audit record for one migration invocation.
type Run struct {
	ID             string
	Status         RunStatus
	DryRun         bool
	Source         string
	TotalRows      int
	ValidRows      int
	SkippedRows    int
	ProcessedRows  int
	FailedRows     int
	UsersCreated   int
	SchoolsCreated int
	ErrorsJSON     string
	ReportJSON     string
	StartedAt      time.Time
	FinishedAt     *time.Time
}
