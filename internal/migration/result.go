package migration

import (
	"transplant/internal/phpserial"
)

// RowError describes one rejected or failed row.
type RowError struct {
	Row    int    `json:"row"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// Credential is one generated login for one-time distribution to a
// migrated user. Never persisted on dry runs.
type Credential struct {
	Email             string `json:"email"`
	TemporaryPassword string `json:"temporaryPassword"`
	SchoolName        string `json:"schoolName"`
}

// Report is the payload persisted with a completed live run.
type Report struct {
	Credentials []Credential        `json:"credentials"`
	Warnings    []phpserial.Warning `json:"warnings,omitempty"`
}

// Result aggregates the outcome of one migration run.
type Result struct {
	RunID  string
	DryRun bool

	TotalRows     int
	ValidRows     int
	SkippedRows   int
	ProcessedRows int
	FailedRows    int

	UsersCreated   int
	SchoolsCreated int

	Errors      []RowError
	Credentials []Credential
	Warnings    []phpserial.Warning
}
