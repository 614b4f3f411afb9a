package migration

import (
	"strings"
)

// invalidEmailSuffix marks placeholder addresses the legacy platform
// generated for deleted accounts. Rows carrying one are never migrated.
const invalidEmailSuffix = ".invalid"

// Rejection reasons surfaced in the run's error list.
const (
	reasonMissingEmail = "Missing email"
	reasonInvalidEmail = "Placeholder email address"
	reasonNoEngagement = "No engagement markers"
)

// Validate decides whether a row represents a real, engaged user worth
// migrating. An explicit school name confirms the row outright; otherwise
// at least one engagement signal is required. The returned reason is empty
// for valid rows.
func Validate(row Row) (bool, string) {
	email := strings.TrimSpace(row.Email)
	if email == "" {
		return false, reasonMissingEmail
	}
	if strings.HasSuffix(strings.ToLower(email), invalidEmailSuffix) {
		return false, reasonInvalidEmail
	}

	// Confirmed new-format rows bypass the engagement heuristics.
	if row.HasConfirmedSchool() {
		return true, ""
	}

	if hasStageData(row.Stage1) || hasStageData(row.Stage2) || hasStageData(row.Stage3) {
		return true, ""
	}
	if hasStageData(row.Stage0) {
		return true, ""
	}
	if strings.TrimSpace(row.Stage1Date) != "" ||
		strings.TrimSpace(row.Stage2Date) != "" ||
		strings.TrimSpace(row.Stage3Date) != "" {
		return true, ""
	}
	if row.RoundNumber() > 0 {
		return true, ""
	}
	if strings.TrimSpace(row.Phone) != "" {
		return true, ""
	}

	return false, reasonNoEngagement
}

// hasStageData reports whether a legacy stage value carries any signal
// beyond the empty sentinels.
func hasStageData(value string) bool {
	trimmed := strings.TrimSpace(value)
	return trimmed != "" && trimmed != "0" && trimmed != "a:0:{}"
}
