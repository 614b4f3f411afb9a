package migration

import (
	"strconv"
	"strings"
)

// Row is one parsed record of a legacy export. All fields are raw strings;
// new-format rows carry explicit school columns, legacy-format rows fall
// back to display_name and user_login for identity signals.
type Row struct {
	Line int

	Email     string
	FirstName string
	LastName  string

	SchoolName string
	District   string
	Country    string
	SchoolType string
	Website    string

	Phone string
	Role  string
	Round string

	Stage0 string
	Stage1 string
	Stage2 string
	Stage3 string

	Stage1Date string
	Stage2Date string
	Stage3Date string

	DisplayName  string
	UserLogin    string
	LegacyUserID string
	LAName       string
	Latitude     string
	Longitude    string
}

// HasConfirmedSchool reports whether the row carries an explicit school
// name, which makes it a confirmed new-format row.
func (r Row) HasConfirmedSchool() bool {
	return strings.TrimSpace(r.SchoolName) != ""
}

// RoundNumber parses the row's round column. Non-numeric or negative
// values carry no signal and parse to zero.
func (r Row) RoundNumber() int {
	trimmed := strings.TrimSpace(r.Round)
	if trimmed == "" {
		return 0
	}
	n, err := strconv.Atoi(trimmed)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
