// Package migration implements the batch pipeline that moves legacy
// WordPress CSV exports into the relational store: row validation, school
// identity resolution, user provisioning, and cumulative school progress
// reconciliation, orchestrated by the Runner with a persisted audit record
// per run.
package migration
