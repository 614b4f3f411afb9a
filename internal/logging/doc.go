// Package logging builds the slog loggers used across transplant and
// provides the standardized attribute helpers and field names shared by
// the migration components.
package logging
