// Package store manages the relational database behind the migration
// pipeline: schools, users, school memberships, legacy evidence records,
// and the migration run audit log, all backed by SQLite.
package store
