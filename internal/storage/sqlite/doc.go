// Package sqlite persists fault analysis runs in SQLite.
//
// All database reads and writes for runs, fault records and per-fault
// failures belong here rather than in internal/fault, which keeps the
// geometry code free of SQL. The schema is managed by golang-migrate with
// migrations embedded in the binary.
package sqlite
