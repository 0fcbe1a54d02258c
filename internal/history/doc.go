// Package history keeps an append-only SQLite journal of command executions.
//
// The journal is audit-only. The daemon never reads it back to decide what
// to process, so a restarted daemon starts with empty state.
package history
