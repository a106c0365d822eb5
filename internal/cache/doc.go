// Package cache implements the per-root Cache Store: a SQLite table mapping
// a file path to the FileInfo last produced for it.
//
// One Store is opened per root when that root's enrichment starts and closed
// with Done when it settles. The database lives in the root's hidden cache
// directory, runs in WAL mode with an exclusive lock so only one process can
// write it at a time, and is checkpointed (TRUNCATE) on Done.
//
// Rows are keyed by path and only ever inserted or updated; rows for files
// that have since disappeared are left in place and ignored, since Read only
// returns a row whose size and modification time match the live file.
//
// The schema is declared statically in schema.go. Columns missing from an
// existing table are added on open; a change of FormatVersion discards all
// rows, because cached properties may no longer match what the enrichment
// service produces.
package cache
