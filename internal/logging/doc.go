// Package logging provides the leveled logger used across media-browser.
//
// It supports the following log levels:
//   - DEBUG: per-file cache decisions and traversal details
//   - INFO: pipeline runs, phase transitions and cancellations
//   - WARN: recoverable failures such as a single file's enrichment
//   - ERROR: failures that end a run or a root's enrichment
//   - FATAL: startup errors that terminate the process
//
// The level is read once from DEBUG or LOG_LEVEL and can be changed at
// runtime with SetLevel (the CLI does this for --log-level).
package logging
