// Package media defines the records that flow through the discovery and
// enrichment pipeline:
//   - Rooted: a configured root plus the subdirectory currently being read
//   - FileStatus: the identity snapshot of a discovered file
//   - FileProperties: metadata returned by the enrichment service
//   - FileInfo: the merged record cached per root and returned to callers
//
// It also owns the layout of the per-root cache directory, where thumbnails
// mirror the source tree.
package media
