// Package scanner enumerates the media files under a set of roots.
//
// Roots are scanned in parallel, and so are sibling directories within a
// root. The number of directory listings in flight at once is capped by
// Options.Workers; walking and filtering are not.
//
// Only regular files whose extension is in the allow-list are returned.
// Symlinks, devices and other entry types are ignored, and any directory
// named like the per-root cache directory is never entered, at any depth.
//
// The first error aborts the whole scan and no partial results are
// returned. A cancelled context aborts with media.ErrCancelled.
package scanner
