// Package config reads and writes the roots configuration: which
// well-known folders are scanned, which extra folders are added, and
// optionally which file extensions are accepted.
//
// The file is YAML:
//
//	paths:
//	  documents: false
//	  downloads: false
//	  music: false
//	  pictures: true
//	  videos: true
//	more:
//	  - /mnt/photos
//	extensions: [jpg, png, mp4]
//
// A missing file means the defaults (nothing enabled). Save replaces the
// file atomically.
package config
