// Command media-browser reads configured media roots, keeps a per-root
// cache of file metadata and thumbnails, and serves the result.
//
// Usage:
//
//	media-browser scan [--json]       read every root once and print the files
//	media-browser serve               serve the HTTP API until interrupted
//	media-browser config show         print the roots configuration
//	media-browser config set KEY VAL  change one roots setting
//	media-browser config path         print the roots config location
//
// Process settings come from MEDIA_BROWSER_* environment variables, an
// optional settings file (--settings) and the persistent flags. See
// package startup for the full list.
//
// Each root gets a hidden cache directory (default .media-browser) holding
// cache.db and a thumbnail tree mirroring the root. A second scan of an
// unchanged root makes no enrichment calls.
package main
