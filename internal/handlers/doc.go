// Package handlers implements the HTTP API of the media browser.
//
// Routes:
//
//	GET  /api/files                    run the pipeline and return every file
//	POST /api/reindex                  start a background run
//	GET  /api/status                   phase and status line of the current run
//	GET  /api/config                   roots configuration
//	PUT  /api/config                   replace the roots configuration and re-read
//	GET  /api/thumbnail/{root}/{path}  thumbnail from a root's cache directory
//	GET  /api/version                  build information
//	GET  /health                       liveness
//	GET  /metrics                      Prometheus metrics (optional)
package handlers
