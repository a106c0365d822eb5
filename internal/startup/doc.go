// Package startup loads process settings and logs the application's
// lifecycle in a consistent format.
//
// # Settings
//
// Settings come from viper: built-in defaults, an optional settings file
// named by MEDIA_BROWSER_SETTINGS, environment variables with the
// MEDIA_BROWSER_ prefix, and any command-line flags bound by the caller.
//
//   - config_file: roots config (default: <user config dir>/media-browser/config.yaml)
//   - cache_dir_name: hidden cache directory created in every root (default: .media-browser)
//   - enrich_command, enrich_args: external Enrichment Service (default: built-in)
//   - progress_interval: how often enrichment progress is reported (default: 1s)
//   - scan_workers: concurrent directory reads (default: 2 per CPU, at most 16)
//   - port: HTTP port for serve (default: 8080)
//   - metrics_enabled: expose /metrics (default: true)
//   - log_level: debug, info, warn, error (default: LOG_LEVEL or info)
//   - log_health_checks: log /health requests (default: false)
//
// # Build Information
//
// Build-time variables are injected via ldflags and exposed via [GetBuildInfo].
//
// # Lifecycle Logging
//
//   - [LoadSettings]: banner, system information and the resolved settings
//   - [LogEnrichmentInit]: which Enrichment Service is in use
//   - [LogHTTPRoutes]: registered HTTP routes (debug level)
//   - [LogServerStarted]: endpoints and startup duration
//   - [LogShutdownInitiated], [LogShutdownStepComplete], [LogShutdownComplete]
package startup
