package startup

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"

	"media-browser/internal/config"
	"media-browser/internal/logging"
	"media-browser/internal/media"
	"media-browser/internal/scanner"
	"media-browser/internal/workers"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// EnvPrefix prefixes every settings environment variable.
const EnvPrefix = "MEDIA_BROWSER"

// Setting keys.
const (
	KeyConfigFile       = "config_file"
	KeyCacheDirName     = "cache_dir_name"
	KeyEnrichCommand    = "enrich_command"
	KeyEnrichArgs       = "enrich_args"
	KeyProgressInterval = "progress_interval"
	KeyScanWorkers      = "scan_workers"
	KeyPort             = "port"
	KeyMetricsEnabled   = "metrics_enabled"
	KeyLogLevel         = "log_level"
	KeyLogHealthChecks  = "log_health_checks"
	KeySettingsFile     = "settings"
)

// Settings holds the process configuration.
type Settings struct {
	ConfigFile       string
	CacheDirName     string
	EnrichCommand    string
	EnrichArgs       []string
	ProgressInterval time.Duration
	ScanWorkers      int
	Port             string
	MetricsEnabled   bool
	LogLevel         string
	LogHealthChecks  bool
}

// NewViper returns a viper instance with defaults and environment binding.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path, err := config.DefaultPath(); err == nil {
		v.SetDefault(KeyConfigFile, path)
	}
	v.SetDefault(KeyCacheDirName, media.DefaultCacheDirName)
	v.SetDefault(KeyEnrichCommand, "")
	v.SetDefault(KeyEnrichArgs, []string{})
	v.SetDefault(KeyProgressInterval, "1s")
	v.SetDefault(KeyScanWorkers, workers.ForIO(scanner.DefaultWorkerLimit))
	v.SetDefault(KeyPort, "8080")
	v.SetDefault(KeyMetricsEnabled, true)
	v.SetDefault(KeyLogLevel, logging.GetLevel().String())
	v.SetDefault(KeyLogHealthChecks, false)
	return v
}

// LoadSettings resolves settings from v, reading the optional settings file,
// and logs them in the startup banner.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	if file := v.GetString(KeySettingsFile); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", file, err)
		}
	}

	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	s := &Settings{
		ConfigFile:      v.GetString(KeyConfigFile),
		CacheDirName:    v.GetString(KeyCacheDirName),
		EnrichCommand:   v.GetString(KeyEnrichCommand),
		EnrichArgs:      v.GetStringSlice(KeyEnrichArgs),
		ScanWorkers:     v.GetInt(KeyScanWorkers),
		Port:            v.GetString(KeyPort),
		MetricsEnabled:  v.GetBool(KeyMetricsEnabled),
		LogLevel:        v.GetString(KeyLogLevel),
		LogHealthChecks: v.GetBool(KeyLogHealthChecks),
	}

	if level, ok := logging.ParseLevel(s.LogLevel); ok {
		logging.SetLevel(level)
	} else {
		logging.Warn("  Invalid log_level %q, keeping %s", s.LogLevel, logging.GetLevel())
		s.LogLevel = logging.GetLevel().String()
	}

	interval, err := time.ParseDuration(v.GetString(KeyProgressInterval))
	if err != nil || interval <= 0 {
		logging.Warn("  Invalid progress_interval, using default: 1s")
		interval = time.Second
	}
	s.ProgressInterval = interval

	if s.ScanWorkers <= 0 {
		s.ScanWorkers = workers.ForIO(scanner.DefaultWorkerLimit)
	}

	if s.CacheDirName == "" || strings.ContainsAny(s.CacheDirName, `/\`) {
		return nil, fmt.Errorf("invalid cache_dir_name %q: must be a plain directory name", s.CacheDirName)
	}

	logging.Info("  CONFIG_FILE:         %s", s.ConfigFile)
	logging.Info("  CACHE_DIR_NAME:      %s", s.CacheDirName)
	logging.Info("  ENRICH_COMMAND:      %s", enrichDescription(s))
	logging.Info("  PROGRESS_INTERVAL:   %v", s.ProgressInterval)
	logging.Info("  SCAN_WORKERS:        %d", s.ScanWorkers)
	logging.Info("  PORT:                %s", s.Port)
	logging.Info("  METRICS_ENABLED:     %v", s.MetricsEnabled)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())
	logging.Info("  LOG_HEALTH_CHECKS:   %v", s.LogHealthChecks)
	logging.Info("")

	return s, nil
}

func enrichDescription(s *Settings) string {
	if s.EnrichCommand == "" {
		return "(built-in)"
	}
	return strings.TrimSpace(s.EnrichCommand + " " + strings.Join(s.EnrichArgs, " "))
}

// LogEnrichmentInit logs which Enrichment Service is used and, for the
// built-in one, whether FFmpeg is available for video.
func LogEnrichmentInit(s *Settings) {
	logging.Info("------------------------------------------------------------")
	logging.Info("ENRICHMENT SERVICE")
	logging.Info("------------------------------------------------------------")

	if s.EnrichCommand != "" {
		logging.Info("  External service: %s", enrichDescription(s))
		return
	}

	logging.Info("  Built-in service (imaging)")
	if err := checkFFmpeg(); err != nil {
		logging.Warn("  FFmpeg check failed: %v", err)
		logging.Warn("  Video thumbnails and durations will not be available")
	} else {
		logging.Info("  [OK] FFmpeg is available")
	}
}

// LogRoots logs the roots a run will read.
func LogRoots(roots []media.Rooted) {
	if len(roots) == 0 {
		logging.Warn("  No roots enabled; enable one with `config set paths.pictures true`")
		return
	}
	for _, r := range roots {
		logging.Info("  Root %-10s %s", r.Label()+":", r.RootDir)
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified (e.g. the metrics handler)
			methods = []string{"*"}
		}

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   route.GetName(),
			})
		}
		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes at debug level.
func LogHTTPRoutes(router *mux.Router) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HTTP SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if !logging.IsDebugEnabled() {
		return
	}

	routes, err := GetRoutes(router)
	if err != nil {
		logging.Warn("error walking routes: %v", err)
	}
	logging.Debug("  Registered routes (%d total):", len(routes))

	groups := make(map[string][]RouteInfo)
	for _, route := range routes {
		prefix := getRouteGroup(route.Path)
		groups[prefix] = append(groups[prefix], route)
	}

	groupKeys := make([]string, 0, len(groups))
	for k := range groups {
		groupKeys = append(groupKeys, k)
	}
	sort.Strings(groupKeys)

	for _, group := range groupKeys {
		if group != "" {
			logging.Debug("  [%s]", group)
		} else {
			logging.Debug("  [root]")
		}
		for _, route := range groups[group] {
			logging.Debug("    %-6s %s", route.Method, route.Path)
		}
	}
}

// getRouteGroup extracts a group name from a route path
func getRouteGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}
	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful server start with all endpoint information
func LogServerStarted(cfg ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SERVER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", cfg.StartupDuration)
	logging.Info("")
	logging.Info("  Endpoints:")
	logging.Info("    Application:   http://localhost:%s", cfg.Port)
	if cfg.MetricsEnabled {
		logging.Info("    Metrics:       http://localhost:%s/metrics", cfg.Port)
	} else {
		logging.Info("    Metrics:       DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    __  ___         ___          ____
   /  |/  /__  ____/ (_)___ _   / __ )_________ _      __________  _____
  / /|_/ / _ \/ __  / / __ '/  / __  / ___/ __ \ | /| / / ___/ _ \/ ___/
 / /  / /  __/ /_/ / / /_/ /  / /_/ / /  / /_/ / |/ |/ (__  )  __/ /
/_/  /_/\___/\__,_/_/\__,_/  /_____/_/   \____/|__/|__/____/\___/_/

------------------------------------------------------------`
	fmt.Fprintln(os.Stderr, banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}
		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func checkFFmpeg() error {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return fmt.Errorf("ffmpeg not found in PATH")
	}
	logging.Debug("  FFmpeg path: %s", path)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	output, err := exec.CommandContext(ctx, path, "-version").Output()
	if err != nil {
		return fmt.Errorf("failed to get ffmpeg version: %w", err)
	}

	lines := strings.Split(string(output), "\n")
	if len(lines) > 0 {
		logging.Debug("  FFmpeg version: %s", strings.TrimSpace(lines[0]))
	}
	return nil
}
