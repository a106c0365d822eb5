package startup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"media-browser/internal/logging"
	"media-browser/internal/media"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.OS == "" || info.Arch == "" {
		t.Error("Expected OS and Arch to be set")
	}
	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	defer logging.SetLevel(logging.GetLevel())

	s, err := LoadSettings(NewViper())
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	if s.CacheDirName != media.DefaultCacheDirName {
		t.Errorf("CacheDirName = %q", s.CacheDirName)
	}
	if s.ProgressInterval != time.Second {
		t.Errorf("ProgressInterval = %v", s.ProgressInterval)
	}
	if s.ScanWorkers <= 0 {
		t.Errorf("ScanWorkers = %d", s.ScanWorkers)
	}
	if s.Port != "8080" || !s.MetricsEnabled {
		t.Errorf("Port = %q, MetricsEnabled = %v", s.Port, s.MetricsEnabled)
	}
	if s.EnrichCommand != "" {
		t.Errorf("EnrichCommand = %q, want built-in", s.EnrichCommand)
	}
}

func TestLoadSettings_Environment(t *testing.T) {
	defer logging.SetLevel(logging.GetLevel())

	t.Setenv("MEDIA_BROWSER_CACHE_DIR_NAME", ".thumbs")
	t.Setenv("MEDIA_BROWSER_PROGRESS_INTERVAL", "250ms")
	t.Setenv("MEDIA_BROWSER_SCAN_WORKERS", "3")
	t.Setenv("MEDIA_BROWSER_ENRICH_COMMAND", "enrichd")
	t.Setenv("MEDIA_BROWSER_METRICS_ENABLED", "false")
	t.Setenv("MEDIA_BROWSER_LOG_LEVEL", "warn")

	s, err := LoadSettings(NewViper())
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}

	if s.CacheDirName != ".thumbs" || s.ProgressInterval != 250*time.Millisecond || s.ScanWorkers != 3 {
		t.Errorf("settings = %+v", s)
	}
	if s.EnrichCommand != "enrichd" || s.MetricsEnabled {
		t.Errorf("settings = %+v", s)
	}
	if logging.GetLevel() != logging.LevelWarn {
		t.Errorf("log level = %v, want warn", logging.GetLevel())
	}
}

func TestLoadSettings_File(t *testing.T) {
	defer logging.SetLevel(logging.GetLevel())

	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := "port: \"9999\"\nprogress_interval: nonsense\nenrich_args: [--quiet, --size=128]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MEDIA_BROWSER_SETTINGS", path)

	s, err := LoadSettings(NewViper())
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Port != "9999" {
		t.Errorf("Port = %q", s.Port)
	}
	if s.ProgressInterval != time.Second {
		t.Errorf("invalid interval not defaulted: %v", s.ProgressInterval)
	}
	if len(s.EnrichArgs) != 2 || s.EnrichArgs[1] != "--size=128" {
		t.Errorf("EnrichArgs = %v", s.EnrichArgs)
	}
}

func TestLoadSettings_RejectsCacheDirPath(t *testing.T) {
	t.Setenv("MEDIA_BROWSER_CACHE_DIR_NAME", "a/b")
	if _, err := LoadSettings(NewViper()); err == nil {
		t.Error("LoadSettings() accepted a cache_dir_name containing a separator")
	}
}

func TestGetRoutes(t *testing.T) {
	r := mux.NewRouter()
	r.HandleFunc("/api/files", nil).Methods("GET").Name("files")
	r.HandleFunc("/api/config", nil).Methods("GET", "PUT")
	r.Handle("/metrics", nil)

	routes, err := GetRoutes(r)
	if err != nil {
		t.Fatalf("GetRoutes() error = %v", err)
	}
	if len(routes) != 4 {
		t.Fatalf("GetRoutes() returned %d routes, want 4: %+v", len(routes), routes)
	}
	if routes[0] != (RouteInfo{Method: "GET", Path: "/api/files", Name: "files"}) {
		t.Errorf("routes[0] = %+v", routes[0])
	}
	if routes[3].Method != "*" {
		t.Errorf("route without methods = %+v", routes[3])
	}
}

func TestGetRouteGroup(t *testing.T) {
	tests := map[string]string{
		"/api/files":           "api/files",
		"/api/thumbnail/{id}":  "api/thumbnail",
		"/health":              "health",
		"/":                    "",
		"/metrics":             "metrics",
	}
	for path, want := range tests {
		if got := getRouteGroup(path); got != want {
			t.Errorf("getRouteGroup(%q) = %q, want %q", path, got, want)
		}
	}
}
