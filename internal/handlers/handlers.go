package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"media-browser/internal/config"
	"media-browser/internal/filesystem"
	"media-browser/internal/media"
	"media-browser/internal/middleware"
	"media-browser/internal/pipeline"
)

// Options configures Handlers.
type Options struct {
	Controller   *pipeline.Controller
	ConfigPath   string
	CacheDirName string
	Retry        filesystem.RetryConfig
	// MetricsEnabled registers /metrics and the metrics middleware.
	MetricsEnabled  bool
	LogHealthChecks bool
}

// Handlers serves the HTTP API on top of a pipeline.Controller.
type Handlers struct {
	controller   *pipeline.Controller
	configPath   string
	cacheDirName string
	retry        filesystem.RetryConfig
	startTime    time.Time

	// configMu serializes config writes.
	configMu sync.Mutex

	mu        sync.RWMutex
	lastFiles int
}

// New returns Handlers.
func New(opts Options) *Handlers {
	if opts.CacheDirName == "" {
		opts.CacheDirName = media.DefaultCacheDirName
	}
	return &Handlers{
		controller:   opts.Controller,
		configPath:   opts.ConfigPath,
		cacheDirName: opts.CacheDirName,
		retry:        opts.Retry,
		startTime:    time.Now(),
	}
}

// Router registers every route and returns the router.
func (h *Handlers) Router(opts Options) *mux.Router {
	r := mux.NewRouter()
	if opts.MetricsEnabled {
		r.Use(middleware.Metrics(middleware.DefaultMetricsConfig()))
		r.Handle("/metrics", h.MetricsHandler()).Methods("GET")
	}

	r.HandleFunc("/health", h.HealthCheck).Methods("GET", "HEAD")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/files", h.ListFiles).Methods("GET")
	api.HandleFunc("/reindex", h.TriggerReindex).Methods("POST")
	api.HandleFunc("/status", h.GetStatus).Methods("GET")
	api.HandleFunc("/config", h.GetConfig).Methods("GET")
	api.HandleFunc("/config", h.PutConfig).Methods("PUT")
	api.HandleFunc("/thumbnail/{root:[0-9]+}/{path:.*}", h.GetThumbnail).Methods("GET")
	api.HandleFunc("/version", h.GetVersion).Methods("GET")

	return r
}

// Handler wraps router with logging and compression.
func Handler(router http.Handler, opts Options) http.Handler {
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = opts.LogHealthChecks
	logged := middleware.Logger(loggingConfig)(router)
	return middleware.Compression(middleware.DefaultCompressionConfig())(logged)
}

// request builds a pipeline request from the roots config on disk.
func (h *Handlers) request() (pipeline.Request, []media.Rooted, error) {
	cfg, err := config.Load(h.configPath)
	if err != nil {
		return pipeline.Request{}, nil, err
	}
	cfg = config.Validate(cfg)
	roots := cfg.Roots()
	return pipeline.Request{Roots: roots, Extensions: cfg.AllowList()}, roots, nil
}

// startBackground starts a run that outlives the HTTP request.
func (h *Handlers) startBackground(req pipeline.Request) {
	h.controller.Show(context.Background(), req, func(files []media.FileInfo) {
		h.mu.Lock()
		h.lastFiles = len(files)
		h.mu.Unlock()
	})
}
