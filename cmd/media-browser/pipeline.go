package main

import (
	"context"
	"fmt"
	"io"

	"media-browser/internal/config"
	"media-browser/internal/enricher"
	"media-browser/internal/enrichment"
	"media-browser/internal/filesystem"
	"media-browser/internal/logging"
	"media-browser/internal/media"
	"media-browser/internal/pipeline"
	"media-browser/internal/startup"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newClient returns the Enrichment Client described by settings: a child
// process when enrich_command is set, the built-in service otherwise.
func newClient(ctx context.Context, s *startup.Settings) (enricher.Client, io.Closer, error) {
	if s.EnrichCommand == "" {
		return enrichment.NewClient(enrichment.NewLocalService()), nopCloser{}, nil
	}

	proc, err := enrichment.StartProcess(ctx, enrichment.ProcessConfig{
		Command: s.EnrichCommand,
		Args:    s.EnrichArgs,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to start enrichment service: %w", err)
	}
	return enrichment.NewClient(proc), proc, nil
}

// loadRequest reads the roots config and builds a pipeline request.
func loadRequest(s *startup.Settings) (pipeline.Request, error) {
	cfg, err := config.Load(s.ConfigFile)
	if err != nil {
		return pipeline.Request{}, err
	}
	cfg = config.Validate(cfg)
	return pipeline.Request{Roots: cfg.Roots(), Extensions: cfg.AllowList()}, nil
}

// retryConfig labels filesystem retry metrics with root names.
func retryConfig(roots []media.Rooted) filesystem.RetryConfig {
	volumes := make(map[string]string, len(roots))
	for _, r := range roots {
		volumes[r.Label()] = r.RootDir
	}
	cfg := filesystem.DefaultRetryConfig()
	cfg.VolumeResolver = filesystem.NewVolumeResolver(volumes)
	return cfg
}

func newController(s *startup.Settings, client enricher.Client, throttle enricher.Throttle, retry filesystem.RetryConfig, status func(string)) *pipeline.Controller {
	logging.Debug("Controller: cache dir %s, %d scan workers", s.CacheDirName, s.ScanWorkers)
	return pipeline.New(pipeline.Options{
		Client:           client,
		CacheDirName:     s.CacheDirName,
		ScanWorkers:      s.ScanWorkers,
		ProgressInterval: s.ProgressInterval,
		Retry:            retry,
		Throttle:         throttle,
		Status:           status,
	})
}
