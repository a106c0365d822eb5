package enricher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"media-browser/internal/enrichment"
	"media-browser/internal/filesystem"
	"media-browser/internal/logging"
	"media-browser/internal/media"
)

// DefaultProgressInterval is how often progress is reported.
const DefaultProgressInterval = time.Second

// Client is the Enrichment Client.
type Client interface {
	Enrich(ctx context.Context, req enrichment.Request) (media.FileProperties, error)
}

// Store is a root's Cache Store.
type Store interface {
	Read(status media.FileStatus) (media.FileInfo, bool)
	Save(ctx context.Context, info media.FileInfo) error
}

// Throttle holds back enrichment calls, e.g. while memory is short.
type Throttle interface {
	Wait(ctx context.Context) error
}

// Options configures EnrichRoot.
type Options struct {
	// CacheDirName names the root's cache directory. Defaults to media.DefaultCacheDirName.
	CacheDirName string
	// ProgressInterval defaults to DefaultProgressInterval.
	ProgressInterval time.Duration
	// Progress receives status text on every tick. May be nil.
	Progress func(status string)
	Retry    filesystem.RetryConfig
	// Throttle, if set, is waited on before every enrichment call.
	Throttle Throttle
}

// Stats counts what happened to a root's files.
type Stats struct {
	Reused   int
	Enriched int
	Failed   int
}

// ProgressText formats a progress line.
func ProgressText(label string, done, total int) string {
	percent := 100
	if total > 0 {
		percent = done * 100 / total
	}
	return fmt.Sprintf("Reading %s — %d%% (%d of %d)", label, percent, done, total)
}

// EnrichRoot enriches files, all of which belong to root, and returns one
// FileInfo per file that was reused or enriched, in file order.
func EnrichRoot(ctx context.Context, root media.Rooted, files []media.FileStatus, client Client, store Store, opts Options) ([]media.FileInfo, Stats, error) {
	if opts.CacheDirName == "" {
		opts.CacheDirName = media.DefaultCacheDirName
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = DefaultProgressInterval
	}
	if opts.Retry == (filesystem.RetryConfig{}) {
		opts.Retry = filesystem.DefaultRetryConfig()
	}

	var done atomic.Int64
	stop := startProgress(opts, root.Label(), &done, len(files))
	defer stop()

	e := &rootEnricher{
		opts:    opts,
		client:  client,
		store:   store,
		created: make(map[string]bool),
	}

	result := make([]media.FileInfo, 0, len(files))
	for _, status := range files {
		if ctx.Err() != nil {
			return nil, e.stats, media.ErrCancelled
		}

		info, ok, err := e.file(ctx, status)
		if err != nil {
			return nil, e.stats, err
		}
		if ok {
			result = append(result, info)
		}
		done.Add(1)
	}

	logging.Debug("Enriched %s: %d reused, %d enriched, %d failed", root.Label(), e.stats.Reused, e.stats.Enriched, e.stats.Failed)
	return result, e.stats, nil
}

// startProgress reports on a ticker until the returned func is called.
func startProgress(opts Options, label string, done *atomic.Int64, total int) func() {
	if opts.Progress == nil {
		return func() {}
	}

	ticker := time.NewTicker(opts.ProgressInterval)
	quit := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		for {
			select {
			case <-ticker.C:
				opts.Progress(ProgressText(label, int(done.Load()), total))
			case <-quit:
				return
			}
		}
	}()

	return func() {
		ticker.Stop()
		close(quit)
		<-finished
	}
}

type rootEnricher struct {
	opts    Options
	client  Client
	store   Store
	created map[string]bool
	stats   Stats
}

// file returns ok=false for a file skipped after an enrichment failure.
func (e *rootEnricher) file(ctx context.Context, status media.FileStatus) (media.FileInfo, bool, error) {
	thumbDir := media.ThumbnailDir(e.opts.CacheDirName, status.Rooted)
	if err := e.ensureDir(thumbDir); err != nil {
		return media.FileInfo{}, false, err
	}
	thumbPath := media.ThumbnailPath(e.opts.CacheDirName, status)
	thumbFresh := e.thumbnailFresh(thumbPath, status)

	cached, rowFresh := e.store.Read(status)
	if rowFresh && thumbFresh {
		logging.Debug("Cache hit: %s", status.Path)
		e.stats.Reused++
		cached.ThumbnailURL = media.FileURL(thumbPath)
		return cached, true, nil
	}

	if e.opts.Throttle != nil {
		if err := e.opts.Throttle.Wait(ctx); err != nil {
			return media.FileInfo{}, false, media.ErrCancelled
		}
	}

	props, err := e.client.Enrich(ctx, enrichment.Request{
		Path:           status.Path,
		ThumbnailPath:  thumbPath,
		WantThumbnail:  !thumbFresh,
		WantProperties: !rowFresh,
	})
	if err != nil {
		if errors.Is(err, media.ErrCancelled) {
			return media.FileInfo{}, false, err
		}
		logging.Warn("Skipping %s: %v", status.Path, err)
		e.stats.Failed++
		return media.FileInfo{}, false, nil
	}
	e.stats.Enriched++

	info := media.FileInfo{FileStatus: status, FileProperties: props}
	if rowFresh {
		// Only the thumbnail was regenerated; the row is unchanged.
		info.FileProperties = cached.FileProperties
	} else if err := e.store.Save(ctx, info); err != nil {
		return media.FileInfo{}, false, err
	}

	info.ThumbnailURL = media.FileURL(thumbPath)
	return info, true, nil
}

// ensureDir creates dir once per run.
func (e *rootEnricher) ensureDir(dir string) error {
	if e.created[dir] {
		return nil
	}
	if err := filesystem.MkdirAllWithRetry(dir, e.opts.Retry); err != nil {
		return fmt.Errorf("failed to create thumbnail directory %s: %w", dir, err)
	}
	e.created[dir] = true
	return nil
}

// thumbnailFresh reports whether thumbPath exists and was written after the
// source was last modified.
func (e *rootEnricher) thumbnailFresh(thumbPath string, status media.FileStatus) bool {
	info, err := filesystem.StatWithRetry(thumbPath, e.opts.Retry)
	if err != nil {
		return false
	}
	return media.Millis(info.ModTime()) > status.MtimeMs
}
