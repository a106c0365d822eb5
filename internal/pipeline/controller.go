package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"media-browser/internal/cache"
	"media-browser/internal/enricher"
	"media-browser/internal/filesystem"
	"media-browser/internal/logging"
	"media-browser/internal/media"
	"media-browser/internal/mediatypes"
	"media-browser/internal/metrics"
	"media-browser/internal/scanner"
)

// ErrCancelled is returned to a caller whose run was superseded or whose
// context ended.
var ErrCancelled = media.ErrCancelled

// Phase is the state of the current run.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseScanning
	PhaseEnriching
)

func (p Phase) String() string {
	switch p {
	case PhaseScanning:
		return "scanning"
	case PhaseEnriching:
		return "enriching"
	default:
		return "idle"
	}
}

// Request is what a run reads.
type Request struct {
	Roots []media.Rooted
	// Extensions is the allow-list; nil means the default image and video extensions.
	Extensions mediatypes.AllowList
}

// Options configures a Controller.
type Options struct {
	Client           enricher.Client
	CacheDirName     string
	ScanWorkers      int
	ProgressInterval time.Duration
	Retry            filesystem.RetryConfig
	// Throttle, if set, paces enrichment calls.
	Throttle enricher.Throttle
	// Status receives human-readable progress. May be nil.
	Status func(status string)
}

// Controller runs the pipeline. Create one per application session.
type Controller struct {
	opts Options

	mu         sync.Mutex
	current    *run
	statusText string
}

type run struct {
	cancel     context.CancelFunc
	done       chan struct{}
	phase      Phase
	superseded bool

	files []media.FileInfo
	err   error
}

// New returns a Controller.
func New(opts Options) *Controller {
	if opts.CacheDirName == "" {
		opts.CacheDirName = media.DefaultCacheDirName
	}
	return &Controller{opts: opts}
}

// ReadFiles runs the pipeline for req and returns every enriched file,
// ordered by root and then by scan order within the root.
func (c *Controller) ReadFiles(ctx context.Context, req Request) ([]media.FileInfo, error) {
	r := c.start(ctx, req)
	<-r.done
	return r.files, r.err
}

// Show starts a run and returns immediately. It publishes "Reading files",
// per-root progress, and finally the file count or the failure, and hands
// the files to onFiles. A run superseded before it settles publishes
// nothing further.
func (c *Controller) Show(ctx context.Context, req Request, onFiles func([]media.FileInfo)) {
	c.publish("Reading files")
	r := c.start(ctx, req)

	go func() {
		<-r.done
		if errors.Is(r.err, ErrCancelled) {
			return
		}
		if r.err != nil {
			c.publishFor(r, "readFiles failed: "+r.err.Error())
			return
		}
		c.publishFor(r, FilesText(len(r.files)))
		if onFiles != nil {
			onFiles(r.files)
		}
	}()
}

// Phase reports the phase of the current run.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return PhaseIdle
	}
	return c.current.phase
}

// StatusText returns the last published status.
func (c *Controller) StatusText() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statusText
}

// Stop cancels the current run, if any, and waits until it has released
// its Cache Stores or ctx ends.
func (c *Controller) Stop(ctx context.Context) error {
	c.mu.Lock()
	r := c.current
	if r != nil {
		r.superseded = true
		r.cancel()
	}
	c.mu.Unlock()

	if r == nil {
		return nil
	}
	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// FilesText formats the final status, e.g. "1,234 files".
func FilesText(n int) string {
	return message.NewPrinter(language.English).Sprintf("%d files", n)
}

// start registers a new run as current, superseding any previous one, and
// executes it in the background. Registration is synchronous so that the
// most recent call always wins.
func (c *Controller) start(ctx context.Context, req Request) *run {
	runCtx, cancel := context.WithCancel(ctx)
	r := &run{cancel: cancel, done: make(chan struct{})}

	c.mu.Lock()
	prev := c.current
	if prev != nil {
		logging.Info("Cancelling previous run")
		prev.superseded = true
		prev.cancel()
	}
	c.current = r
	c.mu.Unlock()

	metrics.PipelineRunning.Set(1)

	go func() {
		files, err := c.execute(runCtx, r, prev, req)
		c.finish(r, files, err)
	}()
	return r
}

func (c *Controller) finish(r *run, files []media.FileInfo, err error) {
	c.mu.Lock()
	if r.superseded {
		err = ErrCancelled
	}
	if c.current == r {
		c.current = nil
		metrics.PipelineRunning.Set(0)
	}
	c.mu.Unlock()
	r.cancel()

	switch {
	case errors.Is(err, ErrCancelled):
		logging.Info("Run cancelled")
		metrics.PipelineRunsTotal.WithLabelValues("cancelled").Inc()
		r.err = ErrCancelled
	case err != nil:
		logging.Error("Run failed: %v", err)
		metrics.PipelineRunsTotal.WithLabelValues("rejected").Inc()
		r.err = err
	default:
		logging.Info("Run finished: %d files", len(files))
		metrics.PipelineRunsTotal.WithLabelValues("resolved").Inc()
		metrics.PipelineFilesReturned.Set(float64(len(files)))
		r.files = files
	}
	close(r.done)
}

func (c *Controller) setPhase(r *run, p Phase) {
	c.mu.Lock()
	r.phase = p
	c.mu.Unlock()
}

func (c *Controller) publish(text string) {
	c.mu.Lock()
	c.statusText = text
	c.mu.Unlock()
	if c.opts.Status != nil {
		c.opts.Status(text)
	}
}

// publishFor publishes only while r has not been superseded.
func (c *Controller) publishFor(r *run, text string) {
	c.mu.Lock()
	if r.superseded {
		c.mu.Unlock()
		return
	}
	c.statusText = text
	c.mu.Unlock()
	if c.opts.Status != nil {
		c.opts.Status(text)
	}
}

func (c *Controller) execute(ctx context.Context, r *run, prev *run, req Request) ([]media.FileInfo, error) {
	c.setPhase(r, PhaseScanning)
	start := time.Now()
	sc := scanner.New(scanner.Options{
		CacheDirName: c.opts.CacheDirName,
		Extensions:   req.Extensions,
		Workers:      c.opts.ScanWorkers,
		Retry:        c.opts.Retry,
	})
	lists, err := sc.Scan(ctx, req.Roots)
	metrics.PipelinePhaseDuration.WithLabelValues("scan").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	// The previous run must release its Cache Stores first.
	if prev != nil {
		select {
		case <-prev.done:
		case <-ctx.Done():
			return nil, ErrCancelled
		}
	}

	c.setPhase(r, PhaseEnriching)
	start = time.Now()
	defer func() {
		metrics.PipelinePhaseDuration.WithLabelValues("enrich").Observe(time.Since(start).Seconds())
	}()

	results := make([][]media.FileInfo, len(req.Roots))
	errs := make([]error, len(req.Roots))
	var wg sync.WaitGroup
	for i, root := range req.Roots {
		i, root := i, root
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = c.enrichRoot(ctx, r, root, lists[i])
		}()
	}
	wg.Wait()

	if ctx.Err() != nil {
		return nil, ErrCancelled
	}

	var failed []error
	total := 0
	for i, err := range errs {
		if errors.Is(err, ErrCancelled) {
			return nil, ErrCancelled
		}
		if err != nil {
			logging.Error("Enrichment of %s failed: %v", req.Roots[i].Label(), err)
			failed = append(failed, err)
			continue
		}
		total += len(results[i])
	}
	if len(failed) > 0 && len(failed) == len(req.Roots) {
		return nil, errors.Join(failed...)
	}

	files := make([]media.FileInfo, 0, total)
	for _, list := range results {
		files = append(files, list...)
	}
	return files, nil
}

func (c *Controller) enrichRoot(ctx context.Context, r *run, root media.Rooted, files []media.FileStatus) ([]media.FileInfo, error) {
	if len(files) == 0 {
		return nil, nil
	}

	store, err := cache.Open(ctx, media.CacheDir(root.RootDir, c.opts.CacheDirName))
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := store.Done(); err != nil {
			logging.Warn("Failed to close cache for %s: %v", root.Label(), err)
		}
	}()

	infos, stats, err := enricher.EnrichRoot(ctx, root, files, c.opts.Client, store, enricher.Options{
		CacheDirName:     c.opts.CacheDirName,
		ProgressInterval: c.opts.ProgressInterval,
		Progress:         func(text string) { c.publishFor(r, text) },
		Retry:            c.opts.Retry,
		Throttle:         c.opts.Throttle,
	})
	if err != nil {
		return nil, err
	}
	if stats.Failed > 0 {
		logging.Warn("%s: %d of %d files could not be enriched", root.Label(), stats.Failed, len(files))
	}
	return infos, nil
}
