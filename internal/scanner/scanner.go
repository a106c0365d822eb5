package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"media-browser/internal/filesystem"
	"media-browser/internal/logging"
	"media-browser/internal/media"
	"media-browser/internal/mediatypes"
	"media-browser/internal/metrics"
	"media-browser/internal/workers"
)

// DefaultWorkerLimit caps the default number of concurrent directory reads.
const DefaultWorkerLimit = 16

// ScanError reports a directory or file that could not be read. It is
// fatal to the run.
type ScanError struct {
	Root string
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %s: %v", e.Root, e.Path, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// Options configures a Scanner.
type Options struct {
	// CacheDirName is pruned from traversal. Defaults to media.DefaultCacheDirName.
	CacheDirName string
	// Extensions is the allow-list. Defaults to the image and video extensions.
	Extensions mediatypes.AllowList
	// Workers caps concurrent directory reads. Zero means workers.ForIO(DefaultWorkerLimit).
	Workers int
	// Retry is used for directory reads and stats.
	Retry filesystem.RetryConfig
}

// Scanner walks roots. It is safe for concurrent use; concurrent scans
// share the directory-read cap.
type Scanner struct {
	cacheDirName string
	extensions   mediatypes.AllowList
	retry        filesystem.RetryConfig
	sem          chan struct{}
}

// New returns a Scanner for opts.
func New(opts Options) *Scanner {
	if opts.CacheDirName == "" {
		opts.CacheDirName = media.DefaultCacheDirName
	}
	if opts.Extensions == nil {
		opts.Extensions = mediatypes.NewAllowList(mediatypes.DefaultExtensions())
	}
	if opts.Workers <= 0 {
		opts.Workers = workers.ForIO(DefaultWorkerLimit)
	}
	if opts.Retry == (filesystem.RetryConfig{}) {
		opts.Retry = filesystem.DefaultRetryConfig()
	}

	return &Scanner{
		cacheDirName: opts.CacheDirName,
		extensions:   opts.Extensions,
		retry:        opts.Retry,
		sem:          make(chan struct{}, opts.Workers),
	}
}

// Scan scans every root in parallel. result[i] holds the files of roots[i],
// in no particular order.
func (s *Scanner) Scan(ctx context.Context, roots []media.Rooted) ([][]media.FileStatus, error) {
	start := time.Now()
	result := make([][]media.FileStatus, len(roots))

	g, gctx := errgroup.WithContext(ctx)
	for i, root := range roots {
		i, root := i, root
		g.Go(func() error {
			files, err := s.ScanRoot(gctx, root)
			if err != nil {
				return err
			}
			result[i] = files
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, finalError(ctx, err)
	}

	total := 0
	for _, files := range result {
		total += len(files)
	}
	logging.Debug("Scanned %d roots, %d files in %v", len(roots), total, time.Since(start))
	return result, nil
}

// ScanRoot scans one root.
func (s *Scanner) ScanRoot(ctx context.Context, root media.Rooted) ([]media.FileStatus, error) {
	w := &walk{
		Scanner: s,
		root:    root.RootDir,
	}
	w.g, w.ctx = errgroup.WithContext(ctx)

	w.dir(root)
	if err := w.g.Wait(); err != nil {
		return nil, finalError(ctx, err)
	}

	metrics.ScannerFilesFound.Add(float64(len(w.files)))
	return w.files, nil
}

// finalError prefers a real failure over the cancellations it caused in
// sibling goroutines, and reports a cancelled parent context as ErrCancelled.
func finalError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return media.ErrCancelled
	}
	if errors.Is(err, context.Canceled) {
		return media.ErrCancelled
	}
	return err
}

type walk struct {
	*Scanner
	root string
	g    *errgroup.Group
	ctx  context.Context

	mu    sync.Mutex
	files []media.FileStatus
}

func (w *walk) dir(rooted media.Rooted) {
	w.g.Go(func() error {
		entries, err := w.readDir(rooted.LeafDir)
		if err != nil {
			return err
		}

		var found []media.FileStatus
		for _, entry := range entries {
			if w.ctx.Err() != nil {
				return media.ErrCancelled
			}

			path := filepath.Join(rooted.LeafDir, entry.Name())
			switch {
			case entry.IsDir():
				if entry.Name() == w.cacheDirName {
					continue
				}
				w.dir(rooted.Descend(path))

			case entry.Type().IsRegular():
				if !w.extensions.Allows(mediatypes.Extension(entry.Name())) {
					continue
				}
				info, err := filesystem.StatWithRetry(path, w.retry)
				if err != nil {
					if os.IsNotExist(err) {
						// Deleted between listing and stat.
						continue
					}
					return &ScanError{Root: w.root, Path: path, Err: err}
				}
				found = append(found, media.NewFileStatus(rooted, path, info))
			}
		}

		if len(found) > 0 {
			w.mu.Lock()
			w.files = append(w.files, found...)
			w.mu.Unlock()
		}
		return nil
	})
}

// readDir holds a worker slot only for the listing itself.
func (w *walk) readDir(dir string) ([]os.DirEntry, error) {
	select {
	case w.sem <- struct{}{}:
	case <-w.ctx.Done():
		return nil, media.ErrCancelled
	}
	entries, err := filesystem.ReadDirWithRetry(dir, w.retry)
	<-w.sem

	if err != nil {
		return nil, &ScanError{Root: w.root, Path: dir, Err: err}
	}
	metrics.ScannerDirectoriesRead.Inc()
	return entries, nil
}
