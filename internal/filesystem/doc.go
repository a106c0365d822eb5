/*
Package filesystem wraps the directory reads and stats performed by the
scanner and enricher with retry logic for NFS stale file handle errors.

Roots are often network shares. When a share is remounted or the server
rotates its handles, a read can fail with ESTALE even though the path is
still valid; retrying after a short backoff almost always succeeds. Any other
error is returned immediately.

	cfg := filesystem.DefaultRetryConfig()
	cfg.VolumeResolver = filesystem.NewVolumeResolver(map[string]string{
		"pictures": "/home/me/Pictures",
	})
	entries, err := filesystem.ReadDirWithRetry(dir, cfg)

Metrics are recorded through an Observer installed with SetObserver; the
metrics package provides the Prometheus implementation. Without an observer
nothing is recorded, which keeps tests free of global state.
*/
package filesystem
