/*
Package workers sizes the concurrency limits used by the pipeline.

The scanner fans out one goroutine per subdirectory, but the number of
directory reads in flight at once is capped so that very wide trees do not
open thousands of file descriptors. The cap is derived from GOMAXPROCS, which
Go sets from the container CPU limit, rather than runtime.NumCPU, which
reports the host:

	limit := workers.ForIO(16) // 2 per CPU, at most 16

Operators can pin the value with the scan_workers setting (environment
variable MEDIA_BROWSER_SCAN_WORKERS); the startup package passes it in as
the override argument of Count.
*/
package workers
