// Package memory sets the Go memory limit from the environment and holds
// back thumbnail generation while the heap is close to that limit.
//
// [ConfigureFromEnv] honours GOMEMLIMIT, or derives it from MEMORY_LIMIT
// (container limit in bytes) and MEMORY_RATIO (default 0.85). Call it
// before any significant allocation.
//
// A [Monitor] samples heap usage. Above the critical mark it pauses and
// [Monitor.Wait] blocks until usage falls below the high mark. Decoding
// large images is the main consumer, so the enricher waits on the monitor
// before every enrichment call.
package memory
