package workers

import (
	"runtime"
)

// Count returns a worker count of multiplier per available CPU, at least 1
// and at most limit (0 means no limit). A positive override replaces the
// calculation but is still capped by limit.
//
// Multipliers by workload:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
func Count(multiplier float64, limit, override int) int {
	if override > 0 {
		if limit > 0 && override > limit {
			return limit
		}
		return override
	}

	// GOMAXPROCS is automatically set to container CPU limit in Go 1.19+
	available := runtime.GOMAXPROCS(0)

	workers := int(float64(available) * multiplier)

	if workers < 1 {
		workers = 1
	}
	if limit > 0 && workers > limit {
		workers = limit
	}

	return workers
}

// ForIO returns worker count for I/O-bound tasks (2 per CPU).
// The limit parameter caps the maximum number of workers.
func ForIO(limit int) int {
	return Count(2.0, limit, 0)
}
