package memory

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"media-browser/internal/logging"
	"media-browser/internal/metrics"
)

// Config holds memory management configuration
type Config struct {
	// LimitBytes is the limit usage is measured against; 0 uses GOMEMLIMIT.
	LimitBytes int64
	// HighWaterMark is the usage ratio below which a pause ends.
	HighWaterMark float64
	// CriticalWaterMark is the usage ratio at which enrichment pauses.
	CriticalWaterMark float64
	CheckInterval     time.Duration
}

// DefaultConfig returns sensible defaults for memory management
func DefaultConfig() Config {
	return Config{
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     2 * time.Second,
	}
}

// Monitor tracks heap usage against a limit. Without a limit it never pauses.
type Monitor struct {
	config Config
	limit  int64
	// readAlloc is replaced in tests.
	readAlloc func() uint64

	mu      sync.Mutex
	paused  bool
	resumed chan struct{}
	usage   float64
}

// NewMonitor returns a Monitor. Call Run to start sampling.
func NewMonitor(config Config) *Monitor {
	limit := config.LimitBytes
	if limit == 0 {
		if goLimit := debug.SetMemoryLimit(-1); goLimit > 0 && goLimit < 1<<62 {
			limit = goLimit
		}
	}
	if limit == 0 {
		logging.Debug("Memory monitor: no memory limit configured, backpressure disabled")
	}

	return &Monitor{
		config:    config,
		limit:     limit,
		readAlloc: heapAlloc,
		resumed:   make(chan struct{}),
	}
}

func heapAlloc() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc
}

// Run samples memory until ctx ends.
func (m *Monitor) Run(ctx context.Context) {
	if m.limit == 0 {
		return
	}
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-ctx.Done():
			m.resume()
			return
		}
	}
}

func (m *Monitor) check() {
	alloc := m.readAlloc()
	usage := float64(alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	m.mu.Lock()
	m.usage = usage
	paused := m.paused
	m.mu.Unlock()

	switch {
	case !paused && usage >= m.config.CriticalWaterMark:
		logging.Warn("Memory critical (%.1f%% of limit), pausing enrichment", usage*100)
		m.mu.Lock()
		m.paused = true
		m.mu.Unlock()
		metrics.MemoryPaused.Set(1)
		go runtime.GC()
	case paused && usage < m.config.HighWaterMark:
		logging.Info("Memory recovered (%.1f%% of limit), resuming enrichment", usage*100)
		m.resume()
	}
}

func (m *Monitor) resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.paused {
		return
	}
	m.paused = false
	close(m.resumed)
	m.resumed = make(chan struct{})
	metrics.MemoryPaused.Set(0)
}

// Wait returns immediately unless the monitor is paused, in which case it
// blocks until usage recovers or ctx ends.
func (m *Monitor) Wait(ctx context.Context) error {
	m.mu.Lock()
	if !m.paused {
		m.mu.Unlock()
		return nil
	}
	resumed := m.resumed
	m.mu.Unlock()

	select {
	case <-resumed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Usage returns the last sampled usage ratio, 0 without a limit.
func (m *Monitor) Usage() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.usage
}
