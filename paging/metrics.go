package paging

import (
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Histogram keeps a bounded window of run durations for percentile queries
type Histogram struct {
	samples []float64 // µs
	mu      sync.RWMutex
	maxSize int // window length
}

// NewHistogram returns a histogram holding at most maxSize samples
func NewHistogram(maxSize int) *Histogram {
	if maxSize <= 0 {
		maxSize = 10000
	}
	return &Histogram{
		samples: make([]float64, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record appends one duration in microseconds
func (h *Histogram) Record(latencyUs float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// At capacity the oldest sample goes first
	if len(h.samples) >= h.maxSize {
		copy(h.samples, h.samples[1:])
		h.samples = h.samples[:len(h.samples)-1]
	}

	h.samples = append(h.samples, latencyUs)
}

// Percentile returns the p-th percentile, p in [0, 100]
func (h *Histogram) Percentile(p float64) float64 {
	h.mu.RLock()
	sorted := slices.Clone(h.samples)
	h.mu.RUnlock()

	if len(sorted) == 0 {
		return 0
	}
	slices.Sort(sorted)

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower == upper {
		return sorted[lower]
	}

	// interpolate between neighbouring ranks
	weight := rank - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// Mean is the arithmetic mean of the window
func (h *Histogram) Mean() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}

	sum := 0.0
	for _, v := range h.samples {
		sum += v
	}
	return sum / float64(len(h.samples))
}

// Min is the shortest duration in the window
func (h *Histogram) Min() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	return slices.Min(h.samples)
}

// Max is the longest duration in the window
func (h *Histogram) Max() float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.samples) == 0 {
		return 0
	}
	return slices.Max(h.samples)
}

// Count is the window's current length
func (h *Histogram) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.samples)
}

// Reset empties the window
func (h *Histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.samples = h.samples[:0]
}

// HistogramSnapshot is a point-in-time summary of a Histogram
type HistogramSnapshot struct {
	Count int
	Min   float64
	Max   float64
	Mean  float64
	P50   float64 // Median
	P95   float64
	P99   float64
}

// Snapshot summarises the window
func (h *Histogram) Snapshot() HistogramSnapshot {
	return HistogramSnapshot{
		Count: h.Count(),
		Min:   h.Min(),
		Max:   h.Max(),
		Mean:  h.Mean(),
		P50:   h.Percentile(50),
		P95:   h.Percentile(95),
		P99:   h.Percentile(99),
	}
}

// Metrics tracks simulator activity across runs
type Metrics struct {
	// runs
	runs            atomic.Uint64
	rejectedConfigs atomic.Uint64

	// references
	references atomic.Uint64
	faults     atomic.Uint64
	hits       atomic.Uint64
	evictions  atomic.Uint64

	// engine run durations, µs
	runLatency *Histogram

	runsByAlgorithm map[Algorithm]uint64
	startTime       time.Time
	mu              sync.RWMutex
}

// NewMetrics returns zeroed counters with a default-sized histogram
func NewMetrics() *Metrics {
	return &Metrics{
		startTime:       time.Now(),
		runLatency:      NewHistogram(10000),
		runsByAlgorithm: make(map[Algorithm]uint64),
	}
}

// RecordRun accounts for one completed engine run
func (m *Metrics) RecordRun(trace *Trace, duration time.Duration) {
	m.runs.Add(1)
	m.references.Add(uint64(len(trace.Snapshots)))
	m.faults.Add(uint64(trace.Faults()))
	m.hits.Add(uint64(trace.Hits()))

	evictions := 0
	for _, s := range trace.Snapshots {
		if s.Evicted() {
			evictions++
		}
	}
	m.evictions.Add(uint64(evictions))

	m.runLatency.Record(float64(duration.Microseconds()))

	m.mu.Lock()
	m.runsByAlgorithm[trace.Algorithm]++
	m.mu.Unlock()
}

// RecordRejectedConfig counts a configuration that failed validation
func (m *Metrics) RecordRejectedConfig() {
	m.rejectedConfigs.Add(1)
}

func (m *Metrics) GetRuns() uint64 {
	return m.runs.Load()
}

func (m *Metrics) GetRejectedConfigs() uint64 {
	return m.rejectedConfigs.Load()
}

func (m *Metrics) GetReferences() uint64 {
	return m.references.Load()
}

func (m *Metrics) GetFaults() uint64 {
	return m.faults.Load()
}

func (m *Metrics) GetHits() uint64 {
	return m.hits.Load()
}

func (m *Metrics) GetEvictions() uint64 {
	return m.evictions.Load()
}

func (m *Metrics) GetHitRate() float64 {
	hits := m.hits.Load()
	total := m.references.Load()
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total)
}

func (m *Metrics) GetRunsByAlgorithm(algorithm Algorithm) uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.runsByAlgorithm[algorithm]
}

func (m *Metrics) GetUptime() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return time.Since(m.startTime)
}

// GetRunLatency summarises engine run durations
func (m *Metrics) GetRunLatency() HistogramSnapshot {
	return m.runLatency.Snapshot()
}

// LogMetrics writes the counters and latency summary as one log record
func (m *Metrics) LogMetrics(logger *slog.Logger) {
	latency := m.GetRunLatency()

	m.mu.RLock()
	perAlgorithm := make([]any, 0, len(m.runsByAlgorithm))
	for _, alg := range Algorithms {
		if n, ok := m.runsByAlgorithm[alg]; ok {
			perAlgorithm = append(perAlgorithm, slog.Uint64(string(alg), n))
		}
	}
	m.mu.RUnlock()

	logger.Info("Simulator Metrics",
		slog.Group("runs",
			slog.Uint64("completed", m.GetRuns()),
			slog.Uint64("rejected", m.GetRejectedConfigs()),
			slog.Group("by_algorithm", perAlgorithm...),
		),
		slog.Group("references",
			slog.Uint64("total", m.GetReferences()),
			slog.Uint64("faults", m.GetFaults()),
			slog.Uint64("hits", m.GetHits()),
			slog.Float64("hit_rate", m.GetHitRate()),
			slog.Uint64("evictions", m.GetEvictions()),
		),
		slog.Group("latency_us",
			slog.Int("count", latency.Count),
			slog.Float64("mean", latency.Mean),
			slog.Float64("p50", latency.P50),
			slog.Float64("p95", latency.P95),
			slog.Float64("p99", latency.P99),
		),
		slog.Duration("uptime", m.GetUptime()),
	)
}

// Reset zeroes every counter and empties the histogram
func (m *Metrics) Reset() {
	m.runs.Store(0)
	m.rejectedConfigs.Store(0)
	m.references.Store(0)
	m.faults.Store(0)
	m.hits.Store(0)
	m.evictions.Store(0)

	m.runLatency.Reset()

	m.mu.Lock()
	m.runsByAlgorithm = make(map[Algorithm]uint64)
	m.startTime = time.Now()
	m.mu.Unlock()
}
