package paging

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"
	"sync"
	"time"
)

// Options carries algorithm-specific run parameters
type Options struct {
	// DirtyOverrides forces the NRU modified bit at the given steps.
	// Other algorithms ignore it.
	DirtyOverrides map[int]bool
}

// Trace is the complete result of one run together with the configuration
// that produced it
type Trace struct {
	Algorithm      Algorithm    `json:"algorithm"`
	Sequence       []int        `json:"sequence"`
	FrameCount     int          `json:"frame_count"`
	DirtyOverrides map[int]bool `json:"dirty_overrides,omitempty"`
	Snapshots      []Snapshot   `json:"snapshots"`
}

// Faults returns the total number of page faults in the trace
func (t *Trace) Faults() int {
	if len(t.Snapshots) == 0 {
		return 0
	}
	return t.Snapshots[len(t.Snapshots)-1].CumulativeFaults
}

// Hits returns the total number of hits in the trace
func (t *Trace) Hits() int {
	if len(t.Snapshots) == 0 {
		return 0
	}
	return t.Snapshots[len(t.Snapshots)-1].CumulativeHits
}

// ValidateRun checks a run configuration before any engine sees it
func ValidateRun(sequence []int, frameCount int, opts Options) error {
	const op = "ValidateRun"

	if len(sequence) == 0 {
		return ErrEmptySequence(op)
	}
	if frameCount < 1 {
		return ErrInvalidFrameCount(op, frameCount)
	}
	for step, page := range sequence {
		if page < 0 {
			return ErrInvalidPage(op, step, page)
		}
	}
	for step := range opts.DirtyOverrides {
		if step < 0 || step >= len(sequence) {
			return ErrInvalidConfiguration(op,
				fmt.Sprintf("dirty override for step %d outside sequence of length %d", step, len(sequence)))
		}
	}
	return nil
}

// Run validates the configuration and produces the full snapshot sequence
// for the selected algorithm. The result never aliases the input sequence,
// the override map, or any earlier run.
func Run(algorithm Algorithm, sequence []int, frameCount int, opts Options) ([]Snapshot, error) {
	if !algorithm.Valid() {
		return nil, ErrUnsupportedAlgorithm("Run", string(algorithm))
	}
	if err := ValidateRun(sequence, frameCount, opts); err != nil {
		return nil, err
	}

	seq := slices.Clone(sequence)

	switch algorithm {
	case AlgorithmFIFO:
		return runFIFO(seq, frameCount), nil
	case AlgorithmLRU:
		return runLRU(seq, frameCount), nil
	case AlgorithmNRU:
		return runNRU(seq, frameCount, maps.Clone(opts.DirtyOverrides)), nil
	case AlgorithmOPT:
		return runOPT(seq, frameCount), nil
	case AlgorithmClock:
		return runClock(seq, frameCount), nil
	case AlgorithmLFU:
		return runLFU(seq, frameCount), nil
	case AlgorithmMFU:
		return runMFU(seq, frameCount), nil
	default:
		return nil, ErrUnsupportedAlgorithm("Run", string(algorithm))
	}
}

// RunTrace runs the algorithm and wraps the result with its configuration
func RunTrace(algorithm Algorithm, sequence []int, frameCount int, opts Options) (*Trace, error) {
	snapshots, err := Run(algorithm, sequence, frameCount, opts)
	if err != nil {
		return nil, err
	}
	trace := &Trace{
		Algorithm:  algorithm,
		Sequence:   slices.Clone(sequence),
		FrameCount: frameCount,
		Snapshots:  snapshots,
	}
	if algorithm == AlgorithmNRU && len(opts.DirtyOverrides) > 0 {
		trace.DirtyOverrides = maps.Clone(opts.DirtyOverrides)
	}
	return trace, nil
}

// Simulator holds one configuration and the trace computed from it.
// Every configuration change discards the trace and recomputes it from
// empty frames; traces are never patched.
type Simulator struct {
	algorithm      Algorithm
	sequence       []int
	frameCount     int
	dirtyOverrides map[int]bool

	trace *Trace
	err   error

	metrics *Metrics
	logger  *slog.Logger
	mu      sync.RWMutex
}

// NewSimulator creates a simulator from a configuration and computes its trace.
// metrics and logger may be nil. An unknown algorithm returns a nil simulator;
// any other invalid setting returns a usable simulator with no trace together
// with the validation error, so the caller can correct it through the setters.
func NewSimulator(config *Config, metrics *Metrics, logger *slog.Logger) (*Simulator, error) {
	algorithm, err := config.AlgorithmID()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	s := &Simulator{
		algorithm:      algorithm,
		sequence:       slices.Clone(config.Sequence),
		frameCount:     config.FrameCount,
		dirtyOverrides: maps.Clone(config.DirtyOverrides),
		metrics:        metrics,
		logger:         logger,
	}
	if s.dirtyOverrides == nil {
		s.dirtyOverrides = make(map[int]bool)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s, s.recompute()
}

// recompute must be called with s.mu held
func (s *Simulator) recompute() error {
	s.trace = nil

	start := time.Now()
	trace, err := RunTrace(s.algorithm, s.sequence, s.frameCount, Options{DirtyOverrides: s.dirtyOverrides})
	elapsed := time.Since(start)

	s.err = err
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordRejectedConfig()
		}
		s.logger.Warn("configuration rejected",
			slog.String("algorithm", string(s.algorithm)),
			slog.Int("sequence_length", len(s.sequence)),
			slog.Int("frame_count", s.frameCount),
			slog.Any("error", err),
		)
		return err
	}

	s.trace = trace
	if s.metrics != nil {
		s.metrics.RecordRun(trace, elapsed)
	}
	s.logger.Debug("trace computed",
		slog.String("algorithm", string(s.algorithm)),
		slog.Int("steps", len(trace.Snapshots)),
		slog.Int("frame_count", s.frameCount),
		slog.Int("faults", trace.Faults()),
		slog.Int("hits", trace.Hits()),
		slog.Duration("elapsed", elapsed),
	)
	return nil
}

// SetAlgorithm selects another algorithm and recomputes the trace
func (s *Simulator) SetAlgorithm(algorithm Algorithm) error {
	if !algorithm.Valid() {
		return ErrUnsupportedAlgorithm("SetAlgorithm", string(algorithm))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.algorithm = algorithm
	return s.recompute()
}

// SetSequence replaces the reference sequence and recomputes the trace.
// Overrides are keyed by step, so they are dropped along with the old sequence.
func (s *Simulator) SetSequence(sequence []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence = slices.Clone(sequence)
	s.dirtyOverrides = make(map[int]bool)
	return s.recompute()
}

// SetFrameCount changes the number of frames and recomputes the trace
func (s *Simulator) SetFrameCount(frameCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frameCount = frameCount
	return s.recompute()
}

// SetDirtyOverride forces the NRU modified bit at a step and recomputes the
// whole trace from the first step
func (s *Simulator) SetDirtyOverride(step int, modified bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step < 0 || step >= len(s.sequence) {
		return ErrStepOutOfRange("SetDirtyOverride", step, len(s.sequence))
	}
	s.dirtyOverrides[step] = modified
	return s.recompute()
}

// ClearDirtyOverride removes the override at a step and recomputes the trace
func (s *Simulator) ClearDirtyOverride(step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.dirtyOverrides, step)
	return s.recompute()
}

// Reset restores the default configuration and recomputes the trace
func (s *Simulator) Reset() error {
	def := DefaultConfig()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.algorithm = AlgorithmFIFO
	s.sequence = def.Sequence
	s.frameCount = def.FrameCount
	s.dirtyOverrides = make(map[int]bool)
	return s.recompute()
}

// Trace returns the current trace, or the error that prevented computing it
func (s *Simulator) Trace() (*Trace, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.trace, nil
}

// Snapshots returns the current snapshot sequence, nil when the
// configuration is invalid
func (s *Simulator) Snapshots() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.trace == nil {
		return nil
	}
	return s.trace.Snapshots
}

// Algorithm returns the selected algorithm
func (s *Simulator) Algorithm() Algorithm {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.algorithm
}

// DirtyOverrides returns a copy of the current override map
func (s *Simulator) DirtyOverrides() map[int]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return maps.Clone(s.dirtyOverrides)
}
