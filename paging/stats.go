package paging

import (
	"math"
)

// Stats summarises a finished trace
type Stats struct {
	Algorithm     Algorithm `json:"algorithm"`
	Steps         int       `json:"steps"`
	Faults        int       `json:"faults"`
	Hits          int       `json:"hits"`
	Evictions     int       `json:"evictions"`
	FaultRate     float64   `json:"fault_rate"` // percent
	HitRate       float64   `json:"hit_rate"`   // percent
	DistinctPages int       `json:"distinct_pages"`

	// Every distinct page has to be loaded at least once
	MinimumFaults int `json:"minimum_faults"`

	OPTFaults int `json:"opt_faults"`

	// optFaults / faults as a percentage, capped at 100
	EfficiencyVsOPT float64 `json:"efficiency_vs_opt"`
}

// RunningStats are the counters as of one step
type RunningStats struct {
	Step      int     `json:"step"`
	Faults    int     `json:"faults"`
	Hits      int     `json:"hits"`
	FaultRate float64 `json:"fault_rate"`
	HitRate   float64 `json:"hit_rate"`
}

// Summarize computes the statistics of a trace against the OPT fault count
// for the same sequence and frame count
func Summarize(trace *Trace, optFaults int) Stats {
	steps := len(trace.Snapshots)
	stats := Stats{
		Algorithm:       trace.Algorithm,
		Steps:           steps,
		Faults:          trace.Faults(),
		Hits:            trace.Hits(),
		DistinctPages:   distinctPages(trace.Sequence),
		OPTFaults:       optFaults,
		EfficiencyVsOPT: 100,
	}
	stats.MinimumFaults = stats.DistinctPages

	for _, s := range trace.Snapshots {
		if s.Evicted() {
			stats.Evictions++
		}
	}

	if steps > 0 {
		stats.FaultRate = percent(stats.Faults, steps)
		stats.HitRate = percent(stats.Hits, steps)
	}
	if stats.Faults > 0 {
		stats.EfficiencyVsOPT = math.Min(percent(optFaults, stats.Faults), 100)
	}
	return stats
}

// StatsAt returns the running counters as of a step
func StatsAt(snapshots []Snapshot, step int) (RunningStats, error) {
	if step < 0 || step >= len(snapshots) {
		return RunningStats{}, ErrStepOutOfRange("StatsAt", step, len(snapshots))
	}
	s := snapshots[step]
	seen := step + 1
	return RunningStats{
		Step:      step,
		Faults:    s.CumulativeFaults,
		Hits:      s.CumulativeHits,
		FaultRate: percent(s.CumulativeFaults, seen),
		HitRate:   percent(s.CumulativeHits, seen),
	}, nil
}

// Compare runs every algorithm on the same configuration and summarises each
// one against OPT. Results follow the order of Algorithms.
func Compare(sequence []int, frameCount int, opts Options) ([]Stats, error) {
	opt, err := RunTrace(AlgorithmOPT, sequence, frameCount, opts)
	if err != nil {
		return nil, err
	}
	optFaults := opt.Faults()

	results := make([]Stats, 0, len(Algorithms))
	for _, alg := range Algorithms {
		trace := opt
		if alg != AlgorithmOPT {
			trace, err = RunTrace(alg, sequence, frameCount, opts)
			if err != nil {
				return nil, err
			}
		}
		results = append(results, Summarize(trace, optFaults))
	}
	return results, nil
}

func distinctPages(sequence []int) int {
	seen := make(map[int]struct{}, len(sequence))
	for _, p := range sequence {
		seen[p] = struct{}{}
	}
	return len(seen)
}

func percent(part, whole int) float64 {
	return float64(part) / float64(whole) * 100
}
