package paging

import (
	"testing"
)

func TestLFUBelady(t *testing.T) {
	snaps := mustRun(t, AlgorithmLFU, belady, 3)

	checkPages(t, snaps, [][]int{
		{1, free, free}, {1, 2, free}, {1, 2, 3}, {4, 2, 3},
		{4, 1, 3}, {4, 1, 2}, {5, 1, 2}, {5, 1, 2},
		{5, 1, 2}, {3, 1, 2}, {4, 1, 2}, {5, 1, 2},
	})
	checkEvictions(t, snaps, []int{-1, -1, -1, 0, 1, 2, 0, -1, -1, 0, 0, 0})

	if got := lastFaults(snaps); got != 10 {
		t.Errorf("Expected 10 faults, got %d", got)
	}

	v := snaps[11].Variables.(*LFUVariables)
	want := []PageFrequency{{5, 1}, {1, 2}, {2, 2}}
	for i, f := range v.Frequencies {
		if f != want[i] {
			t.Errorf("Frame %d: expected %+v, got %+v", i, want[i], f)
		}
	}
}

func TestMFUBelady(t *testing.T) {
	snaps := mustRun(t, AlgorithmMFU, belady, 3)

	checkPages(t, snaps, [][]int{
		{1, free, free}, {1, 2, free}, {1, 2, 3}, {4, 2, 3},
		{4, 1, 3}, {4, 1, 2}, {5, 1, 2}, {5, 1, 2},
		{5, 1, 2}, {5, 3, 2}, {5, 3, 4}, {5, 3, 4},
	})

	// At step 9 pages 1 and 2 both have frequency 2; page 1 was used earlier
	if got := snaps[9].ReplacedFrameIndex; got != 1 {
		t.Errorf("Expected frame 1 evicted at step 9, got %d", got)
	}
	if _, ok := snaps[9].Variables.(*MFUVariables); !ok {
		t.Errorf("Expected *MFUVariables, got %T", snaps[9].Variables)
	}
}

func TestFrequencyResetOnLoad(t *testing.T) {
	seq := []int{1, 1, 1, 2, 3}
	snaps := mustRun(t, AlgorithmMFU, seq, 2)

	// Page 1 (frequency 3) is the most frequent and goes first
	if got := snaps[4].FramePages(); got[0] != 3 {
		t.Fatalf("Expected page 3 in frame 0, got %v", got)
	}
	if got := snaps[4].Frames[0].Frequency; got != 1 {
		t.Errorf("Expected frequency 1 for a newly loaded page, got %d", got)
	}
	if got := snaps[2].Frames[0].Frequency; got != 3 {
		t.Errorf("Expected frequency 3 after two hits, got %d", got)
	}
}

func TestFrequencyTieBreak(t *testing.T) {
	tests := []struct {
		name       string
		algorithm  Algorithm
		sequence   []int
		frameCount int
		victim     int
	}{
		// Equal frequencies fall back to the oldest use
		{"LFU oldest of equals", AlgorithmLFU, []int{1, 2, 3, 4}, 3, 0},
		{"LFU oldest after hits", AlgorithmLFU, []int{1, 2, 2, 1, 3}, 2, 1},
		{"MFU oldest of equals", AlgorithmMFU, []int{1, 2, 3, 4}, 3, 0},
		{"MFU highest frequency", AlgorithmMFU, []int{1, 2, 2, 3}, 2, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snaps := mustRun(t, tt.algorithm, tt.sequence, tt.frameCount)
			last := snaps[len(snaps)-1]
			if !last.Evicted() {
				t.Fatal("Expected an eviction on the last step")
			}
			if last.ReplacedFrameIndex != tt.victim {
				t.Errorf("Expected frame %d evicted, got %d", tt.victim, last.ReplacedFrameIndex)
			}
		})
	}
}
