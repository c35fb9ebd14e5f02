package paging

import (
	"slices"
	"testing"
)

func TestClockBelady(t *testing.T) {
	snaps := mustRun(t, AlgorithmClock, belady, 3)

	checkPages(t, snaps, [][]int{
		{1, free, free}, {1, 2, free}, {1, 2, 3}, {4, 2, 3},
		{4, 1, 3}, {4, 1, 2}, {5, 1, 2}, {5, 1, 2},
		{5, 1, 2}, {5, 3, 2}, {5, 3, 4}, {5, 3, 4},
	})
	checkEvictions(t, snaps, []int{-1, -1, -1, 0, 1, 2, 0, -1, -1, 1, 2, -1})

	if got := lastFaults(snaps); got != 9 {
		t.Errorf("Expected 9 faults, got %d", got)
	}
}

func TestClockPointerAndSweep(t *testing.T) {
	snaps := mustRun(t, AlgorithmClock, belady, 3)

	pointers := []int{1, 2, 0, 1, 2, 0, 1, 1, 1, 2, 0, 0}
	swept := []int{0, 0, 0, 3, 0, 0, 3, 0, 0, 3, 0, 0}

	for i, s := range snaps {
		v, ok := s.Variables.(*ClockVariables)
		if !ok {
			t.Fatalf("Step %d: expected *ClockVariables, got %T", i, s.Variables)
		}
		if s.ClockPointer != pointers[i] || v.Pointer != pointers[i] {
			t.Errorf("Step %d: expected pointer %d, got %d (variables %d)", i, pointers[i], s.ClockPointer, v.Pointer)
		}
		if v.StepsToReplace != swept[i] {
			t.Errorf("Step %d: expected %d swept frames, got %d", i, swept[i], v.StepsToReplace)
		}
		if s.FIFOPointer != NoFrame {
			t.Errorf("Step %d: expected no FIFO pointer, got %d", i, s.FIFOPointer)
		}
	}
}

func TestClockSecondChanceBits(t *testing.T) {
	snaps := mustRun(t, AlgorithmClock, belady, 3)

	bits := func(s Snapshot) []bool {
		v := s.Variables.(*ClockVariables)
		out := make([]bool, len(v.Frames))
		for i, f := range v.Frames {
			out[i] = f.SecondChanceBit
		}
		return out
	}

	// A full sweep clears every bit before the victim is chosen
	if got := bits(snaps[3]); !slices.Equal(got, []bool{true, false, false}) {
		t.Errorf("Step 3: expected bits [true false false], got %v", got)
	}
	// Hits set the bit again
	if got := bits(snaps[8]); !slices.Equal(got, []bool{true, true, true}) {
		t.Errorf("Step 8: expected bits [true true true], got %v", got)
	}
	if got := bits(snaps[9]); !slices.Equal(got, []bool{false, true, false}) {
		t.Errorf("Step 9: expected bits [false true false], got %v", got)
	}
}

// TestClockPointerAdvance checks that after an eviction the hand sits one past
// the frames it swept
func TestClockPointerAdvance(t *testing.T) {
	seq := []int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3, 5, 8, 9, 7, 9, 3, 2, 3, 8, 4}
	frameCount := 4
	snaps := mustRun(t, AlgorithmClock, seq, frameCount)

	for i := 1; i < len(snaps); i++ {
		s := snaps[i]
		v := s.Variables.(*ClockVariables)
		prev := snaps[i-1].ClockPointer

		switch {
		case s.Evicted():
			want := (prev + v.StepsToReplace + 1) % frameCount
			if s.ClockPointer != want {
				t.Errorf("Step %d: expected pointer %d, got %d", i, want, s.ClockPointer)
			}
		case !s.IsFault:
			if s.ClockPointer != prev {
				t.Errorf("Step %d: hit moved pointer from %d to %d", i, prev, s.ClockPointer)
			}
		}
	}
}
