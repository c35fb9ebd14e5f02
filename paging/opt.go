package paging

import (
	"math"
)

// optPolicy is Belady's algorithm. It evicts the resident page whose next
// reference lies farthest in the future; pages never referenced again count
// as infinitely far, and equal distances go to the earliest arrival.
type optPolicy struct {
	sequence []int
	arrivals int
}

func runOPT(sequence []int, frameCount int) []Snapshot {
	return simulate(sequence, frameCount, &optPolicy{sequence: sequence})
}

// nextUse returns the first position after step that references page, or Never
func nextUse(sequence []int, page, step int) int {
	for i := step + 1; i < len(sequence); i++ {
		if sequence[i] == page {
			return i
		}
	}
	return Never
}

func (p *optPolicy) beginStep(step int, frames []Frame) {}

func (p *optPolicy) touch(step int, f *Frame) {}

func (p *optPolicy) victim(step int, frames []Frame) int {
	idx := 0
	farthest := -1
	for i, f := range frames {
		dist := nextUse(p.sequence, f.Page, step)
		if dist == Never {
			dist = math.MaxInt
		}

		if dist > farthest {
			farthest = dist
			idx = i
		} else if dist == farthest && f.ArrivalOrder < frames[idx].ArrivalOrder {
			idx = i
		}
	}
	return idx
}

func (p *optPolicy) load(step int, index int, f *Frame, evicted bool) {
	p.arrivals++
	f.ArrivalOrder = p.arrivals
}

func (p *optPolicy) annotate(s *Snapshot) {
	uses := make([]NextUse, len(s.Frames))
	for i, f := range s.Frames {
		uses[i] = NextUse{Page: f.Page, NextAt: Never}
		if !f.Empty() {
			uses[i].NextAt = nextUse(p.sequence, f.Page, s.Step)
		}
	}
	s.Variables = &OPTVariables{NextUse: uses}
}
