package paging

import (
	"sort"
)

// fifoPolicy evicts the page that has been resident longest.
// The pointer only moves on evictions: frames fill in index order, so the
// slot under the pointer is always the oldest arrival once memory is full.
type fifoPolicy struct {
	frameCount int
	pointer    int
	arrivals   int
}

func runFIFO(sequence []int, frameCount int) []Snapshot {
	return simulate(sequence, frameCount, &fifoPolicy{frameCount: frameCount})
}

func (p *fifoPolicy) beginStep(step int, frames []Frame) {}

// FIFO ignores reuse
func (p *fifoPolicy) touch(step int, f *Frame) {}

func (p *fifoPolicy) victim(step int, frames []Frame) int {
	idx := p.pointer
	p.pointer = (p.pointer + 1) % p.frameCount
	return idx
}

func (p *fifoPolicy) load(step int, index int, f *Frame, evicted bool) {
	p.arrivals++
	f.ArrivalOrder = p.arrivals
}

func (p *fifoPolicy) annotate(s *Snapshot) {
	s.FIFOPointer = p.pointer
	s.Variables = &FIFOVariables{
		Pointer: p.pointer,
		Queue:   arrivalQueue(s.Frames),
	}
}

// arrivalQueue lists resident pages oldest arrival first
func arrivalQueue(frames []Frame) []int {
	resident := make([]Frame, 0, len(frames))
	for _, f := range frames {
		if !f.Empty() {
			resident = append(resident, f)
		}
	}
	sort.SliceStable(resident, func(i, j int) bool {
		return resident[i].ArrivalOrder < resident[j].ArrivalOrder
	})

	queue := make([]int, len(resident))
	for i, f := range resident {
		queue[i] = f.Page
	}
	return queue
}
