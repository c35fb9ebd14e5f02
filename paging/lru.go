package paging

// lruPolicy evicts the frame with the oldest logical timestamp.
// The clock ticks once per reference, hit or fault.
type lruPolicy struct {
	clock int
}

func runLRU(sequence []int, frameCount int) []Snapshot {
	return simulate(sequence, frameCount, &lruPolicy{})
}

func (p *lruPolicy) beginStep(step int, frames []Frame) {
	p.clock++
}

func (p *lruPolicy) touch(step int, f *Frame) {
	f.LastUsed = p.clock
}

// victim scans in index order with a strict comparison, so the lowest
// index wins equal timestamps
func (p *lruPolicy) victim(step int, frames []Frame) int {
	idx := 0
	for i := 1; i < len(frames); i++ {
		if frames[i].LastUsed < frames[idx].LastUsed {
			idx = i
		}
	}
	return idx
}

func (p *lruPolicy) load(step int, index int, f *Frame, evicted bool) {
	f.LastUsed = p.clock
}

func (p *lruPolicy) annotate(s *Snapshot) {
	timestamps := make([]PageTimestamp, len(s.Frames))
	for i, f := range s.Frames {
		timestamps[i] = PageTimestamp{Page: f.Page, LastUsed: f.LastUsed}
	}
	s.Variables = &LRUVariables{Timestamps: timestamps}
}
