package paging

// frequencyPolicy implements LFU and MFU. Frequency decides the victim,
// the LRU timestamp breaks ties, and the first frame in index order wins
// anything still tied.
type frequencyPolicy struct {
	mostFrequent bool
	clock        int
}

func runLFU(sequence []int, frameCount int) []Snapshot {
	return simulate(sequence, frameCount, &frequencyPolicy{})
}

func runMFU(sequence []int, frameCount int) []Snapshot {
	return simulate(sequence, frameCount, &frequencyPolicy{mostFrequent: true})
}

func (p *frequencyPolicy) beginStep(step int, frames []Frame) {
	p.clock++
}

func (p *frequencyPolicy) touch(step int, f *Frame) {
	f.Frequency++
	f.LastUsed = p.clock
}

func (p *frequencyPolicy) victim(step int, frames []Frame) int {
	idx := 0
	for i := 1; i < len(frames); i++ {
		if p.better(frames[i], frames[idx]) {
			idx = i
		}
	}
	return idx
}

// better reports whether candidate should replace the current victim choice
func (p *frequencyPolicy) better(candidate, current Frame) bool {
	if candidate.Frequency == current.Frequency {
		return candidate.LastUsed < current.LastUsed
	}
	if p.mostFrequent {
		return candidate.Frequency > current.Frequency
	}
	return candidate.Frequency < current.Frequency
}

func (p *frequencyPolicy) load(step int, index int, f *Frame, evicted bool) {
	f.Frequency = 1
	f.LastUsed = p.clock
}

func (p *frequencyPolicy) annotate(s *Snapshot) {
	if p.mostFrequent {
		s.Variables = &MFUVariables{Frequencies: frequencies(s.Frames)}
		return
	}
	s.Variables = &LFUVariables{Frequencies: frequencies(s.Frames)}
}
