package paging

// clockPolicy is second-chance replacement with a single hand.
// A set bit buys a page one more pass of the hand; the hand evicts the first
// frame it finds with the bit clear.
type clockPolicy struct {
	frameCount int
	hand       int
	swept      int // frames whose bit was cleared while looking for this step's victim
}

func runClock(sequence []int, frameCount int) []Snapshot {
	return simulate(sequence, frameCount, &clockPolicy{frameCount: frameCount})
}

func (p *clockPolicy) beginStep(step int, frames []Frame) {
	p.swept = 0
}

// A hit refreshes the second chance and leaves the hand where it is
func (p *clockPolicy) touch(step int, f *Frame) {
	f.ClockBit = true
}

func (p *clockPolicy) victim(step int, frames []Frame) int {
	for frames[p.hand].ClockBit {
		frames[p.hand].ClockBit = false
		p.hand = p.advance(p.hand)
		p.swept++
	}
	idx := p.hand
	p.hand = p.advance(p.hand)
	return idx
}

func (p *clockPolicy) load(step int, index int, f *Frame, evicted bool) {
	if !evicted {
		p.hand = p.advance(index)
	}
	f.ClockBit = true
}

func (p *clockPolicy) advance(i int) int {
	return (i + 1) % p.frameCount
}

func (p *clockPolicy) annotate(s *Snapshot) {
	bits := make([]ClockFrameBit, len(s.Frames))
	for i, f := range s.Frames {
		bits[i] = ClockFrameBit{Page: f.Page, SecondChanceBit: f.ClockBit}
	}
	s.ClockPointer = p.hand
	s.Variables = &ClockVariables{
		Pointer:        p.hand,
		Frames:         bits,
		StepsToReplace: p.swept,
	}
}
