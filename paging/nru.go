package paging

// NRUResetInterval is how many steps pass between clearing all R bits
const NRUResetInterval = 4

// Multiply-add constants of the dirty bit seed. Part of the trace format:
// changing them changes every NRU trace.
const (
	dirtySeedMultiplier = 1103515245
	dirtySeedIncrement  = 12345
	dirtySeedMask       = 0x7fffffff
	dirtySeedModulus    = 3
)

// DirtySeed is the modified bit a page gets when no override applies:
// ((page*1103515245 + 12345) & 0x7fffffff) % 3 == 0.
// Arithmetic wraps at 64 bits; only the low 31 bits survive the mask.
func DirtySeed(page int) bool {
	h := (uint64(page)*dirtySeedMultiplier + dirtySeedIncrement) & dirtySeedMask
	return h%dirtySeedModulus == 0
}

// NRUClass ranks a frame by its bits: 0 (R=0,M=0) through 3 (R=1,M=1).
// Lower classes are evicted first.
func NRUClass(bitR, bitM bool) int {
	switch {
	case !bitR && !bitM:
		return 0
	case !bitR && bitM:
		return 1
	case bitR && !bitM:
		return 2
	default:
		return 3
	}
}

type nruPolicy struct {
	overrides     map[int]bool
	ticks         int
	selectedClass int
}

func runNRU(sequence []int, frameCount int, dirtyOverrides map[int]bool) []Snapshot {
	return simulate(sequence, frameCount, &nruPolicy{overrides: dirtyOverrides})
}

// resolveM returns the modified bit for a reference: the override for the
// step when there is one, the page seed otherwise
func (p *nruPolicy) resolveM(step, page int) bool {
	if m, ok := p.overrides[step]; ok {
		return m
	}
	return DirtySeed(page)
}

func (p *nruPolicy) beginStep(step int, frames []Frame) {
	p.selectedClass = NoClass
	if step > 0 && step%NRUResetInterval == 0 {
		p.ticks++
		for i := range frames {
			frames[i].BitR = false
		}
	}
}

// A hit can set M but never clears it
func (p *nruPolicy) touch(step int, f *Frame) {
	f.BitR = true
	if p.resolveM(step, f.Page) {
		f.BitM = true
	}
}

// victim takes the first frame, in index order, of the lowest non-empty class
func (p *nruPolicy) victim(step int, frames []Frame) int {
	for class := 0; class <= 3; class++ {
		for i, f := range frames {
			if NRUClass(f.BitR, f.BitM) == class {
				p.selectedClass = class
				return i
			}
		}
	}
	return 0
}

func (p *nruPolicy) load(step int, index int, f *Frame, evicted bool) {
	f.BitR = true
	f.BitM = p.resolveM(step, f.Page)
}

func (p *nruPolicy) annotate(s *Snapshot) {
	bits := make([]NRUFrameBits, len(s.Frames))
	for i, f := range s.Frames {
		bits[i] = NRUFrameBits{
			Page:  f.Page,
			BitR:  f.BitR,
			BitM:  f.BitM,
			Class: NRUClass(f.BitR, f.BitM),
		}
	}
	s.Variables = &NRUVariables{
		Frames:        bits,
		SelectedClass: p.selectedClass,
		TickCount:     p.ticks,
	}
}
