package paging

// EmptyPage marks a frame that holds no page
const EmptyPage = -1

// NoFrame is used where a frame index is not applicable
// (no eviction on a hit, no pointer for the algorithm)
const NoFrame = -1

// Frame is one physical memory slot.
// IsNew, IsReplaced and IsHit describe only the step that produced the
// snapshot holding the frame; the remaining fields carry across steps.
type Frame struct {
	FrameIndex int `json:"frame_index"`
	Page       int `json:"page"`

	IsNew      bool `json:"is_new"`
	IsReplaced bool `json:"is_replaced"`
	IsHit      bool `json:"is_hit"`

	// NRU
	BitR bool `json:"bit_r"`
	BitM bool `json:"bit_m"`

	// Clock
	ClockBit bool `json:"clock_bit"`

	// LRU, and tie-break for LFU/MFU
	LastUsed int `json:"last_used"`

	// LFU/MFU
	Frequency int `json:"frequency"`

	// FIFO, and tie-break for OPT
	ArrivalOrder int `json:"arrival_order"`
}

// Empty reports whether the frame holds no page
func (f Frame) Empty() bool {
	return f.Page == EmptyPage
}

func emptyFrame(index int) Frame {
	return Frame{FrameIndex: index, Page: EmptyPage}
}

func emptyFrames(count int) []Frame {
	frames := make([]Frame, count)
	for i := range frames {
		frames[i] = emptyFrame(i)
	}
	return frames
}

// cloneFrames copies frames into a fresh slice with the per-step flags cleared.
// Frame holds no references, so a value copy is a deep copy.
func cloneFrames(frames []Frame) []Frame {
	out := make([]Frame, len(frames))
	for i, f := range frames {
		f.IsNew = false
		f.IsReplaced = false
		f.IsHit = false
		out[i] = f
	}
	return out
}

func findPage(frames []Frame, page int) int {
	for i := range frames {
		if frames[i].Page == page {
			return i
		}
	}
	return NoFrame
}

func findEmpty(frames []Frame) int {
	return findPage(frames, EmptyPage)
}

// OccupiedCount returns the number of frames holding a page
func OccupiedCount(frames []Frame) int {
	n := 0
	for _, f := range frames {
		if !f.Empty() {
			n++
		}
	}
	return n
}
