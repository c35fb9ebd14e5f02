package paging

// Variables is the algorithm-specific view of a step, for display only.
// The set of implementations is closed; consumers switch on the concrete type:
//
//	switch v := snap.Variables.(type) {
//	case *FIFOVariables:
//	case *ClockVariables:
//	...
//	}
type Variables interface {
	Algorithm() Algorithm
	sealed()
}

// Never is the OPT next-use position of a page that is not referenced again
const Never = -1

// NoClass is the NRU selected class on steps without an eviction
const NoClass = -1

// FIFOVariables shows the arrival queue, oldest first
type FIFOVariables struct {
	Pointer int   `json:"pointer"`
	Queue   []int `json:"queue"`
}

// PageTimestamp is one frame's LRU timestamp
type PageTimestamp struct {
	Page     int `json:"page"`
	LastUsed int `json:"last_used"`
}

// LRUVariables shows every frame's last use timestamp
type LRUVariables struct {
	Timestamps []PageTimestamp `json:"timestamps"`
}

// NRUFrameBits is one frame's referenced/modified bits and its class
type NRUFrameBits struct {
	Page  int  `json:"page"`
	BitR  bool `json:"bit_r"`
	BitM  bool `json:"bit_m"`
	Class int  `json:"class"`
}

// NRUVariables shows the bits per frame, the class the victim came from
// (NoClass when nothing was evicted) and how many R resets have happened
type NRUVariables struct {
	Frames        []NRUFrameBits `json:"frames"`
	SelectedClass int            `json:"selected_class"`
	TickCount     int            `json:"tick_count"`
}

// NextUse is the step at which a resident page is referenced again.
// NextAt is Never when there is no further reference; Page is EmptyPage
// for free frames, whose NextAt is also Never.
type NextUse struct {
	Page   int `json:"page"`
	NextAt int `json:"next_at"`
}

// OPTVariables shows the next use of every resident page
type OPTVariables struct {
	NextUse []NextUse `json:"next_use"`
}

// ClockFrameBit is one frame's second chance bit
type ClockFrameBit struct {
	Page            int  `json:"page"`
	SecondChanceBit bool `json:"second_chance_bit"`
}

// ClockVariables shows the hand position and how many frames were swept
type ClockVariables struct {
	Pointer        int             `json:"pointer"`
	Frames         []ClockFrameBit `json:"frames"`
	StepsToReplace int             `json:"steps_to_replace"`
}

// PageFrequency is one frame's access counter
type PageFrequency struct {
	Page int `json:"page"`
	Freq int `json:"freq"`
}

// LFUVariables shows the access frequency of every frame
type LFUVariables struct {
	Frequencies []PageFrequency `json:"frequencies"`
}

// MFUVariables shows the access frequency of every frame
type MFUVariables struct {
	Frequencies []PageFrequency `json:"frequencies"`
}

func (*FIFOVariables) Algorithm() Algorithm  { return AlgorithmFIFO }
func (*LRUVariables) Algorithm() Algorithm   { return AlgorithmLRU }
func (*NRUVariables) Algorithm() Algorithm   { return AlgorithmNRU }
func (*OPTVariables) Algorithm() Algorithm   { return AlgorithmOPT }
func (*ClockVariables) Algorithm() Algorithm { return AlgorithmClock }
func (*LFUVariables) Algorithm() Algorithm   { return AlgorithmLFU }
func (*MFUVariables) Algorithm() Algorithm   { return AlgorithmMFU }

func (*FIFOVariables) sealed()  {}
func (*LRUVariables) sealed()   {}
func (*NRUVariables) sealed()   {}
func (*OPTVariables) sealed()   {}
func (*ClockVariables) sealed() {}
func (*LFUVariables) sealed()   {}
func (*MFUVariables) sealed()   {}

func frequencies(frames []Frame) []PageFrequency {
	out := make([]PageFrequency, len(frames))
	for i, f := range frames {
		out[i] = PageFrequency{Page: f.Page, Freq: f.Frequency}
	}
	return out
}
