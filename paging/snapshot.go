package paging

import (
	"encoding/json"
	"fmt"
)

// Snapshot is the immutable record of one simulation step.
// Frames is owned by the snapshot; no two snapshots share a backing array.
type Snapshot struct {
	Step               int       `json:"step"`
	Page               int       `json:"page"`
	Frames             []Frame   `json:"frames"`
	IsFault            bool      `json:"is_fault"`
	ReplacedFrameIndex int       `json:"replaced_frame_index"` // NoFrame on a hit
	ClockPointer       int       `json:"clock_pointer"`        // NoFrame unless CLOCK
	FIFOPointer        int       `json:"fifo_pointer"`         // NoFrame unless FIFO
	Variables          Variables `json:"-"`
	CumulativeFaults   int       `json:"cumulative_faults"`
	CumulativeHits     int       `json:"cumulative_hits"`
}

// Evicted reports whether this step removed a resident page
func (s Snapshot) Evicted() bool {
	if !s.IsFault || s.ReplacedFrameIndex == NoFrame {
		return false
	}
	return s.Frames[s.ReplacedFrameIndex].IsReplaced
}

// FramePages returns the page held by each frame, EmptyPage for free frames
func (s Snapshot) FramePages() []int {
	pages := make([]int, len(s.Frames))
	for i, f := range s.Frames {
		pages[i] = f.Page
	}
	return pages
}

type snapshotJSON struct {
	snapshotAlias
	Variables *variablesEnvelope `json:"variables,omitempty"`
}

type snapshotAlias Snapshot

type variablesEnvelope struct {
	Kind Algorithm       `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// MarshalJSON encodes the variables as a {kind, data} envelope
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{snapshotAlias: snapshotAlias(s)}
	if s.Variables != nil {
		data, err := json.Marshal(s.Variables)
		if err != nil {
			return nil, err
		}
		out.Variables = &variablesEnvelope{Kind: s.Variables.Algorithm(), Data: data}
	}
	return json.Marshal(out)
}

// UnmarshalJSON restores the concrete variables type from its envelope
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var in snapshotJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Snapshot(in.snapshotAlias)
	if in.Variables == nil {
		s.Variables = nil
		return nil
	}
	vars, err := decodeVariables(in.Variables.Kind, in.Variables.Data)
	if err != nil {
		return err
	}
	s.Variables = vars
	return nil
}

func decodeVariables(kind Algorithm, data json.RawMessage) (Variables, error) {
	var v Variables
	switch kind {
	case AlgorithmFIFO:
		v = &FIFOVariables{}
	case AlgorithmLRU:
		v = &LRUVariables{}
	case AlgorithmNRU:
		v = &NRUVariables{}
	case AlgorithmOPT:
		v = &OPTVariables{}
	case AlgorithmClock:
		v = &ClockVariables{}
	case AlgorithmLFU:
		v = &LFUVariables{}
	case AlgorithmMFU:
		v = &MFUVariables{}
	default:
		return nil, fmt.Errorf("unknown variables kind %q", kind)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return nil, fmt.Errorf("failed to decode %s variables: %w", kind, err)
	}
	return v, nil
}
