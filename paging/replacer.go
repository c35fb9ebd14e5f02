package paging

// replacementPolicy is the per-algorithm half of a simulation run.
// The driver owns the frame array and the hit/fault protocol; a policy keeps
// its own counters and pointers and decides which frame to evict.
type replacementPolicy interface {
	// beginStep runs on the fresh frame copy before the reference is looked up
	beginStep(step int, frames []Frame)

	// touch updates the bookkeeping of a resident page that was referenced
	touch(step int, f *Frame)

	// victim selects the frame to evict. Only called when no frame is empty.
	victim(step int, frames []Frame) int

	// load refreshes the bookkeeping of a frame that just received a page.
	// evicted is false when the page went into an empty frame.
	load(step int, index int, f *Frame, evicted bool)

	// annotate fills the pointer fields and variables of a finished step
	annotate(s *Snapshot)
}

// simulate runs one policy over the whole sequence, starting from empty frames.
// Every step works on its own copy of the frame array, so earlier snapshots
// are never modified.
func simulate(sequence []int, frameCount int, policy replacementPolicy) []Snapshot {
	snapshots := make([]Snapshot, 0, len(sequence))
	frames := emptyFrames(frameCount)
	faults, hits := 0, 0

	for step, page := range sequence {
		next := cloneFrames(frames)
		policy.beginStep(step, next)

		snap := Snapshot{
			Step:               step,
			Page:               page,
			ReplacedFrameIndex: NoFrame,
			ClockPointer:       NoFrame,
			FIFOPointer:        NoFrame,
		}

		if idx := findPage(next, page); idx != NoFrame {
			hits++
			next[idx].IsHit = true
			policy.touch(step, &next[idx])
		} else {
			faults++
			idx = findEmpty(next)
			evicted := idx == NoFrame
			if evicted {
				idx = policy.victim(step, next)
			}

			f := &next[idx]
			f.Page = page
			f.IsNew = true
			f.IsReplaced = evicted
			policy.load(step, idx, f, evicted)

			snap.IsFault = true
			snap.ReplacedFrameIndex = idx
		}

		snap.Frames = next
		snap.CumulativeFaults = faults
		snap.CumulativeHits = hits
		policy.annotate(&snap)

		snapshots = append(snapshots, snap)
		frames = next
	}

	return snapshots
}
