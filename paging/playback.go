package paging

import (
	"context"
	"sync"
	"time"
)

// DefaultPlaySpeed is the delay between automatic steps
const DefaultPlaySpeed = time.Second

// Player steps through a computed snapshot sequence. It only moves an index
// over the slice; snapshots are never recomputed or modified here.
// All methods are safe for concurrent use.
type Player struct {
	snapshots []Snapshot
	current   int
	speed     time.Duration

	playing bool
	pause   chan struct{} // closed to stop the running Play loop

	onChange func(Snapshot)
	mu       sync.Mutex
}

// NewPlayer creates a player positioned at the first snapshot
func NewPlayer(snapshots []Snapshot) (*Player, error) {
	if len(snapshots) == 0 {
		return nil, ErrInvalidConfiguration("NewPlayer", "no snapshots to play")
	}
	return &Player{
		snapshots: snapshots,
		speed:     DefaultPlaySpeed,
	}, nil
}

// OnChange registers a callback that receives every new current snapshot.
// It runs on the goroutine that caused the change, after the lock is released.
func (p *Player) OnChange(fn func(Snapshot)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Load replaces the snapshot sequence, stops playback and rewinds to step 0
func (p *Player) Load(snapshots []Snapshot) error {
	if len(snapshots) == 0 {
		return ErrInvalidConfiguration("Load", "no snapshots to play")
	}
	p.mu.Lock()
	p.stopLocked()
	p.snapshots = snapshots
	p.current = 0
	p.notify()
	return nil
}

// Current returns the snapshot at the current step
func (p *Player) Current() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshots[p.current]
}

// Step returns the current step index
func (p *Player) Step() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Len returns the number of snapshots
func (p *Player) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.snapshots)
}

// AtEnd reports whether the current step is the last one
func (p *Player) AtEnd() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current >= len(p.snapshots)-1
}

// IsPlaying reports whether automatic stepping is active
func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Speed returns the delay between automatic steps
func (p *Player) Speed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speed
}

// SetSpeed changes the delay between automatic steps; it applies from the next step
func (p *Player) SetSpeed(d time.Duration) {
	if d <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.speed = d
}

// StepForward advances one step. At the last step it stops playback instead.
func (p *Player) StepForward() bool {
	p.mu.Lock()
	if p.current >= len(p.snapshots)-1 {
		p.stopLocked()
		p.mu.Unlock()
		return false
	}
	p.current++
	p.notify()
	return true
}

// StepBackward moves back one step; it does nothing at step 0
func (p *Player) StepBackward() bool {
	p.mu.Lock()
	if p.current <= 0 {
		p.mu.Unlock()
		return false
	}
	p.current--
	p.notify()
	return true
}

// GoToStart rewinds to the first step and stops playback
func (p *Player) GoToStart() {
	p.mu.Lock()
	p.stopLocked()
	p.current = 0
	p.notify()
}

// GoToEnd jumps to the last step and stops playback
func (p *Player) GoToEnd() {
	p.mu.Lock()
	p.stopLocked()
	p.current = len(p.snapshots) - 1
	p.notify()
}

// GoToStep jumps to a step, clamped to the valid range
func (p *Player) GoToStep(step int) int {
	p.mu.Lock()
	p.current = max(0, min(step, len(p.snapshots)-1))
	current := p.current
	p.notify()
	return current
}

// Seek jumps to a step and rejects out of range steps
func (p *Player) Seek(step int) error {
	p.mu.Lock()
	if step < 0 || step >= len(p.snapshots) {
		n := len(p.snapshots)
		p.mu.Unlock()
		return ErrStepOutOfRange("Seek", step, n)
	}
	p.current = step
	p.notify()
	return nil
}

// Play advances one step per tick until the last step is reached, Pause is
// called, or ctx is cancelled. It returns immediately if playback is already
// running or the player is at the last step.
func (p *Player) Play(ctx context.Context) error {
	pause, ok := p.begin()
	if !ok {
		return nil
	}
	return p.loop(ctx, pause)
}

// Start begins playback on its own goroutine. It reports whether playback
// was started.
func (p *Player) Start(ctx context.Context) bool {
	pause, ok := p.begin()
	if !ok {
		return false
	}
	go p.loop(ctx, pause)
	return true
}

func (p *Player) begin() (chan struct{}, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing || p.current >= len(p.snapshots)-1 {
		return nil, false
	}
	p.playing = true
	p.pause = make(chan struct{})
	return p.pause, true
}

func (p *Player) loop(ctx context.Context, pause chan struct{}) error {
	for {
		timer := time.NewTimer(p.Speed())
		select {
		case <-ctx.Done():
			timer.Stop()
			p.mu.Lock()
			if p.pause == pause {
				p.stopLocked()
			}
			p.mu.Unlock()
			return ctx.Err()
		case <-pause:
			timer.Stop()
			return nil
		case <-timer.C:
			if !p.tick(pause) {
				return nil
			}
		}
	}
}

// tick advances one step on behalf of the loop that owns pause
func (p *Player) tick(pause chan struct{}) bool {
	p.mu.Lock()
	if p.pause != pause {
		p.mu.Unlock()
		return false
	}
	if p.current >= len(p.snapshots)-1 {
		p.stopLocked()
		p.mu.Unlock()
		return false
	}
	p.current++
	atEnd := p.current >= len(p.snapshots)-1
	if atEnd {
		p.stopLocked()
	}
	p.notify()
	return !atEnd
}

// Pause stops automatic stepping
func (p *Player) Pause() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// TogglePlay pauses a running playback or starts a new one.
// It returns whether playback is running afterwards.
func (p *Player) TogglePlay(ctx context.Context) bool {
	p.mu.Lock()
	if p.playing {
		p.stopLocked()
		p.mu.Unlock()
		return false
	}
	p.mu.Unlock()
	return p.Start(ctx)
}

// stopLocked must be called with p.mu held
func (p *Player) stopLocked() {
	if !p.playing {
		return
	}
	p.playing = false
	close(p.pause)
	p.pause = nil
}

// notify releases p.mu and reports the current snapshot to the callback
func (p *Player) notify() {
	fn := p.onChange
	snap := p.snapshots[p.current]
	p.mu.Unlock()

	if fn != nil {
		fn(snap)
	}
}
