// Package playback drives the replay: a single state record (frame
// index, play/pause flag, timer interval, HUD visibility) advanced by
// a timer loop and mutated by user controls. Controls arrive from HTTP
// handlers on arbitrary goroutines, so the state is mutex-guarded.
package playback

import (
	"context"
	"sync"
	"time"
)

// Interval limits and speed step, in milliseconds. Slower/Faster move
// the interval by a factor of 1.4 within [10, 500].
const (
	DefaultIntervalMS = 50
	minIntervalMS     = 10
	maxIntervalMS     = 500
	speedFactor       = 1.4
)

// State is a snapshot of the playback position.
type State struct {
	// Index of the current frame; -1 before the first tick.
	Index int
	// Playing is false while paused or after the replay reached the
	// last frame.
	Playing bool
	// IntervalMS is the timer period.
	IntervalMS int
	// ShowHUD toggles the overlay text in fill mode.
	ShowHUD bool
}

// Player owns the playback state. Every state change that lands on a
// new frame is reported through the update callback, from whichever
// goroutine caused it (the timer loop or a control call).
type Player struct {
	mu       sync.Mutex
	frames   int
	state    State
	onUpdate func(State)
}

// New creates a player over the given frame count, positioned before
// the first frame and playing as soon as Run starts ticking. onUpdate
// may be nil.
func New(frames int, showHUD bool, onUpdate func(State)) *Player {
	return &Player{
		frames: frames,
		state: State{
			Index:      -1,
			Playing:    true,
			IntervalMS: DefaultIntervalMS,
			ShowHUD:    showHUD,
		},
		onUpdate: onUpdate,
	}
}

// Len returns the frame count.
func (p *Player) Len() int { return p.frames }

// Snapshot returns the current state.
func (p *Player) Snapshot() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Run advances the frame index on a timer until ctx is cancelled.
// Interval changes take effect on the next tick. Playback pauses
// itself at the last frame; the loop keeps running so a later play
// command resumes it.
func (p *Player) Run(ctx context.Context) error {
	for {
		p.mu.Lock()
		interval := time.Duration(p.state.IntervalMS) * time.Millisecond
		p.mu.Unlock()

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
			if st, ok := p.advance(); ok {
				p.emit(st)
			}
		}
	}
}

// advance moves to the next frame while playing. Reaching the last
// frame pauses in the same update, so the last frame is emitted exactly
// once with Playing already false.
func (p *Player) advance() (State, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.state.Playing || p.frames == 0 {
		return p.state, false
	}
	i := p.state.Index + 1
	if i >= p.frames {
		// Resumed while already on the last frame: pause again
		// without re-emitting it.
		p.state.Playing = false
		return p.state, false
	}
	p.state.Index = i
	if i == p.frames-1 {
		p.state.Playing = false
	}
	return p.state, true
}

// TogglePlay flips play/pause and returns the new state.
func (p *Player) TogglePlay() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Playing = !p.state.Playing
	return p.state
}

// StepForward pauses and advances one frame (clamped to the end).
func (p *Player) StepForward() State {
	p.mu.Lock()
	p.state.Playing = false
	if p.frames > 0 && p.state.Index < p.frames-1 {
		p.state.Index++
	}
	st := p.state
	p.mu.Unlock()

	p.emit(st)
	return st
}

// StepBack pauses and steps one frame back (clamped to the start).
func (p *Player) StepBack() State {
	p.mu.Lock()
	p.state.Playing = false
	if p.state.Index > 0 {
		p.state.Index--
	}
	st := p.state
	p.mu.Unlock()

	p.emit(st)
	return st
}

// Slower lengthens the timer interval by the speed factor.
func (p *Player) Slower() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	iv := int(float64(p.state.IntervalMS) * speedFactor)
	if iv > maxIntervalMS {
		iv = maxIntervalMS
	}
	p.state.IntervalMS = iv
	return p.state
}

// Faster shortens the timer interval by the speed factor.
func (p *Player) Faster() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	iv := int(float64(p.state.IntervalMS) / speedFactor)
	if iv < minIntervalMS {
		iv = minIntervalMS
	}
	p.state.IntervalMS = iv
	return p.state
}

// ToggleHUD flips the overlay visibility and re-renders the current
// frame so the change shows while paused.
func (p *Player) ToggleHUD() State {
	p.mu.Lock()
	p.state.ShowHUD = !p.state.ShowHUD
	st := p.state
	p.mu.Unlock()

	p.emit(st)
	return st
}

func (p *Player) emit(st State) {
	if p.onUpdate != nil && st.Index >= 0 {
		p.onUpdate(st)
	}
}
