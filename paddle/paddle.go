// Package paddle implements the debounced, interrupt-safe paddle input
// state (spec.md §4.2) and the SuperKeyer priority controller (spec.md
// §4.3). State is the only type in this repository written from interrupt
// context; every field is an independent atomic so the interrupt handler
// never blocks and never allocates.
package paddle

import (
	"sync/atomic"

	"github.com/kb9qrp/ironkeyer/element"
)

// State is the process-wide, interrupt-written paddle record (spec.md §3
// "PaddleState"). It is created once at init and lives for the program's
// lifetime; no locking is used anywhere in this type.
type State struct {
	ditPressed  atomic.Bool
	dahPressed  atomic.Bool
	ditLastEdge atomic.Uint32
	dahLastEdge atomic.Uint32
	ditHasEdge  atomic.Bool
	dahHasEdge  atomic.Bool
	ditFirstMS  atomic.Uint32
	ditFirstSet atomic.Bool
	dahFirstMS  atomic.Uint32
	dahFirstSet atomic.Bool
	debounceMS  atomic.Uint32
}

// NewState creates a paddle state with the given initial debounce window.
func NewState(debounceMS uint8) *State {
	s := &State{}
	s.debounceMS.Store(uint32(debounceMS))
	return s
}

// SetDebounce changes the debounce window. It takes effect on the next
// edge (spec.md §4.2); a comparison already in progress inside
// OnEdge on another core is unaffected.
func (s *State) SetDebounce(ms uint8) {
	s.debounceMS.Store(uint32(ms))
}

// OnEdge records a paddle transition. It is safe to call from interrupt
// context: every access below is an independent atomic load/store, there is
// no lock, and the function never allocates or blocks.
//
// An edge whose distance from the last accepted edge on the same side is
// below the debounce window is dropped entirely — state, last-edge time, and
// first-press time are all left untouched, so a rejected edge cannot corrupt
// the record of the edge it was too close to. There is no debounce window
// against a side's very first edge: with no prior accepted transition to
// measure against, the edge is always accepted (spec.md §8 scenario 6).
func (s *State) OnEdge(side element.Side, isPressed bool, nowMS uint32) {
	var lastEdge, firstMS *atomic.Uint32
	var pressed, hasEdge, firstSet *atomic.Bool

	if side == element.SideDit {
		lastEdge, pressed, hasEdge, firstMS, firstSet = &s.ditLastEdge, &s.ditPressed, &s.ditHasEdge, &s.ditFirstMS, &s.ditFirstSet
	} else {
		lastEdge, pressed, hasEdge, firstMS, firstSet = &s.dahLastEdge, &s.dahPressed, &s.dahHasEdge, &s.dahFirstMS, &s.dahFirstSet
	}

	if hasEdge.Load() && (nowMS-lastEdge.Load()) < s.debounceMS.Load() {
		return
	}

	pressed.Store(isPressed)
	lastEdge.Store(nowMS)
	hasEdge.Store(true)
	if isPressed {
		firstMS.Store(nowMS)
		firstSet.Store(true)
	} else {
		firstSet.Store(false)
	}
}

// Snapshot reads the current, possibly momentarily inconsistent, paddle
// state for foreground use. The returned element.PaddleView is what the
// Element FSM and priority controller consume.
func (s *State) Snapshot() element.PaddleView {
	return element.PaddleView{
		DitPressed:         s.ditPressed.Load(),
		DahPressed:         s.dahPressed.Load(),
		DitFirstPressMS:    s.ditFirstMS.Load(),
		DitFirstPressValid: s.ditFirstSet.Load(),
		DahFirstPressMS:    s.dahFirstMS.Load(),
		DahFirstPressValid: s.dahFirstSet.Load(),
	}
}
