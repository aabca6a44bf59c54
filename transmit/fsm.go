// Package transmit implements the Transmission FSM (spec.md §4.6): a
// non-blocking, time-driven state machine that drains the element queue and
// renders each element onto the key line and sidetone with exact
// unit-multiple timing. It is grounded on the teacher's transport package,
// which counts hardware/timing faults with a monotonic counter and a
// log.Printf tag rather than propagating them — the same policy spec.md §7
// requires here (HardwareError, TimingMiss: counted, never escaped).
package transmit

import (
	"log"
	"sync/atomic"

	"github.com/kb9qrp/ironkeyer/clock"
	"github.com/kb9qrp/ironkeyer/element"
	"github.com/kb9qrp/ironkeyer/hal"
)

// Dequeuer is the narrow consumer-side contract the FSM needs from the
// element queue; queue.Queue satisfies it.
type Dequeuer interface {
	TryDequeue() (element.Element, bool)
}

// FSM is the Transmission FSM. It is driven by one owner (the main loop);
// none of its methods are safe to call concurrently.
type FSM struct {
	state  State
	key    hal.KeyOutput
	tone   hal.ToneOutput
	unitMS uint16

	hardwareErrors atomic.Uint64
	timingMisses   atomic.Uint64
}

// NewFSM creates a Transmission FSM in its initial Idle state, driving the
// given key/tone outputs at the given unit duration.
func NewFSM(key hal.KeyOutput, tone hal.ToneOutput, unitMS uint16) *FSM {
	return &FSM{key: key, tone: tone, unitMS: unitMS}
}

// State returns the FSM's current state.
func (f *FSM) State() State { return f.state }

// SetUnitMS updates the unit duration used for elements scheduled from this
// point on. Per spec.md §4.7 an element already in flight completes at its
// originally scheduled duration; only the next element picks up the change.
func (f *FSM) SetUnitMS(ms uint16) {
	f.unitMS = ms
}

// HardwareErrors returns the running count of key/tone driver failures.
func (f *FSM) HardwareErrors() uint64 { return f.hardwareErrors.Load() }

// TimingMisses returns the running count of transitions observed later than
// tolerance past their scheduled deadline.
func (f *FSM) TimingMisses() uint64 { return f.timingMisses.Load() }

// Tick advances the FSM by one step at the given time, pulling one new
// element from q if idle. It never blocks and never returns an error: faults
// are counted internally and logged (spec.md §7).
func (f *FSM) Tick(now uint32, q Dequeuer) {
	switch f.state.Kind {
	case Idle:
		e, ok := q.TryDequeue()
		if !ok {
			return
		}
		f.beginElement(e, now)

	case KeyedDit, KeyedDah:
		if clock.Before(now, f.state.EndMS) {
			return
		}
		f.noteTimingMiss(now)
		f.setOutputs(false)
		f.state = State{Kind: InterElementGap, EndMS: now + clock.FromUnits(1, f.unitMS)}

	case InterElementGap, CharGap:
		if clock.Before(now, f.state.EndMS) {
			return
		}
		f.noteTimingMiss(now)
		f.state = State{Kind: Idle}
	}
}

// beginElement transitions out of Idle to render e.
func (f *FSM) beginElement(e element.Element, now uint32) {
	switch e {
	case element.Dit:
		f.setOutputs(true)
		f.state = State{Kind: KeyedDit, EndMS: now + clock.FromUnits(e.DurationUnits(), f.unitMS)}
	case element.Dah:
		f.setOutputs(true)
		f.state = State{Kind: KeyedDah, EndMS: now + clock.FromUnits(e.DurationUnits(), f.unitMS)}
	case element.CharSpace:
		// CharSpace is rendered as its own unkeyed 3-unit gap. It does
		// not replace the 1-unit inter-element gap of a preceding keyed
		// element: that gap always runs first, so the silence after a
		// keyed element followed by CharSpace is at least 4 units.
		f.setOutputs(false)
		f.state = State{Kind: CharGap, EndMS: now + clock.FromUnits(e.DurationUnits(), f.unitMS)}
	}
}

// setOutputs drives the key line and sidetone together; a driver failure on
// either is counted and logged, never propagated (spec.md §7 HardwareError).
func (f *FSM) setOutputs(on bool) {
	if err := f.key.SetKey(on); err != nil {
		f.hardwareErrors.Add(1)
		log.Printf("[Transmit] key output error: %v", err)
	}
	if err := f.tone.SetTone(on); err != nil {
		f.hardwareErrors.Add(1)
		log.Printf("[Transmit] tone output error: %v", err)
	}
}

// noteTimingMiss counts a transition that fired later than tolerance past
// its scheduled deadline (spec.md §7 TimingMiss, §6 tolerance: ±1ms or ±1%
// of the unit, whichever is greater). It never adjusts f.state.EndMS itself;
// the caller always derives the next deadline from now, the actual
// transition time, so a miss cannot cascade into subsequent scheduling.
func (f *FSM) noteTimingMiss(now uint32) {
	overrun := clock.ElapsedSince(now, f.state.EndMS)
	if overrun <= f.tolerance() {
		return
	}
	f.timingMisses.Add(1)
	log.Printf("[Transmit] timing miss: %dms late in state %s", overrun, f.state.Kind)
}

func (f *FSM) tolerance() uint32 {
	pct := uint32(f.unitMS) / 100
	if pct > 1 {
		return pct
	}
	return 1
}
