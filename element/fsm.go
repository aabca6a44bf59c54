package element

import (
	"github.com/kb9qrp/ironkeyer/clock"
)

// Priority is the interface the FSM consults when starting a squeeze: which
// paddle was pressed first (spec.md §4.3/§4.4). paddle.PriorityController
// satisfies this; the FSM depends on the interface rather than the concrete
// type to keep the element package independent of paddle.
type Priority interface {
	Update(PaddleView)
	Choose() (Element, bool)
	SetMemory(Element)
	TakeMemory() (Element, bool)
	ClearHistory()
}

// FSM is the mode-aware Element FSM (spec.md §4.4). It is driven by one
// owner (the main loop / Runner); none of its methods are safe to call
// concurrently.
type FSM struct {
	state       FSMState
	cfg         Config
	priority    Priority
	lastEmitted Element
	lastEmitMS  uint32
	hasEmitted  bool
}

// NewFSM creates an Element FSM in its initial Idle state.
func NewFSM(cfg Config, priority Priority) *FSM {
	return &FSM{state: Idle(), cfg: cfg, priority: priority}
}

// State returns the FSM's current state.
func (f *FSM) State() FSMState { return f.state }

// Config returns the FSM's configuration.
func (f *FSM) Config() Config { return f.cfg }

// SetConfig installs a new configuration. Per spec.md §4.7 this should only
// be called while the FSM and the paired Transmission FSM are both idle; the
// FSM itself does not enforce that, it trusts the caller (the main loop owns
// both FSMs and can check).
func (f *FSM) SetConfig(cfg Config) {
	f.cfg = cfg
	if !cfg.Mode().HasPriority() {
		f.priority.ClearHistory()
	}
}

// Reset returns the FSM to Idle and drops all priority-controller history.
func (f *FSM) Reset() {
	f.state = Idle()
	f.priority.ClearHistory()
}

// Enqueuer is the narrow producer-side contract the FSM needs from the
// element queue (spec.md §4.5); queue.Queue satisfies it.
type Enqueuer interface {
	TryEnqueue(Element) bool
}

// Tick advances the FSM by one step given the current paddle view and
// clock, attempting to enqueue whatever element(s) the transition produces.
// It returns the number of elements successfully enqueued (0 or 1 in every
// transition this FSM defines). A failed enqueue (QueueFull) is swallowed
// per spec.md §4.4/§7: the FSM's state still advances where the transition
// doesn't strictly require the enqueue to have succeeded, and where it does
// (continuing to hold a paddle, for instance) the FSM retries the same
// emission once dueToReemit says the previous one's own duration has
// elapsed, because the paddle is still held.
func (f *FSM) Tick(pv PaddleView, now uint32, q Enqueuer) int {
	// Priority history tracks first-press order for every mode: spec.md's
	// Open Question on squeeze-start ordering is resolved in favour of
	// uniform first-press order across ModeA/ModeB/SuperKeyer, so the
	// controller must observe every tick regardless of mode, not only in
	// SuperKeyer.
	f.priority.Update(pv)
	both := pv.BothPressed()
	released := pv.BothReleased()

	switch f.state.Kind {
	case StateIdle:
		return f.tickIdle(pv, both, now, q)

	case StateDitHold:
		return f.tickDitHold(pv, both, now, q)

	case StateDahHold:
		return f.tickDahHold(pv, both, now, q)

	case StateSqueeze:
		return f.tickSqueeze(pv, both, released, now, q)

	case StateMemoryPending:
		return f.tickMemoryPending(now, q)

	case StateCharSpacePending:
		return f.tickCharSpacePending(pv, both, now, q)
	}
	return 0
}

// emit attempts to enqueue e, returning 1 on success and 0 if the queue is
// full (spec.md §7 QueueFull: swallowed; each caller decides whether its
// state advances anyway, and the FSM retries the derivation on a later
// tick).
func (f *FSM) emit(e Element, now uint32, q Enqueuer) int {
	if q.TryEnqueue(e) {
		f.lastEmitted = e
		f.lastEmitMS = now
		f.hasEmitted = true
		return 1
	}
	return 0
}

// dueToReemit reports whether the previous emission's own timing has
// elapsed enough that a fresh attempt won't cause back-pressure (spec.md
// :141): a sustained hold or squeeze must pace its repeats off the
// duration of what it just sent, not off the FSM's unconditional 10ms tick
// cadence (loop.tickInterval). Only the FSM's very first emission is never
// held back by this check; the timing carries across state changes, so the
// first alternation after a hold becomes a squeeze waits on the held
// element too.
func (f *FSM) dueToReemit(now uint32) bool {
	if !f.hasEmitted {
		return true
	}
	return clock.ElapsedSince(now, f.lastEmitMS) >= clock.FromUnits(f.lastEmitted.DurationUnits(), f.cfg.UnitMS())
}

// LastEmitted returns the most recently enqueued element. Meaningful only
// after a Tick call that returned a nonzero count; used by callers (the
// main loop's metrics) that want to label emissions by element kind.
func (f *FSM) LastEmitted() Element { return f.lastEmitted }

// postActiveState computes the state to land in once a hold or squeeze has
// fully released: CharSpacePending with a deadline unit*3 out if the
// configuration enables character spacing, Idle otherwise.
func (f *FSM) postActiveState(now uint32) FSMState {
	if f.cfg.CharSpaceEnabled() {
		return charSpacePending(now + f.cfg.CharSpaceDurationMS())
	}
	return Idle()
}

// tickIdle handles the neutral state: a fresh press on one or both paddles
// starts a hold or a squeeze; no press leaves the FSM in Idle.
func (f *FSM) tickIdle(pv PaddleView, both bool, now uint32, q Enqueuer) int {
	switch {
	case both:
		chosen, ok := f.priority.Choose()
		if !ok {
			chosen = Dah
		}
		f.state = squeeze(chosen)
		return f.emit(chosen, now, q)
	default:
		single, ok := pv.SingleElement()
		if !ok {
			return 0
		}
		if single == Dit {
			f.state = ditHold()
		} else {
			f.state = dahHold()
		}
		return f.emit(single, now, q)
	}
}

// tickDitHold handles the single-paddle-Dit-held state. A sustained hold
// re-attempts the emit only once the previous Dit's own unit duration has
// elapsed (dueToReemit); the periodic 10ms tick alone must not enqueue a
// fresh Dit on every pass.
func (f *FSM) tickDitHold(pv PaddleView, both bool, now uint32, q Enqueuer) int {
	switch {
	case both:
		// Entering Squeeze from a hold does not itself emit the
		// alternation partner; the Squeeze handler emits it on a later
		// tick, once the held element's duration has elapsed
		// (original_source keyer-core::fsm).
		f.state = squeeze(Dit)
		return 0
	case pv.DitPressed:
		if !f.dueToReemit(now) {
			return 0
		}
		return f.emit(Dit, now, q)
	case pv.DahPressed:
		// Dit released and Dah newly pressed in the same tick, no
		// overlap: treated as a fresh hold rather than a squeeze.
		f.state = dahHold()
		return f.emit(Dah, now, q)
	default:
		f.state = f.postActiveState(now)
		return 0
	}
}

// tickDahHold handles the single-paddle-Dah-held state, symmetric to
// tickDitHold.
func (f *FSM) tickDahHold(pv PaddleView, both bool, now uint32, q Enqueuer) int {
	switch {
	case both:
		f.state = squeeze(Dah)
		return 0
	case pv.DahPressed:
		if !f.dueToReemit(now) {
			return 0
		}
		return f.emit(Dah, now, q)
	case pv.DitPressed:
		f.state = ditHold()
		return f.emit(Dit, now, q)
	default:
		f.state = f.postActiveState(now)
		return 0
	}
}

// tickSqueeze handles both-paddles-held alternation and its release. The
// alternation itself is paced the same way as a sustained single-paddle
// hold: the next element isn't emitted, and the state doesn't flip, until
// the one just sent has run its own duration.
func (f *FSM) tickSqueeze(pv PaddleView, both, released bool, now uint32, q Enqueuer) int {
	switch {
	case both:
		if !f.dueToReemit(now) {
			return 0
		}
		next := f.state.Current.Opposite()
		f.state = squeeze(next)
		return f.emit(next, now, q)
	case released:
		if !f.cfg.Mode().HasMemory() {
			// No memory: the in-progress element already emitted
			// completes; nothing further is owed.
			f.state = f.postActiveState(now)
		} else {
			opp := f.state.Current.Opposite()
			f.state = memoryPending(opp)
			if f.cfg.Mode().HasPriority() {
				f.priority.SetMemory(opp)
			}
		}
		return 0
	default:
		// Exactly one paddle remains held: continue with that
		// paddle's own element.
		single, _ := pv.SingleElement()
		if single == Dit {
			f.state = ditHold()
		} else {
			f.state = dahHold()
		}
		return f.emit(single, now, q)
	}
}

// tickMemoryPending drains the single Curtis-A memory element owed after a
// ModeB/SuperKeyer squeeze release. The element itself lives in FSMState's
// Pending field, the source of truth; for SuperKeyer the priority
// controller's own memory latch is drained in parallel purely so its
// has-memory bookkeeping cannot leak into the next squeeze.
func (f *FSM) tickMemoryPending(now uint32, q Enqueuer) int {
	n := f.emit(f.state.Pending, now, q)
	if n == 0 {
		return 0
	}
	if f.cfg.Mode().HasPriority() {
		f.priority.TakeMemory()
	}
	f.state = f.postActiveState(now)
	return n
}

// tickCharSpacePending handles the deferred inter-character gap. A paddle
// pressed before the deadline does not preempt the gap; it is simply
// ignored until the deadline passes, at which point it is treated as a
// fresh Idle-style transition (spec.md §4.4 worked example 5).
func (f *FSM) tickCharSpacePending(pv PaddleView, both bool, now uint32, q Enqueuer) int {
	if clock.Before(now, f.state.Deadline) {
		return 0
	}
	if pv.BothReleased() {
		f.state = Idle()
		return f.emit(CharSpace, now, q)
	}
	return f.tickIdle(pv, both, now, q)
}
