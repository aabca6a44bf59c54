// Package loop implements the cooperative main-loop pass (spec.md §5): a
// single-threaded five-phase cycle that drives the Element FSM off a
// paddle-changed flag or a periodic tick, drives the Transmission FSM every
// pass, and reports whether there was any work to do so the caller can
// issue a wait-for-interrupt hint. It is grounded on the original Rust
// firmware's sender_task/evaluator_task pairing (two independent loops around one
// queue) collapsed into the single cooperative loop spec.md's design notes
// call for when no scheduler is present.
package loop

import (
	"github.com/kb9qrp/ironkeyer/clock"
	"github.com/kb9qrp/ironkeyer/element"
	"github.com/kb9qrp/ironkeyer/hal"
	"github.com/kb9qrp/ironkeyer/metrics"
	"github.com/kb9qrp/ironkeyer/paddle"
	"github.com/kb9qrp/ironkeyer/queue"
	"github.com/kb9qrp/ironkeyer/transmit"
)

// tickInterval is the unconditional Element FSM cadence (spec.md §4.4),
// independent of paddle motion, so squeeze progression and character-space
// deadlines are still observed when no edge has occurred.
const tickInterval = 10 // ms

// Runner owns both FSMs, the queue between them, the paddle state, and the
// clock, and executes one five-phase pass per call to Tick. It is not safe
// for concurrent use; the paddle edge callback that feeds it (via
// paddle.State.OnEdge) is the only thing that may run concurrently with
// Tick, and paddle.State is built for exactly that.
type Runner struct {
	clock   clock.Source
	paddles *paddle.State
	element *element.FSM
	queue   *queue.Queue
	enqueue *countingEnqueuer
	tx      *transmit.FSM
	board   hal.Board
	metrics *metrics.Collectors

	lastElementTick uint32
	paddleChanged   bool
}

// countingEnqueuer wraps the queue on the producer side so a dropped element
// (QueueFull, spec.md §7) is observed once, at the point of the failed
// enqueue, rather than reconstructed after the fact from FSM return values.
type countingEnqueuer struct {
	q *queue.Queue
	m *metrics.Collectors
}

func (c *countingEnqueuer) TryEnqueue(e element.Element) bool {
	if c.q.TryEnqueue(e) {
		return true
	}
	if c.m != nil {
		c.m.QueueDrops.Inc()
	}
	return false
}

// New assembles a Runner from its component parts. cfg must already be
// validated (element.NewConfig / boardconfig.Load).
func New(clk clock.Source, board hal.Board, cfg element.Config, priority element.Priority, m *metrics.Collectors) *Runner {
	q := queue.New(cfg.QueueCapacity())
	r := &Runner{
		clock:   clk,
		paddles: paddle.NewState(cfg.DebounceMS()),
		element: element.NewFSM(cfg, priority),
		queue:   q,
		enqueue: &countingEnqueuer{q: q, m: m},
		tx:      transmit.NewFSM(board.Key, board.Tone, cfg.UnitMS()),
		board:   board,
		metrics: m,
	}
	return r
}

// Arm registers the paddle-edge interrupt for both sides, wiring hardware
// edges through to paddle.State.OnEdge and setting the paddle-changed flag.
// Per spec.md §9 this must be the last step of init, after every other
// field above is constructed.
func (r *Runner) Arm() error {
	for _, side := range [...]element.Side{element.SideDit, element.SideDah} {
		side := side
		err := r.board.Interrupts.RegisterPaddleInterrupt(side, func(s element.Side, pressed bool, nowMS uint32) {
			r.paddles.OnEdge(s, pressed, nowMS)
			r.paddleChanged = true
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Tick runs one main-loop pass at time now and reports whether any FSM had
// work to do (spec.md §5 phase 5's wait-for-interrupt condition: no work
// pending means the caller may safely block until the next interrupt).
func (r *Runner) Tick(now uint32) (didWork bool) {
	ranElement := false

	// Phase 1: paddle-changed flag takes priority over the periodic tick.
	if r.paddleChanged {
		r.paddleChanged = false
		ranElement = true
	} else if clock.ElapsedSince(now, r.lastElementTick) >= tickInterval {
		ranElement = true
	}

	if ranElement {
		r.lastElementTick = now
		n := r.element.Tick(r.paddles.Snapshot(), now, r.enqueue)
		r.observeEnqueue(n)
	}

	// Phase 3: Transmission FSM runs every pass, unconditionally.
	beforeErrors, beforeMisses := r.tx.HardwareErrors(), r.tx.TimingMisses()
	r.tx.Tick(now, r.queue)
	r.observeFaults(beforeErrors, beforeMisses)

	if stub, ok := r.board.Key.(interface{ RecordEdge(uint32) }); ok {
		stub.RecordEdge(now)
	}

	return ranElement || r.tx.State().Kind != transmit.Idle || !r.queue.IsEmpty()
}

// SetConfig reconfigures the running keyer. Per spec.md §4.7 the caller must
// only do this while both FSMs report idle (see Idle below).
func (r *Runner) SetConfig(cfg element.Config) {
	r.element.SetConfig(cfg)
	r.paddles.SetDebounce(cfg.DebounceMS())
	r.tx.SetUnitMS(cfg.UnitMS())
}

// Idle reports whether both FSMs and the queue are quiescent.
func (r *Runner) Idle() bool {
	return r.element.State().Kind == element.StateIdle &&
		r.tx.State().Kind == transmit.Idle &&
		r.queue.IsEmpty()
}

// Keyed reports whether the Transmission FSM currently has the key line
// asserted. Used by callers rendering the key line (cmd/keyerfirmware's
// telemetry) without reaching past the Runner into the board driver
// directly.
func (r *Runner) Keyed() bool { return r.tx.State().IsKeyed() }

// TxKind returns the Transmission FSM's current state kind, so a caller can
// tell what is actually being rendered right now (KeyedDit/KeyedDah/CharGap)
// from a board gone quiet (Idle/InterElementGap), rather than reaching for
// whatever element the Element FSM enqueued last, which stays stuck on the
// most recent value long after transmission has finished with it.
func (r *Runner) TxKind() transmit.Kind { return r.tx.State().Kind }

func (r *Runner) observeEnqueue(n int) {
	if r.metrics == nil || n == 0 {
		return
	}
	r.metrics.ElementsEmitted.WithLabelValues(r.element.LastEmitted().String()).Inc()
}

func (r *Runner) observeFaults(beforeErrors, beforeMisses uint64) {
	if r.metrics == nil {
		return
	}
	if d := r.tx.HardwareErrors() - beforeErrors; d > 0 {
		r.metrics.HardwareErrors.Add(float64(d))
	}
	if d := r.tx.TimingMisses() - beforeMisses; d > 0 {
		r.metrics.TimingMisses.Add(float64(d))
	}
}
