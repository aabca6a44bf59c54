// Package hal defines the narrow hardware boundary the keyer core consumes
// (spec.md §4.8): sampling paddles, driving the key line and sidetone, and
// arranging for paddle edges to reach the debouncer. It is grounded on the
// teacher's transport.RadioDriver interface — a small, synchronous contract
// implemented once per platform — generalised from a radio transceiver to a
// keyer's four hardware primitives.
package hal

import "github.com/kb9qrp/ironkeyer/element"

// InputSampler reads the logical (already electrically-normalised) state of
// a paddle contact. Implementations decide active-high vs. active-low; the
// core only ever sees "pressed" or "not pressed."
type InputSampler interface {
	SamplePaddle(side element.Side) (pressed bool, err error)
}

// KeyOutput asserts or de-asserts the transmitter key line. SetKey must be
// idempotent: calling it twice with the same value is a no-op at the
// hardware level.
type KeyOutput interface {
	SetKey(on bool) error
}

// ToneOutput asserts or de-asserts the audible sidetone. A platform without
// a sidetone can satisfy this with a no-op driver.
type ToneOutput interface {
	SetTone(on bool) error
}

// EdgeCallback is invoked once per accepted paddle edge, with the paddle
// side, its new pressed state, and the monotonic millisecond timestamp of
// the edge. It is called from whatever context the platform's interrupt
// runs in and must not block or allocate.
type EdgeCallback func(side element.Side, pressed bool, nowMS uint32)

// InterruptSource arranges for a platform's paddle GPIO interrupts to
// invoke an EdgeCallback. RegisterPaddleInterrupt is expected to be called
// exactly once per side during init, before the main loop starts.
type InterruptSource interface {
	RegisterPaddleInterrupt(side element.Side, cb EdgeCallback) error
}

// Board bundles the four hardware contracts a running keyer needs. A
// platform driver package (driver/gpio for the TinyGo target, driver/stub
// for host simulation and tests) constructs one of these and hands it to
// the main loop's Runner.
type Board struct {
	Input      InputSampler
	Key        KeyOutput
	Tone       ToneOutput
	Interrupts InterruptSource
}
