// Package clock provides the monotonic millisecond time abstraction shared by
// the Element and Transmission FSMs. It is deliberately tiny: a free-running
// counter, wrapping-safe elapsed-time arithmetic, and unit-to-millisecond
// conversion. Everything above this package works in "ticks since boot," not
// wall-clock time, so the same FSM code runs unmodified against a real
// hardware timer or a virtual clock driven by a test.
package clock

// Source is the interface the core consumes. The target firmware and the
// host simulator wire a Monotonic (time.Now-based; on TinyGo that is the
// target's hardware timer); host tests wire a Virtual that only advances
// when told to.
type Source interface {
	// Now returns the current time in milliseconds since an arbitrary
	// epoch. The value wraps at 2^32; callers must use ElapsedSince for
	// any comparison that might span a wrap.
	Now() uint32
}

// ElapsedSince returns the number of milliseconds that have passed since
// earlier, treating the subtraction as unsigned and therefore tolerating
// exactly one wrap of the underlying uint32 counter. This is the only safe
// way to compare two timestamps taken from a Source.
func ElapsedSince(now, earlier uint32) uint32 {
	return now - earlier
}

// Before reports whether a occurred strictly before b, accounting for wrap.
// Two timestamps more than 2^31ms (~24.8 days) apart cannot be ordered
// correctly; that interval dwarfs any realistic paddle press or keyer
// session, so the ambiguity is accepted.
func Before(a, b uint32) bool {
	return int32(a-b) < 0
}

// FromUnits converts a count of keyer "units" (the Dit-length time quantum)
// into milliseconds given the configured unit duration.
func FromUnits(units uint32, unitMS uint16) uint32 {
	return units * uint32(unitMS)
}
