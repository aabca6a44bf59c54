package clock

import "time"

// Monotonic is a Source backed by the runtime's monotonic clock. TinyGo
// implements time.Now() on top of the target's free-running hardware timer,
// so this single implementation serves both the embedded target build and
// host builds (tests, simulator) without a build-tag split.
type Monotonic struct {
	epoch time.Time
}

// NewMonotonic creates a Monotonic clock anchored at the current instant.
// init() must construct this before arming any interrupt, so that the first
// paddle edge observed is never measured against a zero epoch.
func NewMonotonic() *Monotonic {
	return &Monotonic{epoch: time.Now()}
}

func (m *Monotonic) Now() uint32 {
	return uint32(time.Since(m.epoch).Milliseconds())
}
