// Package stub implements a hal.Board for host-side testing and the
// terminal simulator: no real GPIO, just an in-memory record of every key
// and tone transition plus paddle state a test or the simulator TUI can
// poke directly. Grounded on the teacher's driver/stub mock radio driver,
// which buffered frames in a mutex-guarded ring rather than touching
// hardware; here the "frames" are key-line edges instead of radio frames.
//
//go:build !tinygo && !baremetal

package stub

import (
	"sync"

	"github.com/kb9qrp/ironkeyer/element"
	"github.com/kb9qrp/ironkeyer/hal"
)

// Edge records one key/tone transition, timestamped by the caller.
type Edge struct {
	NowMS uint32
	Key   bool
	Tone  bool
}

// Driver is an in-memory hal.Board implementation. Zero value is not
// usable; construct with New.
type Driver struct {
	mu sync.Mutex

	keyOn  bool
	toneOn bool
	log    []Edge

	ditPressed bool
	dahPressed bool

	interruptCBs [2]hal.EdgeCallback
}

// New returns a ready-to-use stub driver.
func New() *Driver {
	return &Driver{}
}

// Board returns a hal.Board wired to this driver's four contracts.
func (d *Driver) Board() hal.Board {
	return hal.Board{
		Input:      d,
		Key:        d,
		Tone:       d,
		Interrupts: d,
	}
}

// SetKey implements hal.KeyOutput.
func (d *Driver) SetKey(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.keyOn = on
	return nil
}

// SetTone implements hal.ToneOutput.
func (d *Driver) SetTone(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.toneOn = on
	return nil
}

// SamplePaddle implements hal.InputSampler.
func (d *Driver) SamplePaddle(side element.Side) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if side == element.SideDit {
		return d.ditPressed, nil
	}
	return d.dahPressed, nil
}

// RegisterPaddleInterrupt implements hal.InterruptSource. The stub has no
// real interrupt line; PressPaddle/ReleasePaddle below invoke the callback
// directly, standing in for the edge a target's GPIO ISR would fire.
func (d *Driver) RegisterPaddleInterrupt(side element.Side, cb hal.EdgeCallback) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.interruptCBs[side] = cb
	return nil
}

// PressPaddle simulates a paddle closure at nowMS, firing the registered
// callback exactly as a real edge interrupt would.
func (d *Driver) PressPaddle(side element.Side, nowMS uint32) {
	d.setPaddleAndFire(side, true, nowMS)
}

// ReleasePaddle simulates a paddle release at nowMS.
func (d *Driver) ReleasePaddle(side element.Side, nowMS uint32) {
	d.setPaddleAndFire(side, false, nowMS)
}

func (d *Driver) setPaddleAndFire(side element.Side, pressed bool, nowMS uint32) {
	d.mu.Lock()
	if side == element.SideDit {
		d.ditPressed = pressed
	} else {
		d.dahPressed = pressed
	}
	cb := d.interruptCBs[side]
	d.mu.Unlock()

	if cb != nil {
		cb(side, pressed, nowMS)
	}
}

// RecordEdge appends the current key/tone state to the driver's log if it
// differs from the last recorded entry. The main loop's Runner calls this
// once per pass so tests and the simulator can replay the exact key-line
// waveform without duplicate flat entries.
func (d *Driver) RecordEdge(nowMS uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n := len(d.log); n > 0 {
		last := d.log[n-1]
		if last.Key == d.keyOn && last.Tone == d.toneOn {
			return
		}
	}
	d.log = append(d.log, Edge{NowMS: nowMS, Key: d.keyOn, Tone: d.toneOn})
}

// Log returns a copy of every recorded transition.
func (d *Driver) Log() []Edge {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Edge, len(d.log))
	copy(out, d.log)
	return out
}

// KeyOn reports the driver's current key-line state.
func (d *Driver) KeyOn() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.keyOn
}
