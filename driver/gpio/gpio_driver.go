// Package gpio implements a hal.Board backed by real microcontroller pins
// via TinyGo's machine package. It is grounded on the teacher's driver/nrf
// package (register-level access gated by the same build tag) generalised
// to GPIO/PWM instead of a radio peripheral. Drivers are built with the New
// constructor; there is no package-level singleton (SetXDriver/MustX).
//
//go:build tinygo || baremetal

package gpio

import (
	"machine"

	"github.com/kb9qrp/ironkeyer/clock"
	"github.com/kb9qrp/ironkeyer/element"
	"github.com/kb9qrp/ironkeyer/hal"
)

// PinSet is the board-specific pin assignment a target's init() supplies.
// ToneHz is the sidetone PWM frequency; the core itself never chooses a
// frequency (spec.md §6).
type PinSet struct {
	DitPin   machine.Pin
	DahPin   machine.Pin
	KeyPin   machine.Pin
	TonePin  machine.Pin
	ToneHz   uint64
	ActiveLo bool // paddle contacts read low when pressed
}

// Driver is a hal.Board implementation driving real GPIO/PWM peripherals.
type Driver struct {
	pins  PinSet
	pwm   machine.PWM
	ch    uint8
	clock clock.Source

	interruptCBs [2]hal.EdgeCallback
}

// New configures the given pins for keyer use and returns a ready driver.
// src times paddle edges seen from interrupt context; it should be the same
// clock.Source the main loop's Runner ticks against. Interrupts are not
// armed until RegisterPaddleInterrupt is called for each side, per spec.md
// §9 ("init() must arm interrupts last").
func New(pins PinSet, pwm machine.PWM, src clock.Source) (*Driver, error) {
	pins.DitPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	pins.DahPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	pins.KeyPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pins.TonePin.Configure(machine.PinConfig{Mode: machine.PinOutput})

	if err := pwm.Configure(machine.PWMConfig{Period: 1e9 / pins.ToneHz}); err != nil {
		return nil, err
	}
	ch, err := pwm.Channel(pins.TonePin)
	if err != nil {
		return nil, err
	}

	return &Driver{pins: pins, pwm: pwm, ch: ch, clock: src}, nil
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

// SamplePaddle implements hal.InputSampler.
func (d *Driver) SamplePaddle(side element.Side) (bool, error) {
	pin := d.pins.DitPin
	if side == element.SideDah {
		pin = d.pins.DahPin
	}
	level := pin.Get()
	if d.pins.ActiveLo {
		return !level, nil
	}
	return level, nil
}

// SetKey implements hal.KeyOutput.
func (d *Driver) SetKey(on bool) error {
	d.pins.KeyPin.Set(on)
	return nil
}

// SetTone implements hal.ToneOutput: keys a 50% duty cycle PWM at ToneHz
// on, silences it off.
func (d *Driver) SetTone(on bool) error {
	if on {
		return d.pwm.Set(d.ch, d.pwm.Top()/2)
	}
	return d.pwm.Set(d.ch, 0)
}

// RegisterPaddleInterrupt implements hal.InterruptSource, arming a
// change-on-both-edges GPIO interrupt that translates directly into an
// EdgeCallback invocation. The callback is expected to feed
// paddle.State.OnEdge; it runs in interrupt context, so it must not block
// or allocate, which paddle.State.OnEdge honours by construction.
func (d *Driver) RegisterPaddleInterrupt(side element.Side, cb hal.EdgeCallback) error {
	d.interruptCBs[side] = cb
	pin := d.pins.DitPin
	if side == element.SideDah {
		pin = d.pins.DahPin
	}
	return pin.SetInterrupt(machine.PinToggle, func(machine.Pin) {
		pressed, _ := d.SamplePaddle(side)
		d.interruptCBs[side](side, pressed, d.clock.Now())
	})
}
