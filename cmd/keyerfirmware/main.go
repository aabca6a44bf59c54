// Command keyerfirmware is the embedded target entrypoint: it wires real
// GPIO/PWM pins into loop.Runner, drives it in a tight loop, and writes a
// telemetry frame to UART0 after every pass so cmd/keyermonitor can render
// the board live. Grounded on the teacher's examples/transmitter/main.go (a
// target-only main under the same build tag, a short startup delay
// followed by an infinite drive loop) and constructors_nrf.go's hardware
// selection, generalised here into ironkeyer.NewBoard.
//
//go:build tinygo || baremetal

package main

import (
	"machine"
	"time"

	"github.com/kb9qrp/ironkeyer"
	"github.com/kb9qrp/ironkeyer/clock"
	"github.com/kb9qrp/ironkeyer/driver/gpio"
	"github.com/kb9qrp/ironkeyer/element"
	"github.com/kb9qrp/ironkeyer/loop"
	"github.com/kb9qrp/ironkeyer/paddle"
	"github.com/kb9qrp/ironkeyer/telemetry"
	"github.com/kb9qrp/ironkeyer/transmit"
)

// defaultPins is the reference board's wiring. A fork targeting different
// hardware only needs to change this table; nothing else in this file is
// board-specific.
var defaultPins = gpio.PinSet{
	DitPin:   machine.D2,
	DahPin:   machine.D3,
	KeyPin:   machine.D4,
	TonePin:  machine.D5,
	ToneHz:   600,
	ActiveLo: true,
}

func main() {
	time.Sleep(200 * time.Millisecond) // let the paddle lines settle on cold boot

	machine.UART0.Configure(machine.UARTConfig{BaudRate: 115200})

	clk := clock.NewMonotonic()
	board, err := ironkeyer.NewBoard(defaultPins, machine.PWM0, clk)
	if err != nil {
		println("keyerfirmware: board init failed:", err.Error())
		return
	}

	// TODO(kb9qrp): load from an on-flash boardconfig.Profile once TinyGo's
	// littlefs support stabilises; a baked-in config ships until then.
	cfg, err := element.NewConfig(element.SuperKeyer, 60, 10, 16, true)
	if err != nil {
		println("keyerfirmware: bad config:", err.Error())
		return
	}

	runner := loop.New(clk, board, cfg, paddle.NewPriorityController(), nil)
	if err := runner.Arm(); err != nil {
		println("keyerfirmware: arm failed:", err.Error())
		return
	}

	for {
		now := clk.Now()
		runner.Tick(now)
		emitTelemetry(now, runner)
	}
}

// emitTelemetry reports what the Transmission FSM is rendering right now,
// not what the Element FSM last enqueued: the latter never resets and would
// keep reporting the previous element long after the board fell quiet.
func emitTelemetry(now uint32, runner *loop.Runner) {
	code := telemetry.CodeRest
	switch runner.TxKind() {
	case transmit.KeyedDit:
		code = telemetry.CodeDit
	case transmit.KeyedDah:
		code = telemetry.CodeDah
	case transmit.CharGap:
		code = telemetry.CodeCharSpace
	}
	frame := telemetry.Encode(telemetry.Frame{
		TimestampMS: now,
		Element:     code,
		Keyed:       runner.Keyed(),
	})
	machine.UART0.Write(frame)
}
