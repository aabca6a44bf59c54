//go:build !tinygo && !baremetal

// Package ironkeyer assembles a hal.Board for the current build target.
// Adapted from the teacher's constructors_host.go/constructors_nrf.go split
// (which picked a stub or real radio driver behind the same two build
// tags): here the choice is between the in-memory stub board and real
// GPIO/PWM, not between a fake and a real radio.
package ironkeyer

import (
	"github.com/kb9qrp/ironkeyer/driver/stub"
	"github.com/kb9qrp/ironkeyer/hal"
)

// NewBoard returns an in-memory hal.Board suitable for tests and
// cmd/keyersim, along with the concrete stub.Driver for callers that need
// to inject paddle edges or inspect the key line directly.
func NewBoard() (hal.Board, *stub.Driver) {
	drv := stub.New()
	return drv.Board(), drv
}
