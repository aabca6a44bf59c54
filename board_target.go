//go:build tinygo || baremetal

package ironkeyer

import (
	"machine"

	"github.com/kb9qrp/ironkeyer/clock"
	"github.com/kb9qrp/ironkeyer/driver/gpio"
	"github.com/kb9qrp/ironkeyer/hal"
)

// NewBoard configures the given pins and PWM peripheral and returns the
// resulting hal.Board. src times paddle edges seen from interrupt context;
// pass the same clock.Source the main loop's Runner ticks against.
func NewBoard(pins gpio.PinSet, pwm machine.PWM, src clock.Source) (hal.Board, error) {
	drv, err := gpio.New(pins, pwm, src)
	if err != nil {
		return hal.Board{}, err
	}
	return drv.Board(), nil
}
