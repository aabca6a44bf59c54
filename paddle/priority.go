package paddle

import "github.com/kb9qrp/ironkeyer/element"

// PriorityController answers "which element next?" for SuperKeyer under
// squeeze (spec.md §4.3). It is owned by the Element FSM, not by State: it
// tracks earliest-still-held press times and a one-shot memory element, both
// of which only make sense relative to a single FSM's notion of "the
// current squeeze," never across interrupt/foreground boundaries.
//
// Grounded on keyer-core::controller::SuperKeyerController from
// original_source/.
type PriorityController struct {
	ditPressMS    uint32
	ditHeld       bool
	dahPressMS    uint32
	dahHeld       bool
	memoryElement element.Element
	hasMemory     bool
}

// NewPriorityController returns a controller with no press history.
func NewPriorityController() *PriorityController {
	return &PriorityController{}
}

// Update records the current snapshot's press state. Each paddle's
// earliest-held timestamp is latched the first time Update observes it held
// and cleared the moment Update observes it released — the controller never
// reads a paddle's own clock, only what the snapshot reports as "currently
// held" plus the timestamp the snapshot already carries.
func (c *PriorityController) Update(snap element.PaddleView) {
	if snap.DitPressed {
		if !c.ditHeld {
			c.ditPressMS = snap.DitFirstPressMS
			c.ditHeld = true
		}
	} else {
		c.ditHeld = false
	}

	if snap.DahPressed {
		if !c.dahHeld {
			c.dahPressMS = snap.DahFirstPressMS
			c.dahHeld = true
		}
	} else {
		c.dahHeld = false
	}
}

// Choose returns the element to send next under a squeeze: whichever paddle
// was pressed earlier, Dah on a tie or when both timestamps are unknown,
// Dit/Dah alone when only one paddle is held, and false when neither is
// held.
func (c *PriorityController) Choose() (element.Element, bool) {
	switch {
	case c.ditHeld && c.dahHeld:
		if c.dahPressMS <= c.ditPressMS {
			return element.Dah, true
		}
		return element.Dit, true
	case c.ditHeld:
		return element.Dit, true
	case c.dahHeld:
		return element.Dah, true
	default:
		return 0, false
	}
}

// SetMemory latches an element to be emitted once, after the current
// squeeze has fully released.
func (c *PriorityController) SetMemory(e element.Element) {
	c.memoryElement = e
	c.hasMemory = true
}

// TakeMemory returns and clears the latched memory element, if any.
func (c *PriorityController) TakeMemory() (element.Element, bool) {
	if !c.hasMemory {
		return 0, false
	}
	c.hasMemory = false
	return c.memoryElement, true
}

// ClearHistory drops all press history and any pending memory. The Element
// FSM calls it on Reset and when reconfigured into a mode without
// priority; draining a memory element uses TakeMemory instead.
func (c *PriorityController) ClearHistory() {
	c.ditHeld = false
	c.dahHeld = false
	c.hasMemory = false
}
