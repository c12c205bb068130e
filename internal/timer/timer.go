// Package timer implements the DIV/TIMA interval timer of spec.md §4.5.
package timer

import (
	"github.com/holloway-dev/gbcore/internal/interrupts"
	"github.com/holloway-dev/gbcore/internal/mmu"
	"github.com/holloway-dev/gbcore/internal/types"
)

// divPeriod is the number of machine cycles between DIV increments.
const divPeriod = 64

// timaPeriods are the machine-cycle periods selected by TAC's low two bits.
var timaPeriods = [4]int{1024, 16, 64, 256}

// Controller accumulates machine cycles into the DIV and TIMA registers,
// which live on the shared I/O bank rather than on the controller itself.
type Controller struct {
	divAccum  int
	lastDIV   uint8
	timaAccum int
}

// NewController returns a timer controller ready to tick against io.
func NewController() *Controller {
	return &Controller{}
}

// Tick advances the timer by cycles machine cycles, mutating io's DIV and
// TIMA fields and raising the Timer interrupt in ic on TIMA overflow.
func (c *Controller) Tick(io *mmu.IO, ic *interrupts.Controller, cycles int) {
	// An out-of-band DIV change (any CPU write resets it to 0, per §4.5)
	// is detected by comparing against the last value the timer itself
	// produced, and rebases the accumulator rather than the register.
	if io.DIV != c.lastDIV {
		c.divAccum = 0
	}

	for i := 0; i < cycles; i++ {
		c.divAccum++
		if c.divAccum >= divPeriod {
			c.divAccum -= divPeriod
			io.DIV++
		}

		if io.TAC&types.Bit2 != 0 {
			c.timaAccum++
			period := timaPeriods[io.TAC&0x03]
			if c.timaAccum >= period {
				c.timaAccum -= period
				c.incrementTIMA(io, ic)
			}
		} else {
			c.timaAccum = 0
		}
	}

	c.lastDIV = io.DIV
}

func (c *Controller) incrementTIMA(io *mmu.IO, ic *interrupts.Controller) {
	io.TIMA++
	if io.TIMA == 0 {
		io.TIMA = io.TMA
		ic.Request(interrupts.Timer)
	}
}
