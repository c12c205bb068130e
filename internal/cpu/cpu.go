// Package cpu implements the DMG instruction decoder and executor of
// spec.md §4.3: it decodes one opcode (and, for the 0xCB prefix, a second
// byte) per step, executes its semantic effect with exact flag algebra,
// and charges machine cycles through the bus for every memory access.
package cpu

import (
	"github.com/holloway-dev/gbcore/internal/dma"
	"github.com/holloway-dev/gbcore/internal/events"
	"github.com/holloway-dev/gbcore/internal/gberr"
	"github.com/holloway-dev/gbcore/internal/interrupts"
	"github.com/holloway-dev/gbcore/internal/mmu"
	"github.com/holloway-dev/gbcore/internal/ppu"
	"github.com/holloway-dev/gbcore/internal/timer"
)

// mode tracks the CPU's fetch/execute state outside normal operation.
type mode uint8

const (
	modeNormal mode = iota
	modeHalt
	modeHaltBug
	modeStop
)

// CPU is the root instruction engine. It owns the register file and holds
// borrows of every subsystem its "tick" helper must advance in lockstep,
// per spec.md §9 "Ownership & back-references".
type CPU struct {
	Registers

	bus        *mmu.Bus
	io         *mmu.IO
	interrupts *interrupts.Controller
	timer      *timer.Controller
	dma        *dma.Engine
	ppu        *ppu.PPU
	emitter    *events.Emitter

	cycles uint64
	mode   mode
}

// New returns a CPU wired to the given subsystems, with PC at 0x0000 (a
// host that wants post-boot-ROM register values sets them explicitly).
func New(bus *mmu.Bus, io *mmu.IO, ic *interrupts.Controller, t *timer.Controller, d *dma.Engine, p *ppu.PPU, e *events.Emitter) *CPU {
	return &CPU{
		bus:        bus,
		io:         io,
		interrupts: ic,
		timer:      t,
		dma:        d,
		ppu:        p,
		emitter:    e,
	}
}

// Cycles returns the number of clock cycles (4 per machine cycle) charged
// since construction — the unit the boundary scenarios document timing in.
func (c *CPU) Cycles() uint64 { return c.cycles }

// tick charges one machine cycle: it advances the timer, DMA engine and
// PPU by the same amount and emits a step-complete event, per spec.md
// §4.3 "every memory access ... charges one machine cycle through a
// shared clock helper. The helper is what advances timer, PPU, and DMA."
func (c *CPU) tick() error {
	c.cycles += 4
	c.timer.Tick(c.io, c.interrupts, 1)
	if err := c.dma.Tick(c.bus, c.io); err != nil {
		return err
	}
	c.ppu.Tick(c.bus, c.io, c.interrupts)
	if c.emitter != nil {
		c.emitter.Emit(events.KindStepComplete, events.StepComplete{})
	}
	return nil
}

func (c *CPU) readByte(addr uint16) (uint8, error) {
	if err := c.tick(); err != nil {
		return 0, err
	}
	return c.bus.Read(addr)
}

func (c *CPU) writeByte(addr uint16, value uint8) error {
	if err := c.tick(); err != nil {
		return err
	}
	return c.bus.Write(addr, value)
}

func (c *CPU) fetch() (uint8, error) {
	value, err := c.readByte(c.PC)
	if err != nil {
		return 0, err
	}
	c.PC++
	return value, nil
}

// fetchWord reads a little-endian 16-bit literal following the opcode.
func (c *CPU) fetchWord() (uint16, error) {
	lo, err := c.fetch()
	if err != nil {
		return 0, err
	}
	hi, err := c.fetch()
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (c *CPU) push(value uint16) error {
	c.SP--
	if err := c.writeByte(c.SP, uint8(value>>8)); err != nil {
		return err
	}
	c.SP--
	return c.writeByte(c.SP, uint8(value))
}

func (c *CPU) pop() (uint16, error) {
	lo, err := c.readByte(c.SP)
	if err != nil {
		return 0, err
	}
	c.SP++
	hi, err := c.readByte(c.SP)
	if err != nil {
		return 0, err
	}
	c.SP++
	return uint16(hi)<<8 | uint16(lo), nil
}

// Step decodes and executes exactly one instruction (or, in HALT/STOP,
// advances one machine cycle without fetching), then services at most one
// pending interrupt, per spec.md §2 and §4.4.
func (c *CPU) Step() error {
	switch c.mode {
	case modeHalt, modeStop:
		if err := c.tick(); err != nil {
			return err
		}
		if c.interrupts.HasPending() {
			c.mode = modeNormal
		}
	case modeHaltBug:
		opcode, err := c.fetch()
		if err != nil {
			return err
		}
		// The halt bug: PC fails to advance once, so the byte after HALT
		// is fetched again as the next opcode. See spec.md §9.
		c.PC--
		c.mode = modeNormal
		if err := c.execute(opcode); err != nil {
			return err
		}
	default:
		opcode, err := c.fetch()
		if err != nil {
			return err
		}
		if err := c.execute(opcode); err != nil {
			return err
		}
	}

	c.interrupts.AdvanceEIState()

	if c.mode == modeNormal {
		if vector, ok := c.interrupts.Accept(); ok {
			if err := c.acceptInterrupt(vector); err != nil {
				return err
			}
		}
	}
	return nil
}

// acceptInterrupt vectors to an accepted interrupt's handler, charging the
// 5 machine cycles spec.md §4.4 documents for dispatch.
func (c *CPU) acceptInterrupt(vector uint16) error {
	if err := c.tick(); err != nil {
		return err
	}
	if err := c.tick(); err != nil {
		return err
	}
	if err := c.push(c.PC); err != nil {
		return err
	}
	c.PC = vector
	return c.tick()
}

func (c *CPU) execute(opcode uint8) error {
	if opcode == 0xCB {
		sub, err := c.fetch()
		if err != nil {
			return err
		}
		return cbTable[sub].exec(c)
	}
	op := primaryTable[opcode]
	if op.exec == nil {
		return gberr.New(gberr.KindUnknownOpcode, "0x%02X", opcode)
	}
	return op.exec(c)
}

// halt enters HALT, reproducing the documented halt-bug behavior when IME
// is disabled with an interrupt already pending, per spec.md §4.3/§9.
func (c *CPU) halt() {
	if !c.interrupts.IME() && c.interrupts.HasPending() {
		c.mode = modeHaltBug
	} else {
		c.mode = modeHalt
	}
}

// stop enters STOP; this implementation treats it like HALT since double
// speed mode and the CGB STOP protocol are Non-goals.
func (c *CPU) stop() {
	c.mode = modeStop
}
