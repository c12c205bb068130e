// Package gameboy aggregates the cartridge, bus, timer, DMA engine, PPU,
// interrupt controller and CPU into one root object a host can drive one
// step (or one frame) at a time, per spec.md §2 and §5.
package gameboy

import (
	"github.com/holloway-dev/gbcore/internal/cartridge"
	"github.com/holloway-dev/gbcore/internal/cpu"
	"github.com/holloway-dev/gbcore/internal/dma"
	"github.com/holloway-dev/gbcore/internal/events"
	"github.com/holloway-dev/gbcore/internal/interrupts"
	"github.com/holloway-dev/gbcore/internal/log"
	"github.com/holloway-dev/gbcore/internal/mmu"
	"github.com/holloway-dev/gbcore/internal/ppu"
	"github.com/holloway-dev/gbcore/internal/timer"
)

// ClockSpeed is the DMG system clock, in Hz.
const ClockSpeed = 4194304

// post-boot register values a real DMG boot ROM leaves behind, grounded on
// the teacher's startingRegisterValues map (internal/gameboy/gameboy.go).
const (
	postBootLCDC = 0x91
	postBootBGP  = 0xFC
	postBootOBP0 = 0xFF
	postBootOBP1 = 0xFF
)

// GameBoy is the root aggregate. All subsystems are held exclusively by
// value or pointer here; a host never reaches into a sub-component except
// through the accessors this type exposes.
type GameBoy struct {
	bus        *mmu.Bus
	io         *mmu.IO
	interrupts *interrupts.Controller
	timer      *timer.Controller
	dma        *dma.Engine
	ppu        *ppu.PPU
	cpu        *cpu.CPU
	emitter    *events.Emitter
	log        log.Logger
}

// New constructs a GameBoy with rom loaded as its cartridge.
func New(rom []byte, opts ...Opt) (*GameBoy, error) {
	cart, err := cartridge.New(rom)
	if err != nil {
		return nil, err
	}

	gb := &GameBoy{
		io:         &mmu.IO{},
		interrupts: interrupts.NewController(),
		timer:      timer.NewController(),
		dma:        dma.NewEngine(),
		emitter:    events.NewEmitter(),
		log:        log.NewNull(),
	}
	gb.ppu = ppu.New(gb.emitter)
	gb.bus = mmu.New(cart, gb.io, gb.interrupts, gb.emitter, gb.log)
	gb.cpu = cpu.New(gb.bus, gb.io, gb.interrupts, gb.timer, gb.dma, gb.ppu, gb.emitter)

	for _, opt := range opts {
		opt(gb)
	}

	gb.reset()
	return gb, nil
}

// reset installs the register values a DMG boot ROM would have produced,
// since no boot ROM image is ever executed (a Non-goal).
func (g *GameBoy) reset() {
	g.cpu.PC = 0x0100
	g.cpu.SP = 0xFFFE
	g.cpu.A = 0x01
	g.cpu.SetF(0xB0)
	g.cpu.B, g.cpu.C = 0x00, 0x13
	g.cpu.D, g.cpu.E = 0x00, 0xD8
	g.cpu.H, g.cpu.L = 0x01, 0x4D

	g.io.LCDC = postBootLCDC
	g.io.BGP = postBootBGP
	g.io.OBP0 = postBootOBP0
	g.io.OBP1 = postBootOBP1
}

// LoadROM replaces the running cartridge and resets CPU/PPU/timer/DMA
// state, without discarding listeners already registered on the emitter.
func (g *GameBoy) LoadROM(rom []byte) error {
	cart, err := cartridge.New(rom)
	if err != nil {
		return err
	}
	g.bus.SetCartridge(cart)
	*g.io = mmu.IO{}
	g.timer = timer.NewController()
	g.dma = dma.NewEngine()
	g.ppu = ppu.New(g.emitter)
	g.cpu = cpu.New(g.bus, g.io, g.interrupts, g.timer, g.dma, g.ppu, g.emitter)
	g.reset()
	g.emitter.Emit(events.KindROMLoaded, events.ROMLoaded{})
	return nil
}

// Step executes exactly one CPU instruction (or one idle cycle, in
// HALT/STOP), advancing every subsystem in lockstep.
func (g *GameBoy) Step() error {
	return g.cpu.Step()
}

// Cycles returns the number of clock cycles (T-states) executed since the
// last reset or ROM load.
func (g *GameBoy) Cycles() uint64 {
	return g.cpu.Cycles()
}

// Frame returns the most recently completed video frame.
func (g *GameBoy) Frame() [ppu.VisibleLines][ppu.VisibleWidth]events.Pixel {
	return g.ppu.Front()
}

// Emitter exposes the shared event stream for debugger/monitor listeners.
func (g *GameBoy) Emitter() *events.Emitter {
	return g.emitter
}

// Bus exposes the memory bus for debugger memory queries.
func (g *GameBoy) Bus() *mmu.Bus {
	return g.bus
}

// CPU exposes the register file for debugger register queries.
func (g *GameBoy) CPU() *cpu.CPU {
	return g.cpu
}
