// Package mmu implements the memory bus of spec.md §4.2: it routes 16-bit
// address reads and writes to the cartridge controller, the fixed-size
// internal RAM blocks, the shared I/O register bank, and the interrupt
// controller's IE/IF pair, and fails unrouted addresses with a tagged
// error rather than panicking.
package mmu

import (
	"github.com/holloway-dev/gbcore/internal/cartridge"
	"github.com/holloway-dev/gbcore/internal/events"
	"github.com/holloway-dev/gbcore/internal/gberr"
	"github.com/holloway-dev/gbcore/internal/interrupts"
	"github.com/holloway-dev/gbcore/internal/log"
	"github.com/holloway-dev/gbcore/internal/types"
)

// Bus is the root memory-mapped address space a cartridge and console
// session share.
type Bus struct {
	cart *cartridge.Cartridge

	vram [0x2000]byte // 0x8000-0x9FFF
	wram [0x2000]byte // 0xC000-0xDFFF, mirrored at 0xE000-0xFDFF
	oam  [0x00A0]byte // 0xFE00-0xFE9F
	hram [0x007F]byte // 0xFF80-0xFFFE

	IO         *IO
	Interrupts *interrupts.Controller

	emitter *events.Emitter
	log     log.Logger
}

// New returns a bus wired to cart, sharing io and ic with whichever
// subsystems the caller also ticks, and emitting memory events on e.
func New(cart *cartridge.Cartridge, io *IO, ic *interrupts.Controller, e *events.Emitter, logger log.Logger) *Bus {
	if logger == nil {
		logger = log.NewNull()
	}
	return &Bus{
		cart:       cart,
		IO:         io,
		Interrupts: ic,
		emitter:    e,
		log:        logger,
	}
}

// Read returns the byte at addr, routing by region per spec.md §4.2.
func (b *Bus) Read(addr uint16) (uint8, error) {
	value, err := b.read(addr)
	if err != nil {
		return 0, err
	}
	if b.emitter != nil {
		b.emitter.Emit(events.KindMemoryRead, events.MemoryRead{Address: addr, Value: value})
	}
	return value, nil
}

func (b *Bus) read(addr uint16) (uint8, error) {
	switch {
	case types.CartridgeROM.Contains(addr), types.CartridgeRAM.Contains(addr):
		return b.cart.Read(addr)
	case types.VRAM.Contains(addr):
		return b.vram[addr-types.VRAM.Start], nil
	case types.WRAM.Contains(addr):
		return b.wram[addr-types.WRAM.Start], nil
	case types.WRAMMirror.Contains(addr):
		return b.wram[(addr-types.WRAMMirror.Start)%uint16(len(b.wram))], nil
	case types.OAM.Contains(addr):
		return b.oam[addr-types.OAM.Start], nil
	case types.ForbiddenGap.Contains(addr):
		return 0, gberr.New(gberr.KindUnmappedAddress, "0x%04X is in the forbidden gap", addr)
	case addr == types.AddrIF:
		return b.Interrupts.ReadIF(), nil
	case addr == types.AddrIE:
		return b.Interrupts.ReadIE(), nil
	case types.IORegisters.Contains(addr):
		if value, ok := b.IO.read(addr); ok {
			return value, nil
		}
		return 0, nil
	case types.HRAM.Contains(addr):
		return b.hram[addr-types.HRAM.Start], nil
	default:
		return 0, gberr.New(gberr.KindUnmappedAddress, "0x%04X is not routed by the bus", addr)
	}
}

// Write stores value at addr, routing by region per spec.md §4.2.
func (b *Bus) Write(addr uint16, value uint8) error {
	old, _ := b.read(addr)
	if err := b.write(addr, value); err != nil {
		return err
	}
	if b.emitter != nil {
		b.emitter.Emit(events.KindMemoryWrite, events.MemoryWrite{Address: addr, OldValue: old, NewValue: value})
	}
	return nil
}

func (b *Bus) write(addr uint16, value uint8) error {
	switch {
	case types.CartridgeROM.Contains(addr), types.CartridgeRAM.Contains(addr):
		return b.cart.Write(addr, value)
	case types.VRAM.Contains(addr):
		b.vram[addr-types.VRAM.Start] = value
		return nil
	case types.WRAM.Contains(addr):
		b.wram[addr-types.WRAM.Start] = value
		return nil
	case types.WRAMMirror.Contains(addr):
		b.wram[(addr-types.WRAMMirror.Start)%uint16(len(b.wram))] = value
		return nil
	case types.OAM.Contains(addr):
		b.oam[addr-types.OAM.Start] = value
		return nil
	case types.ForbiddenGap.Contains(addr):
		return gberr.New(gberr.KindUnmappedAddress, "0x%04X is in the forbidden gap", addr)
	case addr == types.AddrIF:
		b.Interrupts.WriteIF(value)
		return nil
	case addr == types.AddrIE:
		b.Interrupts.WriteIE(value)
		return nil
	case types.IORegisters.Contains(addr):
		b.IO.write(addr, value) // unknown I/O addresses silently ignore the write
		return nil
	case types.HRAM.Contains(addr):
		b.hram[addr-types.HRAM.Start] = value
		return nil
	default:
		return gberr.New(gberr.KindUnmappedAddress, "0x%04X is not routed by the bus", addr)
	}
}

// SetCartridge swaps in a newly loaded cartridge, leaving the rest of the
// bus (VRAM, WRAM, I/O registers, interrupt state) untouched. Used to
// implement the debugger's load-rom command against a running session.
func (b *Bus) SetCartridge(cart *cartridge.Cartridge) {
	b.cart = cart
}

// VRAMByte reads directly from backing VRAM storage without emitting a bus
// event. The PPU uses this during rendering, which observes video memory
// continuously rather than through discrete CPU-style accesses that a
// debugger breakpoint would want to see.
func (b *Bus) VRAMByte(addr uint16) uint8 {
	if !types.VRAM.Contains(addr) {
		return 0
	}
	return b.vram[addr-types.VRAM.Start]
}

// OAMByte reads directly from backing OAM storage without emitting a bus
// event, for the same reason as VRAMByte — used by the PPU's sprite scan.
func (b *Bus) OAMByte(addr uint16) uint8 {
	if !types.OAM.Contains(addr) {
		return 0
	}
	return b.oam[addr-types.OAM.Start]
}

// IterFrom returns a lazy, infinite sequence of bytes starting at addr:
// each call advances to the next address, wrapping past 0xFFFF back to
// 0x0000, and substitutes 0 for any address that fails to read (the
// forbidden gap), per spec.md §4.2 and §9 "Wrapping memory iteration".
func (b *Bus) IterFrom(addr uint16) func() uint8 {
	cur := addr
	return func() uint8 {
		value, err := b.Read(cur)
		cur++
		if err != nil {
			return 0
		}
		return value
	}
}
