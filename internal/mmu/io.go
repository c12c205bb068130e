package mmu

import "github.com/holloway-dev/gbcore/internal/types"

// IO is the shared bank of memory-mapped registers that are plain byte
// fields rather than delegated to a subsystem's own backing store (spec.md
// §4.2). IE and IF are not here: they live on the interrupt controller,
// which already enforces their 5-bit mask. The timer, PPU and DMA engine
// are each ticked with a pointer to this bank (and, for the PPU and DMA,
// the bus) and read/write these fields directly, per §9 "Ownership &
// back-references".
type IO struct {
	P1   uint8
	SB   uint8
	SC   uint8
	DIV  uint8
	TIMA uint8
	TMA  uint8
	TAC  uint8
	LCDC uint8
	STAT uint8
	SCY  uint8
	SCX  uint8
	LY   uint8
	LYC  uint8
	DMA  uint8
	BGP  uint8
	OBP0 uint8
	OBP1 uint8
	WY   uint8
	WX   uint8
}

// read returns the field backing addr and true, or (0, false) if addr is
// not one of the registers of record — callers treat the latter as "read
// zero", per spec.md §4.2.
func (io *IO) read(addr uint16) (uint8, bool) {
	switch addr {
	case types.AddrP1:
		return io.P1, true
	case types.AddrSB:
		return io.SB, true
	case types.AddrSC:
		return io.SC, true
	case types.AddrDIV:
		return io.DIV, true
	case types.AddrTIMA:
		return io.TIMA, true
	case types.AddrTMA:
		return io.TMA, true
	case types.AddrTAC:
		return io.TAC, true
	case types.AddrLCDC:
		return io.LCDC, true
	case types.AddrSTAT:
		return io.STAT, true
	case types.AddrSCY:
		return io.SCY, true
	case types.AddrSCX:
		return io.SCX, true
	case types.AddrLY:
		return io.LY, true
	case types.AddrLYC:
		return io.LYC, true
	case types.AddrDMA:
		return io.DMA, true
	case types.AddrBGP:
		return io.BGP, true
	case types.AddrOBP0:
		return io.OBP0, true
	case types.AddrOBP1:
		return io.OBP1, true
	case types.AddrWY:
		return io.WY, true
	case types.AddrWX:
		return io.WX, true
	default:
		return 0, false
	}
}

// write stores value into the field backing addr and reports whether addr
// was recognized. Writing DIV always resets it to 0 regardless of value,
// per spec.md §4.5 — the timer detects the reset as an out-of-band change
// to its own snapshot, it does not special-case the write here.
func (io *IO) write(addr uint16, value uint8) bool {
	switch addr {
	case types.AddrP1:
		io.P1 = value
	case types.AddrSB:
		io.SB = value
	case types.AddrSC:
		io.SC = value
	case types.AddrDIV:
		io.DIV = 0
	case types.AddrTIMA:
		io.TIMA = value
	case types.AddrTMA:
		io.TMA = value
	case types.AddrTAC:
		io.TAC = value
	case types.AddrLCDC:
		io.LCDC = value
	case types.AddrSTAT:
		io.STAT = value
	case types.AddrSCY:
		io.SCY = value
	case types.AddrSCX:
		io.SCX = value
	case types.AddrLY:
		// LY is not writable by the CPU; ignored.
	case types.AddrLYC:
		io.LYC = value
	case types.AddrDMA:
		io.DMA = value
	case types.AddrBGP:
		io.BGP = value
	case types.AddrOBP0:
		io.OBP0 = value
	case types.AddrOBP1:
		io.OBP1 = value
	case types.AddrWY:
		io.WY = value
	case types.AddrWX:
		io.WX = value
	default:
		return false
	}
	return true
}
