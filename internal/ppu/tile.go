package ppu

import "github.com/holloway-dev/gbcore/internal/mmu"

// readTilePixel returns the 2-bit palette index of pixel (x, y) within the
// 8x8 tile whose two-bits-per-pixel data starts at tileBase.
func readTilePixel(bus *mmu.Bus, tileBase uint16, x, y uint8) uint8 {
	rowAddr := tileBase + uint16(y)*2
	lo := bus.VRAMByte(rowAddr)
	hi := bus.VRAMByte(rowAddr + 1)

	loBit := (lo >> (7 - x)) & 1
	hiBit := (hi >> (7 - x)) & 1
	return loBit | (hiBit << 1)
}
