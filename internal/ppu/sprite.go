package ppu

import (
	"github.com/holloway-dev/gbcore/internal/events"
	"github.com/holloway-dev/gbcore/internal/mmu"
)

const maxSpritesPerLine = 10

// Sprite is one decoded 4-byte OAM record.
type Sprite struct {
	Y     uint8
	X     uint8
	Tile  uint8
	Flags uint8
}

func spriteFromOAM(bus *mmu.Bus, index uint8) Sprite {
	base := 0xFE00 + uint16(index)*4
	return Sprite{
		Y:     bus.OAMByte(base),
		X:     bus.OAMByte(base + 1),
		Tile:  bus.OAMByte(base + 2),
		Flags: bus.OAMByte(base + 3),
	}
}

func (s Sprite) visibleOnLine(line, height uint8) bool {
	return line >= s.Y && line < s.Y+height
}

// scanOAM walks all 40 sprite records, keeping up to 10 whose Y-range
// covers the current line, in address order, per spec.md §4.7 step 1.
func (p *PPU) scanOAM(bus *mmu.Bus, io *mmu.IO) {
	height := uint8(8)
	if io.LCDC&lcdcLargeSprite != 0 {
		height = 16
	}

	sprites := p.lineSprites[:0]
	for i := uint8(0); i < 40; i++ {
		s := spriteFromOAM(bus, i)
		if s.visibleOnLine(p.currentLine, height) {
			sprites = append(sprites, s)
		}
		if len(sprites) == maxSpritesPerLine {
			break
		}
	}
	p.lineSprites = sprites
}

// spritePixel returns the palette-indexed sprite pixel covering (x, y), if
// any selected sprite covers it and it is not transparent.
func (p *PPU) spritePixel(bus *mmu.Bus, x, y uint8) (events.Pixel, bool) {
	for _, s := range p.lineSprites {
		if x < s.X || x >= s.X+8 {
			continue
		}
		spriteX := x - s.X
		spriteY := y - s.Y
		tileBase := uint16(memLowTiles) + uint16(s.Tile)*0x10

		index := readTilePixel(bus, tileBase, spriteX, spriteY)
		if index == 0 {
			continue
		}

		palette := PaletteSprite0
		if s.Flags&0x10 != 0 {
			palette = PaletteSprite1
		}
		return events.Pixel{Palette: palette, Index: index}, true
	}
	return events.Pixel{}, false
}
