// Package ppu implements the pixel-processing unit of spec.md §4.7: the
// OAM-scan / drawing / H-blank / V-blank mode machine that produces one
// 160×144 frame per vertical blank.
package ppu

import (
	"github.com/holloway-dev/gbcore/internal/events"
	"github.com/holloway-dev/gbcore/internal/interrupts"
	"github.com/holloway-dev/gbcore/internal/mmu"
	"github.com/holloway-dev/gbcore/internal/types"
)

// Timing and geometry constants, per spec.md §4.7.
const (
	VisibleWidth  = 160
	VisibleLines  = 144
	TotalLines    = 154
	oamScanCycles = 20 // machine cycles
	lineCycles    = 114
)

// Palette tags a rendered pixel's source, carried in its event payload.
const (
	PaletteBackground = iota
	PaletteWindow
	PaletteSprite0
	PaletteSprite1
)

// LCDC bits, per spec.md §4.7.
const (
	lcdcSpriteEnable  = types.Bit1
	lcdcLargeSprite   = types.Bit2
	lcdcHighBGMap     = types.Bit3
	lcdcLowBGTiles    = types.Bit4
	lcdcWindowEnabled = types.Bit5
	lcdcHighWindowMap = types.Bit6
	lcdcEnabled       = types.Bit7
)

// LCDSTAT bits.
const (
	statModeMask        = 0x03
	modeHBlank          = 0x00
	modeVBlank          = 0x01
	modeOAMScan         = 0x02
	modeDrawing         = 0x03
	statLYCMatchPolarity = types.Bit2
	statHBlankIRQ       = types.Bit3
	statVBlankIRQ       = types.Bit4
	statOAMScanIRQ      = types.Bit5
	statLYCMatchIRQ     = types.Bit6
)

// Memory addresses the PPU samples directly, per spec.md §4.7.
const (
	memLowTiles   = 0x8000
	memHighTiles  = 0x8800
	memLowMap     = 0x9800
	memHighMap    = 0x9C00
)

// phase is the PPU's current pipeline stage within a line.
type phase int

const (
	phaseOAMScan phase = iota
	phaseDrawing
	phaseHBlank
	phaseVBlank
)

// PPU drives the mode machine and owns the front/back framebuffers.
type PPU struct {
	front [VisibleLines][VisibleWidth]events.Pixel
	back  [VisibleLines][VisibleWidth]events.Pixel

	phase        phase
	currentLine  uint8
	clocksOnLine int
	currentPixel uint8
	lineSprites  []Sprite

	wasEnabled bool

	emitter *events.Emitter
}

// New returns a PPU at the start of line 0, OAM-scan phase.
func New(e *events.Emitter) *PPU {
	return &PPU{emitter: e, lineSprites: make([]Sprite, 0, 10)}
}

// Front returns the most recently completed frame.
func (p *PPU) Front() [VisibleLines][VisibleWidth]events.Pixel {
	return p.front
}

// Tick advances the PPU by one machine cycle: up to two draw steps and two
// phase updates, per spec.md §4.7.
func (p *PPU) Tick(bus *mmu.Bus, io *mmu.IO, ic *interrupts.Controller) {
	if io.LCDC&lcdcEnabled == 0 {
		p.wasEnabled = false
		return
	}
	if !p.wasEnabled {
		p.currentLine = 0
		p.clocksOnLine = 0
		p.currentPixel = 0
		p.phase = phaseOAMScan
		io.LY = 0
		io.STAT = (io.STAT &^ statModeMask) | modeOAMScan
		p.wasEnabled = true
	}

	for i := 0; i < 4; i++ {
		if i%2 != 0 {
			continue
		}
		if p.phase == phaseDrawing {
			p.draw(bus, io)
		}
		p.updatePhase(bus, io, ic)
	}
}

func (p *PPU) updatePhase(bus *mmu.Bus, io *mmu.IO, ic *interrupts.Controller) {
	if p.clocksOnLine == 0 {
		p.scanOAM(bus, io)
	}
	p.clocksOnLine += 2
	cyclesOnLine := p.clocksOnLine / 4

	switch {
	case cyclesOnLine == lineCycles:
		p.endOfLine(io, ic)
	case p.currentPixel >= VisibleWidth && p.phase == phaseDrawing:
		p.emitter.Emit(events.KindHBlank, events.HBlank{Line: p.currentLine, Pixels: p.back[p.currentLine]})
		p.phase = phaseHBlank
		io.STAT = (io.STAT &^ statModeMask) | modeHBlank
		if io.STAT&statHBlankIRQ != 0 {
			ic.Request(interrupts.LCDStat)
		}
	case cyclesOnLine == oamScanCycles && p.currentLine < VisibleLines:
		p.phase = phaseDrawing
		io.STAT = (io.STAT &^ statModeMask) | modeDrawing
	}
}

func (p *PPU) endOfLine(io *mmu.IO, ic *interrupts.Controller) {
	p.clocksOnLine = 0
	p.currentPixel = 0
	p.currentLine++
	if p.currentLine == TotalLines {
		p.currentLine = 0
	}
	io.LY = p.currentLine

	lycMatch := io.STAT&statLYCMatchPolarity != 0
	if (lycMatch == (p.currentLine == io.LYC)) && io.STAT&statLYCMatchIRQ != 0 {
		ic.Request(interrupts.LCDStat)
	}

	switch {
	case p.currentLine == VisibleLines:
		p.front, p.back = p.back, p.front
		p.emitter.Emit(events.KindVBlank, events.VBlank{})
		p.phase = phaseVBlank
		io.STAT = (io.STAT &^ statModeMask) | modeVBlank
		ic.Request(interrupts.VBlank)
		if io.STAT&statVBlankIRQ != 0 {
			ic.Request(interrupts.LCDStat)
		}
	case p.currentLine < VisibleLines:
		p.phase = phaseOAMScan
		io.STAT = (io.STAT &^ statModeMask) | modeOAMScan
		if io.STAT&statOAMScanIRQ != 0 {
			ic.Request(interrupts.LCDStat)
		}
	}
}

func (p *PPU) draw(bus *mmu.Bus, io *mmu.IO) {
	if p.currentPixel >= VisibleWidth {
		return
	}
	x := io.SCX + p.currentPixel
	y := io.SCY + p.currentLine

	pixel := p.calculatePixel(bus, io, x, y)
	p.back[p.currentLine][p.currentPixel] = pixel

	p.currentPixel++
}

func (p *PPU) calculatePixel(bus *mmu.Bus, io *mmu.IO, x, y uint8) events.Pixel {
	if io.LCDC&lcdcSpriteEnable != 0 {
		if px, ok := p.spritePixel(bus, x, y); ok {
			return px
		}
	}

	tileX, tileY := x/8, y/8

	isWindow := p.currentPixel >= io.WX && p.currentLine >= io.WY && io.LCDC&lcdcWindowEnabled != 0

	mapBase := uint16(memLowMap)
	if io.LCDC&lcdcHighBGMap != 0 {
		mapBase = memHighMap
	}
	if isWindow && io.LCDC&lcdcHighWindowMap != 0 {
		mapBase = memHighMap
	} else if isWindow {
		mapBase = memLowMap
	}

	tileIDAddr := mapBase + uint16(tileY)*32 + uint16(tileX)
	tileAtPixel := bus.VRAMByte(tileIDAddr)

	tileBase := uint16(memHighTiles)
	if io.LCDC&lcdcLowBGTiles != 0 {
		tileBase = memLowTiles
	}
	tileBase += uint16(tileAtPixel) * 0x10

	index := readTilePixel(bus, tileBase, x%8, y%8)
	palette := PaletteBackground
	if isWindow {
		palette = PaletteWindow
	}
	return events.Pixel{Palette: palette, Index: index}
}
