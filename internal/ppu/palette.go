package ppu

import (
	"image"
	"image/color"
)

// shades is the classic four-tone DMG greyscale, used only by the
// image.Paletted bridge below — the PPU's own contract stays palette-tag
// plus 2-bit index, per spec.md §3/§4.7.
var shades = color.Palette{
	color.Gray{Y: 0xFF},
	color.Gray{Y: 0xAA},
	color.Gray{Y: 0x55},
	color.Gray{Y: 0x00},
}

// Image renders a completed frame as a standard-library image.Paletted, for
// a host that wants to hand it to image/png or similar without the core
// depending on any image-decoding or GUI library.
func (p *PPU) Image() *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, VisibleWidth, VisibleLines), shades)
	for y := 0; y < VisibleLines; y++ {
		for x := 0; x < VisibleWidth; x++ {
			img.SetColorIndex(x, y, p.front[y][x].Index)
		}
	}
	return img
}
