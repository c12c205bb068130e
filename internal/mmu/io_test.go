package mmu

import (
	"testing"

	"github.com/holloway-dev/gbcore/internal/types"
)

func TestIOReadWriteKnownRegisters(t *testing.T) {
	io := &IO{}
	cases := []struct {
		addr uint16
		get  func() uint8
	}{
		{types.AddrP1, func() uint8 { return io.P1 }},
		{types.AddrSB, func() uint8 { return io.SB }},
		{types.AddrSC, func() uint8 { return io.SC }},
		{types.AddrTIMA, func() uint8 { return io.TIMA }},
		{types.AddrTMA, func() uint8 { return io.TMA }},
		{types.AddrTAC, func() uint8 { return io.TAC }},
		{types.AddrLCDC, func() uint8 { return io.LCDC }},
		{types.AddrSTAT, func() uint8 { return io.STAT }},
		{types.AddrSCY, func() uint8 { return io.SCY }},
		{types.AddrSCX, func() uint8 { return io.SCX }},
		{types.AddrLYC, func() uint8 { return io.LYC }},
		{types.AddrDMA, func() uint8 { return io.DMA }},
		{types.AddrBGP, func() uint8 { return io.BGP }},
		{types.AddrOBP0, func() uint8 { return io.OBP0 }},
		{types.AddrOBP1, func() uint8 { return io.OBP1 }},
		{types.AddrWY, func() uint8 { return io.WY }},
		{types.AddrWX, func() uint8 { return io.WX }},
	}

	for _, c := range cases {
		if ok := io.write(c.addr, 0x3C); !ok {
			t.Errorf("write(0x%04X) reported unrecognized", c.addr)
			continue
		}
		if got := c.get(); got != 0x3C {
			t.Errorf("field backing 0x%04X = 0x%02X, want 0x3C", c.addr, got)
		}
		got, ok := io.read(c.addr)
		if !ok {
			t.Errorf("read(0x%04X) reported unrecognized", c.addr)
		}
		if got != 0x3C {
			t.Errorf("read(0x%04X) = 0x%02X, want 0x3C", c.addr, got)
		}
	}
}

func TestIOWriteDIVAlwaysResetsToZero(t *testing.T) {
	io := &IO{DIV: 0x80}
	if ok := io.write(types.AddrDIV, 0xFF); !ok {
		t.Fatal("write(AddrDIV) reported unrecognized")
	}
	if io.DIV != 0 {
		t.Errorf("DIV = 0x%02X after write, want 0x00", io.DIV)
	}
}

func TestIOWriteLYIsIgnored(t *testing.T) {
	io := &IO{LY: 0x42}
	if ok := io.write(types.AddrLY, 0x99); !ok {
		t.Fatal("write(AddrLY) reported unrecognized")
	}
	if io.LY != 0x42 {
		t.Errorf("LY = 0x%02X after write, want 0x42 (unwritable)", io.LY)
	}
}

func TestIOUnknownAddressNotRecognized(t *testing.T) {
	io := &IO{}
	if _, ok := io.read(0xFF50); ok {
		t.Errorf("read(0xFF50) reported recognized, want false")
	}
	if ok := io.write(0xFF50, 0x01); ok {
		t.Errorf("write(0xFF50) reported recognized, want false")
	}
}
