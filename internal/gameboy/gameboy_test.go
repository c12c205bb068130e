package gameboy

import (
	"testing"

	"github.com/holloway-dev/gbcore/internal/events"
)

func newTestROM() []byte {
	rom := make([]byte, 0x8000)
	rom[0x147] = 5 // MBC2
	return rom
}

func TestNewSetsPostBootRegisters(t *testing.T) {
	gb, err := New(newTestROM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	c := gb.CPU()

	if c.PC != 0x0100 {
		t.Errorf("PC = 0x%04X, want 0x0100", c.PC)
	}
	if c.SP != 0xFFFE {
		t.Errorf("SP = 0x%04X, want 0xFFFE", c.SP)
	}
	if c.A != 0x01 || c.F != 0xB0 {
		t.Errorf("AF = 0x%02X%02X, want 0x01B0", c.A, c.F)
	}
	if c.BC() != 0x0013 {
		t.Errorf("BC = 0x%04X, want 0x0013", c.BC())
	}
	if c.DE() != 0x00D8 {
		t.Errorf("DE = 0x%04X, want 0x00D8", c.DE())
	}
	if c.HL() != 0x014D {
		t.Errorf("HL = 0x%04X, want 0x014D", c.HL())
	}

	lcdc, _ := gb.Bus().Read(0xFF40)
	if lcdc != postBootLCDC {
		t.Errorf("LCDC = 0x%02X, want 0x%02X", lcdc, postBootLCDC)
	}
}

func TestNewRejectsUndersizedCartridge(t *testing.T) {
	if _, err := New(make([]byte, 0x10)); err == nil {
		t.Fatal("expected an error for an undersized cartridge, got nil")
	}
}

func TestStepAdvancesClockCyclesByFour(t *testing.T) {
	rom := newTestROM()
	rom[0x0100] = 0x00 // NOP
	gb, err := New(rom)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := gb.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if gb.Cycles() != 4 {
		t.Errorf("Cycles() = %d, want 4 (one NOP is one machine cycle, four clock cycles)", gb.Cycles())
	}
}

func TestLoadROMResetsStateWithoutDroppingListeners(t *testing.T) {
	gb, err := New(newTestROM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := gb.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if gb.Cycles() == 0 {
		t.Fatalf("expected Cycles() > 0 before reload")
	}

	var stepComplete int
	gb.Emitter().On(events.KindStepComplete, func(events.Kind, interface{}) bool {
		stepComplete++
		return true
	})

	if err := gb.LoadROM(newTestROM()); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}

	if gb.Cycles() != 0 {
		t.Errorf("Cycles() = %d, want 0 after reload", gb.Cycles())
	}
	if gb.CPU().PC != 0x0100 {
		t.Errorf("PC = 0x%04X, want 0x0100 after reload", gb.CPU().PC)
	}

	if err := gb.Step(); err != nil {
		t.Fatalf("Step after reload: %v", err)
	}
	if stepComplete == 0 {
		t.Errorf("expected the listener registered before reload to still fire")
	}
}

func TestLoadROMEmitsROMLoaded(t *testing.T) {
	gb, err := New(newTestROM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var fired bool
	gb.Emitter().On(events.KindROMLoaded, func(events.Kind, interface{}) bool {
		fired = true
		return true
	})

	if err := gb.LoadROM(newTestROM()); err != nil {
		t.Fatalf("LoadROM: %v", err)
	}
	if !fired {
		t.Errorf("expected a KindROMLoaded event on reload")
	}
}

func TestFrameDimensions(t *testing.T) {
	gb, err := New(newTestROM())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	frame := gb.Frame()
	if len(frame) != 144 || len(frame[0]) != 160 {
		t.Errorf("frame dims = %dx%d, want 144x160", len(frame), len(frame[0]))
	}
}
