package dma

import (
	"testing"

	"github.com/holloway-dev/gbcore/internal/cartridge"
	"github.com/holloway-dev/gbcore/internal/events"
	"github.com/holloway-dev/gbcore/internal/interrupts"
	"github.com/holloway-dev/gbcore/internal/log"
	"github.com/holloway-dev/gbcore/internal/mmu"
)

func newTestBus(t *testing.T) (*mmu.Bus, *mmu.IO) {
	t.Helper()
	rom := make([]byte, 0x8000)
	rom[0x147] = 5 // MBC2
	cart, err := cartridge.New(rom)
	if err != nil {
		t.Fatalf("cartridge.New: %v", err)
	}
	io := &mmu.IO{}
	bus := mmu.New(cart, io, interrupts.NewController(), events.NewEmitter(), log.NewNull())
	return bus, io
}

func TestDMAIdleUntilRegisterWritten(t *testing.T) {
	e := NewEngine()
	bus, io := newTestBus(t)

	if err := e.Tick(bus, io); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if e.Active() {
		t.Fatal("engine reports active before io.DMA is ever written")
	}
}

func TestDMACopiesPageIntoOAMOverTransferLenTicks(t *testing.T) {
	e := NewEngine()
	bus, io := newTestBus(t)

	// seed WRAM page 0xC1 with a recognizable pattern.
	for i := 0; i < transferLen; i++ {
		if err := bus.Write(0xC100+uint16(i), uint8(i)); err != nil {
			t.Fatalf("seed WRAM: %v", err)
		}
	}

	io.DMA = 0xC1
	for i := 0; i < transferLen; i++ {
		if err := e.Tick(bus, io); err != nil {
			t.Fatalf("Tick %d: %v", i, err)
		}
		if i < transferLen-1 && !e.Active() {
			t.Fatalf("tick %d: engine should still be active", i)
		}
	}
	if e.Active() {
		t.Fatal("engine should be idle after transferLen ticks")
	}

	for i := 0; i < transferLen; i++ {
		got, err := bus.Read(0xFE00 + uint16(i))
		if err != nil {
			t.Fatalf("Read OAM[%d]: %v", i, err)
		}
		if got != uint8(i) {
			t.Errorf("OAM[%d] = 0x%02X, want 0x%02X", i, got, uint8(i))
		}
	}
}

func TestDMARestartsWhenRegisterChangesMidTransfer(t *testing.T) {
	e := NewEngine()
	bus, io := newTestBus(t)

	for i := 0; i < transferLen; i++ {
		if err := bus.Write(0xC100+uint16(i), 0xAA); err != nil {
			t.Fatalf("seed first page: %v", err)
		}
		if err := bus.Write(0xC200+uint16(i), 0xBB); err != nil {
			t.Fatalf("seed second page: %v", err)
		}
	}

	io.DMA = 0xC1
	for i := 0; i < 10; i++ {
		if err := e.Tick(bus, io); err != nil {
			t.Fatalf("Tick: %v", err)
		}
	}

	io.DMA = 0xC2 // a new page mid-transfer restarts the copy from index 0
	for i := 0; i < transferLen; i++ {
		if err := e.Tick(bus, io); err != nil {
			t.Fatalf("Tick after restart %d: %v", i, err)
		}
	}

	got, err := bus.Read(0xFE00)
	if err != nil {
		t.Fatalf("Read OAM[0]: %v", err)
	}
	if got != 0xBB {
		t.Errorf("OAM[0] = 0x%02X, want 0xBB (restarted from the new page)", got)
	}
}
