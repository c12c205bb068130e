package cpu

import (
	"testing"

	"github.com/holloway-dev/gbcore/internal/cartridge"
	"github.com/holloway-dev/gbcore/internal/dma"
	"github.com/holloway-dev/gbcore/internal/events"
	"github.com/holloway-dev/gbcore/internal/interrupts"
	"github.com/holloway-dev/gbcore/internal/log"
	"github.com/holloway-dev/gbcore/internal/mmu"
	"github.com/holloway-dev/gbcore/internal/ppu"
	"github.com/holloway-dev/gbcore/internal/timer"
)

// newTestCPU wires a CPU to a real bus backed by an MBC2 cartridge whose ROM
// is program followed by zero-filled NOPs, grounded on the teacher's
// testInstruction helper (internal/cpu/instruction_test.go) which builds a
// CPU against real subsystems rather than mocking the bus.
func newTestCPU(program []uint8) *CPU {
	rom := make([]uint8, 0x4000)
	copy(rom, program)
	rom[0x147] = 5 // MBC2

	cart, err := cartridge.New(rom)
	if err != nil {
		panic(err)
	}

	io := &mmu.IO{}
	ic := interrupts.NewController()
	tc := timer.NewController()
	d := dma.NewEngine()
	e := events.NewEmitter()
	bus := mmu.New(cart, io, ic, e, log.NewNull())
	p := ppu.New(e)

	c := New(bus, io, ic, tc, d, p, e)
	c.SP = 0xFFFE // the post-boot default a real boot ROM would leave behind
	return c
}

func step(t *testing.T, c *CPU, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

// Scenario A: 3E 0F; 06 01; 80 - ADD sets half-carry, leaves zero/carry clear.
func TestScenarioA_AddHalfCarry(t *testing.T) {
	c := newTestCPU([]uint8{0x3E, 0x0F, 0x06, 0x01, 0x80})
	step(t, c, 3)

	if c.A != 0x10 {
		t.Errorf("A = 0x%02X, want 0x10", c.A)
	}
	if c.Flag(FlagZero) || c.Flag(FlagSubtract) || !c.Flag(FlagHalfCarry) || c.Flag(FlagCarry) {
		t.Errorf("F = 0x%02X, want Z=0 N=0 H=1 C=0", c.F)
	}
	if c.Cycles() != 20 {
		t.Errorf("cycles = %d, want 20", c.Cycles())
	}
}

// Scenario B: 3E 06; 06 07; 90 - SUB borrows through both half and full carry.
func TestScenarioB_SubtractCarry(t *testing.T) {
	c := newTestCPU([]uint8{0x3E, 0x06, 0x06, 0x07, 0x90})
	step(t, c, 3)

	if c.A != 0xFF {
		t.Errorf("A = 0x%02X, want 0xFF", c.A)
	}
	if c.Flag(FlagZero) || !c.Flag(FlagSubtract) || !c.Flag(FlagHalfCarry) || !c.Flag(FlagCarry) {
		t.Errorf("F = 0x%02X, want Z=0 N=1 H=1 C=1", c.F)
	}
	if c.Cycles() != 20 {
		t.Errorf("cycles = %d, want 20", c.Cycles())
	}
}

// Scenario C: 37; 38 02; 76; 30 02; 06 12; 00 76, four retirements. SCF sets
// carry so JR C,+2 is taken, landing on the immediate byte of the untaken
// JR NC instruction (0x02, decoded as LD (BC),A) rather than on the HALT at
// program_start+3 or the JR NC itself — an unaligned landing the relative
// jump doesn't special-case, matching spec.md's wrapping-iteration note.
func TestScenarioC_RelativeJumpTaken(t *testing.T) {
	c := newTestCPU([]uint8{0x37, 0x38, 0x02, 0x76, 0x30, 0x02, 0x06, 0x12, 0x00, 0x76})
	step(t, c, 4)

	if c.B != 0x12 {
		t.Errorf("B = 0x%02X, want 0x12", c.B)
	}
	if c.PC != 8 {
		t.Errorf("PC = 0x%04X, want 0x0008", c.PC)
	}
	if c.Cycles() != 32 {
		t.Errorf("cycles = %d, want 32", c.Cycles())
	}
}

// Scenario C's not-taken counterpart: clearing carry first means JR C,+2
// falls through to the HALT immediately after it.
func TestScenarioC_RelativeJumpNotTaken(t *testing.T) {
	c := newTestCPU([]uint8{0x38, 0x02, 0x76})
	c.SetFlag(FlagCarry, false)
	step(t, c, 1)

	if c.PC != 2 {
		t.Errorf("PC = 0x%04X, want 0x0002", c.PC)
	}
	if c.Cycles() != 8 {
		t.Errorf("cycles = %d, want 8", c.Cycles())
	}
}

// Scenario D: 06 05; 0E 08; C5; C5; C5; D1; E1, seven steps. Three pushes of
// BC=0x0508 followed by only two pops leaves one word still on the stack.
func TestScenarioD_PushPopStack(t *testing.T) {
	c := newTestCPU([]uint8{0x06, 0x05, 0x0E, 0x08, 0xC5, 0xC5, 0xC5, 0xD1, 0xE1})
	step(t, c, 7)

	if c.DE() != 0x0508 {
		t.Errorf("DE = 0x%04X, want 0x0508", c.DE())
	}
	if c.HL() != 0x0508 {
		t.Errorf("HL = 0x%04X, want 0x0508", c.HL())
	}
	if c.SP != 0xFFFC {
		t.Errorf("SP = 0x%04X, want 0xFFFC", c.SP)
	}
	for _, addr := range []uint16{0xFFF8, 0xFFFA, 0xFFFC} {
		lo, err := c.bus.Read(addr)
		if err != nil {
			t.Fatalf("read 0x%04X: %v", addr, err)
		}
		hi, err := c.bus.Read(addr + 1)
		if err != nil {
			t.Fatalf("read 0x%04X: %v", addr+1, err)
		}
		if got := uint16(hi)<<8 | uint16(lo); got != 0x0508 {
			t.Errorf("mem[0x%04X..0x%04X] = 0x%04X, want 0x0508", addr, addr+1, got)
		}
	}
	if c.Cycles() != 88 {
		t.Errorf("cycles = %d, want 88", c.Cycles())
	}
}

// ADD A,r zero flag: 0x80 + 0x80 wraps to 0 with carry set, no half-carry.
func TestADDZeroAndCarryNoHalfCarry(t *testing.T) {
	c := newTestCPU([]uint8{0x3E, 0x80, 0x06, 0x80, 0x80})
	step(t, c, 3)

	if c.A != 0x00 {
		t.Errorf("A = 0x%02X, want 0x00", c.A)
	}
	if !c.Flag(FlagZero) || c.Flag(FlagSubtract) || c.Flag(FlagHalfCarry) || !c.Flag(FlagCarry) {
		t.Errorf("F = 0x%02X, want Z=1 N=0 H=0 C=1", c.F)
	}
}

// SUB A,A always yields zero with no borrow of any kind.
func TestSUBSelfIsZeroNoBorrow(t *testing.T) {
	c := newTestCPU([]uint8{0x3E, 0x55, 0x97}) // LD A,0x55 ; SUB A
	step(t, c, 2)

	if c.A != 0x00 {
		t.Errorf("A = 0x%02X, want 0x00", c.A)
	}
	if !c.Flag(FlagZero) || !c.Flag(FlagSubtract) || c.Flag(FlagHalfCarry) || c.Flag(FlagCarry) {
		t.Errorf("F = 0x%02X, want Z=1 N=1 H=0 C=0", c.F)
	}
}

// JR Z,e not taken when Z is clear, taken when Z is set.
func TestJRZTakenAndNotTaken(t *testing.T) {
	notTaken := newTestCPU([]uint8{0x28, 0x05, 0x00}) // JR Z,+5 ; NOP
	notTaken.SetFlag(FlagZero, false)
	step(t, notTaken, 1) // consumes the JR Z,+5 at PC=0, not taken
	if notTaken.PC != 2 {
		t.Errorf("not-taken PC = 0x%04X, want 0x0002", notTaken.PC)
	}
	if notTaken.Cycles() != 8 {
		t.Errorf("not-taken cycles = %d, want 8", notTaken.Cycles())
	}

	taken := newTestCPU([]uint8{0x28, 0x05, 0x00})
	taken.SetFlag(FlagZero, true)
	step(t, taken, 1)
	if taken.PC != 7 {
		t.Errorf("taken PC = 0x%04X, want 0x0007", taken.PC)
	}
	if taken.Cycles() != 12 {
		t.Errorf("taken cycles = %d, want 12", taken.Cycles())
	}
}

// INC/DEC 8-bit preserve the carry flag on this implementation, an explicit
// deviation from the reference implementation recorded in DESIGN.md.
func TestINCPreservesCarry(t *testing.T) {
	c := newTestCPU([]uint8{0x04}) // INC B
	c.SetFlag(FlagCarry, true)
	step(t, c, 1)

	if !c.Flag(FlagCarry) {
		t.Errorf("expected carry to be preserved across INC")
	}
	if c.B != 1 {
		t.Errorf("B = 0x%02X, want 0x01", c.B)
	}
}

// DEC from 0x01 to 0x00 sets zero and doesn't set half-borrow.
func TestDECZeroAndHalfBorrow(t *testing.T) {
	c := newTestCPU([]uint8{0x05}) // DEC B
	c.B = 0x01
	step(t, c, 1)

	if c.B != 0x00 {
		t.Errorf("B = 0x%02X, want 0x00", c.B)
	}
	if !c.Flag(FlagZero) || !c.Flag(FlagSubtract) || c.Flag(FlagHalfCarry) {
		t.Errorf("F = 0x%02X, want Z=1 N=1 H=0", c.F)
	}
}

// DEC from 0x10 borrows out of bit 4, setting half-carry.
func TestDECHalfBorrowFromSixteen(t *testing.T) {
	c := newTestCPU([]uint8{0x05}) // DEC B
	c.B = 0x10
	step(t, c, 1)

	if c.B != 0x0F {
		t.Errorf("B = 0x%02X, want 0x0F", c.B)
	}
	if !c.Flag(FlagHalfCarry) {
		t.Errorf("expected half-carry flag set")
	}
}

// HALT with IME disabled and a pending interrupt reproduces the halt bug:
// PC fails to advance once, so the byte after HALT is fetched twice.
func TestHaltBugRefetchesNextByte(t *testing.T) {
	// DI ; LD A,0 (request a timer overflow via direct IF write would need
	// the bus; instead we simulate "interrupt pending" by writing IF/IE
	// through the bus before HALT) ; HALT ; INC A ; INC A
	rom := []uint8{0xF3, 0x3E, 0x00, 0x76, 0x3C, 0x3C}
	c := newTestCPU(rom)
	step(t, c, 1) // DI
	step(t, c, 1) // LD A,0

	// Enable the timer interrupt source and mark it pending in IF so
	// HasPending() is true while IME remains disabled.
	if err := c.bus.Write(0xFFFF, 0x04); err != nil {
		t.Fatalf("write IE: %v", err)
	}
	if err := c.bus.Write(0xFF0F, 0x04); err != nil {
		t.Fatalf("write IF: %v", err)
	}

	step(t, c, 1) // HALT: IME=0 and pending -> halt bug mode
	step(t, c, 1) // executes the byte after HALT (INC A) without advancing PC past it

	if c.A != 1 {
		t.Errorf("A = %d, want 1 after the halt-bug refetch of INC A", c.A)
	}
	if c.PC != 4 {
		t.Errorf("PC = 0x%04X, want 0x0004 (one INC A consumed, not advanced past it twice)", c.PC)
	}
}

// PUSH AF followed by POP AF round-trips through the stack with F's low
// nibble always reading back as zero, regardless of what was pushed.
func TestPushPopAFMasksLowNibble(t *testing.T) {
	c := newTestCPU([]uint8{0xF5, 0xF1}) // PUSH AF ; POP AF
	c.A = 0x42
	c.F = 0xFF // low nibble set; SetAF on pop must mask it back to zero
	step(t, c, 2)

	if c.A != 0x42 {
		t.Errorf("A = 0x%02X, want 0x42", c.A)
	}
	if c.F != 0xF0 {
		t.Errorf("F = 0x%02X, want 0xF0 (low nibble always zero)", c.F)
	}
}
