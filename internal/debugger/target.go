package debugger

import (
	"strings"

	"github.com/holloway-dev/gbcore/internal/events"
	"github.com/holloway-dev/gbcore/internal/gameboy"
	"github.com/holloway-dev/gbcore/internal/gberr"
)

type targetKind int

const (
	targetAddress targetKind = iota
	targetByteRegister
	targetWordRegister
	targetCycles
	targetTime
)

// RWTarget is a resolved read/write location: a memory address, a named
// register, or one of the two read-only pseudo-targets "cycles"/"time",
// per spec.md §6 "Read-write target parsing".
type RWTarget struct {
	kind    targetKind
	address uint16
	regName string
}

func (t RWTarget) String() string {
	switch t.kind {
	case targetAddress:
		return "memory location"
	case targetByteRegister, targetWordRegister:
		return "register " + t.regName
	case targetCycles:
		return "cycles"
	case targetTime:
		return "time"
	}
	return "unknown"
}

// ParseTarget resolves a textual target to an RWTarget.
func ParseTarget(s string) (RWTarget, error) {
	switch s {
	case "cycles":
		return RWTarget{kind: targetCycles}, nil
	case "time":
		return RWTarget{kind: targetTime}, nil
	}

	upper := strings.ToUpper(s)
	switch upper {
	case "AF", "BC", "DE", "HL", "SP", "PC":
		return RWTarget{kind: targetWordRegister, regName: upper}, nil
	case "A", "F", "B", "C", "D", "E", "H", "L":
		return RWTarget{kind: targetByteRegister, regName: upper}, nil
	}

	addr, err := ParseNumber(s)
	if err != nil {
		return RWTarget{}, gberr.New(gberr.KindTargetParseFailed, "%q is not a valid register or memory location", s)
	}
	return RWTarget{kind: targetAddress, address: addr}, nil
}

// Read returns the target's current value.
func (t RWTarget) Read(gb *gameboy.GameBoy) (uint64, error) {
	switch t.kind {
	case targetAddress:
		v, err := gb.Bus().Read(t.address)
		if err != nil {
			return 0, err
		}
		return uint64(v), nil
	case targetByteRegister:
		return uint64(readByteRegister(gb, t.regName)), nil
	case targetWordRegister:
		return uint64(readWordRegister(gb, t.regName)), nil
	case targetCycles:
		return gb.Cycles(), nil
	case targetTime:
		return gb.Cycles() / (1 << 20), nil
	}
	return 0, nil
}

// Write stores val at the target and returns the value it held before the
// write. Cycles and time are read-only.
func (t RWTarget) Write(gb *gameboy.GameBoy, val uint16) (uint64, error) {
	switch t.kind {
	case targetAddress:
		old, err := gb.Bus().Read(t.address)
		if err != nil {
			return 0, err
		}
		if val > 0xFF {
			return 0, gberr.New(gberr.KindValueTooLarge, "%d does not fit in a byte at %04Xh", val, t.address)
		}
		if err := gb.Bus().Write(t.address, uint8(val)); err != nil {
			return 0, err
		}
		return uint64(old), nil
	case targetByteRegister:
		if val > 0xFF {
			return 0, gberr.New(gberr.KindValueTooLarge, "%d does not fit in register %s", val, t.regName)
		}
		old := readByteRegister(gb, t.regName)
		writeByteRegister(gb, t.regName, uint8(val))
		return uint64(old), nil
	case targetWordRegister:
		old := readWordRegister(gb, t.regName)
		writeWordRegister(gb, t.regName, val)
		return uint64(old), nil
	default:
		return 0, gberr.Sentinel(gberr.KindImmutableTarget)
	}
}

func readByteRegister(gb *gameboy.GameBoy, name string) uint8 {
	c := gb.CPU()
	switch name {
	case "A":
		return c.A
	case "F":
		return c.F
	case "B":
		return c.B
	case "C":
		return c.C
	case "D":
		return c.D
	case "E":
		return c.E
	case "H":
		return c.H
	case "L":
		return c.L
	}
	return 0
}

func writeByteRegister(gb *gameboy.GameBoy, name string, value uint8) {
	c := gb.CPU()
	switch name {
	case "A":
		c.A = value
	case "F":
		c.SetF(value)
	case "B":
		c.B = value
	case "C":
		c.C = value
	case "D":
		c.D = value
	case "E":
		c.E = value
	case "H":
		c.H = value
	case "L":
		c.L = value
	}
	gb.Emitter().Emit(events.KindRegisterWrite, events.RegisterWrite{Register: name, Value: uint16(readByteRegister(gb, name))})
}

func readWordRegister(gb *gameboy.GameBoy, name string) uint16 {
	c := gb.CPU()
	switch name {
	case "AF":
		return c.AF()
	case "BC":
		return c.BC()
	case "DE":
		return c.DE()
	case "HL":
		return c.HL()
	case "SP":
		return c.SP
	case "PC":
		return c.PC
	}
	return 0
}

func writeWordRegister(gb *gameboy.GameBoy, name string, value uint16) {
	c := gb.CPU()
	switch name {
	case "AF":
		c.SetAF(value)
	case "BC":
		c.SetBC(value)
	case "DE":
		c.SetDE(value)
	case "HL":
		c.SetHL(value)
	case "SP":
		c.SP = value
	case "PC":
		c.PC = value
	}
	gb.Emitter().Emit(events.KindRegisterWrite, events.RegisterWrite{Register: name, Value: readWordRegister(gb, name)})
}
