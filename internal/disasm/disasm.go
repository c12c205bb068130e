// Package disasm renders decoded instructions as text, per spec.md §4.9.
// It shares its opcode metadata with the cpu package rather than keeping a
// second copy of the instruction tables.
package disasm

import (
	"fmt"
	"strings"

	"github.com/holloway-dev/gbcore/internal/cpu"
)

// Line is one disassembled instruction: its address, raw bytes, and text.
type Line struct {
	Address uint16
	Bytes   []uint8
	Text    string
}

// Decode disassembles one instruction starting at addr, using read to fetch
// bytes on demand by address (typically a closure over the bus's Read).
// It returns the rendered line; len(Line.Bytes) is the number of bytes the
// instruction occupies (1-3, or 2 for every CB-prefixed form).
func Decode(addr uint16, read func(uint16) uint8) Line {
	opcode := read(addr)

	if opcode == 0xCB {
		sub := read(addr + 1)
		text := cpu.CBMnemonic(sub)
		if !cpu.CBDefined(sub) {
			text = fmt.Sprintf("DB %sh,%sh", hexByte(opcode), hexByte(sub))
		}
		return Line{Address: addr, Bytes: []uint8{opcode, sub}, Text: text}
	}

	if !cpu.Defined(opcode) {
		return Line{Address: addr, Bytes: []uint8{opcode}, Text: fmt.Sprintf("DB %sh", hexByte(opcode))}
	}

	base := cpu.Mnemonic(opcode)
	n := cpu.OperandBytes(opcode)

	switch n {
	case 0:
		return Line{Address: addr, Bytes: []uint8{opcode}, Text: base}

	case 1:
		imm := read(addr + 1)
		var text string
		if opcode == 0x10 { // STOP's padding byte carries no value worth printing
			text = base
		} else if cpu.IsSignedOperand(opcode) {
			text = strings.Replace(base, "e", signedOffset(imm), 1)
		} else {
			text = strings.Replace(base, "n", hexByte(imm), 1)
		}
		return Line{Address: addr, Bytes: []uint8{opcode, imm}, Text: text}

	case 2:
		lo, hi := read(addr+1), read(addr+2)
		word := uint16(hi)<<8 | uint16(lo)
		text := strings.Replace(base, "nn", wordLiteral(word), 1)
		return Line{Address: addr, Bytes: []uint8{opcode, lo, hi}, Text: text}
	}

	return Line{Address: addr, Bytes: []uint8{opcode}, Text: base}
}

func hexByte(v uint8) string { return fmt.Sprintf("%Xh", v) }

func wordLiteral(v uint16) string { return fmt.Sprintf("$%Xh", v) }

func signedOffset(raw uint8) string {
	v := int8(raw)
	if v < 0 {
		return fmt.Sprintf("-%Xh", -int(v))
	}
	return fmt.Sprintf("%Xh", v)
}

// Layout selects one of the three surrounding presentations spec.md §4.9
// names for a run of disassembled lines.
type Layout int

const (
	// LayoutBlock prints an address label only every 16 bytes, followed by
	// the text for each instruction landing in that block.
	LayoutBlock Layout = iota
	// LayoutAnnotated prints address, raw hex bytes, and text per line.
	LayoutAnnotated
	// LayoutColumnar prints address and text in two fixed-width columns.
	LayoutColumnar
)

// Render disassembles count instructions starting at addr and formats them
// per layout.
func Render(addr uint16, count int, read func(uint16) uint8, layout Layout) string {
	var b strings.Builder
	cursor := addr
	lastBlock := uint16(0xFFFF)

	for i := 0; i < count; i++ {
		line := Decode(cursor, read)

		switch layout {
		case LayoutBlock:
			block := cursor &^ 0xF
			if block != lastBlock {
				fmt.Fprintf(&b, "%04X:\n", block)
				lastBlock = block
			}
			fmt.Fprintf(&b, "  %s\n", line.Text)

		case LayoutAnnotated:
			hexBytes := make([]string, len(line.Bytes))
			for j, by := range line.Bytes {
				hexBytes[j] = fmt.Sprintf("%02X", by)
			}
			fmt.Fprintf(&b, "%04X  %-8s  %s\n", cursor, strings.Join(hexBytes, " "), line.Text)

		case LayoutColumnar:
			fmt.Fprintf(&b, "%04X\t%s\n", cursor, line.Text)
		}

		cursor += uint16(len(line.Bytes))
	}

	return b.String()
}
