package cartridge

import "github.com/holloway-dev/gbcore/internal/gberr"

const romBankSize = 0x4000
const ramBankSize = 0x2000

// mbc1 implements the MBC1 controller of spec.md §4.1: up to 2 MiB ROM, up
// to 32 KiB RAM, a 5-bit low ROM-select, a 2-bit high-select register
// shared between the ROM bank number and the RAM bank number depending on
// the paging mode, and a RAM-enable latch.
type mbc1 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	lowSelect  uint8 // 5 bits, 0 treated as 1
	highSelect uint8 // 2 bits
	largeRAM   bool  // paging mode: false = large-ROM, true = large-RAM
}

func newMBC1(rom []byte, ramSize int) *mbc1 {
	return &mbc1{
		rom:       rom,
		ram:       make([]byte, ramSize),
		lowSelect: 1,
	}
}

func (m *mbc1) romBankCount() int {
	return len(m.rom) / romBankSize
}

func (m *mbc1) switchableBank() uint8 {
	if m.largeRAM {
		return m.lowSelect
	}
	return m.lowSelect | (m.highSelect << 5)
}

func (m *mbc1) staticBank() uint8 {
	if m.largeRAM {
		return m.highSelect << 5
	}
	return 0
}

func (m *mbc1) ramBank() uint8 {
	if m.largeRAM {
		return m.highSelect
	}
	return 0
}

func (m *mbc1) Read(addr uint16) (uint8, error) {
	switch {
	case addr <= 0x3FFF:
		bank := int(m.staticBank()) % max1(m.romBankCount())
		offset := bank*romBankSize + int(addr)
		if offset >= len(m.rom) {
			return 0, gberr.New(gberr.KindCartridgeROMOutOfRange, "0x%04X (bank %d)", addr, bank)
		}
		return m.rom[offset], nil
	case addr <= 0x7FFF:
		bank := int(m.switchableBank()) % max1(m.romBankCount())
		offset := bank*romBankSize + int(addr-0x4000)
		if offset >= len(m.rom) {
			return 0, gberr.New(gberr.KindCartridgeROMOutOfRange, "0x%04X (bank %d)", addr, bank)
		}
		return m.rom[offset], nil
	case addr >= 0xA000 && addr <= 0xBFFF:
		return m.readRAM(addr)
	default:
		return 0, gberr.New(gberr.KindUnmappedAddress, "0x%04X not addressable by MBC1", addr)
	}
}

func (m *mbc1) readRAM(addr uint16) (uint8, error) {
	if len(m.ram) == 0 {
		return 0, gberr.Sentinel(gberr.KindNoCartridgeRAM)
	}
	if !m.ramEnabled {
		return 0, gberr.Sentinel(gberr.KindCartridgeRAMDisabled)
	}
	offset := int(m.ramBank())*ramBankSize + int(addr-0xA000)
	if offset >= len(m.ram) {
		offset %= len(m.ram)
	}
	return m.ram[offset], nil
}

func (m *mbc1) Write(addr uint16, value uint8) error {
	switch {
	case addr <= 0x1FFF:
		m.ramEnabled = value&0x0F == 0x0A
		return nil
	case addr <= 0x3FFF:
		value &= 0x1F
		if value == 0 {
			value = 1
		}
		m.lowSelect = value
		return nil
	case addr <= 0x5FFF:
		m.highSelect = value & 0x03
		return nil
	case addr <= 0x7FFF:
		m.largeRAM = value != 0
		return nil
	case addr >= 0xA000 && addr <= 0xBFFF:
		if len(m.ram) == 0 || !m.ramEnabled {
			return nil
		}
		offset := int(m.ramBank())*ramBankSize + int(addr-0xA000)
		if offset >= len(m.ram) {
			offset %= len(m.ram)
		}
		m.ram[offset] = value
		return nil
	default:
		return gberr.New(gberr.KindUnmappedAddress, "0x%04X not writable on MBC1", addr)
	}
}

func (m *mbc1) HasRAM() bool { return len(m.ram) > 0 }
func (m *mbc1) RAMSize() int { return len(m.ram) }

func max1(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
