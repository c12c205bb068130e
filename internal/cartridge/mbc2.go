package cartridge

import "github.com/holloway-dev/gbcore/internal/gberr"

// mbc2RAMSize is the fixed 512-nibble on-controller RAM, per spec.md §3.
const mbc2RAMSize = 512

// mbc2 implements the MBC2 controller: up to 256 KiB ROM, 512 nibbles of
// on-controller RAM that mirrors throughout the cart-RAM window, and a
// 4-bit ROM-select distinguished from the RAM-enable latch by bit 8 of the
// write address.
type mbc2 struct {
	rom []byte
	ram []byte // only the low nibble of each byte is meaningful

	ramEnabled bool
	romSelect  uint8 // 4 bits, 0 treated as 1
}

func newMBC2(rom []byte) *mbc2 {
	return &mbc2{
		rom: rom,
		ram: make([]byte, mbc2RAMSize),
	}
}

func (m *mbc2) romBankCount() int {
	return max1(len(m.rom) / romBankSize)
}

func (m *mbc2) selectedBank() uint8 {
	bank := m.romSelect & 0x0F
	if bank == 0 {
		return 1
	}
	return bank
}

func (m *mbc2) Read(addr uint16) (uint8, error) {
	switch {
	case addr <= 0x3FFF:
		if int(addr) >= len(m.rom) {
			return 0, gberr.New(gberr.KindCartridgeROMOutOfRange, "0x%04X", addr)
		}
		return m.rom[addr], nil
	case addr <= 0x7FFF:
		bank := int(m.selectedBank()) % m.romBankCount()
		offset := bank*romBankSize + int(addr-0x4000)
		if offset >= len(m.rom) {
			return 0, gberr.New(gberr.KindCartridgeROMOutOfRange, "0x%04X (bank %d)", addr, bank)
		}
		return m.rom[offset], nil
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0, gberr.Sentinel(gberr.KindCartridgeRAMDisabled)
		}
		return m.ram[int(addr-0xA000)%mbc2RAMSize], nil
	default:
		return 0, gberr.New(gberr.KindUnmappedAddress, "0x%04X not addressable by MBC2", addr)
	}
}

func (m *mbc2) Write(addr uint16, value uint8) error {
	switch {
	case addr <= 0x3FFF:
		// bit 8 of the write address distinguishes ROM-select writes from
		// RAM-enable writes, per spec.md §4.1.
		if addr&0x0100 != 0 {
			m.romSelect = value & 0x0F
		} else {
			m.ramEnabled = value&0x0F == 0x0A
		}
		return nil
	case addr <= 0x7FFF:
		return nil
	case addr >= 0xA000 && addr <= 0xBFFF:
		if m.ramEnabled {
			m.ram[int(addr-0xA000)%mbc2RAMSize] = value & 0x0F
		}
		return nil
	default:
		return gberr.New(gberr.KindUnmappedAddress, "0x%04X not writable on MBC2", addr)
	}
}

func (m *mbc2) HasRAM() bool { return true }
func (m *mbc2) RAMSize() int { return mbc2RAMSize }
