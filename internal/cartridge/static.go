package cartridge

import "github.com/holloway-dev/gbcore/internal/gberr"

// staticROM is the no-banking cartridge variant: the whole image is visible
// across both ROM windows, and there is no cartridge RAM.
type staticROM struct {
	rom []byte
}

func newStaticROM(data []byte) *staticROM {
	return &staticROM{rom: data}
}

func (s *staticROM) Read(addr uint16) (uint8, error) {
	if int(addr) >= len(s.rom) {
		return 0, gberr.New(gberr.KindCartridgeROMOutOfRange, "0x%04X exceeds %d-byte ROM", addr, len(s.rom))
	}
	return s.rom[addr], nil
}

func (s *staticROM) Write(addr uint16, value uint8) error {
	// writes to the ROM windows are no-ops; there is no cart RAM to write.
	return nil
}

func (s *staticROM) HasRAM() bool { return false }
func (s *staticROM) RAMSize() int { return 0 }
