package cartridge

import "github.com/holloway-dev/gbcore/internal/gberr"

// Header offsets, per spec.md §6 "ROM file format".
const (
	offsetTitle           = 0x134
	offsetTargetConsole   = 0x143
	offsetCartridgeType   = 0x147
	offsetROMSize         = 0x148
	offsetRAMSize         = 0x149
	offsetDestinationCode = 0x14A
	offsetHeaderChecksum  = 0x14D

	minCartridgeSize = 0x200
)

// TargetConsole classifies the byte at 0x143.
type TargetConsole uint8

const (
	GameBoyOnly TargetConsole = iota
	ColorEnhanced
	ColorOnly
)

// Type names the cartridge controller variant implied by the 0x147 byte.
type Type uint8

const (
	TypeStaticROM Type = iota
	TypeMBC1
	TypeMBC1RAM
	TypeMBC2
)

// Header is the subset of the cartridge header the engine and its debugger
// surface care about.
type Header struct {
	Title         string
	Target        TargetConsole
	CartridgeType Type
	RAMSize       int
	ChecksumValid bool
}

func lookupRAMSize(id byte) (int, error) {
	switch id {
	case 0:
		return 0, nil
	case 1:
		return 2 * 1024, nil
	case 2:
		return 8 * 1024, nil
	case 3:
		return 32 * 1024, nil
	case 4:
		return 128 * 1024, nil
	case 5:
		return 64 * 1024, nil
	default:
		return 0, gberr.New(gberr.KindUnsupportedRAMSize, "RAM size code 0x%02X", id)
	}
}

func lookupTarget(id byte) TargetConsole {
	switch id {
	case 0xC0:
		return ColorOnly
	case 0x80:
		return ColorEnhanced
	default:
		return GameBoyOnly
	}
}

func lookupType(id byte) (Type, error) {
	switch id {
	case 0:
		return TypeStaticROM, nil
	case 1:
		return TypeMBC1, nil
	case 2, 3:
		return TypeMBC1RAM, nil
	case 5, 6:
		return TypeMBC2, nil
	default:
		return 0, gberr.New(gberr.KindUnsupportedCartridgeType, "cartridge type 0x%02X", id)
	}
}

// parseHeader validates minimum length and extracts the header fields
// described in spec.md §4.1 and §6.
func parseHeader(data []byte) (Header, error) {
	if len(data) < minCartridgeSize {
		return Header{}, gberr.New(gberr.KindCartridgeTooSmall, "got %d bytes, need at least 0x200", len(data))
	}

	typeID := data[offsetCartridgeType]
	cartType, err := lookupType(typeID)
	if err != nil {
		return Header{}, err
	}

	var ramSize int
	if cartType == TypeMBC1RAM {
		ramSize, err = lookupRAMSize(data[offsetRAMSize])
		if err != nil {
			return Header{}, err
		}
	}

	title := make([]byte, 0, 16)
	for i := offsetTitle; i < offsetTargetConsole && i < len(data); i++ {
		if data[i] == 0 {
			break
		}
		title = append(title, data[i])
	}

	checksum := byte(0)
	for i := 0x134; i <= 0x14C && i < len(data); i++ {
		checksum = checksum - data[i] - 1
	}

	return Header{
		Title:         string(title),
		Target:        lookupTarget(data[offsetTargetConsole]),
		CartridgeType: cartType,
		RAMSize:       ramSize,
		ChecksumValid: len(data) > offsetHeaderChecksum && checksum == data[offsetHeaderChecksum],
	}, nil
}
