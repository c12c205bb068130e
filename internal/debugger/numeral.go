// Package debugger implements the host-facing command/response/event
// adapter of spec.md §5-6: a numeric-literal parser, read/write target
// resolution, a breakpoint monitor, and a channel-based adapter wrapping a
// gameboy.GameBoy.
package debugger

import (
	"strconv"
	"strings"

	"github.com/holloway-dev/gbcore/internal/gberr"
)

// ParseNumber accepts 0x/0b/0o prefixes, h/b suffixes, or plain decimal,
// per spec.md §4.10.
func ParseNumber(src string) (uint16, error) {
	lowered := strings.ToLower(src)
	var (
		value uint64
		err   error
	)
	switch {
	case strings.HasPrefix(lowered, "0x"):
		value, err = strconv.ParseUint(src[2:], 16, 16)
	case strings.HasPrefix(lowered, "0b"):
		value, err = strconv.ParseUint(src[2:], 2, 16)
	case strings.HasPrefix(lowered, "0o"):
		value, err = strconv.ParseUint(src[2:], 8, 16)
	case strings.HasSuffix(lowered, "h"):
		value, err = strconv.ParseUint(src[:len(src)-1], 16, 16)
	case strings.HasSuffix(lowered, "b"):
		value, err = strconv.ParseUint(src[:len(src)-1], 2, 16)
	default:
		value, err = strconv.ParseUint(src, 10, 16)
	}
	if err != nil {
		return 0, gberr.Wrap(gberr.KindTargetParseFailed, err, "parsing numeral %q", src)
	}
	return uint16(value), nil
}
