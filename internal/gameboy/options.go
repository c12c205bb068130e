package gameboy

import "github.com/holloway-dev/gbcore/internal/log"

// Opt configures a GameBoy at construction time, per the teacher's
// functional-options idiom (internal/gameboy/gameboy.go's GameBoyOpt).
type Opt func(*GameBoy)

// WithLogger directs diagnostic output to logger instead of the default
// no-op logger.
func WithLogger(logger log.Logger) Opt {
	return func(g *GameBoy) {
		g.log = logger
	}
}

// Model names a target console. CGB support is a Non-goal; WithModel is
// kept only so a host's flag plumbing has somewhere to land, and ModelDMG
// is the only model defined.
type Model uint8

const (
	ModelDMG Model = iota
)

// WithModel is a no-op: it accepts any Model value and changes nothing, and
// neither New nor its callers check the value, since CGB emulation is a
// Non-goal carried over from spec.md.
func WithModel(m Model) Opt {
	return func(g *GameBoy) {}
}
