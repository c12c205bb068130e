// Package dma implements the OAM DMA transfer engine of spec.md §4.6.
package dma

import (
	"github.com/holloway-dev/gbcore/internal/mmu"
	"github.com/holloway-dev/gbcore/internal/types"
)

type state int

const (
	idle state = iota
	copying
)

// transferLen is the number of bytes a DMA transfer copies into OAM.
const transferLen = 160

// Engine copies a page of memory into OAM, one byte per machine cycle,
// restarting from scratch whenever a new page is written mid-transfer.
type Engine struct {
	state         state
	idx           int
	offset        uint16
	registerValue uint8
}

// NewEngine returns an idle DMA engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Tick observes io.DMA for a new page, then — if a transfer is in
// progress — copies one more byte from the source page into OAM.
func (e *Engine) Tick(bus *mmu.Bus, io *mmu.IO) error {
	if io.DMA != e.registerValue {
		e.start(io.DMA)
	}
	if e.state != copying {
		return nil
	}

	i := e.idx
	e.idx++
	if e.idx == transferLen {
		e.state = idle
	}

	value, err := bus.Read(e.offset + uint16(i))
	if err != nil {
		return err
	}
	return bus.Write(types.OAM.Start+uint16(i), value)
}

func (e *Engine) start(registerValue uint8) {
	e.registerValue = registerValue
	e.offset = uint16(registerValue) * 0x100
	e.idx = 0
	e.state = copying
}

// Active reports whether a transfer is currently in progress.
func (e *Engine) Active() bool {
	return e.state == copying
}
