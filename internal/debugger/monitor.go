package debugger

import (
	"github.com/holloway-dev/gbcore/internal/events"
	"github.com/holloway-dev/gbcore/internal/gameboy"
)

// Comparison is one of the six relational operators a Test breakpoint
// condition can use, per original_source's monitor.rs Comparison enum.
type Comparison int

const (
	GreaterThan Comparison = iota
	GreaterThanEqual
	LessThan
	LessThanEqual
	Equal
	NotEqual
)

func (c Comparison) test(value, reference uint64) bool {
	switch c {
	case GreaterThan:
		return value > reference
	case GreaterThanEqual:
		return value >= reference
	case LessThan:
		return value < reference
	case LessThanEqual:
		return value <= reference
	case Equal:
		return value == reference
	case NotEqual:
		return value != reference
	}
	return false
}

// conditionKind distinguishes the three ways a breakpoint can fire:
// comparing a target's value, any read of a memory target, or any write.
type conditionKind int

const (
	ConditionTest conditionKind = iota
	ConditionRead
	ConditionWrite
)

// BreakpointCondition describes what makes a breakpoint fire.
type BreakpointCondition struct {
	Kind       conditionKind
	Comparison Comparison
	Reference  uint64
}

// Breakpoint watches one target for its condition.
type Breakpoint struct {
	Monitor   RWTarget
	Condition BreakpointCondition
	Active    bool
}

// ID identifies a registered breakpoint.
type ID uint32

// State is the monitor's current stop state.
type State struct {
	Hit        bool
	Breakpoint Breakpoint
}

// Monitor tracks breakpoints and the engine's current hit state, per
// original_source's DebugMonitor (olympia_engine/src/monitor.rs).
type Monitor struct {
	breakpoints  map[ID]*Breakpoint
	order        []ID
	next         ID
	state        State
	listenerRead int
	listenerWr   int
}

// NewMonitor returns a Monitor with no breakpoints, subscribed to gb's
// memory-read/write events for Read/Write-kind breakpoints.
func NewMonitor(gb *gameboy.GameBoy) *Monitor {
	m := &Monitor{breakpoints: make(map[ID]*Breakpoint)}
	m.listenerRead = gb.Emitter().On(events.KindMemoryRead, func(kind events.Kind, payload interface{}) bool {
		ev := payload.(events.MemoryRead)
		m.handleAddressEvent(ConditionRead, ev.Address)
		return true
	})
	m.listenerWr = gb.Emitter().On(events.KindMemoryWrite, func(kind events.Kind, payload interface{}) bool {
		ev := payload.(events.MemoryWrite)
		m.handleAddressEvent(ConditionWrite, ev.Address)
		return true
	})
	return m
}

// Resume clears the hit state, allowing the engine to continue.
func (m *Monitor) Resume() {
	m.state = State{}
}

// State reports the monitor's current stop state.
func (m *Monitor) State() State {
	return m.state
}

// Add registers bp and returns its identifier.
func (m *Monitor) Add(bp Breakpoint) ID {
	id := m.next
	m.next++
	bp.Active = true
	m.breakpoints[id] = &bp
	m.order = append(m.order, id)
	return id
}

// Remove deletes a breakpoint by id, reporting whether it existed.
func (m *Monitor) Remove(id ID) bool {
	if _, ok := m.breakpoints[id]; !ok {
		return false
	}
	delete(m.breakpoints, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// SetActive toggles whether a breakpoint is considered.
func (m *Monitor) SetActive(id ID, active bool) bool {
	bp, ok := m.breakpoints[id]
	if !ok {
		return false
	}
	bp.Active = active
	return true
}

func (m *Monitor) handleAddressEvent(kind conditionKind, addr uint16) {
	for _, id := range m.order {
		bp := m.breakpoints[id]
		if !bp.Active || bp.Condition.Kind != kind {
			continue
		}
		target, err := ParseTarget(hexAddress(addr))
		if err != nil || target != bp.Monitor {
			continue
		}
		m.state = State{Hit: true, Breakpoint: *bp}
	}
}

// CheckAfterStep evaluates every active Test-kind breakpoint against gb's
// current state. The engine has no per-register write event, so value
// comparisons are polled once per step rather than event-driven.
func (m *Monitor) CheckAfterStep(gb *gameboy.GameBoy) {
	for _, id := range m.order {
		bp := m.breakpoints[id]
		if !bp.Active || bp.Condition.Kind != ConditionTest {
			continue
		}
		value, err := bp.Monitor.Read(gb)
		if err != nil {
			continue
		}
		if bp.Condition.Comparison.test(value, bp.Condition.Reference) {
			m.state = State{Hit: true, Breakpoint: *bp}
		}
	}
}

func hexAddress(addr uint16) string {
	const hexDigits = "0123456789ABCDEF"
	buf := [4]byte{
		hexDigits[(addr>>12)&0xF],
		hexDigits[(addr>>8)&0xF],
		hexDigits[(addr>>4)&0xF],
		hexDigits[addr&0xF],
	}
	return string(buf[:]) + "h"
}
