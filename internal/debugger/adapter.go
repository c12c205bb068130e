package debugger

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/holloway-dev/gbcore/internal/events"
	"github.com/holloway-dev/gbcore/internal/gameboy"
	"github.com/holloway-dev/gbcore/internal/gberr"
)

// Mode is the adapter's run state, per spec.md §6's
// "set-mode(unloaded|paused|hit-breakpoint(bp)|standard|uncapped)".
type Mode int

const (
	ModeUnloaded Mode = iota
	ModePaused
	ModeHitBreakpoint
	ModeStandard
	ModeUncapped
)

// CommandKind names one of the debugger surface's commands (spec.md §6).
type CommandKind int

const (
	CmdLoadROM CommandKind = iota
	CmdQueryRegisters
	CmdQueryMemory
	CmdStep
	CmdQueryExecTime
	CmdSetMode
	CmdAddBreakpoint
	CmdRemoveBreakpoint
	CmdToggleBreakpoint
)

// Command is one request to the adapter. RequestID is assigned by Submit;
// only the fields relevant to Kind need to be populated by the caller.
type Command struct {
	RequestID uint64
	Kind      CommandKind

	ROM []byte

	Start, End uint16

	Mode Mode

	Breakpoint   Breakpoint
	BreakpointID ID
	Active       bool
}

// RegisterSnapshot is the register file as of the moment query-registers
// ran, returned by value so it outlives the step that produced it.
type RegisterSnapshot struct {
	A, F, B, C, D, E, H, L uint8
	AF, BC, DE, HL, SP, PC uint16
}

// Response answers exactly one Command, correlated by RequestID.
type Response struct {
	RequestID uint64

	Registers RegisterSnapshot
	Memory    []uint8
	Cycles    uint64
	OldValue  uint64

	BreakpointID ID

	Err error
}

// Event is one asynchronous notification multiplexed onto the adapter's
// event stream, independent of the command/response exchange.
type Event struct {
	Kind    events.Kind
	Payload interface{}
}

// Adapter is the concrete message-passing boundary of spec.md §5: commands
// arrive FIFO on one channel, each produces exactly one correlated response,
// and events are multiplexed onto a third channel the host drains on its
// own schedule. Grounded on the teacher's hub run-loop
// (pkg/display/web/hub.go's "for { select { ... } }" over register/
// unregister/broadcast channels) and its FrameTime wall-clock pacing
// (internal/gameboy/gameboy.go).
type Adapter struct {
	gb      *gameboy.GameBoy
	monitor *Monitor
	mode    Mode

	nextID uint64

	commands  chan Command
	responses chan Response
	events    chan Event

	eventListeners []int
}

// framePeriod paces "standard" mode to one batch of cycles per tick, the
// same FrameRate the teacher's render loop ticks at.
const (
	frameRate      = 60
	framePeriod    = time.Second / frameRate
	cyclesPerFrame = gameboy.ClockSpeed / frameRate
)

// NewAdapter returns an Adapter with no cartridge loaded. Commands and
// responses are buffered (64 each), so Submit blocks on Run's goroutine only
// once 64 commands are queued and not yet drained.
func NewAdapter() *Adapter {
	return &Adapter{
		mode:      ModeUnloaded,
		commands:  make(chan Command, 64),
		responses: make(chan Response, 64),
		events:    make(chan Event, 256),
	}
}

// Submit assigns cmd a RequestID, enqueues it, and returns the stamped
// command so the caller can match it against a later Response.
func (a *Adapter) Submit(cmd Command) Command {
	cmd.RequestID = atomic.AddUint64(&a.nextID, 1)
	a.commands <- cmd
	return cmd
}

// Responses returns the channel a host drains for command results.
func (a *Adapter) Responses() <-chan Response { return a.responses }

// Events returns the channel a host drains for asynchronous notifications.
func (a *Adapter) Events() <-chan Event { return a.events }

// Mode reports the adapter's current run state.
func (a *Adapter) Mode() Mode { return a.mode }

// GameBoy exposes the running session for operations the command set
// doesn't cover directly (register/memory target read-write), or nil if no
// ROM has been loaded yet.
func (a *Adapter) GameBoy() *gameboy.GameBoy { return a.gb }

// BreakpointState reports the monitor's current stop state, or the zero
// State if no session is running.
func (a *Adapter) BreakpointState() State {
	if a.monitor == nil {
		return State{}
	}
	return a.monitor.State()
}

// Run drains commands FIFO on the calling goroutine until ctx is canceled.
// In "standard" and "uncapped" modes it also steps the emulator between
// commands — paced to wall clock in "standard", as fast as possible in
// "uncapped" — stopping automatically (entering ModeHitBreakpoint) the
// instant the monitor reports a hit. Cancellation stops only this loop; a
// command already being handled always runs to completion.
func (a *Adapter) Run(ctx context.Context) {
	ticker := time.NewTicker(framePeriod)
	defer ticker.Stop()
	budget := 0

	for {
		select {
		case <-ctx.Done():
			return
		case cmd := <-a.commands:
			a.responses <- a.handle(cmd)
			continue
		default:
		}

		switch a.mode {
		case ModeStandard:
			select {
			case <-ctx.Done():
				return
			case cmd := <-a.commands:
				a.responses <- a.handle(cmd)
			case <-ticker.C:
				budget += cyclesPerFrame
				for budget > 0 && a.mode == ModeStandard {
					var before uint64
					if a.gb != nil {
						before = a.gb.Cycles()
					}
					if !a.stepOnce() {
						break
					}
					budget -= int(a.gb.Cycles() - before)
				}
			}
		case ModeUncapped:
			select {
			case <-ctx.Done():
				return
			case cmd := <-a.commands:
				a.responses <- a.handle(cmd)
			default:
				a.stepOnce()
			}
		default:
			select {
			case <-ctx.Done():
				return
			case cmd := <-a.commands:
				a.responses <- a.handle(cmd)
			}
		}
	}
}

// stepOnce advances the emulator by one instruction and checks breakpoints,
// entering ModeHitBreakpoint on a hit. It reports whether stepping
// continued (false once a breakpoint fired or loading is required).
func (a *Adapter) stepOnce() bool {
	if a.gb == nil {
		a.mode = ModePaused
		return false
	}
	if err := a.gb.Step(); err != nil {
		a.mode = ModePaused
		return false
	}
	a.monitor.CheckAfterStep(a.gb)
	if state := a.monitor.State(); state.Hit {
		a.mode = ModeHitBreakpoint
		return false
	}
	return true
}

func (a *Adapter) handle(cmd Command) Response {
	switch cmd.Kind {
	case CmdLoadROM:
		return a.handleLoadROM(cmd)
	case CmdQueryRegisters:
		return a.handleQueryRegisters(cmd)
	case CmdQueryMemory:
		return a.handleQueryMemory(cmd)
	case CmdStep:
		return a.handleStep(cmd)
	case CmdQueryExecTime:
		return a.handleQueryExecTime(cmd)
	case CmdSetMode:
		return a.handleSetMode(cmd)
	case CmdAddBreakpoint:
		return a.handleAddBreakpoint(cmd)
	case CmdRemoveBreakpoint:
		return a.handleRemoveBreakpoint(cmd)
	case CmdToggleBreakpoint:
		return a.handleToggleBreakpoint(cmd)
	}
	return Response{RequestID: cmd.RequestID, Err: gberr.New(gberr.KindUnknownCommand, "%d", cmd.Kind)}
}

func (a *Adapter) handleLoadROM(cmd Command) Response {
	if a.gb == nil {
		gb, err := gameboy.New(cmd.ROM)
		if err != nil {
			return Response{RequestID: cmd.RequestID, Err: err}
		}
		a.gb = gb
		a.monitor = NewMonitor(gb)
		a.subscribeEvents()
	} else if err := a.gb.LoadROM(cmd.ROM); err != nil {
		return Response{RequestID: cmd.RequestID, Err: err}
	}
	a.mode = ModePaused
	return Response{RequestID: cmd.RequestID}
}

func (a *Adapter) handleQueryRegisters(cmd Command) Response {
	if a.gb == nil {
		return Response{RequestID: cmd.RequestID, Err: gberr.Sentinel(gberr.KindNotLoaded)}
	}
	c := a.gb.CPU()
	return Response{RequestID: cmd.RequestID, Registers: RegisterSnapshot{
		A: c.A, F: c.F, B: c.B, C: c.C, D: c.D, E: c.E, H: c.H, L: c.L,
		AF: c.AF(), BC: c.BC(), DE: c.DE(), HL: c.HL(), SP: c.SP, PC: c.PC,
	}}
}

func (a *Adapter) handleQueryMemory(cmd Command) Response {
	if a.gb == nil {
		return Response{RequestID: cmd.RequestID, Err: gberr.Sentinel(gberr.KindNotLoaded)}
	}
	var out []uint8
	addr := cmd.Start
	for {
		v, err := a.gb.Bus().Read(addr)
		if err != nil {
			out = append(out, 0)
		} else {
			out = append(out, v)
		}
		if addr == cmd.End {
			break
		}
		addr++
	}
	return Response{RequestID: cmd.RequestID, Memory: out}
}

func (a *Adapter) handleStep(cmd Command) Response {
	if a.gb == nil {
		return Response{RequestID: cmd.RequestID, Err: gberr.Sentinel(gberr.KindNotLoaded)}
	}
	if err := a.gb.Step(); err != nil {
		a.mode = ModePaused
		return Response{RequestID: cmd.RequestID, Cycles: a.gb.Cycles(), Err: err}
	}
	a.monitor.CheckAfterStep(a.gb)
	if a.monitor.State().Hit {
		a.mode = ModeHitBreakpoint
	}
	return Response{RequestID: cmd.RequestID, Cycles: a.gb.Cycles()}
}

func (a *Adapter) handleQueryExecTime(cmd Command) Response {
	if a.gb == nil {
		return Response{RequestID: cmd.RequestID}
	}
	return Response{RequestID: cmd.RequestID, Cycles: a.gb.Cycles()}
}

func (a *Adapter) handleSetMode(cmd Command) Response {
	if cmd.Mode == ModeUnloaded && a.gb != nil {
		return Response{RequestID: cmd.RequestID, Err: gberr.New(gberr.KindUnknownCommand, "cannot unload a running session")}
	}
	if cmd.Mode != ModeHitBreakpoint && a.monitor != nil {
		a.monitor.Resume()
	}
	a.mode = cmd.Mode
	return Response{RequestID: cmd.RequestID}
}

func (a *Adapter) handleAddBreakpoint(cmd Command) Response {
	if a.monitor == nil {
		return Response{RequestID: cmd.RequestID, Err: gberr.Sentinel(gberr.KindNotLoaded)}
	}
	id := a.monitor.Add(cmd.Breakpoint)
	return Response{RequestID: cmd.RequestID, BreakpointID: id}
}

func (a *Adapter) handleRemoveBreakpoint(cmd Command) Response {
	if a.monitor == nil || !a.monitor.Remove(cmd.BreakpointID) {
		return Response{RequestID: cmd.RequestID, Err: gberr.Sentinel(gberr.KindUnknownBreakpoint)}
	}
	return Response{RequestID: cmd.RequestID}
}

func (a *Adapter) handleToggleBreakpoint(cmd Command) Response {
	if a.monitor == nil || !a.monitor.SetActive(cmd.BreakpointID, cmd.Active) {
		return Response{RequestID: cmd.RequestID, Err: gberr.Sentinel(gberr.KindUnknownBreakpoint)}
	}
	return Response{RequestID: cmd.RequestID}
}

// subscribeEvents forwards every engine event kind onto the adapter's
// best-effort event stream: a full channel drops the event rather than
// blocking the step that produced it.
func (a *Adapter) subscribeEvents() {
	kinds := []events.Kind{
		events.KindStepComplete,
		events.KindRegisterWrite,
		events.KindMemoryRead,
		events.KindMemoryWrite,
		events.KindHBlank,
		events.KindVBlank,
		events.KindROMLoaded,
	}
	for _, kind := range kinds {
		k := kind
		id := a.gb.Emitter().On(k, func(kind events.Kind, payload interface{}) bool {
			select {
			case a.events <- Event{Kind: kind, Payload: payload}:
			default:
			}
			return true
		})
		a.eventListeners = append(a.eventListeners, id)
	}
}
