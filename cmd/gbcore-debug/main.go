// Command gbcore-debug is an interactive REPL over the debugger adapter,
// grounded on the teacher's flag-parsing idiom (cmd/goboy/main.go) and on
// original_source's olympia_cli debugger command set.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/holloway-dev/gbcore/internal/debugger"
	"github.com/holloway-dev/gbcore/internal/disasm"
	"github.com/holloway-dev/gbcore/internal/gberr"
)

const prompt = "> "

type byteRange struct {
	start, end uint16
}

var namedRanges = map[string]byteRange{
	"header":    {0x0000, 0x014F},
	"staticrom": {0x0000, 0x3FFF},
	"switchrom": {0x4000, 0x7FFF},
	"vram":      {0x8000, 0x9FFF},
	"cartram":   {0xA000, 0xBFFF},
	"sysram":    {0xC000, 0xDFFF},
	"cpuram":    {0xFE00, 0xFFFF},
}

func parseRange(src string) (byteRange, error) {
	if r, ok := namedRanges[src]; ok {
		return r, nil
	}
	parts := strings.Split(src, ":")
	if len(parts) != 2 {
		return byteRange{}, gberr.New(gberr.KindTargetParseFailed, "invalid range %q: format is <start>:<end>", src)
	}
	start := uint16(0)
	end := uint16(0xFFFF)
	if parts[0] != "" {
		v, err := debugger.ParseNumber(strings.TrimSpace(parts[0]))
		if err != nil {
			return byteRange{}, err
		}
		start = v
	}
	if parts[1] != "" {
		v, err := debugger.ParseNumber(strings.TrimSpace(parts[1]))
		if err != nil {
			return byteRange{}, err
		}
		end = v
	}
	return byteRange{start, end}, nil
}

type repl struct {
	adapter *debugger.Adapter
	in      io.Reader
	out     io.Writer
	errw    io.Writer
}

func main() {
	romPath := flag.String("rom", "", "path to the ROM image to load")
	flag.String("boot", "", "path to a boot ROM image (accepted, not executed)")
	flag.String("model", "dmg", "target model; only \"dmg\" is supported")
	flag.Parse()

	if *romPath == "" {
		fmt.Fprintln(os.Stderr, "missing -rom")
		os.Exit(1)
	}
	rom, err := os.ReadFile(*romPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	adapter := debugger.NewAdapter()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go adapter.Run(ctx)

	loadCmd := adapter.Submit(debugger.Command{Kind: debugger.CmdLoadROM, ROM: rom})
	if resp := awaitResponse(adapter, loadCmd.RequestID); resp.Err != nil {
		fmt.Fprintln(os.Stderr, resp.Err)
		os.Exit(1)
	}

	run(adapter, os.Stdin, os.Stdout, os.Stderr)
}

// run drives one debugger session to completion — until in is exhausted or
// an "exit"/"quit" command is read — grounded on original_source's
// olympia_cli debugger's debug(gb, in_, out, err) entry point.
func run(adapter *debugger.Adapter, in io.Reader, out, errw io.Writer) {
	r := &repl{adapter: adapter, in: in, out: out, errw: errw}
	r.loop()
}

func awaitResponse(a *debugger.Adapter, id uint64) debugger.Response {
	for resp := range a.Responses() {
		if resp.RequestID == id {
			return resp
		}
	}
	return debugger.Response{}
}

func (r *repl) loop() {
	scanner := bufio.NewScanner(r.in)
	for {
		fmt.Fprint(r.errw, prompt)
		if !scanner.Scan() {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		name, args := fields[0], fields[1:]
		if r.dispatch(name, args) {
			return
		}
	}
}

// dispatch runs one command and reports whether the REPL should exit.
func (r *repl) dispatch(name string, args []string) bool {
	switch name {
	case "exit", "quit":
		fmt.Fprintln(r.out, "Exiting")
		return true
	case "print-bytes", "pb":
		r.printBytes(args)
	case "print-registers", "pr":
		r.printRegisters()
	case "step", "s":
		r.step(args)
	case "cycle-count", "cc":
		r.cycleCount()
	case "read", "r":
		r.read(args)
	case "write", "w":
		r.write(args)
	case "breakpoint", "br":
		r.breakpoint(args)
	case "fast-forward", "ff":
		r.fastForward()
	case "current", "ci":
		r.current()
	case "help":
		r.help()
	default:
		fmt.Fprintf(r.errw, "Unknown command: %q. List commands with \"help\"\n", name)
	}
	return false
}

func (r *repl) help() {
	names := make([]string, 0, len(commandHelp))
	for name := range commandHelp {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(r.out, "%s: %s\n", name, commandHelp[name])
	}
}

var commandHelp = map[string]string{
	"print-bytes (pb)":              "print bytes in a range, e.g. pb 0xC000:0xC01F or pb vram",
	"print-registers (pr)":          "print all registers and flags",
	"step (s) [n]":                  "step n instructions (default 1)",
	"cycle-count (cc)":               "print cycles and M-cycles elapsed",
	"read (r) target":               "read a register, address, cycles, or time",
	"write (w) target value":        "write a register or address",
	"breakpoint (br) target value":  "break when target equals value",
	"fast-forward (ff)":             "run until a breakpoint fires or an error occurs",
	"current (ci)":                  "disassemble the instruction at PC",
	"exit":                          "leave the debugger",
}

func (r *repl) printBytes(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.errw, "usage: print-bytes <range>")
		return
	}
	rng, err := parseRange(args[0])
	if err != nil {
		fmt.Fprintln(r.errw, err)
		return
	}
	cmd := r.adapter.Submit(debugger.Command{Kind: debugger.CmdQueryMemory, Start: rng.start, End: rng.end})
	resp := awaitResponse(r.adapter, cmd.RequestID)
	if resp.Err != nil {
		fmt.Fprintln(r.errw, resp.Err)
		return
	}
	addr := rng.start
	for i, b := range resp.Memory {
		if i%16 == 0 {
			if i != 0 {
				fmt.Fprintln(r.out)
			}
			fmt.Fprintf(r.out, "%04X: ", addr)
		}
		fmt.Fprintf(r.out, "%02X ", b)
		addr++
	}
	fmt.Fprintln(r.out)
}

func (r *repl) printRegisters() {
	cmd := r.adapter.Submit(debugger.Command{Kind: debugger.CmdQueryRegisters})
	resp := awaitResponse(r.adapter, cmd.RequestID)
	if resp.Err != nil {
		fmt.Fprintln(r.errw, resp.Err)
		return
	}
	reg := resp.Registers
	fmt.Fprintf(r.out, "A: %02X, F: %02X, AF: %04X\n", reg.A, reg.F, reg.AF)
	fmt.Fprintf(r.out, "B: %02X, C: %02X, BC: %04X\n", reg.B, reg.C, reg.BC)
	fmt.Fprintf(r.out, "D: %02X, E: %02X, DE: %04X\n", reg.D, reg.E, reg.DE)
	fmt.Fprintf(r.out, "H: %02X, L: %02X, HL: %04X\n", reg.H, reg.L, reg.HL)
	fmt.Fprintf(r.out, "SP: %04X, PC: %04X\n", reg.SP, reg.PC)
	fmt.Fprintf(r.out, "Flags - Zero: %t, AddSubtract: %t, HalfCarry: %t, Carry: %t\n",
		reg.F&0x80 != 0, reg.F&0x40 != 0, reg.F&0x20 != 0, reg.F&0x10 != 0)
}

func (r *repl) step(args []string) {
	steps := uint64(1)
	if len(args) == 1 {
		v, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			fmt.Fprintln(r.errw, err)
			return
		}
		steps = v
	}
	for i := uint64(0); i < steps; i++ {
		cmd := r.adapter.Submit(debugger.Command{Kind: debugger.CmdStep})
		if resp := awaitResponse(r.adapter, cmd.RequestID); resp.Err != nil {
			fmt.Fprintln(r.errw, resp.Err)
		}
	}
}

func (r *repl) cycleCount() {
	cmd := r.adapter.Submit(debugger.Command{Kind: debugger.CmdQueryExecTime})
	resp := awaitResponse(r.adapter, cmd.RequestID)
	fmt.Fprintf(r.out, "Cycles: %d / M-Cycles: %d\n", resp.Cycles, resp.Cycles/4)
}

func (r *repl) read(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(r.errw, "usage: read <target>")
		return
	}
	gb := r.adapter.GameBoy()
	if gb == nil {
		fmt.Fprintln(r.errw, gberr.Sentinel(gberr.KindNotLoaded))
		return
	}
	target, err := debugger.ParseTarget(args[0])
	if err != nil {
		fmt.Fprintln(r.errw, err)
		return
	}
	value, err := target.Read(gb)
	if err != nil {
		fmt.Fprintln(r.errw, err)
		return
	}
	fmt.Fprintf(r.out, "%X\n", value)
}

func (r *repl) write(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(r.errw, "usage: write <target> <value>")
		return
	}
	gb := r.adapter.GameBoy()
	if gb == nil {
		fmt.Fprintln(r.errw, gberr.Sentinel(gberr.KindNotLoaded))
		return
	}
	target, err := debugger.ParseTarget(args[0])
	if err != nil {
		fmt.Fprintln(r.errw, err)
		return
	}
	value, err := debugger.ParseNumber(args[1])
	if err != nil {
		fmt.Fprintln(r.errw, err)
		return
	}
	old, err := target.Write(gb, value)
	if err != nil {
		fmt.Fprintln(r.errw, err)
		return
	}
	fmt.Fprintf(r.out, "Wrote %X (was %X)\n", value, old)
}

func (r *repl) breakpoint(args []string) {
	if len(args) != 2 {
		fmt.Fprintln(r.errw, "usage: breakpoint <target> <value>")
		return
	}
	target, err := debugger.ParseTarget(args[0])
	if err != nil {
		fmt.Fprintln(r.errw, err)
		return
	}
	value, err := debugger.ParseNumber(args[1])
	if err != nil {
		fmt.Fprintln(r.errw, err)
		return
	}
	bp := debugger.Breakpoint{
		Monitor: target,
		Condition: debugger.BreakpointCondition{
			Kind:       debugger.ConditionTest,
			Comparison: debugger.Equal,
			Reference:  uint64(value),
		},
	}
	cmd := r.adapter.Submit(debugger.Command{Kind: debugger.CmdAddBreakpoint, Breakpoint: bp})
	resp := awaitResponse(r.adapter, cmd.RequestID)
	if resp.Err != nil {
		fmt.Fprintln(r.errw, resp.Err)
		return
	}
	fmt.Fprintf(r.out, "Added breakpoint for %s == %X\n", target, value)
}

func (r *repl) fastForward() {
	for {
		cmd := r.adapter.Submit(debugger.Command{Kind: debugger.CmdStep})
		resp := awaitResponse(r.adapter, cmd.RequestID)
		if resp.Err != nil {
			fmt.Fprintf(r.errw, "Broke due to error %s\n", resp.Err)
			return
		}
		if state := r.adapter.BreakpointState(); state.Hit {
			fmt.Fprintf(r.out, "Broke on breakpoint for %s == %X\n", state.Breakpoint.Monitor, state.Breakpoint.Condition.Reference)
			return
		}
	}
}

func (r *repl) current() {
	gb := r.adapter.GameBoy()
	if gb == nil {
		fmt.Fprintln(r.errw, gberr.Sentinel(gberr.KindNotLoaded))
		return
	}
	pc := gb.CPU().PC
	bad := false
	line := disasm.Decode(pc, func(addr uint16) uint8 {
		v, err := gb.Bus().Read(addr)
		if err != nil {
			bad = true
			return 0
		}
		return v
	})
	if bad {
		fmt.Fprintln(r.out, "--")
		return
	}
	fmt.Fprintln(r.out, line.Text)
}
