// Package log provides the small leveled logger used throughout the engine.
// Subsystems never write to stdout/stderr directly; they hold a Logger so a
// host can redirect, silence, or format diagnostics as it sees fit.
package log

import (
	"fmt"
	"io"
	"os"
)

// Logger is the logging contract every subsystem depends on.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type writerLogger struct {
	out io.Writer
}

// New returns a Logger that writes leveled, prefixed lines to w.
func New(w io.Writer) Logger {
	return &writerLogger{out: w}
}

// NewStderr returns a Logger that writes to os.Stderr.
func NewStderr() Logger {
	return New(os.Stderr)
}

func (l *writerLogger) Infof(format string, args ...interface{}) {
	fmt.Fprintf(l.out, "[INFO]\t"+format+"\n", args...)
}

func (l *writerLogger) Errorf(format string, args ...interface{}) {
	fmt.Fprintf(l.out, "[ERROR]\t"+format+"\n", args...)
}

func (l *writerLogger) Debugf(format string, args ...interface{}) {
	fmt.Fprintf(l.out, "[DEBUG]\t"+format+"\n", args...)
}

type nullLogger struct{}

// NewNull returns a Logger that discards everything. Useful for tests.
func NewNull() Logger {
	return nullLogger{}
}

func (nullLogger) Infof(format string, args ...interface{})  {}
func (nullLogger) Errorf(format string, args ...interface{}) {}
func (nullLogger) Debugf(format string, args ...interface{}) {}
