// Package corelog provides component-prefixed logging: a small type so
// every package that logs (runtime, transport, httpclient, corehost) tags its lines with
// its own component name instead of repeating the prefix by hand.
package corelog

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"
)

// Logger writes component-prefixed lines to an underlying *log.Logger.
// Color is applied only when the destination looks like a terminal.
type Logger struct {
	component string
	color     bool
	out       *log.Logger
}

var stderrIsTTY = isatty.IsTerminal(os.Stderr.Fd())

// New returns a Logger tagging every line "component[level]: msg", writing to
// os.Stderr through the standard library's log package (flags: date+time).
func New(component string) *Logger {
	return &Logger{
		component: component,
		color:     stderrIsTTY,
		out:       log.New(os.Stderr, "", log.LstdFlags),
	}
}

// NewTo is New but against an explicit writer, for tests that want to
// capture output instead of writing to os.Stderr.
func NewTo(component string, w io.Writer) *Logger {
	return &Logger{component: component, out: log.New(w, "", log.LstdFlags)}
}

const (
	colorReset  = "\x1b[0m"
	colorYellow = "\x1b[33m"
	colorRed    = "\x1b[31m"
)

func (l *Logger) prefix(tag string) string {
	if !l.color {
		return fmt.Sprintf("%s[%s]: ", l.component, tag)
	}
	c := colorReset
	switch tag {
	case "warn":
		c = colorYellow
	case "error":
		c = colorRed
	}
	return fmt.Sprintf("%s%s[%s]%s: ", c, l.component, tag, colorReset)
}

// Info logs an informational line: "component[info]: msg".
func (l *Logger) Info(format string, args ...any) {
	l.out.Printf(l.prefix("info")+format, args...)
}

// Warn logs a warning line, colored yellow on a terminal.
func (l *Logger) Warn(format string, args ...any) {
	l.out.Printf(l.prefix("warn")+format, args...)
}

// Error logs an error line, colored red on a terminal.
func (l *Logger) Error(format string, args ...any) {
	l.out.Printf(l.prefix("error")+format, args...)
}

// Bytes renders n for a log line using humanize's IEC byte notation,
// e.g. for "persisted library (%s)" after a storage write.
func Bytes(n int) string {
	return humanize.Bytes(uint64(n))
}

// Since renders a duration in the short, rounded human form humanize uses
// for "addon manifest fetch took %s" style lines.
func Since(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	return humanize.FormatFloat("#,###.##", seconds) + "s"
}
