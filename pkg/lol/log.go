// Package lol (log of location) is a leveled logger that prints a timestamp,
// a colored level tag and the source location of every log print.
package lol

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/fatih/color"
)

const (
	Off = iota
	Fatal
	Error
	Warn
	Info
	Debug
	Trace
)

var LevelNames = []string{
	"off",
	"fatal",
	"error",
	"warn",
	"info",
	"debug",
	"trace",
}

type (
	// Ln prints its arguments separated by spaces.
	Ln func(a ...any)
	// F prints like fmt.Printf.
	F func(format string, a ...any)
	// S prints a spew dump of its arguments.
	S func(a ...any)
	// C takes a closure so the message is only built when the level is on.
	C func(closure func() string)
	// Chk logs a non-nil error and reports whether there was one.
	Chk func(e error) bool
	// Err builds an error with fmt.Errorf, logs it and returns it.
	Err func(format string, a ...any) error

	// LevelPrinter is the set of printers for one level.
	LevelPrinter struct {
		Ln
		F
		S
		C
		Chk
		Err
	}

	// LevelSpec is the id, tag and colorizer of a level.
	LevelSpec struct {
		ID        int
		Name      string
		Colorizer func(a ...any) string
	}
)

var LevelSpecs = []LevelSpec{
	{Off, "", NoSprint},
	{Fatal, "FTL", color.New(color.BgRed, color.FgHiWhite).Sprint},
	{Error, "ERR", color.New(color.FgHiRed).Sprint},
	{Warn, "WRN", color.New(color.FgHiYellow).Sprint},
	{Info, "INF", color.New(color.FgHiGreen).Sprint},
	{Debug, "DBG", color.New(color.FgHiBlue).Sprint},
	{Trace, "TRC", color.New(color.FgHiMagenta).Sprint},
}

// NoSprint is a noop colorizer.
func NoSprint(a ...any) string { return "" }

// Log holds a printer per level.
type Log struct {
	F, E, W, I, D, T LevelPrinter
}

// Check holds the Chk printer of each level.
type Check struct {
	F, E, W, I, D, T Chk
}

// Errorf holds the Err printer of each level.
type Errorf struct {
	F, E, W, I, D, T Err
}

// Logger bundles the printers of one output.
type Logger struct {
	*Log
	*Check
	*Errorf
}

var (
	// Level is the most verbose level that prints.
	Level atomic.Int32
	// NoTimeStamp drops the timestamp prefix, handy for tests.
	NoTimeStamp atomic.Bool

	// Main is the process-wide logger writing to stderr.
	Main = &Logger{}

	mu sync.Mutex
)

func init() {
	Main.Log, Main.Check, Main.Errorf = New(os.Stderr)
	Level.Store(Info)
}

// SetLoggers sets the level by number.
func SetLoggers(level int) {
	if level < Off || level > Trace {
		level = Info
	}
	Level.Store(int32(level))
}

// GetLogLevel returns the level number for a level name, Info if unknown.
func GetLogLevel(level string) int {
	level = strings.ToLower(strings.TrimSpace(level))
	for i := range LevelNames {
		if level == LevelNames[i] {
			return i
		}
	}
	return Info
}

// SetLogLevel sets the level by name.
func SetLogLevel(level string) { SetLoggers(GetLogLevel(level)) }

// JoinStrings joins anything into one string with spaces between items.
func JoinStrings(a ...any) string {
	parts := make([]string, len(a))
	for i := range a {
		parts[i] = fmt.Sprint(a[i])
	}
	return strings.Join(parts, " ")
}

var msgCol = color.New(color.FgBlue).Sprint

func emit(writer io.Writer, l int32, text string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintf(writer,
		"%s%s %s %s\n",
		msgCol(TimeStamper()),
		LevelSpecs[l].Colorizer(LevelSpecs[l].Name),
		text,
		msgCol(GetLoc(3)),
	)
}

// GetPrinter returns the printers for level l writing to writer.
func GetPrinter(l int32, writer io.Writer) LevelPrinter {
	on := func() bool { return Level.Load() >= l }
	return LevelPrinter{
		Ln: func(a ...any) {
			if on() {
				emit(writer, l, JoinStrings(a...))
			}
		},
		F: func(format string, a ...any) {
			if on() {
				emit(writer, l, fmt.Sprintf(format, a...))
			}
		},
		S: func(a ...any) {
			if on() {
				emit(writer, l, spew.Sdump(a...))
			}
		},
		C: func(closure func() string) {
			if on() {
				emit(writer, l, closure())
			}
		},
		Chk: func(e error) bool {
			if e == nil {
				return false
			}
			if on() {
				emit(writer, l, e.Error())
			}
			return true
		},
		Err: func(format string, a ...any) error {
			err := fmt.Errorf(format, a...)
			if on() {
				emit(writer, l, err.Error())
			}
			return err
		},
	}
}

// New creates the printers of every level for writer.
func New(writer io.Writer) (l *Log, c *Check, errorf *Errorf) {
	l = &Log{
		T: GetPrinter(Trace, writer),
		D: GetPrinter(Debug, writer),
		I: GetPrinter(Info, writer),
		W: GetPrinter(Warn, writer),
		E: GetPrinter(Error, writer),
		F: GetPrinter(Fatal, writer),
	}
	c = &Check{
		F: l.F.Chk,
		E: l.E.Chk,
		W: l.W.Chk,
		I: l.I.Chk,
		D: l.D.Chk,
		T: l.T.Chk,
	}
	errorf = &Errorf{
		F: l.F.Err,
		E: l.E.Err,
		W: l.W.Err,
		I: l.I.Err,
		D: l.D.Err,
		T: l.T.Err,
	}
	return
}

// TimeStamper formats the current time for a log line.
func TimeStamper() string {
	if NoTimeStamp.Load() {
		return ""
	}
	return time.Now().Format("2006-01-02T15:04:05.000Z07:00 ")
}

// GetLoc returns the file:line of the caller skip frames up.
func GetLoc(skip int) string {
	_, file, line, _ := runtime.Caller(skip)
	return fmt.Sprintf("%s:%d", file, line)
}
