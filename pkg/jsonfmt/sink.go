package jsonfmt

import (
	"bufio"
	"io"

	"github.com/nooga/dynvar/pkg/errors"
	"github.com/nooga/dynvar/pkg/log"
)

// DefaultIndentSize is the number of spaces per nesting level in pretty output.
const DefaultIndentSize = 2

// Options tune the text a Sink produces.
type Options struct {
	IndentSize       int    // spaces per nesting level, DefaultIndentSize when zero
	NewLine          string // line terminator, "\n" when empty
	MaxDecimalPlaces int    // digits after the point for doubles, 0 for the shortest exact form
}

func (o Options) withDefaults() Options {
	if o.IndentSize <= 0 {
		o.IndentSize = DefaultIndentSize
	}
	if o.NewLine == "" {
		o.NewLine = "\n"
	}
	if o.MaxDecimalPlaces < 0 {
		o.MaxDecimalPlaces = 0
	}
	return o
}

// Sink is the buffered output JSON is written to. The first failed write is
// kept: every later write is dropped and reports it again, so emitters can
// write a whole document and check the error once.
type Sink struct {
	w       *bufio.Writer
	opts    Options
	written int
	err     error
	scratch []byte
}

func NewSink(w io.Writer, opts Options) *Sink {
	return &Sink{w: bufio.NewWriter(w), opts: opts.withDefaults()}
}

func (s *Sink) Options() Options { return s.opts }
func (s *Sink) IndentSize() int  { return s.opts.IndentSize }

// Written is the number of bytes accepted so far.
func (s *Sink) Written() int { return s.written }

// Err returns the kept failure, an *errors.SinkError.
func (s *Sink) Err() error { return s.err }

func (s *Sink) fail(err error) error {
	if s.err == nil {
		se := errors.NewSinkError(s.written, "json output failed").CausedBy(err)
		log.D.F("%v", se)
		s.err = se
	}
	return s.err
}

func (s *Sink) Write(p []byte) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.w.Write(p)
	s.written += n
	if err != nil {
		return n, s.fail(err)
	}
	return n, nil
}

func (s *Sink) WriteString(str string) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	n, err := s.w.WriteString(str)
	s.written += n
	if err != nil {
		return n, s.fail(err)
	}
	return n, nil
}

func (s *Sink) WriteByte(c byte) error {
	if s.err != nil {
		return s.err
	}
	if err := s.w.WriteByte(c); err != nil {
		return s.fail(err)
	}
	s.written++
	return nil
}

// WriteEscaped writes str with JSON string escaping applied, without quotes.
func (s *Sink) WriteEscaped(str string) error {
	s.scratch = AppendEscaped(s.scratch[:0], str)
	_, err := s.Write(s.scratch)
	return err
}

var spaces = []byte("                                ")

// WriteSpaces writes n spaces.
func (s *Sink) WriteSpaces(n int) error {
	for n > 0 && s.err == nil {
		chunk := min(n, len(spaces))
		s.Write(spaces[:chunk])
		n -= chunk
	}
	return s.err
}

// NewLine writes the configured line terminator.
func (s *Sink) NewLine() error {
	_, err := s.WriteString(s.opts.NewLine)
	return err
}

// Flush pushes buffered output to the underlying writer.
func (s *Sink) Flush() error {
	if s.err != nil {
		return s.err
	}
	if err := s.w.Flush(); err != nil {
		return s.fail(err)
	}
	return nil
}
