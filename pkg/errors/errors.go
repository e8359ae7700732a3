package errors

import (
	"fmt"
	"io"
	"strings"
)

// DynError is the interface implemented by all dynvar errors.
//
// Missing properties and calls to non-callable values are not errors at all;
// the object API answers them with the void value.
type DynError interface {
	error
	Pos() Position
	Kind() string // "Sink", "Parse" or "Conversion"
	// Message returns the specific error message without position info.
	Message() string
	Unwrap() error
}

// --- Concrete Error Types ---

// SinkError is a failed write while emitting JSON. StartPos holds the number
// of bytes accepted before the failure.
type SinkError struct {
	Position
	Msg   string
	Cause error
}

func (e *SinkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("Sink Error at byte %d: %s: %v", e.StartPos, e.Msg, e.Cause)
	}
	return fmt.Sprintf("Sink Error at byte %d: %s", e.StartPos, e.Msg)
}
func (e *SinkError) Pos() Position   { return e.Position }
func (e *SinkError) Kind() string    { return "Sink" }
func (e *SinkError) Message() string { return e.Msg }
func (e *SinkError) Unwrap() error   { return e.Cause }
func (e *SinkError) CausedBy(cause error) *SinkError {
	e.Cause = cause
	return e
}

// ParseError represents malformed JSON or YAML input.
type ParseError struct {
	Position
	Msg   string
	Cause error
}

func (e *ParseError) Error() string {
	name := "<input>"
	if e.Source != nil {
		name = e.Source.DisplayPath()
	}
	return fmt.Sprintf("Parse Error in %s at %d:%d: %s", name, e.Line, e.Column, e.Msg)
}
func (e *ParseError) Pos() Position   { return e.Position }
func (e *ParseError) Kind() string    { return "Parse" }
func (e *ParseError) Message() string { return e.Msg }
func (e *ParseError) Unwrap() error   { return e.Cause }
func (e *ParseError) CausedBy(cause error) *ParseError {
	e.Cause = cause
	return e
}

// ConversionError reports a Go or YAML value that has no Value variant.
type ConversionError struct {
	Position
	Msg   string
	Cause error
}

func (e *ConversionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Conversion Error at %d:%d: %s", e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("Conversion Error: %s", e.Msg)
}
func (e *ConversionError) Pos() Position   { return e.Position }
func (e *ConversionError) Kind() string    { return "Conversion" }
func (e *ConversionError) Message() string { return e.Msg }
func (e *ConversionError) Unwrap() error   { return e.Cause }
func (e *ConversionError) CausedBy(cause error) *ConversionError {
	e.Cause = cause
	return e
}

// --- Helpers for creating errors ---

func NewSinkError(offset int, format string, args ...any) *SinkError {
	return &SinkError{Position: Position{StartPos: offset, EndPos: offset}, Msg: fmt.Sprintf(format, args...)}
}

func NewParseError(pos Position, format string, args ...any) *ParseError {
	return &ParseError{Position: pos, Msg: fmt.Sprintf(format, args...)}
}

func NewConversionError(pos Position, format string, args ...any) *ConversionError {
	return &ConversionError{Position: pos, Msg: fmt.Sprintf(format, args...)}
}

// --- Error Reporting ---

// DisplayErrors prints errors to w in a user-friendly format, including the
// source line and a position marker when the error points into a document.
func DisplayErrors(w io.Writer, errs []DynError) {
	for _, err := range errs {
		pos := err.Pos()
		kind := err.Kind()
		msg := err.Message()

		if pos.Source == nil || pos.Line < 1 || pos.Line > len(pos.Source.Lines()) {
			fmt.Fprintf(w, "%s Error: %s\n", kind, msg)
			if cause := err.Unwrap(); cause != nil {
				fmt.Fprintf(w, "  caused by: %v\n", cause)
			}
			continue
		}

		sourceLine := strings.TrimRight(pos.Source.Lines()[pos.Line-1], "\r\n\t ")

		// Format: <Kind> Error in <file> at <Line>:<Column>: <Message>
		fmt.Fprintf(w, "%s Error in %s at %d:%d: %s\n", kind, pos.Source.DisplayPath(), pos.Line, pos.Column, msg)
		fmt.Fprintf(w, "  %s\n", sourceLine)
		// Column is 1-based; the marker sits under that rune.
		fmt.Fprintf(w, "  %s^\n", strings.Repeat(" ", max(pos.Column-1, 0)))
		fmt.Fprintln(w)
	}
}
