package errors

import "github.com/nooga/dynvar/pkg/source"

// Position represents a specific location in an input document or output stream.
// It includes line and column numbers (1-based) for human-readability,
// and byte offsets (0-based) for tooling.
type Position struct {
	Line     int                // 1-based line number, 0 when unknown
	Column   int                // 1-based column number (rune index within the line)
	StartPos int                // 0-based byte offset of the start of the error span
	EndPos   int                // 0-based byte offset of the end of the error span (exclusive)
	Source   *source.SourceFile // Document the position points into, nil for output streams
}

// At builds a Position for a byte offset into sf.
func At(sf *source.SourceFile, offset int) Position {
	p := Position{StartPos: offset, EndPos: offset, Source: sf}
	if sf != nil {
		p.Line, p.Column = sf.LineColumn(offset)
	}
	return p
}
