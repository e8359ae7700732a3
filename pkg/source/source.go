package source

import (
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// SourceFile is a named input document with its text
type SourceFile struct {
	Name    string   // Display name (e.g., "doc.json", "<stdin>", "<string>")
	Path    string   // Full file path (empty for stdin and in-memory text)
	Content string   // The document text
	lines   []string // Cached split lines (lazy initialization)
}

// NewSourceFile creates a new source file
func NewSourceFile(name, path, content string) *SourceFile {
	return &SourceFile{
		Name:    name,
		Path:    path,
		Content: content,
	}
}

// NewStdinSource creates a source file for stdin input
func NewStdinSource(content string) *SourceFile {
	return &SourceFile{Name: "<stdin>", Content: content}
}

// NewStringSource creates a source file for text handed over in memory
func NewStringSource(content string) *SourceFile {
	return &SourceFile{Name: "<string>", Content: content}
}

// FromFile creates a SourceFile from a file path and content
func FromFile(filePath, content string) *SourceFile {
	return NewSourceFile(filepath.Base(filePath), filePath, content)
}

// Lines returns the source split into lines (cached)
func (sf *SourceFile) Lines() []string {
	if sf.lines == nil {
		sf.lines = strings.Split(sf.Content, "\n")
	}
	return sf.lines
}

// DisplayPath returns the best path for display (prefers Path, falls back to Name)
func (sf *SourceFile) DisplayPath() string {
	if sf.Path != "" {
		return sf.Path
	}
	return sf.Name
}

// IsFile returns true if this represents an actual file (has a path)
func (sf *SourceFile) IsFile() bool {
	return sf.Path != ""
}

// LineColumn converts a byte offset into a 1-based line and a 1-based rune
// column. Offsets past the end clamp to the end.
func (sf *SourceFile) LineColumn(offset int) (line, column int) {
	if offset > len(sf.Content) {
		offset = len(sf.Content)
	}
	if offset < 0 {
		offset = 0
	}
	head := sf.Content[:offset]
	line = strings.Count(head, "\n") + 1
	lineStart := strings.LastIndexByte(head, '\n') + 1
	column = utf8.RuneCountInString(head[lineStart:]) + 1
	return
}
