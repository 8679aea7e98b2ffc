// Package rope implements the text-storage core of the editor: a
// line-indexed document with grapheme-correct cursor arithmetic and an
// undo/redo history, per spec §4.1.
//
// Grounded on the Action{actionType,position,content}/undoStack/redoStack
// model in the pack's jellexet-golang-text-editor buffer, generalized to
// the Insert/Delete/Group action set spec.md requires and rebuilt on top
// of rivo/uniseg for grapheme-cluster-correct columns (the teacher's own
// buffer package wasn't retrieved, so the undo-log shape is this
// package's closest grounding).
package rope

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LineEnding is the line terminator detected on load and preserved on save.
type LineEnding int

const (
	LF LineEnding = iota
	CRLF
)

// ErrOutOfRange is returned when a cursor does not satisfy the buffer's
// line/column invariants.
var ErrOutOfRange = errors.New("rope: cursor out of range")

// Buffer is a mutable in-memory text document.
type Buffer struct {
	lines      []string // one entry per line, no trailing newline
	filePath   string
	hasPath    bool
	lineEnding LineEnding
	modified   bool
	savedHash  string // content hash of the last-saved (or initial) state

	history    []Action
	redoStack  []Action
}

// New creates an empty, unmodified buffer with no backing file.
func New() *Buffer {
	b := &Buffer{lines: []string{""}, lineEnding: LF}
	b.savedHash = b.contentHash()
	return b
}

// Load reads path from disk, detecting its line ending from the first
// occurrence of \n or \r\n.
func Load(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rope: load %s: %w", path, err)
	}
	ending := LF
	if idx := bytes.IndexByte(data, '\n'); idx > 0 && data[idx-1] == '\r' {
		ending = CRLF
	}
	text := string(data)
	if ending == CRLF {
		text = strings.ReplaceAll(text, "\r\n", "\n")
	}
	lines := splitLines(text)
	b := &Buffer{
		lines:      lines,
		filePath:   path,
		hasPath:    true,
		lineEnding: ending,
	}
	b.savedHash = b.contentHash()
	return b, nil
}

func splitLines(text string) []string {
	if text == "" {
		return []string{""}
	}
	lines := strings.Split(text, "\n")
	return lines
}

// FilePath returns the buffer's backing file, if any.
func (b *Buffer) FilePath() (string, bool) { return b.filePath, b.hasPath }

// SetFilePath associates the buffer with path without touching contents.
func (b *Buffer) SetFilePath(path string) {
	b.filePath = path
	b.hasPath = true
}

// LineEnding reports the buffer's detected/preserved line ending.
func (b *Buffer) LineEnding() LineEnding { return b.lineEnding }

// Modified reports whether the buffer differs from the last saved state.
func (b *Buffer) Modified() bool { return b.modified }

// LineCount returns the number of lines in the document.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns the raw text of line i (no trailing newline).
func (b *Buffer) Line(i int) string {
	if i < 0 || i >= len(b.lines) {
		return ""
	}
	return b.lines[i]
}

// LineGraphemeCount returns the number of grapheme clusters on line i.
func (b *Buffer) LineGraphemeCount(i int) int {
	return graphemeCount(b.Line(i))
}

// validCursor reports whether c satisfies the buffer's invariants.
func (b *Buffer) validCursor(c Cursor) bool {
	if c.Line < 0 || c.Line >= len(b.lines) {
		return false
	}
	return c.Column >= 0 && c.Column <= b.LineGraphemeCount(c.Line)
}

func (b *Buffer) contentHash() string {
	var sb strings.Builder
	for i, l := range b.lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(l)
	}
	return sb.String()
}

func (b *Buffer) recomputeModified() {
	b.modified = b.contentHash() != b.savedHash
}

// SaveTo atomically writes the buffer to path (temp file + rename) with
// the preserved line ending, then clears Modified.
func (b *Buffer) SaveTo(path string) error {
	sep := "\n"
	if b.lineEnding == CRLF {
		sep = "\r\n"
	}
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-termide-*")
	if err != nil {
		return fmt.Errorf("rope: create temp: %w", err)
	}
	tmpPath := tmp.Name()
	w := bufio.NewWriter(tmp)
	for i, l := range b.lines {
		if i > 0 {
			w.WriteString(sep)
		}
		w.WriteString(l)
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("rope: write temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rope: close temp: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rope: rename: %w", err)
	}
	b.filePath = path
	b.hasPath = true
	b.savedHash = b.contentHash()
	b.modified = false
	return nil
}

// Save writes to the buffer's existing file path.
func (b *Buffer) Save() error {
	if !b.hasPath {
		return fmt.Errorf("rope: buffer has no file path")
	}
	return b.SaveTo(b.filePath)
}

// MarkSaved records the current content as the saved baseline without
// writing to disk (used after an external force-save/reload decision).
func (b *Buffer) MarkSaved() {
	b.savedHash = b.contentHash()
	b.modified = false
}

// Text returns the full document as a single string, lines joined by \n.
func (b *Buffer) Text() string { return b.contentHash() }
