package rope

import "strings"

// Insert places text at cursor, returns the cursor immediately after the
// inserted text, and pushes an Insert action. If text contains newlines,
// the resulting cursor is on the final fragment's line, per spec §4.1.
func (b *Buffer) Insert(cursor Cursor, text string) (Cursor, error) {
	if !b.validCursor(cursor) {
		return cursor, ErrOutOfRange
	}
	if text == "" {
		return cursor, nil
	}
	b.rawInsert(cursor, text)
	b.pushAction(Action{Kind: ActionInsert, Pos: cursor, Text: text})
	b.recomputeModified()
	return b.advance(cursor, text), nil
}

// rawInsert performs the mutation without touching history.
func (b *Buffer) rawInsert(cursor Cursor, text string) {
	line := b.lines[cursor.Line]
	off := byteOffsetForColumn(line, cursor.Column)
	before, after := line[:off], line[off:]

	if !strings.Contains(text, "\n") {
		b.lines[cursor.Line] = before + text + after
		return
	}

	parts := strings.Split(text, "\n")
	newLines := make([]string, 0, len(parts)+1)
	newLines = append(newLines, before+parts[0])
	newLines = append(newLines, parts[1:len(parts)-1]...)
	newLines = append(newLines, parts[len(parts)-1]+after)

	tail := append([]string{}, b.lines[cursor.Line+1:]...)
	b.lines = append(b.lines[:cursor.Line], newLines...)
	b.lines = append(b.lines, tail...)
}

// advance computes the cursor immediately following an insertion of text
// starting at start.
func (b *Buffer) advance(start Cursor, text string) Cursor {
	if !strings.Contains(text, "\n") {
		return Cursor{Line: start.Line, Column: start.Column + graphemeCount(text)}
	}
	parts := strings.Split(text, "\n")
	lastLineGraphemes := graphemeCount(parts[len(parts)-1])
	return Cursor{Line: start.Line + len(parts) - 1, Column: lastLineGraphemes}
}

// DeleteCharForward deletes the grapheme at cursor (or joins with the next
// line if at line end). Returns true if something was deleted.
func (b *Buffer) DeleteCharForward(cursor Cursor) (bool, error) {
	if !b.validCursor(cursor) {
		return false, ErrOutOfRange
	}
	end := cursor
	if cursor.Column < b.LineGraphemeCount(cursor.Line) {
		end.Column++
	} else if cursor.Line < b.LineCount()-1 {
		end = Cursor{Line: cursor.Line + 1, Column: 0}
	} else {
		return false, nil
	}
	text := b.rawDelete(cursor, end)
	b.pushAction(Action{Kind: ActionDelete, Pos: cursor, Text: text})
	b.recomputeModified()
	return true, nil
}

// Backspace deletes one grapheme left of cursor (or joins with the
// previous line), returning the new cursor position.
func (b *Buffer) Backspace(cursor Cursor) (Cursor, error) {
	if !b.validCursor(cursor) {
		return cursor, ErrOutOfRange
	}
	var start Cursor
	if cursor.Column > 0 {
		start = Cursor{Line: cursor.Line, Column: cursor.Column - 1}
	} else if cursor.Line > 0 {
		start = Cursor{Line: cursor.Line - 1, Column: b.LineGraphemeCount(cursor.Line - 1)}
	} else {
		return cursor, nil
	}
	text := b.rawDelete(start, cursor)
	b.pushAction(Action{Kind: ActionDelete, Pos: start, Text: text})
	b.recomputeModified()
	return start, nil
}

// DeleteRange removes the text between start and end (end exclusive,
// start/end reordered if needed) as a single Delete action.
func (b *Buffer) DeleteRange(start, end Cursor) error {
	if !b.validCursor(start) || !b.validCursor(end) {
		return ErrOutOfRange
	}
	if end.Less(start) {
		start, end = end, start
	}
	if start == end {
		return nil
	}
	text := b.rawDelete(start, end)
	b.pushAction(Action{Kind: ActionDelete, Pos: start, Text: text})
	b.recomputeModified()
	return nil
}

// rawDelete removes [start,end) without touching history, returning the
// removed text.
func (b *Buffer) rawDelete(start, end Cursor) string {
	if end.Less(start) {
		start, end = end, start
	}
	if start.Line == end.Line {
		line := b.lines[start.Line]
		so := byteOffsetForColumn(line, start.Column)
		eo := byteOffsetForColumn(line, end.Column)
		removed := line[so:eo]
		b.lines[start.Line] = line[:so] + line[eo:]
		return removed
	}

	startLine := b.lines[start.Line]
	endLine := b.lines[end.Line]
	so := byteOffsetForColumn(startLine, start.Column)
	eo := byteOffsetForColumn(endLine, end.Column)

	var removed strings.Builder
	removed.WriteString(startLine[so:])
	for i := start.Line + 1; i < end.Line; i++ {
		removed.WriteByte('\n')
		removed.WriteString(b.lines[i])
	}
	removed.WriteByte('\n')
	removed.WriteString(endLine[:eo])

	merged := startLine[:so] + endLine[eo:]
	tail := append([]string{}, b.lines[end.Line+1:]...)
	b.lines = append(b.lines[:start.Line], merged)
	b.lines = append(b.lines, tail...)

	return removed.String()
}

// TextBetween returns the raw text spanning [start,end), without mutating
// the buffer or history. Used by selection copy and replace.
func (b *Buffer) TextBetween(start, end Cursor) string {
	if end.Less(start) {
		start, end = end, start
	}
	if start.Line == end.Line {
		line := b.lines[start.Line]
		so := byteOffsetForColumn(line, start.Column)
		eo := byteOffsetForColumn(line, end.Column)
		return line[so:eo]
	}
	var sb strings.Builder
	startLine := b.lines[start.Line]
	so := byteOffsetForColumn(startLine, start.Column)
	sb.WriteString(startLine[so:])
	for i := start.Line + 1; i < end.Line; i++ {
		sb.WriteByte('\n')
		sb.WriteString(b.lines[i])
	}
	endLine := b.lines[end.Line]
	eo := byteOffsetForColumn(endLine, end.Column)
	sb.WriteByte('\n')
	sb.WriteString(endLine[:eo])
	return sb.String()
}

// LenChars returns the total number of runes (Unicode code points) in the
// document, used by the length-commutativity invariant (spec invariant 6).
func (b *Buffer) LenChars() int {
	n := 0
	for i, l := range b.lines {
		if i > 0 {
			n++ // newline
		}
		n += len([]rune(l))
	}
	return n
}

// CountChars returns the rune count of s.
func CountChars(s string) int { return len([]rune(s)) }

// CursorToCharIndex converts a grapheme cursor to a document-wide rune
// index, for property-testing the bijection in spec invariant 4.
func (b *Buffer) CursorToCharIndex(c Cursor) int {
	idx := 0
	for i := 0; i < c.Line; i++ {
		idx += len([]rune(b.lines[i])) + 1
	}
	line := b.lines[c.Line]
	off := byteOffsetForColumn(line, c.Column)
	idx += len([]rune(line[:off]))
	return idx
}

// CharIndexToCursor is the inverse of CursorToCharIndex.
func (b *Buffer) CharIndexToCursor(idx int) Cursor {
	for i, l := range b.lines {
		runes := []rune(l)
		if idx <= len(runes) {
			prefix := string(runes[:idx])
			return Cursor{Line: i, Column: columnForByteOffset(l, len(prefix))}
		}
		idx -= len(runes) + 1
	}
	last := len(b.lines) - 1
	return Cursor{Line: last, Column: b.LineGraphemeCount(last)}
}
