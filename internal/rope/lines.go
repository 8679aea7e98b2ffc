package rope

import "strings"

// IndentUnit returns the string inserted by one indent step.
func IndentUnit(useTabs bool, width int) string {
	if useTabs {
		return "\t"
	}
	if width <= 0 {
		width = 4
	}
	return strings.Repeat(" ", width)
}

// IndentLines adds unit at the start of every line in [firstLine,lastLine],
// as a single grouped history action.
func (b *Buffer) IndentLines(firstLine, lastLine int, unit string) error {
	if firstLine > lastLine {
		firstLine, lastLine = lastLine, firstLine
	}
	g := b.beginGroup()
	for i := firstLine; i <= lastLine && i < b.LineCount(); i++ {
		if _, err := b.Insert(Cursor{Line: i, Column: 0}, unit); err != nil {
			return err
		}
	}
	g.commit(Cursor{Line: firstLine, Column: 0})
	b.recomputeModified()
	return nil
}

// UnindentLines removes up to one indent unit (a leading tab, or up to
// width leading spaces) from the start of every line in range.
func (b *Buffer) UnindentLines(firstLine, lastLine int, useTabs bool, width int) error {
	if firstLine > lastLine {
		firstLine, lastLine = lastLine, firstLine
	}
	g := b.beginGroup()
	for i := firstLine; i <= lastLine && i < b.LineCount(); i++ {
		line := b.Line(i)
		n := leadingUnindentWidth(line, width)
		if n == 0 {
			continue
		}
		end := Cursor{Line: i, Column: columnForByteOffset(line, n)}
		if err := b.DeleteRange(Cursor{Line: i, Column: 0}, end); err != nil {
			return err
		}
	}
	g.commit(Cursor{Line: firstLine, Column: 0})
	b.recomputeModified()
	return nil
}

// leadingUnindentWidth returns the byte count to strip: a single leading
// tab, or up to `width` leading spaces, whichever the line starts with.
func leadingUnindentWidth(line string, width int) int {
	if width <= 0 {
		width = 4
	}
	if strings.HasPrefix(line, "\t") {
		return 1
	}
	n := 0
	for n < width && n < len(line) && line[n] == ' ' {
		n++
	}
	return n
}

// DuplicateLine copies line i and inserts the copy immediately below it.
func (b *Buffer) DuplicateLine(i int) error {
	if i < 0 || i >= b.LineCount() {
		return ErrOutOfRange
	}
	text := b.Line(i) + "\n"
	_, err := b.Insert(Cursor{Line: i, Column: 0}, text)
	return err
}
