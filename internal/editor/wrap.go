package editor

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/termide/termide/internal/rope"
)

// WrapMode selects how WrapLine breaks a line into visual rows, per spec
// §4.2 and config key editor.wrap_mode.
type WrapMode int

const (
	WrapOff WrapMode = iota
	WrapSimple
	WrapSmart
)

// VisualRow is one rendered row produced by wrapping a logical line.
type VisualRow struct {
	Text     string // the row's text, grapheme-complete
	StartCol int    // the logical line's grapheme column this row begins at
}

// graphemeWidth is a grapheme cluster's display-column advance: CJK = 2,
// combining = 0, per spec §4.2 ("Unicode width ... a single visual-column
// advance is the grapheme's display width").
func graphemeWidth(g string) int {
	w := 0
	for _, r := range g {
		rw := runewidth.RuneWidth(r)
		if rw > w {
			w = rw
		}
	}
	return w
}

// WrapLine breaks line into visual rows of at most width display columns.
// WrapOff returns the line unwrapped as a single row. WrapSimple breaks
// strictly at the width boundary; WrapSmart prefers the nearest word
// boundary at or before the width boundary, falling back to a hard break
// when a single word exceeds width.
func WrapLine(line string, width int, mode WrapMode) []VisualRow {
	if mode == WrapOff || width <= 0 {
		return []VisualRow{{Text: line, StartCol: 0}}
	}
	graphemes := rope.Graphemes(line)
	if len(graphemes) == 0 {
		return []VisualRow{{Text: "", StartCol: 0}}
	}

	var rows []VisualRow
	rowStart := 0
	col := 0
	lastBreak := -1 // index into graphemes of the last space seen on this row

	flush := func(end int) {
		var sb strings.Builder
		for _, g := range graphemes[rowStart:end] {
			sb.WriteString(g)
		}
		rows = append(rows, VisualRow{Text: sb.String(), StartCol: rowStart})
	}

	i := 0
	for i < len(graphemes) {
		g := graphemes[i]
		w := graphemeWidth(g)
		if col+w > width && col > 0 {
			breakAt := i
			if mode == WrapSmart && lastBreak >= rowStart && lastBreak+1 > rowStart {
				breakAt = lastBreak + 1
			}
			flush(breakAt)
			rowStart = breakAt
			i = breakAt
			col = 0
			lastBreak = -1
			continue
		}
		if g == " " {
			lastBreak = i
		}
		col += w
		i++
	}
	flush(len(graphemes))
	return rows
}

// CursorVisualPos maps a grapheme column within the wrapped line to
// (visual row, visual column) for cursor-overlay placement during render
// (spec §4.2: "Cursor screen position is captured during the render
// pass").
func CursorVisualPos(rows []VisualRow, column int) (row, col int) {
	for i, r := range rows {
		graphemes := rope.Graphemes(r.Text)
		end := r.StartCol + len(graphemes)
		if column < end || i == len(rows)-1 {
			return i, column - r.StartCol
		}
	}
	return 0, column
}
