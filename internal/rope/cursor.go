package rope

import "github.com/rivo/uniseg"

// Cursor is a grapheme-indexed position: Line is a 0-based line number,
// Column is a 0-based grapheme-cluster index into that line (never a byte
// or UTF-16 offset). Combining marks and ZWJ sequences count as part of
// their base grapheme, per spec invariant 4.
type Cursor struct {
	Line   int
	Column int
}

// Less reports whether c sorts before o (line-major, then column).
func (c Cursor) Less(o Cursor) bool {
	if c.Line != o.Line {
		return c.Line < o.Line
	}
	return c.Column < o.Column
}

// graphemes splits s into its grapheme clusters.
func graphemes(s string) []string {
	var out []string
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		out = append(out, gr.Str())
	}
	return out
}

// graphemeCount returns the number of grapheme clusters in s.
func graphemeCount(s string) int {
	n := 0
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		n++
	}
	return n
}

// byteOffsetForColumn converts a grapheme column into a byte offset into
// the line string, by iterating grapheme clusters of the line (never
// naive chars), so combining marks count as part of their base grapheme.
func byteOffsetForColumn(line string, column int) int {
	if column <= 0 {
		return 0
	}
	gr := uniseg.NewGraphemes(line)
	idx := 0
	off := 0
	for gr.Next() {
		if idx == column {
			return off
		}
		_, to := gr.Positions()
		off = to
		idx++
	}
	return off
}

// columnForByteOffset is the inverse of byteOffsetForColumn: given a byte
// offset into line, returns the grapheme column it corresponds to. Used to
// verify the cursor<->index bijection (spec invariant 4).
func columnForByteOffset(line string, byteOff int) int {
	gr := uniseg.NewGraphemes(line)
	col := 0
	for gr.Next() {
		from, _ := gr.Positions()
		if from >= byteOff {
			return col
		}
		col++
	}
	return col
}

// ByteOffsetForColumn exposes byteOffsetForColumn to other packages (the
// Editor's search/replace needs it to translate a literal-match byte
// range into grapheme columns).
func ByteOffsetForColumn(line string, column int) int { return byteOffsetForColumn(line, column) }

// ColumnForByteOffset exposes columnForByteOffset to other packages.
func ColumnForByteOffset(line string, byteOff int) int { return columnForByteOffset(line, byteOff) }

// GraphemeCount exposes graphemeCount to other packages (search match
// length in grapheme units).
func GraphemeCount(s string) int { return graphemeCount(s) }

// Graphemes exposes graphemes to other packages (word-wrap rendering
// needs to advance grapheme-by-grapheme, per spec §4.2).
func Graphemes(s string) []string { return graphemes(s) }
