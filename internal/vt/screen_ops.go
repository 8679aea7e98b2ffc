package vt

import "github.com/mattn/go-runewidth"

// PutChar writes ch with the current style at the cursor and advances it,
// wrapping to the next line first if WrapPending was set by a previous
// write that reached the last column (spec §4.3 print(ch)).
func (s *Screen) PutChar(ch rune) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Flags.WrapPending {
		s.newLineLocked()
		s.Flags.WrapPending = false
	}

	g := s.active()
	w := runewidth.RuneWidth(ch)
	if w <= 0 {
		w = 1
	}
	g.set(s.Cursor.Row, s.Cursor.Col, Cell{Ch: ch, Style: s.CurrentStyle})
	if w == 2 {
		g.set(s.Cursor.Row, s.Cursor.Col+1, Cell{Ch: 0, Style: s.CurrentStyle})
	}

	if s.Cursor.Col+w >= s.cols {
		s.Cursor.Col = s.cols - 1
		s.Flags.WrapPending = true
	} else {
		s.Cursor.Col += w
	}
}

// NewLine moves the cursor down one row, scrolling the active buffer if
// already on the last row (spec §4.3 execute('\n')).
func (s *Screen) NewLine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.newLineLocked()
}

func (s *Screen) newLineLocked() {
	if s.Cursor.Row == s.rows-1 {
		s.scrollUpLocked(1)
	} else {
		s.Cursor.Row++
	}
	s.Flags.WrapPending = false
}

// CarriageReturn moves the cursor to column 0.
func (s *Screen) CarriageReturn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cursor.Col = 0
	s.Flags.WrapPending = false
}

// Tab advances to the next 8-column tab stop.
func (s *Screen) Tab() {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := ((s.Cursor.Col / 8) + 1) * 8
	if next >= s.cols {
		next = s.cols - 1
	}
	s.Cursor.Col = next
}

// Backspace moves the cursor left one column, non-destructively.
func (s *Screen) Backspace() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Cursor.Col > 0 {
		s.Cursor.Col--
	}
	s.Flags.WrapPending = false
}

// scrollUpLocked shifts the active buffer up by n rows. On the primary
// buffer, evicted rows are pushed into scrollback; on the alternate
// buffer they are discarded, per spec invariant 10.
func (s *Screen) scrollUpLocked(n int) {
	g := s.active()
	for i := 0; i < n; i++ {
		if !s.Flags.AltActive {
			row := make([]Cell, s.cols)
			copy(row, g.cells[0])
			s.Scrollback.PushBack(row)
		}
		copy(g.cells, g.cells[1:])
		g.cells[s.rows-1] = make([]Cell, s.cols)
		for j := range g.cells[s.rows-1] {
			g.cells[s.rows-1][j] = BlankCell
		}
	}
}

// MoveCursor applies a relative/absolute motion, clamped to the grid.
func (s *Screen) MoveCursor(dRow, dCol int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cursor.Row = clamp(s.Cursor.Row+dRow, 0, s.rows-1)
	s.Cursor.Col = clamp(s.Cursor.Col+dCol, 0, s.cols-1)
	s.Flags.WrapPending = false
}

// SetCursor moves the cursor to an absolute position, clamped.
func (s *Screen) SetCursor(row, col int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cursor.Row = clamp(row, 0, s.rows-1)
	s.Cursor.Col = clamp(col, 0, s.cols-1)
	s.Flags.WrapPending = false
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SaveCursor / RestoreCursor implement CSI s / CSI u.
func (s *Screen) SaveCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedCursor = s.Cursor
}

func (s *Screen) RestoreCursor() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Cursor = s.savedCursor
}

// EraseMode selects which region an erase operation clears.
type EraseMode int

const (
	EraseToEnd EraseMode = iota
	EraseToStart
	EraseAll
	EraseAllAndScrollback
)

// EraseInDisplay implements CSI J.
func (s *Screen) EraseInDisplay(mode EraseMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.active()
	switch mode {
	case EraseToEnd:
		g.clearRow(s.Cursor.Row)
		for r := s.Cursor.Row + 1; r < s.rows; r++ {
			g.clearRow(r)
		}
	case EraseToStart:
		for r := 0; r < s.Cursor.Row; r++ {
			g.clearRow(r)
		}
		g.clearRow(s.Cursor.Row)
	case EraseAll:
		g.clear()
	case EraseAllAndScrollback:
		g.clear()
		if !s.Flags.AltActive {
			s.Scrollback.Clear()
		}
	}
}

// EraseInLine implements CSI K.
func (s *Screen) EraseInLine(mode EraseMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.active()
	row := s.Cursor.Row
	switch mode {
	case EraseToEnd:
		for c := s.Cursor.Col; c < s.cols; c++ {
			g.set(row, c, BlankCell)
		}
	case EraseToStart:
		for c := 0; c <= s.Cursor.Col && c < s.cols; c++ {
			g.set(row, c, BlankCell)
		}
	case EraseAll, EraseAllAndScrollback:
		g.clearRow(row)
	}
}

// InsertLines / DeleteLines implement CSI L / CSI M.
func (s *Screen) InsertLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.active()
	row := s.Cursor.Row
	for i := 0; i < n; i++ {
		copy(g.cells[row+1:], g.cells[row:len(g.cells)-1])
		g.cells[row] = make([]Cell, s.cols)
		for j := range g.cells[row] {
			g.cells[row][j] = BlankCell
		}
	}
}

func (s *Screen) DeleteLines(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.active()
	row := s.Cursor.Row
	for i := 0; i < n; i++ {
		copy(g.cells[row:], g.cells[row+1:])
		g.cells[len(g.cells)-1] = make([]Cell, s.cols)
		for j := range g.cells[len(g.cells)-1] {
			g.cells[len(g.cells)-1][j] = BlankCell
		}
	}
}

// InsertChars / DeleteChars implement CSI @ / CSI P. Both clamp n to the
// columns remaining on the row, the same bound EraseChars applies below
// — an unclamped n (e.g. a program emitting "\x1b[9999@" on an 80-col
// screen) would otherwise slice past the row's end.
func (s *Screen) InsertChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.active()
	row := g.cells[s.Cursor.Row]
	if max := len(row) - s.Cursor.Col; n > max {
		n = max
	}
	if n <= 0 {
		return
	}
	copy(row[s.Cursor.Col+n:], row[s.Cursor.Col:len(row)-n])
	for c := s.Cursor.Col; c < s.Cursor.Col+n && c < len(row); c++ {
		row[c] = BlankCell
	}
}

func (s *Screen) DeleteChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.active()
	row := g.cells[s.Cursor.Row]
	if max := len(row) - s.Cursor.Col; n > max {
		n = max
	}
	if n <= 0 {
		return
	}
	copy(row[s.Cursor.Col:], row[s.Cursor.Col+n:])
	for c := len(row) - n; c < len(row); c++ {
		if c >= 0 {
			row[c] = BlankCell
		}
	}
}

// EraseChars implements CSI X: overwrite n cells with blanks in place.
func (s *Screen) EraseChars(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := s.active()
	for c := s.Cursor.Col; c < s.Cursor.Col+n && c < s.cols; c++ {
		g.set(s.Cursor.Row, c, BlankCell)
	}
}

// ScrollUpView scrolls the user's scrollback view up (wheel away from
// live), advancing ScrollOffset.
func (s *Screen) ScrollUpView(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Flags.AltActive {
		return
	}
	max := s.Scrollback.Len()
	s.ScrollOffset = clamp(s.ScrollOffset+n, 0, max)
}

// ScrollDownView scrolls toward the live view.
func (s *Screen) ScrollDownView(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ScrollOffset = clamp(s.ScrollOffset-n, 0, s.ScrollOffset)
}

// ResetScrollOffset snaps back to the live view (any keypress does this).
func (s *Screen) ResetScrollOffset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ScrollOffset = 0
}

// VisibleRow composes one row of the view the user should see: when
// ScrollOffset>0 it's drawn from scrollback + grid; otherwise straight
// from the active grid.
func (s *Screen) VisibleRow(row int) []Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ScrollOffset == 0 || s.Flags.AltActive {
		out := make([]Cell, s.cols)
		copy(out, s.active().cells[row])
		return out
	}
	// The composed view places the ScrollOffset most recent scrollback
	// lines above the live grid; `row` indexes into that composed view.
	total := s.Scrollback.Len()
	idx := total - s.ScrollOffset + row
	if idx >= 0 && idx < total {
		return s.Scrollback.Line(idx)
	}
	gridRow := idx - total
	if gridRow >= 0 && gridRow < s.rows {
		out := make([]Cell, s.cols)
		copy(out, s.primary.cells[gridRow])
		return out
	}
	return make([]Cell, s.cols)
}
