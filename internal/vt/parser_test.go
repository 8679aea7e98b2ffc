package vt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserPrintAndNewline(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	p := NewParser(s)
	p.Feed([]byte("hi\r\nthere"))

	assert.Equal(t, 'h', s.Cell(0, 0).Ch)
	assert.Equal(t, 'i', s.Cell(0, 1).Ch)
	assert.Equal(t, 't', s.Cell(1, 0).Ch)
	row, col := s.Cursor.Row, s.Cursor.Col
	assert.Equal(t, 1, row)
	assert.Equal(t, 5, col)
}

func TestParserCursorPositioning(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	p := NewParser(s)
	p.Feed([]byte("\x1b[10;5Hx"))
	assert.Equal(t, 'x', s.Cell(9, 4).Ch)
}

func TestParserSGRColor(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	p := NewParser(s)
	p.Feed([]byte("\x1b[31;1mA"))
	c := s.Cell(0, 0)
	require.Equal(t, ColorNamed, c.Style.Fg.Mode)
	assert.Equal(t, uint8(1), c.Style.Fg.Index)
	assert.True(t, c.Style.Bold)
}

func TestParserTruecolorSGR(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	p := NewParser(s)
	p.Feed([]byte("\x1b[38;2;10;20;30mA"))
	c := s.Cell(0, 0)
	require.Equal(t, ColorRGB, c.Style.Fg.Mode)
	assert.Equal(t, uint8(10), c.Style.Fg.R)
	assert.Equal(t, uint8(20), c.Style.Fg.G)
	assert.Equal(t, uint8(30), c.Style.Fg.B)
}

func TestParserAltScreenIsolatesPrimary(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	p := NewParser(s)
	p.Feed([]byte("primary-text"))
	p.Feed([]byte("\x1b[?1049h"))
	p.Feed([]byte("alt-text"))
	assert.Equal(t, 'a', s.Cell(0, 0).Ch)
	assert.Equal(t, 'p', s.PrimaryCell(0, 0).Ch)

	p.Feed([]byte("\x1b[?1049l"))
	assert.Equal(t, 'p', s.Cell(0, 0).Ch)
}

func TestParserPrivateModeToggles(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	p := NewParser(s)
	p.Feed([]byte("\x1b[?1000h"))
	assert.Equal(t, MouseTrackingNormal, s.Flags.MouseTracking)
	p.Feed([]byte("\x1b[?1006h"))
	assert.True(t, s.Flags.SGRMouse)
	p.Feed([]byte("\x1b[?2004h"))
	assert.True(t, s.Flags.BracketedPaste)
	p.Feed([]byte("\x1b[?25l"))
	assert.False(t, s.Flags.CursorVisible)
}

func TestParserEraseInLine(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	p := NewParser(s)
	p.Feed([]byte("abcdef\x1b[3D\x1b[K"))
	assert.Equal(t, 'a', s.Cell(0, 0).Ch)
	assert.Equal(t, ' ', s.Cell(0, 3).Ch)
}

func TestEncodeMouseEventSGR(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	p := NewParser(s)
	p.Feed([]byte("\x1b[?1000h\x1b[?1006h"))
	out := EncodeMouseEvent(s, MouseEvent{Button: MouseButtonLeft, Row: 4, Col: 9})
	assert.Equal(t, []byte("\x1b[<0;10;5M"), out)
}

func TestEncodeMouseEventDisabled(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	out := EncodeMouseEvent(s, MouseEvent{Button: MouseButtonLeft, Row: 0, Col: 0})
	assert.Nil(t, out)
}

func TestEncodeKeyAppCursorMode(t *testing.T) {
	s := NewScreen(24, 80, 1000)
	p := NewParser(s)
	assert.Equal(t, []byte("\x1b[A"), EncodeKey(s, KeyUp))
	p.Feed([]byte("\x1b[?1h"))
	assert.Equal(t, []byte("\x1bOA"), EncodeKey(s, KeyUp))
}

func TestScrollbackAccumulatesOnPrimaryOnly(t *testing.T) {
	s := NewScreen(3, 10, 100)
	p := NewParser(s)
	for i := 0; i < 5; i++ {
		p.Feed([]byte("line\r\n"))
	}
	assert.Greater(t, s.Scrollback.Len(), 0)

	before := s.Scrollback.Len()
	p.Feed([]byte("\x1b[?47h"))
	p.Feed([]byte("x\r\ny\r\nz\r\nw\r\n"))
	assert.Equal(t, before, s.Scrollback.Len())
}
