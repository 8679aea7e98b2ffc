// Package vt implements an owned VT100/ANSI byte-stream parser driving a
// two-buffer virtual screen (primary + alternate), per spec §4.3.
//
// Grounded on the Cell/CellFlags model in the pack's
// danielgatis-go-headless-term (cell.go, colors.go) — adapted from an
// image/color.Color-based palette to a compact named/256/truecolor Color
// type that does not need an image dependency — and on the teacher's own
// vt10x-backed terminal.Panel (internal/terminal/panel.go,
// scrollback.go, input.go) for the PTY-facing plumbing this package now
// owns directly instead of delegating to vt10x.
package vt

// ColorMode tags which of Color's fields is meaningful.
type ColorMode int

const (
	ColorDefault ColorMode = iota
	ColorNamed             // one of the 16 standard/bright ANSI colors, Index 0-15
	ColorIndexed           // 256-color palette index
	ColorRGB               // 24-bit truecolor
)

// Color is a terminal cell foreground/background color in one of four
// representations; spec §3 "Colors: named, 256-color index, or 24-bit RGB."
type Color struct {
	Mode       ColorMode
	Index      uint8 // valid for ColorNamed (0-15) and ColorIndexed (0-255)
	R, G, B    uint8 // valid for ColorRGB
}

var DefaultColor = Color{Mode: ColorDefault}

func NamedColor(i uint8) Color   { return Color{Mode: ColorNamed, Index: i} }
func IndexedColor(i uint8) Color { return Color{Mode: ColorIndexed, Index: i} }
func RGBColor(r, g, b uint8) Color {
	return Color{Mode: ColorRGB, R: r, G: g, B: b}
}

// CellStyle carries SGR attributes, spec §3.
type CellStyle struct {
	Fg, Bg    Color
	Bold      bool
	Italic    bool
	Underline bool
	Reverse   bool
}

// DefaultStyle is the SGR-reset state ("ESC[m" per invariant 8).
var DefaultStyle = CellStyle{Fg: DefaultColor, Bg: DefaultColor}

// Cell is one grid position.
type Cell struct {
	Ch    rune
	Style CellStyle
}

// BlankCell is an empty cell with default styling.
var BlankCell = Cell{Ch: ' ', Style: DefaultStyle}
