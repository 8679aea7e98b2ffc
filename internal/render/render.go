// Package render defines the thin drawing surface the core depends on
// instead of a terminal-rendering library. Per spec §1 non-goals,
// "terminal-backend rendering primitives" are an external collaborator
// (CellBuffer with draw_text(x,y,style,text) and draw_box(rect,style));
// this package names that collaborator's Go shape plus the Theme
// collaborator (a struct of named colors) so every panel and the layout
// manager can depend on an interface instead of a concrete backend.
package render

// Rect is a screen region in cells.
type Rect struct {
	X, Y, W, H int
}

// Style is a cell's visual attributes. Fg/Bg are theme color keys (see
// Theme) rather than raw RGB, so a concrete backend resolves them.
type Style struct {
	Fg, Bg                         string
	Bold, Italic, Underline, Reverse bool
}

// Theme is the spec's color-table collaborator: a set of named colors the
// core looks up by role. Configuration file parsing and the concrete
// palette are out of scope (spec §1); this struct only names the roles
// the core needs.
type Theme struct {
	Foreground string
	Background string
	Accent     string
	Border     string
	BorderFocused string
	StatusBar  string
	SelectionBg string
	GutterDefault string
	DiffAdded    string
	DiffModified string
	DiffDeleted  string
	SearchMatch  string
	SearchCurrent string
}

// CellBuffer is the rendering-backend collaborator of spec §1. The core
// issues draw calls against it; it never touches terminal cells directly.
type CellBuffer interface {
	DrawText(x, y int, style Style, text string)
	DrawBox(rect Rect, style Style)
}
