package panel

import (
	"sync"
	"sync/atomic"

	"github.com/termide/termide/internal/logging"
	"github.com/termide/termide/internal/ptyproc"
	"github.com/termide/termide/internal/render"
	"github.com/termide/termide/internal/session"
	"github.com/termide/termide/internal/vt"
)

// TerminalPanel is the Terminal variant of spec §4.6: a VT100/ANSI
// parser driving a virtual screen, backed by a PTY process. Spawning the
// PTY itself is the external PtySystem collaborator (spec §1); this
// panel owns the parser/screen and the reader goroutine that feeds it.
type TerminalPanel struct {
	Screen *vt.Screen
	Parser *vt.Parser
	Proc   *ptyproc.Process

	workingDir string
	alive      int32

	mu sync.Mutex
}

// NewTerminalPanel spawns argv under a PTY sized rows x cols and starts
// the reader goroutine (spec §5's "PTY reader (one per Terminal)").
func NewTerminalPanel(argv []string, rows, cols int, cwd string, scrollback int) (*TerminalPanel, error) {
	proc, err := ptyproc.Start(argv, rows, cols)
	if err != nil {
		return nil, err
	}
	screen := vt.NewScreen(rows, cols, scrollback)
	p := &TerminalPanel{
		Screen:     screen,
		Parser:     vt.NewParser(screen),
		Proc:       proc,
		workingDir: cwd,
		alive:      1,
	}
	go p.readLoop()
	return p, nil
}

// readLoop is the fixed PTY-reader background worker of spec §5: reads
// raw bytes, feeds the parser, and flips alive=false on EOF/error. A
// panic inside Parser.Feed (e.g. a malformed escape sequence) is caught
// at this top level, per spec §9/§7: the terminal degrades to "not
// alive" instead of taking the process down.
func (p *TerminalPanel) readLoop() {
	defer func() {
		if r := recover(); r != nil {
			logging.LogPanic("terminal-reader", r)
			atomic.StoreInt32(&p.alive, 0)
		}
	}()
	buf := make([]byte, 4096)
	for {
		n, err := p.Proc.Read(buf)
		if n > 0 {
			p.mu.Lock()
			p.Parser.Feed(buf[:n])
			p.mu.Unlock()
		}
		if err != nil {
			atomic.StoreInt32(&p.alive, 0)
			return
		}
	}
}

// Alive reports whether the reader is still running.
func (p *TerminalPanel) Alive() bool { return atomic.LoadInt32(&p.alive) == 1 }

func (p *TerminalPanel) Title() string {
	if name := p.Proc.ForegroundProcessName(); name != "" {
		return name
	}
	return "Terminal"
}

// ShouldAutoClose implements Panel: the reader thread's EOF flips alive.
func (p *TerminalPanel) ShouldAutoClose() bool { return !p.Alive() }

func (p *TerminalPanel) NeedsCloseConfirmation() (string, bool) { return "", false }

// CapturesEscape implements Panel: terminals forward every key to the PTY.
func (p *TerminalPanel) CapturesEscape() bool { return true }

func (p *TerminalPanel) ToSessionDescriptor() (session.SessionPanel, bool) {
	return session.SessionPanel{Kind: session.PanelTerminal, WorkingDir: p.workingDir}, true
}

func (p *TerminalPanel) HandleCommand(cmd Command) CommandResult {
	return CommandResult{}
}

// Close tears down the PTY process per spec §4.3/§5's teardown sequence.
func (p *TerminalPanel) Close() { p.Proc.Kill() }

// Resize resizes the PTY then the virtual grid, per spec §4.3.
func (p *TerminalPanel) Resize(rows, cols int) {
	_ = p.Proc.Resize(rows, cols)
	p.mu.Lock()
	p.Screen.Resize(rows, cols)
	p.mu.Unlock()
}

// Paste wraps text in bracketed-paste markers if the mode is set, then
// writes it to the PTY (spec §4.3).
func (p *TerminalPanel) Paste(text []byte) {
	_, _ = p.Proc.Write(vt.EncodeBracketedPaste(p.Screen, text))
}

func (p *TerminalPanel) HandleKey(key Key) []Event {
	if key.Name == "" && key.Rune != 0 {
		_, _ = p.Proc.Write([]byte(string(key.Rune)))
		return nil
	}
	var vk vt.Key
	switch key.Name {
	case "Up":
		vk = vt.KeyUp
	case "Down":
		vk = vt.KeyDown
	case "Left":
		vk = vt.KeyLeft
	case "Right":
		vk = vt.KeyRight
	case "Home":
		vk = vt.KeyHome
	case "End":
		vk = vt.KeyEnd
	case "PageUp":
		vk = vt.KeyPageUp
	case "PageDown":
		vk = vt.KeyPageDown
	case "Enter":
		_, _ = p.Proc.Write([]byte("\r"))
		return nil
	case "Backspace":
		_, _ = p.Proc.Write([]byte{0x7f})
		return nil
	case "Tab":
		_, _ = p.Proc.Write([]byte("\t"))
		return nil
	case "Esc":
		_, _ = p.Proc.Write([]byte{0x1b})
		return nil
	default:
		return nil
	}
	_, _ = p.Proc.Write(vt.EncodeKey(p.Screen, vk))
	return nil
}

// HandleMouse translates a panel-area mouse event into terminal-grid
// coordinates and, when a tracking mode is active, encodes and forwards
// it to the PTY. Left-drag also records a selection independent of
// tracking, per spec §4.3.
func (p *TerminalPanel) HandleMouse(ev MouseEvent, area render.Rect) []Event {
	row, col := ev.Y-area.Y, ev.X-area.X
	if row < 0 || col < 0 {
		return nil
	}

	button := vt.MouseButtonLeft
	switch ev.Button {
	case MouseMiddle:
		button = vt.MouseButtonMiddle
	case MouseRight:
		button = vt.MouseButtonRight
	case MouseWheelUp:
		button = vt.MouseWheelUp
	case MouseWheelDown:
		button = vt.MouseWheelDown
	case MouseMove:
		button = vt.MouseMove
	}
	if !ev.Pressed && !ev.Dragging && ev.Button != MouseWheelUp && ev.Button != MouseWheelDown {
		button = vt.MouseButtonRelease
	}

	if ev.Button == MouseWheelUp {
		p.Screen.ScrollUpView(3)
	} else if ev.Button == MouseWheelDown {
		p.Screen.ScrollDownView(3)
	} else if ev.Button != MouseMove {
		p.Screen.ResetScrollOffset()
	}

	if seq := vt.EncodeMouseEvent(p.Screen, vt.MouseEvent{
		Button: button, Row: row, Col: col, Shift: ev.Shift, Ctrl: ev.Ctrl,
	}); seq != nil {
		_, _ = p.Proc.Write(seq)
	}

	if ev.Button == MouseLeft && ev.Pressed {
		p.Screen.Selection = &vt.Selection{Start: vt.Position{Row: row, Col: col}, End: vt.Position{Row: row, Col: col}}
	} else if ev.Button == MouseLeft && ev.Dragging && p.Screen.Selection != nil {
		p.Screen.Selection.End = vt.Position{Row: row, Col: col}
	} else if ev.Button == MouseLeft && !ev.Pressed && !ev.Dragging && p.Screen.Selection != nil {
		text := p.copySelection()
		p.Screen.Selection = nil
		if text != "" {
			return []Event{{Kind: EventCopyToClipboard, Clipboard: text}}
		}
	}
	return nil
}

// copySelection reads the cells under the active selection, stripping
// trailing whitespace per row and joining rows with \n, per spec §4.3.
func (p *TerminalPanel) copySelection() string {
	sel := p.Screen.Selection
	if sel == nil {
		return ""
	}
	start, end := sel.Start, sel.End
	if end.Row < start.Row || (end.Row == start.Row && end.Col < start.Col) {
		start, end = end, start
	}
	_, cols := p.Screen.Size()
	var out []byte
	for row := start.Row; row <= end.Row; row++ {
		lo, hi := 0, cols-1
		if row == start.Row {
			lo = start.Col
		}
		if row == end.Row {
			hi = end.Col
		}
		var line []rune
		for col := lo; col <= hi && col < cols; col++ {
			line = append(line, p.Screen.Cell(row, col).Ch)
		}
		for len(line) > 0 && line[len(line)-1] == ' ' {
			line = line[:len(line)-1]
		}
		out = append(out, []byte(string(line))...)
		if row != end.Row {
			out = append(out, '\n')
		}
	}
	return string(out)
}

// Render draws the visible grid: scrollback-composed rows when
// scroll_offset > 0, otherwise the live grid, per spec §4.3.
func (p *TerminalPanel) Render(area render.Rect, cb render.CellBuffer, focused bool, theme render.Theme) {
	rows, cols := p.Screen.Size()
	_ = cols
	for r := 0; r < rows && r < area.H; r++ {
		cells := p.Screen.VisibleRow(r)
		var sb []rune
		for _, c := range cells {
			ch := c.Ch
			if ch == 0 {
				ch = ' '
			}
			sb = append(sb, ch)
		}
		cb.DrawText(area.X, area.Y+r, render.Style{Fg: theme.Foreground, Bg: theme.Background}, string(sb))
	}
}
