package vt

import "log"

// parserState is the byte-at-a-time state machine's current mode.
type parserState int

const (
	stateGround parserState = iota
	stateEscape
	stateCSI
	stateOSC
	stateDCS
)

// Parser is the byte-stream ANSI interpreter of spec §4.3: it consumes
// raw PTY output one byte at a time and mutates a Screen. Grounded on the
// dispatch-class breakdown in spec.md itself (print/execute/csi/osc-dcs-esc)
// and on the handler-driven design of danielgatis-go-headless-term's
// handler.go (a byte-class dispatcher feeding cell/cursor mutations),
// adapted into a hand-rolled state machine rather than depending on an
// external VTE crate binding, since the spec requires an owned parser.
type Parser struct {
	screen *Screen

	state        parserState
	params       []int
	curParam     int
	haveParam    bool
	private      bool // '?' prefix seen in CSI
	intermediate byte
	oscBuf       []byte

	// BellFn is invoked when a BEL (\a) control byte is seen, forwarded to
	// the host (spec: "bell forward to host").
	BellFn func()

	// ModeChangeFn is invoked by mode toggles so the Terminal panel can
	// start/stop intercepting mouse events; Terminal owns sending encoded
	// reports back to the PTY (see EncodeMouseEvent in mouse.go).
	ModeChangeFn func()
}

// NewParser creates a parser driving screen.
func NewParser(screen *Screen) *Parser {
	return &Parser{screen: screen}
}

// Feed processes a chunk of PTY output.
func (p *Parser) Feed(data []byte) {
	for _, b := range data {
		p.feedByte(b)
	}
}

func (p *Parser) feedByte(b byte) {
	switch p.state {
	case stateGround:
		p.ground(b)
	case stateEscape:
		p.escape(b)
	case stateCSI:
		p.csi(b)
	case stateOSC:
		p.osc(b)
	case stateDCS:
		p.dcs(b)
	}
}

func (p *Parser) ground(b byte) {
	switch {
	case b == 0x1b:
		p.state = stateEscape
	case b < 0x20 || b == 0x7f:
		p.execute(b)
	default:
		p.screen.PutChar(decodeRune(b))
	}
}

// decodeRune handles the common case of ASCII bytes directly; multi-byte
// UTF-8 sequences are reassembled by the caller's io.Reader (the PTY
// reader decodes a rune stream and calls FeedRune for non-ASCII runes —
// see FeedRune below). Feed is kept byte-oriented for control bytes and
// 7-bit ASCII, matching the spec's "byte-at-a-time state machine".
func decodeRune(b byte) rune { return rune(b) }

// FeedRune feeds one already-decoded rune directly into PutChar, for
// UTF-8 continuation sequences assembled upstream by the PTY reader.
func (p *Parser) FeedRune(r rune) {
	if p.state == stateGround {
		p.screen.PutChar(r)
		return
	}
	// Non-ASCII runes never appear mid-escape-sequence in practice; ignore.
}

func (p *Parser) execute(b byte) {
	switch b {
	case '\n':
		p.screen.NewLine()
	case '\r':
		p.screen.CarriageReturn()
	case '\t':
		p.screen.Tab()
	case '\b':
		p.screen.Backspace()
	case '\a':
		if p.BellFn != nil {
			p.BellFn()
		}
	}
}

func (p *Parser) escape(b byte) {
	switch b {
	case '[':
		p.state = stateCSI
		p.params = p.params[:0]
		p.curParam = 0
		p.haveParam = false
		p.private = false
		p.intermediate = 0
	case ']':
		p.state = stateOSC
		p.oscBuf = p.oscBuf[:0]
	case 'P':
		p.state = stateDCS
		p.oscBuf = p.oscBuf[:0]
	case '7':
		p.screen.SaveCursor()
		p.state = stateGround
	case '8':
		p.screen.RestoreCursor()
		p.state = stateGround
	case 'M':
		// Reverse index: move up, scrolling down at top margin. Not in
		// the spec's required set; tolerated as a no-op cursor-up.
		p.screen.MoveCursor(-1, 0)
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *Parser) csi(b byte) {
	switch {
	case b == '?':
		p.private = true
	case b >= '0' && b <= '9':
		p.curParam = p.curParam*10 + int(b-'0')
		p.haveParam = true
	case b == ';':
		p.params = append(p.params, p.curParam)
		p.curParam = 0
		p.haveParam = false
	case b >= 0x20 && b <= 0x2f:
		p.intermediate = b
	case b >= 0x40 && b <= 0x7e:
		if p.haveParam || len(p.params) == 0 {
			p.params = append(p.params, p.curParam)
		}
		p.dispatchCSI(b, p.params, p.private)
		p.state = stateGround
	default:
		p.state = stateGround
	}
}

func (p *Parser) osc(b byte) {
	if b == 0x07 || (b == 0x5c && len(p.oscBuf) > 0 && p.oscBuf[len(p.oscBuf)-1] == 0x1b) {
		p.state = stateGround
		return
	}
	p.oscBuf = append(p.oscBuf, b)
}

func (p *Parser) dcs(b byte) {
	if b == 0x1b {
		p.state = stateGround
		return
	}
	p.oscBuf = append(p.oscBuf, b)
}

func param(params []int, i, def int) int {
	if i >= len(params) || params[i] == 0 {
		if i < len(params) && params[i] != 0 {
			return params[i]
		}
		return def
	}
	return params[i]
}

func (p *Parser) dispatchCSI(final byte, params []int, private bool) {
	s := p.screen
	if private {
		p.dispatchPrivateMode(final, params)
		return
	}
	n := param(params, 0, 1)
	switch final {
	case 'A':
		s.MoveCursor(-n, 0)
	case 'B':
		s.MoveCursor(n, 0)
	case 'C':
		s.MoveCursor(0, n)
	case 'D':
		s.MoveCursor(0, -n)
	case 'E':
		s.MoveCursor(n, 0)
		s.SetCursor(s.Cursor.Row, 0)
	case 'F':
		s.MoveCursor(-n, 0)
		s.SetCursor(s.Cursor.Row, 0)
	case 'G':
		s.SetCursor(s.Cursor.Row, n-1)
	case 'H', 'f':
		row := param(params, 0, 1)
		col := param(params, 1, 1)
		s.SetCursor(row-1, col-1)
	case 'd':
		s.SetCursor(n-1, s.Cursor.Col)
	case 'J':
		s.EraseInDisplay(EraseMode(param(params, 0, 0)))
	case 'K':
		s.EraseInLine(EraseMode(param(params, 0, 0)))
	case '@':
		s.InsertChars(n)
	case 'P':
		s.DeleteChars(n)
	case 'X':
		s.EraseChars(n)
	case 'L':
		s.InsertLines(n)
	case 'M':
		s.DeleteLines(n)
	case 'S':
		s.mu.Lock()
		s.scrollUpLocked(n)
		s.mu.Unlock()
	case 'T':
		// scroll down n: not in the minimal required set beyond S; treat
		// symmetrically by inserting blank lines at the top.
		row, col := s.Cursor.Row, s.Cursor.Col
		s.SetCursor(0, col)
		s.InsertLines(n)
		s.SetCursor(row, col)
	case 'm':
		s.mu.Lock()
		ApplySGR(&s.CurrentStyle, params)
		s.mu.Unlock()
	case 's':
		s.SaveCursor()
	case 'u':
		s.RestoreCursor()
	default:
		log.Printf("TERMIDE VT: unhandled CSI final=%c params=%v", final, params)
	}
}

func (p *Parser) dispatchPrivateMode(final byte, params []int) {
	if len(params) == 0 {
		return
	}
	set := final == 'h'
	if final != 'h' && final != 'l' {
		return
	}
	s := p.screen
	for _, mode := range params {
		switch mode {
		case 1:
			s.Flags.AppCursorKeys = set
		case 25:
			s.Flags.CursorVisible = set
		case 47, 1047:
			if set {
				s.EnterAltScreen(false)
			} else {
				s.ExitAltScreen(false)
			}
		case 1049:
			if set {
				s.EnterAltScreen(true)
			} else {
				s.ExitAltScreen(true)
			}
		case 1000:
			if set {
				s.Flags.MouseTracking = MouseTrackingNormal
			} else {
				s.Flags.MouseTracking = MouseTrackingNone
			}
		case 1002:
			if set {
				s.Flags.MouseTracking = MouseTrackingButtonEvent
			} else {
				s.Flags.MouseTracking = MouseTrackingNone
			}
		case 1003:
			if set {
				s.Flags.MouseTracking = MouseTrackingAnyEvent
			} else {
				s.Flags.MouseTracking = MouseTrackingNone
			}
		case 1006:
			s.Flags.SGRMouse = set
		case 2004:
			s.Flags.BracketedPaste = set
		}
	}
	if p.ModeChangeFn != nil {
		p.ModeChangeFn()
	}
}
