package vt

import "fmt"

// MouseButton identifies which button (or wheel direction) produced an
// event, per spec §4.3's mouse event encoding.
type MouseButton int

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonMiddle
	MouseButtonRight
	MouseButtonRelease
	MouseWheelUp
	MouseWheelDown
	MouseMove // motion with no button held, only reported in AnyEvent mode
)

// MouseEvent describes one terminal-panel mouse interaction to be encoded
// and written to the PTY, if the running program has requested tracking.
type MouseEvent struct {
	Button MouseButton
	Row    int // 0-based
	Col    int // 0-based
	Shift  bool
	Meta   bool
	Ctrl   bool
}

// EncodeMouseEvent renders ev as the byte sequence the running program
// expects, honoring the screen's current tracking mode and SGR/legacy
// encoding flag. Returns nil if the event should be suppressed (tracking
// disabled, or a motion event while not in AnyEvent mode).
func EncodeMouseEvent(s *Screen, ev MouseEvent) []byte {
	s.mu.Lock()
	mode := s.Flags.MouseTracking
	sgr := s.Flags.SGRMouse
	s.mu.Unlock()

	if mode == MouseTrackingNone {
		return nil
	}
	if ev.Button == MouseMove && mode != MouseTrackingAnyEvent {
		return nil
	}

	code := mouseCode(ev)
	row, col := ev.Row+1, ev.Col+1

	if sgr {
		final := byte('M')
		if ev.Button == MouseButtonRelease {
			final = 'm'
		}
		return []byte(fmt.Sprintf("\x1b[<%d;%d;%d%c", code, col, row, final))
	}

	// Legacy X10/normal encoding: byte values offset by 32, capped at 255.
	cb := byte(code + 32)
	cx := byte(col + 32)
	cy := byte(row + 32)
	if col > 223 {
		cx = 255
	}
	if row > 223 {
		cy = 255
	}
	return []byte{0x1b, '[', 'M', cb, cx, cy}
}

func mouseCode(ev MouseEvent) int {
	var code int
	switch ev.Button {
	case MouseButtonLeft:
		code = 0
	case MouseButtonMiddle:
		code = 1
	case MouseButtonRight:
		code = 2
	case MouseButtonRelease:
		code = 3
	case MouseWheelUp:
		code = 64
	case MouseWheelDown:
		code = 65
	case MouseMove:
		code = 32 // motion bit, no button held
	}
	if ev.Shift {
		code |= 4
	}
	if ev.Meta {
		code |= 8
	}
	if ev.Ctrl {
		code |= 16
	}
	return code
}

// EncodeBracketedPaste wraps text in the bracketed-paste markers if the
// screen has that mode enabled, otherwise returns it unchanged.
func EncodeBracketedPaste(s *Screen, text []byte) []byte {
	s.mu.Lock()
	on := s.Flags.BracketedPaste
	s.mu.Unlock()
	if !on {
		return text
	}
	out := make([]byte, 0, len(text)+12)
	out = append(out, "\x1b[200~"...)
	out = append(out, text...)
	out = append(out, "\x1b[201~"...)
	return out
}
