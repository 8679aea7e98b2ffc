package vt

// Key identifies a non-printable key the Terminal panel forwards to the
// PTY, encoded according to the screen's application-cursor-keys mode
// (spec §4.3, DECCKM / private mode 1).
type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyRight
	KeyLeft
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyInsert
	KeyDelete
	KeyF1
	KeyF2
	KeyF3
	KeyF4
)

// EncodeKey renders key as the escape sequence to write to the PTY.
func EncodeKey(s *Screen, key Key) []byte {
	s.mu.Lock()
	app := s.Flags.AppCursorKeys
	s.mu.Unlock()

	cursorFinal := func(normal, applicationMode byte) []byte {
		if app {
			return []byte{0x1b, 'O', applicationMode}
		}
		return []byte{0x1b, '[', normal}
	}

	switch key {
	case KeyUp:
		return cursorFinal('A', 'A')
	case KeyDown:
		return cursorFinal('B', 'B')
	case KeyRight:
		return cursorFinal('C', 'C')
	case KeyLeft:
		return cursorFinal('D', 'D')
	case KeyHome:
		return cursorFinal('H', 'H')
	case KeyEnd:
		return cursorFinal('F', 'F')
	case KeyPageUp:
		return []byte("\x1b[5~")
	case KeyPageDown:
		return []byte("\x1b[6~")
	case KeyInsert:
		return []byte("\x1b[2~")
	case KeyDelete:
		return []byte("\x1b[3~")
	case KeyF1:
		return []byte("\x1bOP")
	case KeyF2:
		return []byte("\x1bOQ")
	case KeyF3:
		return []byte("\x1bOR")
	case KeyF4:
		return []byte("\x1bOS")
	}
	return nil
}
