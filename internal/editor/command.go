// Package editor implements the Editor command model of spec §4.2: a
// TextBuffer is overlaid with syntax highlighting, a live git-diff
// gutter, search/replace, selection, and undo/redo, driven by an
// enumerated EditorCommand whose parsing is independently testable from
// its execution.
//
// Grounded on the jellexet-golang-text-editor-style command dispatch
// (a keyboard table mapped to an action enum, kept separate from the
// buffer mutation it triggers) generalized to spec's three contextual
// flags (read_only, search_active, selection_active).
package editor

// Command enumerates every action the Editor can execute, independent of
// how it was produced (keyboard, menu, test harness).
type Command int

const (
	CmdNone Command = iota

	// Navigation without selection (clears any active selection and
	// closes a search overlay, per spec §4.2).
	CmdMoveLeft
	CmdMoveRight
	CmdMoveUp
	CmdMoveDown
	CmdMoveLineStart
	CmdMoveLineEnd
	CmdMoveWordLeft
	CmdMoveWordRight
	CmdMoveDocStart
	CmdMoveDocEnd

	// Navigation with selection (establishes the anchor on first use).
	CmdSelectLeft
	CmdSelectRight
	CmdSelectUp
	CmdSelectDown
	CmdSelectLineStart
	CmdSelectLineEnd
	CmdSelectAll

	// Text editing.
	CmdInsertText
	CmdInsertNewline
	CmdDeleteBackward
	CmdDeleteForward
	CmdDeleteSelection

	// History.
	CmdUndo
	CmdRedo

	// Save/load.
	CmdSave
	CmdSaveAs
	CmdForceSave
	CmdReload

	// Clipboard (Clipboard::{copy,paste} is an external collaborator per
	// spec §1; the Editor only decides what text to copy/insert).
	CmdCopy
	CmdCut
	CmdPaste

	// Indentation.
	CmdIndent
	CmdUnindent
	CmdDuplicateLine

	// Search/replace.
	CmdOpenSearch
	CmdOpenReplace
	CmdSearchNext
	CmdSearchPrev
	CmdReplaceCurrent
	CmdReplaceAll
	CmdCloseSearch

	CmdEscape
)

// ContextFlags are the three flags spec §4.2 requires parsing to depend
// on: read_only, search_active, selection_active.
type ContextFlags struct {
	ReadOnly        bool
	SearchActive    bool
	SelectionActive bool
}

// Key is a single parsed keypress, independent of any rendering backend.
type Key struct {
	Rune  rune
	Name  string // "Enter", "Backspace", "Delete", "Tab", "Up", "Down", "Left", "Right", "Home", "End", "Esc", ""
	Ctrl  bool
	Shift bool
	Alt   bool
}

// ParseKey maps a raw key event to an EditorCommand given the contextual
// flags. This is pure and side-effect free, so the keyboard table can be
// tested without executing anything (spec §4.2's mandatory split).
func ParseKey(k Key, flags ContextFlags) Command {
	if flags.SearchActive {
		switch {
		case k.Name == "Esc":
			return CmdCloseSearch
		case k.Name == "Tab" && k.Shift:
			return CmdSearchPrev
		case k.Name == "Tab":
			return CmdSearchNext
		case k.Name == "Enter" && k.Ctrl:
			return CmdReplaceAll
		case k.Name == "Enter" && k.Shift:
			return CmdReplaceCurrent
		case k.Name == "Enter":
			return CmdCloseSearch
		}
		return CmdNone
	}

	switch k.Name {
	case "Esc":
		return CmdEscape
	case "Left":
		return navOrSelect(k, CmdMoveLeft, CmdSelectLeft)
	case "Right":
		return navOrSelect(k, CmdMoveRight, CmdSelectRight)
	case "Up":
		return navOrSelect(k, CmdMoveUp, CmdSelectUp)
	case "Down":
		return navOrSelect(k, CmdMoveDown, CmdSelectDown)
	case "Home":
		return navOrSelect(k, CmdMoveLineStart, CmdSelectLineStart)
	case "End":
		return navOrSelect(k, CmdMoveLineEnd, CmdSelectLineEnd)
	}

	if k.Ctrl {
		switch k.Name {
		case "Left":
			return CmdMoveWordLeft
		case "Right":
			return CmdMoveWordRight
		}
		switch k.Rune {
		case 'z', 'Z':
			if k.Shift {
				return CmdRedo
			}
			return CmdUndo
		case 'y', 'Y':
			return CmdRedo
		case 's', 'S':
			if flags.ReadOnly {
				return CmdNone
			}
			if k.Shift {
				return CmdSaveAs
			}
			return CmdSave
		case 'c', 'C':
			return CmdCopy
		case 'x', 'X':
			if flags.ReadOnly {
				return CmdCopy
			}
			return CmdCut
		case 'v', 'V':
			return CmdPaste
		case 'd', 'D':
			return CmdDuplicateLine
		case 'a', 'A':
			return CmdSelectAll
		case 'f', 'F':
			return CmdOpenSearch
		case 'h', 'H':
			return CmdOpenReplace
		}
	}

	if flags.ReadOnly {
		return CmdNone
	}

	switch k.Name {
	case "Enter":
		return CmdInsertNewline
	case "Backspace":
		if flags.SelectionActive {
			return CmdDeleteSelection
		}
		return CmdDeleteBackward
	case "Delete":
		if flags.SelectionActive {
			return CmdDeleteSelection
		}
		return CmdDeleteForward
	case "Tab":
		if k.Shift {
			return CmdUnindent
		}
		return CmdIndent
	}

	if k.Rune != 0 && !k.Ctrl && !k.Alt {
		return CmdInsertText
	}
	return CmdNone
}

func navOrSelect(k Key, move, sel Command) Command {
	if k.Shift {
		return sel
	}
	return move
}
