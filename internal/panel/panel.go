// Package panel implements the Panel capability surface of spec §4.6: a
// tagged variant (Editor, FileManager, Terminal, Welcome, Debug) sharing
// one Go interface so the App never downcasts. Panels never hold a
// back-reference to the LayoutManager (spec §9); they emit Events and the
// App resolves navigation/filesystem/modal side effects.
package panel

import (
	"github.com/termide/termide/internal/render"
	"github.com/termide/termide/internal/session"
)

// EventKind enumerates the out-of-band requests a Panel can emit,
// matching spec §4.6's PanelEvent list exactly.
type EventKind int

const (
	EventOpenFile EventKind = iota
	EventSaveFile
	EventShowConfirm
	EventShowInput
	EventShowSelect
	EventShowSearch
	EventShowReplace
	EventWatchPath
	EventUnwatchPath
	EventRefreshGitStatus
	EventRequestPaste
	EventFocusPanel
	EventSplitPanel
	EventQuit
	EventClosePanel
	EventNextPanel
	EventPrevPanel
	EventCopyToClipboard
	EventShowMessage
	EventShowError
	EventGotoLine
)

// Event is one PanelEvent instance. Not every field applies to every
// Kind; callers read only the fields relevant to the Kind they matched.
type Event struct {
	Kind      EventKind
	Path      string
	Message   string
	Title     string
	Options   []string
	Line      int
	Conflict  bool // true when ShowConfirm/ShowError describes a save conflict
	Clipboard string
	Move      bool // true when ShowConfirm's Options carry a cut (move) rather than a copy
}

// CommandKind enumerates the uniform "ask/tell the panel something"
// operations of spec §4.6, used instead of variant downcasts.
type CommandKind int

const (
	CmdGitRepoRoot CommandKind = iota
	CmdCurrentDirectory
	CmdDiffPending
	CmdFsChanged
	CmdGitStatusChanged
	CmdGotoLine
	CmdOpenPath
)

// Command is one PanelCommand instance.
type Command struct {
	Kind CommandKind
	Path string
	Line int
}

// CommandResult is the uniform reply to a Command.
type CommandResult struct {
	Str string
	Ok  bool
}

// Key is a single parsed keypress, shared by every panel variant
// (terminal raw-forwards it to the PTY; editor runs it through
// editor.ParseKey; file manager interprets it directly).
type Key struct {
	Rune  rune
	Name  string
	Ctrl  bool
	Shift bool
	Alt   bool
}

// MouseButton identifies the originating button/wheel direction.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseMiddle
	MouseRight
	MouseWheelUp
	MouseWheelDown
	MouseMove
)

// MouseEvent is a single mouse interaction within a panel's area.
type MouseEvent struct {
	Button   MouseButton
	X, Y     int
	Pressed  bool
	Dragging bool
	Shift    bool
	Ctrl     bool
}

// Panel is the capability surface every variant implements (spec §4.6).
type Panel interface {
	Render(area render.Rect, cb render.CellBuffer, focused bool, theme render.Theme)
	HandleKey(key Key) []Event
	HandleMouse(ev MouseEvent, area render.Rect) []Event
	Title() string
	ShouldAutoClose() bool
	NeedsCloseConfirmation() (string, bool)
	CapturesEscape() bool
	ToSessionDescriptor() (session.SessionPanel, bool)
	HandleCommand(cmd Command) CommandResult
}
