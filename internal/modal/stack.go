package modal

import "github.com/termide/termide/internal/panel"

// ResolveFunc is invoked once when the active modal resolves, carrying
// the PendingAction it was opened with and the user's Result. The App
// supplies one per Open call and performs the actual filesystem/editor
// side effect; Stack itself only manages the overlay and its typed
// state (spec §4.5: "On modal confirmation... the App routes the value
// to the handler selected by the PendingAction variant").
type ResolveFunc func(action PendingAction, result Result)

// Stack is the single-slot modal overlay (spec §4.5's "Modal Stack" is,
// despite the name, at most one modal at a time — the name designates
// the module, not a LIFO of simultaneously open dialogs).
type Stack struct {
	current *Active
	action  PendingAction
	batch   *BatchState
	resolve ResolveFunc
}

// Open installs modal as the active overlay, replacing any previous one
// without resolving it (only one slot exists).
func (s *Stack) Open(m Active, action PendingAction, resolve ResolveFunc) {
	copy := m
	s.current = &copy
	s.action = action
	s.resolve = resolve
}

// OpenBatch is Open specialized for ActionBatchFileOperation/
// ActionContinueBatchOperation, which additionally thread a BatchState.
func (s *Stack) OpenBatch(m Active, action PendingAction, batch BatchState, resolve ResolveFunc) {
	s.Open(m, action, resolve)
	b := batch
	s.batch = &b
}

// Active reports the current overlay, or (nil, false) if none is open.
func (s *Stack) Active() (*Active, bool) { return s.current, s.current != nil }

// PendingAction reports which action the active overlay is paired with.
func (s *Stack) PendingAction() PendingAction { return s.action }

// Batch returns the in-flight batch state, if any, for callers that want
// to report progress (e.g. the Debug panel's pending-item count) while a
// batch copy/move is paused on a conflict. The App's own resume logic
// does not use this: resolveWith clears the slot before invoking the
// ResolveFunc, so by the time a conflict modal resolves s.batch is
// already nil — the App instead threads the updated BatchState through
// its own resolve closures and calls OpenBatch again for the next item.
func (s *Stack) Batch() (BatchState, bool) {
	if s.batch == nil {
		return BatchState{}, false
	}
	return *s.batch, true
}

// close clears the slot without invoking resolve (resolveWith calls it
// just before it invokes the saved resolve function).
func (s *Stack) close() {
	s.current = nil
	s.resolve = nil
	s.batch = nil
}

func (s *Stack) resolveWith(r Result) {
	if s.resolve == nil {
		s.close()
		return
	}
	action, fn := s.action, s.resolve
	s.close()
	fn(action, r)
}

// HandleKey routes a keypress to the active overlay. Search and Replace
// modals are exempt from navigation-closes-modal behavior (spec §4.5:
// "Search and Replace modals do not close on navigation actions"); every
// other kind closes on Enter/Escape.
func (s *Stack) HandleKey(key panel.Key) {
	m := s.current
	if m == nil {
		return
	}

	switch m.Kind {
	case KindSearch, KindReplace:
		s.handleSearchReplaceKey(key)
		return
	case KindSelect, KindEditableSelect, KindOverwrite, KindConflict:
		s.handleSelectKey(key)
		return
	case KindInput, KindRenamePattern:
		s.handleTextKey(key)
		return
	case KindConfirm, KindInfo:
		s.handleConfirmKey(key)
		return
	}
}

func (s *Stack) handleConfirmKey(key panel.Key) {
	switch {
	case key.Name == "Esc":
		s.resolveWith(Result{Canceled: true})
	case key.Rune == 'y' || key.Rune == 'Y' || key.Name == "Enter":
		s.resolveWith(Result{Confirmed: true})
	case key.Rune == 'n' || key.Rune == 'N':
		s.resolveWith(Result{Confirmed: false})
	}
}

func (s *Stack) handleTextKey(key panel.Key) {
	m := s.current
	switch {
	case key.Name == "Esc":
		s.resolveWith(Result{Canceled: true})
	case key.Name == "Enter":
		s.resolveWith(Result{Value: m.Value, Confirmed: true})
	case key.Name == "Backspace":
		if m.CursorPos > 0 {
			r := []rune(m.Value)
			m.Value = string(r[:m.CursorPos-1]) + string(r[m.CursorPos:])
			m.CursorPos--
		}
	case key.Name == "Left":
		if m.CursorPos > 0 {
			m.CursorPos--
		}
	case key.Name == "Right":
		if m.CursorPos < len([]rune(m.Value)) {
			m.CursorPos++
		}
	case key.Name == "Home":
		m.CursorPos = 0
	case key.Name == "End":
		m.CursorPos = len([]rune(m.Value))
	case key.Rune != 0 && !key.Ctrl && !key.Alt:
		r := []rune(m.Value)
		m.Value = string(r[:m.CursorPos]) + string(key.Rune) + string(r[m.CursorPos:])
		m.CursorPos++
	}
}

func (s *Stack) handleSelectKey(key panel.Key) {
	m := s.current
	switch key.Name {
	case "Esc":
		s.resolveWith(Result{Canceled: true})
	case "Up":
		if m.SelectedIndex > 0 {
			m.SelectedIndex--
		}
	case "Down":
		if m.SelectedIndex < len(m.Options)-1 {
			m.SelectedIndex++
		}
	case "Enter":
		if m.Kind == KindOverwrite || m.Kind == KindConflict {
			s.resolveWith(Result{Confirmed: true, SelectedIndex: m.SelectedIndex, Decision: OverwriteDecision(m.SelectedIndex)})
			return
		}
		s.resolveWith(Result{Confirmed: true, SelectedIndex: m.SelectedIndex})
	}
}

func (s *Stack) handleSearchReplaceKey(key panel.Key) {
	m := s.current
	switch {
	case key.Name == "Esc":
		s.resolveWith(Result{Canceled: true})
	case key.Name == "Tab" && !key.Shift:
		// handled by the App: advance to next match via the Editor.
	case key.Name == "Tab" && key.Shift:
		// handled by the App: advance to previous match via the Editor.
	case key.Name == "Enter" && m.Kind == KindReplace && key.Ctrl:
		s.resolveWith(Result{Confirmed: true, Value: m.Value, ReplaceWith: m.ReplaceWith, ReplaceAll: true})
	case key.Name == "Enter":
		s.resolveWith(Result{Confirmed: true, Value: m.Value, ReplaceWith: m.ReplaceWith})
	case key.Name == "Backspace":
		s.backspaceActiveField()
	case key.Rune != 0 && !key.Ctrl && !key.Alt:
		s.insertActiveField(key.Rune)
	}
}

func (s *Stack) insertActiveField(r rune) {
	m := s.current
	if m.Kind == KindReplace && m.replaceFocus {
		m.ReplaceWith += string(r)
		return
	}
	m.Value += string(r)
}

func (s *Stack) backspaceActiveField() {
	m := s.current
	if m.Kind == KindReplace && m.replaceFocus {
		if n := len([]rune(m.ReplaceWith)); n > 0 {
			m.ReplaceWith = string([]rune(m.ReplaceWith)[:n-1])
		}
		return
	}
	if n := len([]rune(m.Value)); n > 0 {
		m.Value = string([]rune(m.Value)[:n-1])
	}
}

// FocusReplaceField switches a Replace modal's text entry to (or back
// from) its ReplaceWith field. The App's Tab handling for Search/Replace
// modals advances the current match and does not call this.
func (s *Stack) FocusReplaceField(on bool) {
	if s.current != nil {
		s.current.replaceFocus = on
	}
}

// UpdateSearchProgress is how the App reports the editor's
// (current_index, total) back to an open Search/Replace modal for
// display, after each search, replace or match step (spec §4.5).
func (s *Stack) UpdateSearchProgress(current, total int) {
	if s.current != nil && (s.current.Kind == KindSearch || s.current.Kind == KindReplace) {
		s.current.SearchCurrent = current
		s.current.SearchTotal = total
	}
}
