package rope

// ActionKind tags which edit an Action records.
type ActionKind int

const (
	ActionInsert ActionKind = iota
	ActionDelete
	ActionGroup
)

// Action is one entry of the undo/redo history. Insert/Delete record the
// position and text so the inverse can be replayed; Group bundles a
// sequence of actions (e.g. replace-all) that undo/redo as a single step.
type Action struct {
	Kind   ActionKind
	Pos    Cursor
	Text   string // text inserted, or text that was deleted
	Group  []Action
}

func (b *Buffer) pushAction(a Action) {
	b.history = append(b.history, a)
	b.redoStack = nil
}

// beginGroup/endGroup bracket a sequence of edits (e.g. replace-all,
// indent-selection) into a single undoable Action.
type groupRecorder struct {
	b      *Buffer
	saved  []Action
}

func (b *Buffer) beginGroup() *groupRecorder {
	g := &groupRecorder{b: b, saved: b.history}
	b.history = nil
	return g
}

func (g *groupRecorder) commit(anchor Cursor) {
	actions := g.b.history
	g.b.history = g.saved
	if len(actions) == 0 {
		return
	}
	g.b.pushAction(Action{Kind: ActionGroup, Pos: anchor, Group: actions})
}

// Undo reverses the most recent action, returning the cursor it affected.
// Ok is false if the history stack is empty.
func (b *Buffer) Undo() (cur Cursor, ok bool) {
	if len(b.history) == 0 {
		return Cursor{}, false
	}
	n := len(b.history)
	a := b.history[n-1]
	b.history = b.history[:n-1]
	cur = b.undoAction(a)
	b.redoStack = append(b.redoStack, a)
	b.recomputeModified()
	return cur, true
}

// Redo replays the most recently undone action.
func (b *Buffer) Redo() (cur Cursor, ok bool) {
	if len(b.redoStack) == 0 {
		return Cursor{}, false
	}
	n := len(b.redoStack)
	a := b.redoStack[n-1]
	b.redoStack = b.redoStack[:n-1]
	cur = b.redoAction(a)
	b.history = append(b.history, a)
	b.recomputeModified()
	return cur, true
}

func (b *Buffer) undoAction(a Action) Cursor {
	switch a.Kind {
	case ActionInsert:
		end := b.advance(a.Pos, a.Text)
		b.rawDelete(a.Pos, end)
		return a.Pos
	case ActionDelete:
		b.rawInsert(a.Pos, a.Text)
		return a.Pos
	case ActionGroup:
		for i := len(a.Group) - 1; i >= 0; i-- {
			b.undoAction(a.Group[i])
		}
		return a.Pos
	}
	return a.Pos
}

// RunGrouped executes fn and records every edit fn performs as a single
// grouped undo/redo Action anchored at anchor, per spec §4.2's
// "Replace-all is a single grouped history action."
func (b *Buffer) RunGrouped(anchor Cursor, fn func() error) error {
	g := b.beginGroup()
	err := fn()
	g.commit(anchor)
	b.recomputeModified()
	return err
}

func (b *Buffer) redoAction(a Action) Cursor {
	switch a.Kind {
	case ActionInsert:
		b.rawInsert(a.Pos, a.Text)
		return b.advance(a.Pos, a.Text)
	case ActionDelete:
		end := b.advance(a.Pos, a.Text)
		b.rawDelete(a.Pos, end)
		return a.Pos
	case ActionGroup:
		for _, sub := range a.Group {
			b.redoAction(sub)
		}
		return a.Pos
	}
	return a.Pos
}
