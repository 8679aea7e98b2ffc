package editor

import (
	"fmt"
	"os"
	"time"

	"github.com/termide/termide/internal/gitdiff"
	"github.com/termide/termide/internal/highlight"
	"github.com/termide/termide/internal/rope"
)

// Editor overlays a rope.Buffer with the cursor, selection, search, and
// git-diff state spec §4.2 describes. Buffer mutation itself stays in
// internal/rope; this package only decides *which* mutation to run.
type Editor struct {
	Buffer *rope.Buffer

	Cursor          rope.Cursor
	Anchor          rope.Cursor
	SelectionActive bool
	ReadOnly        bool

	IndentUseTabs bool
	IndentWidth   int

	Search *SearchState

	GitDiff       *gitdiff.Cache
	diffWorker    diffRequester
	lastEditAt    time.Time
	diffPending   bool

	Lang *highlight.Language

	diskModTime time.Time
	diskSize    int64
	Conflicted  bool

	clipboard string
}

// diffRequester is the subset of *gitdiff.Worker the Editor depends on,
// so tests can stub it out without spinning a goroutine.
type diffRequester interface {
	Request(absPath, current string)
}

// New creates an empty, unmodified Editor with no backing file.
func New() *Editor {
	return &Editor{
		Buffer:      rope.New(),
		IndentWidth: 4,
		GitDiff:     &gitdiff.Cache{},
	}
}

// Open loads path into a fresh Editor, detecting its language and
// recording the on-disk mtime/size used for save-conflict detection.
func Open(path string) (*Editor, error) {
	buf, err := rope.Load(path)
	if err != nil {
		return nil, err
	}
	e := &Editor{
		Buffer:      buf,
		IndentWidth: 4,
		GitDiff:     &gitdiff.Cache{},
		Lang:        highlight.Detect(path),
	}
	e.recordDiskStat(path)
	return e, nil
}

// AttachDiffWorker wires a background diff worker (spec §5's "git diff
// worker ... posts (line_status_map, deleted_after_map)").
func (e *Editor) AttachDiffWorker(w diffRequester) { e.diffWorker = w }

func (e *Editor) recordDiskStat(path string) {
	if info, err := os.Stat(path); err == nil {
		e.diskModTime = info.ModTime()
		e.diskSize = info.Size()
	}
}

// selection returns the half-open [start,end) selection interval in
// document order, or false if there is none.
func (e *Editor) selection() (rope.Cursor, rope.Cursor, bool) {
	if !e.SelectionActive || e.Anchor == e.Cursor {
		return rope.Cursor{}, rope.Cursor{}, false
	}
	start, end := e.Anchor, e.Cursor
	if end.Less(start) {
		start, end = end, start
	}
	return start, end, true
}

// clearSelection drops the active selection and closes any open search
// overlay, per spec §4.2: "Non-selecting motions clear it and close any
// active search overlay."
func (e *Editor) clearSelection() {
	e.SelectionActive = false
	e.Search = nil
}

func (e *Editor) selectTo(newCursor rope.Cursor) {
	if !e.SelectionActive {
		e.Anchor = e.Cursor
		e.SelectionActive = true
	}
	e.Cursor = newCursor
}

// Execute dispatches cmd, mutating the buffer/cursor/selection/search
// state as spec §4.2 describes. text is used only by CmdInsertText,
// CmdPaste (pasted text), and CmdSaveAs (the new path).
func (e *Editor) Execute(cmd Command, text string) error {
	switch cmd {
	case CmdNone:
		return nil

	case CmdMoveLeft:
		e.clearSelection()
		e.Cursor = e.leftOf(e.Cursor)
	case CmdMoveRight:
		e.clearSelection()
		e.Cursor = e.rightOf(e.Cursor)
	case CmdMoveUp:
		e.clearSelection()
		e.Cursor = e.above(e.Cursor)
	case CmdMoveDown:
		e.clearSelection()
		e.Cursor = e.below(e.Cursor)
	case CmdMoveLineStart:
		e.clearSelection()
		e.Cursor.Column = 0
	case CmdMoveLineEnd:
		e.clearSelection()
		e.Cursor.Column = e.Buffer.LineGraphemeCount(e.Cursor.Line)
	case CmdMoveWordLeft:
		e.clearSelection()
		e.Cursor = e.wordLeft(e.Cursor)
	case CmdMoveWordRight:
		e.clearSelection()
		e.Cursor = e.wordRight(e.Cursor)
	case CmdMoveDocStart:
		e.clearSelection()
		e.Cursor = rope.Cursor{}
	case CmdMoveDocEnd:
		e.clearSelection()
		last := e.Buffer.LineCount() - 1
		e.Cursor = rope.Cursor{Line: last, Column: e.Buffer.LineGraphemeCount(last)}

	case CmdSelectLeft:
		e.selectTo(e.leftOf(e.Cursor))
	case CmdSelectRight:
		e.selectTo(e.rightOf(e.Cursor))
	case CmdSelectUp:
		e.selectTo(e.above(e.Cursor))
	case CmdSelectDown:
		e.selectTo(e.below(e.Cursor))
	case CmdSelectLineStart:
		e.selectTo(rope.Cursor{Line: e.Cursor.Line, Column: 0})
	case CmdSelectLineEnd:
		e.selectTo(rope.Cursor{Line: e.Cursor.Line, Column: e.Buffer.LineGraphemeCount(e.Cursor.Line)})
	case CmdSelectAll:
		last := e.Buffer.LineCount() - 1
		e.Anchor = rope.Cursor{}
		e.Cursor = rope.Cursor{Line: last, Column: e.Buffer.LineGraphemeCount(last)}
		e.SelectionActive = true

	case CmdInsertText:
		if e.ReadOnly {
			return nil
		}
		if start, end, ok := e.selection(); ok {
			if err := e.Buffer.DeleteRange(start, end); err != nil {
				return err
			}
			e.Cursor = start
			e.clearSelection()
		}
		cur, err := e.Buffer.Insert(e.Cursor, text)
		if err != nil {
			return err
		}
		e.Cursor = cur
		e.noteEdit()
	case CmdInsertNewline:
		return e.Execute(CmdInsertText, "\n")
	case CmdDeleteBackward:
		if e.ReadOnly {
			return nil
		}
		cur, err := e.Buffer.Backspace(e.Cursor)
		if err != nil {
			return err
		}
		e.Cursor = cur
		e.noteEdit()
	case CmdDeleteForward:
		if e.ReadOnly {
			return nil
		}
		if _, err := e.Buffer.DeleteCharForward(e.Cursor); err != nil {
			return err
		}
		e.noteEdit()
	case CmdDeleteSelection:
		if e.ReadOnly {
			return nil
		}
		if start, end, ok := e.selection(); ok {
			if err := e.Buffer.DeleteRange(start, end); err != nil {
				return err
			}
			e.Cursor = start
			e.clearSelection()
			e.noteEdit()
		}

	case CmdUndo:
		if cur, ok := e.Buffer.Undo(); ok {
			e.Cursor = cur
			e.clearSelection()
			e.noteEdit()
		}
	case CmdRedo:
		if cur, ok := e.Buffer.Redo(); ok {
			e.Cursor = cur
			e.clearSelection()
			e.noteEdit()
		}

	case CmdSave:
		return e.Save()
	case CmdSaveAs:
		return e.SaveAs(text)
	case CmdForceSave:
		return e.ForceSave()
	case CmdReload:
		return e.ReloadFromDisk()

	case CmdCopy:
		if start, end, ok := e.selection(); ok {
			e.clipboard = e.Buffer.TextBetween(start, end)
		}
	case CmdCut:
		if start, end, ok := e.selection(); ok {
			e.clipboard = e.Buffer.TextBetween(start, end)
			if err := e.Buffer.DeleteRange(start, end); err != nil {
				return err
			}
			e.Cursor = start
			e.clearSelection()
			e.noteEdit()
		}
	case CmdPaste:
		return e.Execute(CmdInsertText, text)

	case CmdIndent:
		first, last := e.Cursor.Line, e.Cursor.Line
		if start, end, ok := e.selection(); ok {
			first, last = start.Line, end.Line
		}
		unit := rope.IndentUnit(e.IndentUseTabs, e.IndentWidth)
		if err := e.Buffer.IndentLines(first, last, unit); err != nil {
			return err
		}
		e.Cursor.Column += rope.GraphemeCount(unit)
		e.noteEdit()
	case CmdUnindent:
		first, last := e.Cursor.Line, e.Cursor.Line
		if start, end, ok := e.selection(); ok {
			first, last = start.Line, end.Line
		}
		if err := e.Buffer.UnindentLines(first, last, e.IndentUseTabs, e.IndentWidth); err != nil {
			return err
		}
		e.noteEdit()
	case CmdDuplicateLine:
		if err := e.Buffer.DuplicateLine(e.Cursor.Line); err != nil {
			return err
		}
		e.Cursor.Line++
		e.noteEdit()

	case CmdOpenSearch:
		e.Search = NewSearchState(false)
	case CmdOpenReplace:
		e.Search = NewSearchState(true)
	case CmdSearchNext:
		if e.Search != nil {
			e.gotoMatch(e.Search.Next())
		}
	case CmdSearchPrev:
		if e.Search != nil {
			e.gotoMatch(e.Search.Prev())
		}
	case CmdReplaceCurrent:
		if e.Search != nil {
			if err := e.Search.ReplaceCurrent(e.Buffer); err != nil {
				return err
			}
			e.gotoMatch(e.Search.CurrentMatch())
			e.noteEdit()
		}
	case CmdReplaceAll:
		if e.Search != nil {
			if err := e.Search.ReplaceAll(e.Buffer); err != nil {
				return err
			}
			e.noteEdit()
		}
	case CmdCloseSearch:
		e.Search = nil

	case CmdEscape:
		if e.Search != nil {
			e.Search = nil
		} else {
			e.clearSelection()
		}
	}
	return nil
}

func (e *Editor) gotoMatch(m Match, ok bool) {
	if !ok {
		return
	}
	e.Cursor = rope.Cursor{Line: m.Line, Column: m.Col + m.Len}
	e.Anchor = rope.Cursor{Line: m.Line, Column: m.Col}
	e.SelectionActive = true
}

func (e *Editor) leftOf(c rope.Cursor) rope.Cursor {
	if c.Column > 0 {
		return rope.Cursor{Line: c.Line, Column: c.Column - 1}
	}
	if c.Line > 0 {
		return rope.Cursor{Line: c.Line - 1, Column: e.Buffer.LineGraphemeCount(c.Line - 1)}
	}
	return c
}

func (e *Editor) rightOf(c rope.Cursor) rope.Cursor {
	if c.Column < e.Buffer.LineGraphemeCount(c.Line) {
		return rope.Cursor{Line: c.Line, Column: c.Column + 1}
	}
	if c.Line < e.Buffer.LineCount()-1 {
		return rope.Cursor{Line: c.Line + 1, Column: 0}
	}
	return c
}

func (e *Editor) above(c rope.Cursor) rope.Cursor {
	if c.Line == 0 {
		return rope.Cursor{Line: 0, Column: 0}
	}
	line := c.Line - 1
	col := c.Column
	if n := e.Buffer.LineGraphemeCount(line); col > n {
		col = n
	}
	return rope.Cursor{Line: line, Column: col}
}

func (e *Editor) below(c rope.Cursor) rope.Cursor {
	if c.Line >= e.Buffer.LineCount()-1 {
		last := e.Buffer.LineCount() - 1
		return rope.Cursor{Line: last, Column: e.Buffer.LineGraphemeCount(last)}
	}
	line := c.Line + 1
	col := c.Column
	if n := e.Buffer.LineGraphemeCount(line); col > n {
		col = n
	}
	return rope.Cursor{Line: line, Column: col}
}

func (e *Editor) wordLeft(c rope.Cursor) rope.Cursor {
	if c.Column == 0 {
		return e.leftOf(c)
	}
	line := e.Buffer.Line(c.Line)
	off := rope.ByteOffsetForColumn(line, c.Column)
	i := off
	for i > 0 && line[i-1] == ' ' {
		i--
	}
	for i > 0 && line[i-1] != ' ' {
		i--
	}
	return rope.Cursor{Line: c.Line, Column: rope.ColumnForByteOffset(line, i)}
}

func (e *Editor) wordRight(c rope.Cursor) rope.Cursor {
	line := e.Buffer.Line(c.Line)
	n := e.Buffer.LineGraphemeCount(c.Line)
	if c.Column >= n {
		return e.rightOf(c)
	}
	off := rope.ByteOffsetForColumn(line, c.Column)
	i := off
	for i < len(line) && line[i] != ' ' {
		i++
	}
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return rope.Cursor{Line: c.Line, Column: rope.ColumnForByteOffset(line, i)}
}

// noteEdit rebuilds the search match list against the new buffer
// contents (if a search is active) and schedules a debounced git-diff
// refresh, per spec §4.2.
func (e *Editor) noteEdit() {
	if e.Search != nil {
		e.Search.Rebuild(e.Buffer)
	}
	e.lastEditAt = time.Now()
	e.diffPending = true
}

// TickDiffRefresh is called once per App tick; it requests a diff
// recomputation once the debounce window has elapsed since the last edit,
// coalescing any edits that arrived within it (spec §4.2, §5).
func (e *Editor) TickDiffRefresh(absPath string) {
	if !e.diffPending || e.diffWorker == nil {
		return
	}
	if time.Since(e.lastEditAt) < gitdiff.DebounceWindow {
		return
	}
	e.diffPending = false
	e.diffWorker.Request(absPath, e.Buffer.Text())
}

// Save writes to the buffer's existing path, refusing if the file changed
// on disk since load (spec §4.2 save conflict semantics).
func (e *Editor) Save() error {
	path, ok := e.Buffer.FilePath()
	if !ok {
		return fmt.Errorf("editor: no file path, use save-as")
	}
	if e.Conflicted {
		return fmt.Errorf("editor: save refused, file changed on disk (force-save or reload required)")
	}
	if info, err := os.Stat(path); err == nil {
		if !info.ModTime().Equal(e.diskModTime) || info.Size() != e.diskSize {
			e.Conflicted = true
			return fmt.Errorf("editor: save conflict, file changed on disk")
		}
	}
	if err := e.Buffer.SaveTo(path); err != nil {
		return err
	}
	e.recordDiskStat(path)
	return nil
}

// SaveAs writes the buffer to a new path, adopting it as the buffer's path.
func (e *Editor) SaveAs(path string) error {
	if err := e.Buffer.SaveTo(path); err != nil {
		return err
	}
	e.Conflicted = false
	e.recordDiskStat(path)
	return nil
}

// ForceSave overwrites the on-disk file regardless of conflict state.
func (e *Editor) ForceSave() error {
	path, ok := e.Buffer.FilePath()
	if !ok {
		return fmt.Errorf("editor: no file path, use save-as")
	}
	if err := e.Buffer.SaveTo(path); err != nil {
		return err
	}
	e.Conflicted = false
	e.recordDiskStat(path)
	return nil
}

// ReloadFromDisk discards local changes and reloads the buffer's file.
func (e *Editor) ReloadFromDisk() error {
	path, ok := e.Buffer.FilePath()
	if !ok {
		return fmt.Errorf("editor: no file path to reload")
	}
	fresh, err := rope.Load(path)
	if err != nil {
		return err
	}
	e.Buffer = fresh
	e.Cursor = rope.Cursor{}
	e.clearSelection()
	e.Conflicted = false
	e.recordDiskStat(path)
	e.GitDiff.Reset()
	return nil
}

// MarkDiskChanged flags a save conflict: the watcher observed the backing
// file change since it was last loaded/saved.
func (e *Editor) MarkDiskChanged() {
	path, ok := e.Buffer.FilePath()
	if !ok {
		return
	}
	if info, err := os.Stat(path); err == nil {
		if !info.ModTime().Equal(e.diskModTime) || info.Size() != e.diskSize {
			e.Conflicted = true
		}
	}
}
