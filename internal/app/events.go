package app

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/termide/termide/internal/editor"
	"github.com/termide/termide/internal/filemanager"
	"github.com/termide/termide/internal/layout"
	"github.com/termide/termide/internal/modal"
	"github.com/termide/termide/internal/panel"
	"github.com/termide/termide/internal/render"
	"github.com/termide/termide/internal/rope"
	"github.com/termide/termide/internal/session"
)

func patternCursor(m editor.Match) rope.Cursor {
	return rope.Cursor{Line: m.Line, Column: m.Col}
}

// Tick drains every background channel once (fswatch, git watcher, each
// editor's diff worker), then updates the idle monitor and debug stats
// (spec §5: "the loop never blocks on I/O for longer than one tick").
func (a *App) Tick() {
	a.drainFsWatcher()
	a.drainGitWatcher()
	a.drainDiffWorkers()
	a.updateIdleState()
	a.Debug.Update(a.stats())
}

func (a *App) drainFsWatcher() {
	if a.FsWatcher == nil {
		return
	}
	if u, ok := a.FsWatcher.TryRecv(); ok {
		a.broadcastCommand(panel.Command{Kind: panel.CmdFsChanged, Path: u.ChangedPath})
		a.NeedsRedraw = true
	}
}

func (a *App) drainGitWatcher() {
	if a.GitWatcher == nil {
		return
	}
	if _, ok := a.GitWatcher.TryRecv(); ok {
		a.broadcastCommand(panel.Command{Kind: panel.CmdGitStatusChanged})
		a.NeedsRedraw = true
	}
}

// drainDiffWorkers schedules each editor's debounced diff refresh and
// drains any completed result; the result itself already lives in the
// editor's gitdiff.Cache (Worker.Request mutates it directly), so a
// received Update only needs to trigger a redraw.
func (a *App) drainDiffWorkers() {
	for ep, w := range a.diffWorkers {
		if path, ok := ep.Ed.Buffer.FilePath(); ok {
			ep.Ed.TickDiffRefresh(path)
		}
		if _, ok := w.TryRecv(); ok {
			a.NeedsRedraw = true
		}
	}
}

func (a *App) broadcastCommand(cmd panel.Command) {
	for _, g := range a.Layout.Groups {
		for _, p := range g.Panels {
			p.HandleCommand(cmd)
		}
	}
}

// updateIdleState marks the filesystem/git watchers as suspended after
// IdleInterval without input; noteActivity clears the mark on the next
// input event (the supplemented resource/idle monitor feature). The mark
// is only reported through Stats: the watchers themselves keep running.
func (a *App) updateIdleState() {
	idleFor := time.Since(a.lastActivity)
	if !a.watchersSuspended && idleFor >= IdleInterval {
		a.watchersSuspended = true
	}
}

func (a *App) noteActivity() {
	a.lastActivity = time.Now()
	a.watchersSuspended = false
}

func (a *App) stats() panel.Stats {
	pending := 0
	if b, ok := a.Modals.Batch(); ok {
		pending = len(b.Remaining())
	}
	return panel.Stats{
		OpenPanels:        a.Layout.PanelCount(),
		WatchersActive:    boolToCount(a.FsWatcher != nil) + boolToCount(a.GitWatcher != nil),
		WatchersSuspended: a.watchersSuspended,
		IdleSince:         time.Since(a.lastActivity),
		GitDiffPending:    len(a.diffWorkers),
		BatchItemsPending: pending,
	}
}

func boolToCount(b bool) int {
	if b {
		return 1
	}
	return 0
}

// HandleKey is the top-level input entry point: a modal in flight
// captures every key; Escape closes a capturing panel's overlay first;
// otherwise a handful of global shortcuts are checked before the key
// falls through to the active panel (spec §4.5/§8).
func (a *App) HandleKey(key panel.Key) {
	a.noteActivity()

	if m, open := a.Modals.Active(); open {
		if key.Name == "Tab" && (m.Kind == modal.KindSearch || m.Kind == modal.KindReplace) {
			a.advanceSearchMatch(!key.Shift)
			a.NeedsRedraw = true
			return
		}
		a.Modals.HandleKey(key)
		if _, stillOpen := a.Modals.Active(); !stillOpen {
			a.NeedsRedraw = true
		}
		return
	}

	if a.handleGlobalShortcut(key) {
		a.NeedsRedraw = true
		return
	}

	p, ok := a.Layout.ActivePanel()
	if !ok {
		return
	}
	if key.Name == "Esc" && p.CapturesEscape() {
		for _, ev := range p.HandleKey(key) {
			a.dispatchPanelEvent(ev)
		}
		a.NeedsRedraw = true
		return
	}
	for _, ev := range p.HandleKey(key) {
		a.dispatchPanelEvent(ev)
	}
	a.NeedsRedraw = true
}

// handleGlobalShortcut implements the App-level bindings that apply
// regardless of which panel is focused: quitting, moving focus between
// groups, opening a terminal, and closing the active panel.
func (a *App) handleGlobalShortcut(key panel.Key) bool {
	if !key.Ctrl {
		return false
	}
	name := key.Name
	if name == "" && key.Rune != 0 {
		name = string(key.Rune)
	}
	switch name {
	case "q":
		a.requestQuit()
		return true
	case "w":
		a.closeActivePanel()
		return true
	case "Right":
		a.Layout.FocusNextGroup()
		return true
	case "Left":
		a.Layout.FocusPrevGroup()
		return true
	case "t":
		_ = a.OpenTerminal("/bin/sh", a.ProjectRoot)
		return true
	}
	return false
}

// HandleMouse routes a mouse event to the nav bar or the panel under the
// cursor. While a modal is open, events outside the nav bar are dropped.
func (a *App) HandleMouse(ev panel.MouseEvent) {
	a.noteActivity()

	if a.NavBar != nil && a.NavBar.IsInNavBar(ev.X, ev.Y) {
		if ev.Pressed && a.NavBar.HandleClick(ev.X, ev.Y) {
			a.NeedsRedraw = true
		}
		return
	}
	if _, open := a.Modals.Active(); open {
		return
	}

	region, groupIdx, ok := a.regionForPoint(ev.X, ev.Y)
	if !ok {
		return
	}
	a.Layout.FocusGroupIndex = groupIdx
	p, ok := a.Layout.ActivePanel()
	if !ok {
		return
	}
	area := render.Rect{X: region.X, Y: region.Y, W: region.W, H: region.H}
	for _, e := range p.HandleMouse(ev, area) {
		a.dispatchPanelEvent(e)
	}
	a.NeedsRedraw = true
}

// regionForPoint returns the group region and index containing (x, y).
func (a *App) regionForPoint(x, y int) (layout.Region, int, bool) {
	for i, r := range a.Layout.Regions(layoutArea(a.width, a.height)) {
		if x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H {
			return r, i, true
		}
	}
	return layout.Region{}, -1, false
}

// dispatchPanelEvent resolves one PanelEvent per spec §4.6: filesystem
// and modal requests route through the App; ClosePanel, SplitPanel and
// Next/PrevPanel mutate the LayoutManager directly, Quit requests a quit,
// and FocusPanel is accepted without any effect.
func (a *App) dispatchPanelEvent(ev panel.Event) {
	switch ev.Kind {
	case panel.EventOpenFile:
		if err := a.OpenFile(ev.Path); err != nil {
			a.StatusMsg = err.Error()
		}
	case panel.EventSaveFile:
		a.StatusMsg = "saved " + ev.Path
	case panel.EventShowConfirm:
		a.openConfirm(ev)
	case panel.EventShowInput:
		a.openInput(ev)
	case panel.EventShowSelect:
		a.openQuickFindSelect()
	case panel.EventShowSearch:
		a.Modals.Open(modal.Active{Kind: modal.KindSearch, Title: "Search"}, modal.ActionSearch, a.resolveSearch)
	case panel.EventShowReplace:
		a.Modals.Open(modal.Active{Kind: modal.KindReplace, Title: "Replace"}, modal.ActionReplace, a.resolveReplace)
	case panel.EventWatchPath:
		// The project-wide FsWatcher already covers every path beneath
		// ProjectRoot; per-panel watch requests are a no-op here.
	case panel.EventUnwatchPath:
	case panel.EventRefreshGitStatus:
		a.broadcastCommand(panel.Command{Kind: panel.CmdGitStatusChanged})
	case panel.EventRequestPaste:
		// Clipboard access is an external collaborator (spec §1
		// non-goal); without one there is nothing to paste.
	case panel.EventFocusPanel:
	case panel.EventSplitPanel:
		a.Layout.ToggleStacking(a.width)
	case panel.EventQuit:
		a.requestQuit()
	case panel.EventClosePanel:
		a.closeActivePanel()
	case panel.EventNextPanel:
		a.Layout.FocusNextGroup()
	case panel.EventPrevPanel:
		a.Layout.FocusPrevGroup()
	case panel.EventCopyToClipboard:
		a.StatusMsg = "copied"
	case panel.EventShowMessage:
		a.StatusMsg = ev.Message
	case panel.EventShowError:
		a.StatusMsg = ev.Message
	case panel.EventGotoLine:
		if p, ok := a.Layout.ActivePanel(); ok {
			p.HandleCommand(panel.Command{Kind: panel.CmdGotoLine, Line: ev.Line})
		}
	}
}

// openConfirm dispatches a ShowConfirm event by Title: "Delete" and
// "Paste" carry real filesystem side effects and get dedicated resolve
// closures (so the operation's own Path/Options/Move fields survive to
// resolution without needing new state on Stack); everything else keeps
// the original save-conflict/close-editor routing.
func (a *App) openConfirm(ev panel.Event) {
	switch ev.Title {
	case "Delete":
		a.Modals.Open(modal.Active{
			Kind:    modal.KindConfirm,
			Title:   ev.Title,
			Message: ev.Message,
			Warning: "This cannot be undone.",
		}, modal.ActionDeletePath, func(_ modal.PendingAction, r modal.Result) {
			if !r.Confirmed {
				return
			}
			if err := filemanager.DeletePath(ev.Path); err != nil {
				a.StatusMsg = err.Error()
			}
			a.refreshFileManagers()
		})
		return
	case "Paste":
		items := make([]modal.BatchItem, len(ev.Options))
		for i, src := range ev.Options {
			items[i] = modal.BatchItem{Src: src, Dst: filepath.Join(ev.Path, filepath.Base(src))}
		}
		action := modal.ActionCopyPath
		if ev.Move {
			action = modal.ActionMovePath
		}
		if len(items) > 1 {
			action = modal.ActionBatchFileOperation
		}
		fm, _ := a.activeFileManager()
		a.Modals.Open(modal.Active{Kind: modal.KindConfirm, Title: ev.Title, Message: ev.Message}, action, func(_ modal.PendingAction, r modal.Result) {
			if !r.Confirmed {
				return
			}
			a.runBatch(batchRun{state: modal.BatchState{Items: items, IsMove: ev.Move}, fm: fm})
		})
		return
	}

	action := modal.ActionCloseEditorWithSave
	warning := ""
	if ev.Conflict {
		action = modal.ActionOverwriteDecision
		warning = "The file changed on disk since it was loaded."
	}
	a.Modals.Open(modal.Active{Kind: modal.KindConfirm, Title: ev.Title, Message: ev.Message, Warning: warning}, action, a.resolveConfirm)
}

// openInput dispatches a ShowInput event by Title: "New File"/"New
// Folder" create relative to ev.Path, "Rename Pattern" applies a
// {n}/{name}/{ext} template across ev.Options; anything else keeps the
// original Save As routing.
func (a *App) openInput(ev panel.Event) {
	switch ev.Title {
	case "New File":
		dir := ev.Path
		a.Modals.Open(modal.Active{Kind: modal.KindInput, Title: ev.Title}, modal.ActionCreateFile, func(_ modal.PendingAction, r modal.Result) {
			name := strings.TrimSpace(r.Value)
			if r.Canceled || name == "" {
				return
			}
			if err := filemanager.CreateFile(filepath.Join(dir, name)); err != nil {
				a.StatusMsg = err.Error()
			}
			a.refreshFileManagers()
		})
		return
	case "New Folder":
		dir := ev.Path
		a.Modals.Open(modal.Active{Kind: modal.KindInput, Title: ev.Title}, modal.ActionCreateDirectory, func(_ modal.PendingAction, r modal.Result) {
			name := strings.TrimSpace(r.Value)
			if r.Canceled || name == "" {
				return
			}
			if err := filemanager.CreateDirectory(filepath.Join(dir, name)); err != nil {
				a.StatusMsg = err.Error()
			}
			a.refreshFileManagers()
		})
		return
	case "Rename Pattern":
		paths := ev.Options
		fm, _ := a.activeFileManager()
		a.Modals.Open(modal.Active{Kind: modal.KindRenamePattern, Title: ev.Title, Value: ev.Message}, modal.ActionRenameWithPattern, func(_ modal.PendingAction, r modal.Result) {
			if r.Canceled || strings.TrimSpace(r.Value) == "" {
				return
			}
			if err := filemanager.ApplyRenamePattern(paths, r.Value); err != nil {
				a.StatusMsg = err.Error()
			}
			if fm != nil {
				fm.ClearMarks()
			}
			a.refreshFileManagers()
		})
		return
	}
	a.Modals.Open(modal.Active{Kind: modal.KindInput, Title: ev.Title, Value: ev.Message}, modal.ActionSaveFileAs, a.resolveInput)
}

func (a *App) openQuickFindSelect() {
	fm, ok := a.activeFileManager()
	if !ok {
		return
	}
	results := fm.QuickFind("", 50)
	opts := make([]string, len(results))
	for i, r := range results {
		opts[i] = r.File.Path
	}
	a.Modals.Open(modal.Active{Kind: modal.KindEditableSelect, Title: "Quick Find", Options: opts}, modal.ActionQuickFind, a.resolveQuickFind)
}

// refreshFileManagers re-scans every open file manager's tree and
// quick-find index, the same CmdFsChanged broadcast the fswatch watcher
// triggers, issued proactively after a create/delete/copy/move/rename so
// the view does not wait for the next filesystem-watch tick.
func (a *App) refreshFileManagers() {
	a.broadcastCommand(panel.Command{Kind: panel.CmdFsChanged})
	a.NeedsRedraw = true
}

// batchRun threads a BatchState and its originating FileManagerPanel
// through a (possibly conflict-paused) copy/move, so the clipboard is
// cleared only once every item has settled. Stack.resolveWith clears its
// batch slot before invoking the ResolveFunc (see Stack.Batch's doc
// comment), so the App carries this state itself across conflicts
// instead of reading it back off the Stack.
type batchRun struct {
	state modal.BatchState
	fm    *panel.FileManagerPanel
}

// runBatch applies items from br.state until it either finishes or hits
// a destination that already exists, in which case it opens a
// ConflictModal and resumes via the closure passed to OpenBatch — the
// concrete form of spec §4.5's "suspend themselves ... resume via
// ContinueBatchOperation carrying the remaining items and the user's
// decision".
func (a *App) runBatch(br batchRun) {
	remaining := br.state.Remaining()
	if len(remaining) == 0 {
		a.finishBatch(br)
		return
	}
	item := remaining[0]
	if _, err := os.Stat(item.Dst); err == nil {
		a.Modals.OpenBatch(modal.Active{
			Kind:    modal.KindConflict,
			Title:   "File exists",
			Message: item.Dst,
			Options: []string{"Overwrite", "Skip", "Rename", "Cancel all"},
		}, modal.ActionContinueBatchOperation, br.state, func(_ modal.PendingAction, r modal.Result) {
			a.continueBatch(br, r)
		})
		return
	}
	if err := a.applyBatchItem(item, br.state.IsMove); err != nil {
		a.StatusMsg = err.Error()
	}
	br.state.Index++
	a.runBatch(br)
}

// continueBatch applies the user's overwrite/skip/rename/cancel-all
// decision to the conflicting item, then resumes runBatch over whatever
// remains.
func (a *App) continueBatch(br batchRun, r modal.Result) {
	if r.Canceled {
		a.finishBatch(br)
		return
	}
	remaining := br.state.Remaining()
	if len(remaining) == 0 {
		a.finishBatch(br)
		return
	}
	item := remaining[0]
	switch r.Decision {
	case modal.DecisionOverwrite:
		if err := a.applyBatchItem(item, br.state.IsMove); err != nil {
			a.StatusMsg = err.Error()
		}
		br.state.Index++
	case modal.DecisionSkip:
		br.state.Index++
	case modal.DecisionRename:
		renamed := modal.BatchItem{Src: item.Src, Dst: filemanager.UniqueDestPath(item.Dst)}
		if err := a.applyBatchItem(renamed, br.state.IsMove); err != nil {
			a.StatusMsg = err.Error()
		}
		br.state.Index++
	case modal.DecisionCancelAll:
		a.finishBatch(br)
		return
	}
	a.runBatch(br)
}

func (a *App) applyBatchItem(item modal.BatchItem, move bool) error {
	if move {
		return filemanager.MovePath(item.Src, item.Dst)
	}
	return filemanager.CopyPath(item.Src, item.Dst)
}

func (a *App) finishBatch(br batchRun) {
	if br.fm != nil {
		br.fm.ClearClipboard()
	}
	a.refreshFileManagers()
}

func (a *App) activeFileManager() (*panel.FileManagerPanel, bool) {
	p, ok := a.Layout.ActivePanel()
	if !ok {
		return nil, false
	}
	fm, ok := p.(*panel.FileManagerPanel)
	return fm, ok
}

func (a *App) resolveConfirm(action modal.PendingAction, r modal.Result) {
	if r.Canceled || !r.Confirmed {
		return
	}
	switch action {
	case modal.ActionOverwriteDecision:
		if ep, ok := a.activeEditor(); ok {
			_ = ep.Ed.ForceSave()
		}
	case modal.ActionCloseEditorWithSave:
		if ep, ok := a.activeEditor(); ok {
			_ = ep.Ed.Save()
		}
		a.closeActivePanel()
	case modal.ActionQuitApplication:
		a.Quitting = true
	}
}

// resolveInput only ever runs for ActionSaveFileAs: CreateFile,
// CreateDirectory, and RenameWithPattern each get their own resolve
// closure from openInput, built with the directory/marked-path context
// that this generic signature has no room for.
func (a *App) resolveInput(action modal.PendingAction, r modal.Result) {
	if r.Canceled || action != modal.ActionSaveFileAs {
		return
	}
	if ep, ok := a.activeEditor(); ok {
		if err := ep.Ed.SaveAs(r.Value); err != nil {
			a.StatusMsg = err.Error()
		}
	} else {
		_ = a.OpenFile(r.Value)
	}
}

func (a *App) resolveQuickFind(action modal.PendingAction, r modal.Result) {
	if r.Canceled {
		return
	}
	fm, ok := a.activeFileManager()
	if !ok {
		return
	}
	results := fm.QuickFind(r.Value, 50)
	if r.SelectedIndex >= 0 && r.SelectedIndex < len(results) {
		_ = a.OpenFile(results[r.SelectedIndex].File.Path)
	}
}

func (a *App) resolveSearch(action modal.PendingAction, r modal.Result) {
	ep, ok := a.activeEditor()
	if !ok || r.Canceled || ep.Ed.Search == nil {
		return
	}
	ep.Ed.Search.SetPattern(r.Value, ep.Ed.Buffer)
	if m, found := ep.Ed.Search.CurrentMatch(); found {
		ep.Ed.Cursor = patternCursor(m)
	}
	a.Modals.UpdateSearchProgress(ep.Ed.Search.CurrentIndex+1, ep.Ed.Search.Total())
}

func (a *App) resolveReplace(action modal.PendingAction, r modal.Result) {
	ep, ok := a.activeEditor()
	if !ok || r.Canceled || ep.Ed.Search == nil {
		return
	}
	ep.Ed.Search.SetPattern(r.Value, ep.Ed.Buffer)
	ep.Ed.Search.ReplaceWith = r.ReplaceWith
	if r.ReplaceAll {
		_ = ep.Ed.Execute(editor.CmdReplaceAll, "")
	} else {
		_ = ep.Ed.Execute(editor.CmdReplaceCurrent, "")
	}
	a.Modals.UpdateSearchProgress(ep.Ed.Search.CurrentIndex+1, ep.Ed.Search.Total())
}

// advanceSearchMatch moves the active editor's search cursor to the
// next (or, with forward=false, previous) match and reports the new
// position back to the open Search/Replace modal (stack.go's Tab/
// Shift+Tab cases are deliberately left to the App, since that is
// where the Editor lives).
func (a *App) advanceSearchMatch(forward bool) {
	ep, ok := a.activeEditor()
	if !ok || ep.Ed.Search == nil {
		return
	}
	var m editor.Match
	var found bool
	if forward {
		m, found = ep.Ed.Search.Next()
	} else {
		m, found = ep.Ed.Search.Prev()
	}
	if found {
		ep.Ed.Cursor = patternCursor(m)
	}
	a.Modals.UpdateSearchProgress(ep.Ed.Search.CurrentIndex+1, ep.Ed.Search.Total())
}

func (a *App) activeEditor() (*panel.EditorPanel, bool) {
	p, ok := a.Layout.ActivePanel()
	if !ok {
		return nil, false
	}
	ep, ok := p.(*panel.EditorPanel)
	return ep, ok
}

func (a *App) closeActivePanel() {
	p, ok := a.Layout.ActivePanel()
	if !ok {
		return
	}
	if msg, needs := p.NeedsCloseConfirmation(); needs {
		a.Modals.Open(modal.Active{Kind: modal.KindConfirm, Title: "Close panel", Message: msg}, modal.ActionClosePanel, func(action modal.PendingAction, r modal.Result) {
			if r.Confirmed {
				a.forceCloseActivePanel()
			}
		})
		return
	}
	a.forceCloseActivePanel()
}

func (a *App) forceCloseActivePanel() {
	closed, ok := a.Layout.CloseActivePanel(a.width)
	if !ok {
		return
	}
	if tp, ok := closed.(*panel.TerminalPanel); ok {
		tp.Close()
	}
	if ep, ok := closed.(*panel.EditorPanel); ok {
		if w, ok := a.diffWorkers[ep]; ok {
			w.Close()
			delete(a.diffWorkers, ep)
		}
	}
	a.NeedsRedraw = true
}

func (a *App) requestQuit() {
	for _, g := range a.Layout.Groups {
		for _, p := range g.Panels {
			if ep, ok := p.(*panel.EditorPanel); ok {
				if msg, needs := ep.NeedsCloseConfirmation(); needs {
					a.Modals.Open(modal.Active{Kind: modal.KindConfirm, Title: "Quit", Message: msg}, modal.ActionQuitApplication, a.resolveConfirm)
					return
				}
			}
		}
	}
	a.Quitting = true
}

// SaveSession captures the current layout into session.toml, writing
// unsaved editor buffers out to the session directory first (spec §6).
func (a *App) SaveSession() error {
	sess := &session.Session{FocusedGroup: a.Layout.FocusGroupIndex}
	for _, g := range a.Layout.Groups {
		sg := session.PanelGroup{ExpandedIndex: g.ExpandedIndex}
		if g.Width != nil {
			sg.Width = *g.Width
		}
		for _, p := range g.Panels {
			sp, ok := p.ToSessionDescriptor()
			if !ok {
				continue
			}
			if ep, isEditor := p.(*panel.EditorPanel); isEditor && sp.Path == "" {
				content := ep.Ed.Buffer.Text()
				name, err := a.Session.NewUnsavedBuffer(content)
				if err == nil {
					sp.UnsavedBufferFile = name
				}
			}
			sg.Panels = append(sg.Panels, sp)
		}
		sess.PanelGroups = append(sess.PanelGroups, sg)
	}
	return a.Session.Save(sess)
}

// layoutArea is the screen area available to panel groups: everything
// below the one-row nav bar.
func layoutArea(width, height int) layout.Region {
	return layout.Region{X: 0, Y: 1, W: width, H: height - 1}
}
