package app

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termide/termide/internal/config"
	"github.com/termide/termide/internal/modal"
	"github.com/termide/termide/internal/panel"
	"github.com/termide/termide/internal/render"
	"github.com/termide/termide/internal/session"
)

// newTestApp builds an App rooted at a throwaway directory, redirecting
// session storage under t.TempDir() so tests never touch a real
// ~/.config/termide (mirrors the teacher's pattern of env-scoped config
// roots in its own session tests).
func newTestApp(t *testing.T) *App {
	t.Helper()
	t.Setenv("TERMIDE_CONFIG_HOME", t.TempDir())
	projectRoot := t.TempDir()

	a, err := New(config.Default(), projectRoot)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a
}

// writeTestFile creates path with content, for tests that open a real
// file through the Editor (rope.Load requires the file to pre-exist).
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// fakePanel is a minimal Panel for exercising dispatch and layout
// plumbing without a real editor/terminal/file-manager backing it.
type fakePanel struct {
	name       string
	events     []panel.Event
	lastKey    panel.Key
	lastCmd    panel.Command
	escCapture bool
}

func (f *fakePanel) Render(render.Rect, render.CellBuffer, bool, render.Theme) {}
func (f *fakePanel) HandleKey(key panel.Key) []panel.Event {
	f.lastKey = key
	evs := f.events
	f.events = nil
	return evs
}
func (f *fakePanel) HandleMouse(panel.MouseEvent, render.Rect) []panel.Event { return nil }
func (f *fakePanel) Title() string                                          { return f.name }
func (f *fakePanel) ShouldAutoClose() bool                                  { return false }
func (f *fakePanel) NeedsCloseConfirmation() (string, bool)                 { return "", false }
func (f *fakePanel) CapturesEscape() bool                                   { return f.escCapture }
func (f *fakePanel) ToSessionDescriptor() (session.SessionPanel, bool) {
	return session.SessionPanel{Kind: session.PanelWelcome}, true
}
func (f *fakePanel) HandleCommand(cmd panel.Command) panel.CommandResult {
	f.lastCmd = cmd
	return panel.CommandResult{}
}

func TestNewOpensSessionDirAndWatchers(t *testing.T) {
	a := newTestApp(t)
	assert.NotNil(t, a.Session)
	assert.NotNil(t, a.FsWatcher)
	assert.True(t, a.NeedsRedraw, "New leaves NeedsRedraw set for the first paint")
}

func TestRestoreOrWelcomeWithEmptySessionOpensWelcome(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.RestoreOrWelcome(80))
	require.Len(t, a.Layout.Groups, 1)
	p, ok := a.Layout.ActivePanel()
	require.True(t, ok)
	assert.Equal(t, "Welcome", p.Title())
}

func TestHandleKeyGlobalShortcutQuitRequestsQuit(t *testing.T) {
	a := newTestApp(t)
	require.NoError(t, a.RestoreOrWelcome(80))

	a.HandleKey(panel.Key{Name: "q", Ctrl: true})
	assert.True(t, a.Quitting)
}

func TestHandleKeyGlobalShortcutOpensTerminal(t *testing.T) {
	a := newTestApp(t)
	a.Resize(80, 24)
	require.NoError(t, a.RestoreOrWelcome(80))
	before := len(a.Layout.Groups)

	a.HandleKey(panel.Key{Name: "t", Ctrl: true})
	assert.Greater(t, len(a.Layout.Groups), before)
}

func TestHandleKeyFallsThroughToActivePanelWhenNoShortcutMatches(t *testing.T) {
	a := newTestApp(t)
	fp := &fakePanel{name: "fake"}
	a.Layout.AddPanel(fp, 80)

	a.HandleKey(panel.Key{Rune: 'x'})
	assert.Equal(t, 'x', fp.lastKey.Rune)
}

func TestDispatchPanelEventOpenFileAddsEditorPanel(t *testing.T) {
	a := newTestApp(t)

	path := a.ProjectRoot + "/new.txt"
	writeTestFile(t, path, "")
	a.dispatchPanelEvent(panel.Event{Kind: panel.EventOpenFile, Path: path})

	require.Len(t, a.Layout.Groups, 1)
	_, ok := a.activeEditor()
	assert.True(t, ok)
}

func TestDispatchPanelEventShowConfirmOpensPlainConfirmByDefault(t *testing.T) {
	a := newTestApp(t)
	a.dispatchPanelEvent(panel.Event{Kind: panel.EventShowConfirm, Title: "Close?", Message: "unsaved changes"})

	m, open := a.Modals.Active()
	require.True(t, open)
	assert.Equal(t, modal.KindConfirm, m.Kind)
	assert.Empty(t, m.Warning)
	assert.Equal(t, modal.ActionCloseEditorWithSave, a.Modals.PendingAction())
}

func TestDispatchPanelEventShowConfirmConflictCarriesWarning(t *testing.T) {
	a := newTestApp(t)
	a.dispatchPanelEvent(panel.Event{Kind: panel.EventShowConfirm, Title: "Save conflict", Message: "changed on disk", Conflict: true})

	m, open := a.Modals.Active()
	require.True(t, open)
	assert.NotEmpty(t, m.Warning)
	assert.Equal(t, modal.ActionOverwriteDecision, a.Modals.PendingAction())
}

func TestDispatchPanelEventSplitTogglesStacking(t *testing.T) {
	a := newTestApp(t)
	a.Layout.AddPanel(&fakePanel{name: "one"}, 80)
	a.Layout.AddPanel(&fakePanel{name: "two"}, 80)
	require.Len(t, a.Layout.Groups, 2)

	a.dispatchPanelEvent(panel.Event{Kind: panel.EventSplitPanel})
	assert.Len(t, a.Layout.Groups, 1, "toggling stacking merges groups back into one")
}

func TestDispatchPanelEventQuitRequestsQuit(t *testing.T) {
	a := newTestApp(t)
	a.dispatchPanelEvent(panel.Event{Kind: panel.EventQuit})
	assert.True(t, a.Quitting)
}

func TestSearchAndReplaceRoundTrip(t *testing.T) {
	a := newTestApp(t)
	path := a.ProjectRoot + "/hello.txt"
	writeTestFile(t, path, "foo bar foo baz foo")
	require.NoError(t, a.OpenFile(path))

	ep, ok := a.activeEditor()
	require.True(t, ok)
	ep.HandleKey(panel.Key{Rune: 'f', Ctrl: true}) // Ctrl+F opens the editor's search state

	a.Modals.Open(modal.Active{Kind: modal.KindSearch, Title: "Search"}, modal.ActionSearch, a.resolveSearch)
	a.resolveSearch(modal.ActionSearch, modal.Result{Value: "foo"})
	require.NotNil(t, ep.Ed.Search)
	assert.Equal(t, 3, ep.Ed.Search.Total())

	a.advanceSearchMatch(true)
	m, open := a.Modals.Active()
	require.True(t, open)
	assert.Equal(t, 2, m.SearchCurrent)

	a.Modals.Open(modal.Active{Kind: modal.KindReplace, Title: "Replace"}, modal.ActionReplace, a.resolveReplace)
	a.resolveReplace(modal.ActionReplace, modal.Result{Value: "foo", ReplaceWith: "qux", ReplaceAll: true})
	assert.Equal(t, "qux bar qux baz qux", ep.Ed.Buffer.Text())
}

func TestResolveSearchIgnoresCanceledResult(t *testing.T) {
	a := newTestApp(t)
	path := a.ProjectRoot + "/hello.txt"
	writeTestFile(t, path, "foo bar")
	require.NoError(t, a.OpenFile(path))
	ep, _ := a.activeEditor()

	a.resolveSearch(modal.ActionSearch, modal.Result{Canceled: true, Value: "foo"})
	assert.Nil(t, ep.Ed.Search, "a canceled search result must not mutate the editor's search state")
}

func TestResizePositionsNavBarAndTerminalPanels(t *testing.T) {
	a := newTestApp(t)
	a.Resize(80, 24)
	require.NoError(t, a.OpenTerminal("/bin/sh", a.ProjectRoot))

	a.Resize(100, 40)
	assert.Equal(t, 100, a.NavBar.Region.W)
	assert.Equal(t, 1, a.NavBar.Region.H)
}

func TestSaveSessionPersistsUnsavedEditorContent(t *testing.T) {
	a := newTestApp(t)
	ep := panel.NewEditorPanel(a.Cfg.Editor)
	_, err := ep.Ed.Buffer.Insert(ep.Ed.Cursor, "unsaved scratch content")
	require.NoError(t, err)
	a.Layout.AddPanel(ep, 80)

	require.NoError(t, a.SaveSession())

	sess, err := a.Session.Load()
	require.NoError(t, err)
	require.Len(t, sess.PanelGroups, 1)
	require.Len(t, sess.PanelGroups[0].Panels, 1)
	assert.NotEmpty(t, sess.PanelGroups[0].Panels[0].UnsavedBufferFile)
}

func TestStatsReportsOpenPanelsAndDiffPending(t *testing.T) {
	a := newTestApp(t)
	path := a.ProjectRoot + "/hello.txt"
	writeTestFile(t, path, "hello")
	require.NoError(t, a.OpenFile(path))

	s := a.stats()
	assert.Equal(t, 1, s.OpenPanels)
	assert.Equal(t, 1, s.GitDiffPending)
	assert.Equal(t, 1, s.WatchersActive)
}
