// Package app implements App Core of spec §4.5/§5/§8: the single-
// threaded event loop that owns the LayoutManager, the Modal Stack, the
// background watchers, and session auto-save, and drains every worker
// channel each tick before a redraw.
//
// Grounded on the teacher's cmd/thicc/micro.go init/recover sequence
// (config load -> settings -> screen init -> deferred panic recovery
// restoring the terminal) generalized away from a concrete screen
// backend, since rendering primitives are an external collaborator
// (spec §1 non-goal) — App owns only the LayoutManager/Modal Stack/
// watchers, never a tcell.Screen.
package app

import (
	"log"
	"path/filepath"
	"time"

	"github.com/termide/termide/internal/apperr"
	"github.com/termide/termide/internal/config"
	"github.com/termide/termide/internal/fswatch"
	"github.com/termide/termide/internal/gitdiff"
	"github.com/termide/termide/internal/layout"
	"github.com/termide/termide/internal/logging"
	"github.com/termide/termide/internal/modal"
	"github.com/termide/termide/internal/panel"
	"github.com/termide/termide/internal/render"
	"github.com/termide/termide/internal/rope"
	"github.com/termide/termide/internal/session"
)

// logWarn logs a warning the way internal/logging expects callers to:
// gated by the configured level, through the standard logger.
func logWarn(format string, args ...any) {
	if logging.Enabled(logging.LevelWarn) {
		log.Printf(format, args...)
	}
}

// Tick is the default main-loop cadence (spec §5: "does not block on
// I/O for longer than a configurable tick, default 50 ms").
const Tick = 50 * time.Millisecond

// IdleInterval is how long without input before watchers suspend
// (spec's supplemented resource/idle monitor feature).
const IdleInterval = 30 * time.Second

// App is App Core: the LayoutManager, Modal Stack, background watchers,
// and session directory, wired together by the event loop in events.go.
type App struct {
	Cfg      config.Config
	Layout   *layout.LayoutManager
	NavBar   *layout.NavBar
	Modals   modal.Stack
	Theme    render.Theme
	Session  *session.Dir
	ProjectRoot string

	FsWatcher  *fswatch.Watcher
	GitWatcher *fswatch.GitWatcher

	diffWorkers map[*panel.EditorPanel]*gitdiff.Worker

	NeedsRedraw bool
	Quitting    bool
	StatusMsg   string

	lastActivity      time.Time
	watchersSuspended bool

	Debug *panel.DebugPanel

	width, height int
}

// New constructs an App rooted at projectRoot, opening its session
// directory and starting the filesystem/git watchers.
func New(cfg config.Config, projectRoot string) (*App, error) {
	sessDir, err := session.Open(projectRoot)
	if err != nil {
		return nil, apperr.New(apperr.Fatal, "open session directory", err)
	}

	a := &App{
		Cfg:         cfg,
		Layout:      layout.New(cfg.General.MinPanelWidth),
		ProjectRoot: projectRoot,
		Session:     sessDir,
		diffWorkers: make(map[*panel.EditorPanel]*gitdiff.Worker),
		Debug:       panel.NewDebugPanel(),
		Theme:       DefaultTheme(),
		lastActivity: nowPlaceholder(),
		NeedsRedraw: true,
	}
	a.NavBar = layout.NewNavBar(a.Layout)

	if w, err := fswatch.NewWatcher(projectRoot); err == nil {
		a.FsWatcher = w
	} else {
		logWarn("fswatch: %v", err)
	}
	if root, err := gitdiff.Root(projectRoot); err == nil {
		if gw, err := fswatch.NewGitWatcher(root); err == nil {
			a.GitWatcher = gw
		}
	}

	return a, nil
}

// nowPlaceholder exists only so the zero-value lastActivity field has a
// name other than time.Now at construction; noteActivity (called from
// HandleKey/HandleMouse) overwrites it on the first real input event.
func nowPlaceholder() time.Time { return time.Time{} }

// DefaultTheme is the fallback palette when no richer theme table is
// supplied by the (external, non-goal) rendering backend.
func DefaultTheme() render.Theme {
	return render.Theme{
		Foreground:    "default",
		Background:    "default",
		Accent:        "blue",
		Border:        "default",
		BorderFocused: "blue",
		StatusBar:     "default",
		SelectionBg:   "blue",
		GutterDefault: "gray",
		DiffAdded:     "green",
		DiffModified:  "yellow",
		DiffDeleted:   "red",
		SearchMatch:   "yellow",
		SearchCurrent: "orange",
	}
}

// RestoreOrWelcome loads the session's last layout, resurrecting panels
// from their descriptors, or opens a Welcome panel if there was none
// (spec §3's Panel lifecycle: "Session load may resurrect Panels from
// serialized descriptors").
func (a *App) RestoreOrWelcome(width int) error {
	sess, err := a.Session.Load()
	if err != nil {
		return apperr.Wrap(apperr.UserRecoverable, err, "load session")
	}
	if err := a.Session.CleanOrphanBuffers(sess); err != nil {
		logWarn("session: clean orphan buffers: %v", err)
	}

	if len(sess.PanelGroups) == 0 {
		a.Layout.AddPanel(panel.NewWelcomePanel(nil), width)
		return nil
	}

	for _, sg := range sess.PanelGroups {
		group := &layout.PanelGroup{ExpandedIndex: sg.ExpandedIndex}
		if sg.Width > 0 {
			w := sg.Width
			group.Width = &w
		}
		for _, sp := range sg.Panels {
			p, err := a.resurrectPanel(sp)
			if err != nil {
				logWarn("session: resurrect %v: %v", sp.Kind, err)
				continue
			}
			group.Panels = append(group.Panels, p)
		}
		if len(group.Panels) > 0 {
			a.Layout.Groups = append(a.Layout.Groups, group)
		}
	}
	if len(a.Layout.Groups) == 0 {
		a.Layout.AddPanel(panel.NewWelcomePanel(nil), width)
		return nil
	}
	if sess.FocusedGroup < len(a.Layout.Groups) {
		a.Layout.FocusGroupIndex = sess.FocusedGroup
	}
	return nil
}

func (a *App) resurrectPanel(sp session.SessionPanel) (panel.Panel, error) {
	switch sp.Kind {
	case session.PanelFileManager:
		return panel.NewFileManagerPanel(sp.Path)
	case session.PanelEditor:
		if sp.UnsavedBufferFile != "" {
			content, err := a.Session.ReadUnsavedBuffer(sp.UnsavedBufferFile)
			if err != nil {
				return nil, err
			}
			ep := panel.NewEditorPanel(a.Cfg.Editor)
			if _, err := ep.Ed.Buffer.Insert(rope.Cursor{}, content); err != nil {
				return nil, err
			}
			ep.Ed.Cursor = rope.Cursor{}
			a.attachDiffWorker(ep)
			return ep, nil
		}
		ep, err := panel.OpenEditorPanel(a.Cfg.Editor, sp.Path)
		if err != nil {
			return nil, err
		}
		a.attachDiffWorker(ep)
		return ep, nil
	case session.PanelTerminal:
		shell := "/bin/sh"
		return panel.NewTerminalPanel([]string{shell}, a.height, a.width, sp.WorkingDir, 2000)
	case session.PanelWelcome:
		return panel.NewWelcomePanel(nil), nil
	case session.PanelDebug:
		return panel.NewDebugPanel(), nil
	}
	return nil, apperr.UserRecoverablef("unknown panel kind %q", sp.Kind)
}

func (a *App) attachDiffWorker(ep *panel.EditorPanel) {
	w := gitdiff.NewWorker(ep.Ed.GitDiff)
	ep.AttachDiffWorker(w)
	a.diffWorkers[ep] = w
}

// OpenFile opens path in a new editor panel, auto-stacking per the
// LayoutManager's rules, and wires its diff worker.
func (a *App) OpenFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return apperr.Wrap(apperr.UserRecoverable, err, "resolve path")
	}
	ep, err := panel.OpenEditorPanel(a.Cfg.Editor, abs)
	if err != nil {
		return apperr.Wrap(apperr.UserRecoverable, err, "open file")
	}
	a.attachDiffWorker(ep)
	a.Layout.AddPanel(ep, a.width)
	a.NeedsRedraw = true
	return nil
}

// OpenTerminal opens a new shell terminal panel in cwd.
func (a *App) OpenTerminal(shell, cwd string) error {
	tp, err := panel.NewTerminalPanel([]string{shell}, a.height, a.width, cwd, 2000)
	if err != nil {
		return apperr.Wrap(apperr.UserRecoverable, err, "spawn terminal")
	}
	a.Layout.AddPanel(tp, a.width)
	a.NeedsRedraw = true
	return nil
}

// Resize propagates a terminal resize to the layout and every terminal
// panel (spec §4.3: Resize resizes the PTY then the virtual grid).
func (a *App) Resize(width, height int) {
	a.width, a.height = width, height
	if a.NavBar != nil {
		a.NavBar.Region = layout.Region{X: 0, Y: 0, W: width, H: 1}
	}
	a.Layout.RedistributeWidthsProportionally(width)
	for _, g := range a.Layout.Groups {
		for _, p := range g.Panels {
			if tp, ok := p.(*panel.TerminalPanel); ok {
				tp.Resize(height-1, width)
			}
		}
	}
	a.NeedsRedraw = true
}

// Close tears down every worker the App owns: terminal PTYs, diff
// workers, and the filesystem/git watchers (spec §5 cancellation rules).
func (a *App) Close() {
	for _, g := range a.Layout.Groups {
		for _, p := range g.Panels {
			if tp, ok := p.(*panel.TerminalPanel); ok {
				tp.Close()
			}
		}
	}
	for _, w := range a.diffWorkers {
		w.Close()
	}
	if a.FsWatcher != nil {
		a.FsWatcher.Close()
	}
	if a.GitWatcher != nil {
		a.GitWatcher.Close()
	}
}
