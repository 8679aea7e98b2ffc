package panel

import (
	"fmt"
	"runtime"
	"time"

	"github.com/termide/termide/internal/render"
	"github.com/termide/termide/internal/session"
)

// Stats is a snapshot of App Core's resource/idle monitor (spec's
// SUPPLEMENTED FEATURES: "watchers suspend after an idle interval and
// resume on input"), refreshed by App once per tick and handed to the
// Debug panel for display. It carries no behavior of its own.
type Stats struct {
	Goroutines       int
	OpenPanels       int
	WatchersActive   int
	WatchersSuspended bool
	IdleSince        time.Duration
	DirSizeJobsQueued int
	GitDiffPending   int
	BatchItemsPending int
}

// DebugPanel is the Debug variant of spec §4.6: a read-only view of the
// resource/idle monitor, useful while developing or diagnosing TermIDE
// itself. It holds no state of its own beyond the last Stats snapshot
// the App pushed to it.
type DebugPanel struct {
	last Stats
}

func NewDebugPanel() *DebugPanel { return &DebugPanel{} }

// Update replaces the displayed snapshot; called by App once per tick.
func (p *DebugPanel) Update(s Stats) {
	s.Goroutines = runtime.NumGoroutine()
	p.last = s
}

func (p *DebugPanel) Title() string { return "Debug" }

func (p *DebugPanel) ShouldAutoClose() bool { return false }

func (p *DebugPanel) NeedsCloseConfirmation() (string, bool) { return "", false }

func (p *DebugPanel) CapturesEscape() bool { return false }

func (p *DebugPanel) ToSessionDescriptor() (session.SessionPanel, bool) {
	// Debug panels are diagnostic only and are never restored across
	// sessions (spec §4.5's persisted-session scope is user content).
	return session.SessionPanel{}, false
}

func (p *DebugPanel) HandleCommand(cmd Command) CommandResult { return CommandResult{} }

func (p *DebugPanel) HandleMouse(ev MouseEvent, area render.Rect) []Event { return nil }

func (p *DebugPanel) HandleKey(key Key) []Event { return nil }

func (p *DebugPanel) Render(area render.Rect, cb render.CellBuffer, focused bool, theme render.Theme) {
	lines := []string{
		fmt.Sprintf("goroutines:        %d", p.last.Goroutines),
		fmt.Sprintf("open panels:       %d", p.last.OpenPanels),
		fmt.Sprintf("watchers active:   %d", p.last.WatchersActive),
		fmt.Sprintf("watchers suspended: %v", p.last.WatchersSuspended),
		fmt.Sprintf("idle for:          %s", p.last.IdleSince.Round(time.Second)),
		fmt.Sprintf("dir-size jobs queued: %d", p.last.DirSizeJobsQueued),
		fmt.Sprintf("git-diff pending:  %d", p.last.GitDiffPending),
		fmt.Sprintf("batch items pending: %d", p.last.BatchItemsPending),
	}
	for i, line := range lines {
		if area.Y+i >= area.Y+area.H {
			break
		}
		cb.DrawText(area.X, area.Y+i, render.Style{Fg: theme.Foreground}, line)
	}
}
